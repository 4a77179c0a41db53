package firestore

import (
	"context"
	"strings"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/repovault/pkg/domain/interfaces"
	"github.com/secmon-lab/repovault/pkg/repository"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	collectionUsers        = "users"
	collectionRepositories = "repositories"
	collectionIssues       = "issues"

	// Index collections hold one document per unique value, pointing to the owner record.
	collectionUsernames = "usernames"
	collectionEmails    = "emails"
	collectionRepoNames = "repo_names"
)

type database struct {
	client *firestore.Client
}

type indexEntry struct {
	ID string
}

// New creates a new Firestore-based database
func New(ctx context.Context, projectID, databaseID string, opts ...option.ClientOption) (interfaces.Database, error) {
	var client *firestore.Client
	var err error

	if databaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID, opts...)
	} else {
		client, err = firestore.NewClient(ctx, projectID, opts...)
	}

	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Firestore client",
			goerr.V("projectID", projectID),
			goerr.V("databaseID", databaseID),
		)
	}

	return &database{
		client: client,
	}, nil
}

func (d *database) Close() error {
	if err := d.client.Close(); err != nil {
		return goerr.Wrap(err, "failed to close Firestore client")
	}
	return nil
}

// ToIndexID validates a unique value for use as an index document ID.
// Firestore document IDs cannot contain "/", be "." or "..", or match __.*__.
func ToIndexID(value string) (string, error) {
	if value == "" || strings.Contains(value, "/") || strings.Trim(value, ".") == "" ||
		(strings.HasPrefix(value, "__") && strings.HasSuffix(value, "__")) {
		return "", goerr.Wrap(repository.ErrInvalidInput, "value cannot be used as document ID",
			goerr.V("value", value),
		)
	}
	return value, nil
}

func (d *database) indexRef(collection, value string) (*firestore.DocumentRef, error) {
	id, err := ToIndexID(value)
	if err != nil {
		return nil, err
	}
	return d.client.Collection(collection).Doc(id), nil
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// txGet reads and decodes a document in a transaction. The second return value
// is false when the document does not exist.
func txGet[T any](tx *firestore.Transaction, ref *firestore.DocumentRef) (*T, bool, error) {
	snap, err := tx.Get(ref)
	if err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, goerr.Wrap(err, "failed to get document", goerr.V("path", ref.Path))
	}
	if !snap.Exists() {
		return nil, false, nil
	}

	var v T
	if err := snap.DataTo(&v); err != nil {
		return nil, false, goerr.Wrap(err, "failed to decode document", goerr.V("path", ref.Path))
	}
	return &v, true, nil
}

func getDoc[T any](ctx context.Context, ref *firestore.DocumentRef) (*T, bool, error) {
	snap, err := ref.Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, goerr.Wrap(err, "failed to get document", goerr.V("path", ref.Path))
	}

	var v T
	if err := snap.DataTo(&v); err != nil {
		return nil, false, goerr.Wrap(err, "failed to decode document", goerr.V("path", ref.Path))
	}
	return &v, true, nil
}

func collect[T any](iter *firestore.DocumentIterator) ([]*T, error) {
	defer iter.Stop()

	var items []*T
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate documents")
		}

		var v T
		if err := snap.DataTo(&v); err != nil {
			return nil, goerr.Wrap(err, "failed to decode document", goerr.V("path", snap.Ref.Path))
		}
		items = append(items, &v)
	}

	return items, nil
}
