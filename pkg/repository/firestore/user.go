package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/repovault/pkg/domain/model"
	"github.com/secmon-lab/repovault/pkg/domain/types"
	"github.com/secmon-lab/repovault/pkg/repository"
)

func (d *database) userRef(id types.UserID) *firestore.DocumentRef {
	return d.client.Collection(collectionUsers).Doc(string(id))
}

// User operations

func (d *database) CreateUser(ctx context.Context, user *model.User) error {
	usernameRef, err := d.indexRef(collectionUsernames, user.Username)
	if err != nil {
		return err
	}
	emailRef, err := d.indexRef(collectionEmails, user.Email)
	if err != nil {
		return err
	}

	err = d.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, exists, err := txGet[indexEntry](tx, usernameRef); err != nil {
			return err
		} else if exists {
			return goerr.Wrap(repository.ErrAlreadyExists, "username already exists", goerr.V("username", user.Username))
		}
		if _, exists, err := txGet[indexEntry](tx, emailRef); err != nil {
			return err
		} else if exists {
			return goerr.Wrap(repository.ErrAlreadyExists, "email already exists", goerr.V("email", user.Email))
		}

		if err := tx.Create(d.userRef(user.ID), user); err != nil {
			return goerr.Wrap(err, "failed to create user")
		}
		if err := tx.Create(usernameRef, &indexEntry{ID: string(user.ID)}); err != nil {
			return goerr.Wrap(err, "failed to create username index")
		}
		if err := tx.Create(emailRef, &indexEntry{ID: string(user.ID)}); err != nil {
			return goerr.Wrap(err, "failed to create email index")
		}
		return nil
	})
	if err != nil {
		return goerr.Wrap(err, "failed to create user", goerr.V("userID", user.ID))
	}

	return nil
}

func (d *database) GetUser(ctx context.Context, id types.UserID) (*model.User, error) {
	user, exists, err := getDoc[model.User](ctx, d.userRef(id))
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, goerr.Wrap(repository.ErrNotFound, "user not found", goerr.V("userID", id))
	}
	return user, nil
}

func (d *database) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	ref, err := d.indexRef(collectionEmails, email)
	if err != nil {
		return nil, goerr.Wrap(repository.ErrNotFound, "user not found", goerr.V("email", email))
	}

	entry, exists, err := getDoc[indexEntry](ctx, ref)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, goerr.Wrap(repository.ErrNotFound, "user not found", goerr.V("email", email))
	}

	return d.GetUser(ctx, types.UserID(entry.ID))
}

func (d *database) ListUsers(ctx context.Context) ([]*model.User, error) {
	return collect[model.User](d.client.Collection(collectionUsers).Documents(ctx))
}

func (d *database) UpdateUser(ctx context.Context, id types.UserID, update func(user *model.User) error) (*model.User, error) {
	var updated *model.User

	err := d.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		current, exists, err := txGet[model.User](tx, d.userRef(id))
		if err != nil {
			return err
		}
		if !exists {
			return goerr.Wrap(repository.ErrNotFound, "user not found", goerr.V("userID", id))
		}

		updated = current.Copy()
		if err := update(updated); err != nil {
			return err
		}
		updated.ID = id

		moves, err := d.prepareIndexMoves(tx, string(id),
			indexMove{collectionUsernames, current.Username, updated.Username},
			indexMove{collectionEmails, current.Email, updated.Email},
		)
		if err != nil {
			return err
		}

		if err := tx.Set(d.userRef(id), updated); err != nil {
			return goerr.Wrap(err, "failed to update user")
		}
		return applyIndexMoves(tx, moves, string(id))
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (d *database) DeleteUser(ctx context.Context, id types.UserID) error {
	return d.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		user, exists, err := txGet[model.User](tx, d.userRef(id))
		if err != nil {
			return err
		}
		if !exists {
			return goerr.Wrap(repository.ErrNotFound, "user not found", goerr.V("userID", id))
		}

		if err := tx.Delete(d.userRef(id)); err != nil {
			return goerr.Wrap(err, "failed to delete user")
		}
		for collection, value := range map[string]string{
			collectionUsernames: user.Username,
			collectionEmails:    user.Email,
		} {
			ref, err := d.indexRef(collection, value)
			if err != nil {
				continue
			}
			if err := tx.Delete(ref); err != nil {
				return goerr.Wrap(err, "failed to delete index", goerr.V("collection", collection))
			}
		}
		return nil
	})
}

type indexMove struct {
	collection string
	from, to   string
}

type preparedMove struct {
	from, to *firestore.DocumentRef
}

// prepareIndexMoves checks that every changed unique value is free. It only
// reads, so it must run before any write in the transaction.
func (d *database) prepareIndexMoves(tx *firestore.Transaction, ownerID string, moves ...indexMove) ([]preparedMove, error) {
	var prepared []preparedMove
	for _, m := range moves {
		if m.from == m.to {
			continue
		}

		toRef, err := d.indexRef(m.collection, m.to)
		if err != nil {
			return nil, err
		}
		entry, exists, err := txGet[indexEntry](tx, toRef)
		if err != nil {
			return nil, err
		}
		if exists && entry.ID != ownerID {
			return nil, goerr.Wrap(repository.ErrAlreadyExists, "value already in use",
				goerr.V("collection", m.collection),
				goerr.V("value", m.to),
			)
		}

		fromRef, err := d.indexRef(m.collection, m.from)
		if err != nil {
			return nil, err
		}
		prepared = append(prepared, preparedMove{from: fromRef, to: toRef})
	}
	return prepared, nil
}

func applyIndexMoves(tx *firestore.Transaction, moves []preparedMove, ownerID string) error {
	for _, m := range moves {
		if err := tx.Delete(m.from); err != nil {
			return goerr.Wrap(err, "failed to delete index", goerr.V("path", m.from.Path))
		}
		if err := tx.Set(m.to, &indexEntry{ID: ownerID}); err != nil {
			return goerr.Wrap(err, "failed to set index", goerr.V("path", m.to.Path))
		}
	}
	return nil
}
