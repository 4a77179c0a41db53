package infra

import (
	"errors"
	"io"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/repovault/pkg/domain/interfaces"
	"github.com/secmon-lab/repovault/pkg/infra/blobstore"
	"github.com/secmon-lab/repovault/pkg/infra/pubsub"
	"github.com/secmon-lab/repovault/pkg/repository/memory"
)

// Clients holds every external dependency of the use cases. Unset database, blob
// store and publisher fall back to in-process implementations.
type Clients struct {
	database        interfaces.Database
	blobStore       interfaces.BlobStore
	publisher       interfaces.Publisher
	tokenService    interfaces.TokenService
	passwordService interfaces.PasswordService
}

type Option func(*Clients)

func New(options ...Option) *Clients {
	client := &Clients{}

	for _, opt := range options {
		opt(client)
	}

	if client.database == nil {
		client.database = memory.New()
	}
	if client.blobStore == nil {
		client.blobStore = blobstore.NewMemory()
	}
	if client.publisher == nil {
		client.publisher = pubsub.NewMemory()
	}

	return client
}

func (x *Clients) Database() interfaces.Database {
	return x.database
}
func (x *Clients) BlobStore() interfaces.BlobStore {
	return x.blobStore
}
func (x *Clients) Publisher() interfaces.Publisher {
	return x.publisher
}
func (x *Clients) TokenService() interfaces.TokenService {
	return x.tokenService
}
func (x *Clients) PasswordService() interfaces.PasswordService {
	return x.passwordService
}

// Close releases the database and any client that holds a connection.
func (x *Clients) Close() error {
	var errs []error
	if err := x.database.Close(); err != nil {
		errs = append(errs, err)
	}
	for _, c := range []any{x.blobStore, x.publisher} {
		if closer, ok := c.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}

	if err := errors.Join(errs...); err != nil {
		return goerr.Wrap(err, "failed to close clients")
	}
	return nil
}

func WithDatabase(db interfaces.Database) Option {
	return func(x *Clients) {
		x.database = db
	}
}

func WithBlobStore(store interfaces.BlobStore) Option {
	return func(x *Clients) {
		x.blobStore = store
	}
}

func WithPublisher(pub interfaces.Publisher) Option {
	return func(x *Clients) {
		x.publisher = pub
	}
}

func WithTokenService(svc interfaces.TokenService) Option {
	return func(x *Clients) {
		x.tokenService = svc
	}
}

func WithPasswordService(svc interfaces.PasswordService) Option {
	return func(x *Clients) {
		x.passwordService = svc
	}
}
