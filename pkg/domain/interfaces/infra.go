package interfaces

//go:generate moq -out ../mock/infra.go -pkg mock . BlobStore Publisher

import (
	"context"

	"github.com/secmon-lab/repovault/pkg/domain/model"
	"github.com/secmon-lab/repovault/pkg/domain/types"
)

type BlobStore interface {
	Put(ctx context.Context, key types.BlobKey, data []byte) error
	// Get returns types.ErrNotFound (wrapped) when the object does not exist.
	Get(ctx context.Context, key types.BlobKey) ([]byte, error)
	Delete(ctx context.Context, key types.BlobKey) error
	List(ctx context.Context, prefix string) ([]types.BlobKey, error)
}

// Publisher delivers events to per-user rooms.
type Publisher interface {
	Publish(ctx context.Context, room types.UserID, ev *model.Event) error
	Subscribe(ctx context.Context, room types.UserID) (Subscription, error)
}

type Subscription interface {
	Events() <-chan *model.Event
	Close() error
}

type TokenService interface {
	Generate(userID types.UserID) (string, error)
	Validate(token string) (types.UserID, error)
}

type PasswordService interface {
	Hash(password string) (string, error)
	Verify(hash, password string) error
}
