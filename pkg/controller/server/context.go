package server

import (
	"context"

	"github.com/secmon-lab/repovault/pkg/domain/types"
)

type ctxUserIDKey struct{}

func withUserID(ctx context.Context, id types.UserID) context.Context {
	return context.WithValue(ctx, ctxUserIDKey{}, id)
}

// UserIDFrom returns the user authenticated by the bearer token of the request, if any.
func UserIDFrom(ctx context.Context) (types.UserID, bool) {
	id, ok := ctx.Value(ctxUserIDKey{}).(types.UserID)
	return id, ok && id != ""
}
