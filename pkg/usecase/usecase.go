package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/repovault/pkg/domain/interfaces"
	"github.com/secmon-lab/repovault/pkg/domain/types"
	"github.com/secmon-lab/repovault/pkg/infra"
	"github.com/secmon-lab/repovault/pkg/utils/logging"
)

type UseCase struct {
	clients *infra.Clients
}

var _ interfaces.UseCase = (*UseCase)(nil)

func New(clients *infra.Clients) *UseCase {
	return &UseCase{
		clients: clients,
	}
}

func now(ctx context.Context) time.Time {
	return logging.CtxTime(ctx).UTC()
}

// notFound attaches a client facing reason to a not-found error and passes others through.
// A reason set closer to the failure is kept.
func notFound(err error, reason string) error {
	if errors.Is(err, types.ErrNotFound) && types.ReasonOf(err) == "" {
		return goerr.Wrap(err, "not found", types.Reason(reason))
	}
	return err
}

func conflict(err error, reason string) error {
	if errors.Is(err, types.ErrConflict) && types.ReasonOf(err) == "" {
		return goerr.Wrap(err, "conflict", types.Reason(reason))
	}
	return err
}
