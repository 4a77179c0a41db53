package usecase

import (
	"context"
	"time"

	"github.com/secmon-lab/repovault/pkg/domain/interfaces"
	"github.com/secmon-lab/repovault/pkg/domain/model"
	"github.com/secmon-lab/repovault/pkg/domain/types"
	"github.com/secmon-lab/repovault/pkg/utils/errutil"
	"github.com/secmon-lab/repovault/pkg/utils/logging"
)

const publishTimeout = 10 * time.Second

// publish notifies the room of the user in background. A failure is only reported.
func (x *UseCase) publish(ctx context.Context, room types.UserID, ev *model.Event) {
	if room == "" {
		return
	}
	ev.UserID = room
	ev.Timestamp = now(ctx)

	bgCtx := logging.Detach(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(bgCtx, publishTimeout)
		defer cancel()

		if err := x.clients.Publisher().Publish(ctx, room, ev); err != nil {
			errutil.HandleError(ctx, "failed to publish event", err)
		}
	}()
}

func (x *UseCase) SubscribeEvents(ctx context.Context, userID types.UserID) (interfaces.Subscription, error) {
	if err := userID.Validate(); err != nil {
		return nil, err
	}
	return x.clients.Publisher().Subscribe(ctx, userID)
}
