package pubsub

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/redis/go-redis/v9"
	"github.com/secmon-lab/repovault/pkg/domain/interfaces"
	"github.com/secmon-lab/repovault/pkg/domain/model"
	"github.com/secmon-lab/repovault/pkg/domain/types"
	"github.com/secmon-lab/repovault/pkg/utils/logging"
)

// Redis delivers events through Redis PUBLISH/SUBSCRIBE, one channel per room.
type Redis struct {
	client *redis.Client
}

var _ interfaces.Publisher = (*Redis)(nil)

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// Connect creates a client and checks the connection with PING.
func Connect(ctx context.Context, addr string, password types.RedisPassword, db int) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: string(password),
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, goerr.Wrap(err, "failed to connect to redis", goerr.V("addr", addr))
	}

	return NewRedis(client), nil
}

func RoomChannel(room types.UserID) string {
	return "room:" + string(room)
}

func (x *Redis) Publish(ctx context.Context, room types.UserID, ev *model.Event) error {
	raw, err := json.Marshal(ev)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal event", goerr.V("type", ev.Type))
	}

	if err := x.client.Publish(ctx, RoomChannel(room), raw).Err(); err != nil {
		return goerr.Wrap(err, "failed to publish event", goerr.V("room", room))
	}
	return nil
}

func (x *Redis) Subscribe(ctx context.Context, room types.UserID) (interfaces.Subscription, error) {
	ps := x.client.Subscribe(ctx, RoomChannel(room))

	// Wait for the subscription confirmation so that no event published after return is missed
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, goerr.Wrap(err, "failed to subscribe", goerr.V("room", room))
	}

	sub := &redisSubscription{
		ps:     ps,
		events: make(chan *model.Event),
		done:   make(chan struct{}),
	}
	go sub.loop(logging.From(ctx).With(slog.Any("room", room)))

	return sub, nil
}

func (x *Redis) Close() error {
	if err := x.client.Close(); err != nil {
		return goerr.Wrap(err, "failed to close redis client")
	}
	return nil
}

type redisSubscription struct {
	ps     *redis.PubSub
	events chan *model.Event
	done   chan struct{}
	once   sync.Once
}

func (x *redisSubscription) loop(logger *slog.Logger) {
	defer close(x.events)

	for msg := range x.ps.Channel() {
		var ev model.Event
		if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
			logger.Warn("drop malformed event", "error", err, "channel", msg.Channel)
			continue
		}

		select {
		case x.events <- &ev:
		case <-x.done:
			return
		}
	}
}

func (x *redisSubscription) Events() <-chan *model.Event {
	return x.events
}

func (x *redisSubscription) Close() error {
	var err error
	x.once.Do(func() {
		close(x.done)
		err = x.ps.Close()
	})
	if err != nil {
		return goerr.Wrap(err, "failed to close subscription")
	}
	return nil
}
