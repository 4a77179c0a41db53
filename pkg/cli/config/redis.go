package config

import (
	"context"
	"log/slog"

	"github.com/secmon-lab/repovault/pkg/domain/interfaces"
	"github.com/secmon-lab/repovault/pkg/domain/types"
	"github.com/secmon-lab/repovault/pkg/infra/pubsub"
	"github.com/secmon-lab/repovault/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

type Redis struct {
	addr     string
	password types.RedisPassword `masq:"secret"`
	db       int
}

func (x *Redis) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "redis-addr",
			Usage:       "Redis address (host:port) to share events between instances. In-process delivery is used if not set",
			Category:    "Redis",
			Sources:     cli.EnvVars("REPOVAULT_REDIS_ADDR"),
			Destination: &x.addr,
		},
		&cli.StringFlag{
			Name:        "redis-password",
			Usage:       "Redis password",
			Category:    "Redis",
			Sources:     cli.EnvVars("REPOVAULT_REDIS_PASSWORD"),
			Destination: (*string)(&x.password),
		},
		&cli.IntFlag{
			Name:        "redis-db",
			Usage:       "Redis database number",
			Category:    "Redis",
			Sources:     cli.EnvVars("REPOVAULT_REDIS_DB"),
			Destination: &x.db,
		},
	}
}

func (x *Redis) Enabled() bool {
	return x.addr != ""
}

// NewPublisher connects to Redis, or returns an in-process publisher when no address is set.
func (x *Redis) NewPublisher(ctx context.Context) (interfaces.Publisher, error) {
	if !x.Enabled() {
		logging.From(ctx).Info("redis is not configured, events are delivered in process")
		return pubsub.NewMemory(), nil
	}
	return pubsub.Connect(ctx, x.addr, x.password, x.db)
}

func (x *Redis) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Any("addr", x.addr),
		slog.Int("password.len", len(x.password)),
		slog.Int("db", x.db),
	)
}
