package config

import (
	"context"
	"log/slog"

	"github.com/secmon-lab/repovault/pkg/domain/interfaces"
	"github.com/secmon-lab/repovault/pkg/repository/firestore"
	"github.com/secmon-lab/repovault/pkg/repository/memory"
	"github.com/secmon-lab/repovault/pkg/utils/logging"
	"github.com/urfave/cli/v3"
	"google.golang.org/api/option"
)

type Firestore struct {
	projectID   string
	databaseID  string
	credentials string
}

func (x *Firestore) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Firestore project ID. In-memory store is used if not set",
			Category:    "Firestore",
			Sources:     cli.EnvVars("REPOVAULT_FIRESTORE_PROJECT_ID"),
			Destination: &x.projectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore database ID",
			Category:    "Firestore",
			Sources:     cli.EnvVars("REPOVAULT_FIRESTORE_DATABASE_ID"),
			Value:       "(default)",
			Destination: &x.databaseID,
		},
		&cli.StringFlag{
			Name:        "firestore-credentials",
			Usage:       "Path to service account key file. Application default credentials are used if not set",
			Category:    "Firestore",
			Sources:     cli.EnvVars("REPOVAULT_FIRESTORE_CREDENTIALS"),
			Destination: &x.credentials,
		},
	}
}

func (x *Firestore) Enabled() bool {
	return x.projectID != ""
}

func (x *Firestore) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Any("projectID", x.projectID),
		slog.Any("databaseID", x.databaseID),
		slog.Bool("credentials", x.credentials != ""),
	)
}

// NewDatabase returns the Firestore backed store, or an in-memory one when no project is set.
func (x *Firestore) NewDatabase(ctx context.Context) (interfaces.Database, error) {
	if !x.Enabled() {
		logging.From(ctx).Warn("firestore is not configured, data is kept in memory only")
		return memory.New(), nil
	}

	var opts []option.ClientOption
	if x.credentials != "" {
		opts = append(opts, option.WithCredentialsFile(x.credentials))
	}
	return firestore.New(ctx, x.projectID, x.databaseID, opts...)
}
