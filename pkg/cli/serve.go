package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gots/slice"
	"github.com/secmon-lab/repovault/pkg/cli/config"
	"github.com/secmon-lab/repovault/pkg/controller/server"
	"github.com/secmon-lab/repovault/pkg/infra"
	"github.com/secmon-lab/repovault/pkg/usecase"
	"github.com/secmon-lab/repovault/pkg/utils/logging"
	"github.com/secmon-lab/repovault/pkg/utils/safe"

	"github.com/urfave/cli/v3"
)

func serveCommand() *cli.Command {
	var (
		addr string

		firestore config.Firestore
		storage   config.Storage
		authCfg   config.Auth
		redis     config.Redis
		sentry    config.Sentry
	)
	serveFlags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Binding address",
			Value:       "127.0.0.1:8000",
			Sources:     cli.EnvVars("REPOVAULT_ADDR"),
			Destination: &addr,
		},
	}

	return &cli.Command{
		Name:    "start",
		Aliases: []string{"serve"},
		Usage:   "Run API server",
		Flags: slice.Flatten(
			serveFlags,
			firestore.Flags(),
			storage.Flags(),
			authCfg.Flags(),
			redis.Flags(),
			sentry.Flags(),
		),
		Action: func(ctx context.Context, c *cli.Command) error {
			logging.Default().Info("starting serve",
				slog.Any("Addr", addr),
				slog.Any("Firestore", &firestore),
				slog.Any("Storage", &storage),
				slog.Any("Auth", &authCfg),
				slog.Any("Redis", &redis),
				slog.Any("Sentry", &sentry),
			)

			if err := sentry.Configure(ctx); err != nil {
				return err
			}
			defer sentry.Flush()

			clients, err := newServerClients(ctx, &firestore, &storage, &authCfg, &redis)
			if err != nil {
				return err
			}
			defer safe.Close(clients)

			uc := usecase.New(clients)
			s := server.New(uc)

			serverErr := make(chan error, 1)
			httpServer := &http.Server{
				Addr:    addr,
				Handler: s.Mux(),

				ReadHeaderTimeout: 10 * time.Second,
				ReadTimeout:       30 * time.Second,
				WriteTimeout:      30 * time.Second,
			}

			go func() {
				logging.Default().Info("starting http server", "addr", addr)
				if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
					serverErr <- goerr.Wrap(err, "failed to listen and serve")
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-serverErr:
				return err

			case sig := <-quit:
				logging.Default().Info("shutting down server", "signal", sig)

				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				if err := httpServer.Shutdown(ctx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server")
				}
			}

			return nil
		},
	}
}

// newServerClients builds clients of the server. Clients created before a failure are closed.
func newServerClients(ctx context.Context, firestore *config.Firestore, storage *config.Storage, authCfg *config.Auth, redis *config.Redis) (*infra.Clients, error) {
	tokenSvc, err := authCfg.NewTokenService()
	if err != nil {
		return nil, err
	}
	passwordSvc, err := authCfg.NewPasswordService()
	if err != nil {
		return nil, err
	}

	db, err := firestore.NewDatabase(ctx)
	if err != nil {
		return nil, err
	}
	options := []infra.Option{
		infra.WithDatabase(db),
		infra.WithTokenService(tokenSvc),
		infra.WithPasswordService(passwordSvc),
	}

	blobStore, err := storage.NewBlobStore(ctx)
	if err != nil {
		safe.Close(infra.New(options...))
		return nil, err
	}
	options = append(options, infra.WithBlobStore(blobStore))

	publisher, err := redis.NewPublisher(ctx)
	if err != nil {
		safe.Close(infra.New(options...))
		return nil, err
	}
	options = append(options, infra.WithPublisher(publisher))

	return infra.New(options...), nil
}
