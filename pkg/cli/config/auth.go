package config

import (
	"log/slog"
	"time"

	"github.com/secmon-lab/repovault/pkg/domain/types"
	"github.com/secmon-lab/repovault/pkg/infra/auth"
	"github.com/urfave/cli/v3"
	"golang.org/x/crypto/bcrypt"
)

type Auth struct {
	jwtSecret  types.JWTSecret `masq:"secret"`
	tokenTTL   time.Duration
	bcryptCost int
}

func (x *Auth) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "jwt-secret",
			Usage:       "Secret key to sign session tokens (at least 16 bytes)",
			Category:    "Auth",
			Sources:     cli.EnvVars("REPOVAULT_JWT_SECRET"),
			Destination: (*string)(&x.jwtSecret),
			Required:    true,
		},
		&cli.DurationFlag{
			Name:        "token-ttl",
			Usage:       "Lifetime of session tokens",
			Category:    "Auth",
			Sources:     cli.EnvVars("REPOVAULT_TOKEN_TTL"),
			Value:       auth.DefaultTokenTTL,
			Destination: &x.tokenTTL,
		},
		&cli.IntFlag{
			Name:        "bcrypt-cost",
			Usage:       "Cost of password hashing",
			Category:    "Auth",
			Sources:     cli.EnvVars("REPOVAULT_BCRYPT_COST"),
			Value:       bcrypt.DefaultCost,
			Destination: &x.bcryptCost,
		},
	}
}

func (x *Auth) NewTokenService() (*auth.TokenService, error) {
	return auth.NewTokenService(x.jwtSecret, x.tokenTTL)
}

func (x *Auth) NewPasswordService() (*auth.PasswordService, error) {
	return auth.NewPasswordService(x.bcryptCost)
}

func (x *Auth) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("jwtSecret.len", len(x.jwtSecret)),
		slog.Duration("tokenTTL", x.tokenTTL),
		slog.Int("bcryptCost", x.bcryptCost),
	)
}
