package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/repovault/pkg/domain/interfaces"
	"github.com/secmon-lab/repovault/pkg/domain/types"
)

const (
	tokenIssuer     = "repovault"
	minSecretLength = 16

	DefaultTokenTTL = time.Hour
)

// TokenService issues and verifies HS256 signed session tokens. The user ID is carried in the "sub" claim.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

var _ interfaces.TokenService = (*TokenService)(nil)

type TokenOption func(*TokenService)

// WithClock replaces the time source used for issuing and verifying tokens
func WithClock(now func() time.Time) TokenOption {
	return func(x *TokenService) {
		x.now = now
	}
}

func NewTokenService(secret types.JWTSecret, ttl time.Duration, options ...TokenOption) (*TokenService, error) {
	if len(secret) < minSecretLength {
		return nil, goerr.Wrap(types.ErrInvalidOption, "JWT secret is too short", goerr.V("min", minSecretLength))
	}
	if ttl <= 0 {
		return nil, goerr.Wrap(types.ErrInvalidOption, "token TTL must be positive", goerr.V("ttl", ttl))
	}

	x := &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range options {
		opt(x)
	}
	return x, nil
}

func (x *TokenService) Generate(userID types.UserID) (string, error) {
	now := x.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		Issuer:    tokenIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(x.ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(x.secret)
	if err != nil {
		return "", goerr.Wrap(err, "failed to sign token", goerr.V("user_id", userID))
	}
	return signed, nil
}

func (x *TokenService) Validate(token string) (types.UserID, error) {
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims,
		func(t *jwt.Token) (any, error) {
			return x.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(x.now),
	)
	if err != nil {
		reason := "Invalid token"
		if errors.Is(err, jwt.ErrTokenExpired) {
			reason = "Token expired"
		}
		return "", goerr.Wrap(types.ErrUnauthorized, "failed to verify token",
			goerr.V("cause", err.Error()),
			types.Reason(reason),
		)
	}
	if !parsed.Valid {
		return "", goerr.Wrap(types.ErrUnauthorized, "token is not valid", types.Reason("Invalid token"))
	}

	userID := types.UserID(claims.Subject)
	if err := userID.Validate(); err != nil {
		return "", goerr.Wrap(types.ErrUnauthorized, "token has invalid subject",
			goerr.V("subject", claims.Subject),
			types.Reason("Invalid token"),
		)
	}

	return userID, nil
}
