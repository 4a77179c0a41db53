package auth_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/repovault/pkg/domain/types"
	"github.com/secmon-lab/repovault/pkg/infra/auth"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = types.JWTSecret("0123456789abcdef0123456789abcdef")

func TestTokenService(t *testing.T) {
	userID := types.NewUserID()

	t.Run("generated token is valid", func(t *testing.T) {
		svc := gt.R1(auth.NewTokenService(testSecret, time.Hour)).NoError(t)
		token := gt.R1(svc.Generate(userID)).NoError(t)

		got := gt.R1(svc.Validate(token)).NoError(t)
		gt.V(t, got).Equal(userID)
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		now := time.Now()
		svc := gt.R1(auth.NewTokenService(testSecret, time.Minute,
			auth.WithClock(func() time.Time { return now }),
		)).NoError(t)
		token := gt.R1(svc.Generate(userID)).NoError(t)

		now = now.Add(2 * time.Minute)
		_, err := svc.Validate(token)
		gt.Error(t, err)
		gt.True(t, errors.Is(err, types.ErrUnauthorized))
		gt.V(t, types.ReasonOf(err)).Equal("Token expired")
	})

	t.Run("token signed by other secret is rejected", func(t *testing.T) {
		other := gt.R1(auth.NewTokenService("fedcba9876543210fedcba9876543210", time.Hour)).NoError(t)
		svc := gt.R1(auth.NewTokenService(testSecret, time.Hour)).NoError(t)

		token := gt.R1(other.Generate(userID)).NoError(t)
		_, err := svc.Validate(token)
		gt.True(t, errors.Is(err, types.ErrUnauthorized))
	})

	t.Run("unsigned token is rejected", func(t *testing.T) {
		svc := gt.R1(auth.NewTokenService(testSecret, time.Hour)).NoError(t)
		token := gt.R1(jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    "repovault",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)).NoError(t)

		_, err := svc.Validate(token)
		gt.True(t, errors.Is(err, types.ErrUnauthorized))
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		svc := gt.R1(auth.NewTokenService(testSecret, time.Hour)).NoError(t)
		_, err := svc.Validate("not-a-token")
		gt.True(t, errors.Is(err, types.ErrUnauthorized))
		gt.V(t, types.ReasonOf(err)).Equal("Invalid token")
	})

	t.Run("short secret is not accepted", func(t *testing.T) {
		_, err := auth.NewTokenService("short", time.Hour)
		gt.True(t, errors.Is(err, types.ErrInvalidOption))
	})

	t.Run("non-positive TTL is not accepted", func(t *testing.T) {
		_, err := auth.NewTokenService(testSecret, 0)
		gt.True(t, errors.Is(err, types.ErrInvalidOption))
	})
}

func TestPasswordService(t *testing.T) {
	svc := gt.R1(auth.NewPasswordService(bcrypt.MinCost)).NoError(t)

	t.Run("hash and verify", func(t *testing.T) {
		hash := gt.R1(svc.Hash("correct horse battery staple")).NoError(t)
		gt.V(t, hash).NotEqual("correct horse battery staple")
		gt.NoError(t, svc.Verify(hash, "correct horse battery staple"))
	})

	t.Run("wrong password is unauthorized", func(t *testing.T) {
		hash := gt.R1(svc.Hash("secret")).NoError(t)
		err := svc.Verify(hash, "not-secret")
		gt.True(t, errors.Is(err, types.ErrUnauthorized))
	})

	t.Run("same password produces different hashes", func(t *testing.T) {
		h1 := gt.R1(svc.Hash("secret")).NoError(t)
		h2 := gt.R1(svc.Hash("secret")).NoError(t)
		gt.V(t, h1).NotEqual(h2)
	})

	t.Run("too long password is rejected", func(t *testing.T) {
		_, err := svc.Hash(strings.Repeat("a", 73))
		gt.True(t, errors.Is(err, types.ErrValidationFailed))
	})

	t.Run("broken hash is an error but not unauthorized", func(t *testing.T) {
		err := svc.Verify("broken", "secret")
		gt.Error(t, err)
		gt.False(t, errors.Is(err, types.ErrUnauthorized))
	})

	t.Run("cost out of range", func(t *testing.T) {
		_, err := auth.NewPasswordService(bcrypt.MaxCost + 1)
		gt.True(t, errors.Is(err, types.ErrInvalidOption))
	})
}
