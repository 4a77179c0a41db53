package auth

import (
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/repovault/pkg/domain/interfaces"
	"github.com/secmon-lab/repovault/pkg/domain/types"
	"golang.org/x/crypto/bcrypt"
)

// bcrypt ignores input beyond this length
const maxPasswordBytes = 72

type PasswordService struct {
	cost int
}

var _ interfaces.PasswordService = (*PasswordService)(nil)

// NewPasswordService returns bcrypt based hashing. Zero cost means bcrypt.DefaultCost.
func NewPasswordService(cost int) (*PasswordService, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, goerr.Wrap(types.ErrInvalidOption, "bcrypt cost is out of range",
			goerr.V("cost", cost),
			goerr.V("min", bcrypt.MinCost),
			goerr.V("max", bcrypt.MaxCost),
		)
	}
	return &PasswordService{cost: cost}, nil
}

func (x *PasswordService) Hash(password string) (string, error) {
	if len(password) > maxPasswordBytes {
		return "", goerr.Wrap(types.ErrValidationFailed, "password is too long",
			types.Reason("Password must be at most 72 bytes"),
		)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), x.cost)
	if err != nil {
		return "", goerr.Wrap(err, "failed to hash password")
	}
	return string(hashed), nil
}

func (x *PasswordService) Verify(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return goerr.Wrap(types.ErrUnauthorized, "password mismatch")
		}
		return goerr.Wrap(err, "failed to compare password hash")
	}
	return nil
}
