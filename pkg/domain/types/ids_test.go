package types_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/repovault/pkg/domain/types"
)

func TestIDValidate(t *testing.T) {
	t.Run("generated IDs are well-formed", func(t *testing.T) {
		gt.NoError(t, types.NewUserID().Validate())
		gt.NoError(t, types.NewRepoID().Validate())
		gt.NoError(t, types.NewIssueID().Validate())
		gt.NoError(t, types.NewCommitID().Validate())
	})

	t.Run("malformed ID fails as validation error", func(t *testing.T) {
		err := types.RepoID("demo").Validate()
		gt.Error(t, err)
		gt.True(t, errors.Is(err, types.ErrValidationFailed))
		gt.V(t, types.ReasonOf(err)).Equal("Invalid Repository ID")
	})

	t.Run("empty ID fails", func(t *testing.T) {
		gt.Error(t, types.UserID("").Validate())
	})
}

func TestReasonOf(t *testing.T) {
	t.Run("reason is read from wrapped error", func(t *testing.T) {
		err := goerr.Wrap(types.ErrNotFound, "user not found", types.Reason("User not found"))
		gt.V(t, types.ReasonOf(err)).Equal("User not found")
	})

	t.Run("no reason on plain error", func(t *testing.T) {
		gt.V(t, types.ReasonOf(errors.New("boom"))).Equal("")
	})
}

func TestSecretMasking(t *testing.T) {
	secret := types.JWTSecret("super-secret")
	gt.V(t, secret.String()).Equal("***********")
	gt.V(t, secret.LogValue().String()).Equal("***********")
}
