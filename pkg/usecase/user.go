package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/repovault/pkg/domain/interfaces"
	"github.com/secmon-lab/repovault/pkg/domain/model"
	"github.com/secmon-lab/repovault/pkg/domain/types"
	"github.com/secmon-lab/repovault/pkg/utils/logging"
)

var errServiceNotConfigured = goerr.New("service is not configured")

func invalidCredentials(opts ...goerr.Option) error {
	return goerr.Wrap(types.ErrUnauthorized, "invalid credentials",
		append(opts, types.Reason("Invalid email or password"))...)
}

func (x *UseCase) issueToken(userID types.UserID) (string, error) {
	svc := x.clients.TokenService()
	if svc == nil {
		return "", goerr.Wrap(errServiceNotConfigured, "token service is not set")
	}
	return svc.Generate(userID)
}

func (x *UseCase) passwordService() (interfaces.PasswordService, error) {
	svc := x.clients.PasswordService()
	if svc == nil {
		return nil, goerr.Wrap(errServiceNotConfigured, "password service is not set")
	}
	return svc, nil
}

func (x *UseCase) Signup(ctx context.Context, input *model.SignupInput) (*model.AuthResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	pw, err := x.passwordService()
	if err != nil {
		return nil, err
	}
	hash, err := pw.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	ts := now(ctx)
	user := &model.User{
		ID:            types.NewUserID(),
		Username:      input.Username,
		Email:         model.NormalizeEmail(input.Email),
		PasswordHash:  hash,
		Repositories:  []types.RepoID{},
		FollowedUsers: []types.UserID{},
		StarredRepos:  []types.RepoID{},
		CreatedAt:     ts,
		UpdatedAt:     ts,
	}

	if err := x.clients.Database().CreateUser(ctx, user); err != nil {
		return nil, conflict(err, "User already exists")
	}

	token, err := x.issueToken(user.ID)
	if err != nil {
		return nil, err
	}

	logging.From(ctx).Info("user signed up", "user_id", user.ID, "username", user.Username)
	return &model.AuthResult{UserID: user.ID, Token: token}, nil
}

func (x *UseCase) Login(ctx context.Context, input *model.LoginInput) (*model.AuthResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	user, err := x.clients.Database().GetUserByEmail(ctx, model.NormalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, invalidCredentials(goerr.V("cause", "unknown email"))
		}
		return nil, err
	}

	pw, err := x.passwordService()
	if err != nil {
		return nil, err
	}
	if err := pw.Verify(user.PasswordHash, input.Password); err != nil {
		if errors.Is(err, types.ErrUnauthorized) {
			return nil, invalidCredentials(goerr.V("user_id", user.ID))
		}
		return nil, err
	}

	token, err := x.issueToken(user.ID)
	if err != nil {
		return nil, err
	}

	return &model.AuthResult{UserID: user.ID, Token: token}, nil
}

// Authenticate returns the user bound to a session token.
func (x *UseCase) Authenticate(ctx context.Context, token string) (types.UserID, error) {
	svc := x.clients.TokenService()
	if svc == nil {
		return "", goerr.Wrap(errServiceNotConfigured, "token service is not set")
	}
	return svc.Validate(token)
}

func (x *UseCase) ListUsers(ctx context.Context) ([]*model.User, error) {
	return x.clients.Database().ListUsers(ctx)
}

func (x *UseCase) GetProfile(ctx context.Context, id types.UserID) (*model.User, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	user, err := x.clients.Database().GetUser(ctx, id)
	if err != nil {
		return nil, notFound(err, "User not found")
	}
	return user, nil
}

func (x *UseCase) UpdateProfile(ctx context.Context, id types.UserID, input *model.UpdateProfileInput) (*model.User, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var hash string
	if input.Password != nil && *input.Password != "" {
		pw, err := x.passwordService()
		if err != nil {
			return nil, err
		}
		if hash, err = pw.Hash(*input.Password); err != nil {
			return nil, err
		}
	}

	ts := now(ctx)
	user, err := x.clients.Database().UpdateUser(ctx, id, func(user *model.User) error {
		if input.Email != nil && *input.Email != "" {
			user.Email = model.NormalizeEmail(*input.Email)
		}
		if hash != "" {
			user.PasswordHash = hash
		}
		user.UpdatedAt = ts
		return nil
	})
	if err != nil {
		return nil, conflict(notFound(err, "User not found"), "Email already in use")
	}

	return user, nil
}

func (x *UseCase) DeleteProfile(ctx context.Context, id types.UserID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	if err := x.clients.Database().DeleteUser(ctx, id); err != nil {
		return notFound(err, "User not found")
	}

	logging.From(ctx).Info("user deleted", "user_id", id)
	return nil
}
