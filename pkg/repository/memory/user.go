package memory

import (
	"context"
	"slices"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/repovault/pkg/domain/model"
	"github.com/secmon-lab/repovault/pkg/domain/types"
	"github.com/secmon-lab/repovault/pkg/repository"
)

// User operations

func (d *database) CreateUser(ctx context.Context, user *model.User) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.users[user.ID]; exists {
		return goerr.Wrap(repository.ErrAlreadyExists, "user ID already exists", goerr.V("userID", user.ID))
	}
	if _, exists := d.usernames[user.Username]; exists {
		return goerr.Wrap(repository.ErrAlreadyExists, "username already exists", goerr.V("username", user.Username))
	}
	if _, exists := d.emails[user.Email]; exists {
		return goerr.Wrap(repository.ErrAlreadyExists, "email already exists", goerr.V("email", user.Email))
	}

	d.users[user.ID] = user.Copy()
	d.usernames[user.Username] = user.ID
	d.emails[user.Email] = user.ID
	return nil
}

func (d *database) GetUser(ctx context.Context, id types.UserID) (*model.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	user, exists := d.users[id]
	if !exists {
		return nil, goerr.Wrap(repository.ErrNotFound, "user not found", goerr.V("userID", id))
	}
	return user.Copy(), nil
}

func (d *database) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	id, exists := d.emails[email]
	if !exists {
		return nil, goerr.Wrap(repository.ErrNotFound, "user not found", goerr.V("email", email))
	}
	return d.users[id].Copy(), nil
}

func (d *database) ListUsers(ctx context.Context) ([]*model.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	users := make([]*model.User, 0, len(d.users))
	for _, user := range d.users {
		users = append(users, user.Copy())
	}
	slices.SortFunc(users, func(a, b *model.User) int {
		return strings.Compare(string(a.ID), string(b.ID))
	})
	return users, nil
}

func (d *database) UpdateUser(ctx context.Context, id types.UserID, update func(user *model.User) error) (*model.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	current, exists := d.users[id]
	if !exists {
		return nil, goerr.Wrap(repository.ErrNotFound, "user not found", goerr.V("userID", id))
	}

	updated := current.Copy()
	if err := update(updated); err != nil {
		return nil, err
	}
	updated.ID = id

	if updated.Username != current.Username {
		if other, exists := d.usernames[updated.Username]; exists && other != id {
			return nil, goerr.Wrap(repository.ErrAlreadyExists, "username already exists", goerr.V("username", updated.Username))
		}
	}
	if updated.Email != current.Email {
		if other, exists := d.emails[updated.Email]; exists && other != id {
			return nil, goerr.Wrap(repository.ErrAlreadyExists, "email already exists", goerr.V("email", updated.Email))
		}
	}

	delete(d.usernames, current.Username)
	delete(d.emails, current.Email)
	d.usernames[updated.Username] = id
	d.emails[updated.Email] = id
	d.users[id] = updated

	return updated.Copy(), nil
}

func (d *database) DeleteUser(ctx context.Context, id types.UserID) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	user, exists := d.users[id]
	if !exists {
		return goerr.Wrap(repository.ErrNotFound, "user not found", goerr.V("userID", id))
	}

	delete(d.usernames, user.Username)
	delete(d.emails, user.Email)
	delete(d.users, id)
	return nil
}
