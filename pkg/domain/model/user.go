package model

import (
	"time"

	"github.com/secmon-lab/repovault/pkg/domain/types"
)

// User is an account. PasswordHash is never serialized to API responses.
type User struct {
	ID            types.UserID   `json:"id"`
	Username      string         `json:"username"`
	Email         string         `json:"email"`
	PasswordHash  string         `json:"-"`
	Repositories  []types.RepoID `json:"repositories"`
	FollowedUsers []types.UserID `json:"followedUsers"`
	StarredRepos  []types.RepoID `json:"starRepos"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

func (x *User) Copy() *User {
	if x == nil {
		return nil
	}
	c := *x
	c.Repositories = cloneSlice(x.Repositories)
	c.FollowedUsers = cloneSlice(x.FollowedUsers)
	c.StarredRepos = cloneSlice(x.StarredRepos)
	return &c
}

// AuthResult is returned by signup and login.
type AuthResult struct {
	UserID types.UserID
	Token  string
}
