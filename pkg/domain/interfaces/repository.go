package interfaces

import (
	"context"

	"github.com/secmon-lab/repovault/pkg/domain/model"
	"github.com/secmon-lab/repovault/pkg/domain/types"
)

// Database stores users, repositories and issues. Uniqueness of usernames,
// emails and repository names, and the reference lists between entities, are
// maintained by the implementation atomically.
type Database interface {
	// User operations
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id types.UserID) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
	UpdateUser(ctx context.Context, id types.UserID, update func(user *model.User) error) (*model.User, error)
	DeleteUser(ctx context.Context, id types.UserID) error

	// Repository operations
	CreateRepository(ctx context.Context, repo *model.Repository) error
	GetRepository(ctx context.Context, id types.RepoID) (*model.Repository, error)
	GetRepositoryByName(ctx context.Context, name string) (*model.Repository, error)
	ListRepositories(ctx context.Context) ([]*model.Repository, error)
	ListRepositoriesByOwner(ctx context.Context, owner types.UserID) ([]*model.Repository, error)
	UpdateRepository(ctx context.Context, id types.RepoID, update func(repo *model.Repository) error) (*model.Repository, error)
	DeleteRepository(ctx context.Context, id types.RepoID) error

	// Issue operations
	CreateIssue(ctx context.Context, issue *model.Issue) error
	GetIssue(ctx context.Context, id types.IssueID) (*model.Issue, error)
	ListIssues(ctx context.Context, repoID types.RepoID) ([]*model.Issue, error)
	UpdateIssue(ctx context.Context, id types.IssueID, update func(issue *model.Issue) error) (*model.Issue, error)
	DeleteIssue(ctx context.Context, id types.IssueID) error

	Close() error
}
