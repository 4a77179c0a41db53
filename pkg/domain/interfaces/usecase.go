package interfaces

import (
	"context"

	"github.com/secmon-lab/repovault/pkg/domain/model"
	"github.com/secmon-lab/repovault/pkg/domain/types"
)

type UseCase interface {
	// Users
	Signup(ctx context.Context, input *model.SignupInput) (*model.AuthResult, error)
	Login(ctx context.Context, input *model.LoginInput) (*model.AuthResult, error)
	Authenticate(ctx context.Context, token string) (types.UserID, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
	GetProfile(ctx context.Context, id types.UserID) (*model.User, error)
	UpdateProfile(ctx context.Context, id types.UserID, input *model.UpdateProfileInput) (*model.User, error)
	DeleteProfile(ctx context.Context, id types.UserID) error

	// Repositories
	CreateRepository(ctx context.Context, input *model.CreateRepositoryInput) (*model.Repository, error)
	ListRepositories(ctx context.Context) ([]*model.RepositoryView, error)
	GetRepository(ctx context.Context, id types.RepoID) (*model.RepositoryView, error)
	GetRepositoryByName(ctx context.Context, name string) (*model.RepositoryView, error)
	ResolveRepository(ctx context.Context, idOrName string) (*model.RepositoryView, error)
	ListRepositoriesByOwner(ctx context.Context, owner types.UserID) ([]*model.RepositoryView, error)
	UpdateRepository(ctx context.Context, id types.RepoID, input *model.UpdateRepositoryInput) (*model.Repository, error)
	ToggleVisibility(ctx context.Context, id types.RepoID, input *model.ToggleVisibilityInput) (*model.Repository, error)
	DeleteRepository(ctx context.Context, id types.RepoID) error

	// Files
	AddFile(ctx context.Context, id types.RepoID, input *model.FileInput) (*model.FileDescriptor, error)
	UpdateFile(ctx context.Context, id types.RepoID, input *model.FileInput) (*model.FileDescriptor, error)
	DeleteFile(ctx context.Context, id types.RepoID, filename string) error
	GetFile(ctx context.Context, id types.RepoID, filename string) (*model.FileContent, error)
	PushFiles(ctx context.Context, id types.RepoID, input *model.PushInput) ([]model.FileDescriptor, error)
	PullFiles(ctx context.Context, id types.RepoID) ([]*model.PulledFile, error)

	// Issues
	CreateIssue(ctx context.Context, repoID types.RepoID, input *model.CreateIssueInput) (*model.Issue, error)
	ListIssues(ctx context.Context, repoID types.RepoID) ([]*model.Issue, error)
	GetIssue(ctx context.Context, repoID types.RepoID, id types.IssueID) (*model.IssueView, error)
	UpdateIssue(ctx context.Context, repoID types.RepoID, id types.IssueID, input *model.UpdateIssueInput) (*model.Issue, error)
	DeleteIssue(ctx context.Context, repoID types.RepoID, id types.IssueID) error

	// Realtime
	SubscribeEvents(ctx context.Context, userID types.UserID) (Subscription, error)
}
