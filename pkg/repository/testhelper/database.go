package testhelper

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/repovault/pkg/domain/interfaces"
	"github.com/secmon-lab/repovault/pkg/domain/model"
	"github.com/secmon-lab/repovault/pkg/domain/types"
	"github.com/secmon-lab/repovault/pkg/repository"
)

// TestAll runs all test cases for Database
// This is the main entry point for testing any Database implementation
func TestAll(t *testing.T, db interfaces.Database) {
	t.Run("UserCRUD", func(t *testing.T) {
		TestUserCRUD(t, db)
	})
	t.Run("UserUniqueness", func(t *testing.T) {
		TestUserUniqueness(t, db)
	})
	t.Run("RepositoryCRUD", func(t *testing.T) {
		TestRepositoryCRUD(t, db)
	})
	t.Run("RepositoryNameUniqueness", func(t *testing.T) {
		TestRepositoryNameUniqueness(t, db)
	})
	t.Run("RepositoryUpdateAbort", func(t *testing.T) {
		TestRepositoryUpdateAbort(t, db)
	})
	t.Run("IssueCRUD", func(t *testing.T) {
		TestIssueCRUD(t, db)
	})
}

func suffix() string {
	return uuid.New().String()[:8]
}

// NewUser builds a user with unique username and email
func NewUser() *model.User {
	s := suffix()
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &model.User{
		ID:        types.NewUserID(),
		Username:  "user-" + s,
		Email:     fmt.Sprintf("user-%s@example.com", s),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewRepository builds a repository with unique name owned by owner
func NewRepository(owner types.UserID) *model.Repository {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &model.Repository{
		ID:         types.NewRepoID(),
		Name:       "repo-" + suffix(),
		Owner:      owner,
		Visibility: true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// TestUserCRUD tests basic CRUD operations for User
func TestUserCRUD(t *testing.T, db interfaces.Database) {
	ctx := context.Background()

	user := NewUser()
	user.PasswordHash = "hashed"
	gt.NoError(t, db.CreateUser(ctx, user))

	// Get by ID and email
	got, err := db.GetUser(ctx, user.ID)
	gt.NoError(t, err)
	gt.V(t, got.Username).Equal(user.Username)
	gt.V(t, got.Email).Equal(user.Email)
	gt.V(t, got.PasswordHash).Equal("hashed")

	got, err = db.GetUserByEmail(ctx, user.Email)
	gt.NoError(t, err)
	gt.V(t, got.ID).Equal(user.ID)

	users, err := db.ListUsers(ctx)
	gt.NoError(t, err)
	gt.True(t, slices.ContainsFunc(users, func(u *model.User) bool { return u.ID == user.ID }))

	// Change email, index follows
	newEmail := fmt.Sprintf("moved-%s@example.com", suffix())
	updated, err := db.UpdateUser(ctx, user.ID, func(u *model.User) error {
		u.Email = newEmail
		return nil
	})
	gt.NoError(t, err)
	gt.V(t, updated.Email).Equal(newEmail)

	got, err = db.GetUserByEmail(ctx, newEmail)
	gt.NoError(t, err)
	gt.V(t, got.ID).Equal(user.ID)

	_, err = db.GetUserByEmail(ctx, user.Email)
	gt.True(t, errors.Is(err, repository.ErrNotFound))

	// Delete
	gt.NoError(t, db.DeleteUser(ctx, user.ID))
	_, err = db.GetUser(ctx, user.ID)
	gt.True(t, errors.Is(err, repository.ErrNotFound))
	gt.True(t, errors.Is(err, types.ErrNotFound))

	err = db.DeleteUser(ctx, user.ID)
	gt.True(t, errors.Is(err, repository.ErrNotFound))

	_, err = db.UpdateUser(ctx, user.ID, func(u *model.User) error { return nil })
	gt.True(t, errors.Is(err, repository.ErrNotFound))
}

// TestUserUniqueness tests that usernames and emails are unique
func TestUserUniqueness(t *testing.T, db interfaces.Database) {
	ctx := context.Background()

	first := NewUser()
	gt.NoError(t, db.CreateUser(ctx, first))

	t.Run("duplicated username", func(t *testing.T) {
		dup := NewUser()
		dup.Username = first.Username
		err := db.CreateUser(ctx, dup)
		gt.True(t, errors.Is(err, repository.ErrAlreadyExists))
		gt.True(t, errors.Is(err, types.ErrConflict))

		_, err = db.GetUser(ctx, dup.ID)
		gt.True(t, errors.Is(err, repository.ErrNotFound))
	})

	t.Run("duplicated email", func(t *testing.T) {
		dup := NewUser()
		dup.Email = first.Email
		err := db.CreateUser(ctx, dup)
		gt.True(t, errors.Is(err, repository.ErrAlreadyExists))
	})

	t.Run("email update colliding with another user", func(t *testing.T) {
		second := NewUser()
		gt.NoError(t, db.CreateUser(ctx, second))

		_, err := db.UpdateUser(ctx, second.ID, func(u *model.User) error {
			u.Email = first.Email
			return nil
		})
		gt.True(t, errors.Is(err, repository.ErrAlreadyExists))

		got, err := db.GetUser(ctx, second.ID)
		gt.NoError(t, err)
		gt.V(t, got.Email).Equal(second.Email)
	})

	t.Run("email update to own email is allowed", func(t *testing.T) {
		_, err := db.UpdateUser(ctx, first.ID, func(u *model.User) error {
			u.PasswordHash = "rehashed"
			return nil
		})
		gt.NoError(t, err)
	})
}

// TestRepositoryCRUD tests basic CRUD operations for Repository
func TestRepositoryCRUD(t *testing.T, db interfaces.Database) {
	ctx := context.Background()

	owner := NewUser()
	gt.NoError(t, db.CreateUser(ctx, owner))

	repo := NewRepository(owner.ID)
	repo.Description = "first"
	gt.NoError(t, db.CreateRepository(ctx, repo))
	gt.V(t, repo.Revision).Equal(int64(1))

	// Owner is linked
	gotOwner, err := db.GetUser(ctx, owner.ID)
	gt.NoError(t, err)
	gt.True(t, slices.Contains(gotOwner.Repositories, repo.ID))

	// Reads
	got, err := db.GetRepository(ctx, repo.ID)
	gt.NoError(t, err)
	gt.V(t, got.Name).Equal(repo.Name)
	gt.V(t, got.Description).Equal("first")
	gt.V(t, got.Owner).Equal(owner.ID)
	gt.True(t, got.Visibility)
	gt.V(t, got.Revision).Equal(int64(1))

	got, err = db.GetRepositoryByName(ctx, repo.Name)
	gt.NoError(t, err)
	gt.V(t, got.ID).Equal(repo.ID)

	repos, err := db.ListRepositoriesByOwner(ctx, owner.ID)
	gt.NoError(t, err)
	gt.A(t, repos).Length(1)
	gt.V(t, repos[0].ID).Equal(repo.ID)

	all, err := db.ListRepositories(ctx)
	gt.NoError(t, err)
	gt.True(t, slices.ContainsFunc(all, func(r *model.Repository) bool { return r.ID == repo.ID }))

	// Update with rename and content
	newName := "renamed-" + suffix()
	updated, err := db.UpdateRepository(ctx, repo.ID, func(r *model.Repository) error {
		r.Name = newName
		r.Visibility = false
		r.Content = []model.FileDescriptor{
			{Filename: "README.md", Key: model.BlobKeyFor(r.ID, "README.md"), Size: 5, UploadedAt: time.Now().UTC()},
		}
		return nil
	})
	gt.NoError(t, err)
	gt.V(t, updated.Name).Equal(newName)
	gt.V(t, updated.Revision).Equal(int64(2))

	got, err = db.GetRepository(ctx, repo.ID)
	gt.NoError(t, err)
	gt.False(t, got.Visibility)
	gt.A(t, got.Content).Length(1)
	gt.V(t, got.Content[0].Filename).Equal("README.md")
	gt.V(t, got.Revision).Equal(int64(2))

	_, err = db.GetRepositoryByName(ctx, repo.Name)
	gt.True(t, errors.Is(err, repository.ErrNotFound))
	got, err = db.GetRepositoryByName(ctx, newName)
	gt.NoError(t, err)
	gt.V(t, got.ID).Equal(repo.ID)

	// Owner cannot be changed through update
	_, err = db.UpdateRepository(ctx, repo.ID, func(r *model.Repository) error {
		r.Owner = types.NewUserID()
		return nil
	})
	gt.NoError(t, err)
	got, err = db.GetRepository(ctx, repo.ID)
	gt.NoError(t, err)
	gt.V(t, got.Owner).Equal(owner.ID)

	// Delete
	gt.NoError(t, db.DeleteRepository(ctx, repo.ID))
	_, err = db.GetRepository(ctx, repo.ID)
	gt.True(t, errors.Is(err, repository.ErrNotFound))

	gotOwner, err = db.GetUser(ctx, owner.ID)
	gt.NoError(t, err)
	gt.False(t, slices.Contains(gotOwner.Repositories, repo.ID))

	repos, err = db.ListRepositoriesByOwner(ctx, owner.ID)
	gt.NoError(t, err)
	gt.A(t, repos).Length(0)

	err = db.DeleteRepository(ctx, repo.ID)
	gt.True(t, errors.Is(err, repository.ErrNotFound))

	// The freed name is reusable
	reuse := NewRepository(owner.ID)
	reuse.Name = newName
	gt.NoError(t, db.CreateRepository(ctx, reuse))

	// Unknown owner
	orphan := NewRepository(types.NewUserID())
	err = db.CreateRepository(ctx, orphan)
	gt.True(t, errors.Is(err, repository.ErrNotFound))
}

// TestRepositoryNameUniqueness tests that repository names are unique
func TestRepositoryNameUniqueness(t *testing.T, db interfaces.Database) {
	ctx := context.Background()

	owner := NewUser()
	gt.NoError(t, db.CreateUser(ctx, owner))

	first := NewRepository(owner.ID)
	gt.NoError(t, db.CreateRepository(ctx, first))

	dup := NewRepository(owner.ID)
	dup.Name = first.Name
	err := db.CreateRepository(ctx, dup)
	gt.True(t, errors.Is(err, repository.ErrAlreadyExists))

	second := NewRepository(owner.ID)
	gt.NoError(t, db.CreateRepository(ctx, second))

	_, err = db.UpdateRepository(ctx, second.ID, func(r *model.Repository) error {
		r.Name = first.Name
		return nil
	})
	gt.True(t, errors.Is(err, repository.ErrAlreadyExists))

	got, err := db.GetRepository(ctx, second.ID)
	gt.NoError(t, err)
	gt.V(t, got.Name).Equal(second.Name)
}

// TestRepositoryUpdateAbort tests that an error from the update function leaves the record untouched
func TestRepositoryUpdateAbort(t *testing.T, db interfaces.Database) {
	ctx := context.Background()

	owner := NewUser()
	gt.NoError(t, db.CreateUser(ctx, owner))
	repo := NewRepository(owner.ID)
	gt.NoError(t, db.CreateRepository(ctx, repo))

	errAbort := goerr.New("abort")
	_, err := db.UpdateRepository(ctx, repo.ID, func(r *model.Repository) error {
		r.Description = "should not persist"
		return errAbort
	})
	gt.True(t, errors.Is(err, errAbort))

	got, err := db.GetRepository(ctx, repo.ID)
	gt.NoError(t, err)
	gt.V(t, got.Description).Equal("")
	gt.V(t, got.Revision).Equal(int64(1))

	_, err = db.UpdateRepository(ctx, types.NewRepoID(), func(r *model.Repository) error { return nil })
	gt.True(t, errors.Is(err, repository.ErrNotFound))
}

// TestIssueCRUD tests basic CRUD operations for Issue
func TestIssueCRUD(t *testing.T, db interfaces.Database) {
	ctx := context.Background()

	owner := NewUser()
	gt.NoError(t, db.CreateUser(ctx, owner))
	repo := NewRepository(owner.ID)
	gt.NoError(t, db.CreateRepository(ctx, repo))

	now := time.Now().UTC().Truncate(time.Millisecond)
	issue := &model.Issue{
		ID:          types.NewIssueID(),
		Repository:  repo.ID,
		Title:       "crash on start",
		Description: "stack trace attached",
		Status:      types.IssueStatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	gt.NoError(t, db.CreateIssue(ctx, issue))

	gotRepo, err := db.GetRepository(ctx, repo.ID)
	gt.NoError(t, err)
	gt.True(t, slices.Contains(gotRepo.Issues, issue.ID))

	got, err := db.GetIssue(ctx, issue.ID)
	gt.NoError(t, err)
	gt.V(t, got.Title).Equal("crash on start")
	gt.V(t, got.Status).Equal(types.IssueStatusOpen)

	issues, err := db.ListIssues(ctx, repo.ID)
	gt.NoError(t, err)
	gt.A(t, issues).Length(1)

	updated, err := db.UpdateIssue(ctx, issue.ID, func(i *model.Issue) error {
		i.Status = types.IssueStatusClosed
		return nil
	})
	gt.NoError(t, err)
	gt.V(t, updated.Status).Equal(types.IssueStatusClosed)
	gt.V(t, updated.Title).Equal("crash on start")

	gt.NoError(t, db.DeleteIssue(ctx, issue.ID))
	_, err = db.GetIssue(ctx, issue.ID)
	gt.True(t, errors.Is(err, repository.ErrNotFound))

	gotRepo, err = db.GetRepository(ctx, repo.ID)
	gt.NoError(t, err)
	gt.False(t, slices.Contains(gotRepo.Issues, issue.ID))

	err = db.DeleteIssue(ctx, issue.ID)
	gt.True(t, errors.Is(err, repository.ErrNotFound))

	// Unknown repository
	orphan := &model.Issue{ID: types.NewIssueID(), Repository: types.NewRepoID(), Title: "x", Status: types.IssueStatusOpen}
	err = db.CreateIssue(ctx, orphan)
	gt.True(t, errors.Is(err, repository.ErrNotFound))
}
