package usecase_test

import (
	"context"
	"sync"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/repovault/pkg/domain/model"
	"github.com/secmon-lab/repovault/pkg/domain/types"
)

func boolPtr(b bool) *bool    { return &b }
func int64Ptr(v int64) *int64 { return &v }

func TestCreateRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("create then fetch by name", func(t *testing.T) {
		uc := newUseCase(t)
		owner := signup(t, uc, "alice")

		repo := gt.R1(uc.CreateRepository(ctx, &model.CreateRepositoryInput{
			Name:        "demo",
			Description: "demo repository",
			Owner:       owner,
		})).NoError(t)
		gt.NoError(t, repo.ID.Validate())
		gt.True(t, repo.Visibility)

		view := gt.R1(uc.ResolveRepository(ctx, "demo")).NoError(t)
		gt.V(t, view.ID).Equal(repo.ID)
		gt.V(t, view.Owner.ID).Equal(owner)
		gt.A(t, view.Issues).Length(0)

		view = gt.R1(uc.ResolveRepository(ctx, string(repo.ID))).NoError(t)
		gt.V(t, view.Name).Equal("demo")

		profile := gt.R1(uc.GetProfile(ctx, owner)).NoError(t)
		gt.V(t, profile.Repositories).Equal([]types.RepoID{repo.ID})
	})

	t.Run("visibility from isPrivate", func(t *testing.T) {
		uc := newUseCase(t)
		owner := signup(t, uc, "alice")

		repo := gt.R1(uc.CreateRepository(ctx, &model.CreateRepositoryInput{
			Name:      "private",
			Owner:     owner,
			IsPrivate: boolPtr(true),
		})).NoError(t)
		gt.False(t, repo.Visibility)
	})

	t.Run("name is required", func(t *testing.T) {
		uc := newUseCase(t)
		owner := signup(t, uc, "alice")

		_, err := uc.CreateRepository(ctx, &model.CreateRepositoryInput{Owner: owner})
		assertErr(t, err, types.ErrValidationFailed, "Repository name is required")
	})

	t.Run("duplicated name", func(t *testing.T) {
		uc := newUseCase(t)
		owner := signup(t, uc, "alice")
		createRepo(t, uc, owner, "demo")

		_, err := uc.CreateRepository(ctx, &model.CreateRepositoryInput{Name: "demo", Owner: owner})
		assertErr(t, err, types.ErrConflict, "Repository already exists")
	})

	t.Run("unknown owner", func(t *testing.T) {
		uc := newUseCase(t)
		_, err := uc.CreateRepository(ctx, &model.CreateRepositoryInput{Name: "demo", Owner: types.NewUserID()})
		assertErr(t, err, types.ErrNotFound, "User not found")
	})
}

func TestReadRepositories(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown id and name", func(t *testing.T) {
		uc := newUseCase(t)
		_, err := uc.GetRepository(ctx, types.NewRepoID())
		assertErr(t, err, types.ErrNotFound, "Repository not found")

		_, err = uc.ResolveRepository(ctx, "missing")
		assertErr(t, err, types.ErrNotFound, "Repository not found")
	})

	t.Run("list by owner", func(t *testing.T) {
		uc := newUseCase(t)
		alice := signup(t, uc, "alice")
		bob := signup(t, uc, "bob")
		createRepo(t, uc, alice, "r1")
		createRepo(t, uc, alice, "r2")

		views := gt.R1(uc.ListRepositoriesByOwner(ctx, alice)).NoError(t)
		gt.A(t, views).Length(2)

		_, err := uc.ListRepositoriesByOwner(ctx, bob)
		assertErr(t, err, types.ErrNotFound, "User repositories not found")

		all := gt.R1(uc.ListRepositories(ctx)).NoError(t)
		gt.A(t, all).Length(2)
	})

	t.Run("deleted owner is resolved as nil", func(t *testing.T) {
		uc := newUseCase(t)
		alice := signup(t, uc, "alice")
		repo := createRepo(t, uc, alice, "orphan")
		gt.NoError(t, uc.DeleteProfile(ctx, alice))

		view := gt.R1(uc.GetRepository(ctx, repo.ID)).NoError(t)
		gt.V(t, view.Owner == nil).Equal(true)
	})
}

func TestUpdateRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("rename and describe", func(t *testing.T) {
		uc := newUseCase(t)
		owner := signup(t, uc, "alice")
		repo := createRepo(t, uc, owner, "old")

		updated := gt.R1(uc.UpdateRepository(ctx, repo.ID, &model.UpdateRepositoryInput{
			Name:        strPtr("new"),
			Description: strPtr("renamed"),
		})).NoError(t)
		gt.V(t, updated.Name).Equal("new")
		gt.V(t, updated.Description).Equal("renamed")
		gt.V(t, updated.Revision).Equal(repo.Revision + 1)

		_, err := uc.GetRepositoryByName(ctx, "old")
		assertErr(t, err, types.ErrNotFound, "")
		gt.R1(uc.GetRepositoryByName(ctx, "new")).NoError(t)
	})

	t.Run("rename to existing name", func(t *testing.T) {
		uc := newUseCase(t)
		owner := signup(t, uc, "alice")
		createRepo(t, uc, owner, "taken")
		repo := createRepo(t, uc, owner, "mine")

		_, err := uc.UpdateRepository(ctx, repo.ID, &model.UpdateRepositoryInput{Name: strPtr("taken")})
		assertErr(t, err, types.ErrConflict, "Repository name already exists")
	})

	t.Run("content replaces files", func(t *testing.T) {
		uc := newUseCase(t)
		owner := signup(t, uc, "alice")
		repo := createRepo(t, uc, owner, "demo")

		updated := gt.R1(uc.UpdateRepository(ctx, repo.ID, &model.UpdateRepositoryInput{
			Content: []model.FileInput{{Filename: "a.txt", Content: "A"}},
		})).NoError(t)
		gt.A(t, updated.Content).Length(1)

		file := gt.R1(uc.GetFile(ctx, repo.ID, "a.txt")).NoError(t)
		gt.V(t, string(file.Content)).Equal("A")
	})

	t.Run("stale revision", func(t *testing.T) {
		uc := newUseCase(t)
		owner := signup(t, uc, "alice")
		repo := createRepo(t, uc, owner, "demo")

		_, err := uc.UpdateRepository(ctx, repo.ID, &model.UpdateRepositoryInput{
			Description: strPtr("x"),
			Revision:    int64Ptr(repo.Revision + 10),
		})
		assertErr(t, err, types.ErrConflict, "Repository was modified concurrently")
	})
}

func TestToggleVisibility(t *testing.T) {
	ctx := context.Background()
	uc := newUseCase(t)
	owner := signup(t, uc, "alice")
	repo := createRepo(t, uc, owner, "demo")

	t.Run("toggle flips and increments revision", func(t *testing.T) {
		r1 := gt.R1(uc.ToggleVisibility(ctx, repo.ID, nil)).NoError(t)
		gt.False(t, r1.Visibility)

		r2 := gt.R1(uc.ToggleVisibility(ctx, repo.ID, &model.ToggleVisibilityInput{Revision: int64Ptr(r1.Revision)})).NoError(t)
		gt.True(t, r2.Visibility)
		gt.V(t, r2.Revision).Equal(r1.Revision + 1)
	})

	t.Run("stale revision does not flip", func(t *testing.T) {
		before := gt.R1(uc.GetRepository(ctx, repo.ID)).NoError(t)
		_, err := uc.ToggleVisibility(ctx, repo.ID, &model.ToggleVisibilityInput{Revision: int64Ptr(before.Revision - 1)})
		assertErr(t, err, types.ErrConflict, "Repository was modified concurrently")

		after := gt.R1(uc.GetRepository(ctx, repo.ID)).NoError(t)
		gt.V(t, after.Visibility).Equal(before.Visibility)
	})

	t.Run("concurrent toggles are not lost", func(t *testing.T) {
		const n = 7
		before := gt.R1(uc.GetRepository(ctx, repo.ID)).NoError(t)

		var wg sync.WaitGroup
		errs := make(chan error, n)
		for range n {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := uc.ToggleVisibility(ctx, repo.ID, nil)
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			gt.NoError(t, err)
		}

		after := gt.R1(uc.GetRepository(ctx, repo.ID)).NoError(t)
		gt.V(t, after.Visibility).Equal(before.Visibility != (n%2 == 1))
		gt.V(t, after.Revision).Equal(before.Revision + n)
	})

	t.Run("unknown repository", func(t *testing.T) {
		_, err := uc.ToggleVisibility(ctx, types.NewRepoID(), nil)
		assertErr(t, err, types.ErrNotFound, "Repository not found")
	})
}

func TestDeleteRepository(t *testing.T) {
	ctx := context.Background()
	uc := newUseCase(t)
	owner := signup(t, uc, "alice")
	repo := createRepo(t, uc, owner, "demo")

	gt.NoError(t, uc.DeleteRepository(ctx, repo.ID))

	_, err := uc.GetRepository(ctx, repo.ID)
	assertErr(t, err, types.ErrNotFound, "Repository not found")

	err = uc.DeleteRepository(ctx, repo.ID)
	assertErr(t, err, types.ErrNotFound, "Repository not found")

	profile := gt.R1(uc.GetProfile(ctx, owner)).NoError(t)
	gt.A(t, profile.Repositories).Length(0)
}
