package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/repovault/pkg/domain/model"
	"github.com/secmon-lab/repovault/pkg/domain/types"
	"github.com/secmon-lab/repovault/pkg/utils/logging"
)

// checkRevision fails when the caller saw another revision than the stored one. Nil skips the check.
func checkRevision(repo *model.Repository, expected *int64) error {
	if expected == nil || *expected == repo.Revision {
		return nil
	}
	return goerr.Wrap(types.ErrConflict, "repository revision mismatch",
		goerr.V("repo_id", repo.ID),
		goerr.V("expected", *expected),
		goerr.V("actual", repo.Revision),
		types.Reason("Repository was modified concurrently"),
	)
}

func (x *UseCase) CreateRepository(ctx context.Context, input *model.CreateRepositoryInput) (*model.Repository, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	ts := now(ctx)
	repo := &model.Repository{
		ID:          types.NewRepoID(),
		Name:        input.Name,
		Description: input.Description,
		Owner:       input.Owner,
		Visibility:  input.Public(),
		Issues:      []types.IssueID{},
		Content:     []model.FileDescriptor{},
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}

	if err := x.clients.Database().CreateRepository(ctx, repo); err != nil {
		return nil, conflict(notFound(err, "User not found"), "Repository already exists")
	}

	logging.From(ctx).Info("repository created", "repo_id", repo.ID, "name", repo.Name, "owner", repo.Owner)
	x.publish(ctx, repo.Owner, &model.Event{
		Type:    types.EventRepositoryCreated,
		RepoID:  repo.ID,
		Message: "Repository " + repo.Name + " created",
	})

	return repo, nil
}

// view resolves owner and issues. A deleted owner is reported as nil.
func (x *UseCase) view(ctx context.Context, repo *model.Repository) (*model.RepositoryView, error) {
	db := x.clients.Database()

	owner, err := db.GetUser(ctx, repo.Owner)
	if err != nil {
		if !errors.Is(err, types.ErrNotFound) {
			return nil, err
		}
		owner = nil
	}

	issues, err := db.ListIssues(ctx, repo.ID)
	if err != nil {
		return nil, err
	}
	if issues == nil {
		issues = []*model.Issue{}
	}

	return &model.RepositoryView{
		Repository: repo,
		Owner:      owner,
		Issues:     issues,
	}, nil
}

func (x *UseCase) views(ctx context.Context, repos []*model.Repository) ([]*model.RepositoryView, error) {
	views := make([]*model.RepositoryView, 0, len(repos))
	for _, repo := range repos {
		v, err := x.view(ctx, repo)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

func (x *UseCase) ListRepositories(ctx context.Context) ([]*model.RepositoryView, error) {
	repos, err := x.clients.Database().ListRepositories(ctx)
	if err != nil {
		return nil, err
	}
	return x.views(ctx, repos)
}

func (x *UseCase) getRepository(ctx context.Context, id types.RepoID) (*model.Repository, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	repo, err := x.clients.Database().GetRepository(ctx, id)
	if err != nil {
		return nil, notFound(err, "Repository not found")
	}
	return repo, nil
}

func (x *UseCase) GetRepository(ctx context.Context, id types.RepoID) (*model.RepositoryView, error) {
	repo, err := x.getRepository(ctx, id)
	if err != nil {
		return nil, err
	}
	return x.view(ctx, repo)
}

func (x *UseCase) GetRepositoryByName(ctx context.Context, name string) (*model.RepositoryView, error) {
	if name == "" {
		return nil, goerr.Wrap(types.ErrValidationFailed, "repository name is empty",
			types.Reason("Repository name is required"))
	}

	repo, err := x.clients.Database().GetRepositoryByName(ctx, name)
	if err != nil {
		return nil, notFound(err, "Repository not found")
	}
	return x.view(ctx, repo)
}

// ResolveRepository looks up by ID when idOrName is a well-formed ID, and by name otherwise or when no
// repository has that ID.
func (x *UseCase) ResolveRepository(ctx context.Context, idOrName string) (*model.RepositoryView, error) {
	if types.RepoID(idOrName).Validate() == nil {
		view, err := x.GetRepository(ctx, types.RepoID(idOrName))
		if err == nil || !errors.Is(err, types.ErrNotFound) {
			return view, err
		}
	}
	return x.GetRepositoryByName(ctx, idOrName)
}

func (x *UseCase) ListRepositoriesByOwner(ctx context.Context, owner types.UserID) ([]*model.RepositoryView, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}

	repos, err := x.clients.Database().ListRepositoriesByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	if len(repos) == 0 {
		return nil, goerr.Wrap(types.ErrNotFound, "no repository of owner",
			goerr.V("owner", owner),
			types.Reason("User repositories not found"))
	}
	return x.views(ctx, repos)
}

func (x *UseCase) UpdateRepository(ctx context.Context, id types.RepoID, input *model.UpdateRepositoryInput) (*model.Repository, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var (
		before  *model.Repository
		written []model.FileDescriptor
	)
	if input.Content != nil {
		var err error
		if before, err = x.getRepository(ctx, id); err != nil {
			return nil, err
		}
		if written, err = x.writeBlobs(ctx, id, input.Content); err != nil {
			return nil, err
		}
	}

	var dropped []model.FileDescriptor
	ts := now(ctx)
	repo, err := x.clients.Database().UpdateRepository(ctx, id, func(repo *model.Repository) error {
		if err := checkRevision(repo, input.Revision); err != nil {
			return err
		}
		if input.Name != nil {
			repo.Name = *input.Name
		}
		if input.Description != nil {
			repo.Description = *input.Description
		}
		if input.Content != nil {
			dropped = droppedFiles(repo.Content, written)
			repo.Content = written
		}
		repo.UpdatedAt = ts
		return nil
	})
	if err != nil {
		if before != nil {
			x.discardNewBlobs(ctx, before.Content, written)
		}
		return nil, conflict(notFound(err, "Repository not found"), "Repository name already exists")
	}
	x.deleteBlobs(ctx, dropped)

	x.publish(ctx, repo.Owner, &model.Event{
		Type:    types.EventRepositoryUpdated,
		RepoID:  repo.ID,
		Message: "Repository " + repo.Name + " updated",
	})
	return repo, nil
}

func (x *UseCase) ToggleVisibility(ctx context.Context, id types.RepoID, input *model.ToggleVisibilityInput) (*model.Repository, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if input == nil {
		input = &model.ToggleVisibilityInput{}
	}

	ts := now(ctx)
	repo, err := x.clients.Database().UpdateRepository(ctx, id, func(repo *model.Repository) error {
		if err := checkRevision(repo, input.Revision); err != nil {
			return err
		}
		repo.Visibility = !repo.Visibility
		repo.UpdatedAt = ts
		return nil
	})
	if err != nil {
		return nil, notFound(err, "Repository not found")
	}

	x.publish(ctx, repo.Owner, &model.Event{
		Type:    types.EventRepositoryToggled,
		RepoID:  repo.ID,
		Message: "Repository " + repo.Name + " visibility changed",
	})
	return repo, nil
}

// DeleteRepository removes the record only. Blobs and issues are kept.
func (x *UseCase) DeleteRepository(ctx context.Context, id types.RepoID) error {
	repo, err := x.getRepository(ctx, id)
	if err != nil {
		return err
	}

	if err := x.clients.Database().DeleteRepository(ctx, id); err != nil {
		return notFound(err, "Repository not found")
	}

	logging.From(ctx).Info("repository deleted", "repo_id", id, "name", repo.Name)
	x.publish(ctx, repo.Owner, &model.Event{
		Type:    types.EventRepositoryDeleted,
		RepoID:  id,
		Message: "Repository " + repo.Name + " deleted",
	})
	return nil
}
