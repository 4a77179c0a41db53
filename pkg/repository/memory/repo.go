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

// Repository operations

func (d *database) CreateRepository(ctx context.Context, repo *model.Repository) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.repos[repo.ID]; exists {
		return goerr.Wrap(repository.ErrAlreadyExists, "repository ID already exists", goerr.V("repoID", repo.ID))
	}
	if _, exists := d.repoNames[repo.Name]; exists {
		return goerr.Wrap(repository.ErrAlreadyExists, "repository name already exists", goerr.V("name", repo.Name))
	}
	owner, exists := d.users[repo.Owner]
	if !exists {
		return goerr.Wrap(repository.ErrNotFound, "owner not found", goerr.V("owner", repo.Owner))
	}

	stored := repo.Copy()
	stored.Revision = 1
	d.repos[repo.ID] = stored
	d.repoNames[repo.Name] = repo.ID
	if !slices.Contains(owner.Repositories, repo.ID) {
		owner.Repositories = append(owner.Repositories, repo.ID)
	}
	repo.Revision = stored.Revision
	return nil
}

func (d *database) GetRepository(ctx context.Context, id types.RepoID) (*model.Repository, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	repo, exists := d.repos[id]
	if !exists {
		return nil, goerr.Wrap(repository.ErrNotFound, "repository not found", goerr.V("repoID", id))
	}
	return repo.Copy(), nil
}

func (d *database) GetRepositoryByName(ctx context.Context, name string) (*model.Repository, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	id, exists := d.repoNames[name]
	if !exists {
		return nil, goerr.Wrap(repository.ErrNotFound, "repository not found", goerr.V("name", name))
	}
	return d.repos[id].Copy(), nil
}

func (d *database) ListRepositories(ctx context.Context) ([]*model.Repository, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.filterRepositories(func(*model.Repository) bool { return true }), nil
}

func (d *database) ListRepositoriesByOwner(ctx context.Context, owner types.UserID) ([]*model.Repository, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.filterRepositories(func(repo *model.Repository) bool { return repo.Owner == owner }), nil
}

func (d *database) filterRepositories(match func(*model.Repository) bool) []*model.Repository {
	var repos []*model.Repository
	for _, repo := range d.repos {
		if match(repo) {
			repos = append(repos, repo.Copy())
		}
	}
	slices.SortFunc(repos, func(a, b *model.Repository) int {
		return strings.Compare(string(a.ID), string(b.ID))
	})
	return repos
}

func (d *database) UpdateRepository(ctx context.Context, id types.RepoID, update func(repo *model.Repository) error) (*model.Repository, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	current, exists := d.repos[id]
	if !exists {
		return nil, goerr.Wrap(repository.ErrNotFound, "repository not found", goerr.V("repoID", id))
	}

	updated := current.Copy()
	if err := update(updated); err != nil {
		return nil, err
	}
	updated.ID = id
	updated.Owner = current.Owner
	updated.Revision = current.Revision + 1

	if updated.Name != current.Name {
		if _, exists := d.repoNames[updated.Name]; exists {
			return nil, goerr.Wrap(repository.ErrAlreadyExists, "repository name already exists", goerr.V("name", updated.Name))
		}
		delete(d.repoNames, current.Name)
		d.repoNames[updated.Name] = id
	}
	d.repos[id] = updated

	return updated.Copy(), nil
}

func (d *database) DeleteRepository(ctx context.Context, id types.RepoID) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	repo, exists := d.repos[id]
	if !exists {
		return goerr.Wrap(repository.ErrNotFound, "repository not found", goerr.V("repoID", id))
	}

	if owner, exists := d.users[repo.Owner]; exists {
		owner.Repositories = slices.DeleteFunc(owner.Repositories, func(v types.RepoID) bool { return v == id })
	}
	delete(d.repoNames, repo.Name)
	delete(d.repos, id)
	return nil
}
