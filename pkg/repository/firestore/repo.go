package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/repovault/pkg/domain/model"
	"github.com/secmon-lab/repovault/pkg/domain/types"
	"github.com/secmon-lab/repovault/pkg/repository"
)

func (d *database) repoRef(id types.RepoID) *firestore.DocumentRef {
	return d.client.Collection(collectionRepositories).Doc(string(id))
}

// Repository operations

func (d *database) CreateRepository(ctx context.Context, repo *model.Repository) error {
	nameRef, err := d.indexRef(collectionRepoNames, repo.Name)
	if err != nil {
		return err
	}
	ownerRef := d.userRef(repo.Owner)

	stored := repo.Copy()
	stored.Revision = 1

	err = d.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, exists, err := txGet[indexEntry](tx, nameRef); err != nil {
			return err
		} else if exists {
			return goerr.Wrap(repository.ErrAlreadyExists, "repository name already exists", goerr.V("name", repo.Name))
		}
		if _, exists, err := txGet[model.User](tx, ownerRef); err != nil {
			return err
		} else if !exists {
			return goerr.Wrap(repository.ErrNotFound, "owner not found", goerr.V("owner", repo.Owner))
		}

		if err := tx.Create(d.repoRef(repo.ID), stored); err != nil {
			return goerr.Wrap(err, "failed to create repository")
		}
		if err := tx.Create(nameRef, &indexEntry{ID: string(repo.ID)}); err != nil {
			return goerr.Wrap(err, "failed to create repository name index")
		}
		if err := tx.Update(ownerRef, []firestore.Update{
			{Path: "Repositories", Value: firestore.ArrayUnion(string(repo.ID))},
		}); err != nil {
			return goerr.Wrap(err, "failed to link repository to owner")
		}
		return nil
	})
	if err != nil {
		return goerr.Wrap(err, "failed to create repository", goerr.V("repoID", repo.ID))
	}

	repo.Revision = stored.Revision
	return nil
}

func (d *database) GetRepository(ctx context.Context, id types.RepoID) (*model.Repository, error) {
	repo, exists, err := getDoc[model.Repository](ctx, d.repoRef(id))
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, goerr.Wrap(repository.ErrNotFound, "repository not found", goerr.V("repoID", id))
	}
	return repo, nil
}

func (d *database) GetRepositoryByName(ctx context.Context, name string) (*model.Repository, error) {
	ref, err := d.indexRef(collectionRepoNames, name)
	if err != nil {
		return nil, goerr.Wrap(repository.ErrNotFound, "repository not found", goerr.V("name", name))
	}

	entry, exists, err := getDoc[indexEntry](ctx, ref)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, goerr.Wrap(repository.ErrNotFound, "repository not found", goerr.V("name", name))
	}

	return d.GetRepository(ctx, types.RepoID(entry.ID))
}

func (d *database) ListRepositories(ctx context.Context) ([]*model.Repository, error) {
	return collect[model.Repository](d.client.Collection(collectionRepositories).Documents(ctx))
}

func (d *database) ListRepositoriesByOwner(ctx context.Context, owner types.UserID) ([]*model.Repository, error) {
	query := d.client.Collection(collectionRepositories).Where("Owner", "==", string(owner))
	return collect[model.Repository](query.Documents(ctx))
}

func (d *database) UpdateRepository(ctx context.Context, id types.RepoID, update func(repo *model.Repository) error) (*model.Repository, error) {
	var updated *model.Repository

	err := d.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		current, exists, err := txGet[model.Repository](tx, d.repoRef(id))
		if err != nil {
			return err
		}
		if !exists {
			return goerr.Wrap(repository.ErrNotFound, "repository not found", goerr.V("repoID", id))
		}

		updated = current.Copy()
		if err := update(updated); err != nil {
			return err
		}
		updated.ID = id
		updated.Owner = current.Owner
		updated.Revision = current.Revision + 1

		moves, err := d.prepareIndexMoves(tx, string(id),
			indexMove{collectionRepoNames, current.Name, updated.Name},
		)
		if err != nil {
			return err
		}

		if err := tx.Set(d.repoRef(id), updated); err != nil {
			return goerr.Wrap(err, "failed to update repository")
		}
		return applyIndexMoves(tx, moves, string(id))
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (d *database) DeleteRepository(ctx context.Context, id types.RepoID) error {
	return d.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		repo, exists, err := txGet[model.Repository](tx, d.repoRef(id))
		if err != nil {
			return err
		}
		if !exists {
			return goerr.Wrap(repository.ErrNotFound, "repository not found", goerr.V("repoID", id))
		}
		ownerRef := d.userRef(repo.Owner)
		_, ownerExists, err := txGet[model.User](tx, ownerRef)
		if err != nil {
			return err
		}

		if err := tx.Delete(d.repoRef(id)); err != nil {
			return goerr.Wrap(err, "failed to delete repository")
		}
		if nameRef, err := d.indexRef(collectionRepoNames, repo.Name); err == nil {
			if err := tx.Delete(nameRef); err != nil {
				return goerr.Wrap(err, "failed to delete repository name index")
			}
		}
		if ownerExists {
			if err := tx.Update(ownerRef, []firestore.Update{
				{Path: "Repositories", Value: firestore.ArrayRemove(string(id))},
			}); err != nil {
				return goerr.Wrap(err, "failed to unlink repository from owner")
			}
		}
		return nil
	})
}
