package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/repovault/pkg/domain/model"
	"github.com/secmon-lab/repovault/pkg/domain/types"
	"github.com/secmon-lab/repovault/pkg/repository"
)

func (d *database) issueRef(id types.IssueID) *firestore.DocumentRef {
	return d.client.Collection(collectionIssues).Doc(string(id))
}

// Issue operations

func (d *database) CreateIssue(ctx context.Context, issue *model.Issue) error {
	repoRef := d.repoRef(issue.Repository)

	err := d.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, exists, err := txGet[model.Repository](tx, repoRef); err != nil {
			return err
		} else if !exists {
			return goerr.Wrap(repository.ErrNotFound, "repository not found", goerr.V("repoID", issue.Repository))
		}

		if err := tx.Create(d.issueRef(issue.ID), issue); err != nil {
			return goerr.Wrap(err, "failed to create issue")
		}
		if err := tx.Update(repoRef, []firestore.Update{
			{Path: "Issues", Value: firestore.ArrayUnion(string(issue.ID))},
			{Path: "Revision", Value: firestore.Increment(1)},
		}); err != nil {
			return goerr.Wrap(err, "failed to link issue to repository")
		}
		return nil
	})
	if err != nil {
		return goerr.Wrap(err, "failed to create issue", goerr.V("issueID", issue.ID))
	}

	return nil
}

func (d *database) GetIssue(ctx context.Context, id types.IssueID) (*model.Issue, error) {
	issue, exists, err := getDoc[model.Issue](ctx, d.issueRef(id))
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, goerr.Wrap(repository.ErrNotFound, "issue not found", goerr.V("issueID", id))
	}
	return issue, nil
}

func (d *database) ListIssues(ctx context.Context, repoID types.RepoID) ([]*model.Issue, error) {
	query := d.client.Collection(collectionIssues).Where("Repository", "==", string(repoID))
	return collect[model.Issue](query.Documents(ctx))
}

func (d *database) UpdateIssue(ctx context.Context, id types.IssueID, update func(issue *model.Issue) error) (*model.Issue, error) {
	var updated *model.Issue

	err := d.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		current, exists, err := txGet[model.Issue](tx, d.issueRef(id))
		if err != nil {
			return err
		}
		if !exists {
			return goerr.Wrap(repository.ErrNotFound, "issue not found", goerr.V("issueID", id))
		}

		updated = current.Copy()
		if err := update(updated); err != nil {
			return err
		}
		updated.ID = id
		updated.Repository = current.Repository

		if err := tx.Set(d.issueRef(id), updated); err != nil {
			return goerr.Wrap(err, "failed to update issue")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (d *database) DeleteIssue(ctx context.Context, id types.IssueID) error {
	return d.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		issue, exists, err := txGet[model.Issue](tx, d.issueRef(id))
		if err != nil {
			return err
		}
		if !exists {
			return goerr.Wrap(repository.ErrNotFound, "issue not found", goerr.V("issueID", id))
		}
		repoRef := d.repoRef(issue.Repository)
		_, repoExists, err := txGet[model.Repository](tx, repoRef)
		if err != nil {
			return err
		}

		if err := tx.Delete(d.issueRef(id)); err != nil {
			return goerr.Wrap(err, "failed to delete issue")
		}
		if repoExists {
			if err := tx.Update(repoRef, []firestore.Update{
				{Path: "Issues", Value: firestore.ArrayRemove(string(id))},
				{Path: "Revision", Value: firestore.Increment(1)},
			}); err != nil {
				return goerr.Wrap(err, "failed to unlink issue from repository")
			}
		}
		return nil
	})
}
