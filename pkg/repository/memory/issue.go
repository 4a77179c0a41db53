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

// Issue operations

func (d *database) CreateIssue(ctx context.Context, issue *model.Issue) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.issues[issue.ID]; exists {
		return goerr.Wrap(repository.ErrAlreadyExists, "issue ID already exists", goerr.V("issueID", issue.ID))
	}
	repo, exists := d.repos[issue.Repository]
	if !exists {
		return goerr.Wrap(repository.ErrNotFound, "repository not found", goerr.V("repoID", issue.Repository))
	}

	d.issues[issue.ID] = issue.Copy()
	repo.Issues = append(repo.Issues, issue.ID)
	repo.Revision++
	return nil
}

func (d *database) GetIssue(ctx context.Context, id types.IssueID) (*model.Issue, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	issue, exists := d.issues[id]
	if !exists {
		return nil, goerr.Wrap(repository.ErrNotFound, "issue not found", goerr.V("issueID", id))
	}
	return issue.Copy(), nil
}

func (d *database) ListIssues(ctx context.Context, repoID types.RepoID) ([]*model.Issue, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var issues []*model.Issue
	for _, issue := range d.issues {
		if issue.Repository == repoID {
			issues = append(issues, issue.Copy())
		}
	}
	slices.SortFunc(issues, func(a, b *model.Issue) int {
		return strings.Compare(string(a.ID), string(b.ID))
	})
	return issues, nil
}

func (d *database) UpdateIssue(ctx context.Context, id types.IssueID, update func(issue *model.Issue) error) (*model.Issue, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	current, exists := d.issues[id]
	if !exists {
		return nil, goerr.Wrap(repository.ErrNotFound, "issue not found", goerr.V("issueID", id))
	}

	updated := current.Copy()
	if err := update(updated); err != nil {
		return nil, err
	}
	updated.ID = id
	updated.Repository = current.Repository
	d.issues[id] = updated

	return updated.Copy(), nil
}

func (d *database) DeleteIssue(ctx context.Context, id types.IssueID) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	issue, exists := d.issues[id]
	if !exists {
		return goerr.Wrap(repository.ErrNotFound, "issue not found", goerr.V("issueID", id))
	}

	if repo, exists := d.repos[issue.Repository]; exists {
		repo.Issues = slices.DeleteFunc(repo.Issues, func(v types.IssueID) bool { return v == id })
		repo.Revision++
	}
	delete(d.issues, id)
	return nil
}
