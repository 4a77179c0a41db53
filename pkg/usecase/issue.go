package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/repovault/pkg/domain/model"
	"github.com/secmon-lab/repovault/pkg/domain/types"
	"github.com/secmon-lab/repovault/pkg/utils/logging"
)

func issueNotFound(repoID types.RepoID, id types.IssueID) error {
	return goerr.Wrap(types.ErrNotFound, "issue not in repository",
		goerr.V("repo_id", repoID),
		goerr.V("issue_id", id),
		types.Reason("Issue not found"))
}

func (x *UseCase) CreateIssue(ctx context.Context, repoID types.RepoID, input *model.CreateIssueInput) (*model.Issue, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	repo, err := x.getRepository(ctx, repoID)
	if err != nil {
		return nil, err
	}

	ts := now(ctx)
	issue := &model.Issue{
		ID:          types.NewIssueID(),
		Repository:  repoID,
		Title:       input.Title,
		Description: input.Description,
		Status:      types.IssueStatusOpen,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	if err := x.clients.Database().CreateIssue(ctx, issue); err != nil {
		return nil, notFound(err, "Repository not found")
	}

	logging.From(ctx).Info("issue created", "repo_id", repoID, "issue_id", issue.ID)
	x.publish(ctx, repo.Owner, &model.Event{
		Type:    types.EventIssueCreated,
		RepoID:  repoID,
		IssueID: issue.ID,
		Message: "Issue " + issue.Title + " opened in " + repo.Name,
	})
	return issue, nil
}

func (x *UseCase) ListIssues(ctx context.Context, repoID types.RepoID) ([]*model.Issue, error) {
	if _, err := x.getRepository(ctx, repoID); err != nil {
		return nil, err
	}

	issues, err := x.clients.Database().ListIssues(ctx, repoID)
	if err != nil {
		return nil, err
	}
	if issues == nil {
		issues = []*model.Issue{}
	}
	return issues, nil
}

// getIssue fetches an issue and checks that it belongs to the repository
func (x *UseCase) getIssue(ctx context.Context, repoID types.RepoID, id types.IssueID) (*model.Issue, error) {
	if err := repoID.Validate(); err != nil {
		return nil, err
	}
	if err := id.Validate(); err != nil {
		return nil, err
	}

	issue, err := x.clients.Database().GetIssue(ctx, id)
	if err != nil {
		return nil, notFound(err, "Issue not found")
	}
	if issue.Repository != repoID {
		return nil, issueNotFound(repoID, id)
	}
	return issue, nil
}

func (x *UseCase) GetIssue(ctx context.Context, repoID types.RepoID, id types.IssueID) (*model.IssueView, error) {
	issue, err := x.getIssue(ctx, repoID, id)
	if err != nil {
		return nil, err
	}

	repo, err := x.getRepository(ctx, repoID)
	if err != nil {
		return nil, err
	}

	return &model.IssueView{Issue: issue, Repository: repo}, nil
}

func (x *UseCase) UpdateIssue(ctx context.Context, repoID types.RepoID, id types.IssueID, input *model.UpdateIssueInput) (*model.Issue, error) {
	if err := repoID.Validate(); err != nil {
		return nil, err
	}
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	ts := now(ctx)
	issue, err := x.clients.Database().UpdateIssue(ctx, id, func(issue *model.Issue) error {
		if issue.Repository != repoID {
			return issueNotFound(repoID, id)
		}
		if input.Title != nil {
			issue.Title = *input.Title
		}
		if input.Description != nil {
			issue.Description = *input.Description
		}
		if input.Status != nil {
			issue.Status = *input.Status
		}
		issue.UpdatedAt = ts
		return nil
	})
	if err != nil {
		return nil, notFound(err, "Issue not found")
	}
	return issue, nil
}

func (x *UseCase) DeleteIssue(ctx context.Context, repoID types.RepoID, id types.IssueID) error {
	if _, err := x.getIssue(ctx, repoID, id); err != nil {
		return err
	}

	if err := x.clients.Database().DeleteIssue(ctx, id); err != nil {
		return notFound(err, "Issue not found")
	}

	logging.From(ctx).Info("issue deleted", "repo_id", repoID, "issue_id", id)
	return nil
}
