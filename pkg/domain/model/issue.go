package model

import (
	"time"

	"github.com/secmon-lab/repovault/pkg/domain/types"
)

type Issue struct {
	ID          types.IssueID     `json:"id"`
	Repository  types.RepoID      `json:"repository"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Status      types.IssueStatus `json:"status"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

func (x *Issue) Copy() *Issue {
	if x == nil {
		return nil
	}
	c := *x
	return &c
}

// IssueView is an issue with its repository resolved.
type IssueView struct {
	*Issue
	Repository *Repository `json:"repository"`
}
