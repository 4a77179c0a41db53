package model

import (
	"time"

	"github.com/secmon-lab/repovault/pkg/domain/types"
)

// Event is delivered to the room of UserID.
type Event struct {
	Type      types.EventType `json:"type"`
	UserID    types.UserID    `json:"userId"`
	RepoID    types.RepoID    `json:"repoId,omitempty"`
	IssueID   types.IssueID   `json:"issueId,omitempty"`
	Message   string          `json:"message,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}
