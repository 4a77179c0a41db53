package model

import (
	"time"

	"github.com/secmon-lab/repovault/pkg/domain/types"
)

// Commit is a snapshot of staged files in a local workspace.
type Commit struct {
	ID        types.CommitID `json:"id"`
	Message   string         `json:"message"`
	Files     []string       `json:"files"`
	CreatedAt time.Time      `json:"createdAt"`
}
