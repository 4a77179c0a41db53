package memory

import (
	"sync"

	"github.com/secmon-lab/repovault/pkg/domain/interfaces"
	"github.com/secmon-lab/repovault/pkg/domain/model"
	"github.com/secmon-lab/repovault/pkg/domain/types"
)

type database struct {
	mu sync.RWMutex

	users  map[types.UserID]*model.User
	repos  map[types.RepoID]*model.Repository
	issues map[types.IssueID]*model.Issue

	usernames map[string]types.UserID
	emails    map[string]types.UserID
	repoNames map[string]types.RepoID
}

// New creates a new in-memory database
func New() interfaces.Database {
	return &database{
		users:     make(map[types.UserID]*model.User),
		repos:     make(map[types.RepoID]*model.Repository),
		issues:    make(map[types.IssueID]*model.Issue),
		usernames: make(map[string]types.UserID),
		emails:    make(map[string]types.UserID),
		repoNames: make(map[string]types.RepoID),
	}
}

func (d *database) Close() error {
	return nil
}
