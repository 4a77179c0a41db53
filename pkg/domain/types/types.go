package types

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
)

type (
	IssueStatus   string
	EventType     string
	JWTSecret     string
	RedisPassword string
)

const (
	IssueStatusOpen   IssueStatus = "open"
	IssueStatusClosed IssueStatus = "closed"
)

func (x IssueStatus) Validate() error {
	switch x {
	case IssueStatusOpen, IssueStatusClosed:
		return nil
	}
	return goerr.Wrap(ErrValidationFailed, "invalid issue status",
		goerr.V("status", x),
		Reason("Status must be 'open' or 'closed'"),
	)
}

const (
	EventRepositoryCreated EventType = "repository.created"
	EventRepositoryUpdated EventType = "repository.updated"
	EventRepositoryDeleted EventType = "repository.deleted"
	EventRepositoryToggled EventType = "repository.toggled"
	EventRepositoryPushed  EventType = "repository.pushed"
	EventIssueCreated      EventType = "issue.created"
)

func (x JWTSecret) LogValue() slog.Value {
	return slog.StringValue("***********")
}

func (x JWTSecret) String() string {
	return "***********"
}

func (x RedisPassword) LogValue() slog.Value {
	return slog.StringValue("***********")
}

func (x RedisPassword) String() string {
	return "***********"
}
