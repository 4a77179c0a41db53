package types

import (
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/rs/xid"
)

type (
	UserID    string
	RepoID    string
	IssueID   string
	CommitID  string
	RequestID string
	BlobKey   string
)

func NewUserID() UserID       { return UserID(xid.New().String()) }
func NewRepoID() RepoID       { return RepoID(xid.New().String()) }
func NewIssueID() IssueID     { return IssueID(xid.New().String()) }
func NewCommitID() CommitID   { return CommitID(xid.New().String()) }
func NewRequestID() RequestID { return RequestID(uuid.NewString()) }

func validateXID(kind, v string) error {
	if _, err := xid.FromString(v); err != nil {
		return goerr.Wrap(ErrValidationFailed, "malformed identifier",
			goerr.V("kind", kind),
			goerr.V("value", v),
			Reason("Invalid "+kind+" ID"),
		)
	}
	return nil
}

func (x UserID) Validate() error   { return validateXID("User", string(x)) }
func (x RepoID) Validate() error   { return validateXID("Repository", string(x)) }
func (x IssueID) Validate() error  { return validateXID("Issue", string(x)) }
func (x CommitID) Validate() error { return validateXID("Commit", string(x)) }

func (x UserID) String() string   { return string(x) }
func (x RepoID) String() string   { return string(x) }
func (x IssueID) String() string  { return string(x) }
func (x CommitID) String() string { return string(x) }
func (x BlobKey) String() string  { return string(x) }
