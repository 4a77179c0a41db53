package model

import (
	"slices"
	"time"

	"github.com/secmon-lab/repovault/pkg/domain/types"
)

// Repository is a hosted repository. Content holds descriptors only; bytes live in the blob store.
type Repository struct {
	ID          types.RepoID     `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Owner       types.UserID     `json:"owner"`
	Visibility  bool             `json:"visibility"`
	Issues      []types.IssueID  `json:"issues"`
	Content     []FileDescriptor `json:"content"`
	Revision    int64            `json:"revision"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

type FileDescriptor struct {
	Filename   string        `json:"filename"`
	Key        types.BlobKey `json:"s3Key"`
	Size       int64         `json:"size"`
	UploadedAt time.Time     `json:"uploadedAt"`
}

// BlobKeyFor returns the blob store key of a repository file.
func BlobKeyFor(repoID types.RepoID, filename string) types.BlobKey {
	return types.BlobKey(string(repoID) + "/" + filename)
}

func (x *Repository) Copy() *Repository {
	if x == nil {
		return nil
	}
	c := *x
	c.Issues = cloneSlice(x.Issues)
	c.Content = cloneSlice(x.Content)
	return &c
}

// cloneSlice never returns nil so copies encode as [] rather than null.
func cloneSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return slices.Clone(s)
}

// FindFile returns index of the descriptor with filename, or -1.
func (x *Repository) FindFile(filename string) int {
	return slices.IndexFunc(x.Content, func(d FileDescriptor) bool {
		return d.Filename == filename
	})
}

// RepositoryView is a repository with owner and issues resolved.
type RepositoryView struct {
	*Repository
	Owner  *User    `json:"owner"`
	Issues []*Issue `json:"issues"`
}

// PulledFile is one entry of a pull response. On fetch failure Content holds
// PullErrorPlaceholder and Error is true.
type PulledFile struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
	Error    bool   `json:"error,omitempty"`
}

const PullErrorPlaceholder = "Error fetching file"

// FileContent is a descriptor with the blob bytes.
type FileContent struct {
	File    FileDescriptor
	Content []byte
}
