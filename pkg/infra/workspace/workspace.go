package workspace

import (
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/repovault/pkg/domain/model"
	"github.com/secmon-lab/repovault/pkg/domain/types"
	"github.com/secmon-lab/repovault/pkg/utils/safe"
	bolt "go.etcd.io/bbolt"
)

const (
	DirName        = ".repogit"
	stagingDir     = "staging"
	commitsDir     = "commits"
	commitFilesDir = "files"
	indexFile      = "index.db"
	CommitMetaFile = "commit.json"

	commitBucket = "commits"
)

var ErrNotInitialized = goerr.Wrap(types.ErrValidationFailed, "workspace is not initialized",
	types.Reason("Not a repovault workspace, run init first"))

// Workspace is a working directory with its hidden state directory. The commit
// index is a bbolt file that stays open until Close.
type Workspace struct {
	root string
	db   *bolt.DB
}

func (x *Workspace) stagingDir() string { return filepath.Join(x.root, DirName, stagingDir) }
func (x *Workspace) commitDir(id types.CommitID) string {
	return filepath.Join(x.root, DirName, commitsDir, string(id))
}

// commitFilePath keeps recorded files apart from commit.json so any user file name is allowed.
func (x *Workspace) commitFilePath(id types.CommitID, rel string) string {
	return filepath.Join(x.commitDir(id), commitFilesDir, filepath.FromSlash(rel))
}

// Init creates the state directory if it does not exist and opens the workspace.
func Init(root string) (*Workspace, error) {
	for _, dir := range []string{
		filepath.Join(root, DirName, stagingDir),
		filepath.Join(root, DirName, commitsDir),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, goerr.Wrap(err, "failed to create workspace directory", goerr.V("dir", dir))
		}
	}

	return open(root)
}

// Open opens an initialized workspace.
func Open(root string) (*Workspace, error) {
	st, err := os.Stat(filepath.Join(root, DirName))
	if err != nil || !st.IsDir() {
		return nil, goerr.Wrap(ErrNotInitialized, "state directory not found", goerr.V("root", root))
	}
	return open(root)
}

func open(root string) (*Workspace, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve workspace root", goerr.V("root", root))
	}

	path := filepath.Join(abs, DirName, indexFile)
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open commit index", goerr.V("path", path))
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(commitBucket))
		return err
	}); err != nil {
		safe.Close(db)
		return nil, goerr.Wrap(err, "failed to create commit bucket")
	}

	return &Workspace{root: abs, db: db}, nil
}

func (x *Workspace) Close() error {
	if err := x.db.Close(); err != nil {
		return goerr.Wrap(err, "failed to close commit index")
	}
	return nil
}

func (x *Workspace) Root() string { return x.root }

// relPath converts a path given relative to the workspace root (or absolute) into a
// slash-separated path inside the workspace.
func (x *Workspace) relPath(name string) (string, error) {
	p := name
	if !filepath.IsAbs(p) {
		p = filepath.Join(x.root, p)
	}

	rel, err := filepath.Rel(x.root, filepath.Clean(p))
	if err != nil {
		return "", goerr.Wrap(types.ErrValidationFailed, "path is not in workspace",
			goerr.V("path", name), types.Reason("File is outside of the workspace"))
	}
	rel = filepath.ToSlash(rel)

	if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") {
		return "", goerr.Wrap(types.ErrValidationFailed, "path is not in workspace",
			goerr.V("path", name), types.Reason("File is outside of the workspace"))
	}
	if rel == DirName || strings.HasPrefix(rel, DirName+"/") {
		return "", goerr.Wrap(types.ErrValidationFailed, "path is in state directory",
			goerr.V("path", name), types.Reason("Cannot add workspace internal files"))
	}
	return rel, nil
}

// Stage copies a file of the working directory into staging and returns its relative path.
func (x *Workspace) Stage(name string) (string, error) {
	rel, err := x.relPath(name)
	if err != nil {
		return "", err
	}

	src := filepath.Join(x.root, filepath.FromSlash(rel))
	st, err := os.Stat(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", goerr.Wrap(types.ErrNotFound, "file to stage does not exist",
				goerr.V("path", rel), types.Reason("File not found"))
		}
		return "", goerr.Wrap(err, "failed to stat file", goerr.V("path", rel))
	}
	if !st.Mode().IsRegular() {
		return "", goerr.Wrap(types.ErrValidationFailed, "not a regular file",
			goerr.V("path", rel), types.Reason("Only regular files can be added"))
	}

	if err := copyFile(src, filepath.Join(x.stagingDir(), filepath.FromSlash(rel))); err != nil {
		return "", err
	}
	return rel, nil
}

// Staged returns relative paths of staged files in lexical order.
func (x *Workspace) Staged() ([]string, error) {
	return listFiles(x.stagingDir())
}

// Commit moves all staged files into a new commit directory and indexes the commit.
func (x *Workspace) Commit(message string, now time.Time) (*model.Commit, error) {
	if strings.TrimSpace(message) == "" {
		return nil, goerr.Wrap(types.ErrValidationFailed, "commit message is empty",
			types.Reason("Commit message is required"))
	}

	files, err := x.Staged()
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, goerr.Wrap(types.ErrValidationFailed, "no staged file",
			types.Reason("Nothing to commit, add files first"))
	}

	commit := &model.Commit{
		ID:        types.NewCommitID(),
		Message:   message,
		Files:     files,
		CreatedAt: now.UTC(),
	}

	for _, rel := range files {
		to := x.commitFilePath(commit.ID, rel)
		if err := os.MkdirAll(filepath.Dir(to), 0o755); err != nil {
			return nil, goerr.Wrap(err, "failed to create commit directory", goerr.V("dir", filepath.Dir(to)))
		}
		if err := os.Rename(filepath.Join(x.stagingDir(), filepath.FromSlash(rel)), to); err != nil {
			return nil, goerr.Wrap(err, "failed to move staged file", goerr.V("path", rel))
		}
	}

	if err := x.writeCommit(commit); err != nil {
		return nil, err
	}

	safe.RemoveAll(x.stagingDir())
	if err := os.MkdirAll(x.stagingDir(), 0o755); err != nil {
		return nil, goerr.Wrap(err, "failed to recreate staging directory")
	}

	return commit, nil
}

func (x *Workspace) writeCommit(commit *model.Commit) error {
	raw, err := json.MarshalIndent(commit, "", "  ")
	if err != nil {
		return goerr.Wrap(err, "failed to marshal commit", goerr.V("id", commit.ID))
	}

	meta := filepath.Join(x.commitDir(commit.ID), CommitMetaFile)
	if err := os.WriteFile(meta, raw, 0o644); err != nil {
		return goerr.Wrap(err, "failed to write commit metadata", goerr.V("path", meta))
	}

	if err := x.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(commitBucket)).Put([]byte(commit.ID), raw)
	}); err != nil {
		return goerr.Wrap(err, "failed to index commit", goerr.V("id", commit.ID))
	}
	return nil
}

// Commits returns indexed commits, oldest first.
func (x *Workspace) Commits() ([]*model.Commit, error) {
	var commits []*model.Commit
	if err := x.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(commitBucket)).ForEach(func(k, v []byte) error {
			var c model.Commit
			if err := json.Unmarshal(v, &c); err != nil {
				return goerr.Wrap(err, "broken commit index entry", goerr.V("id", string(k)))
			}
			commits = append(commits, &c)
			return nil
		})
	}); err != nil {
		return nil, goerr.Wrap(err, "failed to read commit index")
	}

	sort.SliceStable(commits, func(i, j int) bool {
		if commits[i].CreatedAt.Equal(commits[j].CreatedAt) {
			return commits[i].ID < commits[j].ID
		}
		return commits[i].CreatedAt.Before(commits[j].CreatedAt)
	})
	return commits, nil
}

func (x *Workspace) GetCommit(id types.CommitID) (*model.Commit, error) {
	var commit *model.Commit
	if err := x.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(commitBucket)).Get([]byte(id))
		if v == nil {
			return nil
		}
		commit = &model.Commit{}
		return json.Unmarshal(v, commit)
	}); err != nil {
		return nil, goerr.Wrap(err, "failed to read commit index", goerr.V("id", id))
	}

	if commit == nil {
		return nil, goerr.Wrap(types.ErrNotFound, "commit not found",
			goerr.V("id", id), types.Reason("Commit not found"))
	}
	return commit, nil
}

// ReadCommitFile returns the content of a file recorded in a commit.
func (x *Workspace) ReadCommitFile(id types.CommitID, rel string) ([]byte, error) {
	if err := model.ValidateFilename(rel); err != nil {
		return nil, err
	}
	p := x.commitFilePath(id, rel)
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read commit file", goerr.V("path", p))
	}
	return data, nil
}

// ImportCommit stores a commit fetched from elsewhere, overwriting a local commit of the same ID.
func (x *Workspace) ImportCommit(commit *model.Commit, files map[string][]byte) error {
	if err := commit.ID.Validate(); err != nil {
		return err
	}

	dst := x.commitDir(commit.ID)
	for _, rel := range commit.Files {
		if err := model.ValidateFilename(rel); err != nil {
			return goerr.Wrap(err, "commit has invalid file path", goerr.V("id", commit.ID))
		}
		data, ok := files[rel]
		if !ok {
			return goerr.Wrap(types.ErrNotFound, "commit file is missing",
				goerr.V("id", commit.ID), goerr.V("path", rel))
		}

		to := x.commitFilePath(commit.ID, rel)
		if err := os.MkdirAll(filepath.Dir(to), 0o755); err != nil {
			return goerr.Wrap(err, "failed to create commit directory", goerr.V("dir", filepath.Dir(to)))
		}
		if err := os.WriteFile(to, data, 0o644); err != nil {
			return goerr.Wrap(err, "failed to write commit file", goerr.V("path", to))
		}
	}

	if err := os.MkdirAll(dst, 0o755); err != nil {
		return goerr.Wrap(err, "failed to create commit directory", goerr.V("dir", dst))
	}
	return x.writeCommit(commit)
}

// Revert copies every file of the commit over the working directory.
func (x *Workspace) Revert(id types.CommitID) (*model.Commit, error) {
	commit, err := x.GetCommit(id)
	if err != nil {
		return nil, err
	}

	for _, rel := range commit.Files {
		if err := model.ValidateFilename(rel); err != nil {
			return nil, goerr.Wrap(err, "commit has invalid file path", goerr.V("id", id))
		}
		src := x.commitFilePath(id, rel)
		if err := copyFile(src, filepath.Join(x.root, filepath.FromSlash(rel))); err != nil {
			return nil, err
		}
	}

	return commit, nil
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return goerr.Wrap(err, "failed to create directory", goerr.V("dir", filepath.Dir(dst)))
	}

	r, err := os.Open(filepath.Clean(src))
	if err != nil {
		return goerr.Wrap(err, "failed to open source file", goerr.V("path", src))
	}
	defer safe.Close(r)

	w, err := os.Create(filepath.Clean(dst))
	if err != nil {
		return goerr.Wrap(err, "failed to create destination file", goerr.V("path", dst))
	}

	if _, err := io.Copy(w, r); err != nil {
		safe.Close(w)
		return goerr.Wrap(err, "failed to copy file", goerr.V("src", src), goerr.V("dst", dst))
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to close destination file", goerr.V("path", dst))
	}
	return nil
}

func listFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list files", goerr.V("dir", dir))
	}

	sort.Strings(files)
	return files, nil
}
