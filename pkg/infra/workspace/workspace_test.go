package workspace_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/repovault/pkg/domain/model"
	"github.com/secmon-lab/repovault/pkg/domain/types"
	"github.com/secmon-lab/repovault/pkg/infra/workspace"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	gt.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	gt.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func readFile(t *testing.T, root, rel string) string {
	t.Helper()
	return string(gt.R1(os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))).NoError(t))
}

func initWorkspace(t *testing.T) (string, *workspace.Workspace) {
	t.Helper()
	root := t.TempDir()
	ws := gt.R1(workspace.Init(root)).NoError(t)
	t.Cleanup(func() { _ = ws.Close() })
	return root, ws
}

func TestInit(t *testing.T) {
	t.Run("init is idempotent", func(t *testing.T) {
		root := t.TempDir()
		ws := gt.R1(workspace.Init(root)).NoError(t)
		gt.NoError(t, ws.Close())

		ws = gt.R1(workspace.Init(root)).NoError(t)
		gt.NoError(t, ws.Close())

		st := gt.R1(os.Stat(filepath.Join(root, ".repogit", "staging"))).NoError(t)
		gt.True(t, st.IsDir())
	})

	t.Run("open uninitialized directory fails", func(t *testing.T) {
		_, err := workspace.Open(t.TempDir())
		gt.True(t, errors.Is(err, workspace.ErrNotInitialized))
		gt.True(t, errors.Is(err, types.ErrValidationFailed))
	})
}

func TestStage(t *testing.T) {
	t.Run("stage keeps relative path", func(t *testing.T) {
		root, ws := initWorkspace(t)
		writeFile(t, root, "src/main.txt", "hello")
		writeFile(t, root, "README.md", "readme")

		gt.V(t, gt.R1(ws.Stage("src/main.txt")).NoError(t)).Equal("src/main.txt")
		gt.V(t, gt.R1(ws.Stage(filepath.Join(root, "README.md"))).NoError(t)).Equal("README.md")

		staged := gt.R1(ws.Staged()).NoError(t)
		gt.V(t, staged).Equal([]string{"README.md", "src/main.txt"})
		gt.V(t, readFile(t, root, ".repogit/staging/src/main.txt")).Equal("hello")
	})

	t.Run("missing file is not found", func(t *testing.T) {
		_, ws := initWorkspace(t)
		_, err := ws.Stage("nothing.txt")
		gt.True(t, errors.Is(err, types.ErrNotFound))
	})

	t.Run("file outside workspace is rejected", func(t *testing.T) {
		_, ws := initWorkspace(t)
		outside := filepath.Join(t.TempDir(), "x.txt")
		gt.NoError(t, os.WriteFile(outside, []byte("x"), 0o644))

		_, err := ws.Stage(outside)
		gt.True(t, errors.Is(err, types.ErrValidationFailed))
		_, err = ws.Stage("../x.txt")
		gt.True(t, errors.Is(err, types.ErrValidationFailed))
	})

	t.Run("directory and state files are rejected", func(t *testing.T) {
		root, ws := initWorkspace(t)
		gt.NoError(t, os.MkdirAll(filepath.Join(root, "dir"), 0o755))

		_, err := ws.Stage("dir")
		gt.True(t, errors.Is(err, types.ErrValidationFailed))
		_, err = ws.Stage(".repogit/index.db")
		gt.True(t, errors.Is(err, types.ErrValidationFailed))
	})
}

func TestCommit(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("commit moves staged files", func(t *testing.T) {
		root, ws := initWorkspace(t)
		writeFile(t, root, "a.txt", "A")
		writeFile(t, root, "dir/b.txt", "B")
		gt.R1(ws.Stage("a.txt")).NoError(t)
		gt.R1(ws.Stage("dir/b.txt")).NoError(t)

		commit := gt.R1(ws.Commit("first", now)).NoError(t)
		gt.NoError(t, commit.ID.Validate())
		gt.V(t, commit.Message).Equal("first")
		gt.V(t, commit.Files).Equal([]string{"a.txt", "dir/b.txt"})
		gt.V(t, commit.CreatedAt).Equal(now)

		gt.V(t, readFile(t, root, ".repogit/commits/"+string(commit.ID)+"/files/dir/b.txt")).Equal("B")
		_, err := os.Stat(filepath.Join(root, ".repogit", "commits", string(commit.ID), "commit.json"))
		gt.NoError(t, err)

		gt.A(t, gt.R1(ws.Staged()).NoError(t)).Length(0)

		got := gt.R1(ws.GetCommit(commit.ID)).NoError(t)
		gt.V(t, got.Files).Equal(commit.Files)
	})

	t.Run("nothing staged", func(t *testing.T) {
		_, ws := initWorkspace(t)
		_, err := ws.Commit("empty", now)
		gt.True(t, errors.Is(err, types.ErrValidationFailed))
		gt.V(t, types.ReasonOf(err)).Equal("Nothing to commit, add files first")
	})

	t.Run("message is required", func(t *testing.T) {
		root, ws := initWorkspace(t)
		writeFile(t, root, "a.txt", "A")
		gt.R1(ws.Stage("a.txt")).NoError(t)

		_, err := ws.Commit("  ", now)
		gt.True(t, errors.Is(err, types.ErrValidationFailed))
	})

	t.Run("commits are listed oldest first and survive reopen", func(t *testing.T) {
		root := t.TempDir()
		ws := gt.R1(workspace.Init(root)).NoError(t)

		writeFile(t, root, "a.txt", "1")
		gt.R1(ws.Stage("a.txt")).NoError(t)
		c1 := gt.R1(ws.Commit("one", now)).NoError(t)

		writeFile(t, root, "a.txt", "2")
		gt.R1(ws.Stage("a.txt")).NoError(t)
		c2 := gt.R1(ws.Commit("two", now.Add(time.Minute))).NoError(t)
		gt.NoError(t, ws.Close())

		ws = gt.R1(workspace.Open(root)).NoError(t)
		defer ws.Close()

		commits := gt.R1(ws.Commits()).NoError(t)
		gt.A(t, commits).Length(2)
		gt.V(t, commits[0].ID).Equal(c1.ID)
		gt.V(t, commits[1].ID).Equal(c2.ID)
	})
}

func TestRevert(t *testing.T) {
	now := time.Now()

	t.Run("revert overwrites working files", func(t *testing.T) {
		root, ws := initWorkspace(t)
		writeFile(t, root, "doc/a.txt", "original")
		gt.R1(ws.Stage("doc/a.txt")).NoError(t)
		commit := gt.R1(ws.Commit("snapshot", now)).NoError(t)

		writeFile(t, root, "doc/a.txt", "modified")
		gt.NoError(t, os.Remove(filepath.Join(root, "doc", "a.txt")))

		reverted := gt.R1(ws.Revert(commit.ID)).NoError(t)
		gt.V(t, reverted.ID).Equal(commit.ID)
		gt.V(t, readFile(t, root, "doc/a.txt")).Equal("original")
	})

	t.Run("user file named commit.json survives", func(t *testing.T) {
		root, ws := initWorkspace(t)
		writeFile(t, root, "commit.json", `{"user":"data"}`)
		gt.R1(ws.Stage("commit.json")).NoError(t)
		commit := gt.R1(ws.Commit("m", now)).NoError(t)

		writeFile(t, root, "commit.json", "edited")
		gt.R1(ws.Revert(commit.ID)).NoError(t)
		gt.V(t, readFile(t, root, "commit.json")).Equal(`{"user":"data"}`)

		data := gt.R1(ws.ReadCommitFile(commit.ID, "commit.json")).NoError(t)
		gt.V(t, string(data)).Equal(`{"user":"data"}`)
	})

	t.Run("unknown commit", func(t *testing.T) {
		_, ws := initWorkspace(t)
		_, err := ws.Revert(types.NewCommitID())
		gt.True(t, errors.Is(err, types.ErrNotFound))
	})
}

func TestImportCommit(t *testing.T) {
	t.Run("imported commit can be reverted", func(t *testing.T) {
		root, ws := initWorkspace(t)
		commit := &model.Commit{
			ID:        types.NewCommitID(),
			Message:   "remote",
			Files:     []string{"x/y.txt"},
			CreatedAt: time.Now().UTC(),
		}
		gt.NoError(t, ws.ImportCommit(commit, map[string][]byte{"x/y.txt": []byte("Y")}))

		data := gt.R1(ws.ReadCommitFile(commit.ID, "x/y.txt")).NoError(t)
		gt.V(t, string(data)).Equal("Y")

		gt.R1(ws.Revert(commit.ID)).NoError(t)
		gt.V(t, readFile(t, root, "x/y.txt")).Equal("Y")
	})

	t.Run("path traversal is rejected", func(t *testing.T) {
		_, ws := initWorkspace(t)
		commit := &model.Commit{
			ID:    types.NewCommitID(),
			Files: []string{"../evil.txt"},
		}
		err := ws.ImportCommit(commit, map[string][]byte{"../evil.txt": []byte("x")})
		gt.True(t, errors.Is(err, types.ErrValidationFailed))
	})

	t.Run("missing content is an error", func(t *testing.T) {
		_, ws := initWorkspace(t)
		commit := &model.Commit{
			ID:    types.NewCommitID(),
			Files: []string{"a.txt"},
		}
		gt.Error(t, ws.ImportCommit(commit, map[string][]byte{}))
	})
}
