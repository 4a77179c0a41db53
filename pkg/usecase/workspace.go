package usecase

import (
	"context"
	"encoding/json"
	"path"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/repovault/pkg/domain/model"
	"github.com/secmon-lab/repovault/pkg/domain/types"
	"github.com/secmon-lab/repovault/pkg/infra/workspace"
	"github.com/secmon-lab/repovault/pkg/utils/logging"
	"github.com/secmon-lab/repovault/pkg/utils/safe"
)

const remoteCommitPrefix = "commits/"

func remoteCommitMetaKey(id types.CommitID) types.BlobKey {
	return types.BlobKey(remoteCommitPrefix + string(id) + "/" + workspace.CommitMetaFile)
}

func remoteCommitFileKey(id types.CommitID, rel string) types.BlobKey {
	return types.BlobKey(remoteCommitPrefix + string(id) + "/files/" + rel)
}

func (x *UseCase) withWorkspace(dir string, fn func(ws *workspace.Workspace) error) error {
	ws, err := workspace.Open(dir)
	if err != nil {
		return err
	}
	defer safe.Close(ws)
	return fn(ws)
}

func (x *UseCase) InitWorkspace(ctx context.Context, dir string) error {
	ws, err := workspace.Init(dir)
	if err != nil {
		return err
	}
	defer safe.Close(ws)

	logging.From(ctx).Info("workspace initialized", "root", ws.Root())
	return nil
}

func (x *UseCase) StageFile(ctx context.Context, dir, file string) (string, error) {
	var rel string
	err := x.withWorkspace(dir, func(ws *workspace.Workspace) error {
		var err error
		rel, err = ws.Stage(file)
		return err
	})
	if err != nil {
		return "", err
	}

	logging.From(ctx).Info("file staged", "path", rel)
	return rel, nil
}

func (x *UseCase) CommitWorkspace(ctx context.Context, dir, message string) (*model.Commit, error) {
	var commit *model.Commit
	err := x.withWorkspace(dir, func(ws *workspace.Workspace) error {
		var err error
		commit, err = ws.Commit(message, now(ctx))
		return err
	})
	if err != nil {
		return nil, err
	}

	logging.From(ctx).Info("committed", "id", commit.ID, "files", len(commit.Files))
	return commit, nil
}

// PushWorkspace uploads every local commit to the blob store.
func (x *UseCase) PushWorkspace(ctx context.Context, dir string) ([]*model.Commit, error) {
	store := x.clients.BlobStore()

	var commits []*model.Commit
	err := x.withWorkspace(dir, func(ws *workspace.Workspace) error {
		var err error
		if commits, err = ws.Commits(); err != nil {
			return err
		}

		for _, commit := range commits {
			for _, rel := range commit.Files {
				data, err := ws.ReadCommitFile(commit.ID, rel)
				if err != nil {
					return err
				}
				if err := store.Put(ctx, remoteCommitFileKey(commit.ID, rel), data); err != nil {
					return goerr.Wrap(err, "failed to upload commit file", goerr.V("id", commit.ID), goerr.V("path", rel))
				}
			}

			raw, err := json.Marshal(commit)
			if err != nil {
				return goerr.Wrap(err, "failed to marshal commit", goerr.V("id", commit.ID))
			}
			// Metadata goes last so that a listed commit always has its files
			if err := store.Put(ctx, remoteCommitMetaKey(commit.ID), raw); err != nil {
				return goerr.Wrap(err, "failed to upload commit metadata", goerr.V("id", commit.ID))
			}
			logging.From(ctx).Debug("commit pushed", "id", commit.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logging.From(ctx).Info("pushed", "commits", len(commits))
	return commits, nil
}

// PullWorkspace downloads every commit found in the blob store into the local workspace.
func (x *UseCase) PullWorkspace(ctx context.Context, dir string) ([]*model.Commit, error) {
	store := x.clients.BlobStore()

	keys, err := store.List(ctx, remoteCommitPrefix)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list remote commits")
	}

	var metaKeys []types.BlobKey
	for _, key := range keys {
		if path.Base(string(key)) == workspace.CommitMetaFile && strings.Count(string(key), "/") == 2 {
			metaKeys = append(metaKeys, key)
		}
	}

	var pulled []*model.Commit
	err = x.withWorkspace(dir, func(ws *workspace.Workspace) error {
		for _, key := range metaKeys {
			raw, err := store.Get(ctx, key)
			if err != nil {
				return goerr.Wrap(err, "failed to download commit metadata", goerr.V("key", key))
			}

			var commit model.Commit
			if err := json.Unmarshal(raw, &commit); err != nil {
				return goerr.Wrap(err, "broken commit metadata", goerr.V("key", key))
			}
			if remoteCommitMetaKey(commit.ID) != key {
				return goerr.Wrap(types.ErrValidationFailed, "commit ID does not match its location",
					goerr.V("key", key), goerr.V("id", commit.ID))
			}

			files := make(map[string][]byte, len(commit.Files))
			for _, rel := range commit.Files {
				if err := model.ValidateFilename(rel); err != nil {
					return goerr.Wrap(err, "remote commit has invalid file path", goerr.V("id", commit.ID))
				}
				data, err := store.Get(ctx, remoteCommitFileKey(commit.ID, rel))
				if err != nil {
					return goerr.Wrap(err, "failed to download commit file", goerr.V("id", commit.ID), goerr.V("path", rel))
				}
				files[rel] = data
			}

			if err := ws.ImportCommit(&commit, files); err != nil {
				return err
			}
			pulled = append(pulled, &commit)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logging.From(ctx).Info("pulled", "commits", len(pulled))
	return pulled, nil
}

func (x *UseCase) RevertWorkspace(ctx context.Context, dir string, id types.CommitID) (*model.Commit, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var commit *model.Commit
	err := x.withWorkspace(dir, func(ws *workspace.Workspace) error {
		var err error
		commit, err = ws.Revert(id)
		return err
	})
	if err != nil {
		return nil, err
	}

	logging.From(ctx).Info("reverted", "id", id, "files", len(commit.Files))
	return commit, nil
}

func (x *UseCase) ListCommits(ctx context.Context, dir string) ([]*model.Commit, error) {
	var commits []*model.Commit
	err := x.withWorkspace(dir, func(ws *workspace.Workspace) error {
		var err error
		commits, err = ws.Commits()
		return err
	})
	return commits, err
}
