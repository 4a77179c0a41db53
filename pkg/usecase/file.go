package usecase

import (
	"context"
	"errors"
	"slices"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/repovault/pkg/domain/model"
	"github.com/secmon-lab/repovault/pkg/domain/types"
	"github.com/secmon-lab/repovault/pkg/utils/logging"
	"github.com/secmon-lab/repovault/pkg/utils/safe"
)

func fileNotFound(id types.RepoID, filename string) error {
	return goerr.Wrap(types.ErrNotFound, "file not found",
		goerr.V("repo_id", id),
		goerr.V("filename", filename),
		types.Reason("File not found"))
}

func fileExists(id types.RepoID, filename string) error {
	return goerr.Wrap(types.ErrConflict, "file already exists",
		goerr.V("repo_id", id),
		goerr.V("filename", filename),
		types.Reason("File already exists"))
}

// writeBlobs stores every file and returns descriptors in input order
func (x *UseCase) writeBlobs(ctx context.Context, id types.RepoID, files []model.FileInput) ([]model.FileDescriptor, error) {
	ts := now(ctx)
	descs := make([]model.FileDescriptor, 0, len(files))
	for _, f := range files {
		key := model.BlobKeyFor(id, f.Filename)
		if err := x.clients.BlobStore().Put(ctx, key, []byte(f.Content)); err != nil {
			return nil, goerr.Wrap(err, "failed to upload file", goerr.V("key", key))
		}
		descs = append(descs, model.FileDescriptor{
			Filename:   f.Filename,
			Key:        key,
			Size:       int64(len(f.Content)),
			UploadedAt: ts,
		})
	}
	return descs, nil
}

// droppedFiles returns descriptors of current that are not in next
func droppedFiles(current, next []model.FileDescriptor) []model.FileDescriptor {
	var dropped []model.FileDescriptor
	for _, d := range current {
		if !slices.ContainsFunc(next, func(n model.FileDescriptor) bool { return n.Key == d.Key }) {
			dropped = append(dropped, d)
		}
	}
	return dropped
}

func (x *UseCase) deleteBlobs(ctx context.Context, descs []model.FileDescriptor) {
	for _, d := range descs {
		safe.Cleanup(ctx, string(d.Key), func(ctx context.Context) error {
			return x.clients.BlobStore().Delete(ctx, d.Key)
		})
	}
}

// discardNewBlobs removes blobs written for a batch that was not persisted. Blobs that
// overwrote a file of the previous content are kept since a descriptor still refers to them.
func (x *UseCase) discardNewBlobs(ctx context.Context, previous, written []model.FileDescriptor) {
	x.deleteBlobs(ctx, droppedFiles(written, previous))
}

func (x *UseCase) AddFile(ctx context.Context, id types.RepoID, input *model.FileInput) (*model.FileDescriptor, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	repo, err := x.getRepository(ctx, id)
	if err != nil {
		return nil, err
	}
	if repo.FindFile(input.Filename) >= 0 {
		return nil, fileExists(id, input.Filename)
	}

	descs, err := x.writeBlobs(ctx, id, []model.FileInput{*input})
	if err != nil {
		return nil, err
	}
	desc := descs[0]

	updated, err := x.clients.Database().UpdateRepository(ctx, id, func(repo *model.Repository) error {
		if repo.FindFile(desc.Filename) >= 0 {
			return fileExists(id, desc.Filename)
		}
		repo.Content = append(repo.Content, desc)
		repo.UpdatedAt = desc.UploadedAt
		return nil
	})
	if err != nil {
		// The blob of a concurrently added file with the same name must not be removed
		if !errors.Is(err, types.ErrConflict) {
			x.deleteBlobs(ctx, descs)
		}
		return nil, notFound(err, "Repository not found")
	}

	x.publish(ctx, updated.Owner, &model.Event{
		Type:    types.EventRepositoryUpdated,
		RepoID:  id,
		Message: "File " + desc.Filename + " added",
	})
	return &desc, nil
}

func (x *UseCase) UpdateFile(ctx context.Context, id types.RepoID, input *model.FileInput) (*model.FileDescriptor, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	repo, err := x.getRepository(ctx, id)
	if err != nil {
		return nil, err
	}
	if repo.FindFile(input.Filename) < 0 {
		return nil, fileNotFound(id, input.Filename)
	}

	descs, err := x.writeBlobs(ctx, id, []model.FileInput{*input})
	if err != nil {
		return nil, err
	}
	desc := descs[0]

	updated, err := x.clients.Database().UpdateRepository(ctx, id, func(repo *model.Repository) error {
		idx := repo.FindFile(desc.Filename)
		if idx < 0 {
			return fileNotFound(id, desc.Filename)
		}
		repo.Content[idx] = desc
		repo.UpdatedAt = desc.UploadedAt
		return nil
	})
	if err != nil {
		return nil, notFound(err, "Repository not found")
	}

	x.publish(ctx, updated.Owner, &model.Event{
		Type:    types.EventRepositoryUpdated,
		RepoID:  id,
		Message: "File " + desc.Filename + " updated",
	})
	return &desc, nil
}

// DeleteFile removes the descriptor first. The blob is removed afterwards on a best-effort basis.
func (x *UseCase) DeleteFile(ctx context.Context, id types.RepoID, filename string) error {
	if err := id.Validate(); err != nil {
		return err
	}
	if err := model.ValidateFilename(filename); err != nil {
		return err
	}

	var removed model.FileDescriptor
	ts := now(ctx)
	updated, err := x.clients.Database().UpdateRepository(ctx, id, func(repo *model.Repository) error {
		idx := repo.FindFile(filename)
		if idx < 0 {
			return fileNotFound(id, filename)
		}
		removed = repo.Content[idx]
		repo.Content = slices.Delete(repo.Content, idx, idx+1)
		repo.UpdatedAt = ts
		return nil
	})
	if err != nil {
		return notFound(err, "Repository not found")
	}
	x.deleteBlobs(ctx, []model.FileDescriptor{removed})

	x.publish(ctx, updated.Owner, &model.Event{
		Type:    types.EventRepositoryUpdated,
		RepoID:  id,
		Message: "File " + filename + " deleted",
	})
	return nil
}

func (x *UseCase) GetFile(ctx context.Context, id types.RepoID, filename string) (*model.FileContent, error) {
	if err := model.ValidateFilename(filename); err != nil {
		return nil, err
	}
	repo, err := x.getRepository(ctx, id)
	if err != nil {
		return nil, err
	}

	idx := repo.FindFile(filename)
	if idx < 0 {
		return nil, fileNotFound(id, filename)
	}
	desc := repo.Content[idx]

	data, err := x.clients.BlobStore().Get(ctx, desc.Key)
	if err != nil {
		return nil, notFound(err, "File content not found")
	}

	return &model.FileContent{File: desc, Content: data}, nil
}

// PushFiles replaces the whole content of the repository with the batch.
func (x *UseCase) PushFiles(ctx context.Context, id types.RepoID, input *model.PushInput) ([]model.FileDescriptor, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	before, err := x.getRepository(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkRevision(before, input.Revision); err != nil {
		return nil, err
	}

	written, err := x.writeBlobs(ctx, id, input.Files)
	if err != nil {
		return nil, err
	}

	var dropped []model.FileDescriptor
	ts := now(ctx)
	updated, err := x.clients.Database().UpdateRepository(ctx, id, func(repo *model.Repository) error {
		if err := checkRevision(repo, input.Revision); err != nil {
			return err
		}
		dropped = droppedFiles(repo.Content, written)
		repo.Content = written
		repo.UpdatedAt = ts
		return nil
	})
	if err != nil {
		x.discardNewBlobs(ctx, before.Content, written)
		return nil, notFound(err, "Repository not found")
	}
	x.deleteBlobs(ctx, dropped)

	logging.From(ctx).Info("files pushed", "repo_id", id, "files", len(written), "dropped", len(dropped))
	x.publish(ctx, updated.Owner, &model.Event{
		Type:    types.EventRepositoryPushed,
		RepoID:  id,
		Message: "Files pushed to " + updated.Name,
	})
	return written, nil
}

// PullFiles returns every file of the repository. A file that cannot be fetched is reported
// with placeholder content instead of failing the whole pull.
func (x *UseCase) PullFiles(ctx context.Context, id types.RepoID) ([]*model.PulledFile, error) {
	repo, err := x.getRepository(ctx, id)
	if err != nil {
		return nil, err
	}

	files := make([]*model.PulledFile, 0, len(repo.Content))
	for _, desc := range repo.Content {
		data, err := x.clients.BlobStore().Get(ctx, desc.Key)
		if err != nil {
			logging.From(ctx).Warn("failed to fetch file", "repo_id", id, "key", desc.Key, "error", err)
			files = append(files, &model.PulledFile{
				Filename: desc.Filename,
				Content:  model.PullErrorPlaceholder,
				Error:    true,
			})
			continue
		}

		files = append(files, &model.PulledFile{
			Filename: desc.Filename,
			Content:  string(data),
		})
	}
	return files, nil
}
