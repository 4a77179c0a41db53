package server

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/repovault/pkg/domain/interfaces"
	"github.com/secmon-lab/repovault/pkg/domain/model"
	"github.com/secmon-lab/repovault/pkg/domain/types"
)

type fileResponse struct {
	Message string                `json:"message"`
	File    *model.FileDescriptor `json:"file"`
}

// filenameParam returns the file path after /file/. It may contain slashes.
func filenameParam(r *http.Request) (string, error) {
	name, err := url.PathUnescape(chi.URLParam(r, "*"))
	if err != nil {
		return "", goerr.Wrap(types.ErrValidationFailed, "malformed filename in path",
			goerr.V("raw", chi.URLParam(r, "*")),
			types.Reason("Invalid filename"))
	}
	return name, nil
}

func handlePushFiles(uc interfaces.UseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input model.PushInput
		if err := decodeJSON(w, r, &input); err != nil {
			writeError(w, r, err)
			return
		}

		files, err := uc.PushFiles(r.Context(), repoID(r), &input)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"message": "Files pushed successfully",
			"files":   files,
		})
	}
}

func handlePullFiles(uc interfaces.UseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		files, err := uc.PullFiles(r.Context(), repoID(r))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"files": files})
	}
}

func handleAddFile(uc interfaces.UseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input model.FileInput
		if err := decodeJSON(w, r, &input); err != nil {
			writeError(w, r, err)
			return
		}

		desc, err := uc.AddFile(r.Context(), repoID(r), &input)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, fileResponse{Message: "File added successfully", File: desc})
	}
}

func handleUpdateFile(uc interfaces.UseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filename, err := filenameParam(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		var input model.FileInput
		if err := decodeJSON(w, r, &input); err != nil {
			writeError(w, r, err)
			return
		}
		input.Filename = filename

		desc, err := uc.UpdateFile(r.Context(), repoID(r), &input)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, fileResponse{Message: "File updated successfully", File: desc})
	}
}

func handleDeleteFile(uc interfaces.UseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filename, err := filenameParam(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		if err := uc.DeleteFile(r.Context(), repoID(r), filename); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, messageResponse{Message: "File deleted successfully"})
	}
}

func handleGetFile(uc interfaces.UseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filename, err := filenameParam(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		file, err := uc.GetFile(r.Context(), repoID(r), filename)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"file":    file.File,
			"content": string(file.Content),
		})
	}
}
