package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/repovault/pkg/domain/interfaces"
	"github.com/secmon-lab/repovault/pkg/domain/model"
	"github.com/secmon-lab/repovault/pkg/domain/types"
)

type repositoryResponse struct {
	Message    string            `json:"message,omitempty"`
	Repository *model.Repository `json:"repository"`
}

func repoID(r *http.Request) types.RepoID {
	return types.RepoID(chi.URLParam(r, "id"))
}

func writeRepositories(w http.ResponseWriter, views []*model.RepositoryView) {
	if views == nil {
		views = []*model.RepositoryView{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"repositories": views})
}

func handleCreateRepository(uc interfaces.UseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input model.CreateRepositoryInput
		if err := decodeJSON(w, r, &input); err != nil {
			writeError(w, r, err)
			return
		}
		if input.Owner == "" {
			if userID, ok := UserIDFrom(r.Context()); ok {
				input.Owner = userID
			}
		}

		repo, err := uc.CreateRepository(r.Context(), &input)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{
			"message":      "Repository Created",
			"repositoryID": repo.ID,
		})
	}
}

func handleListRepositories(uc interfaces.UseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		views, err := uc.ListRepositories(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeRepositories(w, views)
	}
}

func handleGetRepository(uc interfaces.UseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := uc.ResolveRepository(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"repository": view})
	}
}

func handleGetRepositoryByName(uc interfaces.UseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := uc.GetRepositoryByName(r.Context(), chi.URLParam(r, "name"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"repository": view})
	}
}

func handleListRepositoriesByOwner(uc interfaces.UseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		views, err := uc.ListRepositoriesByOwner(r.Context(), types.UserID(chi.URLParam(r, "userID")))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeRepositories(w, views)
	}
}

func handleUpdateRepository(uc interfaces.UseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input model.UpdateRepositoryInput
		if err := decodeJSON(w, r, &input); err != nil {
			writeError(w, r, err)
			return
		}

		repo, err := uc.UpdateRepository(r.Context(), repoID(r), &input)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, repositoryResponse{Message: "Repository updated successfully", Repository: repo})
	}
}

func handleToggleVisibility(uc interfaces.UseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input model.ToggleVisibilityInput
		// The body is optional
		if r.ContentLength != 0 {
			if err := decodeJSON(w, r, &input); err != nil {
				writeError(w, r, err)
				return
			}
		}

		repo, err := uc.ToggleVisibility(r.Context(), repoID(r), &input)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, repositoryResponse{Message: "Repository visibility toggled successfully", Repository: repo})
	}
}

func handleDeleteRepository(uc interfaces.UseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := uc.DeleteRepository(r.Context(), repoID(r)); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, messageResponse{Message: "Repository deleted successfully"})
	}
}
