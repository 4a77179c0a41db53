package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/repovault/pkg/domain/interfaces"
	"github.com/secmon-lab/repovault/pkg/domain/model"
	"github.com/secmon-lab/repovault/pkg/domain/types"
)

func issueID(r *http.Request) types.IssueID {
	return types.IssueID(chi.URLParam(r, "issueID"))
}

func handleCreateIssue(uc interfaces.UseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input model.CreateIssueInput
		if err := decodeJSON(w, r, &input); err != nil {
			writeError(w, r, err)
			return
		}

		issue, err := uc.CreateIssue(r.Context(), repoID(r), &input)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{
			"message": "Issue created",
			"issueID": issue.ID,
		})
	}
}

func handleListIssues(uc interfaces.UseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		issues, err := uc.ListIssues(r.Context(), repoID(r))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"issues": issues})
	}
}

func handleGetIssue(uc interfaces.UseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		issue, err := uc.GetIssue(r.Context(), repoID(r), issueID(r))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"issue": issue})
	}
}

func handleUpdateIssue(uc interfaces.UseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input model.UpdateIssueInput
		if err := decodeJSON(w, r, &input); err != nil {
			writeError(w, r, err)
			return
		}

		issue, err := uc.UpdateIssue(r.Context(), repoID(r), issueID(r), &input)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"message": "Issue updated",
			"issue":   issue,
		})
	}
}

func handleDeleteIssue(uc interfaces.UseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := uc.DeleteIssue(r.Context(), repoID(r), issueID(r)); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, messageResponse{Message: "Issue deleted"})
	}
}
