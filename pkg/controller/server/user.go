package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/repovault/pkg/domain/interfaces"
	"github.com/secmon-lab/repovault/pkg/domain/model"
	"github.com/secmon-lab/repovault/pkg/domain/types"
)

type authResponse struct {
	Success bool         `json:"success"`
	Token   string       `json:"token"`
	UserID  types.UserID `json:"userId"`
}

type userResponse struct {
	Message string      `json:"message"`
	User    *model.User `json:"user"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func handleSignup(uc interfaces.UseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input model.SignupInput
		if err := decodeJSON(w, r, &input); err != nil {
			writeError(w, r, err)
			return
		}

		res, err := uc.Signup(r.Context(), &input)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, authResponse{Success: true, Token: res.Token, UserID: res.UserID})
	}
}

func handleLogin(uc interfaces.UseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input model.LoginInput
		if err := decodeJSON(w, r, &input); err != nil {
			writeError(w, r, err)
			return
		}

		res, err := uc.Login(r.Context(), &input)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, authResponse{Success: true, Token: res.Token, UserID: res.UserID})
	}
}

func handleListUsers(uc interfaces.UseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := uc.ListUsers(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		if users == nil {
			users = []*model.User{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"users": users})
	}
}

func handleGetProfile(uc interfaces.UseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := uc.GetProfile(r.Context(), types.UserID(chi.URLParam(r, "id")))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, userResponse{Message: "User Profile fetched successfully", User: user})
	}
}

func handleUpdateProfile(uc interfaces.UseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input model.UpdateProfileInput
		if err := decodeJSON(w, r, &input); err != nil {
			writeError(w, r, err)
			return
		}

		user, err := uc.UpdateProfile(r.Context(), types.UserID(chi.URLParam(r, "id")), &input)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, userResponse{Message: "Profile updated successfully", User: user})
	}
}

func handleDeleteProfile(uc interfaces.UseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := uc.DeleteProfile(r.Context(), types.UserID(chi.URLParam(r, "id"))); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, messageResponse{Message: "Profile deleted"})
	}
}
