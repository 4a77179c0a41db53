package server

import (
	"net/http"
	"time"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/repovault/pkg/domain/interfaces"
	"github.com/secmon-lab/repovault/pkg/utils/logging"
)

type Server struct {
	mux *chi.Mux
}

func safeWrite(w http.ResponseWriter, code int, body []byte) {
	w.WriteHeader(code)

	// nosemgrep: go.lang.security.audit.xss.no-direct-write-to-responsewriter.no-direct-write-to-responsewriter
	// Why: The response body is JSON encoded or a fixed text
	if _, err := w.Write(body); err != nil {
		logging.Default().Error("fail to write response", slog.Any("error", err))
	}
}

type config struct {
	heartbeat time.Duration
}

type Option func(*config)

// WithHeartbeat sets the interval of keep-alive comments on event streams
func WithHeartbeat(d time.Duration) Option {
	return func(cfg *config) {
		cfg.heartbeat = d
	}
}

func New(uc interfaces.UseCase, options ...Option) *Server {
	cfg := &config{
		heartbeat: 30 * time.Second,
	}
	for _, opt := range options {
		opt(cfg)
	}

	r := chi.NewRouter()
	r.Use(preProcess)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		safeWrite(w, http.StatusOK, []byte("ok"))
	})

	// Credentials are issued here, so a stale token must not block them.
	r.Post("/signup", handleSignup(uc))
	r.Post("/login", handleLogin(uc))

	r.Group(func(r chi.Router) {
		r.Use(authenticate(uc))

		// Users
		r.Get("/allusers", handleListUsers(uc))
		r.Get("/userprofile/{id}", handleGetProfile(uc))
		r.Put("/updateprofile/{id}", handleUpdateProfile(uc))
		r.Delete("/deleteprofile/{id}", handleDeleteProfile(uc))

		// Repositories
		r.Post("/repo/create", handleCreateRepository(uc))
		r.Get("/repo/all", handleListRepositories(uc))
		r.Get("/repo/name/{name}", handleGetRepositoryByName(uc))
		r.Get("/repo/user/{userID}", handleListRepositoriesByOwner(uc))
		r.Put("/repo/update/{id}", handleUpdateRepository(uc))
		r.Patch("/repo/toggle/{id}", handleToggleVisibility(uc))
		r.Delete("/repo/delete/{id}", handleDeleteRepository(uc))
		r.Get("/repo/{id}", handleGetRepository(uc))

		// Files
		r.Post("/repo/{id}/push", handlePushFiles(uc))
		r.Get("/repo/{id}/pull", handlePullFiles(uc))
		r.Post("/repo/{id}/file", handleAddFile(uc))
		r.Get("/repo/{id}/file/*", handleGetFile(uc))
		r.Put("/repo/{id}/file/*", handleUpdateFile(uc))
		r.Delete("/repo/{id}/file/*", handleDeleteFile(uc))

		// Issues
		r.Post("/repo/{id}/issue/create", handleCreateIssue(uc))
		r.Get("/repo/{id}/issue/all", handleListIssues(uc))
		r.Get("/repo/{id}/issue/{issueID}", handleGetIssue(uc))
		r.Put("/repo/{id}/issue/update/{issueID}", handleUpdateIssue(uc))
		r.Delete("/repo/{id}/issue/delete/{issueID}", handleDeleteIssue(uc))
	})

	r.Get("/events/{userID}", handleEvents(uc, cfg.heartbeat))

	return &Server{
		mux: r,
	}
}

func (x *Server) Mux() *chi.Mux {
	return x.mux
}
