package server_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/repovault/pkg/controller/server"
	"github.com/secmon-lab/repovault/pkg/domain/types"
	"github.com/secmon-lab/repovault/pkg/infra"
	"github.com/secmon-lab/repovault/pkg/infra/auth"
	"github.com/secmon-lab/repovault/pkg/usecase"
	"golang.org/x/crypto/bcrypt"
)

func newServer(t *testing.T, options ...server.Option) *server.Server {
	t.Helper()
	tokenSvc := gt.R1(auth.NewTokenService("0123456789abcdef0123456789abcdef", time.Hour)).NoError(t)
	passwordSvc := gt.R1(auth.NewPasswordService(bcrypt.MinCost)).NoError(t)

	uc := usecase.New(infra.New(
		infra.WithTokenService(tokenSvc),
		infra.WithPasswordService(passwordSvc),
	))
	return server.New(uc, options...)
}

type response struct {
	Code int
	Body map[string]any
}

func call(t *testing.T, srv *server.Server, method, path, body string, headers ...string) response {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	srv.Mux().ServeHTTP(rec, req)

	resp := response{Code: rec.Code}
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp.Body))
	}
	return resp
}

func signup(t *testing.T, srv *server.Server, name string) (string, string) {
	t.Helper()
	resp := call(t, srv, http.MethodPost, "/signup",
		`{"username":"`+name+`","email":"`+name+`@example.com","password":"pw-`+name+`"}`)
	gt.V(t, resp.Code).Equal(http.StatusCreated)
	gt.V(t, resp.Body["success"]).Equal(true)
	return resp.Body["userId"].(string), resp.Body["token"].(string)
}

func TestHealth(t *testing.T) {
	srv := newServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Mux().ServeHTTP(rec, req)

	gt.V(t, rec.Code).Equal(http.StatusOK)
	gt.V(t, rec.Body.String()).Equal("ok")
}

func TestUserRoutes(t *testing.T) {
	srv := newServer(t)
	userID, _ := signup(t, srv, "alice")

	t.Run("duplicated signup is conflict", func(t *testing.T) {
		resp := call(t, srv, http.MethodPost, "/signup",
			`{"username":"alice","email":"alice@example.com","password":"pw"}`)
		gt.V(t, resp.Code).Equal(http.StatusConflict)
		gt.V(t, resp.Body["error"]).Equal("conflict")
		gt.V(t, resp.Body["message"]).Equal("User already exists")
	})

	t.Run("login with valid and wrong password", func(t *testing.T) {
		resp := call(t, srv, http.MethodPost, "/login", `{"email":"alice@example.com","password":"pw-alice"}`)
		gt.V(t, resp.Code).Equal(http.StatusOK)
		gt.V(t, resp.Body["userId"]).Equal(userID)

		resp = call(t, srv, http.MethodPost, "/login", `{"email":"alice@example.com","password":"wrong"}`)
		gt.V(t, resp.Code).Equal(http.StatusUnauthorized)
		gt.V(t, resp.Body["message"]).Equal("Invalid email or password")
	})

	t.Run("stale token does not block signup and login", func(t *testing.T) {
		resp := call(t, srv, http.MethodPost, "/login", `{"email":"alice@example.com","password":"pw-alice"}`,
			"Authorization", "Bearer not.a.jwt")
		gt.V(t, resp.Code).Equal(http.StatusOK)
		gt.V(t, resp.Body["userId"]).Equal(userID)

		resp = call(t, srv, http.MethodPost, "/signup",
			`{"username":"carol","email":"carol@example.com","password":"pw-carol"}`,
			"Authorization", "Bearer not.a.jwt")
		gt.V(t, resp.Code).Equal(http.StatusCreated)

		resp = call(t, srv, http.MethodGet, "/allusers", "", "Authorization", "Bearer not.a.jwt")
		gt.V(t, resp.Code).Equal(http.StatusUnauthorized)
	})

	t.Run("broken body is validation error", func(t *testing.T) {
		resp := call(t, srv, http.MethodPost, "/login", `{"email":`)
		gt.V(t, resp.Code).Equal(http.StatusBadRequest)
		gt.V(t, resp.Body["error"]).Equal("validation_error")
		gt.V(t, resp.Body["message"]).Equal("Invalid request body")
	})

	t.Run("profile lifecycle", func(t *testing.T) {
		resp := call(t, srv, http.MethodGet, "/userprofile/"+userID, "")
		gt.V(t, resp.Code).Equal(http.StatusOK)
		user := resp.Body["user"].(map[string]any)
		gt.V(t, user["username"]).Equal("alice")
		_, hasHash := user["PasswordHash"]
		gt.False(t, hasHash)

		resp = call(t, srv, http.MethodPut, "/updateprofile/"+userID, `{"email":"alice2@example.com"}`)
		gt.V(t, resp.Code).Equal(http.StatusOK)
		gt.V(t, resp.Body["message"]).Equal("Profile updated successfully")

		resp = call(t, srv, http.MethodGet, "/allusers", "")
		gt.V(t, resp.Code).Equal(http.StatusOK)
		gt.A(t, resp.Body["users"].([]any)).Length(1)

		resp = call(t, srv, http.MethodDelete, "/deleteprofile/"+userID, "")
		gt.V(t, resp.Code).Equal(http.StatusOK)

		resp = call(t, srv, http.MethodGet, "/userprofile/"+userID, "")
		gt.V(t, resp.Code).Equal(http.StatusNotFound)
		gt.V(t, resp.Body["message"]).Equal("User not found")
	})

	t.Run("malformed user id is validation error", func(t *testing.T) {
		resp := call(t, srv, http.MethodGet, "/userprofile/not-an-id", "")
		gt.V(t, resp.Code).Equal(http.StatusBadRequest)
	})
}

func TestRepositoryRoutes(t *testing.T) {
	srv := newServer(t)
	userID, token := signup(t, srv, "bob")
	bearer := []string{"Authorization", "Bearer " + token}

	resp := call(t, srv, http.MethodPost, "/repo/create", `{"name":"demo","description":"first"}`, bearer...)
	gt.V(t, resp.Code).Equal(http.StatusCreated)
	gt.V(t, resp.Body["message"]).Equal("Repository Created")
	repoID := resp.Body["repositoryID"].(string)

	t.Run("owner is required without token", func(t *testing.T) {
		resp := call(t, srv, http.MethodPost, "/repo/create", `{"name":"other"}`)
		gt.V(t, resp.Code).Equal(http.StatusBadRequest)
	})

	t.Run("same name is conflict", func(t *testing.T) {
		resp := call(t, srv, http.MethodPost, "/repo/create", `{"name":"demo","owner":"`+userID+`"}`)
		gt.V(t, resp.Code).Equal(http.StatusConflict)
		gt.V(t, resp.Body["message"]).Equal("Repository already exists")
	})

	t.Run("get by id, name and owner", func(t *testing.T) {
		resp := call(t, srv, http.MethodGet, "/repo/"+repoID, "")
		gt.V(t, resp.Code).Equal(http.StatusOK)
		repo := resp.Body["repository"].(map[string]any)
		gt.V(t, repo["name"]).Equal("demo")
		gt.V(t, repo["owner"].(map[string]any)["username"]).Equal("bob")

		resp = call(t, srv, http.MethodGet, "/repo/demo", "")
		gt.V(t, resp.Code).Equal(http.StatusOK)
		gt.V(t, resp.Body["repository"].(map[string]any)["id"]).Equal(repoID)

		resp = call(t, srv, http.MethodGet, "/repo/name/demo", "")
		gt.V(t, resp.Code).Equal(http.StatusOK)

		resp = call(t, srv, http.MethodGet, "/repo/user/"+userID, "")
		gt.V(t, resp.Code).Equal(http.StatusOK)
		gt.A(t, resp.Body["repositories"].([]any)).Length(1)

		resp = call(t, srv, http.MethodGet, "/repo/all", "")
		gt.V(t, resp.Code).Equal(http.StatusOK)
		gt.A(t, resp.Body["repositories"].([]any)).Length(1)

		resp = call(t, srv, http.MethodGet, "/repo/missing", "")
		gt.V(t, resp.Code).Equal(http.StatusNotFound)
		gt.V(t, resp.Body["error"]).Equal("not_found")
	})

	t.Run("update and toggle", func(t *testing.T) {
		resp := call(t, srv, http.MethodPut, "/repo/update/"+repoID, `{"description":"second"}`)
		gt.V(t, resp.Code).Equal(http.StatusOK)
		gt.V(t, resp.Body["repository"].(map[string]any)["description"]).Equal("second")

		resp = call(t, srv, http.MethodPatch, "/repo/toggle/"+repoID, "")
		gt.V(t, resp.Code).Equal(http.StatusOK)
		gt.V(t, resp.Body["repository"].(map[string]any)["visibility"]).Equal(false)

		resp = call(t, srv, http.MethodPatch, "/repo/toggle/"+repoID, `{"revision":0}`)
		gt.V(t, resp.Code).Equal(http.StatusConflict)
	})

	t.Run("delete", func(t *testing.T) {
		resp := call(t, srv, http.MethodDelete, "/repo/delete/"+repoID, "")
		gt.V(t, resp.Code).Equal(http.StatusOK)
		gt.V(t, resp.Body["message"]).Equal("Repository deleted successfully")

		resp = call(t, srv, http.MethodGet, "/repo/"+repoID, "")
		gt.V(t, resp.Code).Equal(http.StatusNotFound)
	})
}

func TestFileRoutes(t *testing.T) {
	srv := newServer(t)
	userID, _ := signup(t, srv, "carol")
	resp := call(t, srv, http.MethodPost, "/repo/create", `{"name":"files","owner":"`+userID+`"}`)
	gt.V(t, resp.Code).Equal(http.StatusCreated)
	base := "/repo/" + resp.Body["repositoryID"].(string)

	resp = call(t, srv, http.MethodPost, base+"/push",
		`{"files":[{"filename":"README.md","content":"hello"},{"filename":"src/main.go","content":"package main"}]}`)
	gt.V(t, resp.Code).Equal(http.StatusOK)
	gt.A(t, resp.Body["files"].([]any)).Length(2)

	t.Run("pull returns contents", func(t *testing.T) {
		resp := call(t, srv, http.MethodGet, base+"/pull", "")
		gt.V(t, resp.Code).Equal(http.StatusOK)
		files := resp.Body["files"].([]any)
		gt.A(t, files).Length(2)
		contents := map[string]any{}
		for _, f := range files {
			m := f.(map[string]any)
			contents[m["filename"].(string)] = m["content"]
		}
		gt.V(t, contents["src/main.go"]).Equal("package main")
	})

	t.Run("single file operations with nested path", func(t *testing.T) {
		resp := call(t, srv, http.MethodPost, base+"/file", `{"filename":"docs/a.txt","content":"A"}`)
		gt.V(t, resp.Code).Equal(http.StatusCreated)

		resp = call(t, srv, http.MethodPost, base+"/file", `{"filename":"docs/a.txt","content":"A"}`)
		gt.V(t, resp.Code).Equal(http.StatusConflict)

		resp = call(t, srv, http.MethodPut, base+"/file/docs/a.txt", `{"content":"B"}`)
		gt.V(t, resp.Code).Equal(http.StatusOK)

		resp = call(t, srv, http.MethodGet, base+"/file/docs/a.txt", "")
		gt.V(t, resp.Code).Equal(http.StatusOK)
		gt.V(t, resp.Body["content"]).Equal("B")

		resp = call(t, srv, http.MethodDelete, base+"/file/docs/a.txt", "")
		gt.V(t, resp.Code).Equal(http.StatusOK)

		resp = call(t, srv, http.MethodGet, base+"/file/docs/a.txt", "")
		gt.V(t, resp.Code).Equal(http.StatusNotFound)
	})

	t.Run("invalid filename is rejected", func(t *testing.T) {
		resp := call(t, srv, http.MethodPost, base+"/file", `{"filename":"../escape","content":"x"}`)
		gt.V(t, resp.Code).Equal(http.StatusBadRequest)
	})
}

func TestIssueRoutes(t *testing.T) {
	srv := newServer(t)
	userID, _ := signup(t, srv, "dave")
	resp := call(t, srv, http.MethodPost, "/repo/create", `{"name":"tracker","owner":"`+userID+`"}`)
	base := "/repo/" + resp.Body["repositoryID"].(string) + "/issue"

	resp = call(t, srv, http.MethodPost, base+"/create", `{"title":"bug","description":"broken"}`)
	gt.V(t, resp.Code).Equal(http.StatusCreated)
	issueID := resp.Body["issueID"].(string)

	resp = call(t, srv, http.MethodPost, base+"/create", `{"title":""}`)
	gt.V(t, resp.Code).Equal(http.StatusBadRequest)

	resp = call(t, srv, http.MethodGet, base+"/all", "")
	gt.V(t, resp.Code).Equal(http.StatusOK)
	gt.A(t, resp.Body["issues"].([]any)).Length(1)

	resp = call(t, srv, http.MethodGet, base+"/"+issueID, "")
	gt.V(t, resp.Code).Equal(http.StatusOK)
	gt.V(t, resp.Body["issue"].(map[string]any)["title"]).Equal("bug")

	resp = call(t, srv, http.MethodPut, base+"/update/"+issueID, `{"status":"closed"}`)
	gt.V(t, resp.Code).Equal(http.StatusOK)
	gt.V(t, resp.Body["issue"].(map[string]any)["status"]).Equal("closed")

	resp = call(t, srv, http.MethodPut, base+"/update/"+issueID, `{"status":"unknown"}`)
	gt.V(t, resp.Code).Equal(http.StatusBadRequest)

	resp = call(t, srv, http.MethodDelete, base+"/delete/"+issueID, "")
	gt.V(t, resp.Code).Equal(http.StatusOK)
	gt.V(t, resp.Body["message"]).Equal("Issue deleted")

	resp = call(t, srv, http.MethodGet, base+"/"+issueID, "")
	gt.V(t, resp.Code).Equal(http.StatusNotFound)
}

func TestEventStream(t *testing.T) {
	srv := newServer(t, server.WithHeartbeat(50*time.Millisecond))
	ts := httptest.NewServer(srv.Mux())
	defer ts.Close()

	userID, _ := signup(t, srv, "erin")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req := gt.R1(http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/events/"+userID, nil)).NoError(t)
	resp := gt.R1(http.DefaultClient.Do(req)).NoError(t)
	defer resp.Body.Close()

	gt.V(t, resp.StatusCode).Equal(http.StatusOK)
	gt.V(t, resp.Header.Get("Content-Type")).Equal("text/event-stream")

	lines := make(chan string, 64)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	// Wait the subscription before publishing
	gt.V(t, <-lines).Equal(": connected")

	created := call(t, srv, http.MethodPost, "/repo/create", `{"name":"live","owner":"`+userID+`"}`)
	gt.V(t, created.Code).Equal(http.StatusCreated)

	var gotEvent, gotPing bool
	for !gotEvent || !gotPing {
		select {
		case line, ok := <-lines:
			if !ok {
				t.Fatal("stream closed")
			}
			switch {
			case line == "event: "+string(types.EventRepositoryCreated):
				gotEvent = true
			case line == ": ping":
				gotPing = true
			}
		case <-ctx.Done():
			t.Fatalf("timeout: event=%v ping=%v", gotEvent, gotPing)
		}
	}
}

func TestEventStreamInvalidUser(t *testing.T) {
	srv := newServer(t)
	resp := call(t, srv, http.MethodGet, "/events/bad-id", "")
	gt.V(t, resp.Code).Equal(http.StatusBadRequest)
}
