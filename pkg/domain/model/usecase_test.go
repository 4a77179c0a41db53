package model_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/repovault/pkg/domain/model"
	"github.com/secmon-lab/repovault/pkg/domain/types"
)

func ptr[T any](v T) *T { return &v }

func TestSignupInputValidate(t *testing.T) {
	t.Run("valid input passes validation", func(t *testing.T) {
		input := &model.SignupInput{Username: "alice", Email: "alice@example.com", Password: "secret-pass"}
		gt.NoError(t, input.Validate())
	})

	t.Run("missing field fails with reason", func(t *testing.T) {
		input := &model.SignupInput{Username: "alice", Email: "alice@example.com"}
		err := input.Validate()
		gt.Error(t, err)
		gt.True(t, errors.Is(err, types.ErrValidationFailed))
		gt.V(t, types.ReasonOf(err)).Equal("All fields required")
	})

	t.Run("malformed email fails validation", func(t *testing.T) {
		input := &model.SignupInput{Username: "alice", Email: "not-an-email", Password: "secret-pass"}
		gt.Error(t, input.Validate())
	})

	t.Run("password longer than 72 bytes fails validation", func(t *testing.T) {
		long := make([]byte, 73)
		for i := range long {
			long[i] = 'a'
		}
		input := &model.SignupInput{Username: "alice", Email: "alice@example.com", Password: string(long)}
		gt.Error(t, input.Validate())
	})
}

func TestCreateRepositoryInput(t *testing.T) {
	owner := types.NewUserID()

	t.Run("name is required", func(t *testing.T) {
		input := &model.CreateRepositoryInput{Owner: owner}
		err := input.Validate()
		gt.True(t, errors.Is(err, types.ErrValidationFailed))
		gt.V(t, types.ReasonOf(err)).Equal("Repository name is required")
	})

	t.Run("owner must be well-formed", func(t *testing.T) {
		input := &model.CreateRepositoryInput{Name: "demo", Owner: "12345"}
		err := input.Validate()
		gt.True(t, errors.Is(err, types.ErrValidationFailed))
		gt.V(t, types.ReasonOf(err)).Equal("Invalid User ID")
	})

	t.Run("name with slash is rejected", func(t *testing.T) {
		input := &model.CreateRepositoryInput{Name: "a/b", Owner: owner}
		gt.Error(t, input.Validate())
	})

	t.Run("visibility resolution", func(t *testing.T) {
		gt.True(t, (&model.CreateRepositoryInput{}).Public())
		gt.False(t, (&model.CreateRepositoryInput{Visibility: ptr(false)}).Public())
		gt.False(t, (&model.CreateRepositoryInput{IsPrivate: ptr(true)}).Public())
		gt.True(t, (&model.CreateRepositoryInput{IsPrivate: ptr(false)}).Public())
	})
}

func TestValidateFilename(t *testing.T) {
	valid := []string{"README.md", "src/main.go", "a-b_c.txt"}
	for _, name := range valid {
		t.Run("valid "+name, func(t *testing.T) {
			gt.NoError(t, model.ValidateFilename(name))
		})
	}

	invalid := []string{"", "/etc/passwd", "../x", "a/../b", "a//b", "./a", "a\\b", "dir/"}
	for _, name := range invalid {
		t.Run("invalid "+name, func(t *testing.T) {
			gt.Error(t, model.ValidateFilename(name))
		})
	}
}

func TestPushInputValidate(t *testing.T) {
	t.Run("nil files are rejected", func(t *testing.T) {
		gt.Error(t, (&model.PushInput{}).Validate())
	})

	t.Run("empty batch is accepted", func(t *testing.T) {
		gt.NoError(t, (&model.PushInput{Files: []model.FileInput{}}).Validate())
	})

	t.Run("duplicated filename is rejected", func(t *testing.T) {
		input := &model.PushInput{Files: []model.FileInput{
			{Filename: "a.txt", Content: "1"},
			{Filename: "a.txt", Content: "2"},
		}}
		gt.Error(t, input.Validate())
	})
}

func TestUpdateInputs(t *testing.T) {
	t.Run("empty profile update is rejected", func(t *testing.T) {
		err := (&model.UpdateProfileInput{}).Validate()
		gt.V(t, types.ReasonOf(err)).Equal("No fields to update")
	})

	t.Run("empty repository update is rejected", func(t *testing.T) {
		gt.Error(t, (&model.UpdateRepositoryInput{}).Validate())
	})

	t.Run("description only repository update is accepted", func(t *testing.T) {
		gt.NoError(t, (&model.UpdateRepositoryInput{Description: ptr("")}).Validate())
	})

	t.Run("issue status must be known", func(t *testing.T) {
		status := types.IssueStatus("wontfix")
		gt.Error(t, (&model.UpdateIssueInput{Status: &status}).Validate())
	})

	t.Run("blank issue title is rejected", func(t *testing.T) {
		gt.Error(t, (&model.CreateIssueInput{Title: "  "}).Validate())
		gt.Error(t, (&model.UpdateIssueInput{Title: ptr("")}).Validate())
	})
}

func TestUserPasswordHashIsNotSerialized(t *testing.T) {
	user := &model.User{ID: types.NewUserID(), Username: "alice", PasswordHash: "$2a$hash"}
	raw := gt.R1(json.Marshal(user)).NoError(t)

	var m map[string]any
	gt.NoError(t, json.Unmarshal(raw, &m))
	_, found := m["PasswordHash"]
	gt.False(t, found)
	gt.V(t, m["username"]).Equal("alice")
}

func TestRepositoryViewOwnerIsResolved(t *testing.T) {
	owner := &model.User{ID: types.NewUserID(), Username: "alice"}
	view := &model.RepositoryView{
		Repository: &model.Repository{ID: types.NewRepoID(), Name: "demo", Owner: owner.ID},
		Owner:      owner,
	}
	raw := gt.R1(json.Marshal(view)).NoError(t)

	var m map[string]any
	gt.NoError(t, json.Unmarshal(raw, &m))
	gt.V(t, m["name"]).Equal("demo")
	ownerObj, ok := m["owner"].(map[string]any)
	gt.True(t, ok)
	gt.V(t, ownerObj["username"]).Equal("alice")
}
