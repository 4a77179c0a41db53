package model

import (
	"net/mail"
	"path"
	"regexp"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/repovault/pkg/domain/types"
)

var (
	ptnRepoName = regexp.MustCompile(`^[A-Za-z0-9._-]{1,100}$`)
	ptnUsername = regexp.MustCompile(`^[A-Za-z0-9_.-]{1,39}$`)
)

// bcrypt ignores bytes beyond 72
const maxPasswordLength = 72

func validationError(msg, reason string, opts ...goerr.Option) error {
	return goerr.Wrap(types.ErrValidationFailed, msg, append(opts, types.Reason(reason))...)
}

// NormalizeEmail returns the stored form of an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || strings.Contains(email, "/") {
		return validationError("invalid email address", "Invalid email address", goerr.V("email", email))
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) > maxPasswordLength {
		return validationError("password too long", "Password must be at most 72 bytes")
	}
	return nil
}

// ValidateFilename accepts clean relative slash-separated paths.
func ValidateFilename(name string) error {
	if name == "" {
		return validationError("filename is empty", "Filename is required")
	}
	if strings.HasPrefix(name, "/") || strings.Contains(name, "\\") || path.Clean(name) != name {
		return validationError("filename is not a clean relative path", "Invalid filename", goerr.V("filename", name))
	}
	for _, seg := range strings.Split(name, "/") {
		if seg == ".." || seg == "." {
			return validationError("filename has relative segment", "Invalid filename", goerr.V("filename", name))
		}
	}
	return nil
}

func validateRepoName(name string) error {
	if name == "" {
		return validationError("repository name is empty", "Repository name is required")
	}
	if !ptnRepoName.MatchString(name) || strings.Trim(name, ".") == "" {
		return validationError("invalid repository name", "Repository name may contain only letters, digits, '.', '_' and '-'", goerr.V("name", name))
	}
	return nil
}

type SignupInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (x *SignupInput) Validate() error {
	if x.Username == "" || x.Email == "" || x.Password == "" {
		return validationError("missing signup field", "All fields required")
	}
	if !ptnUsername.MatchString(x.Username) || strings.Trim(x.Username, ".") == "" {
		return validationError("invalid username", "Username may contain only letters, digits, '.', '_' and '-'", goerr.V("username", x.Username))
	}
	if err := validateEmail(NormalizeEmail(x.Email)); err != nil {
		return err
	}
	return validatePassword(x.Password)
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (x *LoginInput) Validate() error {
	if x.Email == "" || x.Password == "" {
		return validationError("missing login field", "Email and password are required")
	}
	return nil
}

type UpdateProfileInput struct {
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
}

func (x *UpdateProfileInput) Validate() error {
	if (x.Email == nil || *x.Email == "") && (x.Password == nil || *x.Password == "") {
		return validationError("no profile field to update", "No fields to update")
	}
	if x.Email != nil && *x.Email != "" {
		if err := validateEmail(NormalizeEmail(*x.Email)); err != nil {
			return err
		}
	}
	if x.Password != nil && *x.Password != "" {
		if err := validatePassword(*x.Password); err != nil {
			return err
		}
	}
	return nil
}

type CreateRepositoryInput struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Owner       types.UserID `json:"owner"`
	Visibility  *bool        `json:"visibility,omitempty"`
	IsPrivate   *bool        `json:"isPrivate,omitempty"`
}

func (x *CreateRepositoryInput) Validate() error {
	if err := validateRepoName(x.Name); err != nil {
		return err
	}
	return x.Owner.Validate()
}

// Public resolves visibility; repositories are public unless stated otherwise.
func (x *CreateRepositoryInput) Public() bool {
	if x.Visibility != nil {
		return *x.Visibility
	}
	if x.IsPrivate != nil {
		return !*x.IsPrivate
	}
	return true
}

type FileInput struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
	FileType string `json:"fileType,omitempty"`
}

func (x *FileInput) Validate() error {
	return ValidateFilename(x.Filename)
}

func validateFileBatch(files []FileInput) error {
	seen := make(map[string]struct{}, len(files))
	for i := range files {
		if err := files[i].Validate(); err != nil {
			return err
		}
		if _, ok := seen[files[i].Filename]; ok {
			return validationError("duplicated filename in batch", "Duplicated filename: "+files[i].Filename,
				goerr.V("filename", files[i].Filename))
		}
		seen[files[i].Filename] = struct{}{}
	}
	return nil
}

// UpdateRepositoryInput replaces each field that is set. A nil Content keeps
// the current files; a non-nil Content replaces them like a push.
type UpdateRepositoryInput struct {
	Name        *string     `json:"name,omitempty"`
	Description *string     `json:"description,omitempty"`
	Content     []FileInput `json:"content,omitempty"`
	Revision    *int64      `json:"revision,omitempty"`
}

func (x *UpdateRepositoryInput) Validate() error {
	if x.Name == nil && x.Description == nil && x.Content == nil {
		return validationError("no repository field to update", "No fields to update")
	}
	if x.Name != nil {
		if err := validateRepoName(*x.Name); err != nil {
			return err
		}
	}
	if x.Content != nil {
		return validateFileBatch(x.Content)
	}
	return nil
}

type PushInput struct {
	Files    []FileInput `json:"files"`
	Revision *int64      `json:"revision,omitempty"`
}

func (x *PushInput) Validate() error {
	if x.Files == nil {
		return validationError("files not provided", "Files are required")
	}
	return validateFileBatch(x.Files)
}

type ToggleVisibilityInput struct {
	Revision *int64 `json:"revision,omitempty"`
}

type CreateIssueInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (x *CreateIssueInput) Validate() error {
	if strings.TrimSpace(x.Title) == "" {
		return validationError("issue title is empty", "Issue title is required")
	}
	return nil
}

type UpdateIssueInput struct {
	Title       *string            `json:"title,omitempty"`
	Description *string            `json:"description,omitempty"`
	Status      *types.IssueStatus `json:"status,omitempty"`
}

func (x *UpdateIssueInput) Validate() error {
	if x.Title == nil && x.Description == nil && x.Status == nil {
		return validationError("no issue field to update", "No fields to update")
	}
	if x.Title != nil && strings.TrimSpace(*x.Title) == "" {
		return validationError("issue title is empty", "Issue title is required")
	}
	if x.Status != nil {
		return x.Status.Validate()
	}
	return nil
}
