package repository

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/repovault/pkg/domain/types"
)

var (
	ErrNotFound      = goerr.Wrap(types.ErrNotFound, "record not found")
	ErrAlreadyExists = goerr.Wrap(types.ErrConflict, "record already exists")
	ErrInvalidInput  = goerr.Wrap(types.ErrValidationFailed, "invalid input")
)
