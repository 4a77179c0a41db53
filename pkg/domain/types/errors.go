package types

import (
	"errors"

	"github.com/m-mizutani/goerr/v2"
)

var (
	ErrValidationFailed = goerr.New("validation failed")
	ErrInvalidOption    = goerr.New("invalid option")
	ErrUnauthorized     = goerr.New("unauthorized")
	ErrNotFound         = goerr.New("not found")
	ErrConflict         = goerr.New("conflict")
)

const reasonKey = "reason"

// Reason attaches a message that is safe to show to API clients.
func Reason(msg string) goerr.Option {
	return goerr.V(reasonKey, msg)
}

// ReasonOf returns the outermost client-facing message attached by Reason, or empty string.
func ReasonOf(err error) string {
	for e := err; e != nil; e = errors.Unwrap(e) {
		goErr, ok := e.(*goerr.Error)
		if !ok {
			continue
		}
		if msg, ok := goErr.Values()[reasonKey].(string); ok {
			return msg
		}
	}
	return ""
}
