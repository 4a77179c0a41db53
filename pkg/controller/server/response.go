package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/repovault/pkg/domain/types"
	"github.com/secmon-lab/repovault/pkg/utils/errutil"
	"github.com/secmon-lab/repovault/pkg/utils/logging"
)

const maxRequestBodySize = 32 << 20

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, code int, data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		logging.Default().Error("fail to marshal response", "error", err)
		code = http.StatusInternalServerError
		raw = []byte(`{"error":"internal_error","message":"Internal server error"}`)
	}

	w.Header().Set("Content-Type", "application/json")
	safeWrite(w, code, raw)
}

// errorClass maps an error to HTTP status and class name of the error body
func errorClass(err error) (int, string) {
	switch {
	case errors.Is(err, types.ErrValidationFailed):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, types.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, types.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, types.ErrConflict):
		return http.StatusConflict, "conflict"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// writeError responds with the class of err. Details of internal errors are only logged.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code, class := errorClass(err)

	msg := types.ReasonOf(err)
	if code == http.StatusInternalServerError {
		errutil.HandleError(r.Context(), "fail to handle request", err)
		msg = "Internal server error"
	} else {
		logging.From(r.Context()).Info("request rejected", "status", code, "error", err)
	}
	if msg == "" {
		msg = http.StatusText(code)
	}

	writeJSON(w, code, errorResponse{Error: class, Message: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return goerr.Wrap(types.ErrValidationFailed, "fail to decode request body",
			goerr.V("cause", err.Error()),
			types.Reason("Invalid request body"))
	}
	return nil
}
