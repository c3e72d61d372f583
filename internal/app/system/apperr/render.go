package apperr

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// errorBody is the wire shape for every error response.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Kind    Kind              `json:"kind"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// JSON writes v as a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Render writes err as a structured JSON error. Internal causes are
// logged and replaced with a generic message so storage details never
// leak to clients.
func Render(w http.ResponseWriter, log *zap.Logger, err error) {
	var e *Error
	if !errors.As(err, &e) {
		e = Internal(err, "an unexpected error occurred")
	}

	if e.Kind == KindInternal {
		if log != nil {
			log.Error("internal error", zap.Error(err))
		}
		JSON(w, http.StatusInternalServerError, errorBody{Error: errorDetail{
			Kind:    KindInternal,
			Message: "an unexpected error occurred",
		}})
		return
	}

	JSON(w, Status(e.Kind), errorBody{Error: errorDetail{
		Kind:    e.Kind,
		Message: e.Message,
		Fields:  e.Fields,
	}})
}
