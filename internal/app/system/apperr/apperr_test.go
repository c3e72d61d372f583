package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"not found", NotFound("missing"), KindNotFound},
		{"forbidden", Forbidden("no"), KindForbidden},
		{"validation", Validation(map[string]string{"email": "required"}), KindValidation},
		{"wrapped", fmt.Errorf("outer: %w", Conflict("dup")), KindConflict},
		{"plain error", errors.New("boom"), KindInternal},
		{"nil cause internal", Internal(nil, "oops"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindNotFound, http.StatusNotFound},
		{KindForbidden, http.StatusForbidden},
		{KindBadRequest, http.StatusBadRequest},
		{KindValidation, http.StatusBadRequest},
		{KindConflict, http.StatusConflict},
		{KindUnauthorized, http.StatusUnauthorized},
		{KindInternal, http.StatusInternalServerError},
		{Kind("bogus"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			if got := Status(tt.kind); got != tt.want {
				t.Errorf("Status(%q) = %d, want %d", tt.kind, got, tt.want)
			}
		})
	}
}

func TestRender_ClientError(t *testing.T) {
	rec := httptest.NewRecorder()
	Render(rec, zap.NewNop(), NotFound("user not found in this institution"))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}

	var body struct {
		Error struct {
			Kind    string `json:"kind"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if body.Error.Kind != "not_found" {
		t.Errorf("kind = %q, want %q", body.Error.Kind, "not_found")
	}
	if body.Error.Message != "user not found in this institution" {
		t.Errorf("message = %q", body.Error.Message)
	}
}

func TestRender_ValidationFields(t *testing.T) {
	rec := httptest.NewRecorder()
	Render(rec, zap.NewNop(), Validation(map[string]string{"email": "invalid email"}))

	var body struct {
		Error struct {
			Kind   string            `json:"kind"`
			Fields map[string]string `json:"fields"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if body.Error.Fields["email"] != "invalid email" {
		t.Errorf("fields = %v", body.Error.Fields)
	}
}

func TestRender_InternalHidesCause(t *testing.T) {
	rec := httptest.NewRecorder()
	Render(rec, zap.NewNop(), Internal(errors.New("connection reset by peer"), "store failure"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	if body := rec.Body.String(); len(body) > 0 && (contains(body, "connection reset") || contains(body, "store failure")) {
		t.Errorf("internal details leaked to client: %s", body)
	}
}

func TestRender_PlainErrorIsInternal(t *testing.T) {
	rec := httptest.NewRecorder()
	Render(rec, zap.NewNop(), errors.New("boom"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}

func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
