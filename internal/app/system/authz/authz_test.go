package authz_test

import (
	"net/http/httptest"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/msajedian/topedu/internal/app/system/auth"
	"github.com/msajedian/topedu/internal/app/system/authz"
)

func TestUserCtx_Valid(t *testing.T) {
	id := primitive.NewObjectID()
	req := httptest.NewRequest("GET", "/", nil)
	req = auth.WithTestUser(req, &auth.Identity{ID: id.Hex(), Name: "Test User", Email: "t@example.com"})

	userID, ident, ok := authz.UserCtx(req)
	if !ok {
		t.Fatal("expected ok")
	}
	if userID != id {
		t.Errorf("userID = %v, want %v", userID, id)
	}
	if ident.Email != "t@example.com" {
		t.Errorf("email = %q", ident.Email)
	}
}

func TestUserCtx_NoUser(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	if _, _, ok := authz.UserCtx(req); ok {
		t.Error("expected not ok without an identity")
	}
}

func TestUserCtx_MalformedID(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req = auth.WithTestUser(req, &auth.Identity{ID: "not-a-hex-id"})

	if _, _, ok := authz.UserCtx(req); ok {
		t.Error("expected not ok for a malformed user id")
	}
}
