// internal/app/system/authz/authz.go
package authz

import (
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/msajedian/topedu/internal/app/system/auth"
)

// UserCtx returns the current user's Mongo ObjectID, identity, and a
// found flag. ok=false means no authenticated user or a malformed id;
// callers can trust that ok=true means a valid ObjectID.
func UserCtx(r *http.Request) (userID primitive.ObjectID, ident *auth.Identity, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return primitive.NilObjectID, nil, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed id in a signed token means something upstream is
		// broken. Fail closed.
		return primitive.NilObjectID, nil, false
	}
	return userID, user, true
}
