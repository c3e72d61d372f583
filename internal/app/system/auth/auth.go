// Package auth verifies bearer tokens on authenticated routes and
// exposes the current identity through the request context.
//
// The service does not issue tokens; an upstream identity service signs
// them. Only HS256 verification happens here.
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/msajedian/topedu/internal/app/system/apperr"
)

// Identity is what we inject into r.Context() for authenticated requests.
type Identity struct {
	ID    string // hex ObjectID of the user
	Name  string
	Email string
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the identity and a found flag.
func CurrentUser(r *http.Request) (*Identity, bool) {
	u, ok := r.Context().Value(currentUserKey).(*Identity)
	return u, ok
}

// WithTestUser injects an identity directly into the request context,
// bypassing token verification. For handler tests.
func WithTestUser(r *http.Request, u *Identity) *http.Request {
	return withUser(r, u)
}

func withUser(r *http.Request, u *Identity) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

type claims struct {
	jwt.RegisteredClaims
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Verifier validates HS256 bearer tokens.
type Verifier struct {
	secret []byte
	log    *zap.Logger
}

// NewVerifier creates a Verifier for the given shared secret.
func NewVerifier(secret string, logger *zap.Logger) *Verifier {
	return &Verifier{secret: []byte(secret), log: logger}
}

// Verify parses and validates a token string, returning the identity
// carried in its claims.
func (v *Verifier) Verify(token string) (*Identity, error) {
	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !parsed.Valid || c.Subject == "" {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return &Identity{ID: c.Subject, Name: c.Name, Email: c.Email}, nil
}

// RequireBearer validates the Authorization header and injects the
// identity into context. Missing or invalid tokens get a 401 and next
// is never called.
func (v *Verifier) RequireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			apperr.Render(w, v.log, apperr.New(apperr.KindUnauthorized, "missing authorization header"))
			return
		}
		const prefix = "Bearer "
		if !strings.HasPrefix(header, prefix) {
			apperr.Render(w, v.log, apperr.New(apperr.KindUnauthorized, "invalid authorization format"))
			return
		}
		token := strings.TrimSpace(header[len(prefix):])
		if token == "" {
			apperr.Render(w, v.log, apperr.New(apperr.KindUnauthorized, "missing token"))
			return
		}
		ident, err := v.Verify(token)
		if err != nil {
			apperr.Render(w, v.log, apperr.New(apperr.KindUnauthorized, "invalid or expired token"))
			return
		}
		next.ServeHTTP(w, withUser(r, ident))
	})
}
