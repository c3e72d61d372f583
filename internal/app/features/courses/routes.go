// internal/app/features/courses/routes.go
package courses

import (
	"github.com/go-chi/chi/v5"

	"github.com/msajedian/topedu/internal/app/system/auth"
	"github.com/msajedian/topedu/internal/app/system/ratelimit"
)

// Routes mounts the course routes. Typically:
// r.Mount("/courses", courses.Routes(handler, verifier, limiter)).
// Pending and join routes are public behind the per-IP limiter;
// everything else requires a bearer token.
func Routes(h *Handler, verifier *auth.Verifier, public *ratelimit.Limiter) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(verifier.RequireBearer)

		// POST /courses/{id} creates a course inside institution {id};
		// chi needs one param name per position, so it shares {id}.
		pr.Post("/{id}", h.HandleCreate)
		pr.Get("/{id}", h.ServeDetail)
		pr.Put("/{id}", h.HandleUpdate)
		pr.Delete("/{id}", h.HandleDelete)
		pr.Get("/{id}/participants", h.ServeParticipants)
		pr.Post("/{id}/invitations", h.HandleInvite)
		pr.Post("/{id}/invitations/{pendingID}/email", h.HandleResendEmail)
	})

	// Join-link landing pages.
	r.Group(func(pr chi.Router) {
		pr.Use(public.Middleware)

		pr.Get("/{id}/pending/{pendingID}", h.ServePending)
		pr.Post("/{id}/join/{pendingID}", h.HandleJoin)
	})

	return r
}
