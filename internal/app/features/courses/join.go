// internal/app/features/courses/join.go
package courses

import (
	"context"
	"net/http"

	"github.com/msajedian/topedu/internal/app/enroll"
	"github.com/msajedian/topedu/internal/app/features/shared/rosterjson"
	entitystore "github.com/msajedian/topedu/internal/app/store/entities"
	"github.com/msajedian/topedu/internal/app/system/apperr"
	"github.com/msajedian/topedu/internal/app/system/timeouts"
)

type joinRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type joinedUser struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// ServePending returns a pending record for the public join landing
// page.
func (h *Handler) ServePending(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	courseID, err := urlID(r, "id")
	if err != nil {
		apperr.Render(w, h.Log, err)
		return
	}
	pendingID, err := urlID(r, "pendingID")
	if err != nil {
		apperr.Render(w, h.Log, apperr.NotFound("pending user not found"))
		return
	}

	pu, err := h.Engine.Pending(ctx, entitystore.KindCourse, courseID, pendingID)
	if err != nil {
		apperr.Render(w, h.Log, err)
		return
	}
	apperr.JSON(w, http.StatusOK, rosterjson.Pending{
		ID:        pu.ID.Hex(),
		Email:     pu.Email,
		FullName:  pu.FullName,
		Role:      string(pu.Role),
		CreatedAt: pu.CreatedAt,
	})
}

// HandleJoin converts a pending record into an account with membership
// in the course and its owning institution.
func (h *Handler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	courseID, err := urlID(r, "id")
	if err != nil {
		apperr.Render(w, h.Log, err)
		return
	}
	pendingID, err := urlID(r, "pendingID")
	if err != nil {
		apperr.Render(w, h.Log, apperr.NotFound("pending user not found"))
		return
	}

	var req joinRequest
	if err := decodeBody(r, &req); err != nil {
		apperr.Render(w, h.Log, err)
		return
	}

	user, err := h.Engine.Join(ctx, entitystore.KindCourse, courseID, pendingID, enroll.JoinRequest{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		apperr.Render(w, h.Log, err)
		return
	}
	apperr.JSON(w, http.StatusCreated, joinedUser{
		ID:       user.ID.Hex(),
		FullName: user.FullName,
		Email:    user.Email,
	})
}
