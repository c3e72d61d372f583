// internal/app/features/courses/invite.go
package courses

import (
	"context"
	"net/http"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/msajedian/topedu/internal/app/enroll"
	"github.com/msajedian/topedu/internal/app/features/shared/rosterjson"
	"github.com/msajedian/topedu/internal/app/policy/entitypolicy"
	entitystore "github.com/msajedian/topedu/internal/app/store/entities"
	"github.com/msajedian/topedu/internal/app/system/apperr"
	"github.com/msajedian/topedu/internal/app/system/authz"
	"github.com/msajedian/topedu/internal/app/system/timeouts"
)

type inviteRequest struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

type inviteResponse struct {
	Status  string                  `json:"status"` // "added" or "pending"
	User    *rosterjson.Participant `json:"user,omitempty"`
	Pending *rosterjson.Pending     `json:"pending,omitempty"`
}

// HandleInvite runs the invitation engine for a course. Existing
// accounts also land on the owning institution's matching tier.
func (h *Handler) HandleInvite(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	userID, _, ok := authz.UserCtx(r)
	if !ok {
		apperr.Render(w, h.Log, apperr.New(apperr.KindUnauthorized, "authentication required"))
		return
	}
	courseID, err := urlID(r, "id")
	if err != nil {
		apperr.Render(w, h.Log, err)
		return
	}

	var req inviteRequest
	if err := decodeBody(r, &req); err != nil {
		apperr.Render(w, h.Log, err)
		return
	}

	out, err := h.Engine.Invite(ctx, entitystore.KindCourse, courseID, userID, enroll.InviteRequest{
		Email:    req.Email,
		FullName: req.FullName,
		Role:     req.Role,
	})
	if err != nil {
		apperr.Render(w, h.Log, err)
		return
	}
	h.Engine.Notify(ctx, entitystore.KindCourse, courseID, out)

	resp := inviteResponse{}
	switch {
	case out.UserAdded != nil:
		resp.Status = "added"
		resp.User = &rosterjson.Participant{
			ID:       out.UserAdded.ID.Hex(),
			FullName: out.UserAdded.FullName,
			Email:    out.UserAdded.Email,
		}
	case out.Pending != nil:
		resp.Status = "pending"
		resp.Pending = &rosterjson.Pending{
			ID:        out.Pending.ID.Hex(),
			Email:     out.Pending.Email,
			FullName:  out.Pending.FullName,
			Role:      string(out.Pending.Role),
			CreatedAt: out.Pending.CreatedAt,
		}
	}
	apperr.JSON(w, http.StatusOK, resp)
}

// HandleResendEmail re-sends the invitation email for a stored pending
// record on a course.
func (h *Handler) HandleResendEmail(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	userID, _, ok := authz.UserCtx(r)
	if !ok {
		apperr.Render(w, h.Log, apperr.New(apperr.KindUnauthorized, "authentication required"))
		return
	}
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

	role, err := h.Courses.ResolveRole(ctx, courseID, userID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			apperr.Render(w, h.Log, apperr.NotFound("course not found"))
			return
		}
		apperr.Render(w, h.Log, apperr.Internal(err, "failed to load course"))
		return
	}
	if !entitypolicy.CanInvite(role) {
		if !entitypolicy.CanView(role) {
			apperr.Render(w, h.Log, apperr.NotFound("course not found"))
			return
		}
		apperr.Render(w, h.Log, apperr.Forbidden("only admins and instructors can send invitation emails"))
		return
	}

	if err := h.Engine.ResendInvitation(ctx, entitystore.KindCourse, courseID, pendingID); err != nil {
		apperr.Render(w, h.Log, err)
		return
	}
	apperr.JSON(w, http.StatusOK, map[string]string{"status": "sent"})
}
