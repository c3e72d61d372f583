// internal/app/features/courses/view.go
package courses

import (
	"context"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/msajedian/topedu/internal/app/features/shared/rosterjson"
	"github.com/msajedian/topedu/internal/app/policy/entitypolicy"
	"github.com/msajedian/topedu/internal/app/system/apperr"
	"github.com/msajedian/topedu/internal/app/system/authz"
	"github.com/msajedian/topedu/internal/app/system/timeouts"
)

type courseView struct {
	ID            string    `json:"id"`
	InstitutionID string    `json:"institution_id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type detailResponse struct {
	Course courseView `json:"course"`
	Role   string     `json:"role"`
}

// ServeDetail returns one course with the caller's role. Callers with
// no tier get not_found.
func (h *Handler) ServeDetail(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
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

	course, err := h.Courses.GetByID(ctx, courseID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			apperr.Render(w, h.Log, apperr.NotFound("course not found"))
			return
		}
		apperr.Render(w, h.Log, apperr.Internal(err, "failed to load course"))
		return
	}

	role := course.Participants.Resolve(userID)
	if !entitypolicy.CanView(role) {
		apperr.Render(w, h.Log, apperr.NotFound("course not found"))
		return
	}

	apperr.JSON(w, http.StatusOK, detailResponse{
		Course: courseView{
			ID:            course.ID.Hex(),
			InstitutionID: course.InstitutionID.Hex(),
			Name:          course.Name,
			Description:   course.Description,
			CreatedAt:     course.CreatedAt,
			UpdatedAt:     course.UpdatedAt,
		},
		Role: string(role),
	})
}

// ServeParticipants returns the roster populated with user documents.
// Pending records are included only for callers who can invite.
func (h *Handler) ServeParticipants(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
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

	ros, err := h.Courses.Rosters(ctx, courseID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			apperr.Render(w, h.Log, apperr.NotFound("course not found"))
			return
		}
		apperr.Render(w, h.Log, apperr.Internal(err, "failed to load course"))
		return
	}

	role := ros.Participants.Resolve(userID)
	if !entitypolicy.CanView(role) {
		apperr.Render(w, h.Log, apperr.NotFound("course not found"))
		return
	}

	view, err := rosterjson.Build(ctx, h.Users, ros.Participants)
	if err != nil {
		apperr.Render(w, h.Log, apperr.Internal(err, "failed to load participants"))
		return
	}
	if entitypolicy.CanInvite(role) {
		view.PendingUsers = rosterjson.BuildPending(ros.PendingUsers)
	}
	apperr.JSON(w, http.StatusOK, view)
}
