// internal/app/features/institutions/manage.go
package institutions

import (
	"context"
	"net/http"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/msajedian/topedu/internal/app/policy/entitypolicy"
	"github.com/msajedian/topedu/internal/app/system/apperr"
	"github.com/msajedian/topedu/internal/app/system/authz"
	"github.com/msajedian/topedu/internal/app/system/htmlsanitize"
	"github.com/msajedian/topedu/internal/app/system/normalize"
	"github.com/msajedian/topedu/internal/app/system/timeouts"
	"github.com/msajedian/topedu/internal/domain/models"
)

type upsertRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type createdResponse struct {
	ID string `json:"id"`
}

// HandleCreate creates an institution with the caller as sole admin.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	userID, _, ok := authz.UserCtx(r)
	if !ok {
		apperr.Render(w, h.Log, apperr.New(apperr.KindUnauthorized, "authentication required"))
		return
	}

	var req upsertRequest
	if err := decodeBody(r, &req); err != nil {
		apperr.Render(w, h.Log, err)
		return
	}
	name := normalize.Name(req.Name)
	if name == "" {
		apperr.Render(w, h.Log, apperr.Validation(map[string]string{"name": "name is required"}))
		return
	}

	inst, err := h.Institutions.Create(ctx, models.Institution{
		Name:        name,
		Description: htmlsanitize.Sanitize(req.Description),
		Creator:     userID,
	})
	if err != nil {
		apperr.Render(w, h.Log, apperr.Internal(err, "failed to create institution"))
		return
	}
	apperr.JSON(w, http.StatusCreated, createdResponse{ID: inst.ID.Hex()})
}

// HandleUpdate updates name and description. Admins and instructors
// only; assistants and learners get forbidden, outsiders not_found.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	userID, _, ok := authz.UserCtx(r)
	if !ok {
		apperr.Render(w, h.Log, apperr.New(apperr.KindUnauthorized, "authentication required"))
		return
	}
	instID, err := urlID(r, "id")
	if err != nil {
		apperr.Render(w, h.Log, err)
		return
	}

	role, err := h.Institutions.ResolveRole(ctx, instID, userID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			apperr.Render(w, h.Log, apperr.NotFound("institution not found"))
			return
		}
		apperr.Render(w, h.Log, apperr.Internal(err, "failed to load institution"))
		return
	}
	if role == models.RoleNone {
		apperr.Render(w, h.Log, apperr.NotFound("institution not found"))
		return
	}
	if !entitypolicy.CanUpdate(role) {
		apperr.Render(w, h.Log, apperr.Forbidden("only admins and instructors can update an institution"))
		return
	}

	var req upsertRequest
	if err := decodeBody(r, &req); err != nil {
		apperr.Render(w, h.Log, err)
		return
	}

	if err := h.Institutions.UpdateInfo(ctx, instID, normalize.Name(req.Name), htmlsanitize.Sanitize(req.Description)); err != nil {
		if err == mongo.ErrNoDocuments {
			apperr.Render(w, h.Log, apperr.NotFound("institution not found"))
			return
		}
		apperr.Render(w, h.Log, apperr.Internal(err, "failed to update institution"))
		return
	}
	apperr.JSON(w, http.StatusOK, map[string]string{"status": "updated"})
}
