// internal/app/features/courses/manage.go
package courses

import (
	"context"
	"net/http"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

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

// HandleCreate creates a course inside an institution. The caller must
// be an admin or instructor of the institution and becomes the
// course's sole admin. The course id is appended to the institution's
// courses array.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	userID, _, ok := authz.UserCtx(r)
	if !ok {
		apperr.Render(w, h.Log, apperr.New(apperr.KindUnauthorized, "authentication required"))
		return
	}
	// The {id} parameter is the institution receiving the course.
	instID, err := urlID(r, "id")
	if err != nil {
		apperr.Render(w, h.Log, apperr.NotFound("institution not found"))
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
	if !entitypolicy.CanCreateCourse(role) {
		apperr.Render(w, h.Log, apperr.Forbidden("only admins and instructors can create courses"))
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

	course, err := h.Courses.Create(ctx, models.Course{
		Name:          name,
		Description:   htmlsanitize.Sanitize(req.Description),
		Creator:       userID,
		InstitutionID: instID,
	})
	if err != nil {
		apperr.Render(w, h.Log, apperr.Internal(err, "failed to create course"))
		return
	}
	if err := h.Institutions.AddCourseRef(ctx, instID, course.ID); err != nil {
		apperr.Render(w, h.Log, apperr.Internal(err, "failed to link course to institution"))
		return
	}
	apperr.JSON(w, http.StatusCreated, createdResponse{ID: course.ID.Hex()})
}

// HandleUpdate updates name and description. Admins and instructors
// only.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
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

	role, err := h.Courses.ResolveRole(ctx, courseID, userID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			apperr.Render(w, h.Log, apperr.NotFound("course not found"))
			return
		}
		apperr.Render(w, h.Log, apperr.Internal(err, "failed to load course"))
		return
	}
	if role == models.RoleNone {
		apperr.Render(w, h.Log, apperr.NotFound("course not found"))
		return
	}
	if !entitypolicy.CanUpdate(role) {
		apperr.Render(w, h.Log, apperr.Forbidden("only admins and instructors can update a course"))
		return
	}

	var req upsertRequest
	if err := decodeBody(r, &req); err != nil {
		apperr.Render(w, h.Log, err)
		return
	}

	if err := h.Courses.UpdateInfo(ctx, courseID, normalize.Name(req.Name), htmlsanitize.Sanitize(req.Description)); err != nil {
		if err == mongo.ErrNoDocuments {
			apperr.Render(w, h.Log, apperr.NotFound("course not found"))
			return
		}
		apperr.Render(w, h.Log, apperr.Internal(err, "failed to update course"))
		return
	}
	apperr.JSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// HandleDelete deletes a course. Admins only. The course id is pulled
// from the owning institution's courses array afterwards; if the
// institution lookup fails the backlink is left behind and logged.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
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

	role, err := h.Courses.ResolveRole(ctx, courseID, userID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			apperr.Render(w, h.Log, apperr.NotFound("course not found"))
			return
		}
		apperr.Render(w, h.Log, apperr.Internal(err, "failed to load course"))
		return
	}
	if role == models.RoleNone {
		apperr.Render(w, h.Log, apperr.NotFound("course not found"))
		return
	}
	if !entitypolicy.CanDelete(role) {
		apperr.Render(w, h.Log, apperr.Forbidden("only admins can delete a course"))
		return
	}

	inst, instErr := h.Institutions.GetByCourse(ctx, courseID)

	deleted, err := h.Courses.Delete(ctx, courseID)
	if err != nil {
		apperr.Render(w, h.Log, apperr.Internal(err, "failed to delete course"))
		return
	}
	if deleted == 0 {
		apperr.Render(w, h.Log, apperr.NotFound("course not found"))
		return
	}

	if instErr != nil {
		h.Log.Warn("owning institution not found, course backlink left behind",
			zap.String("course_id", courseID.Hex()),
			zap.Error(instErr))
	} else if err := h.Institutions.RemoveCourseRef(ctx, inst.ID, courseID); err != nil {
		h.Log.Warn("failed to remove course backlink",
			zap.String("course_id", courseID.Hex()),
			zap.String("institution_id", inst.ID.Hex()),
			zap.Error(err))
	}

	w.WriteHeader(http.StatusNoContent)
}
