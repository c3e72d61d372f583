// internal/app/features/institutions/view.go
package institutions

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/msajedian/topedu/internal/app/features/shared/rosterjson"
	"github.com/msajedian/topedu/internal/app/policy/entitypolicy"
	"github.com/msajedian/topedu/internal/app/system/apperr"
	"github.com/msajedian/topedu/internal/app/system/authz"
	"github.com/msajedian/topedu/internal/app/system/paging"
	"github.com/msajedian/topedu/internal/app/system/timeouts"
	"github.com/msajedian/topedu/internal/domain/models"
)

type listItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type institutionView struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type detailResponse struct {
	Institution institutionView `json:"institution"`
	Role        string          `json:"role"`
}

type coursesResponse struct {
	Role    string     `json:"role"`
	Courses []listItem `json:"courses"`
}

type listResponse struct {
	Institutions []listItem `json:"institutions"`
	HasPrev      bool       `json:"has_prev"`
	HasNext      bool       `json:"has_next"`
	PrevCursor   string     `json:"prev_cursor,omitempty"`
	NextCursor   string     `json:"next_cursor,omitempty"`
}

// ServeList returns names and ids of every institution where the
// caller holds any tier, keyset-paginated on the before/after query
// parameters.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	userID, _, ok := authz.UserCtx(r)
	if !ok {
		apperr.Render(w, h.Log, apperr.New(apperr.KindUnauthorized, "authentication required"))
		return
	}

	before := query.Get(r, "before")
	after := query.Get(r, "after")
	cfg := paging.ConfigureKeyset(before, after)

	insts, err := h.Institutions.ListForUser(ctx, userID, cfg)
	if err != nil {
		apperr.Render(w, h.Log, apperr.Internal(err, "failed to list institutions"))
		return
	}

	page := paging.TrimPage(&insts, before, after)
	if before != "" {
		paging.Reverse(insts)
	}

	out := make([]listItem, 0, len(insts))
	for _, inst := range insts {
		out = append(out, listItem{ID: inst.ID.Hex(), Name: inst.Name})
	}
	prevCursor, nextCursor := paging.BuildCursors(insts,
		func(m models.Institution) string { return text.Fold(m.Name) },
		func(m models.Institution) primitive.ObjectID { return m.ID })

	apperr.JSON(w, http.StatusOK, listResponse{
		Institutions: out,
		HasPrev:      page.HasPrev,
		HasNext:      page.HasNext,
		PrevCursor:   prevCursor,
		NextCursor:   nextCursor,
	})
}

// ServeDetail returns one institution with the caller's role. Callers
// with no tier get not_found.
func (h *Handler) ServeDetail(w http.ResponseWriter, r *http.Request) {
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

	inst, err := h.Institutions.GetByID(ctx, instID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			apperr.Render(w, h.Log, apperr.NotFound("institution not found"))
			return
		}
		apperr.Render(w, h.Log, apperr.Internal(err, "failed to load institution"))
		return
	}

	role := inst.Participants.Resolve(userID)
	if !entitypolicy.CanView(role) {
		apperr.Render(w, h.Log, apperr.NotFound("institution not found"))
		return
	}

	apperr.JSON(w, http.StatusOK, detailResponse{
		Institution: institutionView{
			ID:          inst.ID.Hex(),
			Name:        inst.Name,
			Description: inst.Description,
			CreatedAt:   inst.CreatedAt,
			UpdatedAt:   inst.UpdatedAt,
		},
		Role: string(role),
	})
}

// ServeCourses lists the institution's courses filtered by the
// caller's tier. Admins see every course; everyone else only courses
// where they hold the same tier.
func (h *Handler) ServeCourses(w http.ResponseWriter, r *http.Request) {
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

	inst, err := h.Institutions.GetByID(ctx, instID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			apperr.Render(w, h.Log, apperr.NotFound("institution not found"))
			return
		}
		apperr.Render(w, h.Log, apperr.Internal(err, "failed to load institution"))
		return
	}

	role := inst.Participants.Resolve(userID)
	if !entitypolicy.CanView(role) {
		apperr.Render(w, h.Log, apperr.NotFound("institution not found"))
		return
	}

	courses, err := h.Courses.ListByIDs(ctx, inst.Courses)
	if err != nil {
		apperr.Render(w, h.Log, apperr.Internal(err, "failed to list courses"))
		return
	}

	out := make([]listItem, 0, len(courses))
	for _, course := range courses {
		if role != models.RoleAdmin && course.Participants.Resolve(userID) != role {
			continue
		}
		out = append(out, listItem{ID: course.ID.Hex(), Name: course.Name})
	}
	apperr.JSON(w, http.StatusOK, coursesResponse{Role: string(role), Courses: out})
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
	instID, err := urlID(r, "id")
	if err != nil {
		apperr.Render(w, h.Log, err)
		return
	}

	ros, err := h.Institutions.Rosters(ctx, instID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			apperr.Render(w, h.Log, apperr.NotFound("institution not found"))
			return
		}
		apperr.Render(w, h.Log, apperr.Internal(err, "failed to load institution"))
		return
	}

	role := ros.Participants.Resolve(userID)
	if !entitypolicy.CanView(role) {
		apperr.Render(w, h.Log, apperr.NotFound("institution not found"))
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
