package enroll

import (
	"context"
	"time"

	"github.com/dalemusser/waffle/pantry/validate"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	entitystore "github.com/msajedian/topedu/internal/app/store/entities"
	"github.com/msajedian/topedu/internal/app/system/apperr"
	"github.com/msajedian/topedu/internal/app/system/normalize"
	"github.com/msajedian/topedu/internal/domain/models"
)

// InviteRequest is a caller-supplied invitation. Role is the raw role
// intent string; the engine validates it.
type InviteRequest struct {
	Email    string
	FullName string
	Role     string
}

// InviteOutcome reports which branch an invitation took. Exactly one
// of UserAdded and Pending is set on success.
type InviteOutcome struct {
	// UserAdded is the existing account that was placed on the roster.
	UserAdded *models.User
	// Pending is the stored pending record for an address with no account.
	Pending *models.PendingUser
	// Role is the tier the invitation targeted.
	Role models.Role
}

// Invite runs the invitation state machine for one entity.
//
// The caller must hold admin or instructor in the entity: a caller with
// no tier gets not_found (existence is not disclosed), assistants and
// learners get forbidden. Role intent must be learner, assistant, or
// instructor; admin intent is forbidden and anything unrecognized is a
// bad request.
//
// If the email belongs to an account, the user is added to the matching
// tier; if already present the invite conflicts and the roster is left
// untouched. Course invites also place the user on the owning
// institution's matching tier, without conflicting on that leg. If no
// account exists, a pending record is appended to the matching pending
// tier unless one with the same email is already waiting there, and the
// stored record is returned.
func (e *Engine) Invite(ctx context.Context, kind entitystore.Kind, entityID, callerID primitive.ObjectID, req InviteRequest) (InviteOutcome, error) {
	target := e.target(kind)

	callerRole, err := target.ResolveRole(ctx, entityID, callerID)
	if err != nil {
		return InviteOutcome{}, mapEntityErr(err, kind)
	}
	switch callerRole {
	case models.RoleAdmin, models.RoleInstructor:
		// allowed
	case models.RoleNone:
		return InviteOutcome{}, apperr.Newf(apperr.KindNotFound, "user not found in this %s", kind)
	default:
		return InviteOutcome{}, apperr.Forbidden("only admins and instructors can send invitations")
	}

	role, ok := models.ParseRole(req.Role)
	if !ok {
		return InviteOutcome{}, apperr.Newf(apperr.KindBadRequest, "unrecognized role: %s", req.Role)
	}
	if role == models.RoleAdmin {
		return InviteOutcome{}, apperr.Forbidden("admins cannot be invited")
	}

	email := normalize.Email(req.Email)
	if email == "" || !validate.SimpleEmailValid(email) {
		return InviteOutcome{}, apperr.Validation(map[string]string{"email": "a valid email address is required"})
	}

	user, err := e.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return e.inviteExisting(ctx, kind, entityID, role, user)
	case err == mongo.ErrNoDocuments:
		return e.invitePending(ctx, kind, entityID, role, email, req.FullName)
	default:
		return InviteOutcome{}, apperr.Internal(err, "storage failure")
	}
}

func (e *Engine) inviteExisting(ctx context.Context, kind entitystore.Kind, entityID primitive.ObjectID, role models.Role, user *models.User) (InviteOutcome, error) {
	added, err := e.target(kind).AddParticipant(ctx, entityID, role, user.ID)
	if err != nil {
		return InviteOutcome{}, mapEntityErr(err, kind)
	}
	if !added {
		return InviteOutcome{}, apperr.Newf(apperr.KindConflict,
			"user has already been added to this %s with this email: %s", kind, user.Email)
	}

	// Course participants also join the owning institution's tier. A
	// user already on that roster is fine; only the course leg
	// conflicts.
	if kind == entitystore.KindCourse {
		inst, err := e.institutions.GetByCourse(ctx, entityID)
		if err != nil {
			// The course exists without a back-reference; the course
			// write stands.
			e.log.Warn("owning institution not found for course invite",
				zap.String("course_id", entityID.Hex()),
				zap.Error(err))
			return InviteOutcome{UserAdded: user, Role: role}, nil
		}
		if _, err := e.institutions.AddParticipant(ctx, inst.ID, role, user.ID); err != nil {
			return InviteOutcome{}, apperr.Internal(err, "storage failure")
		}
	}

	return InviteOutcome{UserAdded: user, Role: role}, nil
}

func (e *Engine) invitePending(ctx context.Context, kind entitystore.Kind, entityID primitive.ObjectID, role models.Role, email, fullName string) (InviteOutcome, error) {
	pu := models.PendingUser{
		ID:        primitive.NewObjectID(),
		Email:     email,
		FullName:  normalize.Name(fullName),
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}

	stored, err := e.target(kind).EnsurePending(ctx, entityID, pu)
	if err != nil {
		return InviteOutcome{}, mapEntityErr(err, kind)
	}
	return InviteOutcome{Pending: &stored, Role: role}, nil
}
