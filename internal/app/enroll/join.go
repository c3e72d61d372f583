package enroll

import (
	"context"
	"errors"

	"github.com/dalemusser/waffle/pantry/validate"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	entitystore "github.com/msajedian/topedu/internal/app/store/entities"
	userstore "github.com/msajedian/topedu/internal/app/store/users"
	"github.com/msajedian/topedu/internal/app/system/apperr"
	"github.com/msajedian/topedu/internal/app/system/normalize"
	"github.com/msajedian/topedu/internal/app/system/txn"
	"github.com/msajedian/topedu/internal/domain/models"
)

const minPasswordLen = 8

// JoinRequest carries the account details for converting a pending
// record. Email may be empty, in which case the invited address is
// used.
type JoinRequest struct {
	FullName string
	Email    string
	Password string
}

// Join converts a pending record into an account and roster membership.
// No authentication is required; holding the pending record id is the
// credential.
//
// The pending record is consumed exactly once. The new user lands on
// the tier the record names, and for courses also on the owning
// institution's matching tier. A duplicate email conflicts and leaves
// the pending record consumed.
func (e *Engine) Join(ctx context.Context, kind entitystore.Kind, entityID, pendingID primitive.ObjectID, req JoinRequest) (models.User, error) {
	target := e.target(kind)

	pu, role, err := target.PendingByID(ctx, entityID, pendingID)
	if err != nil {
		return models.User{}, mapEntityErr(err, kind)
	}

	fullName := normalize.Name(req.FullName)
	email := normalize.Email(req.Email)
	if email == "" {
		email = pu.Email
	}

	fields := map[string]string{}
	if fullName == "" {
		fields["full_name"] = "full name is required"
	}
	if !validate.SimpleEmailValid(email) {
		fields["email"] = "a valid email address is required"
	}
	if len(req.Password) < minPasswordLen {
		fields["password"] = "password must be at least 8 characters"
	}
	if len(fields) > 0 {
		return models.User{}, apperr.Validation(fields)
	}

	var user models.User
	err = txn.Run(ctx, e.client, func(ctx context.Context) error {
		if err := target.RemovePending(ctx, entityID, role, pendingID); err != nil {
			return err
		}

		created, err := e.users.Create(ctx, fullName, email, req.Password)
		if err != nil {
			return err
		}
		user = created

		if _, err := target.AddParticipant(ctx, entityID, role, user.ID); err != nil {
			return err
		}
		if kind == entitystore.KindCourse {
			inst, err := e.institutions.GetByCourse(ctx, entityID)
			if err != nil {
				e.log.Warn("owning institution not found for course join",
					zap.String("course_id", entityID.Hex()),
					zap.Error(err))
				return nil
			}
			if _, err := e.institutions.AddParticipant(ctx, inst.ID, role, user.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			return models.User{}, apperr.Newf(apperr.KindConflict,
				"an account with this email already exists: %s", email)
		}
		return models.User{}, mapEntityErr(err, kind)
	}

	return user, nil
}
