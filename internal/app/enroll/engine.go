// Package enroll implements the invitation and join/conversion state
// machine shared by institutions and courses. Handlers stay thin; the
// tier gating, email branching, pending consumption, and dual-write
// rules all live here.
package enroll

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	coursestore "github.com/msajedian/topedu/internal/app/store/courses"
	entitystore "github.com/msajedian/topedu/internal/app/store/entities"
	institutionstore "github.com/msajedian/topedu/internal/app/store/institutions"
	userstore "github.com/msajedian/topedu/internal/app/store/users"
	"github.com/msajedian/topedu/internal/app/system/apperr"
	"github.com/msajedian/topedu/internal/app/system/mailer"
	"github.com/msajedian/topedu/internal/domain/models"
)

// Engine drives invitations and joins over the stores. One instance is
// shared by the institution and course features.
type Engine struct {
	users        *userstore.Store
	institutions *institutionstore.Store
	courses      *coursestore.Store
	client       *mongo.Client
	mail         mailer.Mailer
	siteName     string
	frontendURL  string
	log          *zap.Logger
}

// Config carries the notification settings the engine needs beyond its
// stores.
type Config struct {
	SiteName    string
	FrontendURL string
}

func New(db *mongo.Database, mail mailer.Mailer, cfg Config, logger *zap.Logger) *Engine {
	return &Engine{
		users:        userstore.New(db),
		institutions: institutionstore.New(db),
		courses:      coursestore.New(db),
		client:       db.Client(),
		mail:         mail,
		siteName:     cfg.SiteName,
		frontendURL:  cfg.FrontendURL,
		log:          logger,
	}
}

// target picks the entity store for a kind.
func (e *Engine) target(kind entitystore.Kind) *entitystore.Store {
	if kind == entitystore.KindCourse {
		return e.courses.Store
	}
	return e.institutions.Store
}

// entityName loads the display name of an entity for notifications.
func (e *Engine) entityName(ctx context.Context, kind entitystore.Kind, id primitive.ObjectID) (string, error) {
	if kind == entitystore.KindCourse {
		course, err := e.courses.GetByID(ctx, id)
		if err != nil {
			return "", err
		}
		return course.Name, nil
	}
	inst, err := e.institutions.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return inst.Name, nil
}

// mapEntityErr translates store sentinels into the client error
// taxonomy. Entity absence and missing pending records both surface as
// not_found so existence is not disclosed.
func mapEntityErr(err error, kind entitystore.Kind) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return apperr.Newf(apperr.KindNotFound, "%s not found", kind)
	case errors.Is(err, entitystore.ErrPendingNotFound):
		return apperr.Newf(apperr.KindNotFound, "user not found in this %s", kind)
	default:
		return apperr.Internal(err, "storage failure")
	}
}

// Pending returns a pending record for the public join landing page.
func (e *Engine) Pending(ctx context.Context, kind entitystore.Kind, entityID, pendingID primitive.ObjectID) (models.PendingUser, error) {
	pu, _, err := e.target(kind).PendingByID(ctx, entityID, pendingID)
	if err != nil {
		return models.PendingUser{}, mapEntityErr(err, kind)
	}
	return pu, nil
}
