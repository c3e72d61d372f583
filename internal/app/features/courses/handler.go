// internal/app/features/courses/handler.go
package courses

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/msajedian/topedu/internal/app/enroll"
	coursestore "github.com/msajedian/topedu/internal/app/store/courses"
	institutionstore "github.com/msajedian/topedu/internal/app/store/institutions"
	userstore "github.com/msajedian/topedu/internal/app/store/users"
	"github.com/msajedian/topedu/internal/app/system/apperr"
)

// Handler is the feature-level handler for courses.
type Handler struct {
	DB           *mongo.Database
	Log          *zap.Logger
	Engine       *enroll.Engine
	Courses      *coursestore.Store
	Institutions *institutionstore.Store
	Users        *userstore.Store
}

func NewHandler(db *mongo.Database, engine *enroll.Engine, logger *zap.Logger) *Handler {
	return &Handler{
		DB:           db,
		Log:          logger,
		Engine:       engine,
		Courses:      coursestore.New(db),
		Institutions: institutionstore.New(db),
		Users:        userstore.New(db),
	}
}

func urlID(r *http.Request, param string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, param))
	if err != nil {
		return primitive.NilObjectID, apperr.NotFound("course not found")
	}
	return id, nil
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.BadRequest("invalid JSON body")
	}
	return nil
}
