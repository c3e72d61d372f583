package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/msajedian/topedu/internal/domain/models"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
// Repeated calls accumulate parameters on the same route context.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

func emptyRoster() models.Roster {
	return models.Roster{
		Admins:      []primitive.ObjectID{},
		Instructors: []primitive.ObjectID{},
		Assistants:  []primitive.ObjectID{},
		Learners:    []primitive.ObjectID{},
	}
}

func emptyPendingRoster() models.PendingRoster {
	return models.PendingRoster{
		Admins:      []models.PendingUser{},
		Instructors: []models.PendingUser{},
		Assistants:  []models.PendingUser{},
		Learners:    []models.PendingUser{},
	}
}

// CreateUser inserts a user with the given name and email. The
// password is "password123" unless a test needs to verify the hash.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, email string) models.User {
	f.t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		f.t.Fatalf("failed to hash test password: %v", err)
	}

	now := time.Now().UTC()
	user := models.User{
		ID:           primitive.NewObjectID(),
		FullName:     fullName,
		FullNameCI:   text.Fold(fullName),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateInstitution inserts an institution with the creator as its
// sole admin.
func (f *Fixtures) CreateInstitution(ctx context.Context, name string, creator primitive.ObjectID) models.Institution {
	f.t.Helper()

	now := time.Now().UTC()
	inst := models.Institution{
		ID:           primitive.NewObjectID(),
		Name:         name,
		NameCI:       text.Fold(name),
		Description:  "Test institution description",
		Creator:      creator,
		Participants: emptyRoster(),
		PendingUsers: emptyPendingRoster(),
		Courses:      []primitive.ObjectID{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	inst.Participants.Admins = []primitive.ObjectID{creator}

	if _, err := f.db.Collection("institutions").InsertOne(ctx, inst); err != nil {
		f.t.Fatalf("failed to create test institution: %v", err)
	}
	return inst
}

// CreateCourse inserts a course under the given institution with the
// creator as its sole admin, and appends the course id to the
// institution's courses array.
func (f *Fixtures) CreateCourse(ctx context.Context, name string, instID, creator primitive.ObjectID) models.Course {
	f.t.Helper()

	now := time.Now().UTC()
	course := models.Course{
		ID:            primitive.NewObjectID(),
		Name:          name,
		NameCI:        text.Fold(name),
		Description:   "Test course description",
		Creator:       creator,
		InstitutionID: instID,
		Participants:  emptyRoster(),
		PendingUsers:  emptyPendingRoster(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	course.Participants.Admins = []primitive.ObjectID{creator}

	if _, err := f.db.Collection("courses").InsertOne(ctx, course); err != nil {
		f.t.Fatalf("failed to create test course: %v", err)
	}
	if _, err := f.db.Collection("institutions").UpdateByID(ctx, instID, bson.M{
		"$addToSet": bson.M{"courses": course.ID},
	}); err != nil {
		f.t.Fatalf("failed to link test course to institution: %v", err)
	}
	return course
}

// AddParticipant places a user id on a tier of an entity document.
func (f *Fixtures) AddParticipant(ctx context.Context, collection string, entityID primitive.ObjectID, role models.Role, userID primitive.ObjectID) {
	f.t.Helper()

	field := "participants." + tierKey(role)
	if _, err := f.db.Collection(collection).UpdateByID(ctx, entityID, bson.M{
		"$addToSet": bson.M{field: userID},
	}); err != nil {
		f.t.Fatalf("failed to add test participant: %v", err)
	}
}

// AddPending appends a pending record to a tier of an entity document
// and returns it.
func (f *Fixtures) AddPending(ctx context.Context, collection string, entityID primitive.ObjectID, role models.Role, email, fullName string) models.PendingUser {
	f.t.Helper()

	pu := models.PendingUser{
		ID:        primitive.NewObjectID(),
		Email:     email,
		FullName:  fullName,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	field := "pending_users." + tierKey(role)
	if _, err := f.db.Collection(collection).UpdateByID(ctx, entityID, bson.M{
		"$push": bson.M{field: pu},
	}); err != nil {
		f.t.Fatalf("failed to add test pending user: %v", err)
	}
	return pu
}

func tierKey(role models.Role) string {
	switch role {
	case models.RoleAdmin:
		return "admins"
	case models.RoleInstructor:
		return "instructors"
	case models.RoleAssistant:
		return "assistants"
	default:
		return "learners"
	}
}
