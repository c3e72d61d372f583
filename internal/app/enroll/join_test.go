package enroll_test

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"

	"github.com/msajedian/topedu/internal/app/enroll"
	coursestore "github.com/msajedian/topedu/internal/app/store/courses"
	entitystore "github.com/msajedian/topedu/internal/app/store/entities"
	institutionstore "github.com/msajedian/topedu/internal/app/store/institutions"
	"github.com/msajedian/topedu/internal/app/system/apperr"
	"github.com/msajedian/topedu/internal/domain/models"
	"github.com/msajedian/topedu/internal/testutil"
)

func TestJoin_Institution(t *testing.T) {
	engine, fixtures := newEngine(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fixtures.CreateUser(ctx, "Admin", "admin@example.com")
	inst := fixtures.CreateInstitution(ctx, "State University", admin.ID)
	pu := fixtures.AddPending(ctx, "institutions", inst.ID, models.RoleLearner, "lana@example.com", "Lana Learner")

	user, err := engine.Join(ctx, entitystore.KindInstitution, inst.ID, pu.ID, enroll.JoinRequest{
		FullName: "Lana Learner",
		Password: "hunter2hunter2",
	})
	if err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	if user.Email != "lana@example.com" {
		t.Errorf("email: got %q, want invited address", user.Email)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("hunter2hunter2")); err != nil {
		t.Error("stored hash does not match the supplied password")
	}

	store := institutionstore.New(fixtures.DB())
	role, err := store.ResolveRole(ctx, inst.ID, user.ID)
	if err != nil {
		t.Fatalf("ResolveRole failed: %v", err)
	}
	if role != models.RoleLearner {
		t.Errorf("role: got %q, want learner", role)
	}

	// The pending record is consumed.
	if _, _, err := store.PendingByID(ctx, inst.ID, pu.ID); err != entitystore.ErrPendingNotFound {
		t.Errorf("expected pending record to be consumed, got %v", err)
	}
}

func TestJoin_CourseAddsToOwningInstitution(t *testing.T) {
	engine, fixtures := newEngine(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fixtures.CreateUser(ctx, "Admin", "admin@example.com")
	inst := fixtures.CreateInstitution(ctx, "State University", admin.ID)
	course := fixtures.CreateCourse(ctx, "Biology 101", inst.ID, admin.ID)
	pu := fixtures.AddPending(ctx, "courses", course.ID, models.RoleAssistant, "andy@example.com", "Andy Assistant")

	user, err := engine.Join(ctx, entitystore.KindCourse, course.ID, pu.ID, enroll.JoinRequest{
		FullName: "Andy Assistant",
		Password: "hunter2hunter2",
	})
	if err != nil {
		t.Fatalf("Join failed: %v", err)
	}

	courseRole, err := coursestore.New(fixtures.DB()).ResolveRole(ctx, course.ID, user.ID)
	if err != nil {
		t.Fatalf("course ResolveRole failed: %v", err)
	}
	if courseRole != models.RoleAssistant {
		t.Errorf("course role: got %q, want assistant", courseRole)
	}

	instRole, err := institutionstore.New(fixtures.DB()).ResolveRole(ctx, inst.ID, user.ID)
	if err != nil {
		t.Fatalf("institution ResolveRole failed: %v", err)
	}
	if instRole != models.RoleAssistant {
		t.Errorf("institution role: got %q, want assistant", instRole)
	}
}

func TestJoin_OverridesEmail(t *testing.T) {
	engine, fixtures := newEngine(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fixtures.CreateUser(ctx, "Admin", "admin@example.com")
	inst := fixtures.CreateInstitution(ctx, "State University", admin.ID)
	pu := fixtures.AddPending(ctx, "institutions", inst.ID, models.RoleLearner, "old@example.com", "Lana Learner")

	user, err := engine.Join(ctx, entitystore.KindInstitution, inst.ID, pu.ID, enroll.JoinRequest{
		FullName: "Lana Learner",
		Email:    "Preferred@Example.com",
		Password: "hunter2hunter2",
	})
	if err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	if user.Email != "preferred@example.com" {
		t.Errorf("email: got %q, want preferred address normalized", user.Email)
	}
}

func TestJoin_SecondAttemptNotFound(t *testing.T) {
	engine, fixtures := newEngine(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fixtures.CreateUser(ctx, "Admin", "admin@example.com")
	inst := fixtures.CreateInstitution(ctx, "State University", admin.ID)
	pu := fixtures.AddPending(ctx, "institutions", inst.ID, models.RoleLearner, "lana@example.com", "Lana Learner")

	if _, err := engine.Join(ctx, entitystore.KindInstitution, inst.ID, pu.ID, enroll.JoinRequest{
		FullName: "Lana Learner",
		Password: "hunter2hunter2",
	}); err != nil {
		t.Fatalf("first Join failed: %v", err)
	}

	_, err := engine.Join(ctx, entitystore.KindInstitution, inst.ID, pu.ID, enroll.JoinRequest{
		FullName: "Lana Learner",
		Password: "hunter2hunter2",
	})
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected not_found on second join, got %v", err)
	}
}

func TestJoin_Validation(t *testing.T) {
	engine, fixtures := newEngine(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fixtures.CreateUser(ctx, "Admin", "admin@example.com")
	inst := fixtures.CreateInstitution(ctx, "State University", admin.ID)
	pu := fixtures.AddPending(ctx, "institutions", inst.ID, models.RoleLearner, "lana@example.com", "Lana Learner")

	cases := []struct {
		name  string
		req   enroll.JoinRequest
		field string
	}{
		{"missing name", enroll.JoinRequest{Password: "hunter2hunter2"}, "full_name"},
		{"short password", enroll.JoinRequest{FullName: "Lana", Password: "short"}, "password"},
		{"bad email", enroll.JoinRequest{FullName: "Lana", Email: "nope", Password: "hunter2hunter2"}, "email"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := engine.Join(ctx, entitystore.KindInstitution, inst.ID, pu.ID, tc.req)
			if apperr.KindOf(err) != apperr.KindValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
			var appErr *apperr.Error
			if !errors.As(err, &appErr) || appErr.Fields[tc.field] == "" {
				t.Errorf("expected field error for %q, got %v", tc.field, err)
			}
		})
	}

	// Validation failures never consume the record.
	if _, _, err := institutionstore.New(fixtures.DB()).PendingByID(ctx, inst.ID, pu.ID); err != nil {
		t.Errorf("pending record should survive validation failures, got %v", err)
	}
}

func TestJoin_DuplicateEmailConflicts(t *testing.T) {
	engine, fixtures := newEngine(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ensureUniqueEmailIndex(t, ctx, fixtures)

	admin := fixtures.CreateUser(ctx, "Admin", "admin@example.com")
	inst := fixtures.CreateInstitution(ctx, "State University", admin.ID)
	fixtures.CreateUser(ctx, "Existing", "taken@example.com")
	pu := fixtures.AddPending(ctx, "institutions", inst.ID, models.RoleLearner, "taken@example.com", "Dup")

	_, err := engine.Join(ctx, entitystore.KindInstitution, inst.ID, pu.ID, enroll.JoinRequest{
		FullName: "Dup",
		Password: "hunter2hunter2",
	})
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestJoin_UnknownPendingID(t *testing.T) {
	engine, fixtures := newEngine(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fixtures.CreateUser(ctx, "Admin", "admin@example.com")
	inst := fixtures.CreateInstitution(ctx, "State University", admin.ID)

	_, err := engine.Join(ctx, entitystore.KindInstitution, inst.ID, primitive.NewObjectID(), enroll.JoinRequest{
		FullName: "Nobody",
		Password: "hunter2hunter2",
	})
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestPending_PublicLookup(t *testing.T) {
	engine, fixtures := newEngine(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fixtures.CreateUser(ctx, "Admin", "admin@example.com")
	inst := fixtures.CreateInstitution(ctx, "State University", admin.ID)
	pu := fixtures.AddPending(ctx, "institutions", inst.ID, models.RoleLearner, "lana@example.com", "Lana Learner")

	got, err := engine.Pending(ctx, entitystore.KindInstitution, inst.ID, pu.ID)
	if err != nil {
		t.Fatalf("Pending failed: %v", err)
	}
	if got.Email != pu.Email || got.ID != pu.ID {
		t.Errorf("pending record mismatch: got %+v, want %+v", got, pu)
	}
}

// ensureUniqueEmailIndex creates the unique users.email index so the
// duplicate-email path is exercised the way production is wired.
func ensureUniqueEmailIndex(t *testing.T, ctx context.Context, fixtures *testutil.Fixtures) {
	t.Helper()
	_, err := fixtures.DB().Collection("users").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		t.Fatalf("failed to create unique email index: %v", err)
	}
}
