package institutions_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/msajedian/topedu/internal/app/enroll"
	"github.com/msajedian/topedu/internal/app/features/institutions"
	"github.com/msajedian/topedu/internal/app/system/mailer"
	"github.com/msajedian/topedu/internal/domain/models"
	"github.com/msajedian/topedu/internal/testutil"
)

func newHandler(t *testing.T) (*institutions.Handler, *testutil.Fixtures, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	mail, err := mailer.New(mailer.Config{Provider: "noop"}, zap.NewNop())
	if err != nil {
		t.Fatalf("failed to build mailer: %v", err)
	}
	engine := enroll.New(db, mail, enroll.Config{
		SiteName:    "TopEdu",
		FrontendURL: "https://topedu.test",
	}, zap.NewNop())
	return institutions.NewHandler(db, engine, zap.NewNop()), testutil.NewFixtures(t, db), db
}

func TestHandleCreate(t *testing.T) {
	h, fixtures, _ := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateUser(ctx, "Ada Admin", "ada@example.com")

	req := testutil.NewJSONRequest(t, "POST", "/institutions", map[string]string{
		"name":        "State University",
		"description": "A fine school",
	})
	req = testutil.WithUser(req, testutil.UserFor(creator))
	rec := httptest.NewRecorder()

	h.HandleCreate(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d, body %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var resp struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.ID == "" {
		t.Fatal("expected created id in response")
	}
}

func TestHandleCreate_MissingName(t *testing.T) {
	h, fixtures, _ := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateUser(ctx, "Ada Admin", "ada@example.com")

	req := testutil.NewJSONRequest(t, "POST", "/institutions", map[string]string{"name": "  "})
	req = testutil.WithUser(req, testutil.UserFor(creator))
	rec := httptest.NewRecorder()

	h.HandleCreate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestServeDetail_RoleGating(t *testing.T) {
	h, fixtures, _ := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fixtures.CreateUser(ctx, "Ada Admin", "ada@example.com")
	outsider := fixtures.CreateUser(ctx, "Olaf Outsider", "olaf@example.com")
	inst := fixtures.CreateInstitution(ctx, "State University", admin.ID)

	// Member sees the detail with their role.
	req := testutil.NewAuthenticatedRequest("GET", "/institutions/"+inst.ID.Hex(), testutil.UserFor(admin))
	req = testutil.WithChiURLParam(req, "id", inst.ID.Hex())
	rec := httptest.NewRecorder()
	h.ServeDetail(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d, body %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var resp struct {
		Institution struct {
			Name string `json:"name"`
		} `json:"institution"`
		Role string `json:"role"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.Role != "admin" || resp.Institution.Name != "State University" {
		t.Errorf("unexpected response: %+v", resp)
	}

	// Outsider gets not_found; existence is not disclosed.
	req = testutil.NewAuthenticatedRequest("GET", "/institutions/"+inst.ID.Hex(), testutil.UserFor(outsider))
	req = testutil.WithChiURLParam(req, "id", inst.ID.Hex())
	rec = httptest.NewRecorder()
	h.ServeDetail(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("outsider status: got %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestHandleUpdate_LearnerForbidden(t *testing.T) {
	h, fixtures, _ := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fixtures.CreateUser(ctx, "Ada Admin", "ada@example.com")
	learner := fixtures.CreateUser(ctx, "Lana Learner", "lana@example.com")
	inst := fixtures.CreateInstitution(ctx, "State University", admin.ID)
	fixtures.AddParticipant(ctx, "institutions", inst.ID, models.RoleLearner, learner.ID)

	req := testutil.NewJSONRequest(t, "PUT", "/institutions/"+inst.ID.Hex(), map[string]string{
		"name": "Renamed",
	})
	req = testutil.WithUser(req, testutil.UserFor(learner))
	req = testutil.WithChiURLParam(req, "id", inst.ID.Hex())
	rec := httptest.NewRecorder()

	h.HandleUpdate(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestServeParticipants_PendingVisibility(t *testing.T) {
	h, fixtures, _ := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fixtures.CreateUser(ctx, "Ada Admin", "ada@example.com")
	learner := fixtures.CreateUser(ctx, "Lana Learner", "lana@example.com")
	inst := fixtures.CreateInstitution(ctx, "State University", admin.ID)
	fixtures.AddParticipant(ctx, "institutions", inst.ID, models.RoleLearner, learner.ID)
	fixtures.AddPending(ctx, "institutions", inst.ID, models.RoleLearner, "pending@example.com", "Pen Ding")

	get := func(user models.User) (int, map[string]json.RawMessage) {
		req := testutil.NewAuthenticatedRequest("GET", "/institutions/"+inst.ID.Hex()+"/participants", testutil.UserFor(user))
		req = testutil.WithChiURLParam(req, "id", inst.ID.Hex())
		rec := httptest.NewRecorder()
		h.ServeParticipants(rec, req)

		var body map[string]json.RawMessage
		_ = json.Unmarshal(rec.Body.Bytes(), &body)
		return rec.Code, body
	}

	code, body := get(admin)
	if code != http.StatusOK {
		t.Fatalf("admin status: got %d, want %d", code, http.StatusOK)
	}
	if _, ok := body["pending_users"]; !ok {
		t.Error("admin should see pending users")
	}

	code, body = get(learner)
	if code != http.StatusOK {
		t.Fatalf("learner status: got %d, want %d", code, http.StatusOK)
	}
	if _, ok := body["pending_users"]; ok {
		t.Error("learner should not see pending users")
	}
}

func TestJoinFlow_PublicRoutes(t *testing.T) {
	h, fixtures, _ := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fixtures.CreateUser(ctx, "Ada Admin", "ada@example.com")
	inst := fixtures.CreateInstitution(ctx, "State University", admin.ID)
	pu := fixtures.AddPending(ctx, "institutions", inst.ID, models.RoleLearner, "new@example.com", "New Person")

	// Public pending lookup, no identity in context.
	req := httptest.NewRequest("GET", "/institutions/"+inst.ID.Hex()+"/pending/"+pu.ID.Hex(), nil)
	req = testutil.WithChiURLParam(req, "id", inst.ID.Hex())
	req = testutil.WithChiURLParam(req, "pendingID", pu.ID.Hex())
	rec := httptest.NewRecorder()
	h.ServePending(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("pending status: got %d, want %d, body %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	// Public join.
	req = testutil.NewJSONRequest(t, "POST", "/institutions/"+inst.ID.Hex()+"/join/"+pu.ID.Hex(), map[string]string{
		"full_name": "New Person",
		"password":  "hunter2hunter2",
	})
	req = testutil.WithChiURLParam(req, "id", inst.ID.Hex())
	req = testutil.WithChiURLParam(req, "pendingID", pu.ID.Hex())
	rec = httptest.NewRecorder()
	h.HandleJoin(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("join status: got %d, want %d, body %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var joined struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &joined); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if joined.Email != "new@example.com" {
		t.Errorf("joined email: got %q, want invited address", joined.Email)
	}
}
