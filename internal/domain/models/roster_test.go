package models

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		input string
		want  Role
		ok    bool
	}{
		{"admin", RoleAdmin, true},
		{"ADMIN", RoleAdmin, true},
		{"  Instructor  ", RoleInstructor, true},
		{"assistant", RoleAssistant, true},
		{"learner", RoleLearner, true},
		{"owner", RoleNone, false},
		{"", RoleNone, false},
		{"none", RoleNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseRole(tt.input)
			if got != tt.want || ok != tt.ok {
				t.Errorf("ParseRole(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestRosterResolve(t *testing.T) {
	admin := primitive.NewObjectID()
	instructor := primitive.NewObjectID()
	assistant := primitive.NewObjectID()
	learner := primitive.NewObjectID()
	stranger := primitive.NewObjectID()

	r := Roster{
		Admins:      []primitive.ObjectID{admin},
		Instructors: []primitive.ObjectID{instructor},
		Assistants:  []primitive.ObjectID{assistant},
		Learners:    []primitive.ObjectID{learner},
	}

	tests := []struct {
		name string
		id   primitive.ObjectID
		want Role
	}{
		{"admin", admin, RoleAdmin},
		{"instructor", instructor, RoleInstructor},
		{"assistant", assistant, RoleAssistant},
		{"learner", learner, RoleLearner},
		{"stranger", stranger, RoleNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Resolve(tt.id); got != tt.want {
				t.Errorf("Resolve = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRosterResolve_HighestPrivilegeWins(t *testing.T) {
	// A document that violates the one-tier invariant should still
	// resolve deterministically to the strongest tier.
	dual := primitive.NewObjectID()
	r := Roster{
		Instructors: []primitive.ObjectID{dual},
		Learners:    []primitive.ObjectID{dual},
	}

	if got := r.Resolve(dual); got != RoleInstructor {
		t.Errorf("Resolve = %q, want %q", got, RoleInstructor)
	}
}

func TestRosterAdd(t *testing.T) {
	id := primitive.NewObjectID()
	var r Roster

	if !r.Add(RoleLearner, id) {
		t.Fatal("first Add should report a change")
	}
	if r.Add(RoleLearner, id) {
		t.Error("second Add of the same id should be a no-op")
	}
	if len(r.Learners) != 1 {
		t.Errorf("learners length = %d, want 1", len(r.Learners))
	}
	if r.Add(RoleNone, id) {
		t.Error("Add with an unknown role should report no change")
	}
}

func TestRosterAllIDs_Deduplicates(t *testing.T) {
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()
	r := Roster{
		Admins:   []primitive.ObjectID{a},
		Learners: []primitive.ObjectID{a, b},
	}

	ids := r.AllIDs()
	if len(ids) != 2 {
		t.Errorf("AllIDs length = %d, want 2", len(ids))
	}
}

func TestPendingRosterAppend_DedupePerTier(t *testing.T) {
	var p PendingRoster

	first := PendingUser{ID: primitive.NewObjectID(), Email: "new@example.com", Role: RoleLearner}
	if !p.Append(first) {
		t.Fatal("first Append should succeed")
	}

	dup := PendingUser{ID: primitive.NewObjectID(), Email: "new@example.com", Role: RoleLearner}
	if p.Append(dup) {
		t.Error("Append with a duplicate email in the same tier should be a no-op")
	}
	if len(p.Learners) != 1 {
		t.Errorf("learners length = %d, want 1", len(p.Learners))
	}

	// The same email may wait in a different tier.
	other := PendingUser{ID: primitive.NewObjectID(), Email: "new@example.com", Role: RoleAssistant}
	if !p.Append(other) {
		t.Error("Append with the same email in another tier should succeed")
	}
}

func TestPendingRosterFindByID(t *testing.T) {
	pu := PendingUser{ID: primitive.NewObjectID(), Email: "x@example.com", Role: RoleInstructor}
	p := PendingRoster{Instructors: []PendingUser{pu}}

	got, role, ok := p.FindByID(pu.ID)
	if !ok || role != RoleInstructor || got.ID != pu.ID {
		t.Errorf("FindByID = (%v, %q, %v), want record in instructor tier", got.ID, role, ok)
	}

	if _, _, ok := p.FindByID(primitive.NewObjectID()); ok {
		t.Error("FindByID with an unknown id should report not found")
	}
}

func TestPendingRosterRemove(t *testing.T) {
	pu := PendingUser{ID: primitive.NewObjectID(), Email: "x@example.com", Role: RoleLearner}
	p := PendingRoster{Learners: []PendingUser{pu}}

	role, ok := p.Remove(pu.ID)
	if !ok || role != RoleLearner {
		t.Fatalf("Remove = (%q, %v), want (learner, true)", role, ok)
	}
	if len(p.Learners) != 0 {
		t.Errorf("learners length after remove = %d, want 0", len(p.Learners))
	}

	// Removal is exactly-once.
	if _, ok := p.Remove(pu.ID); ok {
		t.Error("second Remove of the same id should report not found")
	}
}
