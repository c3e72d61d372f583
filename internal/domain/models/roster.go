// internal/domain/models/roster.go
package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is a participation tier inside an institution or course.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleInstructor Role = "instructor"
	RoleAssistant  Role = "assistant"
	RoleLearner    Role = "learner"

	// RoleNone means the user holds no tier in the entity.
	RoleNone Role = "none"
)

// tierOrder lists the tiers from most to least privileged. Resolution
// scans in this order, so a document that somehow holds a user in two
// tiers resolves to the stronger one.
var tierOrder = [...]Role{RoleAdmin, RoleInstructor, RoleAssistant, RoleLearner}

// ParseRole normalizes and validates a caller-supplied role string.
// The second return is false for anything that is not one of the four tiers.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleInstructor:
		return RoleInstructor, true
	case RoleAssistant:
		return RoleAssistant, true
	case RoleLearner:
		return RoleLearner, true
	default:
		return RoleNone, false
	}
}

// Roster holds the active participants of an entity, one list per tier.
// A user id is expected to appear in at most one tier.
type Roster struct {
	Admins      []primitive.ObjectID `bson:"admins" json:"admins"`
	Instructors []primitive.ObjectID `bson:"instructors" json:"instructors"`
	Assistants  []primitive.ObjectID `bson:"assistants" json:"assistants"`
	Learners    []primitive.ObjectID `bson:"learners" json:"learners"`
}

func (r *Roster) tier(role Role) *[]primitive.ObjectID {
	switch role {
	case RoleAdmin:
		return &r.Admins
	case RoleInstructor:
		return &r.Instructors
	case RoleAssistant:
		return &r.Assistants
	case RoleLearner:
		return &r.Learners
	default:
		return nil
	}
}

// Tier returns the ids in the given tier. Unknown roles yield nil.
func (r Roster) Tier(role Role) []primitive.ObjectID {
	if t := r.tier(role); t != nil {
		return *t
	}
	return nil
}

// Resolve maps a user id to the tier that contains it, or RoleNone.
// Tiers are scanned from admin down so the highest privilege wins.
func (r Roster) Resolve(userID primitive.ObjectID) Role {
	for _, role := range tierOrder {
		for _, id := range r.Tier(role) {
			if id == userID {
				return role
			}
		}
	}
	return RoleNone
}

// Contains reports whether the given tier already holds userID.
func (r Roster) Contains(role Role, userID primitive.ObjectID) bool {
	for _, id := range r.Tier(role) {
		if id == userID {
			return true
		}
	}
	return false
}

// Add appends userID to the given tier unless that tier already holds
// it. Reports whether the roster changed.
func (r *Roster) Add(role Role, userID primitive.ObjectID) bool {
	t := r.tier(role)
	if t == nil || r.Contains(role, userID) {
		return false
	}
	*t = append(*t, userID)
	return true
}

// AllIDs returns every participant id across the four tiers, deduplicated.
func (r Roster) AllIDs() []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{})
	var ids []primitive.ObjectID
	for _, role := range tierOrder {
		for _, id := range r.Tier(role) {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids
}

// PendingUser is an invited email address that has no account yet.
// The record lives inside the entity document until a join consumes it.
type PendingUser struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	Email     string             `bson:"email" json:"email"`
	FullName  string             `bson:"full_name" json:"full_name"`
	Role      Role               `bson:"role" json:"role"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// PendingRoster mirrors Roster for invited-but-unregistered users.
// An email appears at most once per tier; the same email may hold
// pending intents in several tiers at once.
type PendingRoster struct {
	Admins      []PendingUser `bson:"admins" json:"admins"`
	Instructors []PendingUser `bson:"instructors" json:"instructors"`
	Assistants  []PendingUser `bson:"assistants" json:"assistants"`
	Learners    []PendingUser `bson:"learners" json:"learners"`
}

func (p *PendingRoster) tier(role Role) *[]PendingUser {
	switch role {
	case RoleAdmin:
		return &p.Admins
	case RoleInstructor:
		return &p.Instructors
	case RoleAssistant:
		return &p.Assistants
	case RoleLearner:
		return &p.Learners
	default:
		return nil
	}
}

// Tier returns the pending records in the given tier.
func (p PendingRoster) Tier(role Role) []PendingUser {
	if t := p.tier(role); t != nil {
		return *t
	}
	return nil
}

// FindByEmail looks for a pending record with the given (already
// normalized) email inside one tier.
func (p PendingRoster) FindByEmail(role Role, email string) (PendingUser, bool) {
	for _, pu := range p.Tier(role) {
		if pu.Email == email {
			return pu, true
		}
	}
	return PendingUser{}, false
}

// FindByID scans all four tiers for a pending record id and returns
// the record plus the tier it was found in.
func (p PendingRoster) FindByID(id primitive.ObjectID) (PendingUser, Role, bool) {
	for _, role := range tierOrder {
		for _, pu := range p.Tier(role) {
			if pu.ID == id {
				return pu, role, true
			}
		}
	}
	return PendingUser{}, RoleNone, false
}

// Append adds a pending record to its tier unless a record in that
// tier already carries the same email. Reports whether it was added.
func (p *PendingRoster) Append(pu PendingUser) bool {
	t := p.tier(pu.Role)
	if t == nil {
		return false
	}
	if _, exists := p.FindByEmail(pu.Role, pu.Email); exists {
		return false
	}
	*t = append(*t, pu)
	return true
}

// Remove deletes the pending record with the given id and returns the
// tier it was removed from. Reports false if no tier held it.
func (p *PendingRoster) Remove(id primitive.ObjectID) (Role, bool) {
	for _, role := range tierOrder {
		t := p.tier(role)
		for i, pu := range *t {
			if pu.ID == id {
				*t = append((*t)[:i], (*t)[i+1:]...)
				return role, true
			}
		}
	}
	return RoleNone, false
}
