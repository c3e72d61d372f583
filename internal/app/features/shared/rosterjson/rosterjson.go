// Package rosterjson builds the populated roster responses shared by
// the institution and course features.
package rosterjson

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	userstore "github.com/msajedian/topedu/internal/app/store/users"
	"github.com/msajedian/topedu/internal/domain/models"
)

// Participant is one roster member with the user fields a client needs.
type Participant struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// Pending is one pending record as exposed to admins and instructors.
type Pending struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Roster is the populated participants response, grouped by tier.
type Roster struct {
	Admins      []Participant `json:"admins"`
	Instructors []Participant `json:"instructors"`
	Assistants  []Participant `json:"assistants"`
	Learners    []Participant `json:"learners"`

	// PendingUsers is only filled for callers who can invite.
	PendingUsers []Pending `json:"pending_users,omitempty"`
}

// Build populates a roster with user documents loaded in one query.
// Ids without a user document are skipped rather than surfaced as
// holes.
func Build(ctx context.Context, users *userstore.Store, roster models.Roster) (Roster, error) {
	loaded, err := users.GetByIDs(ctx, roster.AllIDs())
	if err != nil {
		return Roster{}, err
	}

	populate := func(ids []primitive.ObjectID) []Participant {
		out := make([]Participant, 0, len(ids))
		for _, id := range ids {
			u, ok := loaded[id]
			if !ok {
				continue
			}
			out = append(out, Participant{
				ID:       u.ID.Hex(),
				FullName: u.FullName,
				Email:    u.Email,
			})
		}
		return out
	}

	return Roster{
		Admins:      populate(roster.Admins),
		Instructors: populate(roster.Instructors),
		Assistants:  populate(roster.Assistants),
		Learners:    populate(roster.Learners),
	}, nil
}

// BuildPending flattens the four pending tiers into one list.
func BuildPending(pr models.PendingRoster) []Pending {
	var out []Pending
	appendTier := func(tier []models.PendingUser) {
		for _, pu := range tier {
			out = append(out, Pending{
				ID:        pu.ID.Hex(),
				Email:     pu.Email,
				FullName:  pu.FullName,
				Role:      string(pu.Role),
				CreatedAt: pu.CreatedAt,
			})
		}
	}
	appendTier(pr.Admins)
	appendTier(pr.Instructors)
	appendTier(pr.Assistants)
	appendTier(pr.Learners)
	return out
}
