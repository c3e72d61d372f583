// Package entitystore holds the roster persistence shared by
// institutions and courses. Both entity kinds embed the same
// participants/pending_users shape, so the tier-guarded writes live
// here once and the per-collection stores wrap them.
package entitystore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/msajedian/topedu/internal/domain/models"
)

// Kind names an entity collection.
type Kind string

const (
	KindInstitution Kind = "institution"
	KindCourse      Kind = "course"
)

// Collection returns the Mongo collection name for the kind.
func (k Kind) Collection() string {
	if k == KindCourse {
		return "courses"
	}
	return "institutions"
}

var (
	// ErrPendingNotFound is returned when no pending record with the
	// given id exists on the entity (or it was already consumed).
	ErrPendingNotFound = errors.New("pending user not found in this entity")
)

// Rosters is the projection of an entity document used by role
// resolution and the enrollment flows.
type Rosters struct {
	ID           primitive.ObjectID   `bson:"_id"`
	Participants models.Roster        `bson:"participants"`
	PendingUsers models.PendingRoster `bson:"pending_users"`
}

type Store struct {
	c    *mongo.Collection
	kind Kind
}

func New(db *mongo.Database, kind Kind) *Store {
	return &Store{c: db.Collection(kind.Collection()), kind: kind}
}

func (s *Store) Kind() Kind { return s.kind }

// Collection exposes the underlying collection for the wrapping store.
func (s *Store) Collection() *mongo.Collection { return s.c }

func participantField(role models.Role) string {
	return "participants." + tierKey(role)
}

func pendingField(role models.Role) string {
	return "pending_users." + tierKey(role)
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

// Rosters loads the roster projection for one entity. Returns
// mongo.ErrNoDocuments if the entity does not exist.
func (s *Store) Rosters(ctx context.Context, id primitive.ObjectID) (Rosters, error) {
	var ros Rosters
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&ros); err != nil {
		return Rosters{}, err
	}
	return ros, nil
}

// ResolveRole maps a user to their tier in the entity, RoleNone if
// absent. Returns mongo.ErrNoDocuments if the entity does not exist.
func (s *Store) ResolveRole(ctx context.Context, id, userID primitive.ObjectID) (models.Role, error) {
	ros, err := s.Rosters(ctx, id)
	if err != nil {
		return models.RoleNone, err
	}
	return ros.Participants.Resolve(userID), nil
}

// AddParticipant adds userID to the given tier unless the tier already
// holds it. $addToSet keeps the guard atomic under concurrent invites.
// Reports whether the roster changed; mongo.ErrNoDocuments if the
// entity does not exist.
func (s *Store) AddParticipant(ctx context.Context, id primitive.ObjectID, role models.Role, userID primitive.ObjectID) (bool, error) {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$addToSet": bson.M{participantField(role): userID},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return false, err
	}
	if res.MatchedCount == 0 {
		return false, mongo.ErrNoDocuments
	}
	return res.ModifiedCount > 0, nil
}

// EnsurePending appends pu to its pending tier unless an entry in that
// tier already carries the same email, then re-reads the entity and
// returns the stored record. Callers get the server-assigned record
// either way.
func (s *Store) EnsurePending(ctx context.Context, id primitive.ObjectID, pu models.PendingUser) (models.PendingUser, error) {
	field := pendingField(pu.Role)
	_, err := s.c.UpdateOne(ctx, bson.M{
		"_id":            id,
		field + ".email": bson.M{"$ne": pu.Email},
	}, bson.M{
		"$push": bson.M{field: pu},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return models.PendingUser{}, err
	}

	ros, err := s.Rosters(ctx, id)
	if err != nil {
		return models.PendingUser{}, err
	}
	stored, ok := ros.PendingUsers.FindByEmail(pu.Role, pu.Email)
	if !ok {
		return models.PendingUser{}, ErrPendingNotFound
	}
	return stored, nil
}

// PendingByID scans all four pending tiers for a record id.
// mongo.ErrNoDocuments if the entity does not exist;
// ErrPendingNotFound if no tier holds the record.
func (s *Store) PendingByID(ctx context.Context, id, pendingID primitive.ObjectID) (models.PendingUser, models.Role, error) {
	ros, err := s.Rosters(ctx, id)
	if err != nil {
		return models.PendingUser{}, models.RoleNone, err
	}
	pu, role, ok := ros.PendingUsers.FindByID(pendingID)
	if !ok {
		return models.PendingUser{}, models.RoleNone, ErrPendingNotFound
	}
	return pu, role, nil
}

// RemovePending deletes a pending record from its tier. The record id
// is part of the filter, so consumption is exactly-once: a concurrent
// second removal matches nothing and sees ErrPendingNotFound.
func (s *Store) RemovePending(ctx context.Context, id primitive.ObjectID, role models.Role, pendingID primitive.ObjectID) error {
	field := pendingField(role)
	res, err := s.c.UpdateOne(ctx, bson.M{
		"_id":           id,
		field + "._id": pendingID,
	}, bson.M{
		"$pull": bson.M{field: bson.M{"_id": pendingID}},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// Entity gone or record already consumed.
		if cErr := s.c.FindOne(ctx, bson.M{"_id": id}).Err(); cErr != nil {
			return cErr
		}
		return ErrPendingNotFound
	}
	return nil
}
