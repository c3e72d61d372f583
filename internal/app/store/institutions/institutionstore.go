// internal/app/store/institutions/institutionstore.go
package institutionstore

import (
	"context"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	entitystore "github.com/msajedian/topedu/internal/app/store/entities"
	"github.com/msajedian/topedu/internal/app/system/paging"
	"github.com/msajedian/topedu/internal/domain/models"
)

// Store wraps the shared entity store with institution-specific
// queries. Roster operations are promoted from entitystore.
type Store struct {
	*entitystore.Store
}

func New(db *mongo.Database) *Store {
	return &Store{entitystore.New(db, entitystore.KindInstitution)}
}

// Create inserts a new institution. The creator becomes the sole admin.
func (s *Store) Create(ctx context.Context, inst models.Institution) (models.Institution, error) {
	now := time.Now().UTC()
	inst.ID = primitive.NewObjectID()
	inst.NameCI = text.Fold(inst.Name)
	inst.Participants = models.Roster{
		Admins:      []primitive.ObjectID{inst.Creator},
		Instructors: []primitive.ObjectID{},
		Assistants:  []primitive.ObjectID{},
		Learners:    []primitive.ObjectID{},
	}
	inst.PendingUsers = models.PendingRoster{
		Admins:      []models.PendingUser{},
		Instructors: []models.PendingUser{},
		Assistants:  []models.PendingUser{},
		Learners:    []models.PendingUser{},
	}
	if inst.Courses == nil {
		inst.Courses = []primitive.ObjectID{}
	}
	inst.CreatedAt = now
	inst.UpdatedAt = now

	if _, err := s.Collection().InsertOne(ctx, inst); err != nil {
		return models.Institution{}, err
	}
	return inst, nil
}

// GetByID loads an institution by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Institution, error) {
	var inst models.Institution
	if err := s.Collection().FindOne(ctx, bson.M{"_id": id}).Decode(&inst); err != nil {
		return models.Institution{}, err
	}
	return inst, nil
}

// GetByCourse finds the institution whose courses array carries the
// given course id.
func (s *Store) GetByCourse(ctx context.Context, courseID primitive.ObjectID) (models.Institution, error) {
	var inst models.Institution
	if err := s.Collection().FindOne(ctx, bson.M{"courses": courseID}).Decode(&inst); err != nil {
		return models.Institution{}, err
	}
	return inst, nil
}

// ListForUser returns one page of institutions where the user holds
// any tier, sorted by folded name. The page carries one extra row so
// the caller can trim it and detect a next page.
func (s *Store) ListForUser(ctx context.Context, userID primitive.ObjectID, cfg paging.KeysetConfig) ([]models.Institution, error) {
	tiers := bson.M{"$or": []bson.M{
		{"participants.admins": userID},
		{"participants.instructors": userID},
		{"participants.assistants": userID},
		{"participants.learners": userID},
	}}
	filter := tiers
	if window := cfg.KeysetWindow("name_ci"); window != nil {
		filter = bson.M{"$and": []bson.M{tiers, window}}
	}

	opts := options.Find().SetProjection(bson.M{"name": 1})
	cfg.ApplyToFind(opts, "name_ci")

	cur, err := s.Collection().Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Institution
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateInfo updates the body fields of an institution.
func (s *Store) UpdateInfo(ctx context.Context, id primitive.ObjectID, name, desc string) error {
	set := bson.M{
		"description": desc,
		"updated_at":  time.Now().UTC(),
	}
	if name != "" {
		set["name"] = name
		set["name_ci"] = text.Fold(name)
	}
	res, err := s.Collection().UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// AddCourseRef appends a course id to the institution's courses array.
func (s *Store) AddCourseRef(ctx context.Context, instID, courseID primitive.ObjectID) error {
	res, err := s.Collection().UpdateByID(ctx, instID, bson.M{
		"$addToSet": bson.M{"courses": courseID},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// RemoveCourseRef pulls a course id from the institution's courses
// array after the course is deleted.
func (s *Store) RemoveCourseRef(ctx context.Context, instID, courseID primitive.ObjectID) error {
	res, err := s.Collection().UpdateByID(ctx, instID, bson.M{
		"$pull": bson.M{"courses": courseID},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
