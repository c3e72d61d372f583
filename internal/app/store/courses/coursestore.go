// internal/app/store/courses/coursestore.go
package coursestore

import (
	"context"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	entitystore "github.com/msajedian/topedu/internal/app/store/entities"
	"github.com/msajedian/topedu/internal/domain/models"
)

// Store wraps the shared entity store with course-specific queries.
// Roster operations are promoted from entitystore.
type Store struct {
	*entitystore.Store
}

func New(db *mongo.Database) *Store {
	return &Store{entitystore.New(db, entitystore.KindCourse)}
}

// Create inserts a new course. The creator becomes the sole admin.
// The caller is responsible for appending the id to the owning
// institution's courses array.
func (s *Store) Create(ctx context.Context, course models.Course) (models.Course, error) {
	now := time.Now().UTC()
	course.ID = primitive.NewObjectID()
	course.NameCI = text.Fold(course.Name)
	course.Participants = models.Roster{
		Admins:      []primitive.ObjectID{course.Creator},
		Instructors: []primitive.ObjectID{},
		Assistants:  []primitive.ObjectID{},
		Learners:    []primitive.ObjectID{},
	}
	course.PendingUsers = models.PendingRoster{
		Admins:      []models.PendingUser{},
		Instructors: []models.PendingUser{},
		Assistants:  []models.PendingUser{},
		Learners:    []models.PendingUser{},
	}
	course.CreatedAt = now
	course.UpdatedAt = now

	if _, err := s.Collection().InsertOne(ctx, course); err != nil {
		return models.Course{}, err
	}
	return course, nil
}

// GetByID loads a course by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Course, error) {
	var course models.Course
	if err := s.Collection().FindOne(ctx, bson.M{"_id": id}).Decode(&course); err != nil {
		return models.Course{}, err
	}
	return course, nil
}

// ListByIDs loads the courses with the given ids, sorted by folded name.
func (s *Store) ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Course, error) {
	if len(ids) == 0 {
		return []models.Course{}, nil
	}
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.Collection().Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Course
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateInfo updates the body fields of a course.
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

// Delete removes a course by ID. Returns the number of documents
// deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.Collection().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
