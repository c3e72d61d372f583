// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureUsers(ctx, db); err != nil {
		problems = append(problems, "users: "+err.Error())
	}
	if err := ensureInstitutions(ctx, db); err != nil {
		problems = append(problems, "institutions: "+err.Error())
	}
	if err := ensureCourses(ctx, db); err != nil {
		problems = append(problems, "courses: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

// ensureIndexSet creates each desired index, reusing any existing index
// with the same key pattern. Mongo returns IndexOptionsConflict when an
// index with the same keys exists under a different name; that is
// treated as already ensured.
func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	var errs []string

	for _, m := range models {
		var name string
		if m.Options != nil && m.Options.Name != nil {
			name = *m.Options.Name
		}
		sig := keySig(m.Keys.(bson.D))

		start := time.Now()
		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if strings.Contains(err.Error(), "IndexOptionsConflict") {
				zap.L().Info("reusing existing index",
					zap.String("collection", coll.Name()),
					zap.String("keys", sig))
				continue
			}
			zap.L().Warn("index ensure failed",
				zap.String("collection", coll.Name()),
				zap.String("name", name),
				zap.String("keys", sig),
				zap.Error(err))
			errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), name, err))
			continue
		}
		zap.L().Info("index ensured",
			zap.String("collection", coll.Name()),
			zap.String("name", name),
			zap.String("keys", sig),
			zap.String("took", time.Since(start).String()))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("users")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Email must be unique across all users.
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_users_email"),
		},
		// Name listing/search
		{
			Keys:    bson.D{{Key: "full_name_ci", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_users_fullnameci__id"),
		},
	})
}

func ensureInstitutions(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("institutions")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Name prefix search + stable sort
		{
			Keys:    bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_institutions_nameci__id"),
		},
		// Membership lookups: institutions where a user holds a tier
		{
			Keys:    bson.D{{Key: "participants.admins", Value: 1}},
			Options: options.Index().SetName("idx_institutions_admins"),
		},
		{
			Keys:    bson.D{{Key: "participants.instructors", Value: 1}},
			Options: options.Index().SetName("idx_institutions_instructors"),
		},
		{
			Keys:    bson.D{{Key: "participants.assistants", Value: 1}},
			Options: options.Index().SetName("idx_institutions_assistants"),
		},
		{
			Keys:    bson.D{{Key: "participants.learners", Value: 1}},
			Options: options.Index().SetName("idx_institutions_learners"),
		},
		// Owning-institution lookup for a course id
		{
			Keys:    bson.D{{Key: "courses", Value: 1}},
			Options: options.Index().SetName("idx_institutions_courses"),
		},
	})
}

func ensureCourses(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("courses")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Per-institution listings
		{
			Keys:    bson.D{{Key: "institution_id", Value: 1}, {Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_courses_inst_nameci__id"),
		},
		{
			Keys:    bson.D{{Key: "participants.admins", Value: 1}},
			Options: options.Index().SetName("idx_courses_admins"),
		},
		{
			Keys:    bson.D{{Key: "participants.instructors", Value: 1}},
			Options: options.Index().SetName("idx_courses_instructors"),
		},
		{
			Keys:    bson.D{{Key: "participants.assistants", Value: 1}},
			Options: options.Index().SetName("idx_courses_assistants"),
		},
		{
			Keys:    bson.D{{Key: "participants.learners", Value: 1}},
			Options: options.Index().SetName("idx_courses_learners"),
		},
	})
}
