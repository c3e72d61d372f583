// internal/domain/models/course.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Course lives inside an institution and carries the same roster shape.
// The institution also lists the course id in its Courses array, so the
// link is stored on both sides.
type Course struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Name        string             `bson:"name" json:"name"`
	NameCI      string             `bson:"name_ci" json:"-"`
	Description string             `bson:"description" json:"description"`

	InstitutionID primitive.ObjectID `bson:"institution_id" json:"institution_id"`

	Creator      primitive.ObjectID `bson:"creator" json:"creator"`
	Participants Roster             `bson:"participants" json:"participants"`
	PendingUsers PendingRoster      `bson:"pending_users" json:"pending_users"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
