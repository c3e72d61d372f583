// internal/domain/models/institution.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Institution is the top-level tenant. It embeds its participant and
// pending rosters and carries the ids of its courses.
type Institution struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Name        string             `bson:"name" json:"name"`
	NameCI      string             `bson:"name_ci" json:"-"`
	Description string             `bson:"description" json:"description"`

	Creator      primitive.ObjectID   `bson:"creator" json:"creator"`
	Participants Roster               `bson:"participants" json:"participants"`
	PendingUsers PendingRoster        `bson:"pending_users" json:"pending_users"`
	Courses      []primitive.ObjectID `bson:"courses" json:"courses"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
