// server/internal/models/ward.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Ward is an administrative subdivision. Zone (the corporate name) is a
// plain string on the ward; zones are never stored as their own documents,
// they are derived by grouping wards at read time.
type Ward struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Zone      string             `bson:"zone" json:"zone"`
	Mohallas  []string           `bson:"mohallas" json:"mohallas"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Zone is the computed view over wards sharing a corporate name.
type Zone struct {
	Name  string `json:"name"`
	Wards []Ward `json:"wards"`
}
