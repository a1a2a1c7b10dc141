// server/internal/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles known to the system.
const (
	RoleStaff        = "staff"
	RoleAdmin        = "admin"
	RoleCommissioner = "commissioner"
)

// User matches the document in MongoDB. Password holds the bcrypt hash
// and must never be serialized into an API response.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`
	Password     string             `bson:"password" json:"-"`
	FullName     string             `bson:"fullName" json:"fullName"`
	StaffID      string             `bson:"staffID,omitempty" json:"staffID,omitempty"`
	Role         string             `bson:"role" json:"role"`
	Active       bool               `bson:"active" json:"active"`
	WardIDs      []string           `bson:"wardIDs,omitempty" json:"wardIDs,omitempty"`
	ResetToken   string             `bson:"resetToken,omitempty" json:"-"`
	ResetExpires *time.Time         `bson:"resetExpires,omitempty" json:"-"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// PublicUser is the view returned by auth endpoints.
type PublicUser struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	StaffID  string `json:"staffID,omitempty"`
	Role     string `json:"role"`
	Active   bool   `json:"active"`
}

// Public strips everything a client is not allowed to see.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:       u.ID.Hex(),
		Email:    u.Email,
		FullName: u.FullName,
		StaffID:  u.StaffID,
		Role:     u.Role,
		Active:   u.Active,
	}
}

// ValidRole reports whether role is one of the three known roles.
func ValidRole(role string) bool {
	return role == RoleStaff || role == RoleAdmin || role == RoleCommissioner
}
