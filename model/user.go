package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is the closed set of user roles.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether the role is one of the defined variants.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User represents a registered user. The password hash is never serialized.
type User struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Username     string             `json:"username" bson:"username"`
	Email        string             `json:"email" bson:"email"`
	PasswordHash string             `json:"-" bson:"password"`
	Role         Role               `json:"role" bson:"role"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
}
