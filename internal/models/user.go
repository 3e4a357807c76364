package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a SlugGram profile stored in MongoDB. A user is created
// lazily on the first authenticated /users/me request; the auth0_id carries
// a unique index so concurrent first requests collapse to one document.
type User struct {
	ID             primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Auth0ID        string             `json:"auth0_id" bson:"auth0_id"`
	Username       *string            `json:"username" bson:"username"`
	Email          string             `json:"email" bson:"email"`
	Name           *string            `json:"name" bson:"name"`
	Major          *string            `json:"major" bson:"major"`
	GraduationYear *string            `json:"graduation_year" bson:"graduation_year"`
	Bio            *string            `json:"bio" bson:"bio"`
	AvatarURL      *string            `json:"avatar_url" bson:"avatar_url"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at" bson:"updated_at"`
}

// UpdateProfileRequest defines the request body for updating the caller's
// profile. Nil fields are left untouched.
type UpdateProfileRequest struct {
	Username       *string `json:"username,omitempty" validate:"omitempty,min=1,max=30"`
	Major          *string `json:"major,omitempty" validate:"omitempty,max=100"`
	GraduationYear *string `json:"graduation_year,omitempty" validate:"omitempty,max=10"`
	Bio            *string `json:"bio,omitempty" validate:"omitempty,max=500"`
}
