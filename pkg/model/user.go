package model

import (
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID            string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Email         string    `json:"email" bson:"email" validate:"required,email"`
	Name          string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	PasswordHash  string    `json:"-" bson:"password_hash"`
	Role          string    `json:"role" bson:"role" validate:"required,oneof=user admin"`
	Phone         string    `json:"phone,omitempty" bson:"phone,omitempty" validate:"omitempty,e164"`
	Company       string    `json:"company,omitempty" bson:"company,omitempty" validate:"omitempty,max=100"`
	JobTitle      string    `json:"job_title,omitempty" bson:"job_title,omitempty" validate:"omitempty,max=100"`
	BookingsCount int       `json:"bookings_count" bson:"bookings_count" validate:"gte=0"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

type Registration struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ProfileUpdate struct {
	Name     string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Phone    string `json:"phone,omitempty" validate:"omitempty,e164"`
	Company  string `json:"company,omitempty" validate:"omitempty,max=100"`
	JobTitle string `json:"job_title,omitempty" validate:"omitempty,max=100"`
}

// AuthResponse is the login/register payload: a bearer token plus a snapshot
// of the authenticated user.
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
