package types

import (
	"time"

	"github.com/google/uuid"
)

// Role separates hiring staff from candidates
type Role string

const (
	RoleEmployer Role = "employer"
	RoleSeeker   Role = "seeker"
)

func (r Role) Valid() bool { return r == RoleEmployer || r == RoleSeeker }

// CreateUserRequest is the body of POST /auth/register.
type CreateUserRequest struct {
	Name     string `json:"name" validate:"required,min=1"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Phone    string `json:"phone,omitempty"`
	Role     Role   `json:"role" validate:"required,oneof=employer seeker"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// User is an account as returned by the API. It never carries the password hash.
type User struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	Role        Role      `json:"role"`
	PasswordSet bool      `json:"password_set"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// LoginResponse is returned by register and login.
type LoginResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// UpdatePasswordRequest is the body of PUT /auth/password.
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

func (r *CreateUserRequest) Validate() error     { return Validate(r) }
func (r *LoginRequest) Validate() error          { return Validate(r) }
func (r *UpdatePasswordRequest) Validate() error { return Validate(r) }
