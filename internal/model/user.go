package model

import "time"

// UserType is the role a user picks once during onboarding.
type UserType string

const (
	UserTypeCustomer UserType = "customer"
	UserTypeVendor   UserType = "vendor"
	UserTypeAdmin    UserType = "admin"
)

// Valid reports whether t is one of the known user types.
func (t UserType) Valid() bool {
	switch t {
	case UserTypeCustomer, UserTypeVendor, UserTypeAdmin:
		return true
	}
	return false
}

// User represents a stored user record.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	UserType     UserType // empty until onboarding completes
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserUpdate carries the fields to change on an existing user. Nil fields are left alone.
type UserUpdate struct {
	Name     *string
	UserType *UserType
}

// ToResponse returns the redacted view of u.
func (u *User) ToResponse() UserResponse {
	resp := UserResponse{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
	}
	if u.UserType != "" {
		t := u.UserType
		resp.UserType = &t
	}
	return resp
}

// SignUpRequest represents a registration request.
type SignUpRequest struct {
	Name     string `json:"name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,maxbytes=72"`
}

// SignInRequest represents a login request.
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SetUserTypeRequest represents the onboarding user type selection.
type SetUserTypeRequest struct {
	UserID   string   `json:"userId" validate:"required"`
	UserType UserType `json:"userType" validate:"oneof=customer vendor admin"`
}

// ResetPasswordRequest represents a password reset request.
type ResetPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// UserResponse represents user data safe for API responses (no password hash).
type UserResponse struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	UserType *UserType `json:"userType"`
}

// Onboarded reports whether the user has picked a user type.
func (u UserResponse) Onboarded() bool {
	return u.UserType != nil && *u.UserType != ""
}

// AuthResponse is returned by sign-up and sign-in.
type AuthResponse struct {
	Success bool         `json:"success"`
	User    UserResponse `json:"user"`
	Token   string       `json:"token"`
}

// UserEnvelope wraps a single user in the success envelope.
type UserEnvelope struct {
	Success bool         `json:"success"`
	User    UserResponse `json:"user"`
}

// MessageResponse is a success envelope with a human readable message.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ErrorResponse is the failure envelope shared by every auth endpoint.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
