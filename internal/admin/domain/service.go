package domain

import (
	"context"
	"errors"
	"time"
)

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UpdateProfileRequest struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type AdminResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type TokenResponse struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	Admin     AdminResponse `json:"admin"`
}

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (TokenResponse, error)
	Login(ctx context.Context, req LoginRequest) (TokenResponse, error)
	GetProfile(ctx context.Context) (AdminResponse, error)
	UpdateProfile(ctx context.Context, req UpdateProfileRequest) (AdminResponse, error)

	// ChangePassword verifies the current password before rehashing and
	// re-issues a token so old sessions can be discarded.
	ChangePassword(ctx context.Context, req ChangePasswordRequest) (TokenResponse, error)

	// VerifyToken resolves a bearer token to the admin ID it was issued
	// for. Used by the HTTP auth middleware.
	VerifyToken(token string) (string, error)
}

var (
	ErrInvalidEmail       = errors.New("invalid_email")
	ErrWeakPassword       = errors.New("weak_password")
	ErrEmailTaken         = errors.New("email_taken")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrAdminNotFound      = errors.New("admin_not_found")
	ErrInvalidToken       = errors.New("invalid_token")
	ErrInvalidAdmin       = errors.New("invalid_admin")
)
