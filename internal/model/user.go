package model

import "time"

type AuthProvider string

const (
	AuthProviderGithub AuthProvider = "github"
	AuthProviderGoogle AuthProvider = "google"
	AuthProviderEmail  AuthProvider = "email"
)

type User struct {
	ID                        string
	Name                      string
	Email                     string
	PasswordHash              string
	IsEnabled                 bool
	AuthProvider              AuthProvider
	VerificationCode          *string
	VerificationCodeExpiresAt *time.Time
	ResetCode                 *string
	ResetCodeExpiresAt        *time.Time
	VerifiedAt                *time.Time
	CreatedAt                 time.Time
	UpdatedAt                 time.Time
}

// AuthContext is the slice of a user the session resolver loads per
// request. Nothing else should be read on that path.
type AuthContext struct {
	ID    string
	Email string
	Name  string
}
