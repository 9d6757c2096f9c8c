package domain

import "time"

// User is the profile record mirrored from the identity provider. The ID is
// the provider-assigned subject id and is immutable; the auth flows write the
// record once at sign-up and only ever read it afterwards.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Credential is the identity provider's answer to a successful credential
// operation. The ID token is short-lived and never persisted; the refresh
// token is only used to force-refresh the ID token immediately before
// session establishment.
type Credential struct {
	UID          string
	IDToken      string
	RefreshToken string
	ExpiresIn    time.Duration
}

// Result is the contract returned by the sign-up and sign-in entry points.
// Callers branch on Success only; Message is for display.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
