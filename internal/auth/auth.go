// Package auth decides whether an administrator may enter the prompt editor.
package auth

import (
	"context"
	"crypto/subtle"
)

// Result is the outcome of an authentication attempt.
type Result int

const (
	Rejected Result = iota
	Authenticated
)

func (r Result) String() string {
	if r == Authenticated {
		return "authenticated"
	}
	return "rejected"
}

// InvalidCredentialsMessage is shown inline after a rejected login.
const InvalidCredentialsMessage = "Invalid credentials"

// Credentials are what the login form submits.
type Credentials struct {
	Username string `json:"username"`
	Passcode string `json:"passcode"`
}

// Authenticator checks administrator credentials. Implementations may call
// out to an identity service, so the call is context-aware.
type Authenticator interface {
	Authenticate(ctx context.Context, creds Credentials) (Result, error)
}

// Placeholder username and passcode accepted by the built-in gate.
const (
	PlaceholderUsername = "Hacker"
	PlaceholderPasscode = "444"
)

// Placeholder compares credentials against a fixed username and passcode.
// It is a UI gate only and offers no protection for the stored prompts.
type Placeholder struct {
	Username string
	Passcode string
}

// NewPlaceholder returns the built-in Hacker/444 gate.
func NewPlaceholder() *Placeholder {
	return &Placeholder{Username: PlaceholderUsername, Passcode: PlaceholderPasscode}
}

func (p *Placeholder) Authenticate(_ context.Context, creds Credentials) (Result, error) {
	userOK := subtle.ConstantTimeCompare([]byte(creds.Username), []byte(p.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(creds.Passcode), []byte(p.Passcode)) == 1
	if userOK && passOK {
		return Authenticated, nil
	}
	return Rejected, nil
}
