package identity

import (
	"context"
	"errors"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid session token")
	ErrUnknownOwner       = errors.New("unknown owner")
)

// Session is an authenticated identity plus its bearer token.
type Session struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Token  string `json:"token"`
}

// Provider is the identity capability consumed by the HTTP surface and the
// notification pipeline.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (*Session, error)
	CurrentUser(ctx context.Context, token string) (*Session, error)
	// ResolveDisplayIdentity maps an owner id to something a human
	// recognizes — here, the account email.
	ResolveDisplayIdentity(ctx context.Context, ownerID string) (string, error)
}
