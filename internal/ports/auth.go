package ports

import (
	"context"
	"time"
)

type Session struct {
	Token     string
	SessionID string
	UserID    string
	Email     string
	ExpiresAt time.Time
}

type SessionEvent string

const (
	SessionSignedIn  SessionEvent = "SIGNED_IN"
	SessionSignedOut SessionEvent = "SIGNED_OUT"
)

type SessionListener func(event SessionEvent, session Session)

// IdentityProvider owns credentials and sessions. The rest of the service
// only consumes the authenticated user id.
type IdentityProvider interface {
	CreateIdentity(ctx context.Context, email, password string) (string, error)
	DeleteIdentity(ctx context.Context, email string) (string, error)
	SignIn(ctx context.Context, email, password string) (Session, error)
	GetSession(ctx context.Context, token string) (Session, error)
	SignOut(ctx context.Context, token string) error
	UpdatePassword(ctx context.Context, userID, newPassword string) error
	OnSessionChange(listener SessionListener) (unsubscribe func())
}
