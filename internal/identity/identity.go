// Package identity wraps the external identity provider. The rest of the
// application only sees this interface: principals are owned by the remote
// service and every credential operation goes through it.
package identity

import (
	"context"
	"errors"
	"time"

	"github.com/ElStudioBarberia/course-service/internal/models"
)

var (
	ErrNoSession          = errors.New("identity: no active session")
	ErrInvalidCredentials = errors.New("identity: invalid credentials")
	ErrInvalidResetCode   = errors.New("identity: invalid or expired reset code")
)

type AuthEventType string

const (
	EventSignedIn  AuthEventType = "SIGNED_IN"
	EventSignedOut AuthEventType = "SIGNED_OUT"
)

// AuthStateEvent is pushed to subscribers on every auth state change.
// Session is nil for SIGNED_OUT events.
type AuthStateEvent struct {
	Type    AuthEventType
	Session *Session
}

// Session is the remote session held by the client after a successful
// sign-in.
type Session struct {
	Principal   *models.Principal
	AccessToken string
	ExpiresAt   time.Time
}

type SignUpParams struct {
	Email    string
	Password string
	Metadata map[string]string
}

type OAuthParams struct {
	Provider    string
	RedirectURL string
	QueryParams map[string]string
}

// Client is the identity service surface used by the application.
type Client interface {
	SignUp(ctx context.Context, params SignUpParams) (*models.Principal, error)
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)
	// SignInWithOAuth returns the provider authorization URL the browser is
	// sent to; session state is only updated once CompleteOAuth runs.
	SignInWithOAuth(ctx context.Context, params OAuthParams) (string, error)
	CompleteOAuth(ctx context.Context, code, state string) (*Session, error)
	SignOut(ctx context.Context) error
	GetSession(ctx context.Context) (*Session, error)
	ResetPasswordForEmail(ctx context.Context, email, redirectURL string) error
	UpdatePassword(ctx context.Context, resetCode, newPassword string) error

	// Subscribe registers for auth state change events. Events are delivered
	// in the order the provider emits them. The returned func unsubscribes.
	Subscribe() (<-chan AuthStateEvent, func())
}
