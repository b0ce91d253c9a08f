package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ElStudioBarberia/course-service/internal/events"
	"github.com/ElStudioBarberia/course-service/internal/identity"
	"github.com/ElStudioBarberia/course-service/internal/models"
	"github.com/ElStudioBarberia/course-service/internal/repositories"
	"github.com/ElStudioBarberia/course-service/internal/utils"
)

// Manager implements the credential operations: login, registration,
// federated login, logout and password reset. It shares the session store
// with the listener; both agree on last-writer-wins via generation tickets.
type Manager struct {
	client    identity.Client
	profiles  repositories.ProfileRepository
	resolver  *Resolver
	store     *Store
	nav       Navigator
	publisher *events.Publisher
	logger    utils.Logger

	appBaseURL string
}

func NewManager(
	client identity.Client,
	profiles repositories.ProfileRepository,
	store *Store,
	nav Navigator,
	publisher *events.Publisher,
	logger utils.Logger,
	appBaseURL string,
) *Manager {
	return &Manager{
		client:     client,
		profiles:   profiles,
		resolver:   NewResolver(profiles),
		store:      store,
		nav:        nav,
		publisher:  publisher,
		logger:     logger,
		appBaseURL: appBaseURL,
	}
}

// Login signs in with password, resolves the profile and publishes the user
// immediately for interactive feedback. The listener will race us with the
// same destination; whichever write lands second is discarded by the store.
// Remote errors are surfaced to the caller unchanged.
func (m *Manager) Login(ctx context.Context, email, password string) (string, error) {
	if _, err := m.client.SignInWithPassword(ctx, email, password); err != nil {
		return "", err
	}

	session, err := m.client.GetSession(ctx)
	if err != nil {
		return "", fmt.Errorf("no active session after sign-in: %w", err)
	}

	profile, err := m.resolver.FetchProfile(ctx, session.Principal.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			// Registration half-completed at some point: principal without
			// profile. Degraded path, no auto-repair.
			m.logger.Warn("login: profile missing for principal", "principal_id", session.Principal.ID)
			m.nav.Navigate(PathCompleteProfile)
			return PathCompleteProfile, nil
		}
		m.logger.Error("login: profile lookup failed", "error", err)
		m.nav.Navigate(PathAuthError)
		return PathAuthError, nil
	}

	user := BuildAppUser(session, profile)
	gen := m.store.Begin()
	m.store.Publish(gen, user)

	dest := RedirectFor(user)
	m.nav.Navigate(dest)
	return dest, nil
}

// Register creates the principal, then the profile row: two sequential
// remote calls with no transaction. A profile-insert failure leaves a
// principal without a profile; the error is surfaced and no compensating
// deletion is attempted. A new registration is never auto-enabled.
func (m *Manager) Register(ctx context.Context, name, email, password string) (string, error) {
	principal, err := m.client.SignUp(ctx, identity.SignUpParams{
		Email:    email,
		Password: password,
		Metadata: map[string]string{"full_name": name},
	})
	if err != nil {
		return "", err
	}

	foto := fmt.Sprintf("https://i.pravatar.cc/150?u=%s", principal.ID)
	profile := &models.Profile{
		ID:            principal.ID,
		Nombre:        name,
		Email:         email,
		Rol:           string(models.RoleEstudiante),
		Habilitado:    false,
		FotoPerfil:    &foto,
		FechaRegistro: time.Now().UTC(),
	}
	if err := m.profiles.Create(ctx, profile); err != nil {
		return "", fmt.Errorf("error creating profile: %w", err)
	}

	m.publisher.UserRegistered(ctx, profile)
	m.nav.Navigate(PathPendingApproval)
	return PathPendingApproval, nil
}

// LoginWithGoogle returns the provider authorization URL. Session state is
// not touched here; the listener picks up the auth event once the callback
// completes.
func (m *Manager) LoginWithGoogle(ctx context.Context) (string, error) {
	return m.client.SignInWithOAuth(ctx, identity.OAuthParams{
		Provider:    "google",
		RedirectURL: m.appBaseURL + "/auth/callback",
		QueryParams: map[string]string{
			"access_type": "offline",
			"prompt":      "consent",
		},
	})
}

// CompleteOAuthCallback finishes the federated flow. The resulting signed-in
// event reaches the store through the listener, not through this call.
func (m *Manager) CompleteOAuthCallback(ctx context.Context, code, state string) error {
	if _, err := m.client.CompleteOAuth(ctx, code, state); err != nil {
		return err
	}
	return nil
}

// Logout signs out remotely, clears the session synchronously and navigates
// to the landing page.
func (m *Manager) Logout(ctx context.Context) string {
	if err := m.client.SignOut(ctx); err != nil {
		m.logger.Warn("logout: remote sign-out failed", "error", err)
	}
	gen := m.store.Begin()
	m.store.Publish(gen, nil)
	m.nav.Navigate(PathLanding)
	return PathLanding
}

func (m *Manager) RequestPasswordReset(ctx context.Context, email string) error {
	return m.client.ResetPasswordForEmail(ctx, email, m.appBaseURL+"/reset-password")
}

func (m *Manager) CompletePasswordReset(ctx context.Context, code, newPassword string) error {
	return m.client.UpdatePassword(ctx, code, newPassword)
}

// UpdateUserProfile shallow-merges the patch into the local session only.
// Callers that need persistence must write to the profile store themselves
// and then call this to keep local state in sync.
func (m *Manager) UpdateUserProfile(patch ProfilePatch) {
	m.store.Patch(patch)
}
