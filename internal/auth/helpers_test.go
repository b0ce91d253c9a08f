package auth

import (
	"context"
	"sync"

	"github.com/ElStudioBarberia/course-service/internal/identity"
	"github.com/ElStudioBarberia/course-service/internal/models"
	"github.com/ElStudioBarberia/course-service/internal/repositories"
	"github.com/ElStudioBarberia/course-service/internal/utils"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any) {}
func (nopLogger) Warn(string, ...any) {}
func (nopLogger) Error(string, ...any) {}

func (l nopLogger) With(...any) utils.Logger { return l }

// fakeProfileRepo serves profiles from a map and can be told to fail or to
// block until released, which lets tests stage slow resolutions.
type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]*models.Profile
	err      error
	gate     chan struct{} // when set, GetByID blocks until closed

	createErr error
	created   []*models.Profile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[string]*models.Profile)}
}

func (f *fakeProfileRepo) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	f.mu.Lock()
	gate := f.gate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.profiles[id]
	if !ok {
		return nil, repositories.ErrProfileNotFound
	}
	return p, nil
}

func (f *fakeProfileRepo) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.profiles {
		if p.Email == email {
			return p, nil
		}
	}
	return nil, repositories.ErrProfileNotFound
}

func (f *fakeProfileRepo) Create(ctx context.Context, profile *models.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.profiles[profile.ID] = profile
	f.created = append(f.created, profile)
	return nil
}

func (f *fakeProfileRepo) Update(ctx context.Context, profile *models.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[profile.ID] = profile
	return nil
}

func (f *fakeProfileRepo) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	return nil
}

func (f *fakeProfileRepo) List(ctx context.Context, filters repositories.ProfileFilters) ([]*models.Profile, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Profile, 0, len(f.profiles))
	for _, p := range f.profiles {
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

// fakeIdentityClient emits scripted events and records calls.
type fakeIdentityClient struct {
	mu      sync.Mutex
	events  chan identity.AuthStateEvent
	session *identity.Session

	signUpPrincipal *models.Principal
	signUpErr       error
	signInErr       error
	signOutCalled   bool
	removedSignUps  []string
}

func newFakeIdentityClient() *fakeIdentityClient {
	return &fakeIdentityClient{events: make(chan identity.AuthStateEvent, 16)}
}

func (f *fakeIdentityClient) emit(evt identity.AuthStateEvent) {
	f.events <- evt
}

func (f *fakeIdentityClient) SignUp(ctx context.Context, params identity.SignUpParams) (*models.Principal, error) {
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	return f.signUpPrincipal, nil
}

func (f *fakeIdentityClient) SignInWithPassword(ctx context.Context, email, password string) (*identity.Session, error) {
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session, nil
}

func (f *fakeIdentityClient) SignInWithOAuth(ctx context.Context, params identity.OAuthParams) (string, error) {
	return "https://provider.example/authorize?redirect=" + params.RedirectURL, nil
}

func (f *fakeIdentityClient) CompleteOAuth(ctx context.Context, code, state string) (*identity.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session, nil
}

func (f *fakeIdentityClient) SignOut(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signOutCalled = true
	return nil
}

func (f *fakeIdentityClient) GetSession(ctx context.Context) (*identity.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.session == nil {
		return nil, identity.ErrNoSession
	}
	return f.session, nil
}

func (f *fakeIdentityClient) ResetPasswordForEmail(ctx context.Context, email, redirectURL string) error {
	return nil
}

func (f *fakeIdentityClient) UpdatePassword(ctx context.Context, resetCode, newPassword string) error {
	return nil
}

func (f *fakeIdentityClient) Subscribe() (<-chan identity.AuthStateEvent, func()) {
	return f.events, func() {}
}

func sessionFor(principalID, email string, metadata map[string]string) *identity.Session {
	return &identity.Session{
		Principal: &models.Principal{
			ID:       principalID,
			Email:    email,
			Metadata: metadata,
		},
		AccessToken: "token-" + principalID,
	}
}
