package identity

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/ElStudioBarberia/course-service/internal/config"
	"github.com/ElStudioBarberia/course-service/internal/models"
)

const resetCodeTTL = 30 * time.Minute

type resetCode struct {
	email     string
	expiresAt time.Time
}

// Casdoor implements Client against a Casdoor deployment, with Google
// federated login handled through OIDC discovery.
type Casdoor struct {
	sdk    *casdoorsdk.Client
	cfg    config.CasdoorConfig
	google config.GoogleOAuthConfig

	// Lazily initialized on first federated login.
	oidcProvider *oidc.Provider
	oauthConfig  *oauth2.Config
	verifier     *oidc.IDTokenVerifier

	mu         sync.Mutex
	current    *Session
	subs       map[int]chan AuthStateEvent
	nextSubID  int
	resetCodes map[string]resetCode
}

func NewCasdoor(cfg config.CasdoorConfig, google config.GoogleOAuthConfig) *Casdoor {
	sdk := casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Cert,
		cfg.Application,
		cfg.Organization,
	)

	return &Casdoor{
		sdk:        sdk,
		cfg:        cfg,
		google:     google,
		subs:       make(map[int]chan AuthStateEvent),
		resetCodes: make(map[string]resetCode),
	}
}

func (c *Casdoor) Subscribe() (<-chan AuthStateEvent, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSubID
	c.nextSubID++
	ch := make(chan AuthStateEvent, 16)
	c.subs[id] = ch

	unsubscribe := func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if sub, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(sub)
		}
	}
	return ch, unsubscribe
}

// publish delivers an event to every subscriber. Must be called with c.mu
// held so subscribers observe events in emission order.
func (c *Casdoor) publish(evt AuthStateEvent) {
	for _, ch := range c.subs {
		select {
		case ch <- evt:
		default:
			// Subscriber stopped draining; dropping beats blocking every
			// future auth event behind it.
		}
	}
}

func (c *Casdoor) SignUp(ctx context.Context, params SignUpParams) (*models.Principal, error) {
	id := uuid.New().String()
	user := &casdoorsdk.User{
		Owner:       c.cfg.Organization,
		Name:        params.Email,
		Id:          id,
		Email:       params.Email,
		Password:    params.Password,
		DisplayName: params.Metadata["full_name"],
		CreatedTime: time.Now().UTC().Format(time.RFC3339),
		Properties:  params.Metadata,
	}

	ok, err := c.sdk.AddUser(user)
	if err != nil {
		return nil, fmt.Errorf("identity: sign up: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("identity: sign up rejected for %s", params.Email)
	}

	return &models.Principal{
		ID:        id,
		Email:     params.Email,
		Metadata:  params.Metadata,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}, nil
}

func (c *Casdoor) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	conf := &oauth2.Config{
		ClientID:     c.cfg.ClientID,
		ClientSecret: c.cfg.ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:  c.cfg.Endpoint + "/login/oauth/authorize",
			TokenURL: c.cfg.Endpoint + "/api/login/oauth/access_token",
		},
	}

	token, err := conf.PasswordCredentialsToken(ctx, email, password)
	if err != nil {
		// Remote error message passes through unmodified.
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}

	session, err := c.sessionFromToken(token.AccessToken, token.Expiry)
	if err != nil {
		return nil, err
	}

	c.setSession(session)
	return session, nil
}

func (c *Casdoor) SignInWithOAuth(ctx context.Context, params OAuthParams) (string, error) {
	if params.Provider != "google" {
		return "", fmt.Errorf("identity: unsupported oauth provider %q", params.Provider)
	}

	conf, _, err := c.googleOAuth(ctx, params.RedirectURL)
	if err != nil {
		return "", err
	}

	state := uuid.New().String()
	opts := []oauth2.AuthCodeOption{oauth2.AccessTypeOffline}
	for k, v := range params.QueryParams {
		opts = append(opts, oauth2.SetAuthURLParam(k, v))
	}
	return conf.AuthCodeURL(state, opts...), nil
}

func (c *Casdoor) CompleteOAuth(ctx context.Context, code, state string) (*Session, error) {
	conf, verifier, err := c.googleOAuth(ctx, c.google.RedirectURL)
	if err != nil {
		return nil, err
	}

	token, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("identity: oauth code exchange: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return nil, fmt.Errorf("identity: missing id_token in oauth response")
	}

	idToken, err := verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("identity: verify id token: %w", err)
	}

	var claims struct {
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("identity: parse id token claims: %w", err)
	}

	principal, err := c.ensurePrincipal(claims.Email, claims.Name, claims.Picture)
	if err != nil {
		return nil, err
	}

	session := &Session{
		Principal:   principal,
		AccessToken: rawIDToken,
		ExpiresAt:   idToken.Expiry,
	}
	c.setSession(session)
	return session, nil
}

// ensurePrincipal resolves a federated login to an existing principal by
// email, creating one when the provider account is new.
func (c *Casdoor) ensurePrincipal(email, name, avatar string) (*models.Principal, error) {
	existing, err := c.sdk.GetUserByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("identity: lookup principal by email: %w", err)
	}
	if existing != nil {
		return principalFromUser(existing), nil
	}

	id := uuid.New().String()
	user := &casdoorsdk.User{
		Owner:       c.cfg.Organization,
		Name:        email,
		Id:          id,
		Email:       email,
		DisplayName: name,
		Avatar:      avatar,
		CreatedTime: time.Now().UTC().Format(time.RFC3339),
	}
	if _, err := c.sdk.AddUser(user); err != nil {
		return nil, fmt.Errorf("identity: create federated principal: %w", err)
	}

	return &models.Principal{
		ID:        id,
		Email:     email,
		Metadata:  map[string]string{"full_name": name, "avatar_url": avatar},
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}, nil
}

func (c *Casdoor) SignOut(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = nil
	c.publish(AuthStateEvent{Type: EventSignedOut})
	return nil
}

func (c *Casdoor) GetSession(ctx context.Context) (*Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return nil, ErrNoSession
	}
	if !c.current.ExpiresAt.IsZero() && time.Now().After(c.current.ExpiresAt) {
		c.current = nil
		c.publish(AuthStateEvent{Type: EventSignedOut})
		return nil, ErrNoSession
	}
	return c.current, nil
}

func (c *Casdoor) ResetPasswordForEmail(ctx context.Context, email, redirectURL string) error {
	user, err := c.sdk.GetUserByEmail(email)
	if err != nil {
		return fmt.Errorf("identity: lookup user for reset: %w", err)
	}
	if user == nil {
		// Same outward behavior whether or not the account exists.
		return nil
	}

	code := uuid.New().String()
	c.mu.Lock()
	c.resetCodes[code] = resetCode{email: email, expiresAt: time.Now().Add(resetCodeTTL)}
	c.mu.Unlock()

	link := fmt.Sprintf("%s?code=%s", redirectURL, code)
	content := fmt.Sprintf("Para restablecer tu contraseña, visita: %s", link)
	if err := c.sdk.SendEmail("Restablecer contraseña", content, "El Studio Barberia", email); err != nil {
		return fmt.Errorf("identity: send reset email: %w", err)
	}
	return nil
}

func (c *Casdoor) UpdatePassword(ctx context.Context, code, newPassword string) error {
	c.mu.Lock()
	rc, ok := c.resetCodes[code]
	if ok {
		delete(c.resetCodes, code)
	}
	c.mu.Unlock()

	if !ok || time.Now().After(rc.expiresAt) {
		return ErrInvalidResetCode
	}

	user, err := c.sdk.GetUserByEmail(rc.email)
	if err != nil {
		return fmt.Errorf("identity: lookup user for password update: %w", err)
	}
	if user == nil {
		return ErrInvalidResetCode
	}

	user.Password = newPassword
	if _, err := c.sdk.UpdateUser(user); err != nil {
		return fmt.Errorf("identity: update password: %w", err)
	}
	return nil
}

func (c *Casdoor) setSession(session *Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = session
	c.publish(AuthStateEvent{Type: EventSignedIn, Session: session})
}

func (c *Casdoor) sessionFromToken(accessToken string, expiry time.Time) (*Session, error) {
	claims, err := c.sdk.ParseJwtToken(accessToken)
	if err != nil {
		return nil, fmt.Errorf("identity: parse access token: %w", err)
	}

	principal := principalFromUser(&claims.User)
	if principal.ID == "" {
		return nil, fmt.Errorf("identity: token carries no principal id")
	}

	return &Session{
		Principal:   principal,
		AccessToken: accessToken,
		ExpiresAt:   expiry,
	}, nil
}

func (c *Casdoor) googleOAuth(ctx context.Context, redirectURL string) (*oauth2.Config, *oidc.IDTokenVerifier, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.oidcProvider == nil {
		provider, err := oidc.NewProvider(ctx, c.google.IssuerURL)
		if err != nil {
			return nil, nil, fmt.Errorf("identity: discover oidc provider: %w", err)
		}
		c.oidcProvider = provider
		c.verifier = provider.Verifier(&oidc.Config{ClientID: c.google.ClientID})
		c.oauthConfig = &oauth2.Config{
			ClientID:     c.google.ClientID,
			ClientSecret: c.google.ClientSecret,
			Endpoint:     provider.Endpoint(),
			RedirectURL:  c.google.RedirectURL,
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		}
	}

	conf := *c.oauthConfig
	if redirectURL != "" {
		conf.RedirectURL = redirectURL
	}
	return &conf, c.verifier, nil
}

func principalFromUser(user *casdoorsdk.User) *models.Principal {
	if user == nil {
		return &models.Principal{}
	}

	metadata := map[string]string{}
	for k, v := range user.Properties {
		metadata[k] = v
	}
	if user.DisplayName != "" {
		metadata["full_name"] = user.DisplayName
	}
	if user.Avatar != "" {
		metadata["avatar_url"] = user.Avatar
	}

	var createdAt, updatedAt time.Time
	if user.CreatedTime != "" {
		createdAt, _ = time.Parse(time.RFC3339, user.CreatedTime)
	}
	if user.UpdatedTime != "" {
		updatedAt, _ = time.Parse(time.RFC3339, user.UpdatedTime)
	}

	return &models.Principal{
		ID:        user.Id,
		Email:     user.Email,
		Metadata:  metadata,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}
