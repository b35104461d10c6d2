// Package session holds the authentication state of one client process.
//
// A Session is constructed explicitly and injected into the components that
// need a token or the current user; there is no package-level state.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"taskdash/internal/api"
	"taskdash/internal/store"
)

type State int

const (
	Unresolved State = iota
	Anonymous
	Authenticated
)

func (s State) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Authenticated:
		return "authenticated"
	default:
		return "unresolved"
	}
}

var (
	// ErrNoSession is returned by accessors used on a nil or unresolved session.
	ErrNoSession = errors.New("session not initialized")
	// ErrNotAuthenticated is returned when no user is logged in.
	ErrNotAuthenticated = errors.New("not logged in")
)

type User struct {
	ID    int64  `json:"id,omitempty"`
	Email string `json:"email"`
}

// CredentialStore persists the token+profile pair between runs.
type CredentialStore interface {
	Load(ctx context.Context) (*store.Credential, error)
	Save(ctx context.Context, c store.Credential) error
	Clear(ctx context.Context) error
}

// Authenticator is the login endpoint.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*api.LoginResponse, error)
}

// LoginResult is the outcome shown on the login form.
type LoginResult struct {
	OK      bool
	Message string
}

const loginFailedMessage = "Login failed. Check your email and password."

type Session struct {
	auth  Authenticator
	creds CredentialStore
	log   *zap.Logger
	now   func() time.Time

	mu    sync.RWMutex
	state State
	user  *User
	token string
}

type Option func(*Session)

func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// New returns an Unresolved session.
func New(auth Authenticator, creds CredentialStore, opts ...Option) *Session {
	s := &Session{
		auth:  auth,
		creds: creds,
		log:   zap.NewNop(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) State() State {
	if s == nil {
		return Unresolved
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Loading is true until the persisted credential check has completed.
func (s *Session) Loading() bool { return s.State() == Unresolved }

func (s *Session) Authenticated() bool { return s.State() == Authenticated }

// CheckPersistedSession resolves the session from the credential store. Only
// the first call has an effect. A store failure resolves to Anonymous and is
// returned for logging.
func (s *Session) CheckPersistedSession(ctx context.Context) error {
	if s == nil {
		return ErrNoSession
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolveLocked(ctx)
}

func (s *Session) resolveLocked(ctx context.Context) error {
	if s.state != Unresolved {
		return nil
	}
	s.state = Anonymous
	if s.creds == nil {
		return nil
	}
	c, err := s.creds.Load(ctx)
	if err != nil {
		s.log.Warn("load persisted session failed", zap.Error(err))
		return err
	}
	if !c.Complete() {
		return nil
	}
	if claims, err := api.ParseClaimsUnverified(c.Token); err == nil && claims.Expired(s.now()) {
		s.log.Info("persisted session expired", zap.String("email", c.User.Email))
		if err := s.creds.Clear(ctx); err != nil {
			s.log.Warn("clear expired session failed", zap.Error(err))
		}
		return nil
	}
	s.state = Authenticated
	s.token = c.Token
	s.user = &User{ID: c.User.ID, Email: c.User.Email}
	return nil
}

// Login authenticates against the backend. It never retries and never
// returns an error: any failure is reported as OK=false and leaves the
// current state untouched.
func (s *Session) Login(ctx context.Context, email, password string) LoginResult {
	if s == nil || s.auth == nil {
		return LoginResult{Message: loginFailedMessage}
	}
	email = strings.TrimSpace(email)

	s.mu.Lock()
	_ = s.resolveLocked(ctx)
	s.mu.Unlock()

	resp, err := s.auth.Login(ctx, email, password)
	if err != nil {
		s.log.Info("login failed", zap.String("email", email), zap.Int("status", api.StatusCode(err)))
		return LoginResult{Message: api.Message(err, loginFailedMessage)}
	}
	if resp == nil || !resp.Success || strings.TrimSpace(resp.Token) == "" {
		s.log.Info("login rejected", zap.String("email", email))
		msg := loginFailedMessage
		if resp != nil && strings.TrimSpace(resp.Message) != "" {
			msg = resp.Message
		}
		return LoginResult{Message: msg}
	}

	user := User{Email: email}
	if claims, err := api.ParseClaimsUnverified(resp.Token); err == nil {
		user.ID = claims.ID()
	}

	if s.creds != nil {
		cred := store.Credential{
			Token:   resp.Token,
			User:    store.CredentialUser{ID: user.ID, Email: user.Email},
			SavedAt: s.now().UTC(),
		}
		if err := s.creds.Save(ctx, cred); err != nil {
			// Still logged in for this process.
			s.log.Warn("persist session failed", zap.Error(err))
		}
	}

	s.mu.Lock()
	s.state = Authenticated
	s.token = resp.Token
	s.user = &user
	s.mu.Unlock()

	s.log.Info("login ok", zap.String("email", email), zap.Int64("user_id", user.ID))
	return LoginResult{OK: true}
}

// Logout clears the persisted credential and resets to Anonymous. It always
// succeeds locally; a store failure is only logged. An unresolved session is
// resolved first so it never skips the initial check.
func (s *Session) Logout(ctx context.Context) {
	if s == nil {
		return
	}

	s.mu.Lock()
	_ = s.resolveLocked(ctx)
	s.mu.Unlock()

	if s.creds != nil {
		if err := s.creds.Clear(ctx); err != nil {
			s.log.Warn("clear persisted session failed", zap.Error(err))
		}
	}
	s.mu.Lock()
	s.state = Anonymous
	s.token = ""
	s.user = nil
	s.mu.Unlock()
}

// Token implements api.TokenSource. It is empty unless authenticated.
func (s *Session) Token() string {
	if s == nil {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != Authenticated {
		return ""
	}
	return s.token
}

func (s *Session) CurrentUser() (User, error) {
	if s == nil {
		return User{}, ErrNoSession
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch {
	case s.state == Unresolved:
		return User{}, ErrNoSession
	case s.state != Authenticated || s.user == nil:
		return User{}, ErrNotAuthenticated
	}
	return *s.user, nil
}
