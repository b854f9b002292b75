package application

import (
	"context"
	"fmt"
	"sync"

	"solvectl/internal/domain"
	"solvectl/internal/ports"
)

type SessionPhase string

const (
	SessionIdle    SessionPhase = "idle"
	SessionLoading SessionPhase = "loading"
	SessionError   SessionPhase = "error"
)

// SessionSnapshot is an immutable view of the session handed to observers.
type SessionSnapshot struct {
	Token     string
	User      *domain.User
	Phase     SessionPhase
	LastError string
}

func (s SessionSnapshot) Authenticated() bool {
	return s.Token != "" && s.User != nil
}

// Session owns the credential token and cached profile. It is a shared
// singleton: any number of observers may subscribe, only its methods mutate
// it. Every token-setting or token-clearing mutation bumps an internal
// generation counter so that an in-flight profile fetch can never resurrect
// a session that was logged out underneath it.
type Session struct {
	gateway ports.Gateway
	store   ports.TokenStore
	clock   ports.Clock

	mu           sync.Mutex
	generation   uint64
	token        string
	user         *domain.User
	phase        SessionPhase
	lastError    string
	listeners    map[int]func(SessionSnapshot)
	nextListener int
}

func NewSession(gateway ports.Gateway, store ports.TokenStore, clock ports.Clock) *Session {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &Session{
		gateway:   gateway,
		store:     store,
		clock:     clock,
		phase:     SessionIdle,
		listeners: map[int]func(SessionSnapshot){},
	}
}

// Initialize rehydrates the session from the persisted token record. The
// host calls it exactly once at process start. A restored token triggers a
// single profile fetch; a stale token collapses the session through the
// fetch failure path.
func (s *Session) Initialize(ctx context.Context) error {
	token, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load session record: %w", err)
	}
	if token == "" {
		return nil
	}

	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.token = token
	s.phase = SessionLoading
	snap, listeners := s.snapshotLocked()
	s.mu.Unlock()
	broadcast(snap, listeners)

	return s.fetchUser(ctx, gen, token)
}

// Login exchanges credentials for a token, persists it, then loads the
// profile. The session counts as authenticated only once the profile load
// completes. Failures update the local error state and propagate.
func (s *Session) Login(ctx context.Context, email, password string) error {
	s.beginOperation()

	token, err := s.gateway.ExchangeCredentials(ctx, email, password)
	if err != nil {
		s.failOperation(err.Error())
		return fmt.Errorf("exchange credentials: %w", err)
	}

	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.token = token
	snap, listeners := s.snapshotLocked()
	s.mu.Unlock()
	broadcast(snap, listeners)

	if err := s.store.Save(ctx, token); err != nil {
		s.Logout()
		return fmt.Errorf("persist session token: %w", err)
	}

	return s.fetchUser(ctx, gen, token)
}

// Register creates the account and immediately logs in with the same
// credentials; registration never succeeds independently of session
// establishment.
func (s *Session) Register(ctx context.Context, email, password string) error {
	s.beginOperation()

	if err := s.gateway.Register(ctx, email, password); err != nil {
		s.failOperation(err.Error())
		return fmt.Errorf("register account: %w", err)
	}

	return s.Login(ctx, email, password)
}

// Logout clears the token, profile, and error state. It is synchronous,
// idempotent, and never calls the network.
func (s *Session) Logout() {
	s.mu.Lock()
	s.generation++
	s.token = ""
	s.user = nil
	s.lastError = ""
	s.phase = SessionIdle
	snap, listeners := s.snapshotLocked()
	s.mu.Unlock()

	_ = s.store.Clear(context.Background())
	broadcast(snap, listeners)
}

// FetchUser refreshes the cached profile with the stored token. Any failure
// collapses the session to anonymous; an invalid token is unrecoverable
// from here and no half-authenticated state may persist.
func (s *Session) FetchUser(ctx context.Context) error {
	s.mu.Lock()
	gen := s.generation
	token := s.token
	s.mu.Unlock()

	if token == "" {
		return domain.ErrUnauthorized
	}

	return s.fetchUser(ctx, gen, token)
}

func (s *Session) fetchUser(ctx context.Context, gen uint64, token string) error {
	user, err := s.gateway.CurrentUser(ctx, token)

	s.mu.Lock()
	if s.generation != gen {
		// The session moved on while the lookup was in flight; the
		// response belongs to a dead generation.
		s.mu.Unlock()
		return nil
	}

	if err != nil {
		s.token = ""
		s.user = nil
		s.lastError = ""
		s.phase = SessionIdle
		snap, listeners := s.snapshotLocked()
		s.mu.Unlock()

		_ = s.store.Clear(context.Background())
		broadcast(snap, listeners)
		return fmt.Errorf("fetch current user: %w", err)
	}

	s.user = &user
	s.phase = SessionIdle
	s.lastError = ""
	snap, listeners := s.snapshotLocked()
	s.mu.Unlock()
	broadcast(snap, listeners)
	return nil
}

// SetUser overwrites the cached profile. Used after side effects such as
// credential rotation that change profile fields without a login.
func (s *Session) SetUser(user domain.User) {
	s.mu.Lock()
	s.user = &user
	snap, listeners := s.snapshotLocked()
	s.mu.Unlock()
	broadcast(snap, listeners)
}

// RotateAPIKey requests a new secondary key from the service. The previous
// key is invalidated immediately server-side; only the display prefix is
// kept on the cached profile.
func (s *Session) RotateAPIKey(ctx context.Context) (string, error) {
	s.mu.Lock()
	token := s.token
	user := s.user
	s.mu.Unlock()

	if token == "" || user == nil {
		return "", domain.ErrUnauthorized
	}

	key, err := s.gateway.RotateAPIKey(ctx, token)
	if err != nil {
		return "", fmt.Errorf("rotate api key: %w", err)
	}

	updated := *user
	updated.APIKeyPrefix = apiKeyPrefix(key)
	s.SetUser(updated)

	return key, nil
}

func (s *Session) IsAuthenticated() bool {
	return s.Snapshot().Authenticated()
}

func (s *Session) Snapshot() SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, _ := s.snapshotLocked()
	return snap
}

// Credential returns the current bearer token; it satisfies the feed's
// CredentialSource.
func (s *Session) Credential() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Subscribe registers an observer invoked synchronously on every state
// change. The returned cancel detaches it without affecting others.
func (s *Session) Subscribe(fn func(SessionSnapshot)) func() {
	s.mu.Lock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Session) beginOperation() {
	s.mu.Lock()
	s.phase = SessionLoading
	s.lastError = ""
	snap, listeners := s.snapshotLocked()
	s.mu.Unlock()
	broadcast(snap, listeners)
}

func (s *Session) failOperation(message string) {
	s.mu.Lock()
	s.phase = SessionError
	s.lastError = message
	snap, listeners := s.snapshotLocked()
	s.mu.Unlock()
	broadcast(snap, listeners)
}

func (s *Session) snapshotLocked() (SessionSnapshot, []func(SessionSnapshot)) {
	var user *domain.User
	if s.user != nil {
		copied := *s.user
		user = &copied
	}

	snap := SessionSnapshot{
		Token:     s.token,
		User:      user,
		Phase:     s.phase,
		LastError: s.lastError,
	}

	listeners := make([]func(SessionSnapshot), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}

	return snap, listeners
}

func broadcast(snap SessionSnapshot, listeners []func(SessionSnapshot)) {
	for _, fn := range listeners {
		fn(snap)
	}
}

func apiKeyPrefix(key string) string {
	if len(key) < 12 {
		return key
	}

	return key[:8] + "..." + key[len(key)-4:]
}
