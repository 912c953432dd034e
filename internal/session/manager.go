package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// EventKind identifies a session transition delivered to subscribers.
type EventKind string

const (
	EventSignedIn  EventKind = "signed_in"
	EventSignedOut EventKind = "signed_out"
)

// Sign-out reasons carried by EventSignedOut.
const (
	ReasonLogout  = "logout"
	ReasonExpired = "expired"
)

// Event describes a session transition.
type Event struct {
	Kind    EventKind
	Session Session
	Reason  string
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithClock injects the time source used for EstablishedAt.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithProfile namespaces the storage keys, allowing several sessions to share one store.
func WithProfile(profile string) Option {
	return func(m *Manager) { m.profile = strings.TrimSpace(profile) }
}

// Manager owns the authentication lifecycle of one client.
type Manager struct {
	api     AuthAPI
	store   Store
	profile string
	now     func() time.Time
	logger  *slog.Logger

	// writeMu serializes store writes so that persisted and in-memory state
	// are replaced together.
	writeMu sync.Mutex

	mu        sync.Mutex
	current   Session
	inFlight  int
	listeners []listener
	nextID    int
}

type listener struct {
	id int
	fn func(Event)
}

// NewManager constructs a Manager in the anonymous state. Call Restore to
// pick up a persisted session.
func NewManager(api AuthAPI, store Store, opts ...Option) *Manager {
	m := &Manager{
		api:     api,
		store:   store,
		now:     time.Now,
		logger:  slog.Default(),
		current: anonymous(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) key(name string) string {
	if m.profile == "" {
		return name
	}
	return m.profile + "/" + name
}

// Current returns a snapshot of the session.
func (m *Manager) Current() Session {
	if m == nil {
		return anonymous()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.current
	if !s.Authenticated() && m.inFlight > 0 {
		s.Status = StatusAuthenticating
	}
	return s
}

// Token returns the bearer token, or the empty string when anonymous.
func (m *Manager) Token() string {
	return m.Current().Token
}

// IsAuthorized reports whether the current session holds the role.
func (m *Manager) IsAuthorized(role Role) bool {
	return IsAuthorized(m.Current(), role)
}

// Subscribe registers fn for session transitions. Listeners run in
// subscription order after state has changed. The returned func unsubscribes.
func (m *Manager) Subscribe(fn func(Event)) (cancel func()) {
	if m == nil || fn == nil {
		return func() {}
	}
	m.mu.Lock()
	m.nextID++
	id := m.nextID
	m.listeners = append(m.listeners, listener{id: id, fn: fn})
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, l := range m.listeners {
			if l.id == id {
				m.listeners = append(m.listeners[:i:i], m.listeners[i+1:]...)
				return
			}
		}
	}
}

func (m *Manager) emit(event Event) {
	m.mu.Lock()
	targets := make([]listener, len(m.listeners))
	copy(targets, m.listeners)
	m.mu.Unlock()
	for _, l := range targets {
		l.fn(event)
	}
}

// Login exchanges credentials for a session. On any failure the previous
// session, persisted or in memory, is left untouched.
func (m *Manager) Login(ctx context.Context, id, password string) (result Session, err error) {
	if m == nil {
		err = fmt.Errorf("session manager is nil")
		return
	}
	id = strings.TrimSpace(id)

	logger := serviceLogger(ctx, m.logger, "Login", "principal_id", id)
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "login failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "login succeeded", "role", result.Role())
	}()

	if id == "" || strings.TrimSpace(password) == "" {
		err = &AuthError{Kind: ErrInvalidInput, Message: "id and password are required"}
		return
	}
	if m.api == nil {
		err = &AuthError{Kind: ErrNetwork, Message: "auth api not configured"}
		return
	}

	m.mu.Lock()
	m.inFlight++
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		m.inFlight--
		m.mu.Unlock()
	}()

	grant, callErr := m.api.Login(ctx, id, password)
	if callErr != nil {
		err = normalizeLoginError(callErr)
		return
	}

	result, err = m.sessionFromGrant(grant)
	if err != nil {
		return
	}

	if err = m.apply(ctx, result, grant.User); err != nil {
		return
	}
	m.emit(Event{Kind: EventSignedIn, Session: result})
	return
}

func normalizeLoginError(err error) error {
	var rejection Rejection
	if errors.As(err, &rejection) {
		message := strings.TrimSpace(rejection.RejectionMessage())
		if message == "" {
			message = DefaultRejectionMessage
		}
		return &AuthError{Kind: ErrRejected, Message: message, Err: err}
	}
	return &AuthError{Kind: ErrNetwork, Message: "could not reach the server", Err: err}
}

func (m *Manager) sessionFromGrant(grant Grant) (Session, error) {
	token := strings.TrimSpace(grant.Token)
	if token == "" || len(grant.User) == 0 {
		return Session{}, &AuthError{Kind: ErrNetwork, Message: "incomplete login response"}
	}
	var principal Principal
	if err := json.Unmarshal(grant.User, &principal); err != nil {
		if errors.Is(err, ErrUnknownRole) {
			return Session{}, &AuthError{Kind: ErrRejected, Message: "Invalid user role", Err: err}
		}
		return Session{}, &AuthError{Kind: ErrNetwork, Message: "malformed user object", Err: err}
	}
	s := Session{
		Principal:     &principal,
		Token:         token,
		Status:        StatusAuthenticated,
		EstablishedAt: m.now().UTC(),
	}
	if exp, ok := tokenExpiry(token); ok {
		s.ExpiresAt = exp
	}
	return s, nil
}

// apply persists and installs an authenticated session. Calls are serialized,
// so the attempt that resolves last is the one left in place.
func (m *Manager) apply(ctx context.Context, s Session, rawUser json.RawMessage) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	if m.store != nil {
		user, err := json.Marshal(s.Principal)
		if err != nil {
			user = rawUser
		}
		if err := m.store.Set(ctx, m.key(TokenKey), s.Token); err != nil {
			return &AuthError{Kind: ErrStorage, Message: "could not persist session", Err: err}
		}
		if err := m.store.Set(ctx, m.key(UserKey), string(user)); err != nil {
			m.rollbackToken(ctx)
			return &AuthError{Kind: ErrStorage, Message: "could not persist session", Err: err}
		}
	}

	m.mu.Lock()
	m.current = s
	m.mu.Unlock()
	return nil
}

// rollbackToken restores the stored token of the session still in memory
// after a half-written login.
func (m *Manager) rollbackToken(ctx context.Context) {
	m.mu.Lock()
	prev := m.current
	m.mu.Unlock()
	var err error
	if prev.Authenticated() {
		err = m.store.Set(ctx, m.key(TokenKey), prev.Token)
	} else {
		err = m.store.Delete(ctx, m.key(TokenKey))
	}
	if err != nil {
		serviceLogger(ctx, m.logger, "Login").WarnContext(ctx, "token rollback failed", "error", err)
	}
}

// Logout clears the session locally and in storage, notifies subscribers,
// then tells the backend on a best-effort basis. For an anonymous session
// only the persisted entries are removed.
func (m *Manager) Logout(ctx context.Context) {
	if m == nil {
		return
	}
	previous, cleared := m.clear(ctx, "Logout")
	if !cleared {
		return
	}
	m.emit(Event{Kind: EventSignedOut, Session: anonymous(), Reason: ReasonLogout})

	if m.api == nil {
		return
	}
	if err := m.api.Logout(ctx, previous.Token); err != nil {
		serviceLogger(ctx, m.logger, "Logout").WarnContext(ctx, "backend logout notification failed",
			"error", err)
	}
}

// Invalidate drops a session the backend no longer accepts. No backend call is made.
func (m *Manager) Invalidate(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	if reason == "" {
		reason = ReasonExpired
	}
	if _, cleared := m.clear(ctx, "Invalidate"); !cleared {
		return
	}
	m.emit(Event{Kind: EventSignedOut, Session: anonymous(), Reason: reason})
}

// clear drops the in-memory session and always removes the persisted one,
// so a stored session cannot outlive a logout that ran before Restore. The
// returned flag reports whether an authenticated session was in memory.
func (m *Manager) clear(ctx context.Context, operation string) (Session, bool) {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	m.mu.Lock()
	previous := m.current
	m.current = anonymous()
	m.mu.Unlock()

	logger := serviceLogger(ctx, m.logger, operation)
	if previous.Authenticated() {
		logger = logger.With("principal_id", previous.Principal.ID)
	}
	if m.store != nil {
		if err := m.store.Delete(ctx, m.key(TokenKey), m.key(UserKey)); err != nil {
			logger.ErrorContext(ctx, "clearing persisted session failed", "error", err)
		}
	}
	if !previous.Authenticated() {
		return previous, false
	}
	logger.InfoContext(ctx, "session cleared")
	return previous, true
}

// Restore loads a persisted session without contacting the backend. Partial
// or unreadable entries are removed and the manager stays anonymous.
func (m *Manager) Restore(ctx context.Context) (Session, bool) {
	if m == nil || m.store == nil {
		return anonymous(), false
	}
	s, ok := m.restore(ctx)
	if ok {
		m.emit(Event{Kind: EventSignedIn, Session: s})
	}
	return s, ok
}

func (m *Manager) restore(ctx context.Context) (Session, bool) {
	logger := serviceLogger(ctx, m.logger, "Restore")

	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	token, hasToken, err := m.store.Get(ctx, m.key(TokenKey))
	if err != nil {
		logger.WarnContext(ctx, "reading persisted token failed", "error", err)
		return anonymous(), false
	}
	rawUser, hasUser, err := m.store.Get(ctx, m.key(UserKey))
	if err != nil {
		logger.WarnContext(ctx, "reading persisted user failed", "error", err)
		return anonymous(), false
	}
	if !hasToken && !hasUser {
		return anonymous(), false
	}

	var principal Principal
	decodeErr := json.Unmarshal([]byte(rawUser), &principal)
	if !hasToken || !hasUser || strings.TrimSpace(token) == "" || decodeErr != nil {
		logger.WarnContext(ctx, "discarding incomplete persisted session",
			"has_token", hasToken, "has_user", hasUser, "decode_error", decodeErr)
		if err := m.store.Delete(ctx, m.key(TokenKey), m.key(UserKey)); err != nil {
			logger.ErrorContext(ctx, "clearing persisted session failed", "error", err)
		}
		return anonymous(), false
	}

	s := Session{
		Principal: &principal,
		Token:     token,
		Status:    StatusAuthenticated,
	}
	if exp, ok := tokenExpiry(token); ok {
		s.ExpiresAt = exp
	}

	m.mu.Lock()
	m.current = s
	m.mu.Unlock()

	logger.InfoContext(ctx, "session restored", "principal_id", principal.ID, "role", principal.Role)
	return s, true
}
