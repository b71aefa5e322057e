package services

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is what the rest of the service consumes about an authenticated
// user; everything else about identity lives with the identity provider.
type Session struct {
	UserID     uuid.UUID
	Username   string
	SignedInAt time.Time
}

// AuthEvent notifies subscribers that a user signed in or out.
type AuthEvent struct {
	UserID   uuid.UUID
	Username string
	SignedIn bool
}

// SessionManager tracks active sessions and broadcasts sign-in/out changes
// to explicit subscribers. Unsubscribing is safe at any point, including
// after Close, so torn-down views never receive late callbacks.
type SessionManager struct {
	mu     sync.Mutex
	active map[uuid.UUID]Session
	subs   map[int]func(AuthEvent)
	nextID int
	closed bool
}

func NewSessionManager() *SessionManager {
	return &SessionManager{
		active: make(map[uuid.UUID]Session),
		subs:   make(map[int]func(AuthEvent)),
	}
}

func (m *SessionManager) SignIn(userID uuid.UUID, username string) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.active[userID] = Session{UserID: userID, Username: username, SignedInAt: time.Now()}
	subs := m.snapshotSubsLocked()
	m.mu.Unlock()

	for _, fn := range subs {
		fn(AuthEvent{UserID: userID, Username: username, SignedIn: true})
	}
}

func (m *SessionManager) SignOut(userID uuid.UUID) {
	m.mu.Lock()
	sess, ok := m.active[userID]
	if !ok || m.closed {
		delete(m.active, userID)
		m.mu.Unlock()
		return
	}
	delete(m.active, userID)
	subs := m.snapshotSubsLocked()
	m.mu.Unlock()

	for _, fn := range subs {
		fn(AuthEvent{UserID: userID, Username: sess.Username, SignedIn: false})
	}
}

// Current returns the active session for a user, if any.
func (m *SessionManager) Current(userID uuid.UUID) (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.active[userID]
	return sess, ok
}

// Subscribe registers a change callback and returns its unsubscribe
// function. Calling unsubscribe more than once is harmless.
func (m *SessionManager) Subscribe(fn func(AuthEvent)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return func() {}
	}

	id := m.nextID
	m.nextID++
	m.subs[id] = fn

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}
}

// Close drops every subscriber and stops further notifications.
func (m *SessionManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.subs = make(map[int]func(AuthEvent))
}

func (m *SessionManager) snapshotSubsLocked() []func(AuthEvent) {
	out := make([]func(AuthEvent), 0, len(m.subs))
	for _, fn := range m.subs {
		out = append(out, fn)
	}
	return out
}
