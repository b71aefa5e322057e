package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignInAndOutNotifySubscribers(t *testing.T) {
	m := NewSessionManager()
	defer m.Close()

	var events []AuthEvent
	unsubscribe := m.Subscribe(func(e AuthEvent) { events = append(events, e) })
	defer unsubscribe()

	userID := uuid.New()
	m.SignIn(userID, "admin")

	sess, ok := m.Current(userID)
	require.True(t, ok)
	assert.Equal(t, "admin", sess.Username)
	assert.False(t, sess.SignedInAt.IsZero())

	m.SignOut(userID)
	_, ok = m.Current(userID)
	assert.False(t, ok)

	require.Len(t, events, 2)
	assert.Equal(t, AuthEvent{UserID: userID, Username: "admin", SignedIn: true}, events[0])
	assert.Equal(t, AuthEvent{UserID: userID, Username: "admin", SignedIn: false}, events[1])
}

func TestSignOutUnknownUserIsSilent(t *testing.T) {
	m := NewSessionManager()
	defer m.Close()

	var events []AuthEvent
	defer m.Subscribe(func(e AuthEvent) { events = append(events, e) })()

	m.SignOut(uuid.New())
	assert.Empty(t, events)
}

func TestUnsubscribeStopsNotifications(t *testing.T) {
	m := NewSessionManager()
	defer m.Close()

	var events []AuthEvent
	unsubscribe := m.Subscribe(func(e AuthEvent) { events = append(events, e) })

	m.SignIn(uuid.New(), "first")
	unsubscribe()
	m.SignIn(uuid.New(), "second")

	require.Len(t, events, 1)
	assert.Equal(t, "first", events[0].Username)

	// A second unsubscribe is harmless.
	unsubscribe()
}

func TestCloseDropsSubscribers(t *testing.T) {
	m := NewSessionManager()

	var events []AuthEvent
	unsubscribe := m.Subscribe(func(e AuthEvent) { events = append(events, e) })

	m.Close()
	m.SignIn(uuid.New(), "late")
	assert.Empty(t, events)

	// Unsubscribing after Close must not panic.
	unsubscribe()

	// Subscriptions after Close are inert.
	stop := m.Subscribe(func(AuthEvent) { t.Fatal("subscriber called after Close") })
	m.SignIn(uuid.New(), "later")
	stop()
}
