package realtime

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/medportal-notify/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	id      string
	mu      sync.Mutex
	got     []Event
	sendErr error
	closed  bool
}

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) Send(ev Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendErr != nil {
		return c.sendErr
	}
	c.got = append(c.got, ev)
	return nil
}

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

func (c *fakeConn) events() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Event(nil), c.got...)
}

func TestHub_PushAfterReRegisterReachesOnlyNewChannel(t *testing.T) {
	hub := NewHub(NewRegistry())
	c1 := &fakeConn{id: "c1"}
	c2 := &fakeConn{id: "c2"}
	hub.Attach(c1)
	hub.Attach(c2)

	require.NoError(t, hub.Register("u1", "c1"))
	require.NoError(t, hub.Register("u1", "c2"))

	require.NoError(t, hub.Push(context.Background(), "u1", domain.EventNotification, "hello"))
	assert.Empty(t, c1.events())
	require.Len(t, c2.events(), 1)
	assert.Equal(t, Event{Name: domain.EventNotification, Data: "hello"}, c2.events()[0])

	hub.Detach("c2")
	err := hub.Push(context.Background(), "u1", domain.EventNotification, "again")
	assert.ErrorIs(t, err, ErrNotConnected)
	_, ok := hub.Registry().Resolve("u1")
	assert.False(t, ok)
}

func TestHub_RegisterUnknownChannel(t *testing.T) {
	hub := NewHub(NewRegistry())
	err := hub.Register("u1", "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestHub_RegisterEmptyUser(t *testing.T) {
	hub := NewHub(NewRegistry())
	hub.Attach(&fakeConn{id: "c1"})
	err := hub.Register("", "c1")
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestHub_PushOfflineUser(t *testing.T) {
	hub := NewHub(NewRegistry())
	err := hub.Push(context.Background(), "nobody", domain.EventNotification, nil)
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestHub_PushSendFailure(t *testing.T) {
	hub := NewHub(NewRegistry())
	hub.Attach(&fakeConn{id: "c1", sendErr: domain.ErrDelivery})
	require.NoError(t, hub.Register("u1", "c1"))
	err := hub.Push(context.Background(), "u1", domain.EventNotification, nil)
	assert.ErrorIs(t, err, domain.ErrDelivery)
}

func TestHub_PushAllReachesEveryChannel(t *testing.T) {
	hub := NewHub(NewRegistry())
	c1 := &fakeConn{id: "c1"}
	c2 := &fakeConn{id: "c2"}
	bad := &fakeConn{id: "c3", sendErr: errors.New("buffer full")}
	hub.Attach(c1)
	hub.Attach(c2)
	hub.Attach(bad)
	require.NoError(t, hub.Register("u1", "c1"))

	err := hub.PushAll(context.Background(), domain.EventNotification, "all")
	assert.ErrorIs(t, err, domain.ErrDelivery)
	assert.Len(t, c1.events(), 1)
	assert.Len(t, c2.events(), 1)
}

func TestHub_CloseClosesAndUnregisters(t *testing.T) {
	hub := NewHub(NewRegistry())
	c1 := &fakeConn{id: "c1"}
	hub.Attach(c1)
	require.NoError(t, hub.Register("u1", "c1"))

	hub.Close()
	assert.True(t, c1.closed)
	assert.Equal(t, 0, hub.Registry().Len())
}
