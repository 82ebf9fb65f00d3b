package ws

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/partylobby/internal/dependencies/mocks"
	"github.com/mcoot/partylobby/internal/model"
	"github.com/mcoot/partylobby/internal/testutil"
)

func newTestHub(handler Handler) (*Hub, *mocks.MockClock) {
	clk := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	hub := NewHub(HubConfig{
		ID:       "TEST01",
		Registry: NewRegistry(),
		Handler:  handler,
		Clock:    clk,
		Random:   mocks.NewMockRandom(),
		Logger:   testutil.NopLogger(),
	})
	return hub, clk
}

func TestRegistry_AddHasRemove(t *testing.T) {
	hub, _ := newTestHub(&recordingHandler{})
	r := NewRegistry()
	c := NewClient(hub, newFakeConn(), "c1")

	r.Add(c)
	assert.True(t, r.Has("c1"))
	assert.Equal(t, 1, r.Len())

	assert.True(t, r.Remove("c1"))
	assert.False(t, r.Has("c1"))
	assert.False(t, r.Remove("c1"), "second remove should report missing client")

	_, open := <-c.send
	assert.False(t, open, "send queue should be closed on removal")
}

func TestRegistry_SendQueuesWithoutBlocking(t *testing.T) {
	hub, _ := newTestHub(&recordingHandler{})
	r := NewRegistry()
	c := NewClient(hub, newFakeConn(), "c1")
	r.Add(c)

	require.NoError(t, r.Send("c1", []byte("hello")))
	assert.Equal(t, "hello", string(<-c.send))

	for i := 0; i < sendBufferSize; i++ {
		require.NoError(t, r.Send("c1", []byte("x")))
	}
	assert.ErrorIs(t, r.Send("c1", []byte("overflow")), model.ErrSendBufferFull)
}

func TestRegistry_SendToUnknownConnection(t *testing.T) {
	r := NewRegistry()
	assert.ErrorIs(t, r.Send("missing", []byte("x")), model.ErrConnectionNotFound)
}

func TestRegistry_ClientsAreSorted(t *testing.T) {
	hub, _ := newTestHub(&recordingHandler{})
	r := NewRegistry()
	for _, id := range []model.ConnID{"c3", "c1", "c2"} {
		r.Add(NewClient(hub, newFakeConn(), id))
	}

	var ids []model.ConnID
	for _, c := range r.Clients() {
		ids = append(ids, c.ID())
	}
	assert.Equal(t, []model.ConnID{"c1", "c2", "c3"}, ids)
}

// pingRequested consumes a pending ping request
func pingRequested(c *Client) bool {
	select {
	case <-c.pings:
		return true
	default:
		return false
	}
}

func TestMonitor_TwoSweepDeathDetection(t *testing.T) {
	hub, _ := newTestHub(&recordingHandler{})
	r := NewRegistry()
	fc := newFakeConn()
	c := NewClient(hub, fc, "c1")
	r.Add(c)
	m := NewMonitor(r, testutil.NopLogger())

	assert.Equal(t, 0, m.Sweep())
	assert.True(t, pingRequested(c))
	assert.False(t, fc.isClosed())

	assert.Equal(t, 1, m.Sweep())
	assert.True(t, fc.isClosed())
	assert.False(t, pingRequested(c), "a terminated connection is not pinged")
}

func TestMonitor_PongKeepsConnectionAlive(t *testing.T) {
	hub, _ := newTestHub(&recordingHandler{})
	r := NewRegistry()
	fc := newFakeConn()
	c := NewClient(hub, fc, "c1")
	r.Add(c)
	m := NewMonitor(r, testutil.NopLogger())

	for i := 0; i < 3; i++ {
		assert.Equal(t, 0, m.Sweep())
		assert.True(t, pingRequested(c))
		assert.False(t, c.Alive())
		fc.pong()
		assert.True(t, c.Alive())
	}
	assert.False(t, fc.isClosed())
}

func TestMonitor_PendingPingIsNotDoubled(t *testing.T) {
	hub, _ := newTestHub(&recordingHandler{})
	r := NewRegistry()
	fc := newFakeConn()
	c := NewClient(hub, fc, "c1")
	r.Add(c)
	m := NewMonitor(r, testutil.NopLogger())

	m.Sweep()
	fc.pong()
	m.Sweep()

	assert.Len(t, c.pings, 1)
}
