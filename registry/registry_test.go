package registry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLookup(t *testing.T) {
	g := New(nil, HostConfig{})
	ok, reason := g.Register("mgr-1", "alice", "ws://host:1")
	require.True(t, ok)
	assert.Empty(t, reason)

	endpoint, online, found := g.Lookup("alice")
	require.True(t, found)
	assert.True(t, online)
	assert.Equal(t, "ws://host:1", endpoint)
}

func TestRegisterNameCollisionRejected(t *testing.T) {
	g := New(nil, HostConfig{})
	ok, _ := g.Register("mgr-1", "alice", "ws://host:1")
	require.True(t, ok)

	ok, reason := g.Register("mgr-2", "alice", "ws://host:2")
	assert.False(t, ok)
	assert.Equal(t, "Name already registered", reason)

	// the original registration must be untouched
	endpoint, _, _ := g.Lookup("alice")
	assert.Equal(t, "ws://host:1", endpoint)
}

func TestLookupUnknownName(t *testing.T) {
	g := New(nil, HostConfig{})
	_, _, found := g.Lookup("ghost")
	assert.False(t, found)
}

func TestUnregisterIsIdempotent(t *testing.T) {
	g := New(nil, HostConfig{})
	g.Register("mgr-1", "alice", "ws://host:1")

	g.Unregister("alice")
	_, _, found := g.Lookup("alice")
	assert.False(t, found)

	// second unregister of the same (now absent) name must not panic or error
	g.Unregister("alice")
}

func TestHeartbeatKeepsManagerOnline(t *testing.T) {
	g := NewWithTimings(nil, HostConfig{}, 50*time.Millisecond, 10*time.Millisecond)
	g.Register("mgr-1", "alice", "ws://host:1")

	time.Sleep(30 * time.Millisecond)
	g.Heartbeat("mgr-1")
	time.Sleep(30 * time.Millisecond)

	_, online, found := g.Lookup("alice")
	require.True(t, found)
	assert.True(t, online)
}

func TestDecayCascadesToAllOfManagersActors(t *testing.T) {
	g := NewWithTimings(nil, HostConfig{}, 30*time.Millisecond, 5*time.Millisecond)
	g.Register("mgr-1", "alice", "ws://host:1")
	g.Register("mgr-1", "bob", "ws://host:1")
	g.Start()
	defer g.Stop()

	require.Eventually(t, func() bool {
		_, _, aliceFound := g.Lookup("alice")
		_, _, bobFound := g.Lookup("bob")
		return !aliceFound && !bobFound
	}, time.Second, 5*time.Millisecond)
}

func TestLookupOnlineReflectsHeartbeatWithoutSweep(t *testing.T) {
	// online must be computed at lookup time even if the sweeper hasn't
	// run yet, not only after a sweep has evicted the entry.
	g := NewWithTimings(nil, HostConfig{}, 20*time.Millisecond, time.Hour)
	g.Register("mgr-1", "alice", "ws://host:1")

	time.Sleep(40 * time.Millisecond)
	_, online, found := g.Lookup("alice")
	require.True(t, found)
	assert.False(t, online)
}
