package registryclient

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lguibr/actorhost/registry"
)

func startTestRegistry(t *testing.T) string {
	t.Helper()
	reg := registry.New(nil, registry.HostConfig{})
	reg.Start()
	srv := registry.NewServer("127.0.0.1:0", reg, nil)

	go func() {
		_ = srv.ListenAndServe()
	}()
	t.Cleanup(func() {
		_ = srv.Close()
		reg.Stop()
	})

	require.Eventually(t, func() bool {
		return srv.Addr() != nil
	}, time.Second, 5*time.Millisecond)

	return fmt.Sprintf("ws://%s", srv.Addr().String())
}

func TestRegisterThenLookup(t *testing.T) {
	endpoint := startTestRegistry(t)
	client := New("mgr-1", endpoint, nil)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.NoError(t, client.Register(ctx, "alice", "ws://alice-host:1"))

	got, err := client.Lookup(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "ws://alice-host:1", got)
}

func TestLookupNotFound(t *testing.T) {
	endpoint := startTestRegistry(t)
	client := New("mgr-1", endpoint, nil)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := client.Lookup(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegisterCollisionSurfacesAsTypedError(t *testing.T) {
	endpoint := startTestRegistry(t)
	clientA := New("mgr-1", endpoint, nil)
	defer clientA.Close()
	clientB := New("mgr-2", endpoint, nil)
	defer clientB.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.NoError(t, clientA.Register(ctx, "alice", "ws://host:1"))

	err := clientB.Register(ctx, "alice", "ws://host:2")
	require.Error(t, err)
	var regErr *RegistrationFailedError
	require.ErrorAs(t, err, &regErr)
	assert.Equal(t, "Name already registered", regErr.Reason)
}

func TestLookupOnlineRightAfterRegisterWithHeartbeatStarted(t *testing.T) {
	endpoint := startTestRegistry(t)
	client := New("mgr-1", endpoint, nil)
	defer client.Close()
	client.StartHeartbeat()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, client.Register(ctx, "alice", "ws://host:1"))

	got, err := client.Lookup(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "ws://host:1", got)
}
