package broadcast

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	return hub, cancel
}

func TestHub_RegisterUnregister(t *testing.T) {
	hub, cancel := startHub(t)

	c1 := &Client{ID: "c1"}
	c2 := &Client{ID: "c2"}

	hub.Register(c1)
	hub.Register(c2)
	require.Eventually(t, func() bool { return hub.ClientCount() == 2 },
		time.Second, 5*time.Millisecond)

	hub.Unregister(c1)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 },
		time.Second, 5*time.Millisecond)

	// Unregistering twice is a no-op.
	hub.Unregister(c1)
	hub.Unregister(c2)
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 },
		time.Second, 5*time.Millisecond)

	cancel()
	hub.Wait()
}

func TestHub_BroadcastSkipsOrigin(t *testing.T) {
	hub, cancel := startHub(t)

	// The only registered client has no connection; delivery to it would
	// fail, so a completed broadcast proves the origin was skipped.
	origin := &Client{ID: "origin"}
	hub.Register(origin)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 },
		time.Second, 5*time.Millisecond)

	hub.Broadcast("origin", "typing", map[string]string{"username": "Alice"})

	hub.Unregister(origin)
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 },
		time.Second, 5*time.Millisecond)

	cancel()
	hub.Wait()
}

func TestHub_ShutdownUnblocksWait(t *testing.T) {
	hub, cancel := startHub(t)
	cancel()

	done := make(chan struct{})
	go func() {
		hub.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop after context cancellation")
	}
	assert.Zero(t, hub.ClientCount())
}
