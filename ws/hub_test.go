package ws

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBacklogCapKeepsNewestFirst(t *testing.T) {
	hub := NewHub(50)

	for i := 1; i <= 60; i++ {
		hub.PushResult(map[string]int{"seq": i})
		// drain the broadcast channel so pushes never block
		select {
		case <-hub.broadcast:
		default:
		}
	}

	replay := hub.ReplaySnapshot()
	require.Len(t, replay, 50)

	// newest first: 60, 59, ..., 11
	for i, raw := range replay {
		var msg Message
		require.NoError(t, json.Unmarshal(raw, &msg))
		assert.Equal(t, "scan_result", msg.Type)
		data := msg.Data.(map[string]interface{})
		assert.Equal(t, float64(60-i), data["seq"], "position %d", i)
	}
}

func TestNotifyDoesNotTouchBacklog(t *testing.T) {
	hub := NewHub(10)
	hub.Notify("scan_created", map[string]string{"scan_id": "abc"})
	assert.Empty(t, hub.ReplaySnapshot())
}

func TestRunReplaysBacklogToNewClient(t *testing.T) {
	hub := NewHub(10)
	for i := 1; i <= 3; i++ {
		hub.PushResult(map[string]int{"seq": i})
		select {
		case <-hub.broadcast:
		default:
		}
	}
	go hub.Run()

	client := &Client{hub: hub, send: make(chan []byte, 8), id: "replay"}
	hub.register <- client

	// newest first: 3, 2, 1
	for want := 3; want >= 1; want-- {
		var msg Message
		require.NoError(t, json.Unmarshal(<-client.send, &msg))
		assert.Equal(t, "scan_result", msg.Type)
		assert.Equal(t, float64(want), msg.Data.(map[string]interface{})["seq"])
	}
	assert.Equal(t, 1, hub.ClientCount())
}

func TestRunDropsClientWhenReplayOverflows(t *testing.T) {
	hub := NewHub(10)
	for i := 1; i <= 3; i++ {
		hub.PushResult(map[string]int{"seq": i})
		select {
		case <-hub.broadcast:
		default:
		}
	}
	go hub.Run()

	// Fill the send buffer so the very first replayed message overflows.
	client := &Client{hub: hub, send: make(chan []byte, 1), id: "slow"}
	client.send <- []byte("filler")
	hub.register <- client

	// The hub loop is serial: once this second register is accepted, the
	// first one, replay included, has fully completed.
	dummy := &Client{hub: hub, send: make(chan []byte, 8), id: "dummy"}
	hub.register <- dummy

	raw, ok := <-client.send
	require.True(t, ok)
	assert.Equal(t, "filler", string(raw))

	_, ok = <-client.send
	assert.False(t, ok, "send channel closed after overflow")
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, time.Millisecond)
}

func TestClientCountDuringChurn(t *testing.T) {
	hub := NewHub(10)
	go hub.Run()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			c := &Client{hub: hub, send: make(chan []byte, 8), id: fmt.Sprintf("c%d", i)}
			hub.register <- c
			hub.unregister <- c
		}
	}()

	for {
		select {
		case <-done:
			require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, time.Millisecond)
			return
		default:
			assert.LessOrEqual(t, hub.ClientCount(), 1)
		}
	}
}

func TestBacklogMinimumCap(t *testing.T) {
	hub := NewHub(0)
	for i := 0; i < 3; i++ {
		hub.PushResult(fmt.Sprintf("r%d", i))
		select {
		case <-hub.broadcast:
		default:
		}
	}
	assert.Len(t, hub.ReplaySnapshot(), 1)
}
