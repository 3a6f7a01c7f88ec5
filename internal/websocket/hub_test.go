package websocket

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockClient is a test double for Client that captures sent messages
type mockClient struct {
	id       string
	role     string
	messages [][]byte
	mu       sync.Mutex
	closed   bool
}

func newMockClient(id, role string) *mockClient {
	return &mockClient{
		id:       id,
		role:     role,
		messages: make([][]byte, 0),
	}
}

func (m *mockClient) ID() string {
	return m.id
}

func (m *mockClient) Role() string {
	return m.role
}

func (m *mockClient) Send(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClientClosed
	}
	m.messages = append(m.messages, data)
	return nil
}

func (m *mockClient) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockClient) GetMessages() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := make([][]byte, len(m.messages))
	copy(copied, m.messages)
	return copied
}

func waitForMessages(t *testing.T, c *mockClient, want int) [][]byte {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		msgs := c.GetMessages()
		if len(msgs) >= want {
			return msgs
		}
		time.Sleep(5 * time.Millisecond)
	}
	msgs := c.GetMessages()
	require.Len(t, msgs, want, "timed out waiting for messages")
	return msgs
}

func TestHub_RegisterUnregister(t *testing.T) {
	hub := NewHub()
	client := newMockClient("c1", "MANAGER")

	hub.Register(client)
	assert.Equal(t, 1, hub.ClientCount("MANAGER"))
	assert.Equal(t, 1, hub.TotalClientCount())

	hub.Unregister(client)
	assert.Equal(t, 0, hub.ClientCount("MANAGER"))
	assert.Equal(t, 0, hub.TotalClientCount())
}

func TestHub_UnregisterUnknownClient(t *testing.T) {
	hub := NewHub()
	client := newMockClient("c1", "ADMIN")

	// Should not panic
	hub.Unregister(client)
	assert.Equal(t, 0, hub.TotalClientCount())
}

func TestHub_BroadcastToRole(t *testing.T) {
	hub := NewHub()
	manager := newMockClient("m1", "MANAGER")
	agent := newMockClient("a1", "AGENT")
	hub.Register(manager)
	hub.Register(agent)

	hub.Broadcast("MANAGER", LoanStatusChanged(map[string]string{"id": "ln-1"}))

	msgs := waitForMessages(t, manager, 1)
	assert.Contains(t, string(msgs[0]), "loan.status_changed")

	// Agents must not receive manager-scoped events
	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, agent.GetMessages())
}

func TestHub_BroadcastAll(t *testing.T) {
	hub := NewHub()
	clients := []*mockClient{
		newMockClient("m1", "MANAGER"),
		newMockClient("a1", "AGENT"),
		newMockClient("ad1", "ADMIN"),
	}
	for _, c := range clients {
		hub.Register(c)
	}

	hub.BroadcastAll(LoanCreated(map[string]string{"id": "ln-1"}))

	for _, c := range clients {
		msgs := waitForMessages(t, c, 1)
		assert.Contains(t, string(msgs[0]), "loan.created")
	}
}

func TestHub_BroadcastToEmptyRole(t *testing.T) {
	hub := NewHub()
	// Should not panic with no clients connected
	hub.Broadcast("ADMIN", FeePaid(nil))
	hub.BroadcastAll(FeePaid(nil))
}

func TestHub_ClosedClientDoesNotReceive(t *testing.T) {
	hub := NewHub()
	client := newMockClient("c1", "AGENT")
	hub.Register(client)
	require.NoError(t, client.Close())

	hub.Broadcast("AGENT", LoanEmiPaid(nil))

	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, client.GetMessages())
}

func TestHub_ConcurrentRegisterBroadcast(t *testing.T) {
	hub := NewHub()
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			c := newMockClient(string(rune('a'+n)), "AGENT")
			hub.Register(c)
		}(i)
		go func() {
			defer wg.Done()
			hub.Broadcast("AGENT", LoanCreated(nil))
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, hub.ClientCount("AGENT"))
}
