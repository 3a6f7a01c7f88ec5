package websocket

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
)

// ErrClientClosed is returned when attempting to send to a closed client
var ErrClientClosed = errors.New("client is closed")

// ClientInterface defines the interface that clients must implement
type ClientInterface interface {
	ID() string
	Role() string
	Send(data []byte) error
	Close() error
}

// Hub manages WebSocket connections for back-office staff, organized by role
// It is safe for concurrent use
type Hub struct {
	// roles maps staff role to a map of client ID to client
	roles map[string]map[string]ClientInterface
	mu    sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		roles: make(map[string]map[string]ClientInterface),
	}
}

// Register adds a client to the hub under its role
func (h *Hub) Register(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()

	role := client.Role()
	clientID := client.ID()

	if h.roles[role] == nil {
		h.roles[role] = make(map[string]ClientInterface)
	}

	h.roles[role][clientID] = client

	log.Debug().
		Str("role", role).
		Str("client_id", clientID).
		Msg("WebSocket client registered")
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()

	role := client.Role()
	clientID := client.ID()

	if clients, ok := h.roles[role]; ok {
		if _, exists := clients[clientID]; exists {
			delete(clients, clientID)

			// Clean up empty role maps
			if len(clients) == 0 {
				delete(h.roles, role)
			}

			log.Debug().
				Str("role", role).
				Str("client_id", clientID).
				Msg("WebSocket client unregistered")
		}
	}
}

// Broadcast sends an event to all clients with a specific role
func (h *Hub) Broadcast(role string, event Event) {
	data, err := event.ToJSON()
	if err != nil {
		log.Error().
			Err(err).
			Str("role", role).
			Str("event_type", event.Type).
			Msg("Failed to serialize event")
		return
	}

	h.mu.RLock()
	clients, ok := h.roles[role]
	if !ok || len(clients) == 0 {
		h.mu.RUnlock()
		return
	}

	// Copy clients to avoid holding lock during send
	clientsCopy := make([]ClientInterface, 0, len(clients))
	for _, client := range clients {
		clientsCopy = append(clientsCopy, client)
	}
	h.mu.RUnlock()

	sendAll(clientsCopy, data)

	log.Debug().
		Str("role", role).
		Str("event_type", event.Type).
		Int("client_count", len(clientsCopy)).
		Msg("Broadcast event")
}

// BroadcastAll sends an event to every connected staff client
func (h *Hub) BroadcastAll(event Event) {
	data, err := event.ToJSON()
	if err != nil {
		log.Error().
			Err(err).
			Str("event_type", event.Type).
			Msg("Failed to serialize event")
		return
	}

	h.mu.RLock()
	var clientsCopy []ClientInterface
	for _, clients := range h.roles {
		for _, client := range clients {
			clientsCopy = append(clientsCopy, client)
		}
	}
	h.mu.RUnlock()

	if len(clientsCopy) == 0 {
		return
	}

	sendAll(clientsCopy, data)

	log.Debug().
		Str("event_type", event.Type).
		Int("client_count", len(clientsCopy)).
		Msg("Broadcast event to all staff")
}

// sendAll delivers data to each client asynchronously
func sendAll(clients []ClientInterface, data []byte) {
	for _, client := range clients {
		go func(c ClientInterface) {
			if err := c.Send(data); err != nil {
				log.Warn().
					Err(err).
					Str("client_id", c.ID()).
					Msg("Failed to send to client")
			}
		}(client)
	}
}

// ClientCount returns the number of clients connected with a role
func (h *Hub) ClientCount(role string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if clients, ok := h.roles[role]; ok {
		return len(clients)
	}
	return 0
}

// TotalClientCount returns the total number of connected clients across all roles
func (h *Hub) TotalClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, clients := range h.roles {
		total += len(clients)
	}
	return total
}
