package websocket

// EventPublisher defines the interface for publishing events to WebSocket clients
type EventPublisher interface {
	// Publish sends an event to every connected staff client
	Publish(event Event)
	// PublishToRole sends an event only to clients with the given role
	PublishToRole(role string, event Event)
}

// Ensure Hub implements EventPublisher
var _ EventPublisher = (*Hub)(nil)

// Publish implements EventPublisher by broadcasting to all staff
func (h *Hub) Publish(event Event) {
	h.BroadcastAll(event)
}

// PublishToRole implements EventPublisher by broadcasting to one role
func (h *Hub) PublishToRole(role string, event Event) {
	h.Broadcast(role, event)
}

// NoOpPublisher is a publisher that does nothing (for testing or when WebSocket is disabled)
type NoOpPublisher struct{}

// Publish does nothing
func (n *NoOpPublisher) Publish(event Event) {}

// PublishToRole does nothing
func (n *NoOpPublisher) PublishToRole(role string, event Event) {}
