package websocket

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHub_ImplementsEventPublisher(t *testing.T) {
	var publisher EventPublisher = NewHub()
	assert.NotNil(t, publisher)
}

func TestNoOpPublisher(t *testing.T) {
	publisher := &NoOpPublisher{}

	// Should not panic
	publisher.Publish(LoanCreated(nil))
	publisher.PublishToRole("ADMIN", LoanCreated(nil))
}

func TestHub_PublishReachesAllRoles(t *testing.T) {
	hub := NewHub()
	manager := newMockClient("m1", "MANAGER")
	admin := newMockClient("ad1", "ADMIN")
	hub.Register(manager)
	hub.Register(admin)

	hub.Publish(FeePaid(map[string]string{"id": "fee-1"}))

	assert.Contains(t, string(waitForMessages(t, manager, 1)[0]), "fee.paid")
	assert.Contains(t, string(waitForMessages(t, admin, 1)[0]), "fee.paid")
}
