package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent_CombinedType(t *testing.T) {
	event := NewEvent(EventTypeStatusChanged, EntityTypeLoan, nil)

	assert.Equal(t, "loan.status_changed", event.Type)
	assert.Equal(t, EntityTypeLoan, event.Entity)
	assert.WithinDuration(t, time.Now().UTC(), event.Timestamp, time.Second)
}

func TestEvent_ToJSON(t *testing.T) {
	payload := map[string]any{"id": "ln-1", "status": "DISBURSED"}
	event := LoanStatusChanged(payload)

	data, err := event.ToJSON()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "loan.status_changed", decoded["type"])
	assert.Equal(t, "loan", decoded["entity"])

	decodedPayload, ok := decoded["payload"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "DISBURSED", decodedPayload["status"])
}

func TestEventConstructors(t *testing.T) {
	cases := []struct {
		name  string
		event Event
		want  string
	}{
		{"LoanCreated", LoanCreated(nil), "loan.created"},
		{"LoanStatusChanged", LoanStatusChanged(nil), "loan.status_changed"},
		{"LoanEmiPaid", LoanEmiPaid(nil), "loan.emi_paid"},
		{"LoanPenaltyAdded", LoanPenaltyAdded(nil), "loan.penalty_added"},
		{"LoanDeleted", LoanDeleted(nil), "loan.deleted"},
		{"CustomerCreated", CustomerCreated(nil), "customer.created"},
		{"CustomerUpdated", CustomerUpdated(nil), "customer.updated"},
		{"FeePaid", FeePaid(nil), "fee.paid"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, c.event.Type)
		})
	}
}
