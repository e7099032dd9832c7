package pubsub

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntitlementEvent_MarshalRoundtrip(t *testing.T) {
	event := EntitlementEvent{
		Type:           EntitlementEventGranted,
		AccountSID:     "acct_abc123",
		EntitlementSID: "ent_xyz789",
		ProductSID:     "prod_def456",
		OrderRef:       "order-42",
		Timestamp:      1700000000,
		InstanceID:     "instance-1",
	}

	data, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded EntitlementEvent
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)

	assert.Equal(t, event, decoded)
}

func TestEntitlementEvent_OmitsEmptyOrderRef(t *testing.T) {
	event := EntitlementEvent{
		Type:           EntitlementEventRefunded,
		AccountSID:     "acct_abc123",
		EntitlementSID: "ent_xyz789",
		ProductSID:     "prod_def456",
		Timestamp:      1700000000,
	}

	data, err := json.Marshal(event)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "order_ref")
	assert.NotContains(t, string(data), "instance_id")
}
