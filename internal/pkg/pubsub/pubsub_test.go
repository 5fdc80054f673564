package pubsub

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlertMessage_JSON(t *testing.T) {
	msg := &AlertMessage{
		Type:          "usage_alert",
		UserID:        "user-1",
		MetricType:    "connected_accounts",
		MetricLabel:   "Connected accounts",
		CurrentValue:  8,
		LimitValue:    10,
		Percentage:    80,
		SuggestedTier: "pro",
		Message:       "Connected accounts 已使用 80%（8/10）",
	}

	data, err := json.Marshal(msg)
	require.NoError(t, err)

	var decoded AlertMessage
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, *msg, decoded)
}

func TestAlertMessage_OmitEmpty(t *testing.T) {
	// 最高档没有可建议的套餐，suggested_tier 不出现在负载里
	data, err := json.Marshal(&AlertMessage{Type: "usage_alert", UserID: "user-1"})
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.NotContains(t, raw, "suggested_tier")
	assert.NotContains(t, raw, "message")
}

func TestChannelName(t *testing.T) {
	assert.Equal(t, "usage_alerts", ChannelUsageAlerts)
}
