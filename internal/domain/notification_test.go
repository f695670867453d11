package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendNotificationRequest_ExtraKeysLandInData(t *testing.T) {
	var req SendNotificationRequest
	err := json.Unmarshal([]byte(`{"userId":"u1","title":"t","message":"m","type":"statusUpdate","email":"doc@example.com","priority":2}`), &req)
	require.NoError(t, err)

	assert.Equal(t, "u1", req.UserID)
	assert.Equal(t, "m", req.Message)
	assert.Equal(t, map[string]interface{}{"email": "doc@example.com", "priority": float64(2)}, req.Data)
}

func TestSendNotificationRequest_ExplicitDataWins(t *testing.T) {
	var req SendNotificationRequest
	err := json.Unmarshal([]byte(`{"message":"m","data":{"email":"kept@example.com","x":1},"email":"dropped@example.com"}`), &req)
	require.NoError(t, err)

	assert.Equal(t, "kept@example.com", req.Data["email"])
	assert.Equal(t, float64(1), req.Data["x"])
}

func TestSendNotificationRequest_NoExtrasLeavesDataNil(t *testing.T) {
	var req SendNotificationRequest
	require.NoError(t, json.Unmarshal([]byte(`{"message":"m"}`), &req))
	assert.Nil(t, req.Data)
}

func TestSendNotificationRequest_RejectsNonObject(t *testing.T) {
	var req SendNotificationRequest
	assert.Error(t, json.Unmarshal([]byte(`["m"]`), &req))
}
