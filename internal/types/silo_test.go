package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSiloUnmarshal_Lenient(t *testing.T) {
	var s Silo
	err := json.Unmarshal([]byte(`{"id":7,"name":"North","temperature":"hot","humidity":null,"capacity":42.5,"connected":"yes"}`), &s)
	require.NoError(t, err)

	assert.Equal(t, "7", s.ID)
	assert.Equal(t, "North", s.Name)
	assert.Nil(t, s.Temperature)
	assert.Nil(t, s.Humidity)
	require.NotNil(t, s.Capacity)
	assert.Equal(t, 42.5, *s.Capacity)
	assert.Nil(t, s.Connected)
	assert.False(t, s.Disconnected())
}

func TestSiloUnmarshal_RequiresID(t *testing.T) {
	var s Silo
	assert.Error(t, json.Unmarshal([]byte(`{"name":"North"}`), &s))
	assert.Error(t, json.Unmarshal([]byte(`{"id":"","name":"North"}`), &s))
}

func TestSiloStatus_RoundTripKeepsStatus(t *testing.T) {
	in := SiloStatus{
		Silo: Silo{
			ID:          "2",
			Name:        "Silo 2",
			Temperature: Float(28),
			Humidity:    Float(55),
			Capacity:    Float(60),
			Connected:   Bool(false),
		},
		Status: StatusAttention,
	}

	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out SiloStatus
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, StatusAttention, out.Status)
	assert.Equal(t, "2", out.ID)
	require.NotNil(t, out.Temperature)
	assert.Equal(t, 28.0, *out.Temperature)
	assert.True(t, out.Disconnected())
}
