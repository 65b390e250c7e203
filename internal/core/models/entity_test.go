package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityIDString(t *testing.T) {
	assert.Equal(t, "e42", EntityID(42).String())
	assert.False(t, NoEntity.Valid())
}

func TestAgentIDJSON(t *testing.T) {
	id := NewAgentID()
	raw, err := json.Marshal(struct {
		Agent AgentID `json:"agent"`
	}{id})
	require.NoError(t, err)

	var back struct {
		Agent AgentID `json:"agent"`
	}
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, id, back.Agent)
	assert.True(t, back.Agent.Valid())
}
