package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEnvelope_Defaults(t *testing.T) {
	env := newEnvelope("Shift update", "Your roster changed", nil)

	assert.Equal(t, "Shift update", env.Title)
	assert.Equal(t, "Your roster changed", env.Body)
	assert.Equal(t, "/notifications", env.URL)
	assert.Equal(t, "general", env.Type)
	assert.NotEmpty(t, env.Icon)
	assert.NotEmpty(t, env.Badge)
	assert.False(t, env.SentAt.IsZero())
	assert.NotEmpty(t, env.CorrelationID)
	assert.Nil(t, env.Data)
}

func TestNewEnvelope_DataOverrides(t *testing.T) {
	data := map[string]string{
		"url":    "/tasks/42",
		"type":   "task-assigned",
		"taskId": "42",
	}
	env := newEnvelope("Task", "Assigned", data)

	assert.Equal(t, "/tasks/42", env.URL)
	assert.Equal(t, "task-assigned", env.Type)
	assert.Equal(t, "42", env.Data["taskId"])

	// The envelope owns a copy; mutating it must not leak into caller data.
	env.Data["taskId"] = "mutated"
	assert.Equal(t, "42", data["taskId"])
}

func TestNewEnvelope_CorrelationIDsAreUnique(t *testing.T) {
	a := newEnvelope("t", "b", nil)
	b := newEnvelope("t", "b", nil)
	require.NotEqual(t, a.CorrelationID, b.CorrelationID)
}
