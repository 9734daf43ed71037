package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskPatchDecoding(t *testing.T) {
	var patch struct {
		Title       Optional[string] `json:"title"`
		Description Optional[string] `json:"description"`
		DueDate     Optional[string] `json:"due_date"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"title":"Buy milk","description":null}`), &patch))

	require.True(t, patch.Title.Set)
	require.NotNil(t, patch.Title.Value)
	assert.Equal(t, "Buy milk", *patch.Title.Value)

	assert.True(t, patch.Description.Set)
	assert.Nil(t, patch.Description.Value)

	assert.False(t, patch.DueDate.Set)
}

func TestTaskPatchEmpty(t *testing.T) {
	assert.True(t, TaskPatch{}.Empty())
	assert.False(t, TaskPatch{IsCompleted: Some(true)}.Empty())
	assert.False(t, TaskPatch{DueDate: Null[string]()}.Empty())
}
