package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemUndatedSurvivesJSON(t *testing.T) {
	data, err := json.Marshal(Item{ID: "a"})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"published":"0001-01-01T00:00:00Z"`)

	var back Item
	require.NoError(t, json.Unmarshal(data, &back))
	assert.False(t, back.HasTimestamp())

	dated := Item{ID: "b", Published: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)}
	data, err = json.Marshal(dated)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.HasTimestamp())
	assert.True(t, dated.Published.Equal(back.Published))
}

func TestSelectionEmpty(t *testing.T) {
	assert.True(t, Selection{}.Empty())
	assert.False(t, Selection{News: []string{"DeepMind"}}.Empty())
}
