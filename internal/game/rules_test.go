package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsUpdate(t *testing.T) {
	s := DefaultSettings()
	err := s.Update(map[string]interface{}{
		"startingHandSize": float64(5),
		"castTimeoutMs":    1000,
		"endOnDefeat":      true,
		"unknownKey":       "ignored",
	})
	require.NoError(t, err)
	assert.Equal(t, 5, s.StartingHandSize)
	assert.Equal(t, 1000, s.CastTimeoutMs)
	assert.True(t, s.EndOnDefeat)
	assert.Equal(t, 15000, s.SpellTimeoutMs, "absent keys keep their value")
}

func TestSettingsUpdateRejects(t *testing.T) {
	cases := map[string]interface{}{
		"castTimeoutMs": 0,
		"phaseDelayMs":  -1,
		"defaultAttack": "five",
		"endOnDefeat":   "yes",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			_, err := ParseSettings(map[string]interface{}{key: val}, DefaultSettings())
			assert.Error(t, err)
		})
	}
}

func TestParseSettingsLeavesCurrentAlone(t *testing.T) {
	cur := DefaultSettings()
	next, err := ParseSettings(map[string]interface{}{"maxTurns": 3}, cur)
	require.NoError(t, err)
	assert.Equal(t, 3, next.MaxTurns)
	assert.Equal(t, 0, cur.MaxTurns)
}
