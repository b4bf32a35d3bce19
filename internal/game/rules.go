// internal/game/rules.go
package game

import (
	"fmt"
	"time"
)

// Settings holds per-match configuration.
type Settings struct {
	StartingHandSize int  `json:"startingHandSize"` // cards drawn by each side before the first draw phase
	CastTimeoutMs    int  `json:"castTimeoutMs"`    // time allowed for the cast decision (and its nested stack choice)
	SpellTimeoutMs   int  `json:"spellTimeoutMs"`   // time allowed for choosing the attacking stack
	PhaseDelayMs     int  `json:"phaseDelayMs"`     // presentation pause between board mutations; 0 disables it
	DefaultAttack    int  `json:"defaultAttack"`    // damage dealt when the winner attacked with an empty stack
	MaxTurns         int  `json:"maxTurns"`         // stop after this many cycles; 0 loops until cancelled
	EndOnDefeat      bool `json:"endOnDefeat"`      // end the match once a side is at or below 0 hp after combat
}

// DefaultSettings returns the settings used when a match request leaves them out.
func DefaultSettings() Settings {
	return Settings{
		StartingHandSize: 3,
		CastTimeoutMs:    30000,
		SpellTimeoutMs:   15000,
		PhaseDelayMs:     400,
		DefaultAttack:    5,
	}
}

func (s Settings) castTimeout() time.Duration {
	return time.Duration(s.CastTimeoutMs) * time.Millisecond
}

func (s Settings) spellTimeout() time.Duration {
	return time.Duration(s.SpellTimeoutMs) * time.Millisecond
}

func (s Settings) phaseDelay() time.Duration {
	return time.Duration(s.PhaseDelayMs) * time.Millisecond
}

// Update applies the provided values on top of the current settings. Keys that
// are absent keep their old value.
func (s *Settings) Update(values map[string]interface{}) error {
	assignBool := func(field *bool, key string) error {
		if val, exists := values[key]; exists && val != nil {
			b, ok := val.(bool)
			if !ok {
				return fmt.Errorf("invalid type for %s", key)
			}
			*field = b
		}
		return nil
	}

	assignInt := func(field *int, key string, minVal int) error {
		val, exists := values[key]
		if !exists || val == nil {
			return nil
		}
		var n int
		switch v := val.(type) {
		case float64: // JSON numbers
			n = int(v)
		case int:
			n = v
		default:
			return fmt.Errorf("invalid type for %s", key)
		}
		if n < minVal {
			return fmt.Errorf("%s must be at least %d", key, minVal)
		}
		*field = n
		return nil
	}

	if err := assignInt(&s.StartingHandSize, "startingHandSize", 0); err != nil {
		return err
	}
	if err := assignInt(&s.CastTimeoutMs, "castTimeoutMs", 1); err != nil {
		return err
	}
	if err := assignInt(&s.SpellTimeoutMs, "spellTimeoutMs", 1); err != nil {
		return err
	}
	if err := assignInt(&s.PhaseDelayMs, "phaseDelayMs", 0); err != nil {
		return err
	}
	if err := assignInt(&s.DefaultAttack, "defaultAttack", 0); err != nil {
		return err
	}
	if err := assignInt(&s.MaxTurns, "maxTurns", 0); err != nil {
		return err
	}
	return assignBool(&s.EndOnDefeat, "endOnDefeat")
}

// ParseSettings validates values and applies them to a copy of current.
func ParseSettings(values map[string]interface{}, current Settings) (Settings, error) {
	s := current
	err := s.Update(values)
	return s, err
}
