package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeatRoundTrip(t *testing.T) {
	s, err := NewSeatSigner(time.Hour)
	require.NoError(t, err)
	matchID, userID := uuid.New(), uuid.New()

	tok, err := s.IssueSeat(matchID, userID, "b")
	require.NoError(t, err)

	claims, err := s.VerifySeat(tok, matchID)
	require.NoError(t, err)
	assert.Equal(t, "b", claims.Side)
	assert.Equal(t, userID.String(), claims.Subject)
}

func TestSeatWrongMatch(t *testing.T) {
	s, err := NewSeatSigner(0)
	require.NoError(t, err)
	tok, err := s.IssueSeat(uuid.New(), uuid.New(), "a")
	require.NoError(t, err)

	_, err = s.VerifySeat(tok, uuid.New())
	assert.ErrorIs(t, err, ErrWrongMatch)
}

func TestSeatExpired(t *testing.T) {
	s, err := NewSeatSigner(time.Minute)
	require.NoError(t, err)
	issued := time.Now().Add(-time.Hour)
	s.now = func() time.Time { return issued }
	matchID := uuid.New()
	tok, err := s.IssueSeat(matchID, uuid.New(), "a")
	require.NoError(t, err)

	s.now = time.Now
	_, err = s.VerifySeat(tok, matchID)
	require.Error(t, err)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestSeatFromOtherSignerRejected(t *testing.T) {
	a, err := NewSeatSigner(0)
	require.NoError(t, err)
	b, err := NewSeatSigner(0)
	require.NoError(t, err)
	matchID := uuid.New()
	tok, err := a.IssueSeat(matchID, uuid.New(), "a")
	require.NoError(t, err)

	_, err = b.VerifySeat(tok, matchID)
	assert.Error(t, err)
}
