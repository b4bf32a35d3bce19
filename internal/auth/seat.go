// internal/auth/seat.go
package auth

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrWrongMatch is returned when a valid seat token is presented to another match.
var ErrWrongMatch = errors.New("seat token is for a different match")

// SeatClaims bind a bearer to one side of one match.
type SeatClaims struct {
	MatchID uuid.UUID `json:"mid"`
	Side    string    `json:"side"`
	jwt.RegisteredClaims
}

// SeatSigner issues and verifies seat tokens with an ed25519 key pair.
type SeatSigner struct {
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey
	ttl        time.Duration
	now        func() time.Time
}

// NewSeatSigner generates a fresh key pair. ttl of 0 issues tokens that never expire.
func NewSeatSigner(ttl time.Duration) (*SeatSigner, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ed25519 key pair: %w", err)
	}
	return &SeatSigner{privateKey: priv, publicKey: pub, ttl: ttl, now: time.Now}, nil
}

// NewSeatSignerFromKey uses an existing private key.
func NewSeatSignerFromKey(priv ed25519.PrivateKey, ttl time.Duration) (*SeatSigner, error) {
	if len(priv) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("invalid ed25519 private key size %d", len(priv))
	}
	pub, _ := priv.Public().(ed25519.PublicKey)
	return &SeatSigner{privateKey: priv, publicKey: pub, ttl: ttl, now: time.Now}, nil
}

// IssueSeat creates a signed token for side of matchID, with "sub" = userID.
func (s *SeatSigner) IssueSeat(matchID, userID uuid.UUID, side string) (string, error) {
	now := s.now()
	claims := SeatClaims{
		MatchID: matchID,
		Side:    side,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  userID.String(),
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if s.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.ttl))
	}
	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	return token.SignedString(s.privateKey)
}

// VerifySeat checks a token's signature and expiry and that it belongs to matchID.
func (s *SeatSigner) VerifySeat(tokenString string, matchID uuid.UUID) (*SeatClaims, error) {
	var claims SeatClaims
	t, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.publicKey, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("jwt parse error: %w", err)
	}
	if !t.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.MatchID != matchID {
		return nil, ErrWrongMatch
	}
	if claims.Side == "" {
		return nil, fmt.Errorf("missing side in seat token")
	}
	return &claims, nil
}
