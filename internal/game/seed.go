// internal/game/seed.go
package game

import (
	"encoding/binary"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

// DeriveSeed turns a match ID into the shuffle seed, keyed by a server secret so
// clients cannot predict deck order while the server can replay a match.
func DeriveSeed(matchID uuid.UUID, secret []byte) int64 {
	if len(secret) > blake2b.Size {
		sum := blake2b.Sum256(secret)
		secret = sum[:]
	}
	h, err := blake2b.New256(secret)
	if err != nil {
		// only reachable with an oversized key, which is folded above
		sum := blake2b.Sum256(matchID[:])
		return int64(binary.BigEndian.Uint64(sum[:8]))
	}
	h.Write(matchID[:])
	return int64(binary.BigEndian.Uint64(h.Sum(nil)[:8]))
}
