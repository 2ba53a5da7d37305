// Package runid generates a short, human-shareable identifier for one
// analysis run, stamped on its summary and shown in the table and JSON
// reports (the detailed CSV rows do not carry it). It generalizes the teacher's crypto/rand
// transaction-ID generator (internal/random in the source), dropping the
// port-pool/cache-poisoning machinery that run identification doesn't need.
package runid

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// byteLen is the number of random bytes encoded into an identifier, giving
// 64 bits of entropy — plenty to avoid collisions between runs logged to
// the same directory without needing a counter or clock.
const byteLen = 8

// New returns a new random run identifier, e.g. "a1b2c3d4e5f6a7b8".
// NEVER use math/rand here: predictability would let two concurrent runs
// started from the same seed collide.
func New() string {
	var buf [byteLen]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return hex.EncodeToString(buf[:])
}
