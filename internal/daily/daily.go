// Package daily derives the deterministic randomness behind "daily" games:
// everyone playing on the same UTC date gets the same scrambles and, for the
// same sequence of moves, the same words.
package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"math/rand/v2"
	"time"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Seed returns HMAC-SHA256(salt, YYYY-MM-DD) folded into two 64-bit halves.
func Seed(date time.Time, salt string) (hi, lo uint64) {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	return binary.BigEndian.Uint64(sum[:8]), binary.BigEndian.Uint64(sum[8:16])
}

// Source returns a PCG generator seeded for date.
// The generator is not safe for concurrent use on its own.
func Source(date time.Time, salt string) *rand.Rand {
	hi, lo := Seed(date, salt)
	return rand.New(rand.NewPCG(hi, lo))
}
