package common

import (
	"crypto/rand"
	"encoding/hex"
	"math"
)

// MakeRandHexString returns size random bytes encoded as hex (2*size chars).
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// RoundCents rounds a money amount to two decimal places.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
