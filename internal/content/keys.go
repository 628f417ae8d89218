package content

import (
	"math/rand"

	"github.com/google/uuid"
)

// KeyFunc generates content blob keys. The generator must produce keys
// random enough that collisions are negligible: keys are never checked for
// existence before a write, so a collision silently overwrites.
type KeyFunc func() string

const (
	letterKeyLength = 10
	letters         = "abcdefghijklmnopqrstuvwxyz"
)

// LettersKey returns a 10-character lowercase key (~2.8e14 combinations).
// UUIDKey is the safer choice for new deployments.
func LettersKey() string {
	b := make([]byte, letterKeyLength)
	for i := range b {
		b[i] = letters[rand.Intn(len(letters))]
	}
	return string(b)
}

// UUIDKey returns a random UUID string.
func UUIDKey() string {
	return uuid.NewString()
}

// KeyFuncFor maps a configured strategy name to its generator. Unknown
// strategies fall back to the letters scheme.
func KeyFuncFor(strategy string) KeyFunc {
	if strategy == "uuid" {
		return UUIDKey
	}
	return LettersKey
}
