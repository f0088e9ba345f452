package pkg

import (
	"math/rand"

	"github.com/google/uuid"
)

// GenerateSessionKey - returns a new random session key.
func GenerateSessionKey() string {
	return uuid.NewString()
}

// Random picks from the process-wide generator, which is safe for concurrent use.
type Random struct{}

func (Random) Intn(n int) int {
	return rand.Intn(n)
}
