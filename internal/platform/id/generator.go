package id

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"strings"
)

// Generator creates opaque IDs suitable for external references.
type Generator interface {
	NewID() (string, error)
}

var encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// RandomGenerator produces 20-character lowercase base32 identifiers
// backed by crypto/rand.
type RandomGenerator struct{}

func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{}
}

func (g *RandomGenerator) NewID() (string, error) {
	raw := make([]byte, 12)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}

	return strings.ToLower(encoding.EncodeToString(raw)), nil
}
