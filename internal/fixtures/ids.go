package fixtures

import (
	"math/rand/v2"
	"sync"
	"time"
)

const (
	// MinPetID is the smallest identifier handed out by IDGenerator.
	MinPetID int64 = 1
	// MaxPetID is the exclusive upper bound of generated identifiers.
	MaxPetID int64 = 1_000_000
)

// IDGenerator produces pseudo-random pet identifiers for fixtures. Distinctness is
// best effort only: two calls may return the same value.
type IDGenerator struct {
	mu   sync.Mutex
	rng  *rand.Rand
	seed uint64
}

// NewIDGenerator returns a generator whose sequence is fully determined by seed.
func NewIDGenerator(seed uint64) *IDGenerator {
	return &IDGenerator{
		rng:  rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		seed: seed,
	}
}

// NewRandomIDGenerator seeds a generator from the wall clock.
func NewRandomIDGenerator() *IDGenerator {
	return NewIDGenerator(uint64(time.Now().UnixNano()))
}

// Seed reports the seed the generator was built with so failing runs can be replayed.
func (g *IDGenerator) Seed() uint64 {
	return g.seed
}

// NextID returns an identifier in [MinPetID, MaxPetID).
func (g *IDGenerator) NextID() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return MinPetID + g.rng.Int64N(MaxPetID-MinPetID)
}

// MissingPetID derives an identifier from a timestamp that a service is unlikely to
// have stored. It is outside the range NextID produces.
func MissingPetID(now time.Time) int64 {
	return now.UnixMilli()
}
