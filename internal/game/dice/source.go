package dice

import (
	crand "crypto/rand"
	"math/rand/v2"
	"sync"
)

// lockedSource serialises access to a ChaCha8 generator.
type lockedSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSource returns a concurrency-safe Source seeded from the operating
// system's entropy.
func NewSource() Source {
	var seed [32]byte
	_, _ = crand.Read(seed[:]) // never returns an error since Go 1.24
	return NewSeededSource(seed)
}

// NewSeededSource returns a Source whose sequence is fully determined by seed.
func NewSeededSource(seed [32]byte) Source {
	return &lockedSource{rng: rand.New(rand.NewChaCha8(seed))}
}

// Intn panics if n <= 0.
func (s *lockedSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

// Sequence replays fixed zero-based values in order, wrapping around.
// Tests and scripted demos use it. Not safe for concurrent use.
type Sequence struct {
	Values []int
	next   int
}

// Intn returns the next value reduced into [0, n).
func (s *Sequence) Intn(n int) int {
	if len(s.Values) == 0 {
		return 0
	}
	v := s.Values[s.next%len(s.Values)]
	s.next++
	return ((v % n) + n) % n
}
