package scoring

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand"
	"sync"
)

// lockedSource wraps math/rand with a mutex so one scorer can serve
// concurrent requests.
type lockedSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSeededSource returns a Source seeded from crypto/rand. Each
// process gets a different jitter stream.
func NewSeededSource() Source {
	var b [8]byte
	seed := int64(rand.Int63())
	if _, err := crand.Read(b[:]); err == nil {
		seed = int64(binary.LittleEndian.Uint64(b[:])) //nolint:gosec // jitter seed, not security-sensitive
	}
	return &lockedSource{rng: rand.New(rand.NewSource(seed))} //nolint:gosec // jitter only
}

// NewFixedSource returns a Source cycling through the given values.
// Intended for tests that need exact ordering.
func NewFixedSource(values ...float64) Source {
	return &fixedSource{values: values}
}

func (s *lockedSource) Next() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

type fixedSource struct {
	mu     sync.Mutex
	values []float64
	idx    int
}

func (s *fixedSource) Next() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.idx%len(s.values)]
	s.idx++
	return v
}
