package ensemble

import (
	"math/rand"
	"sync"
)

// RandomStream hands out seeds from one seeded generator. Draws are
// serialized, so the sequence depends only on the seed and the call order.
type RandomStream struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandomStream(seed int64) *RandomStream {
	return &RandomStream{rng: rand.New(rand.NewSource(seed))}
}

func (s *RandomStream) Next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Int63()
}
