package core

import (
	"math/rand"
	"sync"
)

// Rand is the randomness the engine draws on: map seeds, AI targets, bomb rolls.
// Implementations must be safe for concurrent use.
type Rand interface {
	Intn(n int) int
	Float64() float64
	Int63() int64
}

// LockedRand is a seeded *rand.Rand guarded by a mutex
type LockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewLockedRand returns a concurrency-safe generator for seed
func NewLockedRand(seed int64) *LockedRand {
	return &LockedRand{r: rand.New(rand.NewSource(seed))}
}

func (l *LockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}

func (l *LockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

func (l *LockedRand) Int63() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Int63()
}
