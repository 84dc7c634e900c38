package randutil

import (
	crand "crypto/rand"
	rand "math/rand/v2"
)

const (
	goldenRatio64 = 0x9e3779b97f4a7c15
)

// New returns a *rand.Rand seeded deterministically from the provided int64.
// Used by tests and seeded simulations so a run can be replayed exactly.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// NewSecure returns a ChaCha8 generator keyed from crypto/rand. Tables use it
// for shuffles and button draws when no seed is configured, so card order
// cannot be predicted from earlier hands.
func NewSecure() *rand.Rand {
	var key [32]byte
	if _, err := crand.Read(key[:]); err != nil {
		panic("randutil: crypto/rand unavailable: " + err.Error())
	}
	return rand.New(rand.NewChaCha8(key))
}

// FromSeed picks between New and NewSecure: a nil seed means unpredictable.
func FromSeed(seed *int64) *rand.Rand {
	if seed == nil {
		return NewSecure()
	}
	return New(*seed)
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
