package randutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewIsDeterministic(t *testing.T) {
	t.Parallel()

	a, b := New(42), New(42)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.IntN(1000), b.IntN(1000))
	}

	c := New(43)
	same := 0
	a = New(42)
	for i := 0; i < 100; i++ {
		if a.Uint64() == c.Uint64() {
			same++
		}
	}
	assert.Less(t, same, 5, "neighbouring seeds should diverge")
}

func TestFromSeed(t *testing.T) {
	t.Parallel()

	seed := int64(7)
	assert.Equal(t, New(7).Uint64(), FromSeed(&seed).Uint64())
	assert.NotNil(t, FromSeed(nil))
	assert.NotEqual(t, NewSecure().Uint64(), NewSecure().Uint64())
}
