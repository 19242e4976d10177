package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPRNGService_Deterministic(t *testing.T) {
	a, b := NewPRNGService(7), NewPRNGService(7)
	for i := 0; i < 20; i++ {
		assert.Equal(t, a.Intn(100), b.Intn(100))
	}
	assert.Equal(t, int64(7), a.Seed())
	assert.NotZero(t, NewPRNGService(0).Seed())
}

func TestPRNGService_Chance(t *testing.T) {
	s := NewPRNGService(1)
	for i := 0; i < 50; i++ {
		assert.False(t, s.Chance(0))
		assert.True(t, s.Chance(1))
	}
}

func TestMoveTowards(t *testing.T) {
	x, y, left := MoveTowards(0, 0, 10, 0, 4)
	assert.InDelta(t, 4, x, 1e-9)
	assert.InDelta(t, 0, y, 1e-9)
	assert.Zero(t, left)

	x, y, left = MoveTowards(0, 0, 3, 4, 7)
	assert.Equal(t, 3.0, x)
	assert.Equal(t, 4.0, y)
	assert.InDelta(t, 2, left, 1e-9)
}

func TestClampAndLerp(t *testing.T) {
	assert.Equal(t, 1.0, Clamp(3, 0, 1))
	assert.Equal(t, 0.0, Clamp(-3, 0, 1))
	assert.Equal(t, 5.0, Lerp(0, 10, 0.5))
}
