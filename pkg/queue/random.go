package queue

import "math/rand/v2"

// RandomSource yields uniformly distributed values in [0, 1).
// *rand.Rand from math/rand/v2 satisfies it.
type RandomSource interface {
	Float64() float64
}

// RandomFunc adapts a function to RandomSource.
type RandomFunc func() float64

func (f RandomFunc) Float64() float64 { return f() }

// defaultRandom uses the goroutine-safe top-level generator.
func defaultRandom() RandomSource {
	return RandomFunc(rand.Float64)
}
