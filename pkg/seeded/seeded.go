// Package seeded provides a small deterministic pseudo-random sequence.
// The same seed always yields the same sequence on every platform.
package seeded

import "unicode/utf16"

// SeedFromString hashes s with the classic 31-multiplier string hash over
// its UTF-16 code units, using wrapping 32-bit signed arithmetic, and returns
// the absolute value.
func SeedFromString(s string) uint32 {
	var h int32
	for _, u := range utf16.Encode([]rune(s)) {
		h = 31*h + int32(u)
	}
	if h < 0 {
		// widened first so MinInt32 has an absolute value
		return uint32(-int64(h))
	}
	return uint32(h)
}

// Sequence is a linear congruential generator over uint32.
type Sequence struct {
	state uint32
}

func New(seed uint32) *Sequence {
	return &Sequence{state: seed}
}

func FromString(s string) *Sequence {
	return New(SeedFromString(s))
}

func (s *Sequence) Next() uint32 {
	s.state = s.state*1664525 + 1013904223
	return s.state
}

// Intn returns a value in [0, n). n must be positive.
func (s *Sequence) Intn(n int) int {
	return int(s.Next() % uint32(n))
}

// Shuffle returns a shuffled copy of items, leaving items untouched.
func Shuffle[T any](seq *Sequence, items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	for i := len(out) - 1; i > 0; i-- {
		j := seq.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
