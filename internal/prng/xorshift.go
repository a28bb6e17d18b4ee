package prng

import "math"

// Xorshift32 is a 32-bit xorshift generator. Each component that needs noise
// owns one so streams never interfere with each other.
type Xorshift32 struct {
	state uint32
}

// New returns a generator seeded with seed. A zero seed would lock the
// generator at zero, so it is replaced with 1.
func New(seed uint32) Xorshift32 {
	if seed == 0 {
		seed = 1
	}
	return Xorshift32{state: seed}
}

// Next advances the generator and returns the new state.
func (x *Xorshift32) Next() uint32 {
	s := x.state
	s ^= s << 13
	s ^= s >> 17
	s ^= s << 5
	x.state = s
	return s
}

// Bipolar advances the generator and maps the result onto [-1, 1].
func (x *Xorshift32) Bipolar() float64 {
	return float64(x.Next())/float64(math.MaxUint32)*2 - 1
}

// State returns the current internal state.
func (x *Xorshift32) State() uint32 {
	return x.state
}
