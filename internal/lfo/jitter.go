package lfo

import (
	"math"

	"github.com/cbegin/industrial-go/internal/prng"
)

const jitterSeed = 98765

// Jitter is per-sample bipolar noise scaled by a bandwidth factor.
type Jitter struct {
	rng        prng.Xorshift32
	sampleRate float64
}

func NewJitter(sampleRate float64) Jitter {
	return Jitter{rng: prng.New(jitterSeed), sampleRate: sampleRate}
}

// Tick returns a fresh draw scaled by min(bandHz/sampleRate, 0.01).
func (j *Jitter) Tick(bandHz float64) float64 {
	return j.rng.Bipolar() * math.Min(bandHz/j.sampleRate, 0.01)
}
