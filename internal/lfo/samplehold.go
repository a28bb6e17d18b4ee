package lfo

import (
	"math"

	"github.com/cbegin/industrial-go/internal/prng"
)

const (
	MinSampleHoldRateHz = 1.0
	MaxSampleHoldRateHz = 200.0
	MaxSlewMs           = 50.0

	sampleHoldSeed = 54321
)

// SampleHold draws a new random target at a fixed rate and glides toward it
// with a one-pole slew.
type SampleHold struct {
	rng        prng.Xorshift32
	rateHz     float64
	slewMs     float64
	slewCoeff  float64
	counter    float64
	current    float64
	target     float64
	sampleRate float64
}

func NewSampleHold(sampleRate float64) SampleHold {
	return SampleHold{
		rng:        prng.New(sampleHoldSeed),
		rateHz:     5,
		slewCoeff:  1,
		sampleRate: sampleRate,
	}
}

// SetRate sets the draw rate, clamped to [1, 200] Hz.
func (s *SampleHold) SetRate(rateHz float64) {
	s.rateHz = clamp(rateHz, MinSampleHoldRateHz, MaxSampleHoldRateHz)
}

// SetSlew sets the glide time in milliseconds, clamped to [0, 50]. Below
// 0.1 ms the output jumps straight to each new target.
func (s *SampleHold) SetSlew(ms float64) {
	ms = clamp(ms, 0, MaxSlewMs)
	s.slewMs = ms
	if ms < 0.1 {
		s.slewCoeff = 1
		return
	}
	s.slewCoeff = 1 - math.Exp(-1/(ms*0.001*s.sampleRate))
}

func (s *SampleHold) Rate() float64 { return s.rateHz }
func (s *SampleHold) Slew() float64 { return s.slewMs }

func (s *SampleHold) Tick() float64 {
	period := math.Max(s.sampleRate/s.rateHz, 1)
	if s.counter >= period {
		s.counter = 0
		s.target = s.rng.Bipolar()
	}
	s.current += (s.target - s.current) * s.slewCoeff
	s.counter++
	return s.current
}

// Reset zeros the counter and held values. The random stream continues.
func (s *SampleHold) Reset() {
	s.counter = 0
	s.current = 0
	s.target = 0
}
