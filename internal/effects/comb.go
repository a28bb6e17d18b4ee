package effects

import "math"

const (
	MinCombFreq = 50.0
	MaxCombFreq = 1000.0
)

// Comb is a feedback comb filter with a one-pole damper and tanh in the
// feedback path, which keeps it bounded even at maximum feedback.
type Comb struct {
	buf        []float64
	pos        int
	damp       float64
	sampleRate float64
}

// NewComb allocates a 20 ms delay line.
func NewComb(sampleRate float64) *Comb {
	return &Comb{
		buf:        make([]float64, int(0.02*sampleRate)+1),
		sampleRate: sampleRate,
	}
}

// Process runs one sample. freq is the control value in [50, 1000], mapped
// exponentially onto the resonant frequency. The damped delay output is
// returned.
func (c *Comb) Process(in, freq, feedback, damping float64) float64 {
	n := len(c.buf)
	f := clamp(MinCombFreq*math.Pow(20, freq/1000), MinCombFreq, MaxCombFreq)
	delay := minInt(maxInt(int(c.sampleRate/f), 1), n-1)
	read := (c.pos + n - delay) % n
	delayed := c.buf[read]

	c.damp += (delayed - c.damp) * (1 - clamp(damping, 0, 1))
	c.buf[c.pos] = in + math.Tanh(c.damp*clamp(feedback, 0, 0.99))
	c.pos = (c.pos + 1) % n
	return c.damp
}

func (c *Comb) Reset() {
	for i := range c.buf {
		c.buf[i] = 0
	}
	c.pos = 0
	c.damp = 0
}
