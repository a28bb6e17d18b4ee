package effects

import "math"

// Chorus is a modulated delay line with its own sine LFO. It returns the wet
// signal only; callers blend it with the dry path.
type Chorus struct {
	buf        []float64
	pos        int
	lfoPhase   float64 // [0, 1)
	sampleRate float64
}

// NewChorus allocates a 50 ms delay line.
func NewChorus(sampleRate float64) *Chorus {
	n := int(0.05 * sampleRate)
	if n < 1 {
		n = 1
	}
	return &Chorus{
		buf:        make([]float64, n),
		sampleRate: sampleRate,
	}
}

// Process runs one sample. depthMs sets the centre delay; the LFO swings it
// by half in either direction.
func (c *Chorus) Process(in, rateHz, depthMs, feedback float64) float64 {
	n := len(c.buf)
	delay := float64(int(depthMs / 1000 * c.sampleRate))
	lfo := math.Sin(2 * math.Pi * c.lfoPhase)
	mod := int(math.Max(delay*(1+lfo*0.5), 1))
	read := (c.pos + n - mod%n) % n
	delayed := c.buf[read]

	c.buf[c.pos] = in + delayed*clamp(feedback, 0, 0.99)
	c.pos = (c.pos + 1) % n

	c.lfoPhase += rateHz / c.sampleRate
	c.lfoPhase -= math.Floor(c.lfoPhase)
	return delayed
}

func (c *Chorus) Reset() {
	for i := range c.buf {
		c.buf[i] = 0
	}
	c.pos = 0
	c.lfoPhase = 0
}
