package effects

import "math"

// Limiter is a stateless soft-knee limiter. Samples above the threshold are
// squashed by tanh into the remaining headroom, so output magnitude stays
// below 1 for any threshold in [0, 1).
type Limiter struct {
	threshold float64
	amount    float64
}

// NewLimiter creates a limiter with the given amount in [0, 1].
func NewLimiter(amount float64) *Limiter {
	l := &Limiter{}
	l.SetAmount(amount)
	return l
}

// SetAmount sets the knee steepness and derives the threshold as
// 0.9 - amount*0.4.
func (l *Limiter) SetAmount(amount float64) {
	l.amount = clamp(amount, 0, 1)
	l.threshold = 0.9 - l.amount*0.4
}

func (l *Limiter) Amount() float64    { return l.amount }
func (l *Limiter) Threshold() float64 { return l.threshold }

func (l *Limiter) Process(x float64) float64 {
	mag := math.Abs(x)
	if mag <= l.threshold {
		return x
	}
	limited := l.threshold + math.Tanh((mag-l.threshold)*l.amount)*(1-l.threshold)
	if x < 0 {
		return -limited
	}
	return limited
}

func (l *Limiter) Reset() {}
