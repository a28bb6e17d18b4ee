package effects

import "math"

// Saturate is an asymmetric tanh waveshaper: the negative half is driven a
// little harder and scaled down.
func Saturate(x, drive float64) float64 {
	d := x * drive
	if d > 0 {
		return math.Tanh(d)
	}
	return math.Tanh(d*1.2) * 0.95
}

// Wavefold wraps in*amount back into a two-unit window. Amounts at or below 1
// pass the input through unchanged.
func Wavefold(in, amount float64) float64 {
	if amount <= 1 {
		return in
	}
	x := in * amount
	return x - 2*math.Floor(x*0.5)
}

// Bitcrush quantises x onto 2^bits steps per unit.
func Bitcrush(x, bits float64) float64 {
	steps := math.Pow(2, bits)
	return math.Round(x*steps) / steps
}

// Drive applies gain followed by a hard clip to [-1, 1].
type Drive struct {
	gain float64
}

func NewDrive(gain float64) *Drive {
	return &Drive{gain: gain}
}

func (d *Drive) SetGain(gain float64) { d.gain = gain }

func (d *Drive) Process(x float64) float64 {
	return clamp(x*d.gain, -1, 1)
}

func (d *Drive) Reset() {}

// Gain is a plain multiplier.
type Gain struct {
	gain float64
}

func NewGain(gain float64) *Gain {
	return &Gain{gain: gain}
}

func (g *Gain) SetGain(gain float64) { g.gain = gain }

func (g *Gain) Process(x float64) float64 { return x * g.gain }

func (g *Gain) Reset() {}
