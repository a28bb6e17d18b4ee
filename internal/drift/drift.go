// Package drift generates a slow pitch drift shared by all voices.
package drift

import "math"

type Type int

const (
	TypeSine Type = iota
	TypeSlowRise
)

const (
	MinSpeed = 0.1
	MaxSpeed = 10.0

	// Full-scale drift is +/-2% of pitch.
	depthScale = 0.02
)

type Generator struct {
	amount     float64
	speed      float64
	typ        Type
	phase      float64
	sampleRate float64
}

func New(sampleRate float64) *Generator {
	return &Generator{speed: 1, sampleRate: sampleRate}
}

// SetAmount sets the drift depth, clamped to [0, 1].
func (g *Generator) SetAmount(amount float64) {
	g.amount = clamp(amount, 0, 1)
}

// SetSpeed sets the phase rate, clamped to [0.1, 10].
func (g *Generator) SetSpeed(speed float64) {
	g.speed = clamp(speed, MinSpeed, MaxSpeed)
}

// SetType selects the drift contour. Unknown types fall back to sine.
func (g *Generator) SetType(t Type) {
	if t != TypeSlowRise {
		t = TypeSine
	}
	g.typ = t
}

func (g *Generator) Amount() float64 { return g.amount }
func (g *Generator) Speed() float64 { return g.speed }
func (g *Generator) Type() Type { return g.typ }

// Process advances the phase once and returns a multiplicative pitch offset.
func (g *Generator) Process() float64 {
	g.phase += g.speed / g.sampleRate
	g.phase -= math.Floor(g.phase)
	var v float64
	if g.typ == TypeSlowRise {
		v = math.Sin(g.phase*2*math.Pi*0.1)*0.5 + 0.5
	} else {
		v = math.Sin(g.phase * 2 * math.Pi)
	}
	return v * g.amount * depthScale
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Min(math.Max(v, lo), hi)
}
