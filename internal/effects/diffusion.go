package effects

// allpass is a single-sample Schroeder allpass section.
type allpass struct {
	buf   float64
	coeff float64
}

func (a *allpass) process(in float64) float64 {
	out := -in + a.buf
	a.buf = in + a.coeff*out
	return out
}

var diffusionCoeffs = [4]float64{0.7, 0.5, 0.3, 0.1}

// Diffusion smears transients through four cascaded allpass sections and
// blends the result with the dry signal.
type Diffusion struct {
	stages [4]allpass
	mix    float64
}

func NewDiffusion() *Diffusion {
	d := &Diffusion{}
	for i := range d.stages {
		d.stages[i].coeff = diffusionCoeffs[i]
	}
	return d
}

// SetMix sets the wet amount, clamped to [0, 1].
func (d *Diffusion) SetMix(mix float64) {
	d.mix = clamp(mix, 0, 1)
}

func (d *Diffusion) Mix() float64 { return d.mix }

// Process bypasses the network entirely when mix is zero, leaving the
// allpass state untouched.
func (d *Diffusion) Process(in float64) float64 {
	if d.mix <= 0 {
		return in
	}
	wet := in
	for i := range d.stages {
		wet = d.stages[i].process(wet)
	}
	return in*(1-d.mix) + wet*d.mix
}

func (d *Diffusion) Reset() {
	for i := range d.stages {
		d.stages[i].buf = 0
	}
}
