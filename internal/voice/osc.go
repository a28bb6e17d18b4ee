package voice

import (
	"math"

	"github.com/cbegin/industrial-go/internal/prng"
)

const twoPi = math.Pi * 2

// Algorithm selects the oscillator used by every voice.
type Algorithm int

const (
	AlgoFM Algorithm = iota
	AlgoWavetable
	AlgoAdditive
	AlgoPhaseDistortion
	AlgoVector
	AlgoGranular
	AlgoModal

	NumAlgorithms = 7
)

func (a Algorithm) String() string {
	switch a {
	case AlgoFM:
		return "fm"
	case AlgoWavetable:
		return "wavetable"
	case AlgoAdditive:
		return "additive"
	case AlgoPhaseDistortion:
		return "phase-distortion"
	case AlgoVector:
		return "vector"
	case AlgoGranular:
		return "granular"
	case AlgoModal:
		return "modal"
	default:
		return "unknown"
	}
}

const (
	maxHarmonics = 16
	modalModes   = 6
	noiseSeed    = 123456
)

// oscInput carries the per-sample values an algorithm may read.
type oscInput struct {
	drifted    float64 // carrier phase with analog drift applied
	modPhase   float64 // FM modulator phase
	freq       float64 // modulated frequency in Hz
	modEnv     float64
	modIndex   float64
	feedback   float64
	last       float64 // previous oscillator output, for FM feedback
	syncAmount float64
	wavetable  float64
	envCounter float64 // amplitude envelope counter, drives modal decay
	sampleRate float64
	shared     *Shared
}

// oscillators holds the state of every algorithm so switching algorithms
// mid-note does not disturb the others.
type oscillators struct {
	fm       fmOsc
	vector   vectorOsc
	granular granularOsc
}

func newOscillators() oscillators {
	return oscillators{vector: vectorOsc{rng: prng.New(noiseSeed)}}
}

func (o *oscillators) next(alg Algorithm, in *oscInput) float64 {
	switch alg {
	case AlgoFM:
		return o.fm.next(in)
	case AlgoWavetable:
		return wavetableMorph(in.drifted, in.wavetable)
	case AlgoAdditive:
		return additive(in.drifted, in.shared.HarmonicsCount, in.shared.HarmonicRolloff)
	case AlgoPhaseDistortion:
		return phaseDistort(in.drifted, in.shared.PhaseDistAmount)
	case AlgoVector:
		return o.vector.next(in.drifted, in.shared.VectorX, in.shared.VectorY)
	case AlgoGranular:
		return o.granular.next(in)
	case AlgoModal:
		return modal(in)
	default:
		return math.Sin(twoPi * in.drifted)
	}
}

// fmOsc is two-operator phase modulation with optional hard sync of the
// carrier to a master oscillator at the note frequency.
type fmOsc struct {
	master float64
	slave  float64
}

func (f *fmOsc) next(in *oscInput) float64 {
	index := in.modIndex * (1 + in.modEnv*4)
	mod := math.Sin(twoPi * in.modPhase)
	var carrier float64
	if in.syncAmount > 0 {
		ratio := 1 + math.Pow(2, in.syncAmount) - 1
		prev := f.master
		f.master = fract(f.master + in.freq/in.sampleRate)
		if prev > f.master {
			f.slave = 0
		}
		f.slave = fract(f.slave + in.freq*ratio/in.sampleRate)
		carrier = f.slave + mod*index/twoPi + in.last*in.feedback
	} else {
		carrier = in.drifted + mod*index + in.last*in.feedback
	}
	return math.Sin(twoPi * carrier)
}

// wavetableMorph crossfades sine -> triangle -> saw -> square across pos.
func wavetableMorph(phase, pos float64) float64 {
	sine := math.Sin(twoPi * phase)
	tri := 1 - math.Abs(phase*4-2)
	saw := 1 - 2*phase
	square := -1.0
	if phase < 0.5 {
		square = 1
	}
	switch {
	case pos < 0.333:
		b := pos / 0.333
		return sine*(1-b) + tri*b
	case pos < 0.666:
		b := (pos - 0.333) / 0.333
		return tri*(1-b) + saw*b
	default:
		b := (pos - 0.666) / 0.334
		return saw*(1-b) + square*b
	}
}

func additive(phase float64, count int, rolloff float64) float64 {
	n := count
	if n > maxHarmonics {
		n = maxHarmonics
	}
	if n < 1 {
		n = 1
	}
	var sum float64
	for h := 1; h <= n; h++ {
		fh := float64(h)
		sum += math.Sin(twoPi*phase*fh) / math.Pow(fh, rolloff)
	}
	return sum / math.Sqrt(float64(n))
}

// phaseDistort speeds up the first half of the cycle and slows the second.
func phaseDistort(phase, amount float64) float64 {
	var p float64
	if phase < 0.5 {
		p = phase * (1 + amount)
	} else {
		p = 0.5 + (phase-0.5)*(1-amount)
	}
	return math.Sin(twoPi * fract(p))
}

// vectorOsc bilinearly blends sine, saw, square and noise on an x/y pad.
type vectorOsc struct {
	rng prng.Xorshift32
}

func (v *vectorOsc) next(phase, x, y float64) float64 {
	sine := math.Sin(twoPi * phase)
	saw := 1 - 2*phase
	square := -1.0
	if phase < 0.5 {
		square = 1
	}
	noise := v.rng.Bipolar()
	top := sine*(1-x) + saw*x
	bottom := square*(1-x) + noise*x
	return top*(1-y) + bottom*y
}

// granularOsc retriggers Hann-windowed sine grains at a rate set by grain
// size and density.
type granularOsc struct {
	counter float64
	phase   float64
	env     float64
}

func (g *granularOsc) next(in *oscInput) float64 {
	size := math.Max(in.shared.GrainSizeMs/1000*in.sampleRate, 10)
	rate := in.sampleRate / size
	perSecond := rate * clamp(in.shared.GrainDensity, 0.1, 10)
	g.counter += perSecond / in.sampleRate
	if g.counter >= 1 {
		g.counter = 0
		g.phase = 0
		g.env = 0
	}
	if g.phase >= 1 {
		return 0
	}
	g.phase += 1 / size
	g.env = (1 - math.Cos(twoPi*g.phase)) * 0.5
	return math.Sin(twoPi*in.drifted) * g.env
}

// modal sums six inharmonic partials that decay faster the higher they sit.
func modal(in *oscInput) float64 {
	stiffness := in.shared.ModalStiffness
	inharm := in.shared.ModalInharmonicity
	var sum float64
	for m := 1; m <= modalModes; m++ {
		fm := float64(m)
		ratio := fm * (1 + inharm*0.1*fm)
		phase := fract(in.drifted * ratio)
		decay := (1 - stiffness*0.1) * fm
		env := math.Exp(-decay * in.envCounter / in.sampleRate)
		sum += math.Sin(twoPi*phase) * env / math.Sqrt(fm)
	}
	return sum / math.Sqrt(modalModes)
}

// fract returns the fractional part, keeping the sign of x.
func fract(x float64) float64 {
	return x - math.Trunc(x)
}
