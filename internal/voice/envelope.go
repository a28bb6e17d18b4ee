package voice

import "math"

type EnvState int

const (
	EnvIdle EnvState = iota
	EnvAttack
	EnvDecay
	EnvSustain
	EnvRelease
)

func (s EnvState) String() string {
	switch s {
	case EnvAttack:
		return "attack"
	case EnvDecay:
		return "decay"
	case EnvSustain:
		return "sustain"
	case EnvRelease:
		return "release"
	default:
		return "idle"
	}
}

const (
	MinStageMs   = 0.1
	MaxStageMs   = 5000.0
	MaxReleaseMs = 10000.0
)

// Envelope is a linear ADSR. Release ramps from the sustain level regardless
// of where the envelope was when the note was released.
type Envelope struct {
	state      EnvState
	counter    float64
	level      float64
	attackMs   float64
	decayMs    float64
	sustain    float64
	releaseMs  float64
	sampleRate float64
}

func NewEnvelope(sampleRate float64) Envelope {
	return Envelope{
		attackMs:   5,
		decayMs:    200,
		sustain:    0.7,
		releaseMs:  300,
		sampleRate: sampleRate,
	}
}

// Set configures the stage times and sustain level, clamping each to its range.
func (e *Envelope) Set(attackMs, decayMs, sustain, releaseMs float64) {
	e.attackMs = clamp(attackMs, MinStageMs, MaxStageMs)
	e.decayMs = clamp(decayMs, MinStageMs, MaxStageMs)
	e.sustain = clamp(sustain, 0, 1)
	e.releaseMs = clamp(releaseMs, MinStageMs, MaxReleaseMs)
}

// Trigger restarts the envelope from the attack stage.
func (e *Envelope) Trigger() {
	e.state = EnvAttack
	e.counter = 0
}

// Release moves to the release stage.
func (e *Envelope) Release() {
	e.state = EnvRelease
	e.counter = 0
}

// Kill silences the envelope immediately.
func (e *Envelope) Kill() {
	e.state = EnvIdle
	e.level = 0
}

func (e *Envelope) samples(ms float64) float64 {
	return stageSamples(ms, e.sampleRate)
}

// stageSamples converts a stage length to samples, never less than one.
func stageSamples(ms, sampleRate float64) float64 {
	return math.Max(ms/1000*sampleRate, 1)
}

// Next advances one sample and returns the level. done reports that the
// release stage just completed.
func (e *Envelope) Next() (level float64, done bool) {
	switch e.state {
	case EnvAttack:
		n := e.samples(e.attackMs)
		if e.counter >= n {
			e.state = EnvDecay
			e.counter = 0
			e.level = 1
		} else {
			e.level = e.counter / n
		}
		e.counter++
	case EnvDecay:
		n := e.samples(e.decayMs)
		if e.counter >= n {
			e.state = EnvSustain
			e.level = e.sustain
		} else {
			e.level = 1 - (e.counter/n)*(1-e.sustain)
		}
		e.counter++
	case EnvSustain:
		e.level = e.sustain
	case EnvRelease:
		n := e.samples(e.releaseMs)
		if e.counter >= n {
			e.state = EnvIdle
			e.level = 0
			return 0, true
		}
		e.level = e.sustain * (1 - e.counter/n)
		e.counter++
	default:
		e.level = 0
	}
	return e.level, false
}

func (e *Envelope) State() EnvState  { return e.state }
func (e *Envelope) Level() float64   { return e.level }
func (e *Envelope) Counter() float64 { return e.counter }

const (
	modAttackMs = 50.0
	modDecayMs  = 500.0
)

// ModEnvelope is a fixed attack-decay contour used to brighten FM attacks.
type ModEnvelope struct {
	counter    float64
	sampleRate float64
}

func NewModEnvelope(sampleRate float64) ModEnvelope {
	return ModEnvelope{sampleRate: sampleRate}
}

func (m *ModEnvelope) Trigger() { m.counter = 0 }

func (m *ModEnvelope) Next() float64 {
	a := stageSamples(modAttackMs, m.sampleRate)
	d := stageSamples(modDecayMs, m.sampleRate)
	var v float64
	switch {
	case m.counter < a:
		v = m.counter / a
	case m.counter < a+d:
		v = 1 - (m.counter-a)/d
	}
	m.counter++
	return v
}
