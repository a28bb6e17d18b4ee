package engine

import (
	"math"

	"github.com/cbegin/industrial-go/internal/chaos"
	"github.com/cbegin/industrial-go/internal/drift"
	"github.com/cbegin/industrial-go/internal/effects"
	"github.com/cbegin/industrial-go/internal/lfo"
	"github.com/cbegin/industrial-go/internal/prng"
	"github.com/cbegin/industrial-go/internal/voice"
)

// NumVoices is the fixed polyphony.
const NumVoices = 8

const noiseSeed = 12345

// Engine is the polyphonic synthesizer. It is not safe for concurrent use:
// the host must call every method from a single goroutine, normally the
// audio callback.
type Engine struct {
	sampleRate float64
	params     Params
	voices     [NumVoices]voice.Voice
	shared     voice.Shared
	chaos      *chaos.Modulator
	drift      *drift.Generator
	noise      prng.Xorshift32

	drive     *effects.Drive
	diffusion *effects.Diffusion
	postGain  *effects.Gain
	limiter   *effects.Limiter
	output    *effects.Chain
}

func New(sampleRate float64, params Params) *Engine {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		sampleRate = 48000
	}
	e := &Engine{
		sampleRate: sampleRate,
		chaos:      chaos.New(sampleRate),
		drift:      drift.New(sampleRate),
		noise:      prng.New(noiseSeed),
		drive:      effects.NewDrive(1),
		diffusion:  effects.NewDiffusion(),
		postGain:   effects.NewGain(1),
		limiter:    effects.NewLimiter(0.5),
	}
	e.output = effects.NewChain(e.drive, e.diffusion, e.postGain, e.limiter)
	for i := range e.voices {
		e.voices[i] = *voice.New(sampleRate)
	}
	e.apply(params)
	return e
}

// apply routes every field of p through its setter so the stored snapshot
// is always clamped.
func (e *Engine) apply(p Params) {
	e.SetDrive(p.Drive)
	e.SetNoiseLevel(p.NoiseLevel)
	e.SetNoiseGateFollow(p.NoiseGateFollow)
	e.SetNoiseDrone(p.NoiseDrone)
	e.SetFMLevel(p.FMLevel)
	e.SetFoldAmount(p.Fold)
	e.SetBitDepth(p.BitDepth)
	e.SetCutoff(p.Cutoff)
	e.SetResonance(p.Resonance)
	e.SetFeedback(p.Feedback)
	e.SetADSR(p.AttackMs, p.DecayMs, p.Sustain, p.ReleaseMs)
	e.SetSub(p.SubLevel, p.SubDetune)
	e.SetSaturation(p.SatDrive, p.SatMix)
	e.SetTilt(p.Tilt)
	e.SetPostGain(p.PostGain)
	e.SetLimiter(p.LimiterAmount)
	e.SetLFO(p.LFORateHz, p.LFODepth, p.LFOShape)
	e.SetSampleHold(p.SHRateHz, p.SHDepth, p.SHSlewMs)
	e.SetJitter(p.JitterAmount, p.JitterBandHz)
	e.SetChorus(p.ChorusMix, p.ChorusRateHz, p.ChorusDepthMs, p.ChorusFeedback)
	if p.Spasm > 0 {
		e.SetSpasm(p.Spasm)
	}
	e.SetModRouting(p.LFOToCutoff, p.LFOToFold, p.SHToCutoff, p.SHToFold, p.SHToBit, p.JitterToPitch)
	e.SetSynthType(p.SynthType)
	e.SetFMRatio(p.FMRatio)
	e.SetWavetablePosition(p.WavetablePos)
	e.SetWaveMorphSpeed(p.WaveMorphSpeed)
	e.SetHarmonicsCount(p.HarmonicsCount)
	e.SetHarmonicRolloff(p.HarmonicRolloff)
	e.SetPhaseDistAmount(p.PhaseDistAmount)
	e.SetPhaseResonancePoint(p.PhaseResonancePoint)
	e.SetVectorX(p.VectorX)
	e.SetVectorY(p.VectorY)
	e.SetGrainSize(p.GrainSizeMs)
	e.SetGrainDensity(p.GrainDensity)
	e.SetModalStiffness(p.ModalStiffness)
	e.SetModalInharmonicity(p.ModalInharmonicity)
	e.SetFilterQ(p.FilterQ)
	e.SetFilterDamping(p.FilterDamping)
	e.SetFilterDrive(p.FilterDrive)
	e.SetChaosMode(p.ChaosMode)
	e.SetChaosRate(p.ChaosRateHz)
	e.SetChaosEnabled(p.ChaosEnabled)
	e.SetDriftAmount(p.DriftAmount)
	e.SetDriftSpeed(p.DriftSpeed)
	e.SetDriftType(p.DriftType)
	e.SetDiffusionMix(p.DiffusionMix)
	e.SetSyncAmount(p.SyncAmount)
	e.SetRingRatio(p.RingRatio)
	e.SetRingMix(p.RingMix)
	e.SetCombMix(p.CombMix)
	e.SetCombFreq(p.CombFreq)
	e.SetCombFeedback(p.CombFeedback)
	e.SetCombDamp(p.CombDamp)
}

func (e *Engine) SampleRate() float64 { return e.sampleRate }

// Params returns a copy of the current parameter snapshot.
func (e *Engine) Params() Params { return e.params }

// Voice exposes slot i for inspection. It panics if i is out of range.
func (e *Engine) Voice(i int) *voice.Voice { return &e.voices[i] }

func (e *Engine) ActiveVoiceCount() int {
	n := 0
	for i := range e.voices {
		if e.voices[i].Active() {
			n++
		}
	}
	return n
}

// NoteOn starts a note on the slot chosen by selectVoice and loads the
// current per-voice parameters into it. The frequency is limited to
// [0, Nyquist] and the FM index to [0, 20].
func (e *Engine) NoteOn(id int, freqHz, modIndex float64) {
	slot := selectVoice(&e.voices, id)
	v := &e.voices[slot]
	v.Apply(e.settings())
	v.NoteOn(id, clamp(freqHz, 0, e.sampleRate/2), clamp(modIndex, 0, voice.MaxModIndex))
}

// selectVoice picks the active voice already playing id, else the first
// inactive voice, else steals slot 0.
func selectVoice(voices *[NumVoices]voice.Voice, id int) int {
	for i := range voices {
		if voices[i].Active() && voices[i].NoteID() == id {
			return i
		}
	}
	for i := range voices {
		if !voices[i].Active() {
			return i
		}
	}
	return 0
}

// NoteOff releases the first active voice holding id and reports whether
// one was found.
func (e *Engine) NoteOff(id int) bool {
	for i := range e.voices {
		if e.voices[i].NoteOff(id) {
			return true
		}
	}
	return false
}

// AllNotesOff silences every sounding voice immediately.
func (e *Engine) AllNotesOff() {
	for i := range e.voices {
		if e.voices[i].Active() {
			e.voices[i].ForceStop()
		}
	}
}

// Panic silences every voice regardless of state.
func (e *Engine) Panic() {
	for i := range e.voices {
		e.voices[i].ForceStop()
	}
}

// SetModIndex changes the FM index of all sounding voices.
func (e *Engine) SetModIndex(x float64) {
	e.forActive(func(v *voice.Voice) { v.SetModIndex(x) })
}

// Process renders len(out) mono samples. Chaos and drift are evaluated once
// per call, so their modulation is block-rate.
func (e *Engine) Process(out []float32) {
	if e.params.ChaosEnabled {
		e.shared.Chaos = e.chaos.Process()
	} else {
		e.shared.Chaos = 0
	}
	e.shared.Drift = e.drift.Process()

	for i := range out {
		var mix float64
		for vi := range e.voices {
			v := &e.voices[vi]
			if v.Active() {
				mix += v.Process(&e.shared)
			}
		}
		mix *= e.params.FMLevel
		if e.params.NoiseLevel > 0 {
			mix += e.noise.Bipolar() * e.params.NoiseLevel
		}
		out[i] = float32(e.output.Process(mix))
	}
}

func (e *Engine) settings() voice.Settings {
	p := &e.params
	return voice.Settings{
		Fold:         p.Fold,
		BitDepth:     p.BitDepth,
		Cutoff:       p.Cutoff,
		Resonance:    p.Resonance,
		Feedback:     p.Feedback,
		SyncAmount:   p.SyncAmount,
		RingRatio:    p.RingRatio,
		RingMix:      p.RingMix,
		CombMix:      p.CombMix,
		CombFreq:     p.CombFreq,
		CombFeedback: p.CombFeedback,
		CombDamp:     p.CombDamp,
		WavetablePos: p.WavetablePos,
		AttackMs:     p.AttackMs,
		DecayMs:      p.DecayMs,
		Sustain:      p.Sustain,
		ReleaseMs:    p.ReleaseMs,
		LFORateHz:    p.LFORateHz,
		SHRateHz:     p.SHRateHz,
		SHSlewMs:     p.SHSlewMs,
	}
}

// refreshShared copies the per-sample controls out of the snapshot.
func (e *Engine) refreshShared() {
	p := &e.params
	s := &e.shared
	s.SubLevel = p.SubLevel
	s.SubDetune = p.SubDetune
	s.SatDrive = p.SatDrive
	s.SatMix = p.SatMix
	s.Tilt = p.Tilt
	s.LFODepth = p.LFODepth
	s.LFOShape = lfo.Shape(p.LFOShape)
	s.SHDepth = p.SHDepth
	s.JitterAmount = p.JitterAmount
	s.JitterBandHz = p.JitterBandHz
	s.ChorusMix = p.ChorusMix
	s.ChorusRateHz = p.ChorusRateHz
	s.ChorusDepthMs = p.ChorusDepthMs
	s.ChorusFeedback = p.ChorusFeedback
	s.LFOToCutoff = p.LFOToCutoff
	s.LFOToFold = p.LFOToFold
	s.SHToCutoff = p.SHToCutoff
	s.SHToFold = p.SHToFold
	s.SHToBit = p.SHToBit
	s.JitterToPitch = p.JitterToPitch
	s.SynthType = voice.Algorithm(p.SynthType)
	s.FMRatio = p.FMRatio
	s.HarmonicsCount = p.HarmonicsCount
	s.HarmonicRolloff = p.HarmonicRolloff
	s.PhaseDistAmount = p.PhaseDistAmount
	s.VectorX = p.VectorX
	s.VectorY = p.VectorY
	s.GrainSizeMs = p.GrainSizeMs
	s.GrainDensity = p.GrainDensity
	s.ModalStiffness = p.ModalStiffness
	s.ModalInharmonicity = p.ModalInharmonicity
	s.FilterQ = p.FilterQ
	s.FilterDamping = p.FilterDamping
	s.FilterDrive = p.FilterDrive
}

func (e *Engine) forActive(fn func(v *voice.Voice)) {
	for i := range e.voices {
		if e.voices[i].Active() {
			fn(&e.voices[i])
		}
	}
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
