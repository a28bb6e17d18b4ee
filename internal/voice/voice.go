package voice

import (
	"math"

	"github.com/cbegin/industrial-go/internal/effects"
	"github.com/cbegin/industrial-go/internal/lfo"
)

// Control ranges for the parameters a voice carries itself.
const (
	MinFold       = 1.0
	MaxFold       = 10.0
	MinBitDepth   = 1.0
	MaxBitDepth   = 16.0
	MinCutoff     = 20.0
	MaxCutoff     = 20000.0
	MaxFeedback   = 0.99
	MaxSync       = 5.0
	MinRingRatio  = 0.5
	MaxRingRatio  = 4.0
	MaxModIndex   = 20.0
	MaxCombDamp   = 1.0
	MaxCombFb     = 0.99
	DefaultNoteID = -1
)

// Shared holds the engine-wide controls every voice reads on each sample.
// The engine owns one instance and passes it by pointer.
type Shared struct {
	SubLevel     float64
	SubDetune    float64 // percent
	SatDrive     float64
	SatMix       float64
	Tilt         float64
	LFODepth     float64
	LFOShape     lfo.Shape
	SHDepth      float64
	JitterAmount float64
	JitterBandHz float64

	ChorusMix      float64
	ChorusRateHz   float64
	ChorusDepthMs  float64
	ChorusFeedback float64

	LFOToCutoff   float64
	LFOToFold     float64
	SHToCutoff    float64
	SHToFold      float64
	SHToBit       float64
	JitterToPitch float64

	SynthType          Algorithm
	FMRatio            float64
	HarmonicsCount     int
	HarmonicRolloff    float64
	PhaseDistAmount    float64
	VectorX            float64
	VectorY            float64
	GrainSizeMs        float64
	GrainDensity       float64
	ModalStiffness     float64
	ModalInharmonicity float64

	FilterQ       float64
	FilterDamping float64
	FilterDrive   float64

	// Block-rate modulators, refreshed once per render call.
	Chaos float64
	Drift float64
}

// Settings are the parameters copied into a voice when it starts a note.
type Settings struct {
	Fold         float64
	BitDepth     float64
	Cutoff       float64
	Resonance    float64
	Feedback     float64
	SyncAmount   float64
	RingRatio    float64
	RingMix      float64
	CombMix      float64
	CombFreq     float64
	CombFeedback float64
	CombDamp     float64
	WavetablePos float64
	AttackMs     float64
	DecayMs      float64
	Sustain      float64
	ReleaseMs    float64
	LFORateHz    float64
	SHRateHz     float64
	SHSlewMs     float64
}

// Voice is one note slot: oscillators, modulators, envelopes and a private
// effect chain. Voices are allocated once and reused.
type Voice struct {
	active     bool
	noteID     int
	freq       float64
	modIndex   float64
	sampleRate float64

	phase     float64
	modPhase  float64
	ringPhase float64
	last      float64

	fold         float64
	bitDepth     float64
	cutoff       float64
	resonance    float64
	feedback     float64
	syncAmount   float64
	ringRatio    float64
	ringMix      float64
	combMix      float64
	combFreq     float64
	combFeedback float64
	combDamp     float64
	wavetable    float64

	env    Envelope
	modEnv ModEnvelope
	lfo    lfo.LFO
	sh     lfo.SampleHold
	jitter lfo.Jitter
	osc    oscillators

	svf    effects.SVF
	tilt   effects.TiltEQ
	comb   *effects.Comb
	chorus *effects.Chorus
}

func New(sampleRate float64) *Voice {
	return &Voice{
		noteID:       DefaultNoteID,
		freq:         440,
		modIndex:     2,
		sampleRate:   sampleRate,
		fold:         2,
		bitDepth:     12,
		cutoff:       2000,
		resonance:    0.5,
		feedback:     0.3,
		ringRatio:    1,
		combFreq:     200,
		combFeedback: 0.5,
		combDamp:     0.5,
		env:          NewEnvelope(sampleRate),
		modEnv:       NewModEnvelope(sampleRate),
		lfo:          lfo.New(sampleRate),
		sh:           lfo.NewSampleHold(sampleRate),
		jitter:       lfo.NewJitter(sampleRate),
		osc:          newOscillators(),
		tilt:         effects.NewTiltEQ(sampleRate),
		comb:         effects.NewComb(sampleRate),
		chorus:       effects.NewChorus(sampleRate),
	}
}

// Apply copies note-start settings into the voice, clamping each value.
func (v *Voice) Apply(s Settings) {
	v.SetFold(s.Fold)
	v.SetBitDepth(s.BitDepth)
	v.SetCutoff(s.Cutoff)
	v.SetResonance(s.Resonance)
	v.SetFeedback(s.Feedback)
	v.SetSyncAmount(s.SyncAmount)
	v.SetRingRatio(s.RingRatio)
	v.SetRingMix(s.RingMix)
	v.SetComb(s.CombMix, s.CombFreq, s.CombFeedback, s.CombDamp)
	v.SetWavetablePosition(s.WavetablePos)
	v.SetADSR(s.AttackMs, s.DecayMs, s.Sustain, s.ReleaseMs)
	v.SetLFORate(s.LFORateHz)
	v.SetSampleHold(s.SHRateHz, s.SHSlewMs)
}

// NoteOn starts a note. Oscillator phases carry over from the previous note;
// envelopes, the LFO, sample-and-hold and comb are restarted.
func (v *Voice) NoteOn(id int, freqHz, modIndex float64) {
	v.active = true
	v.noteID = id
	v.freq = freqHz
	v.modIndex = modIndex
	v.env.Trigger()
	v.modEnv.Trigger()
	v.lfo.Reset()
	v.sh.Reset()
	v.comb.Reset()
}

// NoteOff releases the voice if it is sounding the given note.
func (v *Voice) NoteOff(id int) bool {
	if !v.active || v.noteID != id {
		return false
	}
	v.env.Release()
	return true
}

// ForceStop silences the voice without a release tail.
func (v *Voice) ForceStop() {
	v.active = false
	v.env.Kill()
}

func (v *Voice) Active() bool { return v.active }
func (v *Voice) NoteID() int { return v.noteID }
func (v *Voice) Frequency() float64 { return v.freq }
func (v *Voice) ModIndex() float64 { return v.modIndex }
func (v *Voice) EnvState() EnvState { return v.env.State() }
func (v *Voice) EnvLevel() float64 { return v.env.Level() }
func (v *Voice) BitDepth() float64 { return v.bitDepth }

// SetModIndex changes the FM index of the sounding note, clamped to [0, 20].
func (v *Voice) SetModIndex(x float64) { v.modIndex = clamp(x, 0, MaxModIndex) }

// Settings reports the voice's current carried parameters.
func (v *Voice) Settings() Settings {
	return Settings{
		Fold:         v.fold,
		BitDepth:     v.bitDepth,
		Cutoff:       v.cutoff,
		Resonance:    v.resonance,
		Feedback:     v.feedback,
		SyncAmount:   v.syncAmount,
		RingRatio:    v.ringRatio,
		RingMix:      v.ringMix,
		CombMix:      v.combMix,
		CombFreq:     v.combFreq,
		CombFeedback: v.combFeedback,
		CombDamp:     v.combDamp,
		WavetablePos: v.wavetable,
		AttackMs:     v.env.attackMs,
		DecayMs:      v.env.decayMs,
		Sustain:      v.env.sustain,
		ReleaseMs:    v.env.releaseMs,
		LFORateHz:    v.lfo.Rate(),
		SHRateHz:     v.sh.Rate(),
		SHSlewMs:     v.sh.Slew(),
	}
}

func (v *Voice) SetFold(x float64) { v.fold = clamp(x, MinFold, MaxFold) }
func (v *Voice) SetBitDepth(x float64) { v.bitDepth = clamp(x, MinBitDepth, MaxBitDepth) }
func (v *Voice) SetCutoff(x float64) { v.cutoff = clamp(x, MinCutoff, MaxCutoff) }
func (v *Voice) SetResonance(x float64) { v.resonance = clamp(x, 0, 1) }
func (v *Voice) SetFeedback(x float64) { v.feedback = clamp(x, 0, MaxFeedback) }
func (v *Voice) SetSyncAmount(x float64) { v.syncAmount = clamp(x, 0, MaxSync) }
func (v *Voice) SetRingRatio(x float64) { v.ringRatio = clamp(x, MinRingRatio, MaxRingRatio) }
func (v *Voice) SetRingMix(x float64) { v.ringMix = clamp(x, 0, 1) }

func (v *Voice) SetComb(mix, freq, feedback, damp float64) {
	v.combMix = clamp(mix, 0, 1)
	v.combFreq = clamp(freq, effects.MinCombFreq, effects.MaxCombFreq)
	v.combFeedback = clamp(feedback, 0, MaxCombFb)
	v.combDamp = clamp(damp, 0, MaxCombDamp)
}

func (v *Voice) SetWavetablePosition(x float64) { v.wavetable = clamp(x, 0, 1) }

func (v *Voice) SetADSR(attackMs, decayMs, sustain, releaseMs float64) {
	v.env.Set(attackMs, decayMs, sustain, releaseMs)
}

func (v *Voice) SetLFORate(hz float64) { v.lfo.SetRate(hz) }

func (v *Voice) SetSampleHold(rateHz, slewMs float64) {
	v.sh.SetRate(rateHz)
	v.sh.SetSlew(slewMs)
}

// Process renders one sample. Inactive voices return 0 without advancing any
// state.
func (v *Voice) Process(sh *Shared) float64 {
	if !v.active {
		return 0
	}
	amp, done := v.env.Next()
	modEnv := v.modEnv.Next()
	if done {
		v.active = false
		return 0
	}

	lfoVal := v.lfo.Tick(sh.LFOShape) * sh.LFODepth
	shVal := v.sh.Tick() * sh.SHDepth
	jitterVal := v.jitter.Tick(sh.JitterBandHz) * sh.JitterAmount

	cutoff := v.cutoff * (1 + lfoVal*sh.LFOToCutoff + shVal*sh.SHToCutoff)
	fold := v.fold * (1 + lfoVal*sh.LFOToFold + shVal*sh.SHToFold)
	bits := clamp(v.bitDepth+shVal*sh.SHToBit*8, MinBitDepth, MaxBitDepth)

	freq := v.freq * (1 + jitterVal*sh.JitterToPitch*0.05) * (1 + sh.Chaos*0.02) * (1 + sh.Drift)

	analog := math.Sin(v.modPhase*12.345+v.phase*67.89) * 0.0001
	in := oscInput{
		drifted:    v.phase + analog,
		modPhase:   v.modPhase,
		freq:       freq,
		modEnv:     modEnv,
		modIndex:   v.modIndex,
		feedback:   v.feedback,
		last:       v.last,
		syncAmount: v.syncAmount,
		wavetable:  v.wavetable,
		envCounter: v.env.Counter(),
		sampleRate: v.sampleRate,
		shared:     sh,
	}
	sig := v.osc.next(sh.SynthType, &in)

	if v.ringMix > 0 {
		v.ringPhase = fract(v.ringPhase + freq*v.ringRatio/v.sampleRate)
		carrier := math.Tanh(math.Sin(twoPi*v.ringPhase) * 3)
		ring := math.Tanh(sig * carrier * 1.5)
		sig = sig*(1-v.ringMix) + ring*v.ringMix
	}
	v.last = sig

	if sh.SubLevel > 0 {
		subPhase := in.drifted * 0.5
		a := math.Tanh(math.Sin(twoPi*subPhase) * 5)
		b := math.Tanh(math.Sin(twoPi*subPhase*(1+sh.SubDetune*0.01)) * 5)
		sig += (a + b) * 0.5 * sh.SubLevel
	}

	sig = sig*(1-sh.SatMix) + effects.Saturate(sig, sh.SatDrive)*sh.SatMix

	fc := clamp(20*math.Pow(1000, cutoff/20000), MinCutoff, MaxCutoff)
	q := sh.FilterQ * (1 + sh.FilterDamping*0.5)
	sig = v.svf.Lowpass(sig, fc, q, v.sampleRate)
	sig = math.Tanh(sig * sh.FilterDrive)

	sig = effects.Wavefold(sig, fold)
	sig = v.tilt.Process(sig, sh.Tilt)

	// The modulated depth sticks, so sample-and-hold routing accumulates.
	v.bitDepth = bits
	sig = effects.Bitcrush(sig, bits)

	if v.combMix > 0 {
		wet := v.comb.Process(sig, v.combFreq, v.combFeedback, v.combDamp)
		sig = sig*(1-v.combMix) + wet*v.combMix
	}
	if sh.ChorusMix > 0 {
		wet := v.chorus.Process(sig, sh.ChorusRateHz, sh.ChorusDepthMs, sh.ChorusFeedback)
		sig = sig*(1-sh.ChorusMix) + wet*sh.ChorusMix
	}

	sig *= amp

	v.phase = fract(v.phase + freq/v.sampleRate)
	v.modPhase = fract(v.modPhase + freq*sh.FMRatio/v.sampleRate)
	return sig
}

// clamp bounds v to [lo, hi]. NaN maps to lo.
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
