package engine

import (
	"github.com/cbegin/industrial-go/internal/chaos"
	"github.com/cbegin/industrial-go/internal/drift"
	"github.com/cbegin/industrial-go/internal/effects"
	"github.com/cbegin/industrial-go/internal/lfo"
	"github.com/cbegin/industrial-go/internal/voice"
)

// Setters saturate out-of-range input and never fail. NaN maps to the lower
// bound. Per-voice controls also reach voices that are already sounding.

func (e *Engine) SetDrive(x float64) {
	e.params.Drive = clamp(x, 0.1, 10)
	e.drive.SetGain(e.params.Drive)
}

func (e *Engine) SetNoiseLevel(x float64) { e.params.NoiseLevel = clamp(x, 0, 1) }

// SetNoiseGateFollow is stored for hosts but has no effect on the render.
func (e *Engine) SetNoiseGateFollow(on bool) { e.params.NoiseGateFollow = on }

// SetNoiseDrone is stored for hosts but has no effect on the render.
func (e *Engine) SetNoiseDrone(on bool) { e.params.NoiseDrone = on }

func (e *Engine) SetFMLevel(x float64) { e.params.FMLevel = clamp(x, 0, 1) }

func (e *Engine) SetFoldAmount(x float64) {
	e.params.Fold = clamp(x, voice.MinFold, voice.MaxFold)
	e.forActive(func(v *voice.Voice) { v.SetFold(e.params.Fold) })
}

func (e *Engine) SetBitDepth(x float64) {
	e.params.BitDepth = clamp(x, voice.MinBitDepth, voice.MaxBitDepth)
	e.forActive(func(v *voice.Voice) { v.SetBitDepth(e.params.BitDepth) })
}

func (e *Engine) SetCutoff(x float64) {
	e.params.Cutoff = clamp(x, voice.MinCutoff, voice.MaxCutoff)
	e.forActive(func(v *voice.Voice) { v.SetCutoff(e.params.Cutoff) })
}

func (e *Engine) SetResonance(x float64) {
	e.params.Resonance = clamp(x, 0, 1)
	e.forActive(func(v *voice.Voice) { v.SetResonance(e.params.Resonance) })
}

func (e *Engine) SetFeedback(x float64) {
	e.params.Feedback = clamp(x, 0, voice.MaxFeedback)
	e.forActive(func(v *voice.Voice) { v.SetFeedback(e.params.Feedback) })
}

func (e *Engine) SetADSR(attackMs, decayMs, sustain, releaseMs float64) {
	p := &e.params
	p.AttackMs = clamp(attackMs, voice.MinStageMs, voice.MaxStageMs)
	p.DecayMs = clamp(decayMs, voice.MinStageMs, voice.MaxStageMs)
	p.Sustain = clamp(sustain, 0, 1)
	p.ReleaseMs = clamp(releaseMs, voice.MinStageMs, voice.MaxReleaseMs)
	e.forActive(func(v *voice.Voice) { v.SetADSR(p.AttackMs, p.DecayMs, p.Sustain, p.ReleaseMs) })
}

func (e *Engine) SetSub(level, detune float64) {
	e.params.SubLevel = clamp(level, 0, 1)
	e.params.SubDetune = clamp(detune, -100, 100)
	e.refreshShared()
}

func (e *Engine) SetSaturation(drive, mix float64) {
	e.params.SatDrive = clamp(drive, 1, 10)
	e.params.SatMix = clamp(mix, 0, 1)
	e.refreshShared()
}

func (e *Engine) SetTilt(x float64) {
	e.params.Tilt = clamp(x, -1, 1)
	e.refreshShared()
}

func (e *Engine) SetPostGain(x float64) {
	e.params.PostGain = clamp(x, 0, 4)
	e.postGain.SetGain(e.params.PostGain)
}

// SetLimiter sets the limiter amount. The threshold follows as
// 0.9 - amount*0.4.
func (e *Engine) SetLimiter(amount float64) {
	e.params.LimiterAmount = clamp(amount, 0, 1)
	e.limiter.SetAmount(e.params.LimiterAmount)
}

func (e *Engine) SetLFO(rateHz, depth float64, shape int) {
	e.params.LFORateHz = clamp(rateHz, lfo.MinRateHz, lfo.MaxRateHz)
	e.params.LFODepth = clamp(depth, 0, 1)
	e.params.LFOShape = clampInt(shape, int(lfo.ShapeSine), int(lfo.ShapeSquare))
	e.forActive(func(v *voice.Voice) { v.SetLFORate(e.params.LFORateHz) })
	e.refreshShared()
}

func (e *Engine) SetSampleHold(rateHz, depth, slewMs float64) {
	e.params.SHRateHz = clamp(rateHz, lfo.MinSampleHoldRateHz, lfo.MaxSampleHoldRateHz)
	e.params.SHDepth = clamp(depth, 0, 1)
	e.params.SHSlewMs = clamp(slewMs, 0, lfo.MaxSlewMs)
	e.forActive(func(v *voice.Voice) { v.SetSampleHold(e.params.SHRateHz, e.params.SHSlewMs) })
	e.refreshShared()
}

func (e *Engine) SetJitter(amount, bandHz float64) {
	e.params.JitterAmount = clamp(amount, 0, 1)
	e.params.JitterBandHz = clamp(bandHz, 1, 100)
	e.refreshShared()
}

func (e *Engine) SetChorus(mix, rateHz, depthMs, feedback float64) {
	p := &e.params
	p.ChorusMix = clamp(mix, 0, 1)
	p.ChorusRateHz = clamp(rateHz, 0.1, 10)
	p.ChorusDepthMs = clamp(depthMs, 1, 50)
	p.ChorusFeedback = clamp(feedback, 0, 0.99)
	e.refreshShared()
}

// SetSpasm is a macro over the three modulation depths.
func (e *Engine) SetSpasm(x float64) {
	x = clamp(x, 0, 1)
	e.params.Spasm = x
	e.params.LFODepth = x * 0.5
	e.params.SHDepth = x * 0.3
	e.params.JitterAmount = x * 0.2
	e.refreshShared()
}

func (e *Engine) SetModRouting(lfoCutoff, lfoFold, shCutoff, shFold, shBit, jitterPitch float64) {
	p := &e.params
	p.LFOToCutoff = clamp(lfoCutoff, 0, 1)
	p.LFOToFold = clamp(lfoFold, 0, 1)
	p.SHToCutoff = clamp(shCutoff, 0, 1)
	p.SHToFold = clamp(shFold, 0, 1)
	p.SHToBit = clamp(shBit, 0, 1)
	p.JitterToPitch = clamp(jitterPitch, 0, 1)
	e.refreshShared()
}

func (e *Engine) SetSynthType(t int) {
	e.params.SynthType = clampInt(t, 0, voice.NumAlgorithms-1)
	e.refreshShared()
}

func (e *Engine) SetFMRatio(x float64) {
	e.params.FMRatio = clamp(x, 0.25, 16)
	e.refreshShared()
}

func (e *Engine) SetWavetablePosition(x float64) {
	e.params.WavetablePos = clamp(x, 0, 1)
	e.forActive(func(v *voice.Voice) { v.SetWavetablePosition(e.params.WavetablePos) })
}

// SetWaveMorphSpeed is stored for hosts but has no effect on the render.
func (e *Engine) SetWaveMorphSpeed(x float64) { e.params.WaveMorphSpeed = clamp(x, 0, 10) }

func (e *Engine) SetHarmonicsCount(n int) {
	e.params.HarmonicsCount = clampInt(n, 1, 16)
	e.refreshShared()
}

func (e *Engine) SetHarmonicRolloff(x float64) {
	e.params.HarmonicRolloff = clamp(x, 0, 3)
	e.refreshShared()
}

func (e *Engine) SetPhaseDistAmount(x float64) {
	e.params.PhaseDistAmount = clamp(x, 0, 1)
	e.refreshShared()
}

// SetPhaseResonancePoint is stored for hosts but has no effect on the render.
func (e *Engine) SetPhaseResonancePoint(x float64) { e.params.PhaseResonancePoint = clamp(x, 0, 1) }

func (e *Engine) SetVectorX(x float64) {
	e.params.VectorX = clamp(x, 0, 1)
	e.refreshShared()
}

func (e *Engine) SetVectorY(y float64) {
	e.params.VectorY = clamp(y, 0, 1)
	e.refreshShared()
}

func (e *Engine) SetGrainSize(ms float64) {
	e.params.GrainSizeMs = clamp(ms, 1, 200)
	e.refreshShared()
}

func (e *Engine) SetGrainDensity(x float64) {
	e.params.GrainDensity = clamp(x, 0, 1)
	e.refreshShared()
}

func (e *Engine) SetModalStiffness(x float64) {
	e.params.ModalStiffness = clamp(x, 0, 1)
	e.refreshShared()
}

func (e *Engine) SetModalInharmonicity(x float64) {
	e.params.ModalInharmonicity = clamp(x, 0, 1)
	e.refreshShared()
}

func (e *Engine) SetFilterQ(x float64) {
	e.params.FilterQ = clamp(x, 0, 1)
	e.refreshShared()
}

func (e *Engine) SetFilterDamping(x float64) {
	e.params.FilterDamping = clamp(x, 0, 1)
	e.refreshShared()
}

func (e *Engine) SetFilterDrive(x float64) {
	e.params.FilterDrive = clamp(x, 0.1, 10)
	e.refreshShared()
}

// SetChaosMode switches the attractor and restarts it. Unknown modes fall
// back to logistic.
func (e *Engine) SetChaosMode(mode int) {
	e.chaos.SetMode(chaos.Mode(mode))
	e.params.ChaosMode = int(e.chaos.Mode())
}

func (e *Engine) SetChaosRate(hz float64) {
	e.chaos.SetRate(hz)
	e.params.ChaosRateHz = e.chaos.Rate()
}

func (e *Engine) SetChaosEnabled(on bool) { e.params.ChaosEnabled = on }

func (e *Engine) SetDriftAmount(x float64) {
	e.drift.SetAmount(x)
	e.params.DriftAmount = e.drift.Amount()
}

func (e *Engine) SetDriftSpeed(x float64) {
	e.drift.SetSpeed(x)
	e.params.DriftSpeed = e.drift.Speed()
}

func (e *Engine) SetDriftType(t int) {
	e.drift.SetType(drift.Type(t))
	e.params.DriftType = int(e.drift.Type())
}

func (e *Engine) SetDiffusionMix(x float64) {
	e.params.DiffusionMix = clamp(x, 0, 1)
	e.diffusion.SetMix(e.params.DiffusionMix)
}

func (e *Engine) SetSyncAmount(x float64) {
	e.params.SyncAmount = clamp(x, 0, voice.MaxSync)
	e.forActive(func(v *voice.Voice) { v.SetSyncAmount(e.params.SyncAmount) })
}

func (e *Engine) SetRingRatio(x float64) {
	e.params.RingRatio = clamp(x, voice.MinRingRatio, voice.MaxRingRatio)
	e.forActive(func(v *voice.Voice) { v.SetRingRatio(e.params.RingRatio) })
}

func (e *Engine) SetRingMix(x float64) {
	e.params.RingMix = clamp(x, 0, 1)
	e.forActive(func(v *voice.Voice) { v.SetRingMix(e.params.RingMix) })
}

func (e *Engine) SetCombMix(x float64) {
	e.params.CombMix = clamp(x, 0, 1)
	e.updateComb()
}

func (e *Engine) SetCombFreq(hz float64) {
	e.params.CombFreq = clamp(hz, effects.MinCombFreq, effects.MaxCombFreq)
	e.updateComb()
}

func (e *Engine) SetCombFeedback(x float64) {
	e.params.CombFeedback = clamp(x, 0, voice.MaxCombFb)
	e.updateComb()
}

func (e *Engine) SetCombDamp(x float64) {
	e.params.CombDamp = clamp(x, 0, voice.MaxCombDamp)
	e.updateComb()
}

func (e *Engine) updateComb() {
	p := &e.params
	e.forActive(func(v *voice.Voice) { v.SetComb(p.CombMix, p.CombFreq, p.CombFeedback, p.CombDamp) })
}
