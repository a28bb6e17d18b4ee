package voice

import (
	"math"
	"testing"

	"github.com/cbegin/industrial-go/internal/lfo"
)

func testShared() *Shared {
	return &Shared{
		SatDrive:        1,
		LFOShape:        lfo.ShapeSine,
		JitterBandHz:    10,
		ChorusRateHz:    0.5,
		ChorusDepthMs:   10,
		ChorusFeedback:  0.3,
		FMRatio:         2,
		HarmonicsCount:  4,
		HarmonicRolloff: 1,
		PhaseDistAmount: 0.5,
		VectorX:         0.5,
		VectorY:         0.5,
		GrainSizeMs:     50,
		GrainDensity:    0.5,
		ModalStiffness:  0.5,
		FilterQ:         0.5,
		FilterDrive:     1,
	}
}

func testSettings() Settings {
	return Settings{
		Fold:         2,
		BitDepth:     8,
		Cutoff:       2000,
		Resonance:    1,
		Feedback:     0.3,
		RingRatio:    1,
		CombFreq:     200,
		CombFeedback: 0.5,
		CombDamp:     0.5,
		AttackMs:     5,
		DecayMs:      200,
		Sustain:      0.7,
		ReleaseMs:    300,
		LFORateHz:    1,
		SHRateHz:     5,
	}
}

func TestInactiveVoiceIsSilent(t *testing.T) {
	v := New(48000)
	sh := testShared()
	for i := 0; i < 100; i++ {
		if s := v.Process(sh); s != 0 {
			t.Fatalf("inactive voice produced %f", s)
		}
	}
}

func TestEveryAlgorithmProducesSignal(t *testing.T) {
	for alg := Algorithm(0); alg < NumAlgorithms; alg++ {
		t.Run(alg.String(), func(t *testing.T) {
			v := New(48000)
			v.Apply(testSettings())
			sh := testShared()
			sh.SynthType = alg
			v.NoteOn(1, 440, 2)
			var maxAbs float64
			for i := 0; i < 5000; i++ {
				s := v.Process(sh)
				if math.IsNaN(s) || math.IsInf(s, 0) {
					t.Fatalf("sample %d not finite", i)
				}
				maxAbs = math.Max(maxAbs, math.Abs(s))
			}
			if maxAbs < 1e-4 {
				t.Fatalf("expected signal, max=%g", maxAbs)
			}
		})
	}
}

func TestExtremeSettingsStayFinite(t *testing.T) {
	for alg := Algorithm(0); alg < NumAlgorithms; alg++ {
		t.Run(alg.String(), func(t *testing.T) {
			v := New(48000)
			s := testSettings()
			s.Fold = 10
			s.BitDepth = 1
			s.Feedback = 0.99
			s.SyncAmount = 5
			s.RingRatio = 4
			s.RingMix = 1
			s.CombMix = 1
			s.CombFeedback = 0.99
			s.CombDamp = 0
			s.Cutoff = 20000
			v.Apply(s)
			sh := testShared()
			sh.SynthType = alg
			sh.SubLevel = 1
			sh.SubDetune = 100
			sh.SatDrive = 10
			sh.SatMix = 1
			sh.Tilt = 1
			sh.LFODepth = 1
			sh.SHDepth = 1
			sh.JitterAmount = 1
			sh.JitterBandHz = 100
			sh.ChorusMix = 1
			sh.ChorusDepthMs = 50
			sh.ChorusFeedback = 0.99
			sh.LFOToCutoff, sh.LFOToFold = 1, 1
			sh.SHToCutoff, sh.SHToFold, sh.SHToBit = 1, 1, 1
			sh.JitterToPitch = 1
			sh.FilterQ, sh.FilterDamping, sh.FilterDrive = 1, 1, 10
			sh.Chaos, sh.Drift = 1, 0.02
			v.NoteOn(7, 2000, 20)
			for i := 0; i < 48000; i++ {
				out := v.Process(sh)
				if math.IsNaN(out) || math.IsInf(out, 0) {
					t.Fatalf("sample %d not finite", i)
				}
				if b := v.BitDepth(); b < MinBitDepth || b > MaxBitDepth {
					t.Fatalf("bit depth %f escaped its range", b)
				}
			}
		})
	}
}

func TestNoteOffMatchesOnlyActiveID(t *testing.T) {
	v := New(48000)
	v.Apply(testSettings())
	if v.NoteOff(DefaultNoteID) {
		t.Fatalf("idle voice should not accept note off")
	}
	v.NoteOn(5, 440, 1)
	if v.NoteOff(6) {
		t.Fatalf("note off with the wrong id matched")
	}
	if !v.NoteOff(5) {
		t.Fatalf("note off with matching id should match")
	}
	if v.EnvState() != EnvRelease {
		t.Fatalf("expected release, got %s", v.EnvState())
	}
}

func TestReleaseDeactivatesVoice(t *testing.T) {
	v := New(1000)
	s := testSettings()
	s.AttackMs, s.DecayMs, s.ReleaseMs = 1, 1, 10
	v.Apply(s)
	sh := testShared()
	v.NoteOn(1, 100, 1)
	for i := 0; i < 20; i++ {
		v.Process(sh)
	}
	v.NoteOff(1)
	for i := 0; i < 10; i++ {
		v.Process(sh)
		if !v.Active() {
			t.Fatalf("deactivated early at %d", i)
		}
	}
	if out := v.Process(sh); out != 0 || v.Active() {
		t.Fatalf("expected release to end the note, out=%f active=%v", out, v.Active())
	}
}

func TestForceStop(t *testing.T) {
	v := New(48000)
	v.Apply(testSettings())
	v.NoteOn(3, 440, 2)
	sh := testShared()
	for i := 0; i < 100; i++ {
		v.Process(sh)
	}
	v.ForceStop()
	if v.Active() || v.EnvState() != EnvIdle || v.EnvLevel() != 0 {
		t.Fatalf("force stop left active=%v state=%s level=%f", v.Active(), v.EnvState(), v.EnvLevel())
	}
}

func TestApplyClampsSettings(t *testing.T) {
	v := New(48000)
	nan := math.NaN()
	v.Apply(Settings{
		Fold: nan, BitDepth: 99, Cutoff: math.Inf(1), Resonance: -1, Feedback: 5,
		SyncAmount: 9, RingRatio: 0, RingMix: 2, CombMix: -1, CombFreq: 1e6,
		CombFeedback: 2, CombDamp: nan, WavetablePos: 3, AttackMs: 0, DecayMs: 1e9,
		Sustain: 2, ReleaseMs: -1, LFORateHz: 1000, SHRateHz: 0, SHSlewMs: 1000,
	})
	got := v.Settings()
	want := Settings{
		Fold: MinFold, BitDepth: MaxBitDepth, Cutoff: MaxCutoff, Resonance: 0, Feedback: MaxFeedback,
		SyncAmount: MaxSync, RingRatio: MinRingRatio, RingMix: 1, CombMix: 0, CombFreq: 1000,
		CombFeedback: MaxCombFb, CombDamp: 0, WavetablePos: 1, AttackMs: MinStageMs, DecayMs: MaxStageMs,
		Sustain: 1, ReleaseMs: MinStageMs, LFORateHz: lfo.MaxRateHz, SHRateHz: lfo.MinSampleHoldRateHz,
		SHSlewMs: lfo.MaxSlewMs,
	}
	if got != want {
		t.Fatalf("clamped settings:\n got  %+v\n want %+v", got, want)
	}
}

func TestSetModIndexClamps(t *testing.T) {
	v := New(48000)
	v.SetModIndex(50)
	if v.ModIndex() != MaxModIndex {
		t.Fatalf("got %f, want %f", v.ModIndex(), MaxModIndex)
	}
	v.SetModIndex(math.NaN())
	if v.ModIndex() != 0 {
		t.Fatalf("NaN should clamp to 0, got %f", v.ModIndex())
	}
}

func TestHardSyncResetsSlaveOnMasterWrap(t *testing.T) {
	var f fmOsc
	in := &oscInput{freq: 480, sampleRate: 48000, syncAmount: 1, modIndex: 0}
	inc := in.freq / in.sampleRate
	wraps := 0
	for i := 0; i < 1000; i++ {
		prev := f.master
		f.next(in)
		if f.master < prev {
			wraps++
			if math.Abs(f.slave-inc*2) > 1e-12 {
				t.Fatalf("slave should restart after wrap, got %f", f.slave)
			}
		}
	}
	if wraps < 9 {
		t.Fatalf("expected about 10 master wraps, got %d", wraps)
	}
}

func TestWavetableMorphEndpoints(t *testing.T) {
	phase := 0.1
	if got, want := wavetableMorph(phase, 0), math.Sin(twoPi*phase); math.Abs(got-want) > 1e-12 {
		t.Fatalf("pos 0 should be sine: got %f want %f", got, want)
	}
	if got := wavetableMorph(phase, 1); math.Abs(got-1) > 1e-12 {
		t.Fatalf("pos 1 should be square: got %f", got)
	}
}

func TestAdditiveSingleHarmonicIsSine(t *testing.T) {
	for _, p := range []float64{0, 0.1, 0.3, 0.77} {
		if got, want := additive(p, 1, 1), math.Sin(twoPi*p); math.Abs(got-want) > 1e-12 {
			t.Fatalf("phase %f: got %f want %f", p, got, want)
		}
	}
}

func TestPhaseDistortionZeroIsSine(t *testing.T) {
	for _, p := range []float64{0.05, 0.4, 0.6, 0.95} {
		if got, want := phaseDistort(p, 0), math.Sin(twoPi*p); math.Abs(got-want) > 1e-12 {
			t.Fatalf("phase %f: got %f want %f", p, got, want)
		}
	}
}

func TestAlgorithmNames(t *testing.T) {
	if AlgoModal.String() != "modal" || Algorithm(42).String() != "unknown" {
		t.Fatalf("unexpected algorithm names")
	}
}

func TestGranularSilentBetweenGrains(t *testing.T) {
	sh := testShared()
	sh.GrainSizeMs = 10 // 10 samples at 1 kHz
	sh.GrainDensity = 0.1
	in := &oscInput{drifted: 0.25, sampleRate: 1000, shared: sh}
	var g granularOsc
	var sounded bool
	for i := 0; i < 12; i++ {
		if g.next(in) != 0 {
			sounded = true
		}
	}
	if !sounded {
		t.Fatalf("first grain produced no signal")
	}
	if g.phase < 1 {
		t.Fatalf("grain should be complete, phase %f", g.phase)
	}
	for i := 12; i < 95; i++ {
		if got := g.next(in); got != 0 {
			t.Fatalf("sample %d: got %f between grains, want exactly 0", i, got)
		}
	}
	sounded = false
	for i := 95; i < 110; i++ {
		if g.next(in) != 0 {
			sounded = true
		}
	}
	if !sounded {
		t.Fatalf("next grain never started")
	}
}

func TestModalDecaysWithEnvelopeCounter(t *testing.T) {
	sh := testShared()
	sh.ModalStiffness = 0
	sh.ModalInharmonicity = 0
	// Every partial phase stays in (0, 0.5), so all terms are positive.
	in := &oscInput{drifted: 0.01, sampleRate: 1000, shared: sh}
	prev := math.Inf(1)
	for _, counter := range []float64{0, 100, 500, 1000, 3000} {
		in.envCounter = counter
		got := modal(in)
		if got <= 0 || got >= prev {
			t.Fatalf("counter %.0f: got %f, want positive and below %f", counter, got, prev)
		}
		prev = got
	}
	in.envCounter = 0
	start := modal(in)
	in.envCounter = 10000
	if tail := modal(in); tail > start*1e-3 {
		t.Fatalf("after 10 s the output should have decayed, got %g of %g", tail, start)
	}

	sh.ModalStiffness = 1
	in.envCounter = 1000
	stiff := modal(in)
	sh.ModalStiffness = 0
	if loose := modal(in); stiff <= loose {
		t.Fatalf("stiffness should slow the decay: %f <= %f", stiff, loose)
	}
}
