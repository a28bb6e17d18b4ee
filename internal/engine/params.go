package engine

// Params is the engine's global parameter snapshot. Every field is kept
// within its documented range by the setters; New clamps the initial values
// the same way.
type Params struct {
	Drive           float64 // [0.1, 10]
	NoiseLevel      float64 // [0, 1]
	NoiseGateFollow bool    // stored only
	NoiseDrone      bool    // stored only
	FMLevel         float64 // [0, 1]

	Fold      float64 // [1, 10]
	BitDepth  float64 // [1, 16]
	Cutoff    float64 // [20, 20000]
	Resonance float64 // [0, 1]
	Feedback  float64 // [0, 0.99]

	AttackMs  float64 // [0.1, 5000]
	DecayMs   float64 // [0.1, 5000]
	Sustain   float64 // [0, 1]
	ReleaseMs float64 // [0.1, 10000]

	SubLevel      float64 // [0, 1]
	SubDetune     float64 // [-100, 100] percent
	SatDrive      float64 // [1, 10]
	SatMix        float64 // [0, 1]
	Tilt          float64 // [-1, 1]
	PostGain      float64 // [0, 4]
	LimiterAmount float64 // [0, 1]

	LFORateHz float64 // [0.05, 40]
	LFODepth  float64 // [0, 1]
	LFOShape  int     // 0 sine, 1 triangle, 2 square

	SHRateHz float64 // [1, 200]
	SHDepth  float64 // [0, 1]
	SHSlewMs float64 // [0, 50]

	JitterAmount float64 // [0, 1]
	JitterBandHz float64 // [1, 100]

	ChorusMix      float64 // [0, 1]
	ChorusRateHz   float64 // [0.1, 10]
	ChorusDepthMs  float64 // [1, 50]
	ChorusFeedback float64 // [0, 0.99]

	Spasm float64 // [0, 1]

	LFOToCutoff   float64 // [0, 1]
	LFOToFold     float64 // [0, 1]
	SHToCutoff    float64 // [0, 1]
	SHToFold      float64 // [0, 1]
	SHToBit       float64 // [0, 1]
	JitterToPitch float64 // [0, 1]

	SynthType           int     // [0, 6]
	FMRatio             float64 // [0.25, 16]
	WavetablePos        float64 // [0, 1]
	WaveMorphSpeed      float64 // [0, 10], stored only
	HarmonicsCount      int     // [1, 16]
	HarmonicRolloff     float64 // [0, 3]
	PhaseDistAmount     float64 // [0, 1]
	PhaseResonancePoint float64 // [0, 1], stored only
	VectorX             float64 // [0, 1]
	VectorY             float64 // [0, 1]
	GrainSizeMs         float64 // [1, 200]
	GrainDensity        float64 // [0, 1]
	ModalStiffness      float64 // [0, 1]
	ModalInharmonicity  float64 // [0, 1]

	FilterQ       float64 // [0, 1]
	FilterDamping float64 // [0, 1]
	FilterDrive   float64 // [0.1, 10]

	ChaosMode    int     // 0 logistic, 1 lorenz, 2 pendulum
	ChaosRateHz  float64 // [0.1, 20]
	ChaosEnabled bool

	DriftAmount float64 // [0, 1]
	DriftSpeed  float64 // [0.1, 10]
	DriftType   int     // 0 sine, 1 slow rise

	DiffusionMix float64 // [0, 1]

	SyncAmount float64 // [0, 5]
	RingRatio  float64 // [0.5, 4]
	RingMix    float64 // [0, 1]

	CombMix      float64 // [0, 1]
	CombFreq     float64 // [50, 1000]
	CombFeedback float64 // [0, 0.99]
	CombDamp     float64 // [0, 1]
}

func DefaultParams() Params {
	return Params{
		Drive:           1,
		NoiseGateFollow: true,
		FMLevel:         1,

		Fold:      2,
		BitDepth:  8,
		Cutoff:    2000,
		Resonance: 1,
		Feedback:  0.3,

		AttackMs:  5,
		DecayMs:   200,
		Sustain:   0.7,
		ReleaseMs: 300,

		SatDrive:      1,
		PostGain:      1,
		LimiterAmount: 0.5,

		LFORateHz: 1,
		SHRateHz:  5,

		JitterBandHz: 10,

		ChorusRateHz:   0.5,
		ChorusDepthMs:  10,
		ChorusFeedback: 0.3,

		FMRatio:             2,
		HarmonicsCount:      4,
		HarmonicRolloff:     1,
		PhaseResonancePoint: 0.5,
		VectorX:             0.5,
		VectorY:             0.5,
		GrainSizeMs:         50,
		GrainDensity:        0.5,
		ModalStiffness:      0.5,

		FilterQ:     0.5,
		FilterDrive: 1,

		ChaosRateHz: 1,

		DriftSpeed: 1,

		RingRatio: 1,

		CombFreq:     200,
		CombFeedback: 0.5,
		CombDamp:     0.5,
	}
}

// LimiterThreshold is derived from LimiterAmount.
func (p Params) LimiterThreshold() float64 {
	return 0.9 - p.LimiterAmount*0.4
}
