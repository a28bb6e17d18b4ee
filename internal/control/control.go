// Package control implements the text command protocol used by hosts to
// drive an engine: one command per line, a name followed by numeric
// arguments, for example "cutoff 1200" or "note-on 60 261.6 2".
package control

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/cbegin/industrial-go/internal/engine"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrArgCount       = errors.New("wrong number of arguments")
	ErrBadArgument    = errors.New("bad argument")
)

// Command is a parsed control message.
type Command struct {
	Name string
	Args []float64
}

func (c Command) String() string {
	var sb strings.Builder
	sb.WriteString(c.Name)
	for _, a := range c.Args {
		sb.WriteByte(' ')
		sb.WriteString(strconv.FormatFloat(a, 'g', -1, 64))
	}
	return sb.String()
}

// Ack confirms an applied command. Key names the engine parameter that
// changed and Values echoes the arguments as received.
type Ack struct {
	Key    string
	Values []float64
}

type handler struct {
	key   string
	arity int
	apply func(e *engine.Engine, a []float64)
}

func one(key string, set func(e *engine.Engine, x float64)) handler {
	return handler{key: key, arity: 1, apply: func(e *engine.Engine, a []float64) { set(e, a[0]) }}
}

func toggle(key string, set func(e *engine.Engine, on bool)) handler {
	return handler{key: key, arity: 1, apply: func(e *engine.Engine, a []float64) { set(e, a[0] != 0) }}
}

func integer(key string, set func(e *engine.Engine, n int)) handler {
	return handler{key: key, arity: 1, apply: func(e *engine.Engine, a []float64) { set(e, toInt(a[0])) }}
}

// toInt rounds x to an int32-range integer, saturating at the bounds.
// NaN maps to the lower bound, matching the engine's float clamps.
func toInt(x float64) int {
	const lo, hi = math.MinInt32, math.MaxInt32
	switch {
	case math.IsNaN(x), x <= lo:
		return lo
	case x >= hi:
		return hi
	}
	return int(math.Round(x))
}

var handlers = map[string]handler{
	"param":             one("drive", (*engine.Engine).SetDrive),
	"drive":             one("drive", (*engine.Engine).SetDrive),
	"noise-level":       one("noise_level", (*engine.Engine).SetNoiseLevel),
	"fm-level":          one("fm_level", (*engine.Engine).SetFMLevel),
	"cutoff":            one("cutoff", (*engine.Engine).SetCutoff),
	"resonance":         one("resonance", (*engine.Engine).SetResonance),
	"feedback":          one("feedback", (*engine.Engine).SetFeedback),
	"fold-amount":       one("fold_amount", (*engine.Engine).SetFoldAmount),
	"bit-depth":         one("bit_depth", (*engine.Engine).SetBitDepth),
	"noise-gate-follow": toggle("noise_gate_follow", (*engine.Engine).SetNoiseGateFollow),
	"noise-drone":       toggle("noise_drone", (*engine.Engine).SetNoiseDrone),
	"set-adsr": {key: "adsr", arity: 4, apply: func(e *engine.Engine, a []float64) {
		e.SetADSR(a[0], a[1], a[2], a[3])
	}},

	"set-synth-type":          integer("synth_type", (*engine.Engine).SetSynthType),
	"set-fm-ratio":            one("fm_ratio", (*engine.Engine).SetFMRatio),
	"set-wavetable-pos":       one("wavetable_pos", (*engine.Engine).SetWavetablePosition),
	"set-wave-morph":          one("wave_morph_speed", (*engine.Engine).SetWaveMorphSpeed),
	"set-harmonics-count":     integer("harmonics_count", (*engine.Engine).SetHarmonicsCount),
	"set-harmonic-rolloff":    one("harmonic_rolloff", (*engine.Engine).SetHarmonicRolloff),
	"set-phase-dist-amt":      one("phase_dist_amount", (*engine.Engine).SetPhaseDistAmount),
	"set-phase-resonance":     one("phase_resonance_point", (*engine.Engine).SetPhaseResonancePoint),
	"set-vector-x":            one("vector_x", (*engine.Engine).SetVectorX),
	"set-vector-y":            one("vector_y", (*engine.Engine).SetVectorY),
	"set-grain-size":          one("grain_size", (*engine.Engine).SetGrainSize),
	"set-grain-density":       one("grain_density", (*engine.Engine).SetGrainDensity),
	"set-modal-stiffness":     one("modal_stiffness", (*engine.Engine).SetModalStiffness),
	"set-modal-inharmonicity": one("modal_inharmonicity", (*engine.Engine).SetModalInharmonicity),

	"filter-q":       one("filter_q", (*engine.Engine).SetFilterQ),
	"filter-damping": one("filter_damping", (*engine.Engine).SetFilterDamping),
	"filter-drive":   one("filter_drive", (*engine.Engine).SetFilterDrive),

	"chaos-mode":    integer("chaos_mode", (*engine.Engine).SetChaosMode),
	"chaos-rate":    one("chaos_rate", (*engine.Engine).SetChaosRate),
	"chaos-enabled": toggle("chaos_enabled", (*engine.Engine).SetChaosEnabled),
	"drift-amount":  one("drift_amount", (*engine.Engine).SetDriftAmount),
	"drift-speed":   one("drift_speed", (*engine.Engine).SetDriftSpeed),
	"drift-type":    integer("drift_type", (*engine.Engine).SetDriftType),
	"diffusion-mix": one("diffusion_mix", (*engine.Engine).SetDiffusionMix),

	"set-sub": {key: "sub", arity: 2, apply: func(e *engine.Engine, a []float64) {
		e.SetSub(a[0], a[1])
	}},
	"set-saturation": {key: "saturation", arity: 2, apply: func(e *engine.Engine, a []float64) {
		e.SetSaturation(a[0], a[1])
	}},
	"set-tilt":      one("tilt", (*engine.Engine).SetTilt),
	"set-post-gain": one("post_gain", (*engine.Engine).SetPostGain),
	"set-limiter":   one("limiter_amount", (*engine.Engine).SetLimiter),

	"set-lfo": {key: "lfo", arity: 3, apply: func(e *engine.Engine, a []float64) {
		e.SetLFO(a[0], a[1], toInt(a[2]))
	}},
	"set-sample-hold": {key: "sample_hold", arity: 3, apply: func(e *engine.Engine, a []float64) {
		e.SetSampleHold(a[0], a[1], a[2])
	}},
	"set-jitter": {key: "jitter", arity: 2, apply: func(e *engine.Engine, a []float64) {
		e.SetJitter(a[0], a[1])
	}},
	"set-chorus": {key: "chorus", arity: 4, apply: func(e *engine.Engine, a []float64) {
		e.SetChorus(a[0], a[1], a[2], a[3])
	}},
	"set-spasm": one("spasm", (*engine.Engine).SetSpasm),
	"set-mod-routing": {key: "mod_routing", arity: 6, apply: func(e *engine.Engine, a []float64) {
		e.SetModRouting(a[0], a[1], a[2], a[3], a[4], a[5])
	}},
	"mod-index": one("mod_index", (*engine.Engine).SetModIndex),

	"sync-amount":   one("sync_amount", (*engine.Engine).SetSyncAmount),
	"ring-mix":      one("ring_mix", (*engine.Engine).SetRingMix),
	"ring-ratio":    one("ring_ratio", (*engine.Engine).SetRingRatio),
	"comb-mix":      one("comb_mix", (*engine.Engine).SetCombMix),
	"comb-freq":     one("comb_freq", (*engine.Engine).SetCombFreq),
	"comb-feedback": one("comb_feedback", (*engine.Engine).SetCombFeedback),
	"comb-damp":     one("comb_damp", (*engine.Engine).SetCombDamp),

	"note-on": {key: "note_on", arity: 3, apply: func(e *engine.Engine, a []float64) {
		e.NoteOn(toInt(a[0]), a[1], a[2])
	}},
	"note-off": {key: "note_off", arity: 1, apply: func(e *engine.Engine, a []float64) {
		e.NoteOff(toInt(a[0]))
	}},
	"all-notes-off": {key: "all_notes_off", apply: func(e *engine.Engine, _ []float64) { e.AllNotesOff() }},
	"panic":         {key: "panic", apply: func(e *engine.Engine, _ []float64) { e.Panic() }},
}

// Names lists every command name in sorted order.
func Names() []string {
	names := make([]string, 0, len(handlers))
	for name := range handlers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Parse splits a command line. Arguments are numbers; "true"/"false" and
// "on"/"off" are accepted as 1 and 0.
func Parse(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("%w: empty line", ErrUnknownCommand)
	}
	cmd := Command{Name: strings.ToLower(fields[0])}
	for _, f := range fields[1:] {
		v, err := parseArg(f)
		if err != nil {
			return Command{}, fmt.Errorf("%s: %w: %q", cmd.Name, ErrBadArgument, f)
		}
		cmd.Args = append(cmd.Args, v)
	}
	return cmd, nil
}

func parseArg(s string) (float64, error) {
	switch strings.ToLower(s) {
	case "on", "true":
		return 1, nil
	case "off", "false":
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

// Validate checks the name and argument count without touching an engine.
func Validate(cmd Command) error {
	h, ok := handlers[cmd.Name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Name)
	}
	if len(cmd.Args) != h.arity {
		return fmt.Errorf("%s: %w: got %d, want %d", cmd.Name, ErrArgCount, len(cmd.Args), h.arity)
	}
	return nil
}

// Apply runs cmd against e. Values outside a parameter's range are clamped
// by the engine, never rejected.
func Apply(e *engine.Engine, cmd Command) (Ack, error) {
	if err := Validate(cmd); err != nil {
		return Ack{}, err
	}
	h := handlers[cmd.Name]
	h.apply(e, cmd.Args)
	return Ack{Key: h.key, Values: slices.Clone(cmd.Args)}, nil
}
