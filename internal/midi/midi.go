// Package midi turns MIDI input into engine control commands, both from live
// ports and from Standard MIDI Files.
package midi

import (
	"errors"
	"fmt"
	"math"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"github.com/cbegin/industrial-go/internal/control"
)

const (
	CCModWheel    = 1
	CCResonance   = 71
	CCBrightness  = 74
	CCAllNotesOff = 123
)

// MaxModIndex is the FM index reached at full velocity.
const MaxModIndex = 4.0

var ErrNoPorts = errors.New("no MIDI input ports")

// KeyToFreq returns the equal-tempered frequency of a MIDI key (A4 = 440 Hz).
func KeyToFreq(key uint8) float64 {
	return 440 * math.Pow(2, (float64(key)-69)/12)
}

// ccToCutoff maps 0..127 exponentially onto 20 Hz..20 kHz.
func ccToCutoff(v uint8) float64 {
	return 20 * math.Pow(1000, float64(v)/127)
}

// Translate maps a channel message to a command. Note ids are MIDI keys; a
// NoteOn with velocity 0 is a NoteOff. Messages with no mapping report false.
func Translate(msg midi.Message) (control.Command, bool) {
	var ch, key, vel, cc, val uint8
	switch {
	case msg.GetNoteStart(&ch, &key, &vel):
		return control.Command{
			Name: "note-on",
			Args: []float64{float64(key), KeyToFreq(key), MaxModIndex * float64(vel) / 127},
		}, true
	case msg.GetNoteEnd(&ch, &key):
		return control.Command{Name: "note-off", Args: []float64{float64(key)}}, true
	case msg.GetControlChange(&ch, &cc, &val):
		switch cc {
		case CCModWheel:
			return control.Command{Name: "set-spasm", Args: []float64{float64(val) / 127}}, true
		case CCResonance:
			return control.Command{Name: "filter-q", Args: []float64{float64(val) / 127}}, true
		case CCBrightness:
			return control.Command{Name: "cutoff", Args: []float64{ccToCutoff(val)}}, true
		case CCAllNotesOff:
			return control.Command{Name: "all-notes-off"}, true
		}
	}
	return control.Command{}, false
}

// Listen forwards translated messages from the named input port, or the
// first port when name is empty. The returned stop function closes the
// listener.
func Listen(name string, fn func(control.Command)) (stop func(), err error) {
	in, err := openIn(name)
	if err != nil {
		return nil, err
	}
	stop, err = midi.ListenTo(in, func(msg midi.Message, _ int32) {
		if cmd, ok := Translate(msg); ok {
			fn(cmd)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", in, err)
	}
	return stop, nil
}

func openIn(name string) (drivers.In, error) {
	if name != "" {
		in, err := midi.FindInPort(name)
		if err != nil {
			return nil, fmt.Errorf("find port %q: %w", name, err)
		}
		return in, nil
	}
	if len(midi.GetInPorts()) == 0 {
		return nil, ErrNoPorts
	}
	in, err := midi.InPort(0)
	if err != nil {
		return nil, fmt.Errorf("open first port: %w", err)
	}
	return in, nil
}

// Close releases the registered MIDI driver.
func Close() {
	midi.CloseDriver()
}

// Ports lists the input ports of the registered driver.
func Ports() []string {
	ins := midi.GetInPorts()
	names := make([]string, len(ins))
	for i, in := range ins {
		names[i] = in.String()
	}
	return names
}
