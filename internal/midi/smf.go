package midi

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"slices"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/cbegin/industrial-go/internal/sequencer"
)

var ErrTimeFormat = errors.New("unsupported SMF time format")

const defaultBPM = 120.0

type tickedMessage struct {
	tick  uint64
	track int
	msg   smf.Message
}

// LoadSMF reads a Standard MIDI File and converts it to sequencer events.
func LoadSMF(path string, sampleRate int) ([]sequencer.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	events, err := ReadSMF(f, sampleRate)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return events, nil
}

// ReadSMF converts every mapped channel message of all tracks to an event
// at its absolute frame, following tempo changes.
func ReadSMF(r io.Reader, sampleRate int) ([]sequencer.Event, error) {
	s, err := smf.ReadFrom(r)
	if err != nil {
		return nil, fmt.Errorf("read smf: %w", err)
	}
	ticks, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrTimeFormat, s.TimeFormat)
	}

	var all []tickedMessage
	for ti, tr := range s.Tracks {
		var abs uint64
		for _, ev := range tr {
			abs += uint64(ev.Delta)
			all = append(all, tickedMessage{tick: abs, track: ti, msg: ev.Message})
		}
	}
	slices.SortStableFunc(all, func(a, b tickedMessage) int {
		switch {
		case a.tick < b.tick:
			return -1
		case a.tick > b.tick:
			return 1
		}
		return a.track - b.track
	})

	ppq := float64(ticks.Ticks4th())
	bpm := defaultBPM
	var lastTick uint64
	var seconds float64
	var events []sequencer.Event
	for _, tm := range all {
		seconds += float64(tm.tick-lastTick) * 60 / (bpm * ppq)
		lastTick = tm.tick

		var tempo float64
		if tm.msg.GetMetaTempo(&tempo) {
			if tempo > 0 {
				bpm = tempo
			}
			continue
		}
		cmd, ok := Translate(midi.Message(tm.msg))
		if !ok {
			continue
		}
		frame := int64(math.Round(seconds * float64(sampleRate)))
		events = append(events, sequencer.Event{Frame: frame, Command: cmd})
	}
	return events, nil
}
