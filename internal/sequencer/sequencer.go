// Package sequencer schedules control commands against an engine at exact
// sample frames and renders the engine in bounded blocks.
package sequencer

import (
	"slices"

	"github.com/cbegin/industrial-go/internal/control"
	"github.com/cbegin/industrial-go/internal/engine"
)

// DefaultBlockSize matches the host render quantum.
const DefaultBlockSize = 128

// EventKind identifies sequencer lifecycle events.
type EventKind int

const (
	EventLoopCompleted EventKind = iota
	EventPlaybackEnded
)

func (k EventKind) String() string {
	switch k {
	case EventLoopCompleted:
		return "loop-completed"
	case EventPlaybackEnded:
		return "playback-ended"
	default:
		return "unknown"
	}
}

// Event is a command due at Frame, counted from the start of the sequence.
type Event struct {
	Frame   int64
	Command control.Command
}

// Note returns the note-on and note-off events for one note.
func Note(start, length int64, id int, freqHz, modIndex float64) []Event {
	return []Event{
		{Frame: start, Command: control.Command{Name: "note-on", Args: []float64{float64(id), freqHz, modIndex}}},
		{Frame: start + length, Command: control.Command{Name: "note-off", Args: []float64{float64(id)}}},
	}
}

type Options struct {
	Loop              bool
	BlockSize         int // frames per engine call; 0 uses DefaultBlockSize
	ReleaseTailFrames int // frames rendered after the last voice ends before the loop or end fires
	OnEvent           func(EventKind)
	OnError           func(Event, error)
}

type Sequencer struct {
	engine    *engine.Engine
	events    []Event
	index     int
	pos       int64 // frames since the current pass started
	blockSize int
	loop      bool
	tail      int
	countdown int
	ended     bool
	onEvent   func(EventKind)
	onError   func(Event, error)
}

func New(events []Event, eng *engine.Engine) *Sequencer {
	return NewWithOptions(events, eng, Options{})
}

func NewWithOptions(events []Event, eng *engine.Engine, opts Options) *Sequencer {
	sorted := slices.Clone(events)
	for i := range sorted {
		if sorted[i].Frame < 0 {
			sorted[i].Frame = 0
		}
	}
	slices.SortStableFunc(sorted, func(a, b Event) int {
		switch {
		case a.Frame < b.Frame:
			return -1
		case a.Frame > b.Frame:
			return 1
		}
		return 0
	})
	bs := opts.BlockSize
	if bs <= 0 {
		bs = DefaultBlockSize
	}
	return &Sequencer{
		engine:    eng,
		events:    sorted,
		blockSize: bs,
		loop:      opts.Loop && len(sorted) > 0,
		tail:      max(opts.ReleaseTailFrames, 0),
		countdown: max(opts.ReleaseTailFrames, 0),
		onEvent:   opts.OnEvent,
		onError:   opts.OnError,
	}
}

func (s *Sequencer) BlockSize() int { return s.blockSize }

// Position reports frames rendered since the current pass started.
func (s *Sequencer) Position() int64 { return s.pos }

// Ended reports whether EventPlaybackEnded has fired.
func (s *Sequencer) Ended() bool { return s.ended }

// Process fills dst with mono samples. Due events are applied before the
// chunk that starts at their frame, and chunks never exceed BlockSize.
func (s *Sequencer) Process(dst []float32) {
	for off := 0; off < len(dst); {
		s.dispatchDue()
		n := min(s.blockSize, len(dst)-off)
		if s.index < len(s.events) {
			if until := s.events[s.index].Frame - s.pos; until < int64(n) {
				n = int(until)
			}
		}
		chunk := dst[off : off+n]
		s.engine.Process(chunk)
		s.pos += int64(n)
		off += n
		s.checkFinished(n)
	}
}

func (s *Sequencer) dispatchDue() {
	for s.index < len(s.events) && s.events[s.index].Frame <= s.pos {
		ev := s.events[s.index]
		s.index++
		if _, err := control.Apply(s.engine, ev.Command); err != nil && s.onError != nil {
			s.onError(ev, err)
		}
	}
}

func (s *Sequencer) checkFinished(frames int) {
	if s.ended || s.index < len(s.events) || s.engine.ActiveVoiceCount() > 0 {
		return
	}
	if s.countdown > 0 {
		s.countdown -= frames
		return
	}
	s.countdown = s.tail
	if s.loop {
		s.index = 0
		s.pos = 0
		s.emit(EventLoopCompleted)
		return
	}
	s.ended = true
	s.emit(EventPlaybackEnded)
}

func (s *Sequencer) emit(kind EventKind) {
	if s.onEvent != nil {
		s.onEvent(kind)
	}
}

// Reset rewinds to the first event without touching the engine.
func (s *Sequencer) Reset() {
	s.index = 0
	s.pos = 0
	s.ended = false
	s.countdown = s.tail
}
