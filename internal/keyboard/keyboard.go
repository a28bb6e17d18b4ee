// Package keyboard plays the engine from a terminal. Two rows of the
// keyboard form a piano:
//
//	 s d   g h j       2 3   5 6 7
//	z x c v b n m     q w e r t y u
//
// The lower row starts at C of the current octave and the upper row one
// octave higher. '+' and '-' shift the octave, '0' to '6' pick the synth
// type, space silences everything, and Esc or Ctrl-C quits.
package keyboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/term"

	"github.com/cbegin/industrial-go/internal/control"
	"github.com/cbegin/industrial-go/internal/midi"
)

const (
	lowerRow = "zsxdcvgbhnjm"
	upperRow = "q2w3er5t6y7u"

	keyCtrlC = 0x03
	keyEsc   = 0x1b

	MinOctave     = 0
	MaxOctave     = 8
	DefaultOctave = 4
	DefaultGate   = 250 * time.Millisecond
)

// ErrQuit is returned by Run when the user asks to leave.
var ErrQuit = errors.New("keyboard: quit")

type Keyboard struct {
	send      func(control.Command)
	octave    int
	gate      time.Duration
	modIndex  float64
	afterFunc func(time.Duration, func()) (stop func() bool)

	mu      sync.Mutex
	gen     uint64
	pending map[uint8]noteOff
}

// noteOff is the release scheduled for a held key; gen identifies the press
// that scheduled it.
type noteOff struct {
	stop func() bool
	gen  uint64
}

func New(send func(control.Command)) *Keyboard {
	return &Keyboard{
		send:     send,
		octave:   DefaultOctave,
		gate:     DefaultGate,
		modIndex: 2,
		afterFunc: func(d time.Duration, f func()) func() bool {
			return time.AfterFunc(d, f).Stop
		},
		pending: make(map[uint8]noteOff),
	}
}

func (k *Keyboard) Octave() int { return k.octave }

// SetGate sets how long each key press holds its note.
func (k *Keyboard) SetGate(d time.Duration) {
	if d > 0 {
		k.gate = d
	}
}

// HandleKey acts on one input byte and reports whether the user asked to
// quit.
func (k *Keyboard) HandleKey(b byte) (quit bool) {
	switch {
	case b == keyCtrlC || b == keyEsc:
		return true
	case b == ' ':
		k.send(control.Command{Name: "panic"})
	case b == '+' || b == '=':
		k.octave = min(k.octave+1, MaxOctave)
	case b == '-' || b == '_':
		k.octave = max(k.octave-1, MinOctave)
	case b >= '0' && b <= '6':
		k.send(control.Command{Name: "set-synth-type", Args: []float64{float64(b - '0')}})
	default:
		if key, ok := k.noteFor(b); ok {
			k.play(key)
		}
	}
	return false
}

func (k *Keyboard) noteFor(b byte) (uint8, bool) {
	base := 12 * (k.octave + 1)
	for i := 0; i < len(lowerRow); i++ {
		if lowerRow[i] == b {
			return clampKey(base + i), true
		}
		if upperRow[i] == b {
			return clampKey(base + 12 + i), true
		}
	}
	return 0, false
}

func clampKey(n int) uint8 {
	return uint8(min(max(n, 0), 127))
}

// play starts key and schedules its release. Pressing a key again within
// the gate cancels the earlier release so only the latest press ends the
// note.
func (k *Keyboard) play(key uint8) {
	id := float64(key)
	k.send(control.Command{Name: "note-on", Args: []float64{id, midi.KeyToFreq(key), k.modIndex}})

	k.mu.Lock()
	defer k.mu.Unlock()
	if prev, ok := k.pending[key]; ok {
		prev.stop()
	}
	k.gen++
	gen := k.gen
	stop := k.afterFunc(k.gate, func() {
		k.mu.Lock()
		cur, ok := k.pending[key]
		latest := ok && cur.gen == gen
		if latest {
			delete(k.pending, key)
		}
		k.mu.Unlock()
		if latest {
			k.send(control.Command{Name: "note-off", Args: []float64{id}})
		}
	})
	k.pending[key] = noteOff{stop: stop, gen: gen}
}

// Run reads keys from in until ctx ends, input closes or the user quits.
// A terminal is switched to raw mode for the duration.
func (k *Keyboard) Run(ctx context.Context, in *os.File) error {
	fd := int(in.Fd())
	if term.IsTerminal(fd) {
		old, err := term.MakeRaw(fd)
		if err != nil {
			return fmt.Errorf("keyboard: raw mode: %w", err)
		}
		defer term.Restore(fd, old)
	}
	return k.read(ctx, in)
}

func (k *Keyboard) read(ctx context.Context, in io.Reader) error {
	keys := make(chan byte)
	errc := make(chan error, 1)
	go func() {
		buf := make([]byte, 1)
		for {
			n, err := in.Read(buf)
			if n > 0 {
				select {
				case keys <- buf[0]:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				errc <- err
				return
			}
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		case b := <-keys:
			if k.HandleKey(b) {
				return ErrQuit
			}
		case err := <-errc:
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}
