package industrial

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	intaudio "github.com/cbegin/industrial-go/internal/audio"
	intctl "github.com/cbegin/industrial-go/internal/control"
	inteng "github.com/cbegin/industrial-go/internal/engine"
	intseq "github.com/cbegin/industrial-go/internal/sequencer"
)

type (
	Params  = inteng.Params
	Command = intctl.Command
	Event   = intseq.Event
)

func DefaultParams() Params { return inteng.DefaultParams() }

// Note returns the note-on and note-off events for one note.
func Note(start, length int64, id int, freqHz, modIndex float64) []Event {
	return intseq.Note(start, length, id, freqHz, modIndex)
}

// PlaybackEvent is delivered on the channel returned by Watch.
type PlaybackEvent struct {
	Kind    int // EventLoopCompleted, EventPlaybackEnded, EventAck or EventWarning
	Key     string
	Values  []float64
	Message string
}

const (
	EventLoopCompleted int = iota
	EventPlaybackEnded
	EventAck
	EventWarning
)

const (
	BackendEbiten = intaudio.BackendEbiten
	BackendOto    = intaudio.BackendOto
	// BackendNone opens no device; the host pulls audio with Process.
	BackendNone = "none"

	defaultQueueSize = 256
)

var (
	ErrQueueFull    = errors.New("command queue full")
	ErrPlayerClosed = errors.New("player closed")
)

type PlayerOption func(*playerConfig)

type playerConfig struct {
	backend   string
	params    inteng.Params
	blockSize int
	sampleTap func([]float32)
}

func defaultPlayerConfig() playerConfig {
	return playerConfig{
		backend:   BackendEbiten,
		params:    inteng.DefaultParams(),
		blockSize: intseq.DefaultBlockSize,
	}
}

// WithBackend selects the output device: BackendEbiten, BackendOto or
// BackendNone.
func WithBackend(name string) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.backend = name
	}
}

// WithParams sets the engine's initial parameters.
func WithParams(p inteng.Params) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.params = p
	}
}

// WithBlockSize sets the render quantum. Commands take effect between
// quanta.
func WithBlockSize(frames int) PlayerOption {
	return func(cfg *playerConfig) {
		if frames > 0 {
			cfg.blockSize = frames
		}
	}
}

// WithSampleTap installs a callback invoked with each generated mono buffer.
// The callback runs on the audio thread; keep work brief and non-blocking.
func WithSampleTap(tap func([]float32)) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.sampleTap = tap
	}
}

// Player owns an engine and feeds it to an audio device. Commands from any
// goroutine are queued and applied on the audio goroutine.
type Player struct {
	mu         sync.Mutex
	sampleRate int
	backend    string
	audio      intaudio.Backend
	source     *engineSource
	done       chan struct{}
	closed     atomic.Bool
	eventCh    chan PlaybackEvent
	eventChMu  sync.Mutex
}

// engineSource implements SampleSource + FinishingSource. Everything it
// touches besides the queue and atomics belongs to the audio goroutine.
type engineSource struct {
	engine    *inteng.Engine
	queue     chan intctl.Command
	seq       atomic.Pointer[intseq.Sequencer]
	finished  atomic.Bool
	params    atomic.Pointer[inteng.Params]
	voices    atomic.Int32
	blockSize int
	sampleTap func([]float32)
	onAck     func(intctl.Ack)
	onWarning func(intctl.Command, error)
}

func (s *engineSource) Process(dst []float32) {
	s.drain()
	if seq := s.seq.Load(); seq != nil {
		seq.Process(dst)
	} else {
		for off := 0; off < len(dst); off += s.blockSize {
			s.engine.Process(dst[off:min(off+s.blockSize, len(dst))])
		}
	}
	s.voices.Store(int32(s.engine.ActiveVoiceCount()))
	if s.sampleTap != nil {
		s.sampleTap(dst)
	}
}

func (s *engineSource) drain() {
	applied := false
	for {
		select {
		case cmd := <-s.queue:
			ack, err := intctl.Apply(s.engine, cmd)
			if err != nil {
				s.onWarning(cmd, err)
				continue
			}
			applied = true
			s.onAck(ack)
		default:
			if applied {
				p := s.engine.Params()
				s.params.Store(&p)
			}
			return
		}
	}
}

func (s *engineSource) Finished() bool {
	return s.finished.Load()
}

func NewPlayer(sampleRate int, opts ...PlayerOption) (*Player, error) {
	if sampleRate <= 0 {
		return nil, errors.New("sampleRate must be positive")
	}
	cfg := defaultPlayerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	switch cfg.backend {
	case BackendEbiten, BackendOto, BackendNone:
	default:
		return nil, fmt.Errorf("%w: %q", intaudio.ErrUnknownBackend, cfg.backend)
	}
	p := &Player{sampleRate: sampleRate, backend: cfg.backend}
	src := &engineSource{
		engine:    inteng.New(float64(sampleRate), cfg.params),
		queue:     make(chan intctl.Command, defaultQueueSize),
		blockSize: cfg.blockSize,
		sampleTap: cfg.sampleTap,
	}
	src.onAck = func(a intctl.Ack) {
		p.sendEvent(PlaybackEvent{Kind: EventAck, Key: a.Key, Values: a.Values})
	}
	src.onWarning = func(cmd intctl.Command, err error) {
		p.sendEvent(PlaybackEvent{Kind: EventWarning, Key: cmd.Name, Message: err.Error()})
	}
	params := src.engine.Params()
	src.params.Store(&params)
	p.source = src
	return p, nil
}

func (p *Player) SampleRate() int { return p.sampleRate }

// Params returns the engine parameters as of the last applied command.
func (p *Player) Params() inteng.Params {
	return *p.source.params.Load()
}

// ActiveVoices reports the sounding voice count as of the last buffer.
func (p *Player) ActiveVoices() int {
	return int(p.source.voices.Load())
}

// Start opens the audio device and begins playback. With BackendNone it
// only marks the player as running.
func (p *Player) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed.Load() {
		return ErrPlayerClosed
	}
	if p.done == nil {
		p.done = make(chan struct{})
	}
	if p.backend == BackendNone || p.audio != nil {
		return nil
	}
	backend, err := intaudio.Open(p.backend, p.sampleRate, p.source)
	if err != nil {
		return err
	}
	p.audio = backend
	p.audio.Play()
	return nil
}

// Process renders the next buffer. Hosts using BackendNone call it from
// their own audio callback; it must not be called concurrently with a
// device backend.
func (p *Player) Process(dst []float32) {
	p.source.Process(dst)
}

// Send queues a command for the audio goroutine. Malformed commands are
// rejected here; out-of-range values are clamped by the engine.
func (p *Player) Send(cmd intctl.Command) error {
	if p.closed.Load() {
		return ErrPlayerClosed
	}
	if err := intctl.Validate(cmd); err != nil {
		return err
	}
	select {
	case p.source.queue <- cmd:
		return nil
	default:
		return ErrQueueFull
	}
}

// Exec parses and queues one command line such as "cutoff 1200".
func (p *Player) Exec(line string) error {
	cmd, err := intctl.Parse(line)
	if err != nil {
		return err
	}
	return p.Send(cmd)
}

func (p *Player) NoteOn(id int, freqHz, modIndex float64) error {
	return p.Send(intctl.Command{Name: "note-on", Args: []float64{float64(id), freqHz, modIndex}})
}

func (p *Player) NoteOff(id int) error {
	return p.Send(intctl.Command{Name: "note-off", Args: []float64{float64(id)}})
}

// PlaySequence schedules events from the next buffer on, replacing any
// sequence already playing. Without loop, Wait returns once the last note
// has died away.
func (p *Player) PlaySequence(events []intseq.Event, loop bool) {
	p.mu.Lock()
	// Signal any existing Wait() that the previous playback was replaced
	if p.done != nil {
		close(p.done)
	}
	p.done = make(chan struct{})
	p.mu.Unlock()

	seq := intseq.NewWithOptions(events, p.source.engine, intseq.Options{
		Loop:      loop,
		BlockSize: p.source.blockSize,
		OnEvent: func(kind intseq.EventKind) {
			switch kind {
			case intseq.EventLoopCompleted:
				p.sendEvent(PlaybackEvent{Kind: EventLoopCompleted})
			case intseq.EventPlaybackEnded:
				p.source.finished.Store(true)
				p.sendEvent(PlaybackEvent{Kind: EventPlaybackEnded})
				p.signalDone()
			}
		},
		OnError: func(ev intseq.Event, err error) {
			p.sendEvent(PlaybackEvent{Kind: EventWarning, Key: ev.Command.Name, Message: err.Error()})
		},
	})
	p.source.finished.Store(false)
	p.source.seq.Store(seq)
}

func (p *Player) sendEvent(ev PlaybackEvent) {
	p.eventChMu.Lock()
	ch := p.eventCh
	p.eventChMu.Unlock()
	if ch != nil {
		select {
		case ch <- ev:
		default:
			// Channel full or closed; drop event
		}
	}
}

func (p *Player) signalDone() {
	p.mu.Lock()
	done := p.done
	p.done = nil
	p.mu.Unlock()
	if done != nil {
		close(done)
	}
}

func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audio != nil {
		p.audio.Pause()
	}
}

func (p *Player) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audio != nil {
		p.audio.Play()
	}
}

// Stop closes the device and releases any Wait. A stopped player rejects
// further commands with ErrPlayerClosed.
func (p *Player) Stop() error {
	p.closed.Store(true)
	p.mu.Lock()
	var err error
	if p.audio != nil {
		err = p.audio.Close()
		p.audio = nil
	}
	done := p.done
	p.done = nil
	p.mu.Unlock()
	p.sendEvent(PlaybackEvent{Kind: EventPlaybackEnded})
	if done != nil {
		close(done)
	}
	return err
}

// Wait blocks until the current sequence ends or the player is stopped.
// For a looping sequence or live play it blocks until Stop.
// Wait returns immediately if the player was never started.
func (p *Player) Wait() {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Watch returns a channel that receives playback events:
//   - EventAck: a queued command was applied (Key, Values set)
//   - EventWarning: a queued command or sequence event was rejected
//   - EventLoopCompleted: a looping sequence restarted
//   - EventPlaybackEnded: a sequence finished or the player stopped
//
// The channel is buffered (cap 64); events are dropped rather than block the
// audio goroutine. Only the most recent Watch() channel receives events.
func (p *Player) Watch() <-chan PlaybackEvent {
	ch := make(chan PlaybackEvent, 64)
	p.eventChMu.Lock()
	p.eventCh = ch
	p.eventChMu.Unlock()
	return ch
}
