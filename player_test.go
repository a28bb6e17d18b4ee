package industrial

import (
	"errors"
	"testing"

	intaudio "github.com/cbegin/industrial-go/internal/audio"
	intctl "github.com/cbegin/industrial-go/internal/control"
)

func newHeadless(t *testing.T, opts ...PlayerOption) *Player {
	t.Helper()
	pl, err := NewPlayer(48000, append([]PlayerOption{WithBackend(BackendNone)}, opts...)...)
	if err != nil {
		t.Fatalf("new player: %v", err)
	}
	return pl
}

func peak(buf []float32) float32 {
	var m float32
	for _, s := range buf {
		if s < 0 {
			s = -s
		}
		m = max(m, s)
	}
	return m
}

func TestNewPlayerRejectsBadConfig(t *testing.T) {
	if _, err := NewPlayer(0, WithBackend(BackendNone)); err == nil {
		t.Fatalf("zero sample rate should fail")
	}
	if _, err := NewPlayer(48000, WithBackend("alsa")); !errors.Is(err, intaudio.ErrUnknownBackend) {
		t.Fatalf("got %v", err)
	}
}

func TestQueuedCommandsApplyOnProcess(t *testing.T) {
	pl := newHeadless(t)
	events := pl.Watch()
	if err := pl.Exec("cutoff 99999"); err != nil {
		t.Fatalf("exec: %v", err)
	}
	if got := pl.Params().Cutoff; got == 20000 {
		t.Fatalf("command applied before the audio thread ran")
	}
	pl.Process(make([]float32, 128))
	if got := pl.Params().Cutoff; got != 20000 {
		t.Fatalf("cutoff %f, want clamp to 20000", got)
	}
	select {
	case ev := <-events:
		if ev.Kind != EventAck || ev.Key != "cutoff" || ev.Values[0] != 99999 {
			t.Fatalf("got %+v", ev)
		}
	default:
		t.Fatalf("expected an ack event")
	}
}

func TestSendRejectsMalformedCommands(t *testing.T) {
	pl := newHeadless(t)
	if err := pl.Exec("warp 9"); !errors.Is(err, intctl.ErrUnknownCommand) {
		t.Fatalf("got %v", err)
	}
	if err := pl.Exec("set-adsr 1 2"); !errors.Is(err, intctl.ErrArgCount) {
		t.Fatalf("got %v", err)
	}
	if err := pl.Exec("cutoff loud"); !errors.Is(err, intctl.ErrBadArgument) {
		t.Fatalf("got %v", err)
	}
}

func TestQueueFull(t *testing.T) {
	pl := newHeadless(t)
	var err error
	for i := 0; i <= defaultQueueSize && err == nil; i++ {
		err = pl.Exec("fm-level 0.5")
	}
	if !errors.Is(err, ErrQueueFull) {
		t.Fatalf("got %v", err)
	}
	pl.Process(make([]float32, 16))
	if err := pl.Exec("fm-level 0.5"); err != nil {
		t.Fatalf("queue should drain, got %v", err)
	}
}

func TestLiveNotes(t *testing.T) {
	pl := newHeadless(t)
	buf := make([]float32, 1024)
	pl.Process(buf)
	if peak(buf) != 0 {
		t.Fatalf("expected silence before any note")
	}
	if err := pl.NoteOn(60, 261.63, 2); err != nil {
		t.Fatalf("note on: %v", err)
	}
	pl.Process(buf)
	if peak(buf) == 0 {
		t.Fatalf("expected signal after note on")
	}
	if err := pl.NoteOff(60); err != nil {
		t.Fatalf("note off: %v", err)
	}
	for i := 0; i < 200; i++ {
		pl.Process(buf)
	}
	if peak(buf) != 0 {
		t.Fatalf("expected silence after release, peak %f", peak(buf))
	}
}

func TestSampleTapSeesOutput(t *testing.T) {
	var tapped int
	pl := newHeadless(t, WithSampleTap(func(b []float32) { tapped += len(b) }), WithBlockSize(64))
	pl.Process(make([]float32, 300))
	if tapped != 300 {
		t.Fatalf("tap saw %d samples, want 300", tapped)
	}
}

func TestPlaySequenceEnds(t *testing.T) {
	p := DefaultParams()
	p.ReleaseMs = 5
	pl := newHeadless(t, WithParams(p))
	if err := pl.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	events := pl.Watch()
	pl.PlaySequence(Note(0, 480, 1, 220, 1), false)
	buf := make([]float32, 512)
	for i := 0; i < 100 && !pl.source.Finished(); i++ {
		pl.Process(buf)
	}
	if !pl.source.Finished() {
		t.Fatalf("sequence never finished")
	}
	pl.Wait()
	var ended bool
	for len(events) > 0 {
		if ev := <-events; ev.Kind == EventPlaybackEnded {
			ended = true
		}
	}
	if !ended {
		t.Fatalf("expected playback ended event")
	}
}

func TestStopClosesPlayer(t *testing.T) {
	pl := newHeadless(t)
	if err := pl.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	done := make(chan struct{})
	go func() {
		pl.Wait()
		close(done)
	}()
	if err := pl.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	<-done
	if err := pl.Exec("panic"); !errors.Is(err, ErrPlayerClosed) {
		t.Fatalf("got %v", err)
	}
	if err := pl.Start(); !errors.Is(err, ErrPlayerClosed) {
		t.Fatalf("got %v", err)
	}
}

func TestActiveVoicesTracksLastBuffer(t *testing.T) {
	pl := newHeadless(t)
	for id := 0; id < 3; id++ {
		if err := pl.NoteOn(id, 110*float64(id+1), 1); err != nil {
			t.Fatalf("note on: %v", err)
		}
	}
	if pl.ActiveVoices() != 0 {
		t.Fatalf("voices counted before render")
	}
	pl.Process(make([]float32, 64))
	if got := pl.ActiveVoices(); got != 3 {
		t.Fatalf("active voices %d, want 3", got)
	}
}
