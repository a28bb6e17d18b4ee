package midi

import (
	"bytes"
	"math"
	"testing"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

func TestKeyToFreq(t *testing.T) {
	for _, tc := range []struct {
		key  uint8
		want float64
	}{
		{69, 440},
		{81, 880},
		{57, 220},
		{60, 261.6255653005986},
	} {
		if got := KeyToFreq(tc.key); math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("key %d: got %f, want %f", tc.key, got, tc.want)
		}
	}
}

func TestTranslate(t *testing.T) {
	for _, tc := range []struct {
		name string
		msg  midi.Message
		cmd  string
		args []float64
	}{
		{"note on", midi.NoteOn(0, 69, 127), "note-on", []float64{69, 440, 4}},
		{"zero velocity", midi.NoteOn(3, 60, 0), "note-off", []float64{60}},
		{"note off", midi.NoteOff(0, 61), "note-off", []float64{61}},
		{"mod wheel", midi.ControlChange(0, CCModWheel, 127), "set-spasm", []float64{1}},
		{"resonance", midi.ControlChange(0, CCResonance, 0), "filter-q", []float64{0}},
		{"brightness", midi.ControlChange(0, CCBrightness, 127), "cutoff", []float64{20000}},
		{"all notes off", midi.ControlChange(0, CCAllNotesOff, 0), "all-notes-off", nil},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cmd, ok := Translate(tc.msg)
			if !ok {
				t.Fatalf("message not translated")
			}
			if cmd.Name != tc.cmd || len(cmd.Args) != len(tc.args) {
				t.Fatalf("got %v", cmd)
			}
			for i := range tc.args {
				if math.Abs(cmd.Args[i]-tc.args[i]) > 1e-9 {
					t.Fatalf("arg %d: got %f, want %f", i, cmd.Args[i], tc.args[i])
				}
			}
		})
	}
}

func TestTranslateIgnoresUnmapped(t *testing.T) {
	for _, msg := range []midi.Message{
		midi.ControlChange(0, 7, 100),
		midi.ProgramChange(0, 5),
		midi.Pitchbend(0, 100),
	} {
		if cmd, ok := Translate(msg); ok {
			t.Fatalf("%v translated to %v", msg, cmd)
		}
	}
}

func TestCutoffCurveIsMonotonic(t *testing.T) {
	prev := 0.0
	for v := 0; v <= 127; v++ {
		c := ccToCutoff(uint8(v))
		if c <= prev {
			t.Fatalf("cc %d: %f not above %f", v, c, prev)
		}
		prev = c
	}
	if ccToCutoff(0) != 20 {
		t.Fatalf("cc 0 should map to 20 Hz, got %f", ccToCutoff(0))
	}
}

func writeSMF(t *testing.T, tracks ...smf.Track) *bytes.Buffer {
	t.Helper()
	s := smf.New()
	for _, tr := range tracks {
		if err := s.Add(tr); err != nil {
			t.Fatalf("add track: %v", err)
		}
	}
	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		t.Fatalf("write smf: %v", err)
	}
	return &buf
}

func TestReadSMFTiming(t *testing.T) {
	var tr smf.Track
	tr.Add(0, smf.MetaTempo(60))
	tr.Add(0, midi.NoteOn(0, 60, 127))
	tr.Add(960, midi.NoteOff(0, 60))
	tr.Add(0, smf.MetaTempo(120))
	tr.Add(960, midi.NoteOn(0, 62, 127))
	tr.Close(0)

	events, err := ReadSMF(writeSMF(t, tr), 48000)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d: %v", len(events), events)
	}
	for i, want := range []struct {
		frame int64
		name  string
	}{
		{0, "note-on"},
		{48000, "note-off"},
		{72000, "note-on"},
	} {
		if events[i].Frame != want.frame || events[i].Command.Name != want.name {
			t.Fatalf("event %d: got frame %d %s, want %d %s",
				i, events[i].Frame, events[i].Command.Name, want.frame, want.name)
		}
	}
}

func TestReadSMFMergesTracks(t *testing.T) {
	var a, b smf.Track
	a.Add(480, midi.NoteOn(0, 64, 100))
	a.Close(0)
	b.Add(0, midi.NoteOn(1, 48, 100))
	b.Add(960, midi.ControlChange(1, CCBrightness, 64))
	b.Close(0)

	events, err := ReadSMF(writeSMF(t, a, b), 48000)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	for i := 1; i < len(events); i++ {
		if events[i].Frame < events[i-1].Frame {
			t.Fatalf("events out of order: %v", events)
		}
	}
	if events[0].Command.Args[0] != 48 || events[1].Command.Args[0] != 64 {
		t.Fatalf("unexpected merge order: %v", events)
	}
}

func TestReadSMFRejectsGarbage(t *testing.T) {
	if _, err := ReadSMF(bytes.NewBufferString("not a midi file"), 48000); err == nil {
		t.Fatalf("expected an error")
	}
}

func TestLoadSMFMissingFile(t *testing.T) {
	if _, err := LoadSMF("testdata/does-not-exist.mid", 48000); err == nil {
		t.Fatalf("expected an error")
	}
}
