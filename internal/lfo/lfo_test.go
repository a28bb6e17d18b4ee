package lfo

import (
	"math"
	"testing"
)

func TestLFOTriangleBasicShape(t *testing.T) {
	l := New(100) // 100 samples per cycle at 1 Hz
	l.SetRate(1)

	samples := make([]float64, 100)
	for i := range samples {
		samples[i] = l.Tick(ShapeTriangle)
	}
	// Phase advances before the waveform is read, so sample i sits at (i+1)/100.
	if math.Abs(samples[24]) > 0.05 {
		t.Errorf("triangle at phase 0.25: got %f, want ~0", samples[24])
	}
	if math.Abs(samples[49]-1.0) > 0.05 {
		t.Errorf("triangle at phase 0.5: got %f, want 1.0", samples[49])
	}
	if math.Abs(samples[74]) > 0.05 {
		t.Errorf("triangle at phase 0.75: got %f, want ~0", samples[74])
	}
}

func TestLFOSquareShape(t *testing.T) {
	l := New(100)
	l.SetRate(1)
	if v := l.Tick(ShapeSquare); v != 1 {
		t.Errorf("square first half: got %f, want 1", v)
	}
	for i := 1; i < 50; i++ {
		l.Tick(ShapeSquare)
	}
	if v := l.Tick(ShapeSquare); v != -1 {
		t.Errorf("square second half: got %f, want -1", v)
	}
}

func TestLFOSineAndUnknownShape(t *testing.T) {
	a := New(100)
	b := New(100)
	a.SetRate(1)
	b.SetRate(1)
	for i := 0; i < 25; i++ {
		va := a.Tick(ShapeSine)
		vb := b.Tick(Shape(9))
		if va != vb {
			t.Fatalf("unknown shape should fall back to sine at %d: %f vs %f", i, va, vb)
		}
		if i == 24 && math.Abs(va-1) > 1e-9 {
			t.Fatalf("sine at quarter cycle: got %f, want 1", va)
		}
	}
}

func TestLFORateClamped(t *testing.T) {
	for _, tc := range []struct {
		name string
		in   float64
		want float64
	}{
		{"low", 0.001, MinRateHz},
		{"high", 1000, MaxRateHz},
		{"nan", math.NaN(), MinRateHz},
		{"inf", math.Inf(1), MaxRateHz},
		{"in range", 3, 3},
	} {
		t.Run(tc.name, func(t *testing.T) {
			l := New(48000)
			l.SetRate(tc.in)
			if l.Rate() != tc.want {
				t.Fatalf("got %f, want %f", l.Rate(), tc.want)
			}
		})
	}
}

func TestLFOReset(t *testing.T) {
	l := New(100)
	l.SetRate(1)
	first := l.Tick(ShapeSine)
	for i := 0; i < 37; i++ {
		l.Tick(ShapeSine)
	}
	l.Reset()
	if got := l.Tick(ShapeSine); got != first {
		t.Fatalf("after reset: got %f, want %f", got, first)
	}
}

func TestSampleHoldHoldsBetweenDraws(t *testing.T) {
	s := NewSampleHold(1000)
	s.SetRate(10) // new target every 100 samples
	s.SetSlew(0)

	// The first draw happens once the counter reaches the period.
	for i := 0; i < 100; i++ {
		if v := s.Tick(); v != 0 {
			t.Fatalf("sample %d: expected 0 before first draw, got %f", i, v)
		}
	}
	held := s.Tick()
	if held == 0 {
		t.Fatalf("expected a new target after one period")
	}
	for i := 0; i < 99; i++ {
		if v := s.Tick(); v != held {
			t.Fatalf("value changed mid-period at %d: %f vs %f", i, v, held)
		}
	}
	if v := s.Tick(); v == held {
		t.Fatalf("expected a fresh draw at the next period")
	}
}

func TestSampleHoldSlewGlides(t *testing.T) {
	s := NewSampleHold(1000)
	s.SetRate(10)
	s.SetSlew(20)
	for i := 0; i < 100; i++ {
		s.Tick()
	}
	first := s.Tick()
	second := s.Tick()
	if first == 0 || math.Abs(second) <= math.Abs(first) {
		t.Fatalf("expected output to glide toward target, got %f then %f", first, second)
	}
}

func TestSampleHoldResetKeepsStreamMoving(t *testing.T) {
	s := NewSampleHold(1000)
	s.SetRate(10)
	s.SetSlew(0)
	for i := 0; i < 101; i++ {
		s.Tick()
	}
	firstDraw := s.current
	s.Reset()
	if s.current != 0 || s.target != 0 || s.counter != 0 {
		t.Fatalf("reset should clear held state")
	}
	for i := 0; i < 101; i++ {
		s.Tick()
	}
	if s.current == firstDraw {
		t.Fatalf("reset must not rewind the random stream")
	}
}

func TestJitterBounded(t *testing.T) {
	j := NewJitter(48000)
	limit := 10.0 / 48000
	for i := 0; i < 10000; i++ {
		if v := j.Tick(10); math.Abs(v) > limit {
			t.Fatalf("jitter %g exceeds %g", v, limit)
		}
	}
	// Wide bands saturate at 0.01.
	for i := 0; i < 1000; i++ {
		if v := j.Tick(1e6); math.Abs(v) > 0.01 {
			t.Fatalf("jitter %g exceeds 0.01", v)
		}
	}
}
