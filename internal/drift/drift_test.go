package drift

import (
	"math"
	"testing"
)

func TestZeroAmountIsSilent(t *testing.T) {
	g := New(48000)
	for i := 0; i < 1000; i++ {
		if v := g.Process(); v != 0 {
			t.Fatalf("expected 0 with zero amount, got %f", v)
		}
	}
}

func TestSineDriftBounds(t *testing.T) {
	g := New(100)
	g.SetAmount(1)
	g.SetSpeed(1)
	var lo, hi float64
	for i := 0; i < 100; i++ {
		v := g.Process()
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if math.Abs(hi-0.02) > 1e-6 || math.Abs(lo+0.02) > 1e-6 {
		t.Fatalf("expected +/-0.02 swing, got [%f, %f]", lo, hi)
	}
}

func TestSlowRiseIsNonNegative(t *testing.T) {
	g := New(1000)
	g.SetAmount(1)
	g.SetSpeed(10)
	g.SetType(TypeSlowRise)
	for i := 0; i < 10000; i++ {
		v := g.Process()
		if v < 0 || v > 0.02 {
			t.Fatalf("slow rise out of [0, 0.02]: %f", v)
		}
	}
}

func TestSettersClamp(t *testing.T) {
	g := New(48000)
	g.SetAmount(3)
	g.SetSpeed(math.NaN())
	g.SetType(Type(5))
	if g.Amount() != 1 || g.Speed() != MinSpeed || g.Type() != TypeSine {
		t.Fatalf("got amount=%f speed=%f type=%d", g.Amount(), g.Speed(), g.Type())
	}
	g.SetSpeed(math.Inf(1))
	if g.Speed() != MaxSpeed {
		t.Fatalf("got speed %f, want %f", g.Speed(), MaxSpeed)
	}
}
