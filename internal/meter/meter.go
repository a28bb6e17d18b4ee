// Package meter measures peak and RMS level of rendered audio. A Meter may be
// fed from the audio goroutine and read from another.
package meter

import (
	"math"
	"sync"

	"github.com/cwbudde/algo-vecmath"
)

// Floor is the level reported by DB for silence.
const Floor = -120.0

type Meter struct {
	mu      sync.Mutex
	peak    float64
	sumSq   float64
	count   int
	scratch []float64
	squares []float64
}

func New() *Meter {
	return &Meter{}
}

// Observe accumulates one block of samples.
func (m *Meter) Observe(block []float32) {
	if len(block) == 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if cap(m.scratch) < len(block) {
		m.scratch = make([]float64, len(block))
		m.squares = make([]float64, len(block))
	}
	x := m.scratch[:len(block)]
	sq := m.squares[:len(block)]
	for i, s := range block {
		x[i] = float64(s)
	}
	vecmath.MulBlock(sq, x, x)
	for _, v := range sq {
		m.sumSq += v
		if v > m.peak*m.peak {
			m.peak = math.Sqrt(v)
		}
	}
	m.count += len(block)
}

// Peak returns the largest absolute sample since the last Reset.
func (m *Meter) Peak() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.peak
}

// RMS returns the root mean square since the last Reset.
func (m *Meter) RMS() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.count == 0 {
		return 0
	}
	return math.Sqrt(m.sumSq / float64(m.count))
}

// Read returns peak and RMS and resets the meter.
func (m *Meter) Read() (peak, rms float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	peak = m.peak
	if m.count > 0 {
		rms = math.Sqrt(m.sumSq / float64(m.count))
	}
	m.reset()
	return peak, rms
}

func (m *Meter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset()
}

func (m *Meter) reset() {
	m.peak = 0
	m.sumSq = 0
	m.count = 0
}

// DB converts a linear level to decibels, never below Floor.
func DB(level float64) float64 {
	if level <= 0 {
		return Floor
	}
	return math.Max(20*math.Log10(level), Floor)
}
