// Package chaos provides a slow global modulator driven by one of three
// chaotic systems. The state is stepped at a low control rate and held in
// between steps.
package chaos

import "math"

type Mode int

const (
	ModeLogistic Mode = iota
	ModeLorenz
	ModePendulum
)

func (m Mode) String() string {
	switch m {
	case ModeLorenz:
		return "lorenz"
	case ModePendulum:
		return "pendulum"
	default:
		return "logistic"
	}
}

const (
	MinRateHz = 0.1
	MaxRateHz = 20.0

	logisticR = 3.9

	lorenzDt    = 0.01
	lorenzSigma = 10.0
	lorenzRho   = 28.0
	lorenzBeta  = 8.0 / 3.0
	lorenzLimit = 50.0

	pendulumDt      = 0.01
	pendulumG       = 9.81
	pendulumM1      = 1.0
	pendulumM2      = 1.0
	pendulumL1      = 1.0
	pendulumL2      = 1.0
	pendulumMaxVelo = 10.0
)

// Modulator steps a chaotic system once every sampleRate/rate calls to
// Process and maps its state onto [-1, 1].
type Modulator struct {
	mode       Mode
	rateHz     float64
	counter    float64
	sampleRate float64

	x, y, z        float64
	theta1, theta2 float64
	p1, p2         float64
}

func New(sampleRate float64) *Modulator {
	m := &Modulator{rateHz: 1, sampleRate: sampleRate}
	m.resetState()
	return m
}

// SetMode switches the system and reinitialises its state. Unknown modes
// fall back to logistic.
func (m *Modulator) SetMode(mode Mode) {
	if mode < ModeLogistic || mode > ModePendulum {
		mode = ModeLogistic
	}
	m.mode = mode
	m.resetState()
}

// SetRate sets the update rate, clamped to [0.1, 20] Hz.
func (m *Modulator) SetRate(hz float64) {
	if math.IsNaN(hz) {
		hz = MinRateHz
	}
	m.rateHz = math.Min(math.Max(hz, MinRateHz), MaxRateHz)
}

func (m *Modulator) Mode() Mode { return m.mode }
func (m *Modulator) Rate() float64 { return m.rateHz }

func (m *Modulator) resetState() {
	m.x, m.y, m.z = 0.5, 1, 1
	m.theta1, m.theta2 = 1, 1
	m.p1, m.p2 = 0, 0
}

// Process advances the update counter by one and returns the current output.
func (m *Modulator) Process() float64 {
	period := math.Max(m.sampleRate/m.rateHz, 1)
	if m.counter >= period {
		m.counter = 0
		m.step()
	}
	m.counter++
	return m.Value()
}

// Value returns the output for the held state without advancing.
func (m *Modulator) Value() float64 {
	switch m.mode {
	case ModeLorenz:
		return clampUnit(m.x / lorenzLimit)
	case ModePendulum:
		return clampUnit(m.theta1 / math.Pi)
	default:
		return (m.x - 0.5) * 2
	}
}

func (m *Modulator) step() {
	switch m.mode {
	case ModeLorenz:
		m.stepLorenz()
	case ModePendulum:
		m.stepPendulum()
	default:
		m.x = logisticR * m.x * (1 - m.x)
		m.x = math.Min(math.Max(m.x, 0), 1)
	}
}

func (m *Modulator) stepLorenz() {
	dx := lorenzSigma * (m.y - m.x)
	dy := m.x*(lorenzRho-m.z) - m.y
	dz := m.x*m.y - lorenzBeta*m.z
	m.x = clampAbs(m.x+dx*lorenzDt, lorenzLimit)
	m.y = clampAbs(m.y+dy*lorenzDt, lorenzLimit)
	m.z = clampAbs(m.z+dz*lorenzDt, lorenzLimit)
}

func (m *Modulator) stepPendulum() {
	const (
		g  = pendulumG
		m1 = pendulumM1
		m2 = pendulumM2
		l1 = pendulumL1
		l2 = pendulumL2
	)
	t1, t2 := m.theta1, m.theta2
	d := t1 - t2
	den := 2*m1 + m2 - m2*math.Cos(2*d)

	num1 := -g*(2*m1+m2)*math.Sin(t1) -
		m2*g*math.Sin(t1-2*t2) -
		2*math.Sin(d)*m2*(m.p2*m.p2*l2+m.p1*m.p1*l1*math.Cos(d))
	a1 := num1 / (l1 * den)

	num2 := 2 * math.Sin(d) * (m.p1*m.p1*l1*(m1+m2) +
		g*(m1+m2)*math.Cos(t1) +
		m.p2*m.p2*l2*m2*math.Cos(d))
	a2 := num2 / (l2 * den)

	m.p1 += a1 * pendulumDt
	m.p2 += a2 * pendulumDt
	m.theta1 += m.p1 * pendulumDt
	m.theta2 += m.p2 * pendulumDt
	m.p1 = clampAbs(m.p1, pendulumMaxVelo)
	m.p2 = clampAbs(m.p2, pendulumMaxVelo)
}

func clampAbs(v, limit float64) float64 {
	return math.Min(math.Max(v, -limit), limit)
}

func clampUnit(v float64) float64 {
	return clampAbs(v, 1)
}
