package industrial

import (
	inteng "github.com/cbegin/industrial-go/internal/engine"
	intseq "github.com/cbegin/industrial-go/internal/sequencer"
)

// Render plays events through a fresh engine and returns seconds of mono
// output. The result depends only on its arguments.
func Render(events []intseq.Event, sampleRate int, seconds float64, params inteng.Params) []float32 {
	if sampleRate <= 0 || seconds <= 0 {
		return nil
	}
	engine := inteng.New(float64(sampleRate), params)
	seq := intseq.New(events, engine)
	frames := int(float64(sampleRate) * seconds)
	out := make([]float32, frames)
	seq.Process(out)
	return out
}
