// Package audio connects a mono sample source to a sound device.
package audio

import (
	"errors"
	"fmt"
)

// Backend is an open output stream.
type Backend interface {
	Play()
	Pause()
	IsPlaying() bool
	Close() error
}

const (
	BackendEbiten = "ebiten"
	BackendOto    = "oto"
)

var ErrUnknownBackend = errors.New("unknown audio backend")

// Open starts a stream on the named backend. The ebiten backend plays in
// stereo, oto in mono. Only one backend can be used per process.
func Open(name string, sampleRate int, source SampleSource) (Backend, error) {
	switch name {
	case BackendEbiten, "":
		p, err := NewEbitenPlayer(sampleRate, source)
		if err != nil {
			return nil, err
		}
		return p, nil
	case BackendOto:
		p, err := NewOtoPlayer(sampleRate, source)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
}
