package mocks

import (
	"github.com/user/ornament/pkg/ports"
)

// AudioOutput is a mock implementation of ports.AudioOutput.
type AudioOutput struct {
	SetFormatFunc func(spec ports.AudioSpec) error
	PutFunc       func(samples []byte) error

	Formats []ports.AudioSpec
	Resumes int
	Clears  int
	Puts    int
	Queue   []byte
	Closed  bool
}

// NewAudioOutput creates a new mock AudioOutput.
func NewAudioOutput() *AudioOutput {
	return &AudioOutput{}
}

func (m *AudioOutput) SetFormat(spec ports.AudioSpec) error {
	if m.SetFormatFunc != nil {
		if err := m.SetFormatFunc(spec); err != nil {
			return err
		}
	}
	m.Formats = append(m.Formats, spec)
	return nil
}

func (m *AudioOutput) Resume() error {
	m.Resumes++
	return nil
}

func (m *AudioOutput) Put(samples []byte) error {
	if m.PutFunc != nil {
		return m.PutFunc(samples)
	}
	m.Puts++
	m.Queue = append(m.Queue, samples...)
	return nil
}

func (m *AudioOutput) Clear() error {
	m.Clears++
	m.Queue = nil
	return nil
}

func (m *AudioOutput) Queued() int {
	return len(m.Queue)
}

func (m *AudioOutput) Close() error {
	m.Closed = true
	return nil
}

var _ ports.AudioOutput = (*AudioOutput)(nil)
