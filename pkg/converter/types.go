// Package converter moves text in and out of MIDI carrier files
package converter

import (
	"github.com/james-see/stegomidi/pkg/stego"
)

// Scheme is a steganographic encoding between payload bytes and note events
type Scheme interface {
	Name() string
	ID() string
	Encode(payload []byte) stego.Sequence
	Decode(seq stego.Sequence) *stego.Result
}

// EncodeResult holds the output of an encode
type EncodeResult struct {
	Data    []byte
	Events  int
	Markers int
}

// Converter handles text <-> MIDI conversions
type Converter struct {
	scheme Scheme
	midi   *MIDIConverter
}

// New creates a new Converter with the specified scheme
func New(scheme Scheme) *Converter {
	return &Converter{scheme: scheme, midi: NewMIDIConverter()}
}

// GetScheme returns the current scheme
func (c *Converter) GetScheme() Scheme {
	return c.scheme
}

// SetScheme sets the scheme for conversion
func (c *Converter) SetScheme(scheme Scheme) {
	c.scheme = scheme
}

// MIDI returns the container reader/writer used by the converter
func (c *Converter) MIDI() *MIDIConverter {
	return c.midi
}
