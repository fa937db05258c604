package stego

import (
	"io"

	"github.com/charmbracelet/log"
)

// PhraseNote is one note of the keyframe phrase
type PhraseNote struct {
	Note  Note
	Ticks uint32
}

// Config holds codec parameters. Encoder and decoder must agree on every
// field except Logger and Lookahead.
type Config struct {
	// KeyframeInterval is the number of data notes per sync block
	KeyframeInterval int
	// BaseVelocity is the velocity of slot 0; higher slots add to it
	BaseVelocity uint8
	// DurationShift is added to the last note of a block and of the phrase
	DurationShift uint32
	// Lookahead bounds every forward search (pairing, marker lookup)
	Lookahead int
	// Phrase is emitted before every sync marker
	Phrase []PhraseNote
	// Logger receives step traces; nil discards them
	Logger *log.Logger
}

// MaxVelocity is the largest velocity a MIDI note-on can carry
const MaxVelocity = 127

// DefaultPhrase is the keyframe phrase written before each marker
func DefaultPhrase() []PhraseNote {
	return []PhraseNote{
		{Note: D4, Ticks: 240},
		{Note: E4, Ticks: 240},
		{Note: A4, Ticks: 240},
		{Note: A3, Ticks: 240},
	}
}

// DefaultConfig returns the parameters every artifact has been written with
func DefaultConfig() Config {
	return Config{
		KeyframeInterval: 20,
		BaseVelocity:     80,
		DurationShift:    1,
		Lookahead:        64,
		Phrase:           DefaultPhrase(),
	}
}

// withDefaults fills zero fields from DefaultConfig
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.KeyframeInterval <= 0 {
		c.KeyframeInterval = def.KeyframeInterval
	}
	if c.BaseVelocity == 0 {
		c.BaseVelocity = def.BaseVelocity
	}
	if c.DurationShift == 0 {
		c.DurationShift = def.DurationShift
	}
	if c.Lookahead <= 0 {
		c.Lookahead = def.Lookahead
	}
	if c.Phrase == nil {
		c.Phrase = def.Phrase
	}
	if c.Logger == nil {
		c.Logger = log.New(io.Discard)
	}
	return c
}
