package converter

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/james-see/stegomidi/pkg/stego"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// ErrNotMIDI is returned when data is not a Standard MIDI File
var ErrNotMIDI = errors.New("not a MIDI file")

// MIDIConverter reads and writes carrier sequences as Standard MIDI Files
type MIDIConverter struct {
	ticksPerQuarter uint16
	tempo           float64
	channel         uint8
}

// NewMIDIConverter creates a new MIDI converter
func NewMIDIConverter() *MIDIConverter {
	return &MIDIConverter{
		ticksPerQuarter: 480,
		tempo:           120.0,
	}
}

// ReadSequenceFile reads a MIDI file and flattens it into a sequence
func (m *MIDIConverter) ReadSequenceFile(filename string) (stego.Sequence, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read MIDI file: %w", err)
	}
	return m.ReadSequence(data)
}

// ReadSequence parses MIDI data into a flat sequence. Tracks are concatenated
// in file order. Events other than notes and text are dropped, their delta
// carried into the next kept event.
func (m *MIDIConverter) ReadSequence(data []byte) (stego.Sequence, error) {
	seq, _, err := m.ReadSequenceResolution(data)
	return seq, err
}

// ReadSequenceResolution is ReadSequence that also reports the file's ticks
// per quarter note. SMPTE timed files report the converter's own resolution.
func (m *MIDIConverter) ReadSequenceResolution(data []byte) (seq stego.Sequence, resolution uint16, err error) {
	if DetectFormatFromContent(data) != FormatMIDI {
		return nil, 0, ErrNotMIDI
	}

	// smf can panic on truncated input
	defer func() {
		if r := recover(); r != nil {
			seq, resolution, err = nil, 0, fmt.Errorf("failed to parse MIDI: %v", r)
		}
	}()

	s, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to parse MIDI: %w", err)
	}

	resolution = m.ticksPerQuarter
	if mt, ok := s.TimeFormat.(smf.MetricTicks); ok {
		resolution = mt.Resolution()
	}

	for _, track := range s.Tracks {
		var delta uint32
		for _, ev := range track {
			delta += ev.Delta

			var ch, key, vel uint8
			var text string
			msg := midi.Message(ev.Message)

			switch {
			case msg.GetNoteStart(&ch, &key, &vel):
				seq = append(seq, stego.Event{Kind: stego.EventNoteOn, Key: key, Velocity: vel, Delta: delta})
			case msg.GetNoteEnd(&ch, &key):
				seq = append(seq, stego.Event{Kind: stego.EventNoteOff, Key: key, Delta: delta})
			case ev.Message.GetMetaText(&text):
				seq = append(seq, stego.Event{Kind: stego.EventText, Text: text, Delta: delta})
			default:
				continue
			}
			delta = 0
		}
	}

	return seq, resolution, nil
}

// Resolution returns the ticks per quarter note written into new files
func (m *MIDIConverter) Resolution() uint16 {
	return m.ticksPerQuarter
}

// WithResolution returns a copy of the converter that writes files with the
// given ticks per quarter note
func (m *MIDIConverter) WithResolution(ticksPerQuarter uint16) *MIDIConverter {
	c := *m
	if ticksPerQuarter > 0 {
		c.ticksPerQuarter = ticksPerQuarter
	}
	return &c
}

// WriteSequence creates a single-track MIDI file from a sequence. title goes
// into the track name; it carries no payload.
func (m *MIDIConverter) WriteSequence(seq stego.Sequence, title string) ([]byte, error) {
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(m.ticksPerQuarter)

	var track smf.Track
	if title != "" {
		track.Add(0, smf.MetaTrackSequenceName(title))
	}
	track.Add(0, smf.MetaTempo(m.tempo))

	for i, ev := range seq {
		switch ev.Kind {
		case stego.EventNoteOn:
			track.Add(ev.Delta, midi.NoteOn(m.channel, ev.Key, ev.Velocity))
		case stego.EventNoteOff:
			track.Add(ev.Delta, midi.NoteOff(m.channel, ev.Key))
		case stego.EventText:
			track.Add(ev.Delta, smf.MetaText(ev.Text))
		default:
			return nil, fmt.Errorf("event %d: unsupported kind %s", i, ev.Kind)
		}
	}

	track.Close(0)

	if err := s.Add(track); err != nil {
		return nil, fmt.Errorf("failed to add track: %w", err)
	}

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write MIDI: %w", err)
	}

	return buf.Bytes(), nil
}

// WriteSequenceFile writes a sequence to a MIDI file
func (m *MIDIConverter) WriteSequenceFile(seq stego.Sequence, title, filename string) error {
	data, err := m.WriteSequence(seq, title)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0644)
}
