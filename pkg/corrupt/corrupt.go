// Package corrupt damages carrier files on purpose to exercise the decoder's
// sync checks
package corrupt

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/james-see/stegomidi/pkg/converter"
	"github.com/james-see/stegomidi/pkg/stego"
)

// OutputPrefix is prepended to the name of a corrupted copy
const OutputPrefix = "corrupted_"

// ErrNoNotes is returned when a sequence has no sounding note to alter
var ErrNoNotes = errors.New("no note-on events to corrupt")

// Change records a single altered note
type Change struct {
	Index int   `json:"index"`
	Note  int   `json:"note"`
	From  uint8 `json:"from"`
	To    uint8 `json:"to"`
}

func (c Change) String() string {
	return fmt.Sprintf("note %d (event %d): key %d -> %d", c.Note, c.Index, c.From, c.To)
}

// Shift raises the key of one randomly chosen note-on by a semitone. The
// input is left untouched.
func Shift(seq stego.Sequence, rng *rand.Rand) (stego.Sequence, Change, error) {
	starts := seq.NoteStarts()
	if len(starts) == 0 {
		return nil, Change{}, ErrNoNotes
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return ShiftAt(seq, rng.Intn(len(starts)))
}

// ShiftAt raises the key of the n-th note-on (0-based)
func ShiftAt(seq stego.Sequence, n int) (stego.Sequence, Change, error) {
	starts := seq.NoteStarts()
	if len(starts) == 0 {
		return nil, Change{}, ErrNoNotes
	}
	if n < 0 || n >= len(starts) {
		return nil, Change{}, fmt.Errorf("note %d out of range (have %d)", n, len(starts))
	}

	out := seq.Clone()
	idx := starts[n]
	from := out[idx].Key
	out[idx].Key = (from + 1) % 128

	return out, Change{Index: idx, Note: n, From: from, To: out[idx].Key}, nil
}

// OutputName returns the path of the corrupted copy, next to the input
func OutputName(path string) string {
	return filepath.Join(filepath.Dir(path), OutputPrefix+filepath.Base(path))
}

// Bytes corrupts MIDI data and returns the re-encoded file. The copy keeps
// the input's resolution.
func Bytes(m *converter.MIDIConverter, data []byte, rng *rand.Rand) ([]byte, Change, error) {
	seq, resolution, err := m.ReadSequenceResolution(data)
	if err != nil {
		return nil, Change{}, err
	}

	damaged, change, err := Shift(seq, rng)
	if err != nil {
		return nil, Change{}, err
	}

	out, err := m.WithResolution(resolution).WriteSequence(damaged, "")
	if err != nil {
		return nil, Change{}, fmt.Errorf("failed to write corrupted MIDI: %w", err)
	}
	return out, change, nil
}

// File corrupts the MIDI file at path and writes corrupted_<name> beside it
func File(m *converter.MIDIConverter, path string, rng *rand.Rand) (string, Change, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", Change{}, fmt.Errorf("failed to read MIDI file: %w", err)
	}

	out, change, err := Bytes(m, data, rng)
	if err != nil {
		return "", Change{}, fmt.Errorf("%s: %w", path, err)
	}

	output := OutputName(path)
	if err := os.WriteFile(output, out, 0644); err != nil {
		return "", Change{}, fmt.Errorf("failed to write corrupted file: %w", err)
	}
	return output, change, nil
}
