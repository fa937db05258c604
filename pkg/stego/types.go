// Package stego hides byte payloads in MIDI note sequences and recovers them
package stego

import (
	"fmt"
	"strings"
)

// Note is one of the 11 pitch classes used as the carrier alphabet.
// The order is significant: the probability model works on neighbours.
type Note uint8

const (
	G3 Note = iota
	A3
	B3
	C4
	D4
	E4
	F4
	G4
	A4
	B4
	C5
	NumNotes
)

// DefaultNote is the context used before the first step and whenever the
// context is not a valid note.
const DefaultNote = C4

var noteNames = [NumNotes]string{"G3", "A3", "B3", "C4", "D4", "E4", "F4", "G4", "A4", "B4", "C5"}

// MIDI key numbers. Renumbering breaks every artifact written so far.
var noteKeys = [NumNotes]uint8{55, 57, 59, 60, 62, 64, 65, 67, 69, 71, 72}

// Valid reports whether n is a member of the alphabet
func (n Note) Valid() bool {
	return n < NumNotes
}

// Key returns the MIDI key number of the note
func (n Note) Key() uint8 {
	if !n.Valid() {
		return 0
	}
	return noteKeys[n]
}

func (n Note) String() string {
	if !n.Valid() {
		return fmt.Sprintf("Note(%d)", uint8(n))
	}
	return noteNames[n]
}

// ParseNote looks a note up by name (e.g. "C4")
func ParseNote(name string) (Note, bool) {
	name = strings.TrimSpace(name)
	for i, n := range noteNames {
		if n == name {
			return Note(i), true
		}
	}
	return 0, false
}

// NoteForKey maps a MIDI key number back to the alphabet
func NoteForKey(key uint8) (Note, bool) {
	for i, k := range noteKeys {
		if k == key {
			return Note(i), true
		}
	}
	return 0, false
}

// Notes returns the alphabet in order
func Notes() []Note {
	notes := make([]Note, NumNotes)
	for i := range notes {
		notes[i] = Note(i)
	}
	return notes
}

// Chunk layout
const (
	PitchBits    = 4
	DurationBits = 2
	ChunkBits    = PitchBits + DurationBits
	MappingSize  = 1 << PitchBits
)

// Duration classes in ticks, indexed by the 2-bit duration code.
// Declaration order doubles as the tie-break order when rounding.
var durationTicks = [1 << DurationBits]uint32{
	0b00: 480, // quarter
	0b01: 240, // eighth
	0b10: 960, // half
	0b11: 720, // dotted quarter
}

// DurationTicks returns the nominal length of a duration code
func DurationTicks(code uint8) uint32 {
	return durationTicks[code&0b11]
}

// NearestDuration rounds an observed length to the closest duration code.
// Ties go to the code declared first.
func NearestDuration(ticks uint32) uint8 {
	best := uint8(0)
	bestDiff := absDiff(ticks, durationTicks[0])
	for code := 1; code < len(durationTicks); code++ {
		if d := absDiff(ticks, durationTicks[code]); d < bestDiff {
			best, bestDiff = uint8(code), d
		}
	}
	return best
}

func absDiff(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return b - a
}

// EventKind distinguishes the three event types a carrier is made of
type EventKind uint8

const (
	EventNoteOn EventKind = iota
	EventNoteOff
	EventText
)

func (k EventKind) String() string {
	switch k {
	case EventNoteOn:
		return "note_on"
	case EventNoteOff:
		return "note_off"
	case EventText:
		return "text"
	default:
		return "unknown"
	}
}

// Event is a single timed event. Delta is in ticks since the previous event.
type Event struct {
	Kind     EventKind
	Key      uint8
	Velocity uint8
	Delta    uint32
	Text     string
}

// NoteOn creates a begin event
func NoteOn(key, velocity uint8) Event {
	return Event{Kind: EventNoteOn, Key: key, Velocity: velocity}
}

// NoteOff creates an end event delta ticks after the previous event
func NoteOff(key uint8, delta uint32) Event {
	return Event{Kind: EventNoteOff, Key: key, Delta: delta}
}

// TextEvent creates a text marker event
func TextEvent(text string) Event {
	return Event{Kind: EventText, Text: text}
}

// IsNoteStart reports whether the event begins a sounding note
func (e Event) IsNoteStart() bool {
	return e.Kind == EventNoteOn && e.Velocity > 0
}

// IsNoteEnd reports whether the event releases a note.
// A note-on with velocity 0 counts as a release, as in running-status MIDI.
func (e Event) IsNoteEnd() bool {
	return e.Kind == EventNoteOff || (e.Kind == EventNoteOn && e.Velocity == 0)
}

func (e Event) String() string {
	switch e.Kind {
	case EventText:
		return fmt.Sprintf("text %q time=%d", e.Text, e.Delta)
	default:
		return fmt.Sprintf("%s note=%d velocity=%d time=%d", e.Kind, e.Key, e.Velocity, e.Delta)
	}
}

// Sequence is the flat, time-ordered carrier
type Sequence []Event

// NoteStarts returns the indices of all begin events
func (s Sequence) NoteStarts() []int {
	var idx []int
	for i, ev := range s {
		if ev.IsNoteStart() {
			idx = append(idx, i)
		}
	}
	return idx
}

// Markers returns the indices of all sync marker events
func (s Sequence) Markers() []int {
	var idx []int
	for i, ev := range s {
		if ev.Kind == EventText && IsSyncMarker(ev.Text) {
			idx = append(idx, i)
		}
	}
	return idx
}

// Clone returns an independent copy of the sequence
func (s Sequence) Clone() Sequence {
	out := make(Sequence, len(s))
	copy(out, s)
	return out
}
