// Package legacy implements the original non-adaptive carrier: a fixed
// 3-bit pitch table and 2 bits in the low end of the velocity. It has no
// length prefix, no context model and no sync markers.
package legacy

import (
	"github.com/james-see/stegomidi/pkg/stego"
)

const (
	PitchBits    = 3
	VelocityBits = 2
	ChunkBits    = PitchBits + VelocityBits

	BaseVelocity = 80
	NoteTicks    = 240

	// OctaveShift moves the table one octave above the adaptive alphabet
	OctaveShift = 12
)

const velocityMask = 1<<VelocityBits - 1

// PitchKey returns the MIDI key for a 3-bit pitch code
func PitchKey(code uint8) uint8 {
	return stego.Note(code&(1<<PitchBits-1)).Key() + OctaveShift
}

func pitchCode(key uint8) (uint8, bool) {
	if key < OctaveShift {
		return 0, false
	}
	n, ok := stego.NoteForKey(key - OctaveShift)
	if !ok || n >= 1<<PitchBits {
		return 0, false
	}
	return uint8(n), true
}

// Encode writes payload as fixed-length notes, 5 bits per note
func Encode(payload []byte) stego.Sequence {
	chunks := stego.BitsFromBytes(payload).Chunks(ChunkBits)
	seq := make(stego.Sequence, 0, len(chunks)*2)
	for _, chunk := range chunks {
		key := PitchKey(chunk[:PitchBits].Uint())
		velocity := BaseVelocity&^velocityMask | chunk[PitchBits:].Uint()
		seq = append(seq, stego.NoteOn(key, velocity), stego.NoteOff(key, NoteTicks))
	}
	return seq
}

// Decode reads the bits back. Notes outside the pitch table are skipped and
// trailing pad bits are dropped.
func Decode(seq stego.Sequence) *stego.Result {
	res := &stego.Result{}
	var bits stego.Bits
	for idx, ev := range seq {
		if !ev.IsNoteStart() {
			continue
		}
		out := stego.Outcome{Index: idx, Step: len(res.Outcomes) + 1, Velocity: ev.Velocity}
		code, ok := pitchCode(ev.Key)
		if !ok {
			out.Skipped = stego.SkipUnknownKey
			res.Outcomes = append(res.Outcomes, out)
			continue
		}
		out.Bits = append(stego.BitsFromUint(code, PitchBits), stego.BitsFromUint(ev.Velocity&velocityMask, VelocityBits)...)
		bits = append(bits, out.Bits...)
		res.Outcomes = append(res.Outcomes, out)
	}

	res.Bits = len(bits)
	res.Payload = bits[:len(bits)/8*8].Bytes()
	res.DeclaredLength = uint32(len(res.Payload))
	res.Text = stego.DecodeText(res.Payload)
	return res
}
