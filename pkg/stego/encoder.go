package stego

import (
	"encoding/binary"

	"github.com/charmbracelet/log"
)

// LengthPrefixSize is the size of the big-endian payload length header
const LengthPrefixSize = 4

// WireBody prefixes the payload with its 4-byte big-endian length
func WireBody(payload []byte) []byte {
	body := make([]byte, LengthPrefixSize+len(payload))
	binary.BigEndian.PutUint32(body, uint32(len(payload)))
	copy(body[LengthPrefixSize:], payload)
	return body
}

// Encoder turns payloads into carrier sequences
type Encoder struct {
	cfg Config
}

// NewEncoder creates an encoder; zero config fields take their defaults
func NewEncoder(cfg Config) *Encoder {
	return &Encoder{cfg: cfg.withDefaults()}
}

// Encode hides payload in a note sequence using the default configuration
func Encode(payload []byte) Sequence {
	return NewEncoder(DefaultConfig()).Encode(payload)
}

// Encode hides payload in a note sequence. It is total over every input.
func (e *Encoder) Encode(payload []byte) Sequence {
	chunks := BitsFromBytes(WireBody(payload)).Chunks(ChunkBits)

	s := &encodeSession{
		cfg:  e.cfg,
		log:  e.cfg.Logger,
		prev: DefaultNote,
		out:  make(Sequence, 0, len(chunks)*2),
	}
	s.log.Info("encoding", "payload_bytes", len(payload), "chunks", len(chunks))

	for i, chunk := range chunks {
		s.step(i+1, chunk)
	}
	return s.out
}

// encodeSession carries the running state of one Encode call
type encodeSession struct {
	cfg   Config
	log   *log.Logger
	prev  Note
	block Bits
	since int
	out   Sequence
}

func (s *encodeSession) step(step int, chunk Bits) {
	pitch := chunk[:PitchBits].Uint()
	duration := chunk[PitchBits:].Uint()

	mapping := MappingFor(s.prev)
	note := mapping[pitch]
	slot := mapping.SlotIndex(pitch)

	velocity := int(s.cfg.BaseVelocity) + slot
	if velocity > MaxVelocity {
		velocity = MaxVelocity
	}

	keyframe := s.since+1 >= s.cfg.KeyframeInterval
	ticks := DurationTicks(duration)
	if keyframe {
		ticks += s.cfg.DurationShift
	}

	s.log.Debug("encode step", "step", step, "prev", s.prev, "chunk", chunk,
		"mapping", mapping, "note", note, "slot", slot, "ticks", ticks)

	s.out = append(s.out,
		NoteOn(note.Key(), uint8(velocity)),
		NoteOff(note.Key(), ticks),
	)
	s.block = append(s.block, chunk...)
	s.since++
	s.prev = note

	if keyframe {
		s.emitSync(step, note)
	}
}

func (s *encodeSession) emitSync(step int, note Note) {
	marker := SyncMarker{Step: step, Symbol: note.String(), Checksum: Checksum(s.block)}

	for i, p := range s.cfg.Phrase {
		ticks := p.Ticks
		if i == len(s.cfg.Phrase)-1 {
			ticks += s.cfg.DurationShift
		}
		s.out = append(s.out,
			NoteOn(p.Note.Key(), s.cfg.BaseVelocity),
			NoteOff(p.Note.Key(), ticks),
		)
	}
	s.out = append(s.out, TextEvent(marker.String()))

	s.log.Info("sync written", "step", step, "block_bits", len(s.block), "marker", marker.String())
	s.block = nil
	s.since = 0
}
