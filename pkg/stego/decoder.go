package stego

import (
	"encoding/binary"
	"fmt"

	"github.com/charmbracelet/log"
)

// SkipReason explains why a note start produced no bits
type SkipReason string

const (
	SkipUnknownKey  SkipReason = "unknown key"
	SkipNoCandidate SkipReason = "no candidate code"
)

// Outcome is the result of decoding one note start
type Outcome struct {
	Index    int // event index of the note start
	Step     int
	Note     Note
	Velocity uint8
	Ticks    uint32
	Unpaired bool
	Bits     Bits
	Skipped  SkipReason // empty when the note was recovered
	Boundary bool       // the note closed a sync block
}

// Recovered reports whether the step contributed bits
func (o Outcome) Recovered() bool {
	return o.Skipped == ""
}

// SyncCheck records the verification of one sync marker
type SyncCheck struct {
	Index     int // event index of the marker
	Text      string
	Marker    SyncMarker
	Malformed bool
	Block     Bits
	Actual    byte
	Match     bool
	Phrase    bool // the keyframe phrase preceded the marker intact
}

// Result is everything a decode recovered
type Result struct {
	Payload        []byte
	Text           string
	Bits           int // recovered bit count before byte padding
	DeclaredLength uint32
	Outcomes       []Outcome
	Syncs          []SyncCheck
}

// Skipped returns the outcomes that produced no bits
func (r *Result) Skipped() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if !o.Recovered() {
			out = append(out, o)
		}
	}
	return out
}

// Mismatches returns the sync checks whose checksum did not verify
func (r *Result) Mismatches() []SyncCheck {
	var out []SyncCheck
	for _, c := range r.Syncs {
		if !c.Match {
			out = append(out, c)
		}
	}
	return out
}

// Truncated reports whether fewer payload bytes were recovered than declared
func (r *Result) Truncated() bool {
	return uint32(len(r.Payload)) < r.DeclaredLength
}

// Decoder recovers payloads from carrier sequences
type Decoder struct {
	cfg Config
}

// NewDecoder creates a decoder; zero config fields take their defaults
func NewDecoder(cfg Config) *Decoder {
	return &Decoder{cfg: cfg.withDefaults()}
}

// Decode recovers a payload using the default configuration
func Decode(seq Sequence) *Result {
	return NewDecoder(DefaultConfig()).Decode(seq)
}

// Decode recovers the payload hidden in seq. It never fails: damaged input
// degrades into skipped steps and checksum mismatches recorded in the result.
func (d *Decoder) Decode(seq Sequence) *Result {
	s := &decodeSession{
		cfg:      d.cfg,
		log:      d.cfg.Logger,
		seq:      seq,
		prev:     DefaultNote,
		consumed: make(map[int]bool),
		result:   &Result{},
	}
	for idx := range seq {
		if s.consumed[idx] || !seq[idx].IsNoteStart() {
			continue
		}
		s.step(idx)
	}
	s.finish()
	return s.result
}

// decodeSession carries the running state of one Decode call
type decodeSession struct {
	cfg      Config
	log      *log.Logger
	seq      Sequence
	prev     Note
	bits     Bits
	block    Bits
	consumed map[int]bool
	steps    int
	result   *Result
}

func (s *decodeSession) step(idx int) {
	ev := s.seq[idx]
	s.steps++
	out := Outcome{Index: idx, Step: s.steps, Velocity: ev.Velocity}

	ticks, offIdx, paired := s.seq.FindNoteEnd(idx, ev.Key, s.cfg.Lookahead)
	out.Ticks = ticks
	out.Unpaired = !paired
	if !paired {
		s.log.Warn("note start has no release, using duration 0", "step", s.steps, "index", idx, "key", ev.Key)
	}

	next := s.prev
	if s.read(&out, ev) {
		next = out.Note
	}

	// skipped notes still carry their duration, so a damaged keyframe note
	// does not hide the boundary. Skipping before this check loses the
	// marker and every block after it.
	if paired && s.isShifted(ticks) {
		if resync, ok := s.sync(offIdx, next); ok {
			out.Boundary = true
			next = resync
		}
	}
	s.prev = next
	s.result.Outcomes = append(s.result.Outcomes, out)
}

// read recovers the note and chunk of one step. It returns false when the
// step has to be skipped.
func (s *decodeSession) read(out *Outcome, ev Event) bool {
	note, known := NoteForKey(ev.Key)
	if !known {
		out.Skipped = SkipUnknownKey
		s.log.Warn("skipping note outside the alphabet", "step", out.Step, "index", out.Index, "key", ev.Key)
		return false
	}
	out.Note = note

	mapping := MappingFor(s.prev)
	slot := int(ev.Velocity) - int(s.cfg.BaseVelocity)
	pitch, ok := mapping.Code(note, slot)
	if !ok {
		out.Skipped = SkipNoCandidate
		s.log.Warn("slot selection failed, context out of sync", "step", out.Step, "note", note, "prev", s.prev)
		return false
	}

	chunk := append(BitsFromUint(pitch, PitchBits), BitsFromUint(NearestDuration(out.Ticks), DurationBits)...)
	out.Bits = chunk
	s.bits = append(s.bits, chunk...)
	s.block = append(s.block, chunk...)

	s.log.Debug("decode step", "step", out.Step, "note", note, "ticks", out.Ticks, "velocity", ev.Velocity, "bits", chunk)
	return true
}

// isShifted reports whether ticks is a nominal duration plus the keyframe
// shift. A corrupted note can match by accident; the marker search that
// follows is what confirms the boundary.
func (s *decodeSession) isShifted(ticks uint32) bool {
	for _, d := range durationTicks {
		if ticks == d+s.cfg.DurationShift {
			return true
		}
	}
	return false
}

// sync verifies the marker following a keyframe note and returns the
// context to continue from
func (s *decodeSession) sync(offIdx int, recovered Note) (Note, bool) {
	markerIdx, found := s.seq.FindMarker(offIdx, s.cfg.Lookahead)
	if !found {
		return recovered, false
	}

	check := SyncCheck{
		Index:  markerIdx,
		Text:   s.seq[markerIdx].Text,
		Block:  s.block,
		Actual: Checksum(s.block),
		Phrase: s.seq.matchesPhrase(offIdx+1, markerIdx, s.cfg.Phrase),
	}

	next := recovered
	marker, err := ParseSyncMarker(check.Text)
	if err != nil {
		check.Malformed = true
		s.log.Warn("unreadable sync marker", "index", markerIdx, "err", err)
	} else {
		check.Marker = marker
		check.Match = marker.Checksum == check.Actual
		if check.Match {
			s.log.Info("sync ok", "step", marker.Step, "note", marker.Symbol, "crc", fmt.Sprintf("%02X", check.Actual))
		} else {
			s.log.Warn("checksum mismatch, block may be corrupted", "step", marker.Step,
				"reported", fmt.Sprintf("%02X", marker.Checksum), "actual", fmt.Sprintf("%02X", check.Actual),
				"block_bits", len(s.block))
		}
		if n, ok := marker.Note(); ok {
			next = n
		} else {
			s.log.Warn("marker note outside the alphabet, keeping recovered note", "note", marker.Symbol)
		}
	}
	if !check.Phrase {
		s.log.Debug("keyframe phrase not intact before marker", "index", markerIdx)
	}

	for j := offIdx + 1; j <= markerIdx; j++ {
		s.consumed[j] = true
	}
	s.block = nil
	s.result.Syncs = append(s.result.Syncs, check)
	return next, true
}

func (s *decodeSession) finish() {
	r := s.result
	r.Bits = len(s.bits)
	if rem := len(s.bits) % 8; rem != 0 {
		s.log.Info("padding trailing bits", "bits", len(s.bits), "pad", 8-rem)
	}
	data := s.bits.Bytes()
	r.Payload, r.DeclaredLength = unwrapBody(data)
	if r.Truncated() {
		s.log.Warn("declared length exceeds recovered bytes", "declared", r.DeclaredLength, "available", len(r.Payload))
	}
	r.Text = DecodeText(r.Payload)
	s.log.Info("decoded", "bits", r.Bits, "payload_bytes", len(r.Payload), "syncs", len(r.Syncs), "mismatches", len(r.Mismatches()))
}

// unwrapBody strips the length prefix, clamping to the bytes available
func unwrapBody(data []byte) ([]byte, uint32) {
	if len(data) < LengthPrefixSize {
		return data, uint32(len(data))
	}
	declared := binary.BigEndian.Uint32(data)
	rest := data[LengthPrefixSize:]
	if uint64(declared) <= uint64(len(rest)) {
		return rest[:declared], declared
	}
	return rest, declared
}
