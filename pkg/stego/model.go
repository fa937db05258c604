package stego

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/exp/slices"
)

// contextWeights are applied at offsets -3..+4 around the context note
var contextWeights = [8]int{1, 2, 3, 3, 3, 2, 1, 1}

const contextOffset = -3

// Distribution is a probability per note. Notes outside the context window
// have probability 0.
type Distribution [NumNotes]float64

// NewDistribution builds the distribution for the note following prev.
// Weights falling outside the alphabet are dropped, not redistributed.
func NewDistribution(prev Note) Distribution {
	if !prev.Valid() {
		prev = DefaultNote
	}
	var weights [NumNotes]int
	total := 0
	for offset, w := range contextWeights {
		target := int(prev) + offset + contextOffset
		if target < 0 || target >= int(NumNotes) {
			continue
		}
		weights[target] += w
		total += w
	}
	if total == 0 {
		total = 1
	}
	var d Distribution
	for i, w := range weights {
		d[i] = float64(w) / float64(total)
	}
	return d
}

// Support returns the notes with non-zero probability in alphabet order
func (d Distribution) Support() []Note {
	var notes []Note
	for i, p := range d {
		if p > 0 {
			notes = append(notes, Note(i))
		}
	}
	return notes
}

// Mapping assigns a note to every 4-bit pitch code
type Mapping [MappingSize]Note

// BuildMapping allocates round(p*16) codes to each supported note (at least
// one), in alphabet order, then truncates or pads to exactly 16 entries.
// Padding uses the middle note of the support.
func BuildMapping(d Distribution) Mapping {
	slots := make([]Note, 0, MappingSize+int(NumNotes))
	for i, p := range d {
		if p <= 0 {
			continue
		}
		count := int(math.RoundToEven(p * MappingSize))
		if count < 1 {
			count = 1
		}
		for j := 0; j < count; j++ {
			slots = append(slots, Note(i))
		}
	}

	support := d.Support()
	pad := DefaultNote
	if len(support) > 0 {
		pad = support[len(support)/2]
	}
	for len(slots) < MappingSize {
		slots = append(slots, pad)
	}

	var m Mapping
	copy(m[:], slots[:MappingSize])
	return m
}

// MappingFor is BuildMapping(NewDistribution(prev))
func MappingFor(prev Note) Mapping {
	return BuildMapping(NewDistribution(prev))
}

// Candidates returns the codes mapping to n in ascending order
func (m Mapping) Candidates(n Note) []uint8 {
	var codes []uint8
	for code, note := range m {
		if note == n {
			codes = append(codes, uint8(code))
		}
	}
	return codes
}

// SlotIndex returns the rank of code among the codes sharing its note
func (m Mapping) SlotIndex(code uint8) int {
	idx := slices.Index(m.Candidates(m[code&(MappingSize-1)]), code&(MappingSize-1))
	if idx < 0 {
		return 0
	}
	return idx
}

// Code picks the code behind an observed note from its slot index.
// ok is false when no code maps to n, i.e. the context has drifted.
func (m Mapping) Code(n Note, slot int) (code uint8, ok bool) {
	candidates := m.Candidates(n)
	if len(candidates) == 0 {
		return 0, false
	}
	if slot < 0 {
		slot = 0
	}
	return candidates[slot%len(candidates)], true
}

func (m Mapping) String() string {
	var s strings.Builder
	for code, note := range m {
		fmt.Fprintf(&s, "%04b->%s ", code, note)
	}
	return strings.TrimSpace(s.String())
}
