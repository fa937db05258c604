package stego

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// SyncPrefix starts every sync marker text
const SyncPrefix = "SYNC:"

// ErrMalformedMarker is returned for marker text that cannot be parsed
var ErrMalformedMarker = errors.New("malformed sync marker")

// SyncMarker closes a block: SYNC:<step>:<note>:<checksum hex>
type SyncMarker struct {
	Step     int
	Symbol   string
	Checksum byte
}

func (m SyncMarker) String() string {
	return fmt.Sprintf("%s%d:%s:%02X", SyncPrefix, m.Step, m.Symbol, m.Checksum)
}

// Note returns the resynchronisation note, if the symbol is in the alphabet
func (m SyncMarker) Note() (Note, bool) {
	return ParseNote(m.Symbol)
}

// IsSyncMarker reports whether text looks like a marker
func IsSyncMarker(text string) bool {
	return strings.HasPrefix(text, SyncPrefix)
}

// ParseSyncMarker parses marker text
func ParseSyncMarker(text string) (SyncMarker, error) {
	if !IsSyncMarker(text) {
		return SyncMarker{}, fmt.Errorf("%w: missing %q prefix", ErrMalformedMarker, SyncPrefix)
	}
	parts := strings.SplitN(text, ":", 4)
	if len(parts) < 4 {
		return SyncMarker{}, fmt.Errorf("%w: %q", ErrMalformedMarker, text)
	}
	step, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return SyncMarker{}, fmt.Errorf("%w: bad step %q", ErrMalformedMarker, parts[1])
	}
	crc, err := strconv.ParseUint(strings.TrimSpace(parts[3]), 16, 8)
	if err != nil {
		return SyncMarker{}, fmt.Errorf("%w: bad checksum %q", ErrMalformedMarker, parts[3])
	}
	return SyncMarker{Step: step, Symbol: parts[2], Checksum: byte(crc)}, nil
}
