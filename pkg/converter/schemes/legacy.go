package schemes

import (
	"github.com/james-see/stegomidi/pkg/stego"
	"github.com/james-see/stegomidi/pkg/stego/legacy"
)

// Legacy is the original fixed-table scheme, kept to read old artifacts
type Legacy struct{}

// NewLegacy creates a legacy scheme
func NewLegacy() *Legacy {
	return &Legacy{}
}

// Name returns the scheme name
func (l *Legacy) Name() string {
	return "Legacy fixed table"
}

// ID returns the scheme identifier
func (l *Legacy) ID() string {
	return LegacyID
}

// Encode hides payload in a note sequence
func (l *Legacy) Encode(payload []byte) stego.Sequence {
	return legacy.Encode(payload)
}

// Decode recovers the payload from a note sequence
func (l *Legacy) Decode(seq stego.Sequence) *stego.Result {
	return legacy.Decode(seq)
}
