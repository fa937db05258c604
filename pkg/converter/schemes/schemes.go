package schemes

import (
	"fmt"
	"strings"

	"github.com/james-see/stegomidi/pkg/converter"
	"github.com/james-see/stegomidi/pkg/stego"
)

// Scheme identifiers
const (
	AdaptiveID = "adaptive"
	LegacyID   = "legacy"
)

// Info describes a scheme for listings
type Info struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// List returns the available schemes
func List() []Info {
	return []Info{
		{ID: AdaptiveID, Name: "Adaptive timeshift", Description: "Context-adaptive pitch mapping with CRC-8 keyframe sync (default)"},
		{ID: LegacyID, Name: "Legacy fixed table", Description: "Fixed 3-bit pitch table with 2 velocity bits, no sync"},
	}
}

// Lookup returns the scheme for an identifier. cfg only applies to the
// adaptive scheme.
func Lookup(id string, cfg stego.Config) (converter.Scheme, error) {
	switch strings.ToLower(strings.TrimSpace(id)) {
	case "", AdaptiveID, "timeshift":
		return NewAdaptive(cfg), nil
	case LegacyID:
		return NewLegacy(), nil
	default:
		return nil, fmt.Errorf("unknown scheme %q", id)
	}
}
