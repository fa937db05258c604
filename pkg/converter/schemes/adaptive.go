// Package schemes provides the steganographic schemes a Converter can use
package schemes

import (
	"github.com/james-see/stegomidi/pkg/stego"
)

// Adaptive is the context-adaptive scheme with keyframe sync markers
type Adaptive struct {
	cfg stego.Config
}

// NewAdaptive creates an adaptive scheme with the given configuration
func NewAdaptive(cfg stego.Config) *Adaptive {
	return &Adaptive{cfg: cfg}
}

// Name returns the scheme name
func (a *Adaptive) Name() string {
	return "Adaptive timeshift"
}

// ID returns the scheme identifier used on the command line and in the API
func (a *Adaptive) ID() string {
	return AdaptiveID
}

// Encode hides payload in a note sequence
func (a *Adaptive) Encode(payload []byte) stego.Sequence {
	return stego.NewEncoder(a.cfg).Encode(payload)
}

// Decode recovers the payload from a note sequence
func (a *Adaptive) Decode(seq stego.Sequence) *stego.Result {
	return stego.NewDecoder(a.cfg).Decode(seq)
}
