package stego

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleTexts = []string{
	"",
	"a",
	"Hello",
	"The quick brown fox jumps over the lazy dog",
	"Some sample text for testing,but its length is not too long.",
	"これは日本語のテストです。",
	"短い",
	"Emoji test 👍🚀🎵",
	strings.Repeat("日本国民は、正当に選挙された国会における代表者を通じて行動し、", 8),
	"line one\nline two\n\ttabbed",
}

func TestWireBody(t *testing.T) {
	assert.Equal(t, []byte{0, 0, 0, 2, 0x48, 0x69}, WireBody([]byte("Hi")))
	assert.Equal(t, []byte{0, 0, 0, 0}, WireBody(nil))
}

func TestEncodeHi(t *testing.T) {
	seq := Encode([]byte("Hi"))
	require.Len(t, seq, 16)
	assert.Empty(t, seq.Markers())

	wantKeys := []uint8{55, 55, 55, 55, 55, 57, 59, 60}
	wantVelocities := []uint8{80, 80, 80, 80, 80, 84, 80, 82}
	wantTicks := []uint32{480, 480, 480, 480, 480, 480, 240, 240}

	for i := 0; i < 8; i++ {
		on, off := seq[2*i], seq[2*i+1]
		assert.Equal(t, EventNoteOn, on.Kind)
		assert.Equal(t, wantKeys[i], on.Key, "note %d key", i)
		assert.Equal(t, wantVelocities[i], on.Velocity, "note %d velocity", i)
		assert.Equal(t, uint32(0), on.Delta)

		assert.Equal(t, EventNoteOff, off.Kind)
		assert.Equal(t, wantKeys[i], off.Key)
		assert.Equal(t, wantTicks[i], off.Delta, "note %d ticks", i)
	}

	res := Decode(seq)
	assert.Equal(t, "Hi", res.Text)
	assert.Equal(t, 48, res.Bits)
	assert.Equal(t, uint32(2), res.DeclaredLength)
	assert.Empty(t, res.Syncs)
	assert.Empty(t, res.Skipped())
}

func TestRoundTrip(t *testing.T) {
	for _, text := range sampleTexts {
		name := text
		if len(name) > 20 {
			name = name[:20]
		}
		t.Run(name, func(t *testing.T) {
			res := Decode(Encode([]byte(text)))
			assert.Equal(t, text, res.Text)
			assert.Equal(t, []byte(text), res.Payload)
			assert.Empty(t, res.Mismatches())
			assert.Empty(t, res.Skipped())
			assert.False(t, res.Truncated())
		})
	}
}

func TestRoundTripBinaryPayload(t *testing.T) {
	payload := make([]byte, 256)
	for i := range payload {
		payload[i] = byte(i)
	}
	res := Decode(Encode(payload))
	assert.True(t, bytes.Equal(payload, res.Payload))
	assert.NotEqual(t, string(payload), res.Text, "invalid UTF-8 is replaced")
}

func TestBoundaryCadence(t *testing.T) {
	cfg := DefaultConfig()
	phraseKeys := []uint8{D4.Key(), E4.Key(), A4.Key(), A3.Key()}

	for _, size := range []int{0, 10, 11, 25, 60, 200} {
		payload := bytes.Repeat([]byte{0xA5}, size)
		seq := Encode(payload)

		chunks := ((LengthPrefixSize+size)*8 + ChunkBits - 1) / ChunkBits
		markers := seq.Markers()
		require.Len(t, markers, chunks/cfg.KeyframeInterval, "payload of %d bytes", size)
		assert.Len(t, seq.NoteStarts(), chunks+len(markers)*len(phraseKeys))

		for i, m := range markers {
			marker, err := ParseSyncMarker(seq[m].Text)
			require.NoError(t, err)
			assert.Equal(t, (i+1)*cfg.KeyframeInterval, marker.Step)

			phrase := seq[m-2*len(phraseKeys) : m]
			for j, key := range phraseKeys {
				on, off := phrase[2*j], phrase[2*j+1]
				assert.True(t, on.IsNoteStart())
				assert.Equal(t, key, on.Key)
				assert.Equal(t, cfg.BaseVelocity, on.Velocity)
				want := uint32(240)
				if j == len(phraseKeys)-1 {
					want += cfg.DurationShift
				}
				assert.Equal(t, want, off.Delta)
			}

			// the keyframe data note right before the phrase is shifted too
			keyOff := seq[m-2*len(phraseKeys)-1]
			assert.True(t, keyOff.IsNoteEnd())
			assert.Equal(t, uint32(1), keyOff.Delta%240)
			n, ok := NoteForKey(keyOff.Key)
			require.True(t, ok)
			assert.Equal(t, n.String(), marker.Symbol)
		}
	}
}

func TestSyncMarkersVerify(t *testing.T) {
	seq := Encode([]byte("The quick brown fox jumps over the lazy dog"))
	var texts []string
	for _, m := range seq.Markers() {
		texts = append(texts, seq[m].Text)
	}
	assert.Equal(t, []string{"SYNC:20:C4:A1", "SYNC:40:E4:B1", "SYNC:60:A3:E6"}, texts)

	res := Decode(seq)
	require.Len(t, res.Syncs, 3)
	for _, c := range res.Syncs {
		assert.True(t, c.Match)
		assert.True(t, c.Phrase)
		assert.Len(t, c.Block, 20*ChunkBits)
	}
}

func TestCustomInterval(t *testing.T) {
	cfg := DefaultConfig()
	cfg.KeyframeInterval = 5
	payload := []byte("interval test")

	seq := NewEncoder(cfg).Encode(payload)
	chunks := ((LengthPrefixSize+len(payload))*8 + ChunkBits - 1) / ChunkBits
	assert.Len(t, seq.Markers(), chunks/5)

	res := NewDecoder(cfg).Decode(seq)
	assert.Equal(t, payload, res.Payload)
	assert.Empty(t, res.Mismatches())
}

func TestDecodeCorruptedNote(t *testing.T) {
	payload := []byte("The quick brown fox jumps over the lazy dog")
	clean := Encode(payload)
	cleanRes := Decode(clean)
	require.Len(t, cleanRes.Syncs, 3)

	// first data note of the second block: 20 data notes + 4 phrase notes precede it
	corrupted := clean.Clone()
	target := corrupted.NoteStarts()[24]
	require.Equal(t, uint8(60), corrupted[target].Key)
	corrupted[target].Key = (corrupted[target].Key + 1) % 128

	res := Decode(corrupted)
	require.Len(t, res.Syncs, 3)
	assert.True(t, res.Syncs[0].Match)
	assert.False(t, res.Syncs[1].Match, "block with the altered note reports a mismatch")
	assert.True(t, res.Syncs[2].Match)

	assert.True(t, cleanRes.Syncs[0].Block.Equal(res.Syncs[0].Block))
	assert.True(t, cleanRes.Syncs[2].Block.Equal(res.Syncs[2].Block))

	skipped := res.Skipped()
	require.Len(t, skipped, 1)
	assert.Equal(t, SkipUnknownKey, skipped[0].Skipped)
	assert.Equal(t, target, skipped[0].Index)
	assert.Equal(t, cleanRes.Bits-ChunkBits, res.Bits)
}

func TestDecodeCorruptedPhraseIsHarmless(t *testing.T) {
	payload := []byte("The quick brown fox jumps over the lazy dog")
	seq := Encode(payload)
	// the first phrase note follows the 20th data note
	target := seq.NoteStarts()[20]
	seq[target].Key++

	res := Decode(seq)
	assert.Equal(t, payload, res.Payload)
	assert.Empty(t, res.Mismatches())
	assert.False(t, res.Syncs[0].Phrase)
}

func TestDecodeCorruptedKeyframeNote(t *testing.T) {
	seq := Encode([]byte("The quick brown fox jumps over the lazy dog"))
	target := seq.NoteStarts()[19]
	seq[target].Key++

	res := Decode(seq)
	require.Len(t, res.Syncs, 3, "the shifted phrase note still closes the block")
	assert.False(t, res.Syncs[0].Match)
	assert.True(t, res.Syncs[1].Match)
	assert.True(t, res.Syncs[2].Match)
	assert.NotEmpty(t, res.Skipped())
}

func TestDecodeNoCandidate(t *testing.T) {
	fox := []byte("The quick brown fox jumps over the lazy dog")
	c5 := C5.Key()

	tests := []struct {
		name       string
		seq        func() Sequence
		payload    []byte
		skipAt     int
		boundary   bool
		syncs      int
		mismatches int
	}{
		{
			name: "leading note outside the context window",
			seq: func() Sequence {
				lead := Sequence{NoteOn(c5, 80), NoteOff(c5, 480)}
				return append(lead, Encode([]byte("Hi"))...)
			},
			payload: []byte("Hi"),
			skipAt:  0,
		},
		{
			name: "keyframe note replaced",
			seq: func() Sequence {
				seq := Encode(fox)
				target := seq.NoteStarts()[19]
				seq[target].Key = c5
				seq[target+1].Key = c5
				return seq
			},
			skipAt:     19,
			boundary:   true,
			syncs:      3,
			mismatches: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Decode(tt.seq())

			require.Len(t, res.Skipped(), 1)
			out := res.Outcomes[tt.skipAt]
			assert.Equal(t, SkipNoCandidate, out.Skipped)
			assert.Empty(t, out.Bits)
			assert.Equal(t, tt.boundary, out.Boundary)
			assert.Len(t, res.Syncs, tt.syncs)
			assert.Len(t, res.Mismatches(), tt.mismatches)
			if tt.payload != nil {
				assert.Equal(t, tt.payload, res.Payload)
				assert.True(t, res.Outcomes[tt.skipAt+1].Recovered(), "context stays at C4")
			}
		})
	}
}

func TestDecodeMalformedMarker(t *testing.T) {
	payload := []byte("The quick brown fox jumps over the lazy dog")
	seq := Encode(payload)
	first := seq.Markers()[0]
	seq[first].Text = "SYNC:garbage"

	res := Decode(seq)
	require.Len(t, res.Syncs, 3)
	assert.True(t, res.Syncs[0].Malformed)
	assert.False(t, res.Syncs[0].Match)
	assert.True(t, res.Syncs[1].Match)
	assert.Equal(t, payload, res.Payload)
}

func TestDecodeTruncatedCarrier(t *testing.T) {
	seq := Encode([]byte("Hello"))
	require.Len(t, seq, 24)

	res := Decode(seq[:len(seq)-4])
	assert.Equal(t, uint32(5), res.DeclaredLength)
	assert.True(t, res.Truncated())
	assert.Equal(t, []byte("Hel`"), res.Payload)
}

func TestDecodeUnpairedNote(t *testing.T) {
	seq := Sequence{NoteOn(C4.Key(), 80)}
	res := Decode(seq)
	require.Len(t, res.Outcomes, 1)
	o := res.Outcomes[0]
	assert.True(t, o.Unpaired)
	assert.True(t, o.Recovered())
	assert.Equal(t, uint32(0), o.Ticks)
	assert.Equal(t, Bits{0, 1, 1, 0, 0, 1}, o.Bits)
}

func TestDecodeVelocityZeroRelease(t *testing.T) {
	seq := Sequence{
		NoteOn(C4.Key(), 80),
		{Kind: EventNoteOn, Key: C4.Key(), Velocity: 0, Delta: 960},
	}
	res := Decode(seq)
	require.Len(t, res.Outcomes, 1)
	assert.False(t, res.Outcomes[0].Unpaired)
	assert.Equal(t, uint32(960), res.Outcomes[0].Ticks)
}

func TestDecodeEmpty(t *testing.T) {
	res := Decode(nil)
	assert.Equal(t, "", res.Text)
	assert.Equal(t, 0, res.Bits)
	assert.Empty(t, res.Payload)
}

func TestDecodeText(t *testing.T) {
	assert.Equal(t, "Hi", DecodeText([]byte("Hi")))
	assert.Equal(t, "a�b", DecodeText([]byte{'a', 0xFF, 'b'}))
}

func TestParseSyncMarker(t *testing.T) {
	tests := []struct {
		text    string
		want    SyncMarker
		wantErr bool
	}{
		{"SYNC:20:C4:A1", SyncMarker{Step: 20, Symbol: "C4", Checksum: 0xA1}, false},
		{"SYNC:7:G3:0f", SyncMarker{Step: 7, Symbol: "G3", Checksum: 0x0F}, false},
		{"SYNC:1:C4", SyncMarker{}, true},
		{"SYNC:x:C4:00", SyncMarker{}, true},
		{"SYNC:1:C4:ZZ", SyncMarker{}, true},
		{"HELLO", SyncMarker{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := ParseSyncMarker(tt.text)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedMarker)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, "SYNC:40:E4:0B", SyncMarker{Step: 40, Symbol: "E4", Checksum: 0x0B}.String())
}
