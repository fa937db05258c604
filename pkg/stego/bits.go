package stego

import "strings"

// Bits is an unpacked bit sequence, one 0/1 value per element, MSB first
type Bits []byte

// BitsFromBytes unpacks data MSB first
func BitsFromBytes(data []byte) Bits {
	bits := make(Bits, 0, len(data)*8)
	for _, b := range data {
		for i := 7; i >= 0; i-- {
			bits = append(bits, (b>>uint(i))&1)
		}
	}
	return bits
}

// BitsFromUint unpacks the low n bits of v, MSB first
func BitsFromUint(v uint8, n int) Bits {
	bits := make(Bits, n)
	for i := 0; i < n; i++ {
		bits[i] = (v >> uint(n-1-i)) & 1
	}
	return bits
}

// Uint packs the bits into an integer, MSB first
func (b Bits) Uint() uint8 {
	var v uint8
	for _, bit := range b {
		v = v<<1 | bit&1
	}
	return v
}

// Bytes packs the bits, right-padding the final byte with zeros
func (b Bits) Bytes() []byte {
	out := make([]byte, (len(b)+7)/8)
	for i, bit := range b {
		if bit&1 != 0 {
			out[i/8] |= 0x80 >> uint(i%8)
		}
	}
	return out
}

// Chunks splits the bits into groups of size n, zero-padding the last one
func (b Bits) Chunks(n int) []Bits {
	var chunks []Bits
	for i := 0; i < len(b); i += n {
		chunk := make(Bits, n)
		copy(chunk, b[i:min(i+n, len(b))])
		chunks = append(chunks, chunk)
	}
	return chunks
}

// Equal reports whether both sequences hold the same bits
func (b Bits) Equal(other Bits) bool {
	if len(b) != len(other) {
		return false
	}
	for i := range b {
		if b[i]&1 != other[i]&1 {
			return false
		}
	}
	return true
}

func (b Bits) String() string {
	var s strings.Builder
	s.Grow(len(b))
	for _, bit := range b {
		if bit&1 != 0 {
			s.WriteByte('1')
		} else {
			s.WriteByte('0')
		}
	}
	return s.String()
}
