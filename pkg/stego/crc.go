package stego

// crcPoly is the CRC-8 generator x^8 + x^2 + x + 1
const crcPoly = 0x07

var crcTable = makeCRCTable(crcPoly)

func makeCRCTable(poly byte) [256]byte {
	var table [256]byte
	for i := range table {
		crc := byte(i)
		for j := 0; j < 8; j++ {
			if crc&0x80 != 0 {
				crc = crc<<1 ^ poly
			} else {
				crc <<= 1
			}
		}
		table[i] = crc
	}
	return table
}

// ChecksumBytes computes CRC-8 (poly 0x07, init 0, no reflection) of data
func ChecksumBytes(data []byte) byte {
	var crc byte
	for _, b := range data {
		crc = crcTable[crc^b]
	}
	return crc
}

// Checksum computes the CRC-8 of a bit sequence, zero-padded to whole bytes
func Checksum(bits Bits) byte {
	return ChecksumBytes(bits.Bytes())
}

// VerifyChecksum reports whether bits match the expected checksum
func VerifyChecksum(bits Bits, expected byte) bool {
	return Checksum(bits) == expected
}
