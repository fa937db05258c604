package stego

import (
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// DecodeText interprets payload as UTF-8, replacing invalid sequences with
// U+FFFD. It never fails.
func DecodeText(payload []byte) string {
	out, err := unicode.UTF8.NewDecoder().Bytes(payload)
	if err != nil {
		return strings.ToValidUTF8(string(payload), "�")
	}
	return string(out)
}
