package converter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/james-see/stegomidi/pkg/stego"
)

// Format represents a file format
type Format string

const (
	FormatMIDI    Format = "midi"
	FormatText    Format = "text"
	FormatUnknown Format = "unknown"
)

// DetectFormat detects the format of a file based on extension
func DetectFormat(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".mid", ".midi":
		return FormatMIDI
	case ".txt", ".text":
		return FormatText
	default:
		return FormatUnknown
	}
}

// DetectFormatFromContent detects format from file content
func DetectFormatFromContent(data []byte) Format {
	if len(data) >= 4 && string(data[:4]) == "MThd" {
		return FormatMIDI
	}
	if utf8.Valid(data) {
		return FormatText
	}
	return FormatUnknown
}

// ConvertFile encodes a text file into MIDI or decodes a MIDI file into
// text, depending on the input format
func (c *Converter) ConvertFile(inputPath, outputPath string) error {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}

	inputFormat := DetectFormat(inputPath)
	if inputFormat == FormatUnknown {
		inputFormat = DetectFormatFromContent(data)
	}
	outputFormat := DetectFormat(outputPath)

	var outputData []byte
	switch {
	case inputFormat == FormatText && outputFormat == FormatMIDI:
		title := strings.TrimSuffix(filepath.Base(outputPath), filepath.Ext(outputPath))
		res, err := c.EncodeText(string(data), title)
		if err != nil {
			return fmt.Errorf("conversion failed: %w", err)
		}
		outputData = res.Data
	case inputFormat == FormatMIDI && outputFormat != FormatMIDI:
		res, err := c.DecodeMIDI(data)
		if err != nil {
			return fmt.Errorf("conversion failed: %w", err)
		}
		outputData = res.Payload
	case outputFormat == FormatUnknown:
		return errors.New("cannot determine output format from filename")
	default:
		return fmt.Errorf("unsupported conversion: %s to %s", inputFormat, outputFormat)
	}

	if err := os.WriteFile(outputPath, outputData, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	return nil
}

// EncodeText hides text in a MIDI file. title only names the track.
func (c *Converter) EncodeText(text, title string) (*EncodeResult, error) {
	return c.EncodeBytes([]byte(text), title)
}

// EncodeBytes hides an arbitrary payload in a MIDI file
func (c *Converter) EncodeBytes(payload []byte, title string) (*EncodeResult, error) {
	if c.scheme == nil {
		return nil, errors.New("no scheme configured")
	}
	seq := c.scheme.Encode(payload)
	data, err := c.midi.WriteSequence(seq, title)
	if err != nil {
		return nil, err
	}
	return &EncodeResult{
		Data:    data,
		Events:  len(seq),
		Markers: len(seq.Markers()),
	}, nil
}

// DecodeMIDI recovers the payload hidden in MIDI data. Only container
// errors are returned; damage inside the carrier ends up in the result.
func (c *Converter) DecodeMIDI(data []byte) (*stego.Result, error) {
	if c.scheme == nil {
		return nil, errors.New("no scheme configured")
	}
	seq, err := c.midi.ReadSequence(data)
	if err != nil {
		return nil, err
	}
	return c.scheme.Decode(seq), nil
}

// DecodeFile recovers the payload hidden in a MIDI file
func (c *Converter) DecodeFile(path string) (*stego.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read MIDI file: %w", err)
	}
	return c.DecodeMIDI(data)
}

// GetSupportedConversions returns a list of supported conversion paths
func GetSupportedConversions() []string {
	return []string{
		"text -> midi",
		"midi -> text",
	}
}
