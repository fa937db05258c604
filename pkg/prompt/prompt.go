// Package prompt collects the text and title to encode from standard input
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Terminator ends interactive multi-line input
const Terminator = "."

// ErrNoInput is returned when there is nothing to encode
var ErrNoInput = errors.New("no input text")

// Input is the text to hide and the title to save it under
type Input struct {
	Text  string
	Title string
}

// IsInteractive reports whether f is a terminal
func IsInteractive(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func splitLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}

// ParsePiped reads all of r. The last non-blank line is the title and the
// lines before it the text. A single line is all text with no title.
func ParsePiped(r io.Reader) (Input, error) {
	lines, err := splitLines(r)
	if err != nil {
		return Input{}, fmt.Errorf("failed to read input: %w", err)
	}

	switch len(lines) {
	case 0:
		return Input{}, ErrNoInput
	case 1:
		return Input{Text: lines[0]}, nil
	}

	idx := len(lines) - 1
	for idx >= 0 && strings.TrimSpace(lines[idx]) == "" {
		idx--
	}
	if idx < 0 {
		return Input{}, ErrNoInput
	}
	return Input{
		Text:  strings.Join(lines[:idx], "\n"),
		Title: strings.TrimSpace(lines[idx]),
	}, nil
}

// Interactive asks for multi-line text ended by a lone "." or EOF, then for
// a title. Prompts go to w.
func Interactive(r io.Reader, w io.Writer) (Input, error) {
	br := bufio.NewReader(r)

	fmt.Fprintf(w, "Enter text to encode. Finish with a single %q line or Ctrl-D.\n", Terminator)
	var lines []string
	for {
		line, err := br.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")
		if err == nil && line == Terminator {
			break
		}
		if err != nil {
			if line != "" && line != Terminator {
				lines = append(lines, line)
			}
			if err == io.EOF {
				break
			}
			return Input{}, fmt.Errorf("failed to read input: %w", err)
		}
		lines = append(lines, line)
	}

	text := strings.TrimRight(strings.Join(lines, "\n"), "\n")
	if text == "" {
		return Input{}, ErrNoInput
	}

	fmt.Fprint(w, "Enter title for MIDI data: ")
	title, err := br.ReadString('\n')
	if err != nil && err != io.EOF {
		return Input{}, fmt.Errorf("failed to read title: %w", err)
	}
	return Input{Text: text, Title: strings.TrimSpace(title)}, nil
}

// Read picks ParsePiped or Interactive depending on whether stdin is a
// terminal
func Read(stdin *os.File, w io.Writer) (Input, error) {
	if IsInteractive(stdin) {
		return Interactive(stdin, w)
	}
	return ParsePiped(stdin)
}
