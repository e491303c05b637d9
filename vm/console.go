package vm

import (
	"bufio"
	"io"
	"os"
	"unicode/utf8"

	"golang.org/x/term"
)

// CharReader supplies characters for the Query opcode.
type CharReader interface {
	// ReadChar blocks until one character is available.
	ReadChar() (rune, error)
}

// ---------------------------------------------------------------------------
// TerminalInput: single keypresses from a raw-mode terminal
// ---------------------------------------------------------------------------

// TerminalInput reads one keypress at a time from a terminal, without
// waiting for a newline and without echo. Reads fail with
// ErrNoInteractiveInput when the file is not a terminal.
type TerminalInput struct {
	f *os.File
}

// NewTerminalInput creates a TerminalInput for f, typically os.Stdin.
func NewTerminalInput(f *os.File) *TerminalInput {
	return &TerminalInput{f: f}
}

// Attended reports whether the underlying file is a terminal.
func (t *TerminalInput) Attended() bool {
	return t.f != nil && term.IsTerminal(int(t.f.Fd()))
}

// ReadChar switches the terminal to raw mode for the duration of one
// keypress and returns the decoded character. Enter is returned as '\n'.
func (t *TerminalInput) ReadChar() (rune, error) {
	if !t.Attended() {
		return 0, ErrNoInteractiveInput
	}

	fd := int(t.f.Fd())
	state, err := term.MakeRaw(fd)
	if err != nil {
		return 0, err
	}
	defer term.Restore(fd, state)

	buf := make([]byte, 0, utf8.UTFMax)
	one := make([]byte, 1)
	for !utf8.FullRune(buf) {
		if _, err := io.ReadFull(t.f, one); err != nil {
			return 0, err
		}
		buf = append(buf, one[0])
	}

	r, _ := utf8.DecodeRune(buf)
	switch r {
	case '\r':
		return '\n', nil
	case 0x03: // Ctrl-C
		return 0, ErrInterrupted
	}
	return r, nil
}

// ---------------------------------------------------------------------------
// ReaderInput: characters from any reader
// ---------------------------------------------------------------------------

// ReaderInput decodes UTF-8 characters from an io.Reader. It is used for
// piped input and in tests.
type ReaderInput struct {
	r *bufio.Reader
}

// NewReaderInput wraps r.
func NewReaderInput(r io.Reader) *ReaderInput {
	return &ReaderInput{r: bufio.NewReader(r)}
}

// ReadChar returns the next character, or io.EOF once r is exhausted.
func (ri *ReaderInput) ReadChar() (rune, error) {
	r, _, err := ri.r.ReadRune()
	return r, err
}
