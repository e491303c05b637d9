package vm

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReaderInput(t *testing.T) {
	in := NewReaderInput(strings.NewReader("a\né→"))

	for _, want := range []rune{'a', '\n', 'é', '→'} {
		got, err := in.ReadChar()
		if err != nil {
			t.Fatalf("ReadChar: %v", err)
		}
		if got != want {
			t.Errorf("ReadChar = %q, want %q", got, want)
		}
	}
	if _, err := in.ReadChar(); !errors.Is(err, io.EOF) {
		t.Errorf("ReadChar at end: err = %v, want io.EOF", err)
	}
}

func TestTerminalInputUnattended(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "stdin"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	in := NewTerminalInput(f)
	if in.Attended() {
		t.Error("regular file reported as a terminal")
	}
	if _, err := in.ReadChar(); !errors.Is(err, ErrNoInteractiveInput) {
		t.Errorf("ReadChar: err = %v, want ErrNoInteractiveInput", err)
	}
}

func TestTerminalInputNilFile(t *testing.T) {
	if NewTerminalInput(nil).Attended() {
		t.Error("nil file reported as attended")
	}
}
