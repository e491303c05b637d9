package compiler

import (
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// FuzzParse: the builder never panics, and every program it accepts
// renders back to its comment-free source.
// ---------------------------------------------------------------------------

func FuzzParse(f *testing.F) {
	seeds := []string{
		``, `[`, `]`, `[]`, `[[]]`, `][`,
		`+++---<<>>..,,`,
		"`~^v!&%$",
		helloWorld,
		`+[>[>]>[<]<]`,
		"comment [ with ] brackets",
		`こんにちは [+]`,
		"\x00\xff[",
	}
	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, src string) {
		program, err := Parse(src)
		if err != nil {
			if len(CheckBrackets(src)) == 0 {
				t.Fatalf("Parse(%q) failed with %v but CheckBrackets found nothing", src, err)
			}
			return
		}

		var stripped strings.Builder
		for _, ch := range src {
			if _, ok := LookupSymbol(ch); ok {
				stripped.WriteRune(ch)
			}
		}
		if got := Render(program); got != stripped.String() {
			t.Fatalf("Render(Parse(%q)) = %q, want %q", src, got, stripped.String())
		}
	})
}
