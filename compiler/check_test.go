package compiler

import "testing"

func TestCheckBracketsPositions(t *testing.T) {
	src := "+[\n]]\n  [ [ ]"
	errs := CheckBrackets(src)

	want := []struct {
		kind      ParseErrorKind
		line, col int
	}{
		{MismatchedEndLoop, 2, 2},
		{MismatchedBeginLoop, 3, 3},
	}
	if len(errs) != len(want) {
		t.Fatalf("CheckBrackets = %v, want %d faults", errs, len(want))
	}
	for i, w := range want {
		if errs[i].Kind != w.kind || errs[i].Pos.Line != w.line || errs[i].Pos.Column != w.col {
			t.Errorf("fault %d = %v (%v), want %v at %d:%d", i, errs[i], errs[i].Kind, w.kind, w.line, w.col)
		}
	}
}

func TestCheckBracketsAgreesWithParse(t *testing.T) {
	inputs := []string{"", "[]", "]", "[", "[[]", "[]]", "][", helloWorld, "[[", "]]"}
	for _, src := range inputs {
		errs := CheckBrackets(src)
		_, err := Parse(src)
		if (len(errs) == 0) != (err == nil) {
			t.Errorf("%q: CheckBrackets = %v, Parse err = %v", src, errs, err)
		}
	}
}

func TestBracketErrorMessage(t *testing.T) {
	errs := CheckBrackets("  ]")
	if len(errs) != 1 {
		t.Fatalf("got %d faults, want 1", len(errs))
	}
	if got := errs[0].Error(); got != "1:3: Mismatched ']'!" {
		t.Errorf("Error() = %q", got)
	}
}
