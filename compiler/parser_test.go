package compiler

import (
	"errors"
	"testing"
)

const helloWorld = ">++++++++[-<+++++++++>]<.>>+>-[+]++>++>+++[>[->+++<<+++>]<<]>-----.>->+++..+++.>-.<<+[>[+>+]>>]<--------------.>>.+++.------.--------.>+.>+."

func TestParseFoldsRuns(t *testing.T) {
	program, err := Parse("+++>>-..")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	want := []Instruction{
		{Opcode: OpInc, Amount: 3},
		{Opcode: OpRight, Amount: 2},
		{Opcode: OpDec, Amount: 1},
		{Opcode: OpPrint, Amount: 2},
	}
	if len(program) != len(want) {
		t.Fatalf("got %d instructions, want %d: %v", len(program), len(want), program)
	}
	for i, inst := range program {
		if inst.Opcode != want[i].Opcode || inst.Amount != want[i].Amount {
			t.Errorf("instruction %d = %v, want %v", i, inst, want[i])
		}
		if len(inst.Instructions) != 0 {
			t.Errorf("instruction %d has %d children, want 0", i, len(inst.Instructions))
		}
	}
}

func TestParseFoldsAcrossComments(t *testing.T) {
	program, err := Parse("+ add + one + more")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(program) != 1 || program[0].Opcode != OpInc || program[0].Amount != 3 {
		t.Errorf("Parse = %v, want [INC x3]", program)
	}
}

func TestParseNetworkingOpcodes(t *testing.T) {
	program, err := Parse("`~&^^^^^v!%$")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	want := []struct {
		op     Opcode
		amount int
	}{
		{OpSetPort, 1},
		{OpConnect, 1},
		{OpSocketHandle, 1},
		{OpSendData, 5},
		{OpReceiveData, 1},
		{OpDisconnect, 1},
		{OpFlushWrites, 1},
		{OpSetTimeout, 1},
	}
	if len(program) != len(want) {
		t.Fatalf("got %d instructions, want %d", len(program), len(want))
	}
	for i, w := range want {
		if program[i].Opcode != w.op || program[i].Amount != w.amount {
			t.Errorf("instruction %d = %v, want %s x%d", i, program[i], w.op, w.amount)
		}
		if !program[i].Opcode.IsNetwork() {
			t.Errorf("%s.IsNetwork() = false", program[i].Opcode)
		}
	}
}

func TestParseLoopDoesNotFold(t *testing.T) {
	program, err := Parse("++[+]++")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(program) != 3 {
		t.Fatalf("got %d instructions, want 3: %v", len(program), program)
	}
	if program[0].Opcode != OpInc || program[0].Amount != 2 {
		t.Errorf("first = %v, want INC x2", program[0])
	}
	if program[1].Opcode != OpLoop || program[1].Amount != 1 {
		t.Errorf("second = %v, want LOOP", program[1])
	}
	if program[2].Opcode != OpInc || program[2].Amount != 2 {
		t.Errorf("third = %v, want INC x2", program[2])
	}
}

func TestParseOneElementLoop(t *testing.T) {
	program, err := Parse("[+]")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(program) != 1 || program[0].Opcode != OpLoop {
		t.Fatalf("Parse = %v, want one LOOP", program)
	}
	body := program[0].Instructions
	if len(body) != 1 || body[0].Opcode != OpInc || body[0].Amount != 1 {
		t.Errorf("loop body = %v, want [INC x1]", body)
	}
}

func TestParseEmptyNestedLoop(t *testing.T) {
	program, err := Parse("[[]]")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(program) != 1 || program[0].Opcode != OpLoop {
		t.Fatalf("Parse = %v, want one LOOP", program)
	}
	inner := program[0].Instructions
	if len(inner) != 1 || inner[0].Opcode != OpLoop {
		t.Fatalf("outer body = %v, want one LOOP", inner)
	}
	if len(inner[0].Instructions) != 0 {
		t.Errorf("inner body = %v, want empty", inner[0].Instructions)
	}
}

func TestParseEmpty(t *testing.T) {
	for _, src := range []string{"", "just a comment"} {
		program, err := Parse(src)
		if err != nil {
			t.Errorf("Parse(%q) error: %v", src, err)
		}
		if len(program) != 0 {
			t.Errorf("Parse(%q) = %v, want empty", src, program)
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		input string
		want  error
	}{
		{"]", ErrMismatchedEndLoop},
		{"[", ErrMismatchedBeginLoop},
		{"+]", ErrMismatchedEndLoop},
		{"[[]", ErrMismatchedBeginLoop},
		{"[]]", ErrMismatchedEndLoop},
		{"[+[-]", ErrMismatchedBeginLoop},
		{"][", ErrMismatchedEndLoop},
		{"[>]]<[", ErrMismatchedEndLoop},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			program, err := Parse(tc.input)
			if err == nil {
				t.Fatalf("Parse(%q) = %v, want error", tc.input, program)
			}
			if !errors.Is(err, tc.want) {
				t.Errorf("Parse(%q) error = %v, want %v", tc.input, err, tc.want)
			}
			if program != nil {
				t.Errorf("Parse(%q) returned a partial program", tc.input)
			}
		})
	}
}

func TestParseErrorMessages(t *testing.T) {
	_, err := Parse("[")
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("error %T is not *ParseError", err)
	}
	if perr.Kind != MismatchedBeginLoop {
		t.Errorf("kind = %v, want MismatchedBeginLoop", perr.Kind)
	}
	if err.Error() != "Mismatched '['!" {
		t.Errorf("message = %q", err.Error())
	}

	_, err = Parse("]")
	if err.Error() != "Mismatched ']'!" {
		t.Errorf("message = %q", err.Error())
	}
	if errors.Is(err, ErrMismatchedBeginLoop) {
		t.Error("MismatchedEndLoop matched ErrMismatchedBeginLoop")
	}
}

func TestParseBracketMatching(t *testing.T) {
	tests := []struct {
		input string
		ok    bool
	}{
		{"[][][]", true},
		{"[[[[]]]]", true},
		{"[[][[]]]", true},
		{"[[]][", false},
		{"[[]]]", false},
		{"]]", false},
		{"[[", false},
	}

	for _, tc := range tests {
		_, err := Parse(tc.input)
		if (err == nil) != tc.ok {
			t.Errorf("Parse(%q) err = %v, want ok=%v", tc.input, err, tc.ok)
		}
		if got := len(CheckBrackets(tc.input)) == 0; got != tc.ok {
			t.Errorf("CheckBrackets(%q) clean = %v, want %v", tc.input, got, tc.ok)
		}
	}
}

func TestCount(t *testing.T) {
	program, err := Parse("+[>[-]<]")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if n := Count(program); n != 6 {
		t.Errorf("Count = %d, want 6", n)
	}
}
