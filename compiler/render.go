package compiler

import "strings"

// Render returns the canonical source text for a program: every counted
// instruction expands to its symbol repeated Amount times and every loop
// becomes a bracket pair around its rendered body. Rendering a parsed
// comment-free program reproduces the original text.
func Render(program []Instruction) string {
	var sb strings.Builder
	render(&sb, program)
	return sb.String()
}

func render(sb *strings.Builder, program []Instruction) {
	for _, inst := range program {
		if inst.Opcode == OpLoop {
			sb.WriteByte('[')
			render(sb, inst.Instructions)
			sb.WriteByte(']')
			continue
		}
		sym := GetOpcodeInfo(inst.Opcode).Symbol
		for i := 0; i < inst.Amount; i++ {
			sb.WriteByte(sym)
		}
	}
}

// Format strips comments from source and returns its canonical form.
func Format(source string) (string, error) {
	program, err := Parse(source)
	if err != nil {
		return "", err
	}
	return Render(program), nil
}
