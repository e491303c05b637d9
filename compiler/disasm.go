package compiler

import (
	"fmt"
	"strings"
)

// Disassemble returns a human-readable listing of a program.
func Disassemble(program []Instruction) string {
	return DisassembleWithName(program, "")
}

// DisassembleWithName returns a human-readable listing with a name header.
// Each line shows a running instruction index, the opcode, its repeat
// count, and nesting is shown by indentation.
func DisassembleWithName(program []Instruction, name string) string {
	var sb strings.Builder

	if name != "" {
		sb.WriteString(fmt.Sprintf("; === %s ===\n", name))
	}
	sb.WriteString(fmt.Sprintf("; Instructions: %d (top level %d)\n\n", Count(program), len(program)))

	index := 0
	disassemble(&sb, program, 0, &index)
	return sb.String()
}

func disassemble(sb *strings.Builder, program []Instruction, depth int, index *int) {
	indent := strings.Repeat("  ", depth)
	for _, inst := range program {
		if inst.Opcode == OpLoop {
			sb.WriteString(fmt.Sprintf("%04d  %s%s (%d)\n", *index, indent, inst.Opcode, len(inst.Instructions)))
			*index++
			disassemble(sb, inst.Instructions, depth+1, index)
			sb.WriteString(fmt.Sprintf("      %sEND\n", indent))
			continue
		}
		sb.WriteString(fmt.Sprintf("%04d  %s%-12s %d\n", *index, indent, inst.Opcode, inst.Amount))
		*index++
	}
}
