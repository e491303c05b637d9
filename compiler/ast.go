package compiler

import "fmt"

// ---------------------------------------------------------------------------
// Instruction tree
// ---------------------------------------------------------------------------

// Position represents a source location.
type Position struct {
	Offset int // byte offset
	Line   int // 1-based line number
	Column int // 1-based column number
}

// Opcode identifies the operation an Instruction performs.
// The two bracket tokens collapse into the single OpLoop kind.
type Opcode uint8

const (
	// Tape movement and arithmetic
	OpLeft Opcode = iota
	OpRight
	OpInc
	OpDec

	// Console I/O
	OpPrint
	OpQuery

	// Control flow
	OpLoop

	// Networking
	OpSetPort
	OpConnect
	OpSendData
	OpReceiveData
	OpDisconnect
	OpSocketHandle
	OpFlushWrites
	OpSetTimeout
)

// OpcodeInfo provides metadata about each opcode for listings and editor support.
type OpcodeInfo struct {
	Name   string // Human-readable name
	Symbol byte   // Source character (0 for OpLoop, which renders as a bracket pair)
	Doc    string // One-line description
}

var opcodeInfoTable = map[Opcode]OpcodeInfo{
	OpLeft:  {"LEFT", '<', "Move the pointer left by the repeat count."},
	OpRight: {"RIGHT", '>', "Move the pointer right by the repeat count."},
	OpInc:   {"INC", '+', "Add the repeat count to the current cell (32-bit wraparound)."},
	OpDec:   {"DEC", '-', "Subtract the repeat count from the current cell (32-bit wraparound)."},

	OpPrint: {"PRINT", '.', "Write the current cell modulo 256 as a character, once per repeat."},
	OpQuery: {"QUERY", ',', "Read one character of keyboard input into the current cell, once per repeat."},

	OpLoop: {"LOOP", 0, "Run the body while the current cell is nonzero."},

	OpSetPort:      {"SET_PORT", '`', "Set the port to the current cell modulo 65535; -1 if the cell is negative."},
	OpConnect:      {"CONNECT", '~', "Connect to the IPv4 address in the current cell (big-endian); stores the new handle or -1."},
	OpSendData:     {"SEND", '^', "Buffer the low bytes of the current cell (little-endian) for the selected connection."},
	OpReceiveData:  {"RECEIVE", 'v', "Read exactly the repeat count of bytes; stores the last four as a little-endian value or -1."},
	OpDisconnect:   {"DISCONNECT", '!', "Shut down both directions of the selected connection; -1 on failure."},
	OpSocketHandle: {"SELECT", '&', "Select the connection whose handle is in the current cell; -1 if out of range."},
	OpFlushWrites:  {"FLUSH", '%', "Write and clear the pending send buffer; -1 on failure."},
	OpSetTimeout:   {"SET_TIMEOUT", '$', "Set the timeout for new connections to the current cell in ms; <= 0 disables it."},
}

// GetOpcodeInfo returns metadata for an opcode.
// Returns an OpcodeInfo named "UNKNOWN(n)" if the opcode is not recognized.
func GetOpcodeInfo(op Opcode) OpcodeInfo {
	if info, ok := opcodeInfoTable[op]; ok {
		return info
	}
	return OpcodeInfo{Name: fmt.Sprintf("UNKNOWN(%d)", uint8(op))}
}

// String returns the human-readable name of an opcode.
func (op Opcode) String() string {
	return GetOpcodeInfo(op).Name
}

// IsNetwork returns true for the eight socket opcodes.
func (op Opcode) IsNetwork() bool {
	return op >= OpSetPort && op <= OpSetTimeout
}

// AllOpcodes returns every defined opcode in declaration order.
func AllOpcodes() []Opcode {
	opcodes := make([]Opcode, 0, len(opcodeInfoTable))
	for op := OpLeft; op <= OpSetTimeout; op++ {
		opcodes = append(opcodes, op)
	}
	return opcodes
}

// Instruction is one node of a compiled program. Amount is the repeat
// count of a folded run (always 1 for OpLoop); Instructions holds the
// body of a loop and is empty for every other opcode.
type Instruction struct {
	Opcode       Opcode        `cbor:"1,keyasint"`
	Amount       int           `cbor:"2,keyasint"`
	Instructions []Instruction `cbor:"3,keyasint,omitempty"`
}

func (i Instruction) String() string {
	if i.Opcode == OpLoop {
		return fmt.Sprintf("LOOP[%d]", len(i.Instructions))
	}
	return fmt.Sprintf("%s x%d", i.Opcode, i.Amount)
}

// Count returns the number of instructions in a program, including
// every instruction nested inside loops.
func Count(program []Instruction) int {
	n := 0
	for _, inst := range program {
		n++
		if inst.Opcode == OpLoop {
			n += Count(inst.Instructions)
		}
	}
	return n
}
