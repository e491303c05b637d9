package compiler

import (
	"errors"
)

// ---------------------------------------------------------------------------
// Parse errors
// ---------------------------------------------------------------------------

// ParseErrorKind classifies a parse failure.
type ParseErrorKind int

const (
	// MismatchedBeginLoop is reported for a '[' with no matching ']'.
	MismatchedBeginLoop ParseErrorKind = iota + 1
	// MismatchedEndLoop is reported for a ']' with no matching '['.
	MismatchedEndLoop
)

func (k ParseErrorKind) String() string {
	switch k {
	case MismatchedBeginLoop:
		return "MismatchedBeginLoop"
	case MismatchedEndLoop:
		return "MismatchedEndLoop"
	default:
		return "ParseErrorKind(?)"
	}
}

// ParseError is returned by Parse. It carries only the kind of fault;
// the instruction builder has no notion of source position.
type ParseError struct {
	Kind ParseErrorKind
}

func (e *ParseError) Error() string {
	switch e.Kind {
	case MismatchedBeginLoop:
		return "Mismatched '['!"
	case MismatchedEndLoop:
		return "Mismatched ']'!"
	default:
		return "parse error"
	}
}

// Is lets errors.Is match any ParseError of the same kind.
func (e *ParseError) Is(target error) bool {
	var other *ParseError
	if errors.As(target, &other) {
		return other.Kind == e.Kind
	}
	return false
}

// Sentinel values for errors.Is.
var (
	ErrMismatchedBeginLoop error = &ParseError{Kind: MismatchedBeginLoop}
	ErrMismatchedEndLoop   error = &ParseError{Kind: MismatchedEndLoop}
)

// ---------------------------------------------------------------------------
// Instruction builder
// ---------------------------------------------------------------------------

// Parse tokenizes source and builds its instruction tree.
func Parse(source string) ([]Instruction, error) {
	return Build(Tokenize(source))
}

// Build folds runs of identical simple tokens into counted instructions
// and resolves bracketed regions into OpLoop instructions.
func Build(tokens []Token) ([]Instruction, error) {
	instructions := make([]Instruction, 0)

	var pending Opcode
	hasPending := false
	count := 0

	flush := func() {
		if hasPending {
			instructions = append(instructions, Instruction{Opcode: pending, Amount: count})
			hasPending = false
			count = 0
		}
	}

	for index := 0; index < len(tokens); index++ {
		switch tokens[index].Type {
		case TokenBeginLoop:
			// Loops never fold with the run before them
			flush()

			end, ok := matchingEnd(tokens, index)
			if !ok {
				return nil, &ParseError{Kind: MismatchedBeginLoop}
			}

			body, err := Build(tokens[index+1 : end])
			if err != nil {
				return nil, err
			}
			instructions = append(instructions, Instruction{
				Opcode:       OpLoop,
				Amount:       1,
				Instructions: body,
			})
			index = end

		case TokenEndLoop:
			return nil, &ParseError{Kind: MismatchedEndLoop}

		default:
			op, _ := tokens[index].Type.Opcode()
			if hasPending && op == pending {
				count++
				continue
			}
			flush()
			pending = op
			hasPending = true
			count = 1
		}
	}

	flush()
	return instructions, nil
}

// matchingEnd returns the index of the ']' closing the '[' at begin.
func matchingEnd(tokens []Token, begin int) (int, bool) {
	depth := 1
	for i := begin + 1; i < len(tokens); i++ {
		switch tokens[i].Type {
		case TokenBeginLoop:
			depth++
		case TokenEndLoop:
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}
