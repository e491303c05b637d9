package compiler

import "fmt"

// BracketError locates one unbalanced bracket in source text.
type BracketError struct {
	Kind ParseErrorKind
	Pos  Position
}

func (e BracketError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, (&ParseError{Kind: e.Kind}).Error())
}

// CheckBrackets reports every unbalanced bracket in source. Unlike Parse
// it keeps going after the first fault, and each fault carries the
// position of the offending bracket. An empty result means Parse will
// not fail.
func CheckBrackets(source string) []BracketError {
	var errs []BracketError
	var open []Position

	for _, tok := range Tokenize(source) {
		switch tok.Type {
		case TokenBeginLoop:
			open = append(open, tok.Pos)
		case TokenEndLoop:
			if len(open) == 0 {
				errs = append(errs, BracketError{Kind: MismatchedEndLoop, Pos: tok.Pos})
				continue
			}
			open = open[:len(open)-1]
		}
	}

	// Unclosed openers follow the stray closers
	for _, pos := range open {
		errs = append(errs, BracketError{Kind: MismatchedBeginLoop, Pos: pos})
	}
	return errs
}
