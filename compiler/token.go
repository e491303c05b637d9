package compiler

import "fmt"

// ---------------------------------------------------------------------------
// Token types
// ---------------------------------------------------------------------------

// TokenType represents the type of a token.
type TokenType int

const (
	// Movement
	TokenLeft  TokenType = iota // <
	TokenRight                  // >

	// Arithmetic
	TokenInc // +
	TokenDec // -

	// Console I/O
	TokenPrint // .
	TokenQuery // ,

	// Loop brackets
	TokenBeginLoop // [
	TokenEndLoop   // ]

	// Networking
	TokenSetPort      // `
	TokenConnect      // ~
	TokenSendData     // ^
	TokenReceiveData  // v
	TokenDisconnect   // !
	TokenSocketHandle // &
	TokenFlushWrites  // %
	TokenSetTimeout   // $
)

var tokenNames = map[TokenType]string{
	TokenLeft:         "<",
	TokenRight:        ">",
	TokenInc:          "+",
	TokenDec:          "-",
	TokenPrint:        ".",
	TokenQuery:        ",",
	TokenBeginLoop:    "[",
	TokenEndLoop:      "]",
	TokenSetPort:      "`",
	TokenConnect:      "~",
	TokenSendData:     "^",
	TokenReceiveData:  "v",
	TokenDisconnect:   "!",
	TokenSocketHandle: "&",
	TokenFlushWrites:  "%",
	TokenSetTimeout:   "$",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Token(%d)", t)
}

// Token represents a lexical token.
type Token struct {
	Type TokenType
	Pos  Position // source position of the symbol
}

func (t Token) String() string {
	return fmt.Sprintf("%s@%d:%d", t.Type, t.Pos.Line, t.Pos.Column)
}

// symbols maps each recognized source character to its token type.
var symbols = map[rune]TokenType{
	'<':  TokenLeft,
	'>':  TokenRight,
	'+':  TokenInc,
	'-':  TokenDec,
	'.':  TokenPrint,
	',':  TokenQuery,
	'[':  TokenBeginLoop,
	']':  TokenEndLoop,
	'`':  TokenSetPort,
	'~':  TokenConnect,
	'^':  TokenSendData,
	'v':  TokenReceiveData,
	'!':  TokenDisconnect,
	'&':  TokenSocketHandle,
	'%':  TokenFlushWrites,
	'$':  TokenSetTimeout,
}

// LookupSymbol returns the token for a source character. The second
// result is false for any character outside the alphabet; such
// characters are comments.
func LookupSymbol(ch rune) (TokenType, bool) {
	t, ok := symbols[ch]
	return t, ok
}

// tokenOpcodes maps non-bracket tokens to the opcode they fold into.
var tokenOpcodes = map[TokenType]Opcode{
	TokenLeft:         OpLeft,
	TokenRight:        OpRight,
	TokenInc:          OpInc,
	TokenDec:          OpDec,
	TokenPrint:        OpPrint,
	TokenQuery:        OpQuery,
	TokenSetPort:      OpSetPort,
	TokenConnect:      OpConnect,
	TokenSendData:     OpSendData,
	TokenReceiveData:  OpReceiveData,
	TokenDisconnect:   OpDisconnect,
	TokenSocketHandle: OpSocketHandle,
	TokenFlushWrites:  OpFlushWrites,
	TokenSetTimeout:   OpSetTimeout,
}

// Opcode returns the opcode a simple token folds into. Bracket tokens
// have no opcode of their own and report false.
func (t TokenType) Opcode() (Opcode, bool) {
	op, ok := tokenOpcodes[t]
	return op, ok
}
