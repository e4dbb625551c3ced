package lexer

// TokenType identifies the lexical class of a token.
type TokenType int

const (
	// Literals
	TOKEN_IDENTIFIER TokenType = iota
	TOKEN_STRING
	TOKEN_NUMBER

	// Keywords
	TOKEN_IMPORT
	TOKEN_MODEL
	TOKEN_REQUIREMENT
	TOKEN_COMPONENT
	TOKEN_FUNCTION
	TOKEN_INTERFACE
	TOKEN_TRACE

	// Symbols
	TOKEN_LBRACE
	TOKEN_RBRACE
	TOKEN_LBRACKET
	TOKEN_RBRACKET
	TOKEN_COLON
	TOKEN_COMMA
	TOKEN_DOT
	TOKEN_ARROW

	TOKEN_EOF
	TOKEN_ERROR
)

// Token is one lexical unit with its source location.
type Token struct {
	Type   TokenType
	Lexeme string
	Line   int
	Column int
}

// keywords maps reserved words to their token types.
var keywords = map[string]TokenType{
	"import":      TOKEN_IMPORT,
	"model":       TOKEN_MODEL,
	"requirement": TOKEN_REQUIREMENT,
	"component":   TOKEN_COMPONENT,
	"function":    TOKEN_FUNCTION,
	"interface":   TOKEN_INTERFACE,
	"trace":       TOKEN_TRACE,
}
