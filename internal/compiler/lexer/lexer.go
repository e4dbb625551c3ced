// Package lexer provides lexical analysis for ArcLang source code.
// It tokenizes .arc files into a stream of tokens for the parser.
package lexer

import (
	"fmt"
	"unicode"
)

// LexError is a lexical error with its source location.
type LexError struct {
	Message string
	Line    int
	Column  int
}

// Lexer tokenizes ArcLang source code.
//
// Lexer instances are not thread-safe; each goroutine must create its own
// via New().
type Lexer struct {
	source  string
	start   int
	current int
	line    int
	column  int
	tokens  []Token
	errors  []LexError
}

// New creates a new Lexer for the given source code.
func New(source string) *Lexer {
	return &Lexer{
		source: source,
		line:   1,
		column: 1,
		tokens: make([]Token, 0),
		errors: make([]LexError, 0),
	}
}

// ScanTokens tokenizes the entire source and returns tokens and errors.
func (l *Lexer) ScanTokens() ([]Token, []LexError) {
	for !l.isAtEnd() {
		l.start = l.current
		l.scanToken()
	}

	l.tokens = append(l.tokens, Token{
		Type:   TOKEN_EOF,
		Line:   l.line,
		Column: l.column,
	})

	return l.tokens, l.errors
}

func (l *Lexer) scanToken() {
	c := l.advance()

	switch c {
	case '{':
		l.addToken(TOKEN_LBRACE)
	case '}':
		l.addToken(TOKEN_RBRACE)
	case '[':
		l.addToken(TOKEN_LBRACKET)
	case ']':
		l.addToken(TOKEN_RBRACKET)
	case ':':
		l.addToken(TOKEN_COLON)
	case ',':
		l.addToken(TOKEN_COMMA)
	case '.':
		l.addToken(TOKEN_DOT)
	case '-':
		if l.match('>') {
			l.addToken(TOKEN_ARROW)
		} else if isDigit(l.peek()) {
			l.number()
		} else {
			l.addError("Unexpected character '-'")
		}
	case '/':
		if l.match('/') {
			for l.peek() != '\n' && !l.isAtEnd() {
				l.advance()
			}
		} else if l.match('*') {
			l.blockComment()
		} else {
			l.addError("Unexpected character '/'")
		}
	case '"':
		l.string()
	case ' ', '\r', '\t':
		// Ignore whitespace
	case '\n':
		l.line++
		l.column = 1
	default:
		switch {
		case isDigit(c):
			l.number()
		case isAlpha(c):
			l.identifier()
		default:
			l.addError(fmt.Sprintf("Unexpected character %q", c))
		}
	}
}

func (l *Lexer) string() {
	for l.peek() != '"' && !l.isAtEnd() {
		if l.peek() == '\n' {
			l.line++
			l.column = 1
		}
		l.advance()
	}

	if l.isAtEnd() {
		l.addError("Unterminated string")
		return
	}

	l.advance() // closing quote

	value := l.source[l.start+1 : l.current-1]
	l.tokens = append(l.tokens, Token{
		Type:   TOKEN_STRING,
		Lexeme: value,
		Line:   l.line,
		Column: l.tokenColumn(),
	})
}

func (l *Lexer) number() {
	for isDigit(l.peek()) {
		l.advance()
	}
	if l.peek() == '.' && isDigit(l.peekNext()) {
		l.advance()
		for isDigit(l.peek()) {
			l.advance()
		}
	}
	l.addToken(TOKEN_NUMBER)
}

func (l *Lexer) identifier() {
	for isAlphaNumeric(l.peek()) {
		l.advance()
	}

	lexeme := l.source[l.start:l.current]
	if tokenType, isKeyword := keywords[lexeme]; isKeyword {
		l.addToken(tokenType)
		return
	}
	l.addToken(TOKEN_IDENTIFIER)
}

func (l *Lexer) blockComment() {
	for !l.isAtEnd() {
		if l.peek() == '*' && l.peekNext() == '/' {
			l.advance()
			l.advance()
			return
		}
		if l.peek() == '\n' {
			l.line++
			l.column = 1
		}
		l.advance()
	}
	l.addError("Unterminated block comment")
}

func (l *Lexer) addToken(tokenType TokenType) {
	l.tokens = append(l.tokens, Token{
		Type:   tokenType,
		Lexeme: l.source[l.start:l.current],
		Line:   l.line,
		Column: l.tokenColumn(),
	})
}

func (l *Lexer) addError(message string) {
	l.errors = append(l.errors, LexError{
		Message: message,
		Line:    l.line,
		Column:  l.tokenColumn(),
	})
}

// tokenColumn is the column where the current token started.
func (l *Lexer) tokenColumn() int {
	return l.column - (l.current - l.start)
}

func (l *Lexer) advance() byte {
	c := l.source[l.current]
	l.current++
	l.column++
	return c
}

func (l *Lexer) match(expected byte) bool {
	if l.isAtEnd() || l.source[l.current] != expected {
		return false
	}
	l.current++
	l.column++
	return true
}

func (l *Lexer) peek() byte {
	if l.isAtEnd() {
		return 0
	}
	return l.source[l.current]
}

func (l *Lexer) peekNext() byte {
	if l.current+1 >= len(l.source) {
		return 0
	}
	return l.source[l.current+1]
}

func (l *Lexer) isAtEnd() bool {
	return l.current >= len(l.source)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlpha(c byte) bool {
	return unicode.IsLetter(rune(c)) || c == '_'
}

func isAlphaNumeric(c byte) bool {
	return isAlpha(c) || isDigit(c)
}
