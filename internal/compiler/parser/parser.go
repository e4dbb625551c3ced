// Package parser transforms a stream of ArcLang tokens into an abstract
// syntax tree.
package parser

import (
	"fmt"

	"github.com/Mbaroudi/arclang-sub001/internal/compiler/ast"
	"github.com/Mbaroudi/arclang-sub001/internal/compiler/lexer"
)

// ParseError is a syntax error anchored to the offending token.
type ParseError struct {
	Message string
	Token   lexer.Token
}

func (e ParseError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Token.Line, e.Token.Column, e.Message)
}

// Parser transforms a stream of tokens into an AST.
type Parser struct {
	tokens  []lexer.Token
	current int
	errors  []ParseError
}

// New creates a new parser for the given token stream.
func New(tokens []lexer.Token) *Parser {
	return &Parser{
		tokens: tokens,
		errors: make([]ParseError, 0),
	}
}

// Parse parses the token stream and returns the AST and any errors.
func (p *Parser) Parse() (*ast.File, []ParseError) {
	file := &ast.File{}

	for !p.isAtEnd() {
		switch p.peek().Type {
		case lexer.TOKEN_IMPORT:
			if decl := p.parseImport(); decl != nil {
				file.Imports = append(file.Imports, decl)
			}
		case lexer.TOKEN_MODEL:
			if decl := p.parseModel(); decl != nil {
				file.Model = decl
			}
		case lexer.TOKEN_REQUIREMENT:
			if decl := p.parseRequirement(); decl != nil {
				file.Requirements = append(file.Requirements, decl)
			}
		case lexer.TOKEN_COMPONENT:
			if decl := p.parseComponent(); decl != nil {
				file.Components = append(file.Components, decl)
			}
		case lexer.TOKEN_FUNCTION:
			if decl := p.parseFunction(); decl != nil {
				file.Functions = append(file.Functions, decl)
			}
		case lexer.TOKEN_TRACE:
			if decl := p.parseTrace(); decl != nil {
				file.Traces = append(file.Traces, decl)
			}
		default:
			p.addError("Expected a top-level declaration")
			p.synchronize()
		}
	}

	return file, p.errors
}

func (p *Parser) parseImport() *ast.ImportDecl {
	keyword := p.advance()

	pathToken, ok := p.consume(lexer.TOKEN_STRING, "Expected import path string")
	if !ok {
		p.synchronize()
		return nil
	}

	return &ast.ImportDecl{
		Path:   pathToken.Lexeme,
		Line:   keyword.Line,
		Column: keyword.Column,
	}
}

func (p *Parser) parseModel() *ast.ModelDecl {
	keyword := p.advance()

	nameToken, ok := p.consume(lexer.TOKEN_IDENTIFIER, "Expected model name")
	if !ok {
		p.synchronize()
		return nil
	}

	decl := &ast.ModelDecl{
		Name:       nameToken.Lexeme,
		Attributes: make(map[string]string),
		Line:       keyword.Line,
		Column:     keyword.Column,
	}

	if _, ok := p.consume(lexer.TOKEN_LBRACE, "Expected '{' after model name"); !ok {
		p.synchronize()
		return decl
	}

	for !p.check(lexer.TOKEN_RBRACE) && !p.isAtEnd() {
		key, value, ok := p.parseAttribute()
		if !ok {
			p.synchronize()
			return decl
		}
		decl.Attributes[key] = value
	}

	p.consume(lexer.TOKEN_RBRACE, "Expected '}' after model body")
	return decl
}

func (p *Parser) parseRequirement() *ast.RequirementDecl {
	keyword := p.advance()

	nameToken, ok := p.consume(lexer.TOKEN_IDENTIFIER, "Expected requirement name")
	if !ok {
		p.synchronize()
		return nil
	}

	decl := &ast.RequirementDecl{
		Name:   nameToken.Lexeme,
		Line:   keyword.Line,
		Column: keyword.Column,
	}

	if _, ok := p.consume(lexer.TOKEN_LBRACE, "Expected '{' after requirement name"); !ok {
		p.synchronize()
		return decl
	}

	for !p.check(lexer.TOKEN_RBRACE) && !p.isAtEnd() {
		keyToken, ok := p.consumeAttributeKey()
		if !ok {
			p.synchronize()
			return decl
		}
		if _, ok := p.consume(lexer.TOKEN_COLON, "Expected ':' after attribute name"); !ok {
			p.synchronize()
			return decl
		}

		switch keyToken.Lexeme {
		case "traces":
			decl.Traces = p.parseIdentifierList()
		case "title":
			decl.Title = p.parseScalar()
		case "description":
			decl.Description = p.parseScalar()
		case "priority":
			decl.Priority = p.parseScalar()
		case "rationale":
			decl.Rationale = p.parseScalar()
		default:
			p.parseScalarOrList()
		}
	}

	p.consume(lexer.TOKEN_RBRACE, "Expected '}' after requirement body")
	return decl
}

func (p *Parser) parseComponent() *ast.ComponentDecl {
	keyword := p.advance()

	nameToken, ok := p.consume(lexer.TOKEN_IDENTIFIER, "Expected component name")
	if !ok {
		p.synchronize()
		return nil
	}

	decl := &ast.ComponentDecl{
		Name:   nameToken.Lexeme,
		Line:   keyword.Line,
		Column: keyword.Column,
	}

	if _, ok := p.consume(lexer.TOKEN_LBRACE, "Expected '{' after component name"); !ok {
		p.synchronize()
		return decl
	}

	for !p.check(lexer.TOKEN_RBRACE) && !p.isAtEnd() {
		keyToken, ok := p.consumeAttributeKey()
		if !ok {
			p.synchronize()
			return decl
		}
		if _, ok := p.consume(lexer.TOKEN_COLON, "Expected ':' after attribute name"); !ok {
			p.synchronize()
			return decl
		}

		switch keyToken.Lexeme {
		case "implements":
			decl.Implements = p.parseIdentifierList()
		case "provides":
			decl.Provides = p.parseIdentifierList()
		case "requires":
			decl.Requires = p.parseIdentifierList()
		case "description":
			decl.Description = p.parseScalar()
		default:
			p.parseScalarOrList()
		}
	}

	p.consume(lexer.TOKEN_RBRACE, "Expected '}' after component body")
	return decl
}

func (p *Parser) parseFunction() *ast.FunctionDecl {
	keyword := p.advance()

	nameToken, ok := p.consume(lexer.TOKEN_IDENTIFIER, "Expected function name")
	if !ok {
		p.synchronize()
		return nil
	}

	decl := &ast.FunctionDecl{
		Name:   nameToken.Lexeme,
		Line:   keyword.Line,
		Column: keyword.Column,
	}

	if _, ok := p.consume(lexer.TOKEN_LBRACE, "Expected '{' after function name"); !ok {
		p.synchronize()
		return decl
	}

	for !p.check(lexer.TOKEN_RBRACE) && !p.isAtEnd() {
		keyToken, ok := p.consumeAttributeKey()
		if !ok {
			p.synchronize()
			return decl
		}
		if _, ok := p.consume(lexer.TOKEN_COLON, "Expected ':' after attribute name"); !ok {
			p.synchronize()
			return decl
		}

		switch keyToken.Lexeme {
		case "satisfies":
			decl.Satisfies = p.parseIdentifierList()
		case "description":
			decl.Description = p.parseScalar()
		default:
			p.parseScalarOrList()
		}
	}

	p.consume(lexer.TOKEN_RBRACE, "Expected '}' after function body")
	return decl
}

func (p *Parser) parseTrace() *ast.TraceDecl {
	keyword := p.advance()

	fromToken, ok := p.consume(lexer.TOKEN_IDENTIFIER, "Expected trace source element")
	if !ok {
		p.synchronize()
		return nil
	}
	if _, ok := p.consume(lexer.TOKEN_ARROW, "Expected '->' in trace declaration"); !ok {
		p.synchronize()
		return nil
	}
	toToken, ok := p.consume(lexer.TOKEN_IDENTIFIER, "Expected trace target element")
	if !ok {
		p.synchronize()
		return nil
	}

	decl := &ast.TraceDecl{
		From:   fromToken.Lexeme,
		To:     toToken.Lexeme,
		Kind:   "traces",
		Line:   keyword.Line,
		Column: keyword.Column,
	}

	if p.check(lexer.TOKEN_COLON) {
		p.advance()
		kindToken, ok := p.consume(lexer.TOKEN_IDENTIFIER, "Expected trace kind after ':'")
		if ok {
			decl.Kind = kindToken.Lexeme
		}
	}

	return decl
}

// parseAttribute parses `key: scalar` inside a model block.
func (p *Parser) parseAttribute() (string, string, bool) {
	keyToken, ok := p.consumeAttributeKey()
	if !ok {
		return "", "", false
	}
	if _, ok := p.consume(lexer.TOKEN_COLON, "Expected ':' after attribute name"); !ok {
		return "", "", false
	}
	return keyToken.Lexeme, p.parseScalar(), true
}

// consumeAttributeKey accepts an identifier or a keyword used in attribute
// position (e.g. `interface:` inside a component).
func (p *Parser) consumeAttributeKey() (lexer.Token, bool) {
	switch p.peek().Type {
	case lexer.TOKEN_IDENTIFIER, lexer.TOKEN_INTERFACE, lexer.TOKEN_MODEL, lexer.TOKEN_TRACE:
		return p.advance(), true
	default:
		p.addError("Expected attribute name")
		return p.peek(), false
	}
}

// parseScalar accepts a string, number, or identifier value.
func (p *Parser) parseScalar() string {
	switch p.peek().Type {
	case lexer.TOKEN_STRING, lexer.TOKEN_NUMBER, lexer.TOKEN_IDENTIFIER:
		return p.advance().Lexeme
	default:
		p.addError("Expected attribute value")
		return ""
	}
}

// parseIdentifierList parses `[A, B, C]`.
func (p *Parser) parseIdentifierList() []string {
	if _, ok := p.consume(lexer.TOKEN_LBRACKET, "Expected '[' before list"); !ok {
		return nil
	}

	items := make([]string, 0)
	for !p.check(lexer.TOKEN_RBRACKET) && !p.isAtEnd() {
		item, ok := p.consume(lexer.TOKEN_IDENTIFIER, "Expected identifier in list")
		if !ok {
			break
		}
		items = append(items, item.Lexeme)

		if !p.check(lexer.TOKEN_RBRACKET) {
			if _, ok := p.consume(lexer.TOKEN_COMMA, "Expected ',' between list items"); !ok {
				break
			}
		}
	}

	p.consume(lexer.TOKEN_RBRACKET, "Expected ']' after list")
	return items
}

// parseScalarOrList skips an attribute value of unknown key.
func (p *Parser) parseScalarOrList() {
	if p.check(lexer.TOKEN_LBRACKET) {
		p.parseIdentifierList()
		return
	}
	p.parseScalar()
}

// synchronize skips tokens until the next likely declaration boundary.
func (p *Parser) synchronize() {
	for !p.isAtEnd() {
		switch p.peek().Type {
		case lexer.TOKEN_IMPORT, lexer.TOKEN_MODEL, lexer.TOKEN_REQUIREMENT,
			lexer.TOKEN_COMPONENT, lexer.TOKEN_FUNCTION, lexer.TOKEN_TRACE:
			return
		case lexer.TOKEN_RBRACE:
			p.advance()
			return
		}
		p.advance()
	}
}

func (p *Parser) consume(tokenType lexer.TokenType, message string) (lexer.Token, bool) {
	if p.check(tokenType) {
		return p.advance(), true
	}
	p.addError(message)
	return p.peek(), false
}

func (p *Parser) addError(message string) {
	p.errors = append(p.errors, ParseError{
		Message: message,
		Token:   p.peek(),
	})
}

func (p *Parser) check(tokenType lexer.TokenType) bool {
	return p.peek().Type == tokenType
}

func (p *Parser) advance() lexer.Token {
	token := p.tokens[p.current]
	if !p.isAtEnd() {
		p.current++
	}
	return token
}

func (p *Parser) peek() lexer.Token {
	return p.tokens[p.current]
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Type == lexer.TOKEN_EOF
}
