package lexer

import (
	"testing"
)

func scanSource(source string) ([]Token, []LexError) {
	lexer := New(source)
	return lexer.ScanTokens()
}

func checkTokenTypes(t *testing.T, tokens []Token, expected []TokenType) {
	t.Helper()

	actual := tokens
	if len(actual) > 0 && actual[len(actual)-1].Type == TOKEN_EOF {
		actual = actual[:len(actual)-1]
	}

	if len(actual) != len(expected) {
		t.Errorf("Expected %d tokens, got %d", len(expected), len(actual))
		t.Logf("Got: %v", actual)
		return
	}

	for i, token := range actual {
		if token.Type != expected[i] {
			t.Errorf("Token %d: expected %v, got %v (%q)", i, expected[i], token.Type, token.Lexeme)
		}
	}
}

func TestLexer_Punctuation(t *testing.T) {
	tokens, errors := scanSource("{}[],:.")
	if len(errors) > 0 {
		t.Errorf("Unexpected errors: %v", errors)
	}

	checkTokenTypes(t, tokens, []TokenType{
		TOKEN_LBRACE, TOKEN_RBRACE,
		TOKEN_LBRACKET, TOKEN_RBRACKET,
		TOKEN_COMMA, TOKEN_COLON, TOKEN_DOT,
	})
}

func TestLexer_Keywords(t *testing.T) {
	tokens, errors := scanSource("import model requirement component function interface trace")
	if len(errors) > 0 {
		t.Errorf("Unexpected errors: %v", errors)
	}

	checkTokenTypes(t, tokens, []TokenType{
		TOKEN_IMPORT, TOKEN_MODEL, TOKEN_REQUIREMENT,
		TOKEN_COMPONENT, TOKEN_FUNCTION, TOKEN_INTERFACE, TOKEN_TRACE,
	})
}

func TestLexer_IdentifiersAndKeywordsDiffer(t *testing.T) {
	tokens, errors := scanSource("model Models")
	if len(errors) > 0 {
		t.Errorf("Unexpected errors: %v", errors)
	}

	checkTokenTypes(t, tokens, []TokenType{TOKEN_MODEL, TOKEN_IDENTIFIER})
	if tokens[1].Lexeme != "Models" {
		t.Errorf("Expected lexeme 'Models', got %q", tokens[1].Lexeme)
	}
}

func TestLexer_Arrow(t *testing.T) {
	tokens, errors := scanSource("Controller -> REQ_001")
	if len(errors) > 0 {
		t.Errorf("Unexpected errors: %v", errors)
	}

	checkTokenTypes(t, tokens, []TokenType{TOKEN_IDENTIFIER, TOKEN_ARROW, TOKEN_IDENTIFIER})
}

func TestLexer_String(t *testing.T) {
	tokens, errors := scanSource(`title: "Altitude hold"`)
	if len(errors) > 0 {
		t.Errorf("Unexpected errors: %v", errors)
	}

	checkTokenTypes(t, tokens, []TokenType{TOKEN_IDENTIFIER, TOKEN_COLON, TOKEN_STRING})
	if tokens[2].Lexeme != "Altitude hold" {
		t.Errorf("Expected string value without quotes, got %q", tokens[2].Lexeme)
	}
}

func TestLexer_UnterminatedString(t *testing.T) {
	_, errors := scanSource(`"never closed`)
	if len(errors) != 1 {
		t.Fatalf("Expected one error, got %v", errors)
	}
	if errors[0].Message != "Unterminated string" {
		t.Errorf("Unexpected message %q", errors[0].Message)
	}
}

func TestLexer_Numbers(t *testing.T) {
	tokens, errors := scanSource("42 3.14 -7")
	if len(errors) > 0 {
		t.Errorf("Unexpected errors: %v", errors)
	}

	checkTokenTypes(t, tokens, []TokenType{TOKEN_NUMBER, TOKEN_NUMBER, TOKEN_NUMBER})
	if tokens[2].Lexeme != "-7" {
		t.Errorf("Expected negative literal '-7', got %q", tokens[2].Lexeme)
	}
}

func TestLexer_LineComment(t *testing.T) {
	tokens, errors := scanSource("model // trailing words\nMain")
	if len(errors) > 0 {
		t.Errorf("Unexpected errors: %v", errors)
	}

	checkTokenTypes(t, tokens, []TokenType{TOKEN_MODEL, TOKEN_IDENTIFIER})
}

func TestLexer_BlockComment(t *testing.T) {
	tokens, errors := scanSource("model /* spanning\ntwo lines */ Main")
	if len(errors) > 0 {
		t.Errorf("Unexpected errors: %v", errors)
	}

	checkTokenTypes(t, tokens, []TokenType{TOKEN_MODEL, TOKEN_IDENTIFIER})
}

func TestLexer_UnterminatedBlockComment(t *testing.T) {
	_, errors := scanSource("/* never closed")
	if len(errors) != 1 || errors[0].Message != "Unterminated block comment" {
		t.Errorf("Expected unterminated block comment error, got %v", errors)
	}
}

func TestLexer_UnexpectedCharacter(t *testing.T) {
	_, errors := scanSource("model $ Main")
	if len(errors) != 1 {
		t.Fatalf("Expected one error, got %v", errors)
	}
}

func TestLexer_LineTracking(t *testing.T) {
	tokens, errors := scanSource("model\nMain")
	if len(errors) > 0 {
		t.Errorf("Unexpected errors: %v", errors)
	}

	if tokens[0].Line != 1 {
		t.Errorf("Expected 'model' on line 1, got %d", tokens[0].Line)
	}
	if tokens[1].Line != 2 {
		t.Errorf("Expected 'Main' on line 2, got %d", tokens[1].Line)
	}
	if tokens[1].Column != 1 {
		t.Errorf("Expected 'Main' at column 1, got %d", tokens[1].Column)
	}
}
