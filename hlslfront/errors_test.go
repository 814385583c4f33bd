package hlslfront

import (
	"strings"
	"testing"
)

func TestSourceError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *SourceError
		expected string
	}{
		{
			name: "with position",
			err: &SourceError{
				Message: "unexpected token",
				Span:    Span{Start: Position{Line: 5, Column: 10}},
			},
			expected: "5:10: unexpected token",
		},
		{
			name: "without position",
			err: &SourceError{
				Message: "generic error",
				Span:    Span{},
			},
			expected: "generic error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			if got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestSourceError_FormatWithContext(t *testing.T) {
	source := `float4 main(float3 color : COLOR0) : SV_Target {
    float x = 1.0
    return float4(color, x);
}`

	err := &SourceError{
		Message: "expected ';' after statement",
		Span:    Span{Start: Position{Line: 2, Column: 18}},
		Source:  source,
	}

	formatted := err.FormatWithContext()

	if !strings.Contains(formatted, "expected ';' after statement") {
		t.Error("formatted error should contain message")
	}
	if !strings.Contains(formatted, "line 2:18") {
		t.Error("formatted error should contain line:column")
	}
	if !strings.Contains(formatted, "float x = 1.0") {
		t.Error("formatted error should contain source line")
	}
	if !strings.Contains(formatted, "^") {
		t.Error("formatted error should contain caret pointer")
	}
}

func TestSourceError_FormatWithContext_NoSource(t *testing.T) {
	err := &SourceError{
		Message: "error without source",
		Span:    Span{Start: Position{Line: 1, Column: 1}},
		Source:  "",
	}

	formatted := err.FormatWithContext()
	if formatted != "1:1: error without source" {
		t.Errorf("expected simple format without source, got: %q", formatted)
	}
}

func TestSourceErrors_Error(t *testing.T) {
	tests := []struct {
		name     string
		errors   SourceErrors
		expected string
	}{
		{
			name:     "empty",
			errors:   SourceErrors{},
			expected: "no errors",
		},
		{
			name: "single",
			errors: SourceErrors{
				{Message: "first error", Span: Span{Start: Position{Line: 1, Column: 1}}},
			},
			expected: "1:1: first error",
		},
		{
			name: "multiple",
			errors: SourceErrors{
				{Message: "unknown register class", Span: Span{Start: Position{Line: 1, Column: 1}}},
				{Message: "duplicate semantic", Span: Span{Start: Position{Line: 2, Column: 5}}},
				{Message: "unterminated string", Span: Span{Start: Position{Line: 3, Column: 10}}},
			},
			expected: "1:1: unknown register class (and 2 more errors)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.errors.Error()
			if got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestSourceErrors_AddAndHasErrors(t *testing.T) {
	var errs SourceErrors
	if errs.HasErrors() {
		t.Fatal("expected no errors initially")
	}
	errs.AddError("bad token", Span{Start: Position{Line: 1, Column: 1}}, "")
	if !errs.HasErrors() || errs.Len() != 1 {
		t.Fatalf("expected 1 error after AddError, got %d", errs.Len())
	}
}

func TestParseError_LatchesFirstError(t *testing.T) {
	source := `
float4 main( : SV_Target {
    return float4(0 0 0 1);
}`

	_, err := tryParseSource(t, source)
	if err == nil {
		t.Fatal("expected a parse error")
	}
	if !strings.Contains(err.Error(), "line") {
		t.Errorf("expected a positioned parse error, got %v", err)
	}
}

func TestLexer_UnterminatedStringLiteral(t *testing.T) {
	lexer := NewLexer(`"unterminated`)
	tokens, err := lexer.Tokenize()
	if err != nil {
		t.Fatalf("unexpected lexer error: %v", err)
	}
	if len(tokens) < 1 || tokens[0].Kind != TokenStringLiteral {
		t.Errorf("expected the scanner to still emit a string literal token, got %+v", tokens)
	}
}

func TestLexer_UnknownCharacterProducesErrorToken(t *testing.T) {
	lexer := NewLexer("float x = 1 ` 2;")
	tokens, err := lexer.Tokenize()
	if err != nil {
		t.Fatalf("unexpected lexer error: %v", err)
	}
	var sawErrorToken bool
	for _, tok := range tokens {
		if tok.Kind == TokenError {
			sawErrorToken = true
		}
	}
	if !sawErrorToken {
		t.Error("expected a TokenError for the unrecognized backtick character")
	}
}
