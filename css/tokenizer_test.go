package css

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func collectTokens(input string) []Token {
	tok := New(input)
	var out []Token
	for {
		tt := tok.Next()
		out = append(out, tt)
		if tt.Kind == EOF {
			break
		}
	}
	return out
}

func TestStringToken(t *testing.T) {
	tokens := collectTokens(`'hello world'`)
	require.Len(t, tokens, 2)
	require.Equal(t, String, tokens[0].Kind)
	require.Equal(t, "hello world", tokens[0].Value)
	require.Equal(t, EOF, tokens[1].Kind)
}

func TestBadStringOnRawNewline(t *testing.T) {
	tokens := collectTokens("\"bad\nstring\"")
	require.NotEmpty(t, tokens)
	require.Equal(t, BadString, tokens[0].Kind)
}

func TestHashTokenWithIdentFlag(t *testing.T) {
	tokens := collectTokens(`#id { color: red }`)
	require.NotEmpty(t, tokens)
	require.Equal(t, Hash, tokens[0].Kind)
	require.Equal(t, "id", tokens[0].Value)
	require.Equal(t, HashID, tokens[0].HashFlag)

	kinds := kindsOf(tokens)
	require.Equal(t, []TokenKind{
		Hash, Whitespace, LeftBrace, Whitespace, Ident, Colon, Whitespace,
		Ident, Whitespace, RightBrace, EOF,
	}, kinds)
}

func TestUnrestrictedHash(t *testing.T) {
	tokens := collectTokens(`#123`)
	require.Equal(t, Hash, tokens[0].Kind)
	require.Equal(t, HashUnrestricted, tokens[0].HashFlag)
}

func TestURLToken(t *testing.T) {
	tokens := collectTokens(`#id { background: url(img.png); }`)
	require.Len(t, tokens, 12)
	require.Equal(t, URL, tokens[7].Kind)
	require.Equal(t, "img.png", tokens[7].Value)
}

func TestURLFunctionWithQuotedArgIsFunctionToken(t *testing.T) {
	tokens := collectTokens(`url("img.png")`)
	require.Equal(t, Function, tokens[0].Kind)
	require.Equal(t, "url", tokens[0].Value)
}

func TestBadURLRecovery(t *testing.T) {
	tokens := collectTokens(`url(bad'url) ident`)
	require.Equal(t, BadURL, tokens[0].Kind)
	require.Equal(t, Whitespace, tokens[1].Kind)
	require.Equal(t, Ident, tokens[2].Kind)
	require.Equal(t, "ident", tokens[2].Value)
}

func TestCommentsAreTransparent(t *testing.T) {
	// Comments are only stripped between tokens, not mid-token, so they
	// act as a token boundary rather than disappearing entirely.
	tokens := collectTokens(`a/* comment */b`)
	kinds := kindsOf(tokens)
	require.Equal(t, []TokenKind{Ident, Ident, EOF}, kinds)
	require.Equal(t, "a", tokens[0].Value)
	require.Equal(t, "b", tokens[1].Value)
}

func TestUnterminatedCommentConsumesToEOF(t *testing.T) {
	tokens := collectTokens(`a/* unterminated`)
	kinds := kindsOf(tokens)
	require.Equal(t, []TokenKind{Ident, EOF}, kinds)
}

func TestNumericTokens(t *testing.T) {
	tests := []struct {
		input string
		kind  TokenKind
		num   float64
		unit  string
	}{
		{"42", Number, 42, ""},
		{"-42", Number, -42, ""},
		{"3.14", Number, 3.14, ""},
		{"10%", Percentage, 10, ""},
		{"10px", Dimension, 10, "px"},
		{"1e3", Number, 1000, ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens := collectTokens(tt.input)
			require.Equal(t, tt.kind, tokens[0].Kind)
			require.InDelta(t, tt.num, tokens[0].Number, 0.0001)
			require.Equal(t, tt.unit, tokens[0].Unit)
		})
	}
}

func TestCDOCDC(t *testing.T) {
	tokens := collectTokens(`<!-- -->`)
	kinds := kindsOf(tokens)
	require.Equal(t, []TokenKind{CDO, Whitespace, CDC, EOF}, kinds)
}

func TestAtKeyword(t *testing.T) {
	tokens := collectTokens(`@media`)
	require.Equal(t, AtKeyword, tokens[0].Kind)
	require.Equal(t, "media", tokens[0].Value)
}

func TestEscapedIdent(t *testing.T) {
	tokens := collectTokens(`\61 bc`)
	require.Equal(t, Ident, tokens[0].Kind)
	require.Equal(t, "abc", tokens[0].Value)
}

func TestDelimFallback(t *testing.T) {
	tokens := collectTokens(`^`)
	require.Equal(t, Delim, tokens[0].Kind)
	require.Equal(t, '^', tokens[0].Delim)
}

func kindsOf(tokens []Token) []TokenKind {
	kinds := make([]TokenKind, len(tokens))
	for i, t := range tokens {
		kinds[i] = t.Kind
	}
	return kinds
}
