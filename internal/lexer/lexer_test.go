package lexer

import (
	"testing"

	"github.com/dekarrin/scriptlint/internal/diag"
	"github.com/dekarrin/scriptlint/internal/source"
	"github.com/dekarrin/scriptlint/internal/token"
	"github.com/stretchr/testify/assert"
)

func lexAll(t *testing.T, input string) ([]token.Token, []diag.Diag) {
	t.Helper()
	var diags []diag.Diag
	src := source.NewStringSource("<test>", input)
	lx := New(src, diag.NewBuilder(func(d diag.Diag) { diags = append(diags, d) }))

	var toks []token.Token
	for {
		tok := lx.Next()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	return toks, diags
}

func types(toks []token.Token) []token.Type {
	out := make([]token.Type, len(toks))
	for i, tok := range toks {
		out[i] = tok.Type
	}
	return out
}

func TestLex_TokenTypeSequence(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		expect []token.Type
	}{
		{name: "empty", input: "", expect: []token.Type{token.EOF}},
		{name: "integer", input: "1234", expect: []token.Type{token.Number, token.EOF}},
		{name: "identifier", input: "foo_bar", expect: []token.Type{token.Identifier, token.EOF}},
		{name: "keyword if", input: "if", expect: []token.Type{token.KwIf, token.EOF}},
		{name: "keyword notin", input: "notin", expect: []token.Type{token.KwNotIn, token.EOF}},
		{name: "simple literal true", input: "true", expect: []token.Type{token.KwTrue, token.EOF}},
		{name: "whitespace collapses to one token", input: "  \t\n  ", expect: []token.Type{token.Whitespace, token.EOF}},
		{name: "line comment", input: "// hi there\n", expect: []token.Type{token.LineComment, token.Whitespace, token.EOF}},
		{name: "block comment", input: "/* a /* nested */ b */x", expect: []token.Type{token.BlockComment, token.Identifier, token.EOF}},
		{name: "string double quote", input: `"abc"`, expect: []token.Type{token.String, token.EOF}},
		{name: "string single quote with escape", input: `'a\'b'`, expect: []token.Type{token.String, token.EOF}},
		{name: "punctuation", input: "(){}[],;:", expect: []token.Type{
			token.LParen, token.RParen, token.LBrace, token.RBrace,
			token.LBracket, token.RBracket, token.Comma, token.Semicolon, token.Colon,
			token.EOF,
		}},
		{name: "arrow vs minus-minus", input: "-> -- - -=", expect: []token.Type{
			token.Arrow, token.Whitespace, token.Dec, token.Whitespace,
			token.Minus, token.Whitespace, token.MinusAssign, token.EOF,
		}},
		{name: "shift assign", input: "<<=", expect: []token.Type{token.ShlAssign, token.EOF}},
		{name: "ellipsis", input: "...", expect: []token.Type{token.Ellipsis, token.EOF}},
		{name: "two dots is two dots then identifier", input: "..x", expect: []token.Type{
			token.Dot, token.Dot, token.Identifier, token.EOF,
		}},
		{name: "pipeline", input: "|>", expect: []token.Type{token.Pipeline, token.EOF}},
		{name: "hex literal", input: "0xFF_01", expect: []token.Type{token.Number, token.EOF}},
		{name: "binary literal", input: "0b1010", expect: []token.Type{token.Number, token.EOF}},
		{name: "float literal", input: "3.14e-2", expect: []token.Type{token.Number, token.EOF}},
		{name: "unknown char", input: "`", expect: []token.Type{token.Unknown, token.EOF}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			toks, _ := lexAll(t, tc.input)
			assert.Equal(t, tc.expect, types(toks))
		})
	}
}

func TestLex_SlicesCoverSourceWithNoGapsOrOverlaps(t *testing.T) {
	inputs := []string{
		"",
		"var x = 1 + 2 * foo(3, bar.baz[1:2]);\n// trailing\n",
		"/* unterminated",
		`"unterminated string`,
		"0xGG",
	}

	for _, input := range inputs {
		toks, _ := lexAll(t, input)
		pos := 0
		for _, tok := range toks {
			assert.Equal(t, pos, tok.Slice.Beg, "input %q", input)
			pos = tok.Slice.End
		}
		assert.Equal(t, len(input), pos, "input %q", input)
	}
}

func TestLex_UnterminatedBlockComment(t *testing.T) {
	assert := assert.New(t)
	toks, diags := lexAll(t, "/* never closes")

	assert.Equal([]token.Type{token.BlockComment, token.EOF}, types(toks))
	assert.Len(diags, 1)
	assert.Equal(diag.LexUnterminatedBlockComment, diags[0].ID)
}

func TestLex_UnterminatedStringLiteral(t *testing.T) {
	assert := assert.New(t)
	toks, diags := lexAll(t, `"never closes`)

	assert.Equal([]token.Type{token.String, token.EOF}, types(toks))
	assert.Len(diags, 1)
	assert.Equal(diag.LexUnterminatedStringLiteral, diags[0].ID)
}

func TestLex_InvalidNumberLiteral(t *testing.T) {
	assert := assert.New(t)
	_, diags := lexAll(t, "0xZZ")
	assert.Len(diags, 1)
	assert.Equal(diag.LexInvalidNumberLiteral, diags[0].ID)
}

func TestLex_BareCrEmitsDiagnostic(t *testing.T) {
	assert := assert.New(t)
	_, diags := lexAll(t, "a\rb")
	assert.Len(diags, 1)
	assert.Equal(diag.LexCrMustBeFollowedByLf, diags[0].ID)
}

func TestLex_CrLfNoDiagnostic(t *testing.T) {
	_, diags := lexAll(t, "a\r\nb")
	assert.Empty(t, diags)
}

func TestLex_EOFTokenIsZeroWidth(t *testing.T) {
	assert := assert.New(t)
	toks, _ := lexAll(t, "x")
	last := toks[len(toks)-1]
	assert.Equal(token.EOF, last.Type)
	assert.Equal(last.Range.Beg, last.Range.End)
	assert.Equal(last.Slice.Beg, last.Slice.End)
}

func TestLex_AlwaysMakesProgress(t *testing.T) {
	src := source.NewStringSource("<test>", "```")
	lx := New(src, diag.NewBuilder(nil))

	prevPos := -1
	for i := 0; i < 10; i++ {
		tok := lx.Next()
		if tok.Type == token.EOF {
			break
		}
		assert.Greater(t, tok.Slice.End, prevPos)
		prevPos = tok.Slice.End
	}
}
