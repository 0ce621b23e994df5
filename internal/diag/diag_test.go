package diag

import (
	"testing"

	"github.com/dekarrin/scriptlint/internal/span"
	"github.com/dekarrin/scriptlint/internal/token"
	"github.com/stretchr/testify/assert"
)

func TestEmit_Basic(t *testing.T) {
	assert := assert.New(t)

	var got []Diag
	b := NewBuilder(func(d Diag) { got = append(got, d) })

	b.Emit(span.Pos{Line: 1, Col: 1}, span.Range{}, SemaUndeclaredId, Str("x"))

	assert.Len(got, 1)
	assert.Equal("undeclared identifier 'x'", got[0].Message)
	assert.Equal(Error, got[0].Severity)
	assert.Equal(SemaUndeclaredId, got[0].ID)
}

func TestEmit_TokenAndInt(t *testing.T) {
	assert := assert.New(t)

	var got Diag
	b := NewBuilder(func(d Diag) { got = d })

	b.Emit(span.NoPos, span.NoRange, ParseExpectedTokenGotOther, TokenArg(token.Semicolon), TokenArg(token.RBrace))
	assert.Equal("expected ';', got '}'", got.Message)

	b.Emit(span.NoPos, span.NoRange, SemaAlreadyDeclared, Str("x"), Int(3), Int(7))
	assert.Equal("'x' already declared at 3:7", got.Message)
}

func TestEmit_UnknownCodepointEscaped(t *testing.T) {
	assert := assert.New(t)
	var got Diag
	b := NewBuilder(func(d Diag) { got = d })

	b.Emit(span.NoPos, span.NoRange, LexUnexpectedCharacter, Codepoint(0x01))
	assert.Equal("unexpected character '<0x01>'", got.Message)

	b.Emit(span.NoPos, span.NoRange, LexUnexpectedCharacter, Codepoint('#'))
	assert.Equal("unexpected character '#'", got.Message)
}

func TestEmit_ArgMismatchPanics(t *testing.T) {
	b := NewBuilder(nil)

	assert.Panics(t, func() {
		b.Emit(span.NoPos, span.NoRange, SemaUndeclaredId)
	})
	assert.Panics(t, func() {
		b.Emit(span.NoPos, span.NoRange, SemaUndeclaredId, Int(1))
	})
	assert.Panics(t, func() {
		b.Emit(span.NoPos, span.NoRange, SemaUndeclaredId, Str("x"), Str("extra"))
	})
}

func TestEmit_SeverityOverride(t *testing.T) {
	assert := assert.New(t)
	var got Diag
	b := NewBuilder(func(d Diag) { got = d })

	b.EmitSeverity(Warning, span.NoPos, span.NoRange, ParseUnnecessaryPointyInFun)
	assert.Equal(Warning, got.Severity)
}
