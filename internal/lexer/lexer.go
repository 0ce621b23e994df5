// Package lexer turns a source buffer into a stream of classified tokens.
// It is a single-pass scanner: every call to Next returns exactly one token
// and advances the underlying source. It never panics on malformed input and
// always makes progress.
package lexer

import (
	"github.com/dekarrin/scriptlint/internal/diag"
	"github.com/dekarrin/scriptlint/internal/source"
	"github.com/dekarrin/scriptlint/internal/span"
	"github.com/dekarrin/scriptlint/internal/token"
)

// Lexer scans one Source into tokens on demand.
type Lexer struct {
	src   source.Source
	diags *diag.Builder
}

// New returns a Lexer reading from src, reporting lex-time diagnostics to
// diags.
func New(src source.Source, diags *diag.Builder) *Lexer {
	return &Lexer{src: src, diags: diags}
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\r' || c == '\n' }

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentCont(c byte) bool { return isIdentStart(c) || isDigit(c) }

// Next scans and returns the next token, advancing the source past it.
func (l *Lexer) Next() token.Token {
	if l.src.Position() >= l.src.Len() {
		p := l.src.Pos()
		return token.Token{
			Type:  token.EOF,
			Range: span.Range{Beg: p, End: p},
			Slice: span.Slice{Beg: l.src.Position(), End: l.src.Position()},
		}
	}

	c := l.src.Cur()

	switch {
	case isSpace(c):
		return l.scanWhitespace()
	case c == '/' && l.src.Peek() == '/':
		return l.scanLineComment()
	case c == '/' && l.src.Peek() == '*':
		return l.scanBlockComment()
	case isIdentStart(c):
		return l.scanIdentifier()
	case c == '"' || c == '\'':
		return l.scanString(c)
	case isDigit(c):
		return l.scanNumber()
	}

	if t, ok := punctuation[c]; ok {
		return l.single(t)
	}

	if _, ok := token.OperatorLookupFirst(c); ok {
		if t, n, ok := l.scanOperator(); ok {
			return l.makeToken(t, n)
		}
	}

	// Unrecognized byte.
	l.diags.Emit(l.src.Pos(), span.AtCols(l.src.Pos(), 1), diag.LexUnexpectedCharacter, diag.Codepoint(c))
	return l.single(token.Unknown)
}

var punctuation = map[byte]token.Type{
	':': token.Colon,
	';': token.Semicolon,
	',': token.Comma,
	'(': token.LParen,
	')': token.RParen,
	'{': token.LBrace,
	'}': token.RBrace,
	'[': token.LBracket,
	']': token.RBracket,
}

// makeToken builds a token of type t spanning the n bytes starting at the
// source's current position, then advances past them.
func (l *Lexer) makeToken(t token.Type, n int) token.Token {
	begOff := l.src.Position()
	begPos := l.src.Pos()
	for i := 0; i < n; i++ {
		l.src.Advance()
	}
	endPos := l.src.Pos()
	return token.Token{
		Type:  t,
		Range: span.Range{Beg: begPos, End: endPos},
		Slice: span.Slice{Beg: begOff, End: l.src.Position()},
	}
}

// single consumes exactly one byte as token t.
func (l *Lexer) single(t token.Type) token.Token {
	return l.makeToken(t, 1)
}

func (l *Lexer) scanWhitespace() token.Token {
	begOff := l.src.Position()
	begPos := l.src.Pos()

	for l.src.Position() < l.src.Len() && isSpace(l.src.Cur()) {
		c := l.src.Cur()
		if c == '\r' && l.src.Peek() != '\n' {
			l.diags.Emit(l.src.Pos(), span.AtCols(l.src.Pos(), 1), diag.LexCrMustBeFollowedByLf)
		}
		l.src.Advance()
	}

	endPos := l.src.Pos()
	return token.Token{
		Type:  token.Whitespace,
		Range: span.Range{Beg: begPos, End: endPos},
		Slice: span.Slice{Beg: begOff, End: l.src.Position()},
	}
}

func (l *Lexer) scanLineComment() token.Token {
	begOff := l.src.Position()
	begPos := l.src.Pos()

	for l.src.Position() < l.src.Len() && l.src.Cur() != '\n' && l.src.Cur() != '\r' {
		l.src.Advance()
	}

	endPos := l.src.Pos()
	return token.Token{
		Type:  token.LineComment,
		Range: span.Range{Beg: begPos, End: endPos},
		Slice: span.Slice{Beg: begOff, End: l.src.Position()},
	}
}

func (l *Lexer) scanBlockComment() token.Token {
	begOff := l.src.Position()
	begPos := l.src.Pos()

	l.src.Advance() // '/'
	l.src.Advance() // '*'
	depth := 1

	for depth > 0 {
		if l.src.Position() >= l.src.Len() {
			l.diags.Emit(begPos, span.Range{Beg: begPos, End: l.src.Pos()}, diag.LexUnterminatedBlockComment)
			break
		}
		if l.src.Cur() == '/' && l.src.Peek() == '*' {
			l.src.Advance()
			l.src.Advance()
			depth++
			continue
		}
		if l.src.Cur() == '*' && l.src.Peek() == '/' {
			l.src.Advance()
			l.src.Advance()
			depth--
			continue
		}
		l.src.Advance()
	}

	endPos := l.src.Pos()
	return token.Token{
		Type:  token.BlockComment,
		Range: span.Range{Beg: begPos, End: endPos},
		Slice: span.Slice{Beg: begOff, End: l.src.Position()},
	}
}

func (l *Lexer) scanIdentifier() token.Token {
	begOff := l.src.Position()
	begPos := l.src.Pos()

	for l.src.Position() < l.src.Len() && isIdentCont(l.src.Cur()) {
		l.src.Advance()
	}

	endPos := l.src.Pos()
	slice := span.Slice{Beg: begOff, End: l.src.Position()}
	text := l.src.GetSlice(slice)

	return token.Token{
		Type:  token.ClassifyIdentifier(text),
		Range: span.Range{Beg: begPos, End: endPos},
		Slice: slice,
	}
}

func (l *Lexer) scanString(quote byte) token.Token {
	begOff := l.src.Position()
	begPos := l.src.Pos()

	l.src.Advance() // opening quote

	closed := false
	for l.src.Position() < l.src.Len() {
		c := l.src.Cur()
		if c == '\\' {
			l.src.Advance() // the backslash
			if l.src.Position() < l.src.Len() {
				l.src.Advance() // the escaped character, undecoded
			}
			continue
		}
		if c == quote {
			l.src.Advance()
			closed = true
			break
		}
		l.src.Advance()
	}

	endPos := l.src.Pos()
	rng := span.Range{Beg: begPos, End: endPos}
	if !closed {
		l.diags.Emit(begPos, rng, diag.LexUnterminatedStringLiteral)
	}

	return token.Token{
		Type:  token.String,
		Range: rng,
		Slice: span.Slice{Beg: begOff, End: l.src.Position()},
	}
}

func (l *Lexer) scanNumber() token.Token {
	begOff := l.src.Position()
	begPos := l.src.Pos()

	valid := true

	isBase := false
	if l.src.Cur() == '0' && (l.src.Peek() == 'b' || l.src.Peek() == 'B') {
		isBase = true
		l.src.Advance()
		l.src.Advance()
		n := l.scanDigitRun(func(c byte) bool { return c == '0' || c == '1' })
		if n == 0 {
			valid = false
		}
	} else if l.src.Cur() == '0' && (l.src.Peek() == 'x' || l.src.Peek() == 'X') {
		isBase = true
		l.src.Advance()
		l.src.Advance()
		n := l.scanDigitRun(isHexDigit)
		if n == 0 {
			valid = false
		}
	} else {
		n := l.scanDigitRun(isDigit)
		if n == 0 {
			valid = false
		}

		if !isBase && l.src.Position() < l.src.Len() && l.src.Cur() == '.' && isDigit(l.src.Peek()) {
			l.src.Advance() // '.'
			if n := l.scanDigitRun(isDigit); n == 0 {
				valid = false
			}
		}

		if !isBase && l.src.Position() < l.src.Len() && (l.src.Cur() == 'e' || l.src.Cur() == 'E') {
			l.src.Advance()
			if l.src.Position() < l.src.Len() && (l.src.Cur() == '+' || l.src.Cur() == '-') {
				l.src.Advance()
			}
			if n := l.scanDigitRun(isDigit); n == 0 {
				valid = false
			}
		}
	}

	endPos := l.src.Pos()
	rng := span.Range{Beg: begPos, End: endPos}
	if !valid {
		l.diags.Emit(begPos, rng, diag.LexInvalidNumberLiteral)
	}

	return token.Token{
		Type:  token.Number,
		Range: rng,
		Slice: span.Slice{Beg: begOff, End: l.src.Position()},
	}
}

// scanDigitRun consumes a run of digits matched by accept, with underscores
// permitted (and ignored) between digits. It returns the number of actual
// digit characters consumed (not counting underscores).
func (l *Lexer) scanDigitRun(accept func(byte) bool) int {
	count := 0
	for l.src.Position() < l.src.Len() {
		c := l.src.Cur()
		if accept(c) {
			count++
			l.src.Advance()
			continue
		}
		if c == '_' && count > 0 && l.src.Position()+1 < l.src.Len() && accept(l.src.Peek()) {
			l.src.Advance()
			continue
		}
		break
	}
	return count
}

// scanOperator finds the longest operator spelling starting at the source's
// current position by walking token's first/continue trie over a bounded
// lookahead window, without mutating the source. It returns the matched
// Type and its length in bytes. Using random-access lookahead (rather than
// blindly advancing one byte per trie step) lets the walk pass through
// non-terminal waypoints like ".." without overconsuming input when the
// third '.' of an ellipsis never arrives.
func (l *Lexer) scanOperator() (token.Type, int, bool) {
	beg := l.src.Position()
	end := beg + token.MaxOperatorLen
	if end > l.src.Len() {
		end = l.src.Len()
	}
	window := l.src.GetSlice(span.Slice{Beg: beg, End: end})

	kind, ok := token.OperatorLookupFirst(window[0])
	if !ok {
		return token.Invalid, 0, false
	}

	bestLen := 0
	if token.IsOperatorTerminal(kind) {
		bestLen = 1
	}

	for i := 1; i < len(window); i++ {
		next, ok := token.OperatorLookupContinue(kind, window[i])
		if !ok {
			break
		}
		kind = next
		if token.IsOperatorTerminal(kind) {
			bestLen = i + 1
		}
	}

	if bestLen == 0 {
		return token.Invalid, 0, false
	}

	// Re-walk to find the Type at exactly bestLen, since kind above may have
	// advanced past the best terminal match while probing for a longer one.
	finalKind, _ := token.OperatorLookupFirst(window[0])
	for i := 1; i < bestLen; i++ {
		finalKind, _ = token.OperatorLookupContinue(finalKind, window[i])
	}

	return finalKind, bestLen, true
}
