package parser

import "github.com/dekarrin/scriptlint/internal/token"

// fifo is a small amortized-O(1) lookahead buffer. The parser never needs
// more than three tokens of lookahead for its documented disambiguations, but
// the buffer itself places no cap on that.
type fifo struct {
	buf []token.Token
}

func (f *fifo) pushBack(t token.Token) {
	f.buf = append(f.buf, t)
}

func (f *fifo) popFront() token.Token {
	t := f.buf[0]
	f.buf = f.buf[1:]
	return t
}

func (f *fifo) len() int { return len(f.buf) }

func (f *fifo) at(i int) token.Token { return f.buf[i] }
