// Package source provides random-access reading of a linter input buffer,
// including conversion between byte offsets and line/column positions and
// line retrieval for diagnostic context.
package source

import (
	"fmt"
	"os"

	"github.com/dekarrin/scriptlint/internal/span"
)

// eof is returned by Cur/Peek once the cursor has passed the end of the
// buffer. It is the NUL code unit, as specified.
const eof = byte(0)

// Source is a random-access accessor over an in-memory input buffer. Full
// Unicode handling is not attempted; the buffer is addressed byte-by-byte,
// matching the documented non-goal in the language this linter targets.
type Source interface {
	// Name identifies the source for diagnostic headers, e.g. a file path.
	Name() string

	// Cur returns the byte at the current cursor position, or eof.
	Cur() byte

	// Peek returns the byte one past the current cursor position, or eof.
	Peek() byte

	// Advance moves the cursor forward by one byte. Past the end of the
	// buffer this is a no-op.
	Advance()

	// Position returns the byte offset of Cur().
	Position() int

	// Pos returns the 1-based line/column of Cur().
	Pos() span.Pos

	// Len returns the total number of bytes in the buffer.
	Len() int

	// GetSlice returns the substring covered by sl.
	GetSlice(sl span.Slice) string

	// GetLine returns the 1-based line's text, excluding its terminator.
	// Returns "" if line is out of range.
	GetLine(line int) string

	// GetRange returns the text between r.Beg and r.End. It is an error if
	// the range exceeds the source.
	GetRange(r span.Range) (string, error)
}

// buffer is the shared implementation behind the two concrete Source kinds.
// Both kinds agree on line/column accounting because they share it.
type buffer struct {
	name string
	data []byte
	pos  int // byte offset of the cursor

	// lineOffsets[i] is the byte offset at which line i+1 begins.
	// Precomputed once so GetLine/GetRange are true random access.
	lineOffsets []int

	line int
	col  int
}

func newBuffer(name string, data []byte) *buffer {
	b := &buffer{
		name: name,
		data: data,
		line: 1,
		col:  1,
	}
	b.lineOffsets = []int{0}
	for i := 0; i < len(data); i++ {
		switch data[i] {
		case '\n':
			b.lineOffsets = append(b.lineOffsets, i+1)
		case '\r':
			if i+1 >= len(data) || data[i+1] != '\n' {
				b.lineOffsets = append(b.lineOffsets, i+1)
			}
		}
	}
	return b
}

func (b *buffer) Name() string { return b.name }

func (b *buffer) Cur() byte {
	if b.pos >= len(b.data) {
		return eof
	}
	return b.data[b.pos]
}

func (b *buffer) Peek() byte {
	if b.pos+1 >= len(b.data) {
		return eof
	}
	return b.data[b.pos+1]
}

func (b *buffer) Advance() {
	if b.pos >= len(b.data) {
		return
	}
	c := b.data[b.pos]
	b.pos++

	switch c {
	case '\n':
		b.line++
		b.col = 1
	case '\r':
		if b.pos < len(b.data) && b.data[b.pos] == '\n' {
			// consumed as part of the same CRLF terminator; the '\n'
			// branch above will do the line bump when it is itself
			// advanced over.
			b.col++
		} else {
			b.line++
			b.col = 1
		}
	default:
		b.col++
	}
}

func (b *buffer) Position() int { return b.pos }

func (b *buffer) Pos() span.Pos { return span.Pos{Line: b.line, Col: b.col} }

func (b *buffer) Len() int { return len(b.data) }

func (b *buffer) GetSlice(sl span.Slice) string {
	beg, end := sl.Beg, sl.End
	if beg < 0 {
		beg = 0
	}
	if end > len(b.data) {
		end = len(b.data)
	}
	if end < beg {
		return ""
	}
	return string(b.data[beg:end])
}

func (b *buffer) GetLine(line int) string {
	if line < 1 || line > len(b.lineOffsets) {
		return ""
	}
	beg := b.lineOffsets[line-1]
	var end int
	if line < len(b.lineOffsets) {
		end = b.lineOffsets[line]
	} else {
		end = len(b.data)
	}
	// strip the line's terminator from the end.
	for end > beg && (b.data[end-1] == '\n' || b.data[end-1] == '\r') {
		end--
	}
	return string(b.data[beg:end])
}

func (b *buffer) offsetOf(p span.Pos) (int, bool) {
	if p.Line < 1 || p.Line > len(b.lineOffsets) {
		return 0, false
	}
	lineBeg := b.lineOffsets[p.Line-1]
	off := lineBeg + (p.Col - 1)
	if off < 0 || off > len(b.data) {
		return 0, false
	}
	return off, true
}

func (b *buffer) GetRange(r span.Range) (string, error) {
	begOff, ok := b.offsetOf(r.Beg)
	if !ok {
		return "", fmt.Errorf("source %s: range start %s exceeds source", b.name, r.Beg)
	}
	endOff, ok := b.offsetOf(r.End)
	if !ok {
		return "", fmt.Errorf("source %s: range end %s exceeds source", b.name, r.End)
	}
	if endOff < begOff {
		return "", fmt.Errorf("source %s: range %s is inverted", b.name, r)
	}
	return string(b.data[begOff:endOff]), nil
}

// FileSource is a Source backed by a buffer read in full from disk.
type FileSource struct {
	*buffer
}

// NewFileSource reads path fully into memory and returns a Source over it.
func NewFileSource(path string) (*FileSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}
	return &FileSource{buffer: newBuffer(path, data)}, nil
}

// StringSource is a Source backed by a string supplied directly by the
// caller, e.g. a prelude literal or a REPL line.
type StringSource struct {
	*buffer
}

// NewStringSource wraps text as a Source identified by name (used only in
// diagnostic headers).
func NewStringSource(name, text string) *StringSource {
	return &StringSource{buffer: newBuffer(name, []byte(text))}
}
