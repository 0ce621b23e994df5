package source

import (
	"testing"

	"github.com/dekarrin/scriptlint/internal/span"
	"github.com/stretchr/testify/assert"
)

func TestStringSource_CurPeekAdvance(t *testing.T) {
	assert := assert.New(t)

	src := NewStringSource("<test>", "ab")
	assert.Equal(byte('a'), src.Cur())
	assert.Equal(byte('b'), src.Peek())

	src.Advance()
	assert.Equal(byte('b'), src.Cur())
	assert.Equal(eof, src.Peek())

	src.Advance()
	assert.Equal(eof, src.Cur())

	// advancing past EOF is a no-op
	src.Advance()
	assert.Equal(eof, src.Cur())
	assert.Equal(2, src.Position())
}

func TestStringSource_LineTracking(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantPos  []span.Pos
		wantLine []string
	}{
		{
			name:     "lf",
			input:    "ab\ncd",
			wantPos:  []span.Pos{{Line: 1, Col: 1}, {Line: 1, Col: 2}, {Line: 1, Col: 3}, {Line: 2, Col: 1}, {Line: 2, Col: 2}},
			wantLine: []string{"ab", "cd"},
		},
		{
			name:     "crlf",
			input:    "ab\r\ncd",
			wantPos:  []span.Pos{{Line: 1, Col: 1}, {Line: 1, Col: 2}, {Line: 1, Col: 3}, {Line: 1, Col: 4}, {Line: 2, Col: 1}, {Line: 2, Col: 2}},
			wantLine: []string{"ab", "cd"},
		},
		{
			name:     "bare-cr",
			input:    "ab\rcd",
			wantPos:  []span.Pos{{Line: 1, Col: 1}, {Line: 1, Col: 2}, {Line: 1, Col: 3}, {Line: 2, Col: 1}, {Line: 2, Col: 2}},
			wantLine: []string{"ab", "cd"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			src := NewStringSource("<test>", tc.input)

			var gotPos []span.Pos
			for i := 0; i < len(tc.input); i++ {
				gotPos = append(gotPos, src.Pos())
				src.Advance()
			}
			assert.Equal(tc.wantPos, gotPos)

			for i, want := range tc.wantLine {
				assert.Equal(want, src.GetLine(i+1))
			}
		})
	}
}

func TestGetSliceAndRange(t *testing.T) {
	assert := assert.New(t)
	src := NewStringSource("<test>", "hello\nworld")

	assert.Equal("hello", src.GetSlice(span.Slice{Beg: 0, End: 5}))
	assert.Equal("world", src.GetSlice(span.Slice{Beg: 6, End: 11}))

	text, err := src.GetRange(span.Range{Beg: span.Pos{Line: 1, Col: 1}, End: span.Pos{Line: 1, Col: 6}})
	assert.NoError(err)
	assert.Equal("hello", text)

	text, err = src.GetRange(span.Range{Beg: span.Pos{Line: 2, Col: 1}, End: span.Pos{Line: 2, Col: 6}})
	assert.NoError(err)
	assert.Equal("world", text)

	_, err = src.GetRange(span.Range{Beg: span.Pos{Line: 5, Col: 1}, End: span.Pos{Line: 5, Col: 2}})
	assert.Error(err)
}

func TestFileSource_MissingFile(t *testing.T) {
	_, err := NewFileSource("/nonexistent/path/to/nowhere.lang")
	assert.Error(t, err)
}
