package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/scriptlint/internal/diag"
	"github.com/dekarrin/scriptlint/internal/source"
	"github.com/dekarrin/scriptlint/internal/span"
)

func pos(line, col int) span.Pos {
	return span.Pos{Line: line, Col: col}
}

func TestTool_CaretAndRange(t *testing.T) {
	var sb strings.Builder
	sink := Tool(&sb)

	sink(diag.Diag{
		Caret:    pos(1, 2),
		Range:    span.Range{Beg: pos(1, 2), End: pos(1, 5)},
		Severity: diag.Error,
		Message:  "something is wrong",
	})

	assert.Equal(t, "1:2: 1:2-1:5: error: something is wrong\n", sb.String())
}

func TestTool_CaretOnly(t *testing.T) {
	var sb strings.Builder
	sink := Tool(&sb)

	sink(diag.Diag{
		Caret:    pos(3, 7),
		Severity: diag.Warning,
		Message:  "hm",
	})

	assert.Equal(t, "3:7: warning: hm\n", sb.String())
}

func TestTool_NeitherCaretNorRange(t *testing.T) {
	var sb strings.Builder
	sink := Tool(&sb)

	sink(diag.Diag{Severity: diag.Info, Message: "fyi"})

	assert.Equal(t, "info: fyi\n", sb.String())
}

func TestDropInfo(t *testing.T) {
	var got []diag.Diag
	sink := DropInfo(func(d diag.Diag) { got = append(got, d) })

	sink(diag.Diag{Severity: diag.Info, Message: "drop me"})
	sink(diag.Diag{Severity: diag.Error, Message: "keep me"})
	sink(diag.Diag{Severity: diag.Warning, Message: "keep me too"})

	assert.Len(t, got, 2)
	assert.Equal(t, diag.Error, got[0].Severity)
}

func TestFancy_SingleLineRangeWithCaret(t *testing.T) {
	src := source.NewStringSource("<test>", "x = 1;\n")
	var sb strings.Builder
	sink := Fancy(&sb, src, false)

	sink(diag.Diag{
		Caret:    pos(1, 1),
		Range:    span.Range{Beg: pos(1, 1), End: pos(1, 2)},
		Severity: diag.Error,
		Message:  "boom",
	})

	expect := "[error] 1:1 (1:1 to 1:2): boom\n" +
		"[error] >>> x = 1;\n" +
		"[error] >>> ^\n" +
		"\n"
	assert.Equal(t, expect, sb.String())
}

func TestFancy_RangeOnlyUsesTildes(t *testing.T) {
	src := source.NewStringSource("<test>", "var abc = 1;\n")
	var sb strings.Builder
	sink := Fancy(&sb, src, false)

	sink(diag.Diag{
		Range:    span.Range{Beg: pos(1, 5), End: pos(1, 8)},
		Severity: diag.Warning,
		Message:  "look here",
	})

	expect := "[warning] 1:5 to 1:8: look here\n" +
		"[warning] >>> var abc = 1;\n" +
		"[warning] >>> " + "    ~~~\n" +
		"\n"
	assert.Equal(t, expect, sb.String())
}

func TestFancy_MultiLineRangeShowsFirstAndLastOnly(t *testing.T) {
	src := source.NewStringSource("<test>", "aaa\nbbb\nccc\nddd\n")
	var sb strings.Builder
	sink := Fancy(&sb, src, false)

	sink(diag.Diag{
		Range:    span.Range{Beg: pos(1, 1), End: pos(4, 2)},
		Severity: diag.Error,
		Message:  "spans a lot",
	})

	out := sb.String()
	assert.Contains(t, out, "starting at line 1 with:")
	assert.Contains(t, out, "ending at line 4 with:")
	assert.NotContains(t, out, "bbb")
	assert.NotContains(t, out, "ccc")
	assert.Contains(t, out, ">>> aaa")
	assert.Contains(t, out, ">>> ddd")
}

func TestFancy_ColorWrapsSeverityAndMarker(t *testing.T) {
	src := source.NewStringSource("<test>", "x\n")
	var sb strings.Builder
	sink := Fancy(&sb, src, true)

	sink(diag.Diag{
		Caret:    pos(1, 1),
		Severity: diag.Error,
		Message:  "boom",
	})

	out := sb.String()
	assert.Contains(t, out, sgrError+"error"+sgrReset)
	assert.Contains(t, out, sgrError+"^"+sgrReset)
}

func TestBuildMarker(t *testing.T) {
	testCases := []struct {
		name     string
		line     string
		caret    span.Pos
		begCol   int
		endCol   int
		expect   string
		caretRow int
	}{
		{
			name:   "caret at start",
			line:   "x = 1;",
			caret:  pos(1, 1),
			begCol: 1, endCol: 2,
			expect: "^",
		},
		{
			name:   "tilde run without caret",
			line:   "var abc = 1;",
			begCol: 5, endCol: 8,
			expect: "    ~~~",
		},
		{
			name:   "caret inside tilde run",
			line:   "abcdef",
			caret:  pos(1, 3),
			begCol: 2, endCol: 5,
			expect: " ~^~",
		},
		{
			name:   "caret one past end of line",
			line:   "ab",
			caret:  pos(1, 3),
			begCol: 0, endCol: 0,
			expect: "  ^",
		},
		{
			name:   "tab preserved for alignment",
			line:   "\tx;",
			caret:  pos(1, 2),
			begCol: 2, endCol: 3,
			expect: "\t^",
		},
		{
			name:   "wide rune doubles the cell",
			line:   "日x",
			caret:  pos(1, 4),
			begCol: 4, endCol: 5,
			expect: "  ^",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := buildMarker(tc.line, 1, tc.caret, tc.begCol, tc.endCol)
			assert.Equal(t, tc.expect, got)
		})
	}
}

func TestReplHelpTable_ListsEveryCommand(t *testing.T) {
	out := ReplHelpTable()
	assert.Contains(t, out, ":help")
	assert.Contains(t, out, ":quit")
	assert.Contains(t, out, ":reset")
	assert.Contains(t, out, ":load")
}
