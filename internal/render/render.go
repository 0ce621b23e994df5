// Package render provides the two reference diagnostic renderers: a stable,
// machine-parsable "tool" format and a colorized "fancy" format that shows
// the offending source line(s) with a caret/tilde marker underneath. Both are
// exposed as diag.Sink factories so the core pipeline stays parameterized by
// an arbitrary sink.
package render

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/dekarrin/rosed"
	"golang.org/x/text/width"

	"github.com/dekarrin/scriptlint/internal/diag"
	"github.com/dekarrin/scriptlint/internal/source"
	"github.com/dekarrin/scriptlint/internal/span"
)

// Tool returns a sink that writes one line per diagnostic to w:
//
//	[line:column: ] [l:c-l:c: ] severity: message
//
// The caret and range segments are each present only when valid. The format
// is stable across releases.
func Tool(w io.Writer) diag.Sink {
	return func(d diag.Diag) {
		if d.Caret.Valid() {
			fmt.Fprintf(w, "%d:%d: ", d.Caret.Line, d.Caret.Col)
		}
		if d.Range.Valid() {
			fmt.Fprintf(w, "%d:%d-%d:%d: ", d.Range.Beg.Line, d.Range.Beg.Col, d.Range.End.Line, d.Range.End.Col)
		}
		fmt.Fprintf(w, "%s: %s\n", d.Severity, d.Message)
	}
}

// DropInfo returns a sink that forwards everything except Info-severity
// diagnostics to next. It implements the suppress-info config option.
func DropInfo(next diag.Sink) diag.Sink {
	return func(d diag.Diag) {
		if d.Severity == diag.Info {
			return
		}
		next(d)
	}
}

const (
	sgrInfo    = "\x1b[1;36m"
	sgrWarning = "\x1b[1;33m"
	sgrError   = "\x1b[1;31m"
	sgrReset   = "\x1b[0m"
)

func severityColor(s diag.Severity) string {
	switch s {
	case diag.Info:
		return sgrInfo
	case diag.Warning:
		return sgrWarning
	case diag.Error:
		return sgrError
	default:
		panic("render: unknown diagnostic severity")
	}
}

// Fancy returns a sink that writes a header line followed by the source
// line(s) the diagnostic covers and a marker line underneath. Ranges
// spanning three or more lines render their first and last lines only, each
// introduced by a "starting at line N with:" / "ending at line N with:"
// header; a two-line range renders both lines without headers. When color
// is true, the severity word and the marker are wrapped in ANSI SGR codes.
func Fancy(w io.Writer, src source.Source, color bool) diag.Sink {
	p := &fancyPrinter{w: w, src: src, color: color}
	return p.print
}

type fancyPrinter struct {
	w     io.Writer
	src   source.Source
	color bool
}

// printSev writes the "[severity] " prefix (severity word colorized) followed
// by text.
func (p *fancyPrinter) printSev(d diag.Diag, text string) {
	fmt.Fprint(p.w, "[")
	if p.color {
		fmt.Fprint(p.w, severityColor(d.Severity), d.Severity, sgrReset)
	} else {
		fmt.Fprint(p.w, d.Severity)
	}
	fmt.Fprint(p.w, "] ", text)
}

func (p *fancyPrinter) print(d diag.Diag) {
	p.printSev(d, "")

	if d.Caret.Valid() {
		fmt.Fprintf(p.w, "%d:%d", d.Caret.Line, d.Caret.Col)
	}
	if d.Range.Valid() && d.Caret.Valid() {
		fmt.Fprintf(p.w, " (%d:%d to %d:%d)", d.Range.Beg.Line, d.Range.Beg.Col, d.Range.End.Line, d.Range.End.Col)
	}
	if d.Range.Valid() && !d.Caret.Valid() {
		fmt.Fprintf(p.w, "%d:%d to %d:%d", d.Range.Beg.Line, d.Range.Beg.Col, d.Range.End.Line, d.Range.End.Col)
	}
	fmt.Fprintf(p.w, ": %s\n", d.Message)

	rng := span.NoRange
	if d.Range.Valid() {
		rng = d.Range
	} else if d.Caret.Valid() {
		rng = span.AtCols(d.Caret, 1)
	}
	if !rng.Valid() {
		fmt.Fprintln(p.w)
		return
	}

	for line := rng.Beg.Line; line <= rng.End.Line; line++ {
		if rng.End.Line-rng.Beg.Line > 1 {
			switch line {
			case rng.Beg.Line:
				p.printSev(d, fmt.Sprintf("starting at line %d with:\n", line))
			case rng.End.Line:
				p.printSev(d, fmt.Sprintf("ending at line %d with:\n", line))
			default:
				continue
			}
		}

		lineText := p.src.GetLine(line)
		begCol := 1
		if line == rng.Beg.Line {
			begCol = rng.Beg.Col
		}
		endCol := len(lineText) + 1
		if line == rng.End.Line {
			endCol = rng.End.Col
		}

		marker := buildMarker(lineText, line, d.Caret, begCol, endCol)

		p.printSev(d, ">>> "+lineText+"\n")
		p.printSev(d, ">>> ")
		if p.color {
			fmt.Fprint(p.w, severityColor(d.Severity), marker, sgrReset, "\n")
		} else {
			fmt.Fprintln(p.w, marker)
		}
	}

	fmt.Fprintln(p.w)
}

// runeCells returns how many terminal cells r occupies when rendered.
func runeCells(r rune) int {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	default:
		return 1
	}
}

// buildMarker renders the caret/tilde line that sits under lineText. Columns
// in diagnostics are byte columns, but the terminal renders cells, so each
// source rune contributes as many marker cells as it occupies on screen:
// tabs stay tabs, wide runes get doubled marks. The marker may extend one
// cell past the end of the line, for carets pointing at a line's terminator.
func buildMarker(lineText string, line int, caret span.Pos, begCol, endCol int) string {
	var sb strings.Builder
	col := 1
	for _, r := range lineText {
		n := utf8.RuneLen(r)
		cells := runeCells(r)
		switch {
		case caret.Valid() && caret.Line == line && caret.Col >= col && caret.Col < col+n:
			sb.WriteByte('^')
			for i := 1; i < cells; i++ {
				sb.WriteByte(' ')
			}
		case col >= begCol && col < endCol:
			for i := 0; i < cells; i++ {
				sb.WriteByte('~')
			}
		case r == '\t':
			sb.WriteByte('\t')
		default:
			for i := 0; i < cells; i++ {
				sb.WriteByte(' ')
			}
		}
		col += n
	}

	if caret.Valid() && caret.Line == line && caret.Col == col {
		sb.WriteByte('^')
	} else if col >= begCol && col < endCol {
		sb.WriteByte('~')
	}

	return strings.TrimRight(sb.String(), " ")
}

var replHelp = [][2]string{
	{":help", "Show this table."},
	{":quit", "Exit the REPL."},
	{":reset", "Discard every declaration made so far in this session."},
	{":load FILE", "Lint FILE and adopt its top-level declarations as built-ins for later lines."},
}

// ReplHelpTable renders the REPL's command reference as a definitions table.
func ReplHelpTable() string {
	return rosed.
		Edit("").
		WithOptions(rosed.Options{ParagraphSeparator: "\n"}).
		InsertDefinitionsTable(0, replHelp, 80).
		String()
}
