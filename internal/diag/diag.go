// Package diag defines structured diagnostics for the linter: severities, a
// closed table of message ids with their interpolation formats, and a
// builder that renders and emits them through a caller-supplied sink.
package diag

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dekarrin/scriptlint/internal/span"
	"github.com/dekarrin/scriptlint/internal/token"
)

// Severity classifies how serious a diagnostic is.
type Severity int

const (
	Info Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		panic("diag: unknown severity")
	}
}

// Diag is one fully-formatted diagnostic record. Caret and Range are each
// independently optional; either may be span.NoPos / span.NoRange.
type Diag struct {
	Caret    span.Pos
	Range    span.Range
	Severity Severity
	ID       ID
	Message  string
}

// Sink receives one fully-formatted Diag per call, in source order. It must
// not be called re-entrantly from within a format step.
type Sink func(Diag)

// argKind distinguishes the payload carried by an Arg.
type argKind int

const (
	argCodepoint argKind = iota
	argToken
	argStr
	argInt
)

// Arg is one interpolation argument for Emit. Build values with Codepoint,
// TokenArg, Str, or Int.
type Arg struct {
	kind argKind
	b    byte
	tt   token.Type
	s    string
	i    int
}

// Codepoint builds an Arg for a %c specifier.
func Codepoint(b byte) Arg { return Arg{kind: argCodepoint, b: b} }

// TokenArg builds an Arg for a %t specifier.
func TokenArg(t token.Type) Arg { return Arg{kind: argToken, tt: t} }

// Str builds an Arg for a %s specifier.
func Str(s string) Arg { return Arg{kind: argStr, s: s} }

// Int builds an Arg for a %d specifier.
func Int(i int) Arg { return Arg{kind: argInt, i: i} }

func formatCodepoint(b byte) string {
	if b >= 0x20 && b < 0x7f {
		return string(rune(b))
	}
	return fmt.Sprintf("<0x%02X>", b)
}

// render interpolates args into the fixed format string for id. A
// specifier/argument kind or count mismatch is a programmer error: it is
// unreachable in a correctly constructed call site and panics rather than
// producing a garbled message.
func render(id ID, args []Arg) string {
	checkID(id)
	format := formats[id].format

	var sb strings.Builder
	argi := 0
	next := func() Arg {
		if argi >= len(args) {
			panic(fmt.Sprintf("diag: message %d: too few arguments for format %q", id, format))
		}
		a := args[argi]
		argi++
		return a
	}

	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' || i+1 >= len(format) {
			sb.WriteByte(c)
			continue
		}
		i++
		switch format[i] {
		case 'c':
			a := next()
			if a.kind != argCodepoint {
				panic(fmt.Sprintf("diag: message %d: %%c expects a Codepoint arg", id))
			}
			sb.WriteString(formatCodepoint(a.b))
		case 't':
			a := next()
			if a.kind != argToken {
				panic(fmt.Sprintf("diag: message %d: %%t expects a TokenArg", id))
			}
			sb.WriteString(token.TypeName(a.tt))
		case 's':
			a := next()
			if a.kind != argStr {
				panic(fmt.Sprintf("diag: message %d: %%s expects a Str arg", id))
			}
			sb.WriteString(a.s)
		case 'd':
			a := next()
			if a.kind != argInt {
				panic(fmt.Sprintf("diag: message %d: %%d expects an Int arg", id))
			}
			sb.WriteString(strconv.Itoa(a.i))
		case '%':
			sb.WriteByte('%')
		default:
			panic(fmt.Sprintf("diag: message %d: unknown format specifier %%%c", id, format[i]))
		}
	}

	if argi != len(args) {
		panic(fmt.Sprintf("diag: message %d: too many arguments for format %q", id, format))
	}

	return sb.String()
}

// Builder renders diagnostics and emits the fully-rendered Diag
// records to a sink. Building one diagnostic never allocates proportional
// to program size: it touches only the fixed-size format string and the
// small argument list passed to Emit.
type Builder struct {
	sink Sink
}

// NewBuilder returns a Builder that emits to sink. A nil sink discards all
// diagnostics, which is useful in tests that do not inspect diagnostics.
func NewBuilder(sink Sink) *Builder {
	if sink == nil {
		sink = func(Diag) {}
	}
	return &Builder{sink: sink}
}

// Emit renders id against args and sends the resulting Diag to the sink,
// using DefaultSeverity(id) as the severity.
func (b *Builder) Emit(caret span.Pos, rng span.Range, id ID, args ...Arg) {
	b.EmitSeverity(DefaultSeverity(id), caret, rng, id, args...)
}

// EmitSeverity is like Emit but lets the caller override the severity hint,
// e.g. a renderer-side "treat this Info as a Warning" policy.
func (b *Builder) EmitSeverity(severity Severity, caret span.Pos, rng span.Range, id ID, args ...Arg) {
	d := Diag{
		Caret:    caret,
		Range:    rng,
		Severity: severity,
		ID:       id,
		Message:  render(id, args),
	}
	b.sink(d)
}
