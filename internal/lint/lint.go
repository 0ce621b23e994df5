// Package lint wires the lexer, parser, and Sema into the linter's single
// entry point: given a source (and optionally a prelude source), produce the
// parsed AST and the diagnostic stream produced while doing so. It is the
// one place the three core subsystems are assembled; the CLI, REPL, and HTTP
// service in the rest of the module are all thin callers of this package.
package lint

import (
	"github.com/dekarrin/scriptlint/internal/ast"
	"github.com/dekarrin/scriptlint/internal/diag"
	"github.com/dekarrin/scriptlint/internal/lexer"
	"github.com/dekarrin/scriptlint/internal/parser"
	"github.com/dekarrin/scriptlint/internal/sema"
	"github.com/dekarrin/scriptlint/internal/source"
)

// Result is the output of one run of the pipeline over a single source.
type Result struct {
	// File is the parsed top-level program, always non-nil.
	File *ast.Block

	// Diags is every diagnostic emitted by the lexer, parser, and Sema, in
	// source order.
	Diags []diag.Diag

	// Scope is the run's own top-level Sema scope. Passing it as the
	// Builtin of a later run's Sema chains that run's name resolution onto
	// this one, which is how a prelude's declarations become visible to a
	// main file.
	Scope *sema.Scope
}

// Run lexes and parses src, analyzing it with a fresh Sema whose built-in
// ancestor scope is builtin (nil if there is no prelude). It always
// completes: a malformed source produces diagnostics and a best-effort
// partial AST rather than an error return, per the linter's propagation
// policy.
func Run(src source.Source, builtin *sema.Scope) Result {
	var diags []diag.Diag
	b := diag.NewBuilder(func(d diag.Diag) { diags = append(diags, d) })

	lx := lexer.New(src, b)
	sm := sema.New(b, builtin)
	p := parser.New(src, lx, b, sm)

	file := p.ParseFile()

	return Result{File: file, Diags: diags, Scope: sm.Root}
}

// RunFile is a convenience wrapper over Run for a file already loaded as a
// source.Source, with no prelude.
func RunFile(src source.Source) Result {
	return Run(src, nil)
}

// LoadPrelude lints preludeSrc and returns its top-level scope, ready to be
// passed as the builtin parameter of a later Run call over the main file.
// Diagnostics produced while linting the prelude itself are returned
// alongside it so callers can surface prelude errors too.
func LoadPrelude(preludeSrc source.Source) (*sema.Scope, []diag.Diag) {
	res := Run(preludeSrc, nil)
	return res.Scope, res.Diags
}
