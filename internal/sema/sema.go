// Package sema implements the linter's name-analysis rules: a lexical scope
// tree, declaration tracking, and the closed set of static checks that do not
// require type inference or evaluation (undeclared identifiers,
// re-declarations, loop/sequence-context rules, case-value constantness,
// assignability, mutation of constants).
//
// Sema is invoked by the parser once per constructed AST node, immediately
// after that node's children are parsed and its range is finalized. It is
// read-only over the AST: it never mutates a node, only records scopes and
// declarations and emits diagnostics.
package sema

import (
	"github.com/dekarrin/scriptlint/internal/ast"
	"github.com/dekarrin/scriptlint/internal/diag"
	"github.com/dekarrin/scriptlint/internal/span"
	"github.com/dekarrin/scriptlint/internal/token"
)

// DeclKind is the kind of name a Decl introduces.
type DeclKind int

const (
	Variable DeclKind = iota
	Constant
	Function
	Sequence
	Argument
)

// Decl records one name binding: where it was declared and what AST node (if
// any) introduced it.
type Decl struct {
	Kind  DeclKind
	Range span.Range
	Node  ast.Node // nil if synthesized (e.g. a built-in with no source node)
}

// ScopeKind discriminates the rule-relevant role of a Scope, used by the
// loop-control and yield-permission checks.
type ScopeKind int

const (
	Block ScopeKind = iota
	Loop
	FuncScope
	SeqScope
)

// Scope is one node in the lexical scope tree. Parent is a borrow: Sema owns
// the tree for the duration of the run, and scopes reference AST nodes only
// as weak back-pointers, never as owners.
type Scope struct {
	Kind     ScopeKind
	Parent   *Scope
	Children []*Scope
	Node     ast.Node
	Decls    map[string]Decl
}

func newScope(kind ScopeKind, parent *Scope, node ast.Node) *Scope {
	s := &Scope{Kind: kind, Parent: parent, Node: node, Decls: map[string]Decl{}}
	if parent != nil {
		parent.Children = append(parent.Children, s)
	}
	return s
}

// lookup walks s and its ancestors (including a built-in root, if any)
// looking for name. It returns the Decl, the scope holding it, and whether it
// was found.
func (s *Scope) lookup(name string) (Decl, *Scope, bool) {
	for cur := s; cur != nil; cur = cur.Parent {
		if d, ok := cur.Decls[name]; ok {
			return d, cur, true
		}
	}
	return Decl{}, nil, false
}

// Sema holds the mutable scope-walk state shared by one parse. Exactly one
// Sema is used per linted file; a prelude file's root scope, once built, is
// handed in as Builtin for a main-file Sema so references resolve against it.
type Sema struct {
	diags *diag.Builder

	// Builtin is the root scope of a previously-linted prelude, or nil. It is
	// never pushed/popped by this Sema and outlives it.
	Builtin *Scope

	// Root is this run's own top-level scope, parented on Builtin if present.
	Root *Scope

	curr *Scope
}

// New returns a Sema ready to analyze one file. builtin, if non-nil, is the
// root scope of an already-analyzed prelude.
func New(diags *diag.Builder, builtin *Scope) *Sema {
	s := &Sema{diags: diags, Builtin: builtin}
	s.Root = newScope(Block, builtin, nil)
	s.curr = s.Root
	return s
}

// Current returns the scope currently open. Exposed so a caller building a
// prelude can read back s.Root (== Current at top level, once parsing is
// done) to hand to a subsequent file's Sema as its Builtin.
func (s *Sema) Current() *Scope { return s.curr }

// PushScope opens a new child scope of kind, associated with node (typically
// the construct that introduces it — a Block, a loop, a FunDecl/Lambda), and
// makes it current. Callers must pair every PushScope with exactly one
// PopScope, on every exit path including early returns from recovery; use a
// deferred PopScope at the call site to guarantee this.
func (s *Sema) PushScope(kind ScopeKind, node ast.Node) {
	s.curr = newScope(kind, s.curr, node)
}

// PopScope restores the parent of the current scope. Popping the root scope
// is a programmer error and panics, since it would desynchronize Current from
// the scope tree for the remainder of the run.
func (s *Sema) PopScope() {
	if s.curr.Parent == nil {
		panic("sema: pop of root scope")
	}
	s.curr = s.curr.Parent
}

// Declare records a binding for name in the current scope. If name is already
// declared somewhere along the open chain (including the built-in scope), a
// SemaAlreadyDeclared (or SemaAlreadyDeclaredBuiltin, if the prior
// declaration lives in Builtin) diagnostic is emitted referencing the earlier
// declaration's position. Either way, the new declaration is then recorded in
// the current scope: the diagnostic does not prevent subsequent lookups from
// finding either binding, since one must still be chosen to continue
// resolving future references against.
func (s *Sema) Declare(kind DeclKind, rng span.Range, name string, node ast.Node) {
	if prior, priorScope, ok := s.curr.lookup(name); ok {
		if priorScope == s.Builtin {
			s.diags.Emit(rng.Beg, rng, diag.SemaAlreadyDeclaredBuiltin, diag.Str(name))
		} else {
			s.diags.Emit(rng.Beg, rng, diag.SemaAlreadyDeclared, diag.Str(name), diag.Int(prior.Range.Beg.Line), diag.Int(prior.Range.Beg.Col))
		}
	}
	s.curr.Decls[name] = Decl{Kind: kind, Range: rng, Node: node}
}

// inSequence walks scopes outward from curr, returning true as soon as a
// Sequence scope is found, false as soon as a Function scope is found first.
// A Function boundary always closes the search: yield inside a plain
// function nested in a sequence is still not permitted.
func (s *Sema) inSequence() bool {
	for cur := s.curr; cur != nil; cur = cur.Parent {
		switch cur.Kind {
		case SeqScope:
			return true
		case FuncScope:
			return false
		}
	}
	return false
}

// inLoop walks scopes outward from curr, returning true on the first Loop
// scope and false on the first Function or Sequence scope, whichever comes
// first: break/continue cannot cross a function boundary to reach an
// enclosing loop.
func (s *Sema) inLoop() bool {
	for cur := s.curr; cur != nil; cur = cur.Parent {
		switch cur.Kind {
		case Loop:
			return true
		case FuncScope, SeqScope:
			return false
		}
	}
	return false
}

// isSyntacticConstant reports whether e is literally a number, string, or
// simple-literal keyword node — no evaluation is performed.
func isSyntacticConstant(e ast.Expr) bool {
	switch e.(type) {
	case *ast.NumberLiteral, *ast.StringLiteral, *ast.SimpleLiteral:
		return true
	default:
		return false
	}
}

// storable reports whether e may appear on the left of a mutating operator.
func storable(e ast.Expr) bool {
	switch e.(type) {
	case *ast.Identifier, *ast.FieldAccess, *ast.IndexAccess:
		return true
	default:
		return false
	}
}

// checkMutable enforces that expr is a storable expression and, if it names a
// constant, emits SemaMutatingConstant. Called for the target operand of
// every mutating BinaryOp and every Inc/Dec UnaryOp.
func (s *Sema) checkMutable(expr ast.Expr) {
	if expr == nil {
		return
	}
	if !storable(expr) {
		s.diags.Emit(expr.Pos(), expr.Range(), diag.SemaExprNotStorable)
		return
	}
	id, ok := expr.(*ast.Identifier)
	if !ok {
		return
	}
	d, _, found := s.curr.lookup(id.Name)
	if !found || d.Kind != Constant {
		return
	}
	s.diags.Emit(id.Pos(), id.Range(), diag.SemaMutatingConstant, diag.Str(id.Name), diag.Int(d.Range.Beg.Line), diag.Int(d.Range.Beg.Col))
}

// Visit applies the rule (if any) for node's concrete kind. The parser calls
// this on every node immediately after constructing it, bottom-up: children
// have already been visited by the time their parent is.
func (s *Sema) Visit(node ast.Node) {
	switch n := node.(type) {
	case *ast.Identifier:
		s.visitIdentifier(n)
	case *ast.Yield:
		s.visitYield(n)
	case *ast.BinaryOp:
		s.visitBinaryOp(n)
	case *ast.UnaryOp:
		s.visitUnaryOp(n)
	case *ast.Control:
		s.visitControl(n)
	case *ast.Switch:
		s.visitSwitch(n)
	}
	// Every other node kind has no additional Sema rule beyond the
	// declarations and scope pushes the parser already arranged for it; the
	// parser itself supplies the "walk children" traversal by virtue of
	// having already parsed and visited them before this call.
}

func (s *Sema) visitIdentifier(n *ast.Identifier) {
	if _, _, ok := s.curr.lookup(n.Name); !ok {
		s.diags.Emit(n.Pos(), n.Range(), diag.SemaUndeclaredId, diag.Str(n.Name))
	}
}

func (s *Sema) visitYield(n *ast.Yield) {
	if !s.inSequence() {
		s.diags.Emit(n.Pos(), n.Range(), diag.SemaYieldNotInSequence)
	}
}

func (s *Sema) visitBinaryOp(n *ast.BinaryOp) {
	if token.IsMutatingOperator(n.Op) {
		s.checkMutable(n.Left)
	}
}

func (s *Sema) visitUnaryOp(n *ast.UnaryOp) {
	if n.Op == token.Inc || n.Op == token.Dec {
		s.checkMutable(n.Operand)
	}
}

func (s *Sema) visitControl(n *ast.Control) {
	if !s.inLoop() {
		kw := "break"
		if n.Keyword == token.KwContinue {
			kw = "continue"
		}
		s.diags.Emit(n.Pos(), n.Range(), diag.SemaLoopControlNotInLoop, diag.Str(kw))
	}
}

func (s *Sema) visitSwitch(n *ast.Switch) {
	var defaultPos span.Range
	haveDefault := false
	for _, c := range n.Cases {
		if c.Default {
			if haveDefault {
				s.diags.Emit(c.HeadRange.Beg, c.HeadRange, diag.SemaDuplicateDefaultCase,
					diag.Int(defaultPos.Beg.Line), diag.Int(defaultPos.Beg.Col))
			} else {
				haveDefault = true
				defaultPos = c.HeadRange
			}
			continue
		}
		if c.Value != nil && !isSyntacticConstant(c.Value) {
			s.diags.Emit(c.Value.Pos(), c.Value.Range(), diag.SemaCaseValueNotConstant)
		}
	}
}
