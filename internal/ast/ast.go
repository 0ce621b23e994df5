// Package ast defines the tagged node variants that make up the abstract
// syntax tree built by the parser: one concrete type per expression and
// statement form, each carrying the source position and range it was
// parsed from. Nodes are created during parsing, finalized (pos/range set
// last) as their enclosing construct completes, and never mutated
// afterward; semantic analysis in package sema is read-only over them.
package ast

import (
	"github.com/dekarrin/scriptlint/internal/span"
	"github.com/dekarrin/scriptlint/internal/token"
)

// Node is implemented by every AST node, expression or statement.
type Node interface {
	Pos() span.Pos
	Range() span.Range
}

// Expr is implemented by every expression node.
type Expr interface {
	Node
	exprNode()
}

// Stmt is implemented by every statement node.
type Stmt interface {
	Node
	stmtNode()
}

// base carries the position/range common to every node. Embed it and call
// SetRange once the node's children are fully parsed.
type base struct {
	rng span.Range
}

func (b base) Pos() span.Pos     { return b.rng.Beg }
func (b base) Range() span.Range { return b.rng }

// Finish sets the node's final range. Called exactly once, by the parser,
// after all of the node's children have been parsed.
func (b *base) Finish(r span.Range) { b.rng = r }

// newBase returns a base already set to r, for constructors that know their
// range up front.
func newBase(r span.Range) base { return base{rng: r} }

// ---- Expressions ----

type Identifier struct {
	base
	Name string
}

func (*Identifier) exprNode() {}

type NumberLiteral struct {
	base
	Text  string // exact source spelling
	Value float64
	Valid bool // false if the lexer/parser could not decode Text
}

func (*NumberLiteral) exprNode() {}

type StringLiteral struct {
	base
	Raw     string // source text including delimiting quotes
	Decoded string // escape-decoded text, delimiters stripped
}

func (*StringLiteral) exprNode() {}

// SimpleLiteral is a literal-valued keyword: global, null, undefined, true,
// false, NaN, or Infinity.
type SimpleLiteral struct {
	base
	Kind token.Type
}

func (*SimpleLiteral) exprNode() {}

type ArrayLiteral struct {
	base
	Elements []Expr
}

func (*ArrayLiteral) exprNode() {}

// ObjectEntry is one member of an ObjectLiteral: either Method is set (a
// named function/sequence declared inline), or Key/Value are set (Value may
// be nil for a key-only entry produced by parser recovery).
type ObjectEntry struct {
	base
	Method *FunDecl
	Key    Expr // Identifier or StringLiteral
	Value  Expr
}

type ObjectLiteral struct {
	base
	Entries []ObjectEntry
}

func (*ObjectLiteral) exprNode() {}

type Call struct {
	base
	Callee Expr
	Args   []Expr
}

func (*Call) exprNode() {}

type IndexAccess struct {
	base
	Target Expr
	Index  Expr
}

func (*IndexAccess) exprNode() {}

type FieldAccess struct {
	base
	Target Expr
	Name   string
}

func (*FieldAccess) exprNode() {}

type ArraySlice struct {
	base
	Target Expr
	Start  Expr // nil if omitted
	End    Expr // nil if omitted
	Step   Expr // nil if omitted
}

func (*ArraySlice) exprNode() {}

type UnaryOp struct {
	base
	Op      token.Type
	Operand Expr
	Post    bool
}

func (*UnaryOp) exprNode() {}

type BinaryOp struct {
	base
	Op    token.Type
	Left  Expr
	Right Expr
}

func (*BinaryOp) exprNode() {}

type TernaryOp struct {
	base
	Cond Expr
	Then Expr
	Else Expr
}

func (*TernaryOp) exprNode() {}

type Lambda struct {
	base
	Params   []string
	Varargs  bool
	Body     *Block
	Sequence bool
}

func (*Lambda) exprNode() {}

type Yield struct {
	base
	Value Expr // nil if bare "yield"
}

func (*Yield) exprNode() {}

// ---- Statements ----

type Block struct {
	base
	Stmts []Stmt
}

func (*Block) stmtNode() {}

// Control is a break or continue statement.
type Control struct {
	base
	Keyword token.Type
}

func (*Control) stmtNode() {}

type DoWhile struct {
	base
	Body Stmt
	Cond Expr
}

func (*DoWhile) stmtNode() {}

type For struct {
	base
	Init  Stmt // VarDecl or NakedExpr, nil if omitted
	Cond  Expr // nil if omitted
	Steps []Expr
	Body  Stmt
}

func (*For) stmtNode() {}

type Foreach struct {
	base
	VarName  string
	Iterable Expr
	Body     Stmt
}

func (*Foreach) stmtNode() {}

type FunDecl struct {
	base
	Name     string
	Params   []string
	Varargs  bool
	Body     *Block
	Sequence bool
}

func (*FunDecl) stmtNode() {}

type IfElse struct {
	base
	Cond Expr
	Then Stmt
	Else Stmt // nil if omitted
}

func (*IfElse) stmtNode() {}

type NakedExpr struct {
	base
	X Expr
}

func (*NakedExpr) stmtNode() {}

type Return struct {
	base
	Value Expr // nil if bare "return"
}

func (*Return) stmtNode() {}

type SwitchCase struct {
	base
	Default   bool
	Value     Expr // nil if Default
	HeadRange span.Range
	Body      []Stmt
}

type Switch struct {
	base
	Value Expr
	Cases []SwitchCase
}

func (*Switch) stmtNode() {}

type VarDeclarator struct {
	base
	Name string
	Init Expr // nil if uninitialized
}

type VarDecl struct {
	base
	Const bool
	Decls []VarDeclarator
}

func (*VarDecl) stmtNode() {}

type While struct {
	base
	Cond Expr
	Body Stmt
}

func (*While) stmtNode() {}
