package lint

import (
	"testing"

	"github.com/dekarrin/scriptlint/internal/diag"
	"github.com/dekarrin/scriptlint/internal/source"
	"github.com/stretchr/testify/assert"
)

func ids(diags []diag.Diag) []diag.ID {
	out := make([]diag.ID, len(diags))
	for i, d := range diags {
		out[i] = d.ID
	}
	return out
}

func run(t *testing.T, input string) Result {
	t.Helper()
	src := source.NewStringSource("<test>", input)
	return RunFile(src)
}

func TestRun_EmptySourceHasNoDiagnostics(t *testing.T) {
	res := run(t, "")
	assert.Empty(t, res.Diags)
	assert.NotNil(t, res.File)
	assert.Empty(t, res.File.Stmts)
}

func TestRun_UnterminatedBlockComment(t *testing.T) {
	res := run(t, "/* comment never closes")
	assert.Equal(t, []diag.ID{diag.LexUnterminatedBlockComment}, ids(res.Diags))
}

func TestRun_ConstWithoutInitializerStillDeclares(t *testing.T) {
	res := run(t, "const x; x;")
	assert.Equal(t, []diag.ID{diag.ParseConstNotInitialized}, ids(res.Diags))
}

func TestRun_YieldOutsideSequence(t *testing.T) {
	res := run(t, "yield 1;")
	assert.Equal(t, []diag.ID{diag.SemaYieldNotInSequence}, ids(res.Diags))
}

func TestRun_YieldInsideSequenceIsFine(t *testing.T) {
	res := run(t, "seq gen() { yield 1; }")
	assert.Empty(t, res.Diags)
}

func TestRun_BreakOutsideLoop(t *testing.T) {
	res := run(t, "break;")
	require := ids(res.Diags)
	assert.Equal(t, []diag.ID{diag.SemaLoopControlNotInLoop}, require)
}

func TestRun_BreakCannotCrossFunctionBoundary(t *testing.T) {
	res := run(t, "while (true) { fun f() { break; } }")
	assert.Equal(t, []diag.ID{diag.SemaLoopControlNotInLoop}, ids(res.Diags))
}

func TestRun_SwitchCaseValueNotConstantAndDuplicateDefault(t *testing.T) {
	res := run(t, "var x = 1; var y = 2; switch (x) { case 1: case y: break; default: default: }")
	assert.Equal(t, []diag.ID{diag.SemaCaseValueNotConstant, diag.SemaDuplicateDefaultCase}, ids(res.Diags))
}

func TestRun_MutatingConstant(t *testing.T) {
	res := run(t, "var x = 1; const y = 2; y = 3;")
	assert.Equal(t, []diag.ID{diag.SemaMutatingConstant}, ids(res.Diags))
	assert.Contains(t, res.Diags[0].Message, "y")
}

func TestRun_MutatingLiteralNotStorable(t *testing.T) {
	res := run(t, "1 = 2;")
	assert.Equal(t, []diag.ID{diag.SemaExprNotStorable}, ids(res.Diags))
}

func TestRun_UndeclaredIdentifier(t *testing.T) {
	res := run(t, "x;")
	assert.Equal(t, []diag.ID{diag.SemaUndeclaredId}, ids(res.Diags))
}

func TestRun_RedeclarationInSameScope(t *testing.T) {
	res := run(t, "var x = 1; var x = 2;")
	assert.Equal(t, []diag.ID{diag.SemaAlreadyDeclared}, ids(res.Diags))
}

func TestRun_ShadowingInNestedScopeIsRedeclaration(t *testing.T) {
	res := run(t, "var x = 1; { var x = 2; }")
	assert.Equal(t, []diag.ID{diag.SemaAlreadyDeclared}, ids(res.Diags))
}

func TestRun_ForeachVarVisibleInBody(t *testing.T) {
	res := run(t, "foreach (var item in [1,2,3]) { item; }")
	assert.Empty(t, res.Diags)
}

func TestRun_FunctionParamsVisibleInBody(t *testing.T) {
	res := run(t, "fun add(a, b) { return a + b; }")
	assert.Empty(t, res.Diags)
}

func TestRun_LambdaShortForm(t *testing.T) {
	res := run(t, "var f = x -> x + 1;")
	assert.Empty(t, res.Diags)
}

func TestRun_LambdaParenForm(t *testing.T) {
	res := run(t, "var f = (x, y) -> x + y;")
	assert.Empty(t, res.Diags)
}

func TestRun_ZeroArgLambda(t *testing.T) {
	res := run(t, "var f = () -> 1;")
	assert.Empty(t, res.Diags)
}

func TestRun_ParenthesizedExpressionIsNotMistakenForLambda(t *testing.T) {
	res := run(t, "var x = 1; var y = (x);")
	assert.Empty(t, res.Diags)
}

func TestRun_ArrowFollowedByBraceIsUnnecessaryButLegal(t *testing.T) {
	res := run(t, "fun f() -> { return 1; }")
	assert.Equal(t, []diag.ID{diag.ParseUnnecessaryPointyInFun}, ids(res.Diags))
	assert.Equal(t, diag.Info, res.Diags[0].Severity)
}

func TestRun_IndexAccessVsArraySlice(t *testing.T) {
	res := run(t, "var a = [1,2,3]; var i = a[0]; var s = a[0:2]; var s2 = a[:2]; var s3 = a[::2];")
	assert.Empty(t, res.Diags)
}

func TestRun_ObjectLiteralWithMethodAndKeyValue(t *testing.T) {
	res := run(t, `var o = { fun f() { return 1; }, x: 2, "y": 3 };`)
	assert.Empty(t, res.Diags)
}

func TestRun_ObjectLiteralMissingColonBetweenKeys(t *testing.T) {
	// the common edit-error pattern: the first colon gets a specific
	// expected-expression diagnostic, then recovery notices the missing
	// comma and the value missing from the final entry.
	res := run(t, "var o = {\n  a:\n  b:\n};")
	assert.Equal(t, []diag.ID{diag.ParseExpectedExpr, diag.ParseExpectedComma, diag.ParseExpectedExpr}, ids(res.Diags))
	assert.Equal(t, 2, res.Diags[0].Caret.Line)
}

func TestRun_PreludeScopeResolvesMainFileReferences(t *testing.T) {
	preludeScope, preludeDiags := LoadPrelude(source.NewStringSource("<prelude>", "const PI = 3;"))
	assert.Empty(t, preludeDiags)

	main := Run(source.NewStringSource("<main>", "var x = PI;"), preludeScope)
	assert.Empty(t, main.Diags)
}

func TestRun_RedeclarationAgainstBuiltinPrelude(t *testing.T) {
	preludeScope, _ := LoadPrelude(source.NewStringSource("<prelude>", "const PI = 3;"))
	main := Run(source.NewStringSource("<main>", "var PI = 4;"), preludeScope)
	assert.Equal(t, []diag.ID{diag.SemaAlreadyDeclaredBuiltin}, ids(main.Diags))
}

func TestRun_BinaryPrecedence(t *testing.T) {
	res := run(t, "1 + 2 * 3 - 4;")
	assert.Empty(t, res.Diags)
	stmt := res.File.Stmts[0]
	assert.NotNil(t, stmt)
}

func TestRun_DoWhile(t *testing.T) {
	res := run(t, "var i = 0; do { i = i + 1; } while (i < 10);")
	assert.Empty(t, res.Diags)
}

func TestRun_ForLoop(t *testing.T) {
	res := run(t, "for (var i = 0; i < 10; i = i + 1) { i; }")
	assert.Empty(t, res.Diags)
}

func TestRun_NumberLiteralBases(t *testing.T) {
	res := run(t, "var a = 0b101; var b = 0x1F; var c = 1_000; var d = 1.5e3;")
	assert.Empty(t, res.Diags)
}

func TestRun_InvalidNumberLiteralStillAdvances(t *testing.T) {
	res := run(t, "var a = 0x; a;")
	assert.Equal(t, []diag.ID{diag.LexInvalidNumberLiteral}, ids(res.Diags))
}
