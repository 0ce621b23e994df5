package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyIdentifier(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(KwIf, ClassifyIdentifier("if"))
	assert.Equal(KwFun, ClassifyIdentifier("fun"))
	assert.Equal(KwNotIn, ClassifyIdentifier("notin"))
	assert.Equal(Identifier, ClassifyIdentifier("notInThisLanguage"))
	assert.Equal(Identifier, ClassifyIdentifier("x"))
}

func TestOperatorTrie_Ellipsis(t *testing.T) {
	assert := assert.New(t)

	k, ok := OperatorLookupFirst('.')
	assert.True(ok)
	assert.Equal(Dot, k)

	k, ok = OperatorLookupContinue(k, '.')
	assert.True(ok)
	assert.Equal(dotDot, k)
	assert.False(IsOperatorTerminal(k))

	k, ok = OperatorLookupContinue(k, '.')
	assert.True(ok)
	assert.Equal(Ellipsis, k)
	assert.True(IsOperatorTerminal(k))
}

func TestOperatorTrie_ShiftAssign(t *testing.T) {
	assert := assert.New(t)

	k, ok := OperatorLookupFirst('<')
	assert.True(ok)
	assert.Equal(Lt, k)

	k, ok = OperatorLookupContinue(k, '<')
	assert.True(ok)
	assert.Equal(Shl, k)

	k, ok = OperatorLookupContinue(k, '=')
	assert.True(ok)
	assert.Equal(ShlAssign, k)

	_, ok = OperatorLookupContinue(k, '=')
	assert.False(ok)
}

func TestOperatorPrecedenceOrdering(t *testing.T) {
	assert := assert.New(t)

	assert.Less(int(PrecInvalid), int(PrecAssign))
	assert.Less(int(PrecAssign), int(PrecTernary))
	assert.Less(int(PrecTernary), int(PrecConditionalOr))
	assert.Less(int(PrecConditionalOr), int(PrecConditionalAnd))
	assert.Less(int(PrecConditionalAnd), int(PrecEquality))
	assert.Less(int(PrecEquality), int(PrecRelational))
	assert.Less(int(PrecRelational), int(PrecBitOr))
	assert.Less(int(PrecBitOr), int(PrecBitXor))
	assert.Less(int(PrecBitXor), int(PrecBitAnd))
	assert.Less(int(PrecBitAnd), int(PrecBitShift))
	assert.Less(int(PrecBitShift), int(PrecAddition))
	assert.Less(int(PrecAddition), int(PrecMultiplication))
	assert.Less(int(PrecMultiplication), int(PrecMisc))

	assert.Equal(PrecAddition, OperatorPrecedence(Plus))
	assert.Equal(PrecMultiplication, OperatorPrecedence(Star))
	assert.Equal(PrecInvalid, OperatorPrecedence(Identifier))
}

func TestRolePredicates(t *testing.T) {
	assert := assert.New(t)

	assert.True(IsMutatingOperator(Assign))
	assert.True(IsMutatingOperator(PlusAssign))
	assert.False(IsMutatingOperator(Plus))

	assert.True(IsPrefixOperator(Minus))
	assert.True(IsPrefixOperator(Ellipsis))
	assert.False(IsPrefixOperator(Plus))

	assert.True(IsBinaryOperator(Plus))
	assert.False(IsBinaryOperator(Question))

	assert.True(IsPostfixOperator(Inc))
	assert.True(IsPostfixOperator(Dec))
	assert.False(IsPostfixOperator(Plus))
}

func TestTypeName(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("fun", TypeName(KwFun))
	assert.Equal("->", TypeName(Arrow))
	assert.Panics(func() { TypeName(Type(-1)) })
}
