package diag

// ID is the closed set of message identifiers the linter can emit. Each ID
// has exactly one associated format string and default severity, defined in
// formats below.
type ID int

const (
	_ ID = iota

	LexUnexpectedCharacter
	LexCrMustBeFollowedByLf
	LexInvalidNumberLiteral
	LexUnterminatedBlockComment
	LexUnterminatedStringLiteral

	ParseExpectedExpr
	ParseExpectedStmt
	ParseExpectedSwitchCase
	ParseExpectedObjectEntry
	ParseExpectedComma
	ParseMismatchedToken
	ParseExpectedTokenGotOther
	ParseConstNotInitialized
	ParseUnnecessaryPointyInFun
	ParseUnterminatedArrayLiteral
	ParseUnterminatedObjectLiteral
	ParseUnterminatedFunctionCall
	ParseUnterminatedArraySlice

	SemaUndeclaredId
	SemaAlreadyDeclared
	SemaAlreadyDeclaredBuiltin
	SemaYieldNotInSequence
	SemaLoopControlNotInLoop
	SemaCaseValueNotConstant
	SemaDuplicateDefaultCase
	SemaExprNotStorable
	SemaMutatingConstant

	maxID
)

// formatDef is the fixed format string and default severity for one ID.
type formatDef struct {
	format   string
	severity Severity
}

var formats = [maxID]formatDef{
	LexUnexpectedCharacter:       {"unexpected character '%c'", Error},
	LexCrMustBeFollowedByLf:      {"carriage return must be followed by line feed", Error},
	LexInvalidNumberLiteral:      {"invalid number literal", Error},
	LexUnterminatedBlockComment:  {"unterminated block comment", Error},
	LexUnterminatedStringLiteral: {"unterminated string literal", Error},

	ParseExpectedExpr:              {"expected expression", Error},
	ParseExpectedStmt:              {"expected statement", Error},
	ParseExpectedSwitchCase:        {"expected switch case", Error},
	ParseExpectedObjectEntry:       {"expected object entry", Error},
	ParseExpectedComma:             {"expected ','", Error},
	ParseMismatchedToken:           {"mismatched '%t'", Error},
	ParseExpectedTokenGotOther:     {"expected '%t', got '%t'", Error},
	ParseConstNotInitialized:       {"constant not initialized", Error},
	ParseUnnecessaryPointyInFun:    {"unnecessary '->'", Info},
	ParseUnterminatedArrayLiteral:  {"unterminated array literal", Error},
	ParseUnterminatedObjectLiteral: {"unterminated object literal", Error},
	ParseUnterminatedFunctionCall:  {"unterminated function call", Error},
	ParseUnterminatedArraySlice:    {"unterminated array slice", Error},

	SemaUndeclaredId:           {"undeclared identifier '%s'", Error},
	SemaAlreadyDeclared:        {"'%s' already declared at %d:%d", Error},
	SemaAlreadyDeclaredBuiltin: {"'%s' already declared as a built-in", Error},
	SemaYieldNotInSequence:     {"yield can only be used in sequences", Error},
	SemaLoopControlNotInLoop:   {"%s can only be used in loops", Error},
	SemaCaseValueNotConstant:   {"case value not a constant", Error},
	SemaDuplicateDefaultCase:   {"duplicate default case, already defined at %d:%d", Error},
	SemaExprNotStorable:        {"expression not storable", Error},
	SemaMutatingConstant:       {"can't change constant '%s' declared at %d:%d", Error},
}

// DefaultSeverity returns the severity hint associated with id.
func DefaultSeverity(id ID) Severity {
	checkID(id)
	return formats[id].severity
}

func checkID(id ID) {
	if id <= 0 || id >= maxID {
		panic("diag: unknown message id")
	}
}
