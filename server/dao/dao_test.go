package dao

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/scriptlint/internal/diag"
	"github.com/dekarrin/scriptlint/internal/span"
)

func TestDiagList_BinaryRoundTrip(t *testing.T) {
	orig := DiagList{
		{
			Caret:    span.Pos{Line: 1, Col: 2},
			Range:    span.Range{Beg: span.Pos{Line: 1, Col: 2}, End: span.Pos{Line: 1, Col: 9}},
			Severity: diag.Error,
			ID:       diag.SemaUndeclaredId,
			Message:  "undeclared identifier 'spoons'",
		},
		{
			// no caret, no range; also exercises the invalid sentinels
			Severity: diag.Info,
			ID:       diag.ParseUnnecessaryPointyInFun,
			Message:  "unnecessary '->'",
		},
	}

	data, err := orig.MarshalBinary()
	require.NoError(t, err)

	var got DiagList
	err = got.UnmarshalBinary(data)
	require.NoError(t, err)

	assert.Equal(t, orig, got)
	assert.False(t, got[1].Caret.Valid())
	assert.False(t, got[1].Range.Valid())
}

func TestDiagList_EmptyRoundTrip(t *testing.T) {
	orig := DiagList{}

	data, err := orig.MarshalBinary()
	require.NoError(t, err)

	var got DiagList
	err = got.UnmarshalBinary(data)
	require.NoError(t, err)

	assert.Empty(t, got)
}

func TestParseRole(t *testing.T) {
	for _, role := range []Role{Guest, Unverified, Normal, Admin} {
		parsed, err := ParseRole(role.String())
		require.NoError(t, err)
		assert.Equal(t, role, parsed)
	}

	_, err := ParseRole("emperor")
	assert.Error(t, err)
}
