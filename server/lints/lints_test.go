package lints

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/scriptlint/internal/diag"
	"github.com/dekarrin/scriptlint/server/dao"
	"github.com/dekarrin/scriptlint/server/dao/inmem"
	"github.com/dekarrin/scriptlint/server/serr"
)

func newTestService() Service {
	return Service{DB: inmem.NewDatastore()}
}

func TestService_CreateUserAndLogin(t *testing.T) {
	assert := assert.New(t)
	svc := newTestService()
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, "ghost", "hunter2hunter2", "ghost@example.com", dao.Normal)
	require.NoError(t, err)
	assert.Equal("ghost", user.Username)
	assert.NotEqual("hunter2hunter2", user.Password)

	loggedIn, err := svc.Login(ctx, "ghost", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(user.ID, loggedIn.ID)
}

func TestService_LoginBadPassword(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, "ghost", "hunter2hunter2", "", dao.Normal)
	require.NoError(t, err)

	_, err = svc.Login(ctx, "ghost", "wrong")
	assert.ErrorIs(t, err, serr.ErrBadCredentials)

	_, err = svc.Login(ctx, "nobody", "hunter2hunter2")
	assert.ErrorIs(t, err, serr.ErrBadCredentials)
}

func TestService_CreateUserDuplicate(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, "ghost", "hunter2hunter2", "", dao.Normal)
	require.NoError(t, err)

	_, err = svc.CreateUser(ctx, "ghost", "otherpassword", "", dao.Normal)
	assert.ErrorIs(t, err, serr.ErrAlreadyExists)
}

func TestService_CreateUserBlankArgs(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, "", "password", "", dao.Normal)
	assert.ErrorIs(t, err, serr.ErrBadArgument)

	_, err = svc.CreateUser(ctx, "ghost", "", "", dao.Normal)
	assert.ErrorIs(t, err, serr.ErrBadArgument)
}

func TestService_LintFindsDiagnostics(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	diags := svc.Lint(ctx, "bad.ms", "yield 1;", "")
	require.Len(t, diags, 1)
	assert.Equal(t, diag.SemaYieldNotInSequence, diags[0].ID)
}

func TestService_LintCleanSource(t *testing.T) {
	svc := newTestService()
	diags := svc.Lint(context.Background(), "ok.ms", "var x = 1; x = x + 1;", "")
	assert.Empty(t, diags)
}

func TestService_LintWithPrelude(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	withPrelude := svc.Lint(ctx, "main.ms", "var x = PI;", "const PI = 3;")
	assert.Empty(t, withPrelude)

	withoutPrelude := svc.Lint(ctx, "main.ms", "var x = PI;", "")
	require.Len(t, withoutPrelude, 1)
	assert.Equal(t, diag.SemaUndeclaredId, withoutPrelude[0].ID)
}

func TestService_RecordAndListRuns(t *testing.T) {
	assert := assert.New(t)
	svc := newTestService()
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, "ghost", "hunter2hunter2", "", dao.Normal)
	require.NoError(t, err)

	diags := svc.Lint(ctx, "bad.ms", "break;", "")
	run, err := svc.RecordRun(ctx, user.ID, "bad.ms", diags)
	require.NoError(t, err)
	assert.Equal("bad.ms", run.SourceName)

	runs, err := svc.ListRuns(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(run.ID, runs[0].ID)
	require.Len(t, runs[0].Diags, 1)
	assert.Equal(diag.SemaLoopControlNotInLoop, runs[0].Diags[0].ID)
}

func TestService_GetRunEnforcesOwnership(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	owner, err := svc.CreateUser(ctx, "owner", "hunter2hunter2", "", dao.Normal)
	require.NoError(t, err)
	other, err := svc.CreateUser(ctx, "other", "hunter2hunter2", "", dao.Normal)
	require.NoError(t, err)

	run, err := svc.RecordRun(ctx, owner.ID, "x.ms", nil)
	require.NoError(t, err)

	got, err := svc.GetRun(ctx, owner.ID, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)

	_, err = svc.GetRun(ctx, other.ID, run.ID)
	assert.ErrorIs(t, err, serr.ErrPermissions)
}
