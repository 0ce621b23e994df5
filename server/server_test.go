package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/scriptlint/server/api"
)

func newTestServer(t *testing.T) ScriptlintServer {
	t.Helper()
	ss, err := New(Config{
		TokenSecret: []byte("0123456789abcdef0123456789abcdef"),
		UnauthDelay: time.Millisecond,
		DB:          Database{Type: DatabaseInMemory},
	})
	require.NoError(t, err)
	return ss
}

func doJSON(t *testing.T, ss ScriptlintServer, method, path, body, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	rec := httptest.NewRecorder()
	ss.Router().ServeHTTP(rec, req)
	return rec
}

func TestServer_LintWithoutAuth(t *testing.T) {
	assert := assert.New(t)
	ss := newTestServer(t)

	rec := doJSON(t, ss, http.MethodPost, "/v1/lint", `{"source": "yield 1;"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.LintResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Diags, 1)
	assert.Equal("error", resp.Diags[0].Severity)
	assert.Equal("yield can only be used in sequences", resp.Diags[0].Message)
	assert.Empty(resp.RunID, "unauthed lints must not persist")
}

func TestServer_LintWithPrelude(t *testing.T) {
	ss := newTestServer(t)

	rec := doJSON(t, ss, http.MethodPost, "/v1/lint", `{"source": "var x = PI;", "prelude": "const PI = 3;"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.LintResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Diags)
}

func TestServer_LintRejectsEmptySource(t *testing.T) {
	ss := newTestServer(t)
	rec := doJSON(t, ss, http.MethodPost, "/v1/lint", `{}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_RunsRequireAuth(t *testing.T) {
	ss := newTestServer(t)
	rec := doJSON(t, ss, http.MethodGet, "/v1/runs", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestServer_FullRegisterLoginLintHistoryFlow(t *testing.T) {
	assert := assert.New(t)
	ss := newTestServer(t)

	// register
	rec := doJSON(t, ss, http.MethodPost, "/v1/users", `{"username": "ghost", "password": "hunter2hunter2"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	// login
	rec = doJSON(t, ss, http.MethodPost, "/v1/login", `{"username": "ghost", "password": "hunter2hunter2"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var login api.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	require.NotEmpty(t, login.Token)

	// authed lint persists the run
	rec = doJSON(t, ss, http.MethodPost, "/v1/lint", `{"source_name": "bad.ms", "source": "break;"}`, login.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	var lintResp api.LintResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lintResp))
	assert.NotEmpty(lintResp.RunID)
	require.Len(t, lintResp.Diags, 1)

	// run shows up in history
	rec = doJSON(t, ss, http.MethodGet, "/v1/runs", "", login.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	var runs []api.RunModel
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &runs))
	require.Len(t, runs, 1)
	assert.Equal(lintResp.RunID, runs[0].ID)
	assert.Equal("bad.ms", runs[0].SourceName)

	// and is individually retrievable
	rec = doJSON(t, ss, http.MethodGet, fmt.Sprintf("/v1/runs/%s", lintResp.RunID), "", login.Token)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_LoginBadPassword(t *testing.T) {
	ss := newTestServer(t)

	rec := doJSON(t, ss, http.MethodPost, "/v1/users", `{"username": "ghost", "password": "hunter2hunter2"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, ss, http.MethodPost, "/v1/login", `{"username": "ghost", "password": "wrong"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestServer_Info(t *testing.T) {
	ss := newTestServer(t)
	rec := doJSON(t, ss, http.MethodGet, "/v1/info", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var info api.InfoModel
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.NotEmpty(t, info.Version.Scriptlint)
	assert.NotEmpty(t, info.Version.Server)
}

func TestParseDBConnString(t *testing.T) {
	db, err := ParseDBConnString("")
	require.NoError(t, err)
	assert.Equal(t, DatabaseInMemory, db.Type)

	db, err = ParseDBConnString("inmem")
	require.NoError(t, err)
	assert.Equal(t, DatabaseInMemory, db.Type)

	db, err = ParseDBConnString("sqlite:some/dir")
	require.NoError(t, err)
	assert.Equal(t, DatabaseSQLite, db.Type)
	assert.Equal(t, "some/dir", db.DataDir)

	_, err = ParseDBConnString("sqlite")
	assert.Error(t, err)

	_, err = ParseDBConnString("oracle:whatever")
	assert.Error(t, err)
}
