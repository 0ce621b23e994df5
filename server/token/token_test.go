package token

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/scriptlint/server/dao"
	"github.com/dekarrin/scriptlint/server/dao/inmem"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func makeUser(t *testing.T, users dao.UserRepository) dao.User {
	t.Helper()
	user, err := users.Create(context.Background(), dao.User{
		Username: "ghost",
		Password: "c3RvcmVkLWhhc2g=",
		Role:     dao.Normal,
	})
	require.NoError(t, err)
	return user
}

func TestGenerateThenValidate(t *testing.T) {
	users := inmem.NewUsersRepository()
	user := makeUser(t, users)

	tok, err := Generate(testSecret, user)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	got, err := Validate(context.Background(), tok, testSecret, users)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
}

func TestValidate_WrongSecretRejected(t *testing.T) {
	users := inmem.NewUsersRepository()
	user := makeUser(t, users)

	tok, err := Generate(testSecret, user)
	require.NoError(t, err)

	_, err = Validate(context.Background(), tok, []byte("not-the-secret-not-the-secret-00"), users)
	assert.Error(t, err)
}

func TestValidate_LogoutInvalidatesOldTokens(t *testing.T) {
	users := inmem.NewUsersRepository()
	user := makeUser(t, users)

	tok, err := Generate(testSecret, user)
	require.NoError(t, err)

	// bump the logout time; the signing key is derived from it, so the old
	// token no longer verifies.
	user.LastLogoutTime = user.LastLogoutTime.Add(time.Hour)
	_, err = users.Update(context.Background(), user.ID, user)
	require.NoError(t, err)

	_, err = Validate(context.Background(), tok, testSecret, users)
	assert.Error(t, err)
}

func TestGet(t *testing.T) {
	testCases := []struct {
		name      string
		header    string
		expect    string
		expectErr bool
	}{
		{name: "valid bearer", header: "Bearer abc.def.ghi", expect: "abc.def.ghi"},
		{name: "case insensitive scheme", header: "bearer tok", expect: "tok"},
		{name: "missing header", header: "", expectErr: true},
		{name: "wrong scheme", header: "Basic dXNlcjpwYXNz", expectErr: true},
		{name: "no token part", header: "Bearer", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}

			tok, err := Get(req)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expect, tok)
		})
	}
}
