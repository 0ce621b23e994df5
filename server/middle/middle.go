// Package middle contains middleware for use with the scriptlint server.
package middle

import (
	"context"
	"net/http"
	"time"

	"github.com/dekarrin/scriptlint/server/dao"
	"github.com/dekarrin/scriptlint/server/result"
	"github.com/dekarrin/scriptlint/server/token"
)

// Middleware is a function that takes a handler and returns a new handler
// which wraps the given one and provides some additional functionality.
type Middleware func(next http.Handler) http.Handler

// AuthKey is a key in the context of a request populated by an AuthHandler.
type AuthKey int64

const (
	AuthLoggedIn AuthKey = iota
	AuthUser
)

// GetLoggedInUser returns the user the AuthHandler resolved for req, and
// whether a login was actually present.
func GetLoggedInUser(req *http.Request) (user dao.User, loggedIn bool) {
	loggedIn, _ = req.Context().Value(AuthLoggedIn).(bool)
	user, _ = req.Context().Value(AuthUser).(dao.User)
	return user, loggedIn
}

// AuthHandler is middleware that will accept a request, extract the token
// used for authentication, and make calls to get a User entity that
// represents the logged in user from the token.
//
// Keys are added to the request context before the request is passed to the
// next step in the chain. AuthUser will contain the logged-in user, and
// AuthLoggedIn will return whether the user is logged in (only applies for
// optional logins; for non-optional, not being logged in will result in an
// HTTP error being returned before the request is passed to the next
// handler).
type AuthHandler struct {
	db            dao.UserRepository
	secret        []byte
	required      bool
	unauthedDelay time.Duration
	next          http.Handler
}

func (ah *AuthHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	var loggedIn bool
	var user dao.User

	tok, err := token.Get(req)
	if err != nil {
		// error here means token isn't present (or at least isn't in the
		// expected format, which for all intents and purposes is
		// non-existent). This is not okay if auth is required.
		if ah.required {
			time.Sleep(ah.unauthedDelay)
			result.Unauthorized("", err.Error()).WriteResponse(w)
			return
		}
	} else {
		lookupUser, err := token.Validate(req.Context(), tok, ah.secret, ah.db)
		if err != nil {
			// there was a validation error. the user does not count as
			// logged in. if logging in is required, that's not okay.
			if ah.required {
				time.Sleep(ah.unauthedDelay)
				result.Unauthorized("", err.Error()).WriteResponse(w)
				return
			}
		} else {
			user = lookupUser
			loggedIn = true
		}
	}

	ctx := req.Context()
	ctx = context.WithValue(ctx, AuthLoggedIn, loggedIn)
	ctx = context.WithValue(ctx, AuthUser, user)
	req = req.WithContext(ctx)
	ah.next.ServeHTTP(w, req)
}

// RequireAuth returns middleware that rejects any request without a valid
// bearer token before it reaches the wrapped handler.
func RequireAuth(db dao.UserRepository, secret []byte, unauthDelay time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		return &AuthHandler{
			db:            db,
			secret:        secret,
			unauthedDelay: unauthDelay,
			required:      true,
			next:          next,
		}
	}
}

// OptionalAuth returns middleware that resolves a bearer token when one is
// present but passes the request through either way; handlers check
// AuthLoggedIn to find out which happened.
func OptionalAuth(db dao.UserRepository, secret []byte, unauthDelay time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		return &AuthHandler{
			db:            db,
			secret:        secret,
			unauthedDelay: unauthDelay,
			required:      false,
			next:          next,
		}
	}
}
