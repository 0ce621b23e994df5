package api

import (
	"errors"
	"net/http"

	"github.com/dekarrin/scriptlint/server/middle"
	"github.com/dekarrin/scriptlint/server/result"
	"github.com/dekarrin/scriptlint/server/serr"
	"github.com/dekarrin/scriptlint/server/token"
)

// HTTPCreateLogin returns a HandlerFunc that logs in a user with a username
// and password and returns the auth token for that user.
func (api API) HTTPCreateLogin() http.HandlerFunc {
	return Endpoint(api.UnauthDelay, api.epCreateLogin)
}

func (api API) epCreateLogin(req *http.Request) result.Result {
	loginData := LoginRequest{}
	err := parseJSON(req, &loginData)
	if err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}

	if loginData.Username == "" {
		return result.BadRequest("username: property is empty or missing from request", "empty username")
	}
	if loginData.Password == "" {
		return result.BadRequest("password: property is empty or missing from request", "empty password")
	}

	user, err := api.Backend.Login(req.Context(), loginData.Username, loginData.Password)
	if err != nil {
		if errors.Is(err, serr.ErrBadCredentials) {
			return result.Unauthorized(serr.ErrBadCredentials.Error(), "user '%s': %s", loginData.Username, err.Error())
		}
		return result.InternalServerError(err.Error())
	}

	// password is valid, generate token for user and return it.
	tok, err := token.Generate(api.Secret, user)
	if err != nil {
		return result.InternalServerError("could not generate JWT: " + err.Error())
	}

	resp := LoginResponse{
		Token:  tok,
		UserID: user.ID.String(),
	}
	return result.Created(resp, "user '"+user.Username+"' successfully logged in")
}

// HTTPDeleteLogin returns a HandlerFunc that ends the active login of the
// authenticated user, invalidating all of their outstanding tokens.
func (api API) HTTPDeleteLogin() http.HandlerFunc {
	return Endpoint(api.UnauthDelay, api.epDeleteLogin)
}

func (api API) epDeleteLogin(req *http.Request) result.Result {
	user, loggedIn := middle.GetLoggedInUser(req)
	if !loggedIn {
		return result.Unauthorized("", "delete login by unauthed client")
	}

	loggedOut, err := api.Backend.Logout(req.Context(), user.ID)
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return result.NotFound("user does not exist")
		}
		return result.InternalServerError(err.Error())
	}

	return result.NoContent("user '%s' successfully logged out", loggedOut.Username)
}
