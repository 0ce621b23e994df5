package api

import (
	"errors"
	"net/http"

	"github.com/dekarrin/scriptlint/server/dao"
	"github.com/dekarrin/scriptlint/server/result"
	"github.com/dekarrin/scriptlint/server/serr"
)

func toUserResponse(user dao.User) UserResponse {
	resp := UserResponse{
		ID:       user.ID.String(),
		Username: user.Username,
	}
	if user.Email != nil {
		resp.Email = user.Email.Address
	}
	return resp
}

// HTTPCreateUser returns a HandlerFunc that registers a new user account
// with a username and password.
func (api API) HTTPCreateUser() http.HandlerFunc {
	return Endpoint(api.UnauthDelay, api.epCreateUser)
}

func (api API) epCreateUser(req *http.Request) result.Result {
	userData := UserRequest{}
	err := parseJSON(req, &userData)
	if err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}

	user, err := api.Backend.CreateUser(req.Context(), userData.Username, userData.Password, userData.Email, dao.Normal)
	if err != nil {
		if errors.Is(err, serr.ErrAlreadyExists) {
			return result.Conflict("A user with that username already exists", "user '%s' already exists", userData.Username)
		}
		if errors.Is(err, serr.ErrBadArgument) {
			return result.BadRequest(err.Error(), err.Error())
		}
		return result.InternalServerError(err.Error())
	}

	return result.Created(toUserResponse(user), "user '%s' created", user.Username)
}
