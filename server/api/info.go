package api

import (
	"net/http"

	"github.com/dekarrin/scriptlint/internal/version"
	"github.com/dekarrin/scriptlint/server/middle"
	"github.com/dekarrin/scriptlint/server/result"
)

// HTTPGetInfo returns a HandlerFunc that retrieves information on the API
// and server.
func (api API) HTTPGetInfo() http.HandlerFunc {
	return Endpoint(api.UnauthDelay, api.epGetInfo)
}

func (api API) epGetInfo(req *http.Request) result.Result {
	var resp InfoModel
	resp.Version.Server = version.ServerCurrent
	resp.Version.Scriptlint = version.Current

	userStr := "unauthed client"
	if user, loggedIn := middle.GetLoggedInUser(req); loggedIn {
		userStr = "user '" + user.Username + "'"
	}
	return result.OK(resp, "%s got API info", userStr)
}
