// Package result contains results that are used to write out API responses.
package result

import (
	"encoding/json"
	"fmt"
	"net/http"
)

type ErrorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// Result is a fully-determined API response, carrying the status, the body
// object to be marshaled, and an internal message for the server log that is
// never shown to the user. Create one with the status-named constructors
// below rather than directly.
type Result struct {
	Status      int
	IsErr       bool
	InternalMsg string

	resp interface{}
	hdrs [][2]string
}

// internalMsgOr interprets the optional trailing internalMsg varargs the
// constructors accept: a format string followed by its args, or nothing for
// the given default.
func internalMsgOr(def string, internalMsg []interface{}) string {
	if len(internalMsg) < 1 {
		return def
	}
	return fmt.Sprintf(internalMsg[0].(string), internalMsg[1:]...)
}

// OK returns a Result containing an HTTP-200 along with a more detailed
// message (if desired; if none is provided it defaults to a generic one) that
// is not displayed to the user.
func OK(respObj interface{}, internalMsg ...interface{}) Result {
	return Result{Status: http.StatusOK, resp: respObj, InternalMsg: internalMsgOr("OK", internalMsg)}
}

// Created returns a Result containing an HTTP-201 along with a more detailed
// message that is not displayed to the user.
func Created(respObj interface{}, internalMsg ...interface{}) Result {
	return Result{Status: http.StatusCreated, resp: respObj, InternalMsg: internalMsgOr("created", internalMsg)}
}

// NoContent returns a Result containing an HTTP-204.
func NoContent(internalMsg ...interface{}) Result {
	return Result{Status: http.StatusNoContent, InternalMsg: internalMsgOr("no content", internalMsg)}
}

// Err returns an error Result with the given status whose body is an
// ErrorResponse showing userMsg.
func Err(status int, userMsg string, internalMsg ...interface{}) Result {
	return Result{
		Status:      status,
		IsErr:       true,
		resp:        ErrorResponse{Error: userMsg, Status: status},
		InternalMsg: internalMsgOr(userMsg, internalMsg),
	}
}

// BadRequest returns an error Result containing an HTTP-400.
func BadRequest(userMsg string, internalMsg ...interface{}) Result {
	return Err(http.StatusBadRequest, userMsg, internalMsg...)
}

// Conflict returns an error Result containing an HTTP-409.
func Conflict(userMsg string, internalMsg ...interface{}) Result {
	return Err(http.StatusConflict, userMsg, internalMsg...)
}

// NotFound returns an error Result containing an HTTP-404.
func NotFound(internalMsg ...interface{}) Result {
	return Err(http.StatusNotFound, "The requested resource was not found", internalMsg...)
}

// Forbidden returns an error Result containing an HTTP-403.
func Forbidden(internalMsg ...interface{}) Result {
	return Err(http.StatusForbidden, "You don't have permission to do that", internalMsg...)
}

// Unauthorized returns an error Result containing an HTTP-401 with a
// WWW-Authenticate challenge header.
func Unauthorized(userMsg string, internalMsg ...interface{}) Result {
	if userMsg == "" {
		userMsg = "You are not authorized to do that"
	}
	return Err(http.StatusUnauthorized, userMsg, internalMsg...).
		WithHeader("WWW-Authenticate", `Bearer realm="scriptlint server", charset="utf-8"`)
}

// InternalServerError returns an error Result containing an HTTP-500. The
// user is always shown a generic message regardless of the internal one.
func InternalServerError(internalMsg ...interface{}) Result {
	return Err(http.StatusInternalServerError, "An internal server error occurred", internalMsg...)
}

// MethodNotAllowed returns an error Result containing an HTTP-405 for the
// method of req.
func MethodNotAllowed(req *http.Request, internalMsg ...interface{}) Result {
	userMsg := fmt.Sprintf("Method %s is not allowed for %s", req.Method, req.URL.Path)
	return Err(http.StatusMethodNotAllowed, userMsg, internalMsg...)
}

// WithHeader returns a copy of r that additionally carries the given response
// header.
func (r Result) WithHeader(name, val string) Result {
	r.hdrs = append(append([][2]string{}, r.hdrs...), [2]string{name, val})
	return r
}

// WriteResponse marshals and writes r to w. A Result that was not created by
// one of the constructors is a programmer error and panics.
func (r Result) WriteResponse(w http.ResponseWriter) {
	if r.Status == 0 {
		panic("result not populated")
	}

	var respBytes []byte
	if r.Status != http.StatusNoContent {
		var err error
		respBytes, err = json.Marshal(r.resp)
		if err != nil {
			panic(fmt.Sprintf("could not marshal response: %s", err.Error()))
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	for i := range r.hdrs {
		w.Header().Set(r.hdrs[i][0], r.hdrs[i][1])
	}

	w.WriteHeader(r.Status)

	if r.Status != http.StatusNoContent {
		w.Write(respBytes)
	}
}
