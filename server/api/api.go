// Package api provides HTTP API endpoints for the scriptlint server.
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dekarrin/scriptlint/server/lints"
	"github.com/dekarrin/scriptlint/server/result"
	"github.com/dekarrin/scriptlint/server/serr"
)

const (
	// PathPrefix is the prefix of all paths in the API. Routers should mount
	// a sub-router that routes all requests to the API at this path.
	PathPrefix = "/v1"
)

// API holds parameters for endpoints needed to run and a service layer that
// will perform most of the actual logic. To use API, create one and then
// assign the result of its HTTP* methods as handlers to a router or some
// other kind of server mux.
//
// This is exclusively an API for serving external requests. For direct
// programmatic access into the backend of a scriptlint server via Go code,
// see [lints.Service].
type API struct {
	// Backend is the service that the API calls to perform the requested
	// actions.
	Backend lints.Service

	// UnauthDelay is the amount of time that a request will pause before
	// responding with an HTTP-403, HTTP-401, or HTTP-500 to deprioritize
	// such requests from processing and I/O.
	UnauthDelay time.Duration

	// Secret is the secret used to sign JWT tokens.
	Secret []byte
}

// LoginRequest is the request body accepted by the create-login endpoint.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

// UserRequest is the request body accepted by the create-user endpoint.
type UserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email,omitempty"`
}

// UserResponse describes one user account.
type UserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

// LintRequest is the request body accepted by the lint endpoint.
type LintRequest struct {
	// SourceName labels the source in stored runs; optional.
	SourceName string `json:"source_name,omitempty"`

	// Source is the text to lint.
	Source string `json:"source"`

	// Prelude optionally holds a prelude defining built-in names that the
	// source's top-level scope resolves against.
	Prelude string `json:"prelude,omitempty"`
}

// DiagModel is one diagnostic in a lint response, in a shape stable for
// external clients.
type DiagModel struct {
	Line     int    `json:"line,omitempty"`
	Column   int    `json:"column,omitempty"`
	Range    string `json:"range,omitempty"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// LintResponse is returned by the lint endpoint.
type LintResponse struct {
	SourceName string      `json:"source_name"`
	RunID      string      `json:"run_id,omitempty"`
	Diags      []DiagModel `json:"diags"`
}

// RunModel describes one persisted run in a history listing.
type RunModel struct {
	ID         string      `json:"id"`
	SourceName string      `json:"source_name"`
	Created    time.Time   `json:"created"`
	Diags      []DiagModel `json:"diags"`
}

// InfoModel is returned by the info endpoint.
type InfoModel struct {
	Version struct {
		Server     string `json:"server"`
		Scriptlint string `json:"scriptlint"`
	} `json:"version"`
}

// parseJSON unmarshals req's body into v, which must be a pointer type. Will
// return an error such that errors.Is(err, serr.ErrBodyUnmarshal) returns
// true if it is a problem decoding the JSON itself.
func parseJSON(req *http.Request, v interface{}) error {
	contentType := req.Header.Get("Content-Type")

	if strings.ToLower(contentType) != "application/json" {
		return fmt.Errorf("request content-type is not application/json")
	}

	bodyData, err := io.ReadAll(req.Body)
	if err != nil {
		return fmt.Errorf("could not read request body: %w", err)
	}
	defer func() {
		req.Body.Close()
		req.Body = io.NopCloser(bytes.NewBuffer(bodyData))
	}()

	err = json.Unmarshal(bodyData, v)
	if err != nil {
		return serr.New("malformed JSON in request", err, serr.ErrBodyUnmarshal)
	}

	return nil
}

// requireIDParam gets the ID of the main entity being referenced in the URI
// and returns it. It panics if the key is not there or is not parsable.
func requireIDParam(r *http.Request) uuid.UUID {
	id, err := getURLParam(r, "id", uuid.Parse)
	if err != nil {
		panic(err.Error())
	}
	return id
}

func getURLParam[E any](r *http.Request, key string, parse func(string) (E, error)) (val E, err error) {
	valStr := chi.URLParam(r, key)
	if valStr == "" {
		// either it does not exist or it is nil; treat both as the same and
		// return an error
		return val, fmt.Errorf("parameter does not exist")
	}

	val, err = parse(valStr)
	if err != nil {
		return val, serr.New("", serr.ErrBadArgument)
	}
	return val, nil
}

// EndpointFunc is the shape of one API endpoint's logic: consume a request,
// produce a fully-determined result.
type EndpointFunc func(req *http.Request) result.Result

// Endpoint adapts an EndpointFunc into an http.HandlerFunc, providing the
// shared behavior every endpoint gets: panics become HTTP-500s, error
// results are logged, and unauthorized/forbidden/500 responses are delayed
// by unauthDelay to deprioritize them.
func Endpoint(unauthDelay time.Duration, ep EndpointFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		defer panicTo500(w, req)
		r := ep(req)

		// if this hasn't been properly created, output error directly and do
		// not try to read properties
		if r.Status == 0 {
			logHTTPResponse("ERROR", req, http.StatusInternalServerError, "endpoint result was never populated")
			http.Error(w, "An internal server error occurred", http.StatusInternalServerError)
			return
		}

		if r.IsErr {
			logHTTPResponse("ERROR", req, r.Status, r.InternalMsg)
		} else {
			logHTTPResponse("INFO", req, r.Status, r.InternalMsg)
		}

		if r.Status == http.StatusUnauthorized || r.Status == http.StatusForbidden || r.Status == http.StatusInternalServerError {
			// if it's one of these statuses, either the user is improperly
			// logging in or tried to access a forbidden resource, both of
			// which should force the wait time before responding.
			time.Sleep(unauthDelay)
		}

		r.WriteResponse(w)
	}
}

func panicTo500(w http.ResponseWriter, req *http.Request) {
	if panicErr := recover(); panicErr != nil {
		internal := fmt.Sprintf("panic: %v\nSTACK TRACE: %s", panicErr, string(debug.Stack()))
		logHTTPResponse("ERROR", req, http.StatusInternalServerError, internal)
		http.Error(w, "An internal server error occurred", http.StatusInternalServerError)
	}
}

func logHTTPResponse(level string, req *http.Request, respStatus int, msg string) {
	if len(level) > 5 {
		level = level[0:5]
	}

	for len(level) < 5 {
		level += " "
	}

	// we don't really care about the ephemeral port from the client end
	remoteAddrParts := strings.SplitN(req.RemoteAddr, ":", 2)
	remoteIP := remoteAddrParts[0]

	log.Printf("%s %s %s %s: HTTP-%d %s", level, remoteIP, req.Method, req.URL.Path, respStatus, msg)
}
