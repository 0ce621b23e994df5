// Package server contains the scriptlint HTTP service: a chi-routed JSON API
// over the same internal/lint pipeline the CLI drives, with optional
// persistence of run history for authenticated users.
//
//	POST   /v1/login      - accepts username/password and returns a JWT.
//	DELETE /v1/login      - ends the active login session (auth required).
//	POST   /v1/users      - registers a new account (auth not required).
//	POST   /v1/lint       - lints a source body; persists the run if authed.
//	GET    /v1/runs       - lists the caller's persisted runs (auth required).
//	GET    /v1/runs/{id}  - gets one persisted run (auth required).
//	GET    /v1/info       - version info on the server and the linter.
package server

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dekarrin/scriptlint/server/api"
	"github.com/dekarrin/scriptlint/server/dao"
	"github.com/dekarrin/scriptlint/server/lints"
	"github.com/dekarrin/scriptlint/server/middle"
)

// ScriptlintServer is an HTTP service wrapping a lints.Service. Create one
// with New, then call ServeForever.
type ScriptlintServer struct {
	router chi.Router
	db     dao.Store
}

// New creates a ScriptlintServer from conf. The config must already have
// passed Validate.
func New(conf Config) (ScriptlintServer, error) {
	db, err := conf.DB.Connect()
	if err != nil {
		return ScriptlintServer{}, fmt.Errorf("connect DB: %w", err)
	}

	unauthDelay := conf.UnauthDelay
	if unauthDelay == 0 {
		unauthDelay = time.Second
	}

	a := api.API{
		Backend:     lints.Service{DB: db},
		UnauthDelay: unauthDelay,
		Secret:      conf.TokenSecret,
	}

	requireAuth := middle.RequireAuth(db.Users(), conf.TokenSecret, unauthDelay)
	optionalAuth := middle.OptionalAuth(db.Users(), conf.TokenSecret, unauthDelay)

	r := chi.NewRouter()
	r.Route(api.PathPrefix, func(r chi.Router) {
		r.Post("/login", a.HTTPCreateLogin())
		r.With(requireAuth).Delete("/login", a.HTTPDeleteLogin())

		r.Post("/users", a.HTTPCreateUser())

		r.With(optionalAuth).Post("/lint", a.HTTPCreateLint())

		r.With(requireAuth).Get("/runs", a.HTTPListRuns())
		r.With(requireAuth).Get("/runs/{id}", a.HTTPGetRun())

		r.With(optionalAuth).Get("/info", a.HTTPGetInfo())
	})

	return ScriptlintServer{
		router: r,
		db:     db,
	}, nil
}

// Router returns the server's configured routes, for mounting in a larger
// mux or for tests to drive directly.
func (ss ScriptlintServer) Router() chi.Router {
	return ss.router
}

// ServeForever begins listening on the given address and port. If address is
// kept as "", it will default to "localhost". If port is less than 1, it
// will default to 8080. This function will block until the server is
// stopped.
func (ss ScriptlintServer) ServeForever(address string, port int) error {
	if address == "" {
		address = "localhost"
	}
	if port < 1 {
		port = 8080
	}

	listenAddress := fmt.Sprintf("%s:%d", address, port)
	log.Printf("INFO  listening on %s", listenAddress)
	return http.ListenAndServe(listenAddress, ss.router)
}

// Close releases the server's persistence resources.
func (ss ScriptlintServer) Close() error {
	return ss.db.Close()
}
