package api

import (
	"errors"
	"net/http"

	"github.com/dekarrin/scriptlint/internal/diag"
	"github.com/dekarrin/scriptlint/server/dao"
	"github.com/dekarrin/scriptlint/server/middle"
	"github.com/dekarrin/scriptlint/server/result"
	"github.com/dekarrin/scriptlint/server/serr"
)

func toDiagModel(d diag.Diag) DiagModel {
	m := DiagModel{
		Severity: d.Severity.String(),
		Message:  d.Message,
	}
	if d.Caret.Valid() {
		m.Line = d.Caret.Line
		m.Column = d.Caret.Col
	}
	if d.Range.Valid() {
		m.Range = d.Range.String()
	}
	return m
}

func toDiagModels(diags dao.DiagList) []DiagModel {
	models := make([]DiagModel, len(diags))
	for i, d := range diags {
		models[i] = toDiagModel(d)
	}
	return models
}

// HTTPCreateLint returns a HandlerFunc that lints a source text and returns
// the diagnostics found. If the caller is logged in, the run is additionally
// persisted to their history.
func (api API) HTTPCreateLint() http.HandlerFunc {
	return Endpoint(api.UnauthDelay, api.epCreateLint)
}

func (api API) epCreateLint(req *http.Request) result.Result {
	lintData := LintRequest{}
	err := parseJSON(req, &lintData)
	if err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}
	if lintData.Source == "" {
		return result.BadRequest("source: property is empty or missing from request", "empty source")
	}

	diags := api.Backend.Lint(req.Context(), lintData.SourceName, lintData.Source, lintData.Prelude)

	resp := LintResponse{
		SourceName: lintData.SourceName,
		Diags:      toDiagModels(diags),
	}
	if resp.SourceName == "" {
		resp.SourceName = "<input>"
	}

	who := "unauthed client"
	user, loggedIn := middle.GetLoggedInUser(req)
	if loggedIn {
		run, err := api.Backend.RecordRun(req.Context(), user.ID, resp.SourceName, diags)
		if err != nil {
			return result.InternalServerError(err.Error())
		}
		resp.RunID = run.ID.String()
		who = "user '" + user.Username + "'"
	}

	return result.OK(resp, "%s linted %s: %d diagnostic(s)", who, resp.SourceName, len(resp.Diags))
}

// HTTPListRuns returns a HandlerFunc that lists the authenticated user's
// persisted runs, most recent first.
func (api API) HTTPListRuns() http.HandlerFunc {
	return Endpoint(api.UnauthDelay, api.epListRuns)
}

func (api API) epListRuns(req *http.Request) result.Result {
	user, loggedIn := middle.GetLoggedInUser(req)
	if !loggedIn {
		return result.Unauthorized("", "list runs by unauthed client")
	}

	runs, err := api.Backend.ListRuns(req.Context(), user.ID)
	if err != nil {
		return result.InternalServerError(err.Error())
	}

	models := make([]RunModel, len(runs))
	for i, run := range runs {
		models[i] = RunModel{
			ID:         run.ID.String(),
			SourceName: run.SourceName,
			Created:    run.Created,
			Diags:      toDiagModels(run.Diags),
		}
	}

	return result.OK(models, "user '%s' listed %d run(s)", user.Username, len(models))
}

// HTTPGetRun returns a HandlerFunc that retrieves one of the authenticated
// user's persisted runs by ID.
func (api API) HTTPGetRun() http.HandlerFunc {
	return Endpoint(api.UnauthDelay, api.epGetRun)
}

func (api API) epGetRun(req *http.Request) result.Result {
	user, loggedIn := middle.GetLoggedInUser(req)
	if !loggedIn {
		return result.Unauthorized("", "get run by unauthed client")
	}

	id := requireIDParam(req)

	run, err := api.Backend.GetRun(req.Context(), user.ID, id)
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return result.NotFound("run %s does not exist", id)
		}
		if errors.Is(err, serr.ErrPermissions) {
			return result.Forbidden("user '%s' does not own run %s", user.Username, id)
		}
		return result.InternalServerError(err.Error())
	}

	model := RunModel{
		ID:         run.ID.String(),
		SourceName: run.SourceName,
		Created:    run.Created,
		Diags:      toDiagModels(run.Diags),
	}
	return result.OK(model, "user '%s' got run %s", user.Username, id)
}
