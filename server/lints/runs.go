package lints

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/dekarrin/scriptlint/internal/lint"
	"github.com/dekarrin/scriptlint/internal/sema"
	"github.com/dekarrin/scriptlint/internal/source"
	"github.com/dekarrin/scriptlint/server/dao"
	"github.com/dekarrin/scriptlint/server/serr"
)

// Lint runs the full linter pipeline over sourceText, optionally resolving
// its top-level scope against preludeText's declarations first, and returns
// every diagnostic produced. The text is never evaluated or executed. The
// names are used only to label diagnostics in stored runs.
func (svc Service) Lint(ctx context.Context, sourceName, sourceText, preludeText string) dao.DiagList {
	var builtin *sema.Scope
	if preludeText != "" {
		preludeSrc := source.NewStringSource("<prelude>", preludeText)
		builtin, _ = lint.LoadPrelude(preludeSrc)
	}

	if sourceName == "" {
		sourceName = "<input>"
	}
	src := source.NewStringSource(sourceName, sourceText)
	res := lint.Run(src, builtin)

	return dao.DiagList(res.Diags)
}

// RecordRun persists a completed lint run for the given user.
//
// The returned error, if non-nil, will match serr.ErrDB if the error occured
// due to an unexpected problem with the DB.
func (svc Service) RecordRun(ctx context.Context, userID uuid.UUID, sourceName string, diags dao.DiagList) (dao.Run, error) {
	run := dao.Run{
		UserID:     userID,
		SourceName: sourceName,
		Diags:      diags,
	}

	saved, err := svc.DB.Runs().Create(ctx, run)
	if err != nil {
		return dao.Run{}, serr.WrapDB("could not record run", err)
	}
	return saved, nil
}

// ListRuns returns every persisted run belonging to the given user, most
// recent first.
//
// The returned error, if non-nil, will match serr.ErrDB if the error occured
// due to an unexpected problem with the DB.
func (svc Service) ListRuns(ctx context.Context, userID uuid.UUID) ([]dao.Run, error) {
	runs, err := svc.DB.Runs().GetAllByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return nil, nil
		}
		return nil, serr.WrapDB("could not list runs", err)
	}
	return runs, nil
}

// GetRun returns one persisted run by ID, enforcing that it belongs to the
// requesting user.
//
// The returned error, if non-nil, will match serr.ErrNotFound if no such run
// exists, serr.ErrPermissions if it belongs to someone else, and serr.ErrDB
// on an unexpected problem with the DB.
func (svc Service) GetRun(ctx context.Context, userID, runID uuid.UUID) (dao.Run, error) {
	run, err := svc.DB.Runs().GetByID(ctx, runID)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return dao.Run{}, serr.ErrNotFound
		}
		return dao.Run{}, serr.WrapDB("could not get run", err)
	}
	if run.UserID != userID {
		return dao.Run{}, serr.ErrPermissions
	}
	return run, nil
}
