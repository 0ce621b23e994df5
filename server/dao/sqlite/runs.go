package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dekarrin/scriptlint/server/dao"
)

type RunsDB struct {
	db *sql.DB
}

func (repo *RunsDB) init() error {
	_, err := repo.db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id TEXT NOT NULL PRIMARY KEY,
		user_id TEXT NOT NULL,
		source_name TEXT NOT NULL,
		created INTEGER NOT NULL,
		diags TEXT NOT NULL
	);`)
	if err != nil {
		return wrapDBError(err)
	}
	return nil
}

func (repo *RunsDB) Close() error {
	return nil
}

func (repo *RunsDB) Create(ctx context.Context, run dao.Run) (dao.Run, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.Run{}, fmt.Errorf("could not generate ID: %w", err)
	}

	_, err = repo.db.ExecContext(ctx,
		`INSERT INTO runs (id, user_id, source_name, created, diags) VALUES (?, ?, ?, ?, ?)`,
		newUUID.String(), run.UserID.String(), run.SourceName, convertToDB_Time(time.Now()), convertToDB_DiagList(run.Diags),
	)
	if err != nil {
		return dao.Run{}, wrapDBError(err)
	}

	return repo.GetByID(ctx, newUUID)
}

func (repo *RunsDB) GetByID(ctx context.Context, id uuid.UUID) (dao.Run, error) {
	row := repo.db.QueryRowContext(ctx,
		`SELECT id, user_id, source_name, created, diags FROM runs WHERE id = ?;`,
		id.String(),
	)
	return scanRun(row)
}

func (repo *RunsDB) GetAllByUser(ctx context.Context, userID uuid.UUID) ([]dao.Run, error) {
	rows, err := repo.db.QueryContext(ctx,
		`SELECT id, user_id, source_name, created, diags FROM runs WHERE user_id = ? ORDER BY created DESC;`,
		userID.String(),
	)
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()
	return scanRuns(rows)
}

func (repo *RunsDB) GetAll(ctx context.Context) ([]dao.Run, error) {
	rows, err := repo.db.QueryContext(ctx, `SELECT id, user_id, source_name, created, diags FROM runs;`)
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()
	return scanRuns(rows)
}

func (repo *RunsDB) Delete(ctx context.Context, id uuid.UUID) (dao.Run, error) {
	run, err := repo.GetByID(ctx, id)
	if err != nil {
		return dao.Run{}, err
	}

	_, err = repo.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?;`, id.String())
	if err != nil {
		return dao.Run{}, wrapDBError(err)
	}

	return run, nil
}

func scanRuns(rows *sql.Rows) ([]dao.Run, error) {
	var all []dao.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		all = append(all, run)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError(err)
	}
	return all, nil
}

func scanRun(row rowScanner) (dao.Run, error) {
	var run dao.Run
	var id, userID, diags string
	var created int64

	err := row.Scan(&id, &userID, &run.SourceName, &created, &diags)
	if err != nil {
		return dao.Run{}, wrapDBError(err)
	}

	if err := convertFromDB_UUID(id, &run.ID); err != nil {
		return dao.Run{}, err
	}
	if err := convertFromDB_UUID(userID, &run.UserID); err != nil {
		return dao.Run{}, err
	}
	if err := convertFromDB_DiagList(diags, &run.Diags); err != nil {
		return dao.Run{}, err
	}
	run.Created = time.Unix(created, 0)

	return run, nil
}
