// Package sqlite provides a sqlite3-backed implementation of the scriptlint
// server's data store, using the CGo-free modernc.org driver.
package sqlite

import (
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"net/mail"
	"path/filepath"
	"time"

	"github.com/dekarrin/rezi"
	"github.com/google/uuid"
	"modernc.org/sqlite"

	"github.com/dekarrin/scriptlint/server/dao"
	"github.com/dekarrin/scriptlint/server/serr"
)

type store struct {
	dbFilename string

	db *sql.DB

	users *UsersDB
	runs  *RunsDB
}

func NewDatastore(storageDir string) (dao.Store, error) {
	st := &store{
		dbFilename: "data.db",
	}

	fileName := filepath.Join(storageDir, st.dbFilename)

	var err error
	st.db, err = sql.Open("sqlite", fileName)
	if err != nil {
		return nil, wrapDBError(err)
	}

	st.users = &UsersDB{db: st.db}
	if err := st.users.init(); err != nil {
		return nil, err
	}

	st.runs = &RunsDB{db: st.db}
	if err := st.runs.init(); err != nil {
		return nil, err
	}

	return st, nil
}

func (s *store) Users() dao.UserRepository {
	return s.users
}

func (s *store) Runs() dao.RunRepository {
	return s.runs
}

func (s *store) Close() error {
	return s.db.Close()
}

func wrapDBError(err error) error {
	sqliteErr := &sqlite.Error{}
	if errors.As(err, &sqliteErr) {
		if sqliteErr.Code() == 19 {
			return dao.ErrConstraintViolation
		}
		return fmt.Errorf("%s", sqlite.ErrorCodeString[sqliteErr.Code()])
	} else if errors.Is(err, sql.ErrNoRows) {
		return dao.ErrNotFound
	}
	return err
}

// convertToDB_Email converts a *mail.Address to storage DB format. If the
// pointer is nil, it will return the zero value.
func convertToDB_Email(email *mail.Address) string {
	if email == nil {
		return ""
	}
	return email.Address
}

// convertFromDB_Email converts storage DB format value to a *mail.Address and
// stores it at the address pointed to by target. If the zero value is
// provided, target is set to a nil pointer. If there is a problem with the
// decoding, the returned error will wrap dao.ErrDecodingFailure and target
// will not have been modified.
func convertFromDB_Email(s string, target **mail.Address) error {
	if s == "" {
		*target = nil
		return nil
	}
	email, err := mail.ParseAddress(s)
	if err != nil {
		return serr.New("parse stored email", err, dao.ErrDecodingFailure)
	}
	*target = email
	return nil
}

// convertToDB_Time converts a time.Time to storage DB format on disk.
func convertToDB_Time(t time.Time) int64 {
	return t.Unix()
}

// convertToDB_DiagList converts recorded diagnostics to storage DB format on
// disk: the rezi-encoded bytes, base64'd so they fit a TEXT column.
func convertToDB_DiagList(dl dao.DiagList) string {
	data := rezi.EncBinary(dl)
	return base64.StdEncoding.EncodeToString(data)
}

// convertFromDB_DiagList converts a storage DB format value to a
// dao.DiagList and stores it at the address pointed to by target. If there
// is a problem with the decoding, the returned error will wrap
// dao.ErrDecodingFailure.
func convertFromDB_DiagList(s string, target *dao.DiagList) error {
	if s == "" {
		*target = nil
		return nil
	}

	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return serr.New("decode stored to bytes", err, dao.ErrDecodingFailure)
	}

	dl := dao.DiagList{}
	n, err := rezi.DecBinary(data, &dl)
	if err != nil {
		return serr.New("REZI decode", err, dao.ErrDecodingFailure)
	}
	if n != len(data) {
		return serr.New(fmt.Sprintf("REZI decoded byte count mismatch; only consumed %d/%d bytes", n, len(data)), dao.ErrDecodingFailure)
	}

	*target = dl
	return nil
}

// convertFromDB_UUID converts a storage DB format value to a uuid.UUID and
// stores it at the address pointed to by target.
func convertFromDB_UUID(s string, target *uuid.UUID) error {
	u, err := uuid.Parse(s)
	if err != nil {
		return serr.New("parse stored ID", err, dao.ErrDecodingFailure)
	}
	*target = u
	return nil
}
