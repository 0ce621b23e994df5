// Package inmem provides an in-memory implementation of the scriptlint
// server's data store. It is the default store, suitable for tests and for
// running the service without any persistence set up.
package inmem

import (
	"github.com/dekarrin/scriptlint/server/dao"
)

type store struct {
	users *InMemoryUsersRepository
	runs  *InMemoryRunsRepository
}

func NewDatastore() dao.Store {
	return &store{
		users: NewUsersRepository(),
		runs:  NewRunsRepository(),
	}
}

func (s *store) Users() dao.UserRepository {
	return s.users
}

func (s *store) Runs() dao.RunRepository {
	return s.runs
}

func (s *store) Close() error {
	err := s.users.Close()
	if nextErr := s.runs.Close(); err == nil {
		err = nextErr
	}
	return err
}
