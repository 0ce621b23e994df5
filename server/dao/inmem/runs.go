package inmem

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dekarrin/scriptlint/internal/util"
	"github.com/dekarrin/scriptlint/server/dao"
)

func NewRunsRepository() *InMemoryRunsRepository {
	return &InMemoryRunsRepository{
		runs:        make(map[uuid.UUID]dao.Run),
		byUserIndex: make(map[uuid.UUID][]uuid.UUID),
	}
}

type InMemoryRunsRepository struct {
	mtx         sync.RWMutex
	runs        map[uuid.UUID]dao.Run
	byUserIndex map[uuid.UUID][]uuid.UUID
}

func (imrr *InMemoryRunsRepository) Close() error {
	return nil
}

func (imrr *InMemoryRunsRepository) Create(ctx context.Context, run dao.Run) (dao.Run, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.Run{}, fmt.Errorf("could not generate ID: %w", err)
	}

	imrr.mtx.Lock()
	defer imrr.mtx.Unlock()

	run.ID = newUUID
	run.Created = time.Now()

	imrr.runs[run.ID] = run
	imrr.byUserIndex[run.UserID] = append(imrr.byUserIndex[run.UserID], run.ID)

	return run, nil
}

func (imrr *InMemoryRunsRepository) GetByID(ctx context.Context, id uuid.UUID) (dao.Run, error) {
	imrr.mtx.RLock()
	defer imrr.mtx.RUnlock()

	run, ok := imrr.runs[id]
	if !ok {
		return dao.Run{}, dao.ErrNotFound
	}
	return run, nil
}

func (imrr *InMemoryRunsRepository) GetAllByUser(ctx context.Context, userID uuid.UUID) ([]dao.Run, error) {
	imrr.mtx.RLock()
	defer imrr.mtx.RUnlock()

	ids := imrr.byUserIndex[userID]
	all := make([]dao.Run, 0, len(ids))
	for _, id := range ids {
		all = append(all, imrr.runs[id])
	}

	all = util.SortBy(all, func(l, r dao.Run) bool {
		return l.Created.After(r.Created)
	})

	return all, nil
}

func (imrr *InMemoryRunsRepository) GetAll(ctx context.Context) ([]dao.Run, error) {
	imrr.mtx.RLock()
	defer imrr.mtx.RUnlock()

	all := make([]dao.Run, 0, len(imrr.runs))
	for k := range imrr.runs {
		all = append(all, imrr.runs[k])
	}

	all = util.SortBy(all, func(l, r dao.Run) bool {
		return l.ID.String() < r.ID.String()
	})

	return all, nil
}

func (imrr *InMemoryRunsRepository) Delete(ctx context.Context, id uuid.UUID) (dao.Run, error) {
	imrr.mtx.Lock()
	defer imrr.mtx.Unlock()

	run, ok := imrr.runs[id]
	if !ok {
		return dao.Run{}, dao.ErrNotFound
	}

	delete(imrr.runs, id)

	byUser := imrr.byUserIndex[run.UserID]
	for i, rid := range byUser {
		if rid == id {
			imrr.byUserIndex[run.UserID] = append(byUser[:i], byUser[i+1:]...)
			break
		}
	}

	return run, nil
}
