package importer

import (
	"sync"

	"github.com/google/uuid"
)

// orgLocks serializes imports per organization. Two overlapping imports for
// the same org would otherwise race at the storage layer with
// last-commit-wins semantics; holding the org's lock across the whole
// upsert makes the race impossible. Different orgs import concurrently.
type orgLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func newOrgLocks() *orgLocks {
	return &orgLocks{locks: make(map[uuid.UUID]*sync.Mutex)}
}

func (l *orgLocks) get(orgID uuid.UUID) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m := l.locks[orgID]
	if m == nil {
		m = &sync.Mutex{}
		l.locks[orgID] = m
	}
	return m
}
