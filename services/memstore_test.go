package services

import (
	"context"
	"sync"
	"time"

	"greetbot-backend/models"
	"greetbot-backend/storage"
)

// memStore is an in-memory ParticipantStore with the same optimistic
// concurrency behavior as the real one. forceConflicts makes the next N
// writes fail to exercise the retry path.
type memStore struct {
	mu             sync.Mutex
	rows           map[string]*models.Participant
	forceConflicts int
	failGets       bool
}

func newMemStore() *memStore {
	return &memStore{rows: make(map[string]*models.Participant)}
}

func (m *memStore) Get(ctx context.Context, id string) (*models.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGets {
		return nil, context.DeadlineExceeded
	}
	p, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	cp.Claimed = append(models.ClaimedSet{}, p.Claimed...)
	return &cp, nil
}

func (m *memStore) Create(ctx context.Context, id string) (*models.Participant, error) {
	m.mu.Lock()
	if _, ok := m.rows[id]; !ok {
		m.rows[id] = &models.Participant{ID: id, Claimed: models.ClaimedSet{}}
	}
	m.mu.Unlock()
	return m.Get(ctx, id)
}

func (m *memStore) CompareAndUpdate(ctx context.Context, p *models.Participant, claimed models.ClaimedSet, lastClaim *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.forceConflicts > 0 {
		m.forceConflicts--
		return storage.ErrConflict
	}
	row, ok := m.rows[p.ID]
	if !ok || row.Version != p.Version {
		return storage.ErrConflict
	}
	row.Claimed = append(models.ClaimedSet{}, claimed...)
	row.LastClaimDate = lastClaim
	row.Version++
	return nil
}

func (m *memStore) ListIDs(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.rows))
	for id := range m.rows {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *memStore) seed(id string, claimed models.ClaimedSet) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[id] = &models.Participant{ID: id, Claimed: claimed}
}
