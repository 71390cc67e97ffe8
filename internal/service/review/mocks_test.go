package review

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/recallhq/recall-api/internal/domain"
	"github.com/recallhq/recall-api/internal/store"
)

// stateKey identifies a memory state by its composite key.
type stateKey struct {
	userID uuid.UUID
	itemID uuid.UUID
}

// mockItemStore is an in-memory store.ItemStore for testing.
type mockItemStore struct {
	items      map[uuid.UUID]*domain.Item
	nextDue    *domain.Item
	nextDueErr error
	getErr     error
}

func newMockItemStore() *mockItemStore {
	return &mockItemStore{items: make(map[uuid.UUID]*domain.Item)}
}

var _ store.ItemStore = (*mockItemStore)(nil)

func (m *mockItemStore) Create(ctx context.Context, item *domain.Item) error {
	m.items[item.ID] = item
	return nil
}

func (m *mockItemStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	item, ok := m.items[id]
	if !ok {
		return nil, store.ErrItemNotFound
	}
	return item, nil
}

func (m *mockItemStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Item, error) {
	items := []*domain.Item{}
	for _, item := range m.items {
		if item.UserID == userID {
			items = append(items, item)
		}
	}
	return items, nil
}

func (m *mockItemStore) GetNextDue(ctx context.Context, userID uuid.UUID) (*domain.Item, error) {
	if m.nextDueErr != nil {
		return nil, m.nextDueErr
	}
	if m.nextDue == nil {
		return nil, store.ErrItemNotFound
	}
	return m.nextDue, nil
}

func (m *mockItemStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.items[id]; !ok {
		return store.ErrItemNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *mockItemStore) WithTx(tx *sql.Tx) store.ItemStore { return m }

// mockMemoryStateStore is an in-memory store.MemoryStateStore for testing.
type mockMemoryStateStore struct {
	states         map[stateKey]*domain.MemoryState
	forUpdateCalls int
	createErr      error
	updateErr      error
}

func newMockMemoryStateStore() *mockMemoryStateStore {
	return &mockMemoryStateStore{states: make(map[stateKey]*domain.MemoryState)}
}

var _ store.MemoryStateStore = (*mockMemoryStateStore)(nil)

func (m *mockMemoryStateStore) Create(ctx context.Context, state *domain.MemoryState) error {
	if m.createErr != nil {
		return m.createErr
	}
	key := stateKey{state.UserID, state.ItemID}
	if _, ok := m.states[key]; ok {
		return fmt.Errorf("%w: memory state", store.ErrDuplicate)
	}
	m.states[key] = state.Clone()
	return nil
}

func (m *mockMemoryStateStore) Get(ctx context.Context, userID, itemID uuid.UUID) (*domain.MemoryState, error) {
	state, ok := m.states[stateKey{userID, itemID}]
	if !ok {
		return nil, store.ErrMemoryStateNotFound
	}
	return state.Clone(), nil
}

func (m *mockMemoryStateStore) GetForUpdate(ctx context.Context, userID, itemID uuid.UUID) (*domain.MemoryState, error) {
	m.forUpdateCalls++
	return m.Get(ctx, userID, itemID)
}

func (m *mockMemoryStateStore) Update(ctx context.Context, state *domain.MemoryState) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	key := stateKey{state.UserID, state.ItemID}
	if _, ok := m.states[key]; !ok {
		return store.ErrMemoryStateNotFound
	}
	m.states[key] = state.Clone()
	return nil
}

func (m *mockMemoryStateStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.MemoryState, error) {
	states := []*domain.MemoryState{}
	for key, state := range m.states {
		if key.userID == userID {
			states = append(states, state.Clone())
		}
	}
	return states, nil
}

func (m *mockMemoryStateStore) WithTx(tx *sql.Tx) store.MemoryStateStore { return m }

// mockReviewLogStore is an in-memory store.ReviewLogStore for testing.
type mockReviewLogStore struct {
	entries   []*domain.ReviewLog
	createErr error
}

func newMockReviewLogStore() *mockReviewLogStore {
	return &mockReviewLogStore{}
}

var _ store.ReviewLogStore = (*mockReviewLogStore)(nil)

func (m *mockReviewLogStore) Create(ctx context.Context, entry *domain.ReviewLog) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockReviewLogStore) ListByItem(ctx context.Context, userID, itemID uuid.UUID) ([]*domain.ReviewLog, error) {
	entries := []*domain.ReviewLog{}
	for _, entry := range m.entries {
		if entry.UserID == userID && entry.ItemID == itemID {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

func (m *mockReviewLogStore) WithTx(tx *sql.Tx) store.ReviewLogStore { return m }
