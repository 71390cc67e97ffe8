package progress

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recallhq/recall-api/internal/domain"
	"github.com/recallhq/recall-api/internal/domain/srs"
	"github.com/recallhq/recall-api/internal/store"
)

// fakeItemStore serves a fixed item list; only ListByUser matters here.
type fakeItemStore struct {
	items []*domain.Item
	err   error
}

var _ store.ItemStore = (*fakeItemStore)(nil)

func (f *fakeItemStore) Create(ctx context.Context, item *domain.Item) error { return nil }
func (f *fakeItemStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	return nil, store.ErrItemNotFound
}
func (f *fakeItemStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Item, error) {
	return f.items, f.err
}
func (f *fakeItemStore) GetNextDue(ctx context.Context, userID uuid.UUID) (*domain.Item, error) {
	return nil, store.ErrItemNotFound
}
func (f *fakeItemStore) Delete(ctx context.Context, id uuid.UUID) error { return nil }
func (f *fakeItemStore) WithTx(tx *sql.Tx) store.ItemStore              { return f }

// fakeMemoryStore serves a fixed memory state list.
type fakeMemoryStore struct {
	states []*domain.MemoryState
	err    error
}

var _ store.MemoryStateStore = (*fakeMemoryStore)(nil)

func (f *fakeMemoryStore) Create(ctx context.Context, state *domain.MemoryState) error { return nil }
func (f *fakeMemoryStore) Get(ctx context.Context, userID, itemID uuid.UUID) (*domain.MemoryState, error) {
	return nil, store.ErrMemoryStateNotFound
}
func (f *fakeMemoryStore) GetForUpdate(ctx context.Context, userID, itemID uuid.UUID) (*domain.MemoryState, error) {
	return nil, store.ErrMemoryStateNotFound
}
func (f *fakeMemoryStore) Update(ctx context.Context, state *domain.MemoryState) error { return nil }
func (f *fakeMemoryStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.MemoryState, error) {
	return f.states, f.err
}
func (f *fakeMemoryStore) WithTx(tx *sql.Tx) store.MemoryStateStore { return f }

func newTestService(items *fakeItemStore, states *fakeMemoryStore, now time.Time) *progressServiceImpl {
	return &progressServiceImpl{
		itemStore:   items,
		memoryStore: states,
		scheduler:   srs.NewDefaultService(),
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		timeFunc:    func() time.Time { return now },
	}
}

// reviewState builds a record in the long-term review stage whose last review
// was elapsedDays ago.
func reviewState(userID uuid.UUID, stability float64, reps, lapses int, elapsedDays float64, now time.Time) *domain.MemoryState {
	last := now.Add(-time.Duration(elapsedDays * 24 * float64(time.Hour)))
	return &domain.MemoryState{
		UserID:     userID,
		ItemID:     uuid.New(),
		Stability:  stability,
		Difficulty: 5,
		Reps:       reps,
		Lapses:     lapses,
		State:      domain.StateReview,
		LastReview: last,
		Due:        now,
		CreatedAt:  last,
		UpdatedAt:  last,
	}
}

func TestGetProfileEmptyUser(t *testing.T) {
	now := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	svc := newTestService(&fakeItemStore{}, &fakeMemoryStore{}, now)

	profile, err := svc.GetProfile(context.Background(), uuid.New())
	require.NoError(t, err)

	assert.Equal(t, 0, profile.TotalItems)
	assert.Equal(t, 0, profile.ScheduledItems)
	assert.Equal(t, 0, profile.XP)
	assert.Equal(t, 1, profile.Level, "everyone starts at level 1")
	assert.Equal(t, 0.0, profile.RealmHealth)
	assert.Empty(t, profile.Badges)
	assert.NotNil(t, profile.Badges, "badges must serialize as an array")
	assert.Equal(t, now, profile.GeneratedAt)
}

func TestGetProfileSkipsUnscheduledRecords(t *testing.T) {
	now := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	userID := uuid.New()

	fresh, err := domain.NewMemoryState(userID, uuid.New(), now)
	require.NoError(t, err)

	items := &fakeItemStore{items: []*domain.Item{{ID: uuid.New()}, {ID: uuid.New()}}}
	states := &fakeMemoryStore{states: []*domain.MemoryState{
		fresh, // state New, stability 0: never scheduled
		reviewState(userID, 10, 3, 0, 10, now),
	}}

	profile, err := newTestService(items, states, now).GetProfile(context.Background(), userID)
	require.NoError(t, err)

	assert.Equal(t, 2, profile.TotalItems)
	assert.Equal(t, 1, profile.ScheduledItems, "new record is excluded")
	assert.Equal(t, 3, profile.TotalReps)
	// One record exactly at its stability horizon: retrievability 0.9.
	assert.InDelta(t, 0.9, profile.RealmHealth, 1e-9)
}

func TestGetProfileXPAndLevel(t *testing.T) {
	now := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	userID := uuid.New()

	// 12 reps, 1 learned item, 2 lapses: 120 + 50 - 10 = 160 XP.
	states := &fakeMemoryStore{states: []*domain.MemoryState{
		reviewState(userID, 20, 12, 2, 1, now),
	}}

	profile, err := newTestService(&fakeItemStore{}, states, now).GetProfile(context.Background(), userID)
	require.NoError(t, err)

	assert.Equal(t, 160, profile.XP)
	assert.Equal(t, 2, profile.Level, "160 XP clears the 100 XP threshold for level 2")
	assert.Contains(t, profile.Badges, BadgeFirstSteps)
	assert.NotContains(t, profile.Badges, BadgeCommitted)
}

func TestLevelForXP(t *testing.T) {
	tests := []struct {
		xp    int
		level int
	}{
		{xp: 0, level: 1},
		{xp: 99, level: 1},
		{xp: 100, level: 2},
		{xp: 399, level: 2},
		{xp: 400, level: 3},
		{xp: 900, level: 4},
		{xp: -50, level: 1},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.level, levelForXP(tc.xp), "xp=%d", tc.xp)
	}
}

func TestComputeXPNeverNegative(t *testing.T) {
	assert.Equal(t, 0, computeXP(1, 0, 100))
}

func TestAwardBadges(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		want    []string
	}{
		{
			name:    "no activity earns nothing",
			profile: Profile{},
			want:    []string{},
		},
		{
			name:    "single rep earns first steps",
			profile: Profile{TotalReps: 1},
			want:    []string{BadgeFirstSteps},
		},
		{
			name:    "heavy reviewer",
			profile: Profile{TotalReps: 150, LearnedItems: 12},
			want:    []string{BadgeFirstSteps, BadgeCommitted, BadgeScholar},
		},
		{
			name: "iron memory needs breadth and health",
			profile: Profile{
				TotalReps:      20,
				ScheduledItems: 5,
				RealmHealth:    0.96,
			},
			want: []string{BadgeFirstSteps, BadgeIronMemory},
		},
		{
			name: "healthy but too few items",
			profile: Profile{
				TotalReps:      20,
				ScheduledItems: 4,
				RealmHealth:    0.99,
			},
			want: []string{BadgeFirstSteps},
		},
		{
			name:    "lapses earn the comeback badge",
			profile: Profile{TotalReps: 30, TotalLapses: 10},
			want:    []string{BadgeFirstSteps, BadgeComeback},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, awardBadges(&tc.profile))
		})
	}
}

func TestGetProfileStoreErrors(t *testing.T) {
	now := time.Now().UTC()

	t.Run("item store failure", func(t *testing.T) {
		svc := newTestService(&fakeItemStore{err: errors.New("boom")}, &fakeMemoryStore{}, now)
		_, err := svc.GetProfile(context.Background(), uuid.New())
		assert.Error(t, err)
	})

	t.Run("memory store failure", func(t *testing.T) {
		svc := newTestService(&fakeItemStore{}, &fakeMemoryStore{err: errors.New("boom")}, now)
		_, err := svc.GetProfile(context.Background(), uuid.New())
		assert.Error(t, err)
	})
}

func TestNewProgressServicePanicsOnNilDeps(t *testing.T) {
	items := &fakeItemStore{}
	states := &fakeMemoryStore{}
	scheduler := srs.NewDefaultService()

	assert.Panics(t, func() { NewProgressService(nil, states, scheduler, nil) })
	assert.Panics(t, func() { NewProgressService(items, nil, scheduler, nil) })
	assert.Panics(t, func() { NewProgressService(items, states, nil, nil) })
}
