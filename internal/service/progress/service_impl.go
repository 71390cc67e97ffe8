package progress

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/recallhq/recall-api/internal/domain"
	"github.com/recallhq/recall-api/internal/domain/srs"
	"github.com/recallhq/recall-api/internal/platform/logger"
	"github.com/recallhq/recall-api/internal/store"
)

// Verify interface compliance at compile time
var _ ProgressService = (*progressServiceImpl)(nil)

// progressServiceImpl implements the ProgressService interface.
type progressServiceImpl struct {
	itemStore   store.ItemStore
	memoryStore store.MemoryStateStore
	scheduler   srs.Service
	logger      *slog.Logger
	timeFunc    func() time.Time // Injectable for testing
}

// NewProgressService creates a new ProgressService implementation.
func NewProgressService(
	itemStore store.ItemStore,
	memoryStore store.MemoryStateStore,
	scheduler srs.Service,
	logger *slog.Logger,
) ProgressService {
	if itemStore == nil {
		panic("itemStore cannot be nil")
	}
	if memoryStore == nil {
		panic("memoryStore cannot be nil")
	}
	if scheduler == nil {
		panic("scheduler cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &progressServiceImpl{
		itemStore:   itemStore,
		memoryStore: memoryStore,
		scheduler:   scheduler,
		logger:      logger.With(slog.String("component", "progress_service")),
		timeFunc:    time.Now,
	}
}

// GetProfile implements ProgressService.GetProfile.
func (s *progressServiceImpl) GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	now := s.timeFunc().UTC()

	items, err := s.itemStore.ListByUser(ctx, userID)
	if err != nil {
		log.Error("failed to list items for profile",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	states, err := s.memoryStore.ListByUser(ctx, userID)
	if err != nil {
		log.Error("failed to list memory states for profile",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, fmt.Errorf("failed to list memory states: %w", err)
	}

	profile := &Profile{
		UserID:      userID,
		TotalItems:  len(items),
		GeneratedAt: now,
	}

	var healthSum float64
	for _, state := range states {
		if !isScheduled(state) {
			continue
		}

		profile.ScheduledItems++
		profile.TotalReps += state.Reps
		profile.TotalLapses += state.Lapses
		if state.State == domain.StateReview {
			profile.LearnedItems++
		}
		healthSum += s.scheduler.Retrievability(state, now)
	}

	if profile.ScheduledItems > 0 {
		profile.RealmHealth = healthSum / float64(profile.ScheduledItems)
	}

	profile.XP = computeXP(profile.TotalReps, profile.LearnedItems, profile.TotalLapses)
	profile.Level = levelForXP(profile.XP)
	profile.Badges = awardBadges(profile)

	log.Debug("profile generated",
		slog.String("user_id", userID.String()),
		slog.Int("xp", profile.XP),
		slog.Int("level", profile.Level),
		slog.Float64("realm_health", profile.RealmHealth))

	return profile, nil
}

// computeXP scores effort: reviews earn, graduations earn more, lapses cost a
// little. Never negative.
func computeXP(reps, learned, lapses int) int {
	xp := reps*xpPerRep + learned*xpPerLearned - lapses*xpPerLapse
	if xp < 0 {
		return 0
	}
	return xp
}

// levelForXP maps XP onto a quadratic curve: level n starts at
// (n-1)^2 * xpLevelBase XP, so early levels come quickly and later ones
// stretch out.
func levelForXP(xp int) int {
	if xp < 0 {
		return 1
	}
	return int(math.Floor(math.Sqrt(float64(xp)/xpLevelBase))) + 1
}

// awardBadges evaluates every badge rule against the finished profile.
// Returns an empty slice rather than nil so the JSON field is always an array.
func awardBadges(p *Profile) []string {
	badges := []string{}

	if p.TotalReps >= 1 {
		badges = append(badges, BadgeFirstSteps)
	}
	if p.TotalReps >= 100 {
		badges = append(badges, BadgeCommitted)
	}
	if p.LearnedItems >= 10 {
		badges = append(badges, BadgeScholar)
	}
	if p.ScheduledItems >= 5 && p.RealmHealth >= 0.95 {
		badges = append(badges, BadgeIronMemory)
	}
	if p.TotalLapses >= 10 {
		badges = append(badges, BadgeComeback)
	}

	return badges
}
