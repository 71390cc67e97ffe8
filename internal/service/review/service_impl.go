package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/recallhq/recall-api/internal/domain"
	"github.com/recallhq/recall-api/internal/domain/srs"
	"github.com/recallhq/recall-api/internal/platform/logger"
	"github.com/recallhq/recall-api/internal/store"
)

// Verify interface compliance at compile time
var _ ReviewService = (*reviewServiceImpl)(nil)

// reviewServiceImpl implements the ReviewService interface.
type reviewServiceImpl struct {
	db          *sql.DB
	itemStore   store.ItemStore
	memoryStore store.MemoryStateStore
	logStore    store.ReviewLogStore
	scheduler   srs.Service
	logger      *slog.Logger

	timeFunc func() time.Time                                  // Injectable for testing
	runTx    func(context.Context, *sql.DB, store.TxFn) error // Injectable for testing
}

// NewReviewService creates a new ReviewService implementation.
func NewReviewService(
	db *sql.DB,
	itemStore store.ItemStore,
	memoryStore store.MemoryStateStore,
	logStore store.ReviewLogStore,
	scheduler srs.Service,
	logger *slog.Logger,
) ReviewService {
	if itemStore == nil {
		panic("itemStore cannot be nil")
	}
	if memoryStore == nil {
		panic("memoryStore cannot be nil")
	}
	if logStore == nil {
		panic("logStore cannot be nil")
	}
	if scheduler == nil {
		panic("scheduler cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &reviewServiceImpl{
		db:          db,
		itemStore:   itemStore,
		memoryStore: memoryStore,
		logStore:    logStore,
		scheduler:   scheduler,
		logger:      logger.With(slog.String("component", "review_service")),
		timeFunc:    time.Now,
		runTx:       store.RunInTransaction,
	}
}

// GetNextItem implements ReviewService.GetNextItem.
func (s *reviewServiceImpl) GetNextItem(ctx context.Context, userID uuid.UUID) (*domain.Item, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	item, err := s.itemStore.GetNextDue(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			log.Debug("no items due for review", slog.String("user_id", userID.String()))
			return nil, ErrNoItemsDue
		}

		log.Error("failed to get next due item",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, fmt.Errorf("failed to get next due item: %w", err)
	}

	return item, nil
}

// SubmitReview implements ReviewService.SubmitReview.
func (s *reviewServiceImpl) SubmitReview(
	ctx context.Context,
	userID, itemID uuid.UUID,
	submission ReviewSubmission,
) (*domain.MemoryState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !submission.Rating.IsValid() {
		log.Warn("invalid rating submitted",
			slog.String("user_id", userID.String()),
			slog.String("item_id", itemID.String()),
			slog.Int("rating", int(submission.Rating)))
		return nil, fmt.Errorf("%w: %d", ErrInvalidRating, int(submission.Rating))
	}

	now := s.timeFunc().UTC()

	var updated *domain.MemoryState
	err := s.runTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		items := s.itemStore.WithTx(tx)
		states := s.memoryStore.WithTx(tx)
		logs := s.logStore.WithTx(tx)

		item, err := items.GetByID(ctx, itemID)
		if err != nil {
			if errors.Is(err, store.ErrItemNotFound) {
				return ErrItemNotFound
			}
			return fmt.Errorf("failed to get item: %w", err)
		}

		if item.UserID != userID {
			log.Warn("user does not own item",
				slog.String("user_id", userID.String()),
				slog.String("item_id", itemID.String()))
			return ErrItemNotOwned
		}

		// The row lock holds until commit, so a concurrent grading of the
		// same item waits here and then sees this grading's result.
		current, err := states.GetForUpdate(ctx, userID, itemID)
		firstReview := false
		if err != nil {
			if !errors.Is(err, store.ErrMemoryStateNotFound) {
				return fmt.Errorf("failed to get memory state: %w", err)
			}
			firstReview = true
			current, err = s.scheduler.EmptyState(userID, itemID, now)
			if err != nil {
				return fmt.Errorf("failed to create empty memory state: %w", err)
			}
		}

		// Captured before scheduling replaces last_review.
		elapsed := s.scheduler.ElapsedDays(current, now)

		next, err := s.scheduler.Schedule(current, submission.Rating, now)
		if err != nil {
			return fmt.Errorf("failed to schedule review: %w", err)
		}

		if firstReview {
			if err := states.Create(ctx, next); err != nil {
				return fmt.Errorf("failed to create memory state: %w", err)
			}
		} else {
			if err := states.Update(ctx, next); err != nil {
				return fmt.Errorf("failed to update memory state: %w", err)
			}
		}

		entry := domain.NewReviewLog(userID, itemID, submission.Rating, elapsed, now)
		if err := logs.Create(ctx, entry); err != nil {
			return fmt.Errorf("failed to append review log: %w", err)
		}

		updated = next
		return nil
	})

	if err != nil {
		if errors.Is(err, ErrItemNotFound) || errors.Is(err, ErrItemNotOwned) {
			return nil, err
		}

		log.Error("failed to submit review",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("item_id", itemID.String()))
		return nil, fmt.Errorf("failed to submit review: %w", err)
	}

	log.Info("review submitted",
		slog.String("user_id", userID.String()),
		slog.String("item_id", itemID.String()),
		slog.String("rating", submission.Rating.String()),
		slog.String("state", updated.State.String()),
		slog.Float64("stability", updated.Stability),
		slog.Float64("difficulty", updated.Difficulty),
		slog.Time("due", updated.Due))

	return updated, nil
}

// Postpone implements ReviewService.Postpone.
func (s *reviewServiceImpl) Postpone(
	ctx context.Context,
	userID, itemID uuid.UUID,
	days int,
) (*domain.MemoryState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	now := s.timeFunc().UTC()

	var updated *domain.MemoryState
	err := s.runTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		states := s.memoryStore.WithTx(tx)

		current, err := states.GetForUpdate(ctx, userID, itemID)
		if err != nil {
			if errors.Is(err, store.ErrMemoryStateNotFound) {
				return ErrNotScheduled
			}
			return fmt.Errorf("failed to get memory state: %w", err)
		}

		next, err := s.scheduler.Postpone(current, days, now)
		if err != nil {
			return err
		}

		if err := states.Update(ctx, next); err != nil {
			return fmt.Errorf("failed to update memory state: %w", err)
		}

		updated = next
		return nil
	})

	if err != nil {
		if errors.Is(err, ErrNotScheduled) || errors.Is(err, srs.ErrInvalidDays) {
			return nil, err
		}

		log.Error("failed to postpone item",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("item_id", itemID.String()))
		return nil, fmt.Errorf("failed to postpone item: %w", err)
	}

	log.Info("item postponed",
		slog.String("user_id", userID.String()),
		slog.String("item_id", itemID.String()),
		slog.Int("days", days),
		slog.Time("due", updated.Due))

	return updated, nil
}

// Retrievability implements ReviewService.Retrievability.
func (s *reviewServiceImpl) Retrievability(ctx context.Context, userID, itemID uuid.UUID) (float64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	state, err := s.memoryStore.Get(ctx, userID, itemID)
	if err != nil {
		if errors.Is(err, store.ErrMemoryStateNotFound) {
			// Never reviewed means no recall signal.
			return 0, nil
		}

		log.Error("failed to get memory state for retrievability",
			slog.String("error", err.Error()),
			slog.String("item_id", itemID.String()))
		return 0, fmt.Errorf("failed to get memory state: %w", err)
	}

	return s.scheduler.Retrievability(state, s.timeFunc().UTC()), nil
}

// History implements ReviewService.History.
func (s *reviewServiceImpl) History(ctx context.Context, userID, itemID uuid.UUID) ([]*domain.ReviewLog, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	entries, err := s.logStore.ListByItem(ctx, userID, itemID)
	if err != nil {
		log.Error("failed to list review history",
			slog.String("error", err.Error()),
			slog.String("item_id", itemID.String()))
		return nil, fmt.Errorf("failed to list review history: %w", err)
	}

	return entries, nil
}
