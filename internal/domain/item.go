package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Item
var (
	ErrEmptyItemUserID  = errors.New("item user ID cannot be empty")
	ErrEmptyItemFront   = errors.New("item front cannot be empty")
	ErrItemFrontTooLong = errors.New("item front must be at most 2000 characters")
	ErrItemBackTooLong  = errors.New("item back must be at most 10000 characters")
)

// Item is a learned item owned by a user: the prompt shown to the learner
// (front) and the expected answer (back). Its scheduling state lives in the
// associated MemoryState record, not here.
type Item struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Front     string    `json:"front"`
	Back      string    `json:"back"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewItem creates a new Item for the given user.
// It generates a new UUID and sets the creation/update timestamps.
// Returns an error if validation fails.
func NewItem(userID uuid.UUID, front, back string) (*Item, error) {
	now := time.Now().UTC()
	item := &Item{
		ID:        uuid.New(),
		UserID:    userID,
		Front:     front,
		Back:      back,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := item.Validate(); err != nil {
		return nil, err
	}

	return item, nil
}

// Validate checks if the Item has valid data.
// Returns an error if any field fails validation.
func (i *Item) Validate() error {
	if i.ID == uuid.Nil {
		return ErrInvalidID
	}

	if i.UserID == uuid.Nil {
		return ErrEmptyItemUserID
	}

	if i.Front == "" {
		return ErrEmptyItemFront
	}

	if len(i.Front) > 2000 {
		return ErrItemFrontTooLong
	}

	if len(i.Back) > 10000 {
		return ErrItemBackTooLong
	}

	return nil
}
