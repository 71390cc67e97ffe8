package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/recallhq/recall-api/internal/api/shared"
	"github.com/recallhq/recall-api/internal/domain"
	"github.com/recallhq/recall-api/internal/platform/logger"
	"github.com/recallhq/recall-api/internal/store"
)

// ItemHandler handles CRUD requests for learned items.
type ItemHandler struct {
	itemStore store.ItemStore
	logger    *slog.Logger
	validator *validator.Validate
}

// NewItemHandler creates a new ItemHandler with the given dependencies.
func NewItemHandler(itemStore store.ItemStore, logger *slog.Logger) *ItemHandler {
	if itemStore == nil {
		panic("itemStore cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &ItemHandler{
		itemStore: itemStore,
		logger:    logger.With(slog.String("component", "item_handler")),
		validator: validator.New(),
	}
}

// CreateItem handles POST /items requests.
func (h *ItemHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req CreateItemRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	item, err := domain.NewItem(userID, req.Front, req.Back)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid item data", err)
		return
	}

	if err := h.itemStore.Create(r.Context(), item); err != nil {
		HandleAPIError(w, r, err, "Failed to create item")
		return
	}

	log.Debug("item created",
		slog.String("item_id", item.ID.String()),
		slog.String("user_id", userID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, itemToResponse(item))
}

// GetItem handles GET /items/{id} requests.
func (h *ItemHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	userID, itemID, ok := requireUserAndItem(w, r)
	if !ok {
		return
	}

	item, err := h.itemStore.GetByID(r.Context(), itemID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	// Items are private to their owner; report not-found rather than
	// confirming the item exists.
	if item.UserID != userID {
		shared.RespondWithError(w, r, http.StatusNotFound, "Item not found")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, itemToResponse(item))
}

// ListItems handles GET /items requests.
func (h *ItemHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	items, err := h.itemStore.ListByUser(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list items")
		return
	}

	responses := make([]ItemResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, itemToResponse(item))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// DeleteItem handles DELETE /items/{id} requests.
func (h *ItemHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, itemID, ok := requireUserAndItem(w, r)
	if !ok {
		return
	}

	item, err := h.itemStore.GetByID(r.Context(), itemID)
	if err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			shared.RespondWithError(w, r, http.StatusNotFound, "Item not found")
			return
		}
		HandleAPIError(w, r, err, "")
		return
	}

	if item.UserID != userID {
		shared.RespondWithError(w, r, http.StatusNotFound, "Item not found")
		return
	}

	if err := h.itemStore.Delete(r.Context(), itemID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete item")
		return
	}

	log.Debug("item deleted",
		slog.String("item_id", itemID.String()),
		slog.String("user_id", userID.String()))
	w.WriteHeader(http.StatusNoContent)
}
