package api

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/recallhq/recall-api/internal/api/shared"
	"github.com/recallhq/recall-api/internal/domain"
	"github.com/recallhq/recall-api/internal/service/auth"
	"github.com/recallhq/recall-api/internal/service/progress"
	"github.com/recallhq/recall-api/internal/service/review"
	"github.com/recallhq/recall-api/internal/store"
)

// --- test doubles ---

type mockUserStore struct {
	users     map[string]*domain.User // keyed by email
	createErr error
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{users: make(map[string]*domain.User)}
}

func (m *mockUserStore) Create(ctx context.Context, user *domain.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	if _, exists := m.users[user.Email]; exists {
		return store.ErrEmailExists
	}
	m.users[user.Email] = user
	return nil
}

func (m *mockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, ok := m.users[email]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return u, nil
}

type mockItemStore struct {
	items   map[uuid.UUID]*domain.Item
	nextDue *domain.Item
	err     error
}

func newMockItemStore() *mockItemStore {
	return &mockItemStore{items: make(map[uuid.UUID]*domain.Item)}
}

func (m *mockItemStore) Create(ctx context.Context, item *domain.Item) error {
	if m.err != nil {
		return m.err
	}
	m.items[item.ID] = item
	return nil
}

func (m *mockItemStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	if m.err != nil {
		return nil, m.err
	}
	item, ok := m.items[id]
	if !ok {
		return nil, store.ErrItemNotFound
	}
	return item, nil
}

func (m *mockItemStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Item, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]*domain.Item, 0)
	for _, item := range m.items {
		if item.UserID == userID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (m *mockItemStore) GetNextDue(ctx context.Context, userID uuid.UUID) (*domain.Item, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.nextDue == nil {
		return nil, store.ErrItemNotFound
	}
	return m.nextDue, nil
}

func (m *mockItemStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.items[id]; !ok {
		return store.ErrItemNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *mockItemStore) WithTx(tx *sql.Tx) store.ItemStore { return m }

type mockJWTService struct {
	userID      uuid.UUID
	generateErr error
	validateErr error
}

func (m *mockJWTService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	if m.generateErr != nil {
		return "", m.generateErr
	}
	return "access-token-" + userID.String(), nil
}

func (m *mockJWTService) GenerateRefreshToken(ctx context.Context, userID uuid.UUID) (string, error) {
	if m.generateErr != nil {
		return "", m.generateErr
	}
	return "refresh-token-" + userID.String(), nil
}

func (m *mockJWTService) ValidateToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	if m.validateErr != nil {
		return nil, m.validateErr
	}
	return &auth.Claims{UserID: m.userID, TokenType: "access"}, nil
}

func (m *mockJWTService) ValidateRefreshToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	if m.validateErr != nil {
		return nil, m.validateErr
	}
	return &auth.Claims{UserID: m.userID, TokenType: "refresh"}, nil
}

type mockPasswordVerifier struct {
	compareErr error
}

func (m *mockPasswordVerifier) Compare(hashedPassword, password string) error {
	return m.compareErr
}

type mockReviewService struct {
	nextItem       *domain.Item
	state          *domain.MemoryState
	retrievability float64
	history        []*domain.ReviewLog
	err            error
}

func (m *mockReviewService) GetNextItem(ctx context.Context, userID uuid.UUID) (*domain.Item, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.nextItem, nil
}

func (m *mockReviewService) SubmitReview(ctx context.Context, userID, itemID uuid.UUID, submission review.ReviewSubmission) (*domain.MemoryState, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.state, nil
}

func (m *mockReviewService) Postpone(ctx context.Context, userID, itemID uuid.UUID, days int) (*domain.MemoryState, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.state, nil
}

func (m *mockReviewService) Retrievability(ctx context.Context, userID, itemID uuid.UUID) (float64, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.retrievability, nil
}

func (m *mockReviewService) History(ctx context.Context, userID, itemID uuid.UUID) ([]*domain.ReviewLog, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.history, nil
}

type mockProgressService struct {
	profile *progress.Profile
	err     error
}

func (m *mockProgressService) GetProfile(ctx context.Context, userID uuid.UUID) (*progress.Profile, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.profile, nil
}

var (
	_ store.UserStore          = (*mockUserStore)(nil)
	_ store.ItemStore          = (*mockItemStore)(nil)
	_ auth.JWTService          = (*mockJWTService)(nil)
	_ auth.PasswordVerifier    = (*mockPasswordVerifier)(nil)
	_ review.ReviewService     = (*mockReviewService)(nil)
	_ progress.ProgressService = (*mockProgressService)(nil)
)

// --- request helpers ---

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newAuthedRequest builds a request carrying an authenticated user ID, as
// the auth middleware would have left it.
func newAuthedRequest(method, target string, body string, userID uuid.UUID) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	ctx := context.WithValue(req.Context(), shared.UserIDContextKey, userID)
	return req.WithContext(ctx)
}

// withPathParam attaches a chi route parameter to the request.
func withPathParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

var errBoom = errors.New("boom")
