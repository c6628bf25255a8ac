package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/tradingbuddy/tradingbuddy-engine/pkg/apperrors"
	"github.com/tradingbuddy/tradingbuddy-engine/pkg/auth"
	"github.com/tradingbuddy/tradingbuddy-engine/pkg/models"
	"github.com/tradingbuddy/tradingbuddy-engine/pkg/repositories"
)

// ctxWithUser builds a context carrying an authenticated user identity.
func ctxWithUser(userID uuid.UUID) context.Context {
	claims := &auth.Claims{}
	claims.Subject = userID.String()
	return auth.SetClaims(context.Background(), claims)
}

// mockBrokerConnectionRepo records calls and returns configured values.
type mockBrokerConnectionRepo struct {
	created *models.BrokerConnection
	conn    *models.BrokerConnection
	patch   models.BrokerConnectionPatch
	err     error
}

func (m *mockBrokerConnectionRepo) Create(ctx context.Context, conn *models.BrokerConnection) error {
	m.created = conn
	conn.ID = uuid.New()
	return m.err
}
func (m *mockBrokerConnectionRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.BrokerConnection, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.conn == nil {
		return nil, apperrors.ErrNotFound
	}
	return m.conn, nil
}
func (m *mockBrokerConnectionRepo) List(ctx context.Context, userID uuid.UUID, filter repositories.ListFilter) ([]*models.BrokerConnection, error) {
	return nil, m.err
}
func (m *mockBrokerConnectionRepo) Update(ctx context.Context, userID, id uuid.UUID, patch models.BrokerConnectionPatch) (*models.BrokerConnection, error) {
	m.patch = patch
	if m.err != nil {
		return nil, m.err
	}
	if m.conn == nil {
		return nil, apperrors.ErrNotFound
	}
	return m.conn, nil
}
func (m *mockBrokerConnectionRepo) Delete(ctx context.Context, userID, id uuid.UUID) (*models.BrokerConnection, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.conn == nil {
		return nil, apperrors.ErrNotFound
	}
	return m.conn, nil
}

// mockBacktestRepo records status transitions for run tests.
type mockBacktestRepo struct {
	backtest    *models.Backtest
	transitions []string
	results     string
	statusErr   error
	err         error
}

func (m *mockBacktestRepo) Create(ctx context.Context, bt *models.Backtest) error {
	bt.ID = uuid.New()
	return m.err
}
func (m *mockBacktestRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Backtest, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.backtest == nil {
		return nil, apperrors.ErrNotFound
	}
	return m.backtest, nil
}
func (m *mockBacktestRepo) List(ctx context.Context, userID uuid.UUID, filter repositories.ListFilter) ([]*models.Backtest, error) {
	return nil, m.err
}
func (m *mockBacktestRepo) Update(ctx context.Context, userID, id uuid.UUID, patch models.BacktestPatch) (*models.Backtest, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.backtest, nil
}
func (m *mockBacktestRepo) Delete(ctx context.Context, userID, id uuid.UUID) (*models.Backtest, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.backtest, nil
}
func (m *mockBacktestRepo) SetStatus(ctx context.Context, userID, id uuid.UUID, fromStatus, toStatus string) (*models.Backtest, error) {
	if m.statusErr != nil {
		return nil, m.statusErr
	}
	m.transitions = append(m.transitions, toStatus)
	m.backtest.Status = toStatus
	return m.backtest, nil
}
func (m *mockBacktestRepo) SetResults(ctx context.Context, userID, id uuid.UUID, results string) (*models.Backtest, error) {
	m.results = results
	m.transitions = append(m.transitions, models.BacktestStatusCompleted)
	m.backtest.Status = models.BacktestStatusCompleted
	m.backtest.Results = &results
	return m.backtest, nil
}

// mockPositionRepo returns configured values.
type mockPositionRepo struct {
	created  *models.Position
	position *models.Position
	err      error
}

func (m *mockPositionRepo) Create(ctx context.Context, p *models.Position) error {
	m.created = p
	p.ID = uuid.New()
	return m.err
}
func (m *mockPositionRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Position, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.position == nil {
		return nil, apperrors.ErrNotFound
	}
	return m.position, nil
}
func (m *mockPositionRepo) List(ctx context.Context, userID uuid.UUID, filter repositories.ListFilter) ([]*models.Position, error) {
	return nil, m.err
}
func (m *mockPositionRepo) Update(ctx context.Context, userID, id uuid.UUID, patch models.PositionPatch) (*models.Position, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.position, nil
}
func (m *mockPositionRepo) Delete(ctx context.Context, userID, id uuid.UUID) (*models.Position, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.position, nil
}

// mockWatchlistRepo returns configured values.
type mockWatchlistRepo struct {
	created *models.WatchlistItem
	item    *models.WatchlistItem
	err     error
}

func (m *mockWatchlistRepo) Create(ctx context.Context, item *models.WatchlistItem) error {
	m.created = item
	item.ID = uuid.New()
	return m.err
}
func (m *mockWatchlistRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.WatchlistItem, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.item == nil {
		return nil, apperrors.ErrNotFound
	}
	return m.item, nil
}
func (m *mockWatchlistRepo) List(ctx context.Context, userID uuid.UUID, filter repositories.ListFilter) ([]*models.WatchlistItem, error) {
	return nil, m.err
}
func (m *mockWatchlistRepo) Update(ctx context.Context, userID, id uuid.UUID, patch models.WatchlistItemPatch) (*models.WatchlistItem, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.item, nil
}
func (m *mockWatchlistRepo) Delete(ctx context.Context, userID, id uuid.UUID) (*models.WatchlistItem, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.item, nil
}

// mockNewsRepo returns configured values.
type mockNewsRepo struct {
	created *models.NewsArticle
	article *models.NewsArticle
	err     error
}

func (m *mockNewsRepo) Create(ctx context.Context, article *models.NewsArticle) error {
	m.created = article
	article.ID = uuid.New()
	return m.err
}
func (m *mockNewsRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.NewsArticle, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.article == nil {
		return nil, apperrors.ErrNotFound
	}
	return m.article, nil
}
func (m *mockNewsRepo) List(ctx context.Context, userID uuid.UUID, filter repositories.ListFilter) ([]*models.NewsArticle, error) {
	return nil, m.err
}
func (m *mockNewsRepo) Update(ctx context.Context, userID, id uuid.UUID, patch models.NewsArticlePatch) (*models.NewsArticle, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.article, nil
}
func (m *mockNewsRepo) Delete(ctx context.Context, userID, id uuid.UUID) (*models.NewsArticle, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.article, nil
}

// mockMLModelRepo returns configured values.
type mockMLModelRepo struct {
	created *models.MLModel
	model   *models.MLModel
	owner   uuid.UUID
	err     error
}

func (m *mockMLModelRepo) Create(ctx context.Context, model *models.MLModel) error {
	m.created = model
	model.ID = uuid.New()
	return m.err
}
func (m *mockMLModelRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.MLModel, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.model == nil {
		return nil, apperrors.ErrNotFound
	}
	return m.model, nil
}
func (m *mockMLModelRepo) List(ctx context.Context, filter repositories.ListFilter) ([]*models.MLModel, error) {
	return nil, m.err
}
func (m *mockMLModelRepo) Update(ctx context.Context, userID, id uuid.UUID, patch models.MLModelPatch) (*models.MLModel, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.model == nil {
		return nil, apperrors.ErrNotFound
	}
	if m.owner != uuid.Nil && m.owner != userID {
		return nil, apperrors.ErrForbidden
	}
	return m.model, nil
}
func (m *mockMLModelRepo) Delete(ctx context.Context, userID, id uuid.UUID) (*models.MLModel, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.model == nil {
		return nil, apperrors.ErrNotFound
	}
	if m.owner != uuid.Nil && m.owner != userID {
		return nil, apperrors.ErrForbidden
	}
	return m.model, nil
}

// bodyFromJSON decodes a JSON literal into a request Body, for test
// readability.
func bodyFromJSON(t testingT, raw string) Body {
	var b Body
	if err := json.Unmarshal([]byte(raw), &b); err != nil {
		t.Fatalf("bad test body: %v", err)
	}
	return b
}

type testingT interface {
	Fatalf(format string, args ...any)
}
