package handlers

import (
	"context"

	"github.com/google/uuid"

	"github.com/tradingbuddy/tradingbuddy-engine/pkg/marketdata"
	"github.com/tradingbuddy/tradingbuddy-engine/pkg/models"
	"github.com/tradingbuddy/tradingbuddy-engine/pkg/repositories"
	"github.com/tradingbuddy/tradingbuddy-engine/pkg/services"
)

// mockBrokerConnectionService is a configurable mock for handler tests.
type mockBrokerConnectionService struct {
	conn  *models.BrokerConnection
	conns []*models.BrokerConnection
	err   error
}

func (m *mockBrokerConnectionService) Create(ctx context.Context, body services.Body) (*models.BrokerConnection, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.conn, nil
}
func (m *mockBrokerConnectionService) Get(ctx context.Context, id uuid.UUID) (*models.BrokerConnection, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.conn, nil
}
func (m *mockBrokerConnectionService) List(ctx context.Context, filter repositories.ListFilter) ([]*models.BrokerConnection, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.conns, nil
}
func (m *mockBrokerConnectionService) Update(ctx context.Context, id uuid.UUID, body services.Body) (*models.BrokerConnection, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.conn, nil
}
func (m *mockBrokerConnectionService) Delete(ctx context.Context, id uuid.UUID) (*models.BrokerConnection, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.conn, nil
}
func (m *mockBrokerConnectionService) MaskedAPIKey(conn *models.BrokerConnection) string {
	if conn == nil || conn.APIKeyEncrypted == nil {
		return ""
	}
	return "****mock"
}

// mockMLModelService is a configurable mock for handler tests.
type mockMLModelService struct {
	model  *models.MLModel
	models []*models.MLModel
	err    error
}

func (m *mockMLModelService) Create(ctx context.Context, body services.Body) (*models.MLModel, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.model, nil
}
func (m *mockMLModelService) Get(ctx context.Context, id uuid.UUID) (*models.MLModel, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.model, nil
}
func (m *mockMLModelService) List(ctx context.Context, filter repositories.ListFilter) ([]*models.MLModel, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.models, nil
}
func (m *mockMLModelService) Update(ctx context.Context, id uuid.UUID, body services.Body) (*models.MLModel, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.model, nil
}
func (m *mockMLModelService) Delete(ctx context.Context, id uuid.UUID) (*models.MLModel, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.model, nil
}

// mockBacktestService is a configurable mock for handler tests.
type mockBacktestService struct {
	backtest  *models.Backtest
	backtests []*models.Backtest
	err       error
	runErr    error
}

func (m *mockBacktestService) Create(ctx context.Context, body services.Body) (*models.Backtest, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.backtest, nil
}
func (m *mockBacktestService) Get(ctx context.Context, id uuid.UUID) (*models.Backtest, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.backtest, nil
}
func (m *mockBacktestService) List(ctx context.Context, filter repositories.ListFilter) ([]*models.Backtest, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.backtests, nil
}
func (m *mockBacktestService) Update(ctx context.Context, id uuid.UUID, body services.Body) (*models.Backtest, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.backtest, nil
}
func (m *mockBacktestService) Delete(ctx context.Context, id uuid.UUID) (*models.Backtest, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.backtest, nil
}
func (m *mockBacktestService) Run(ctx context.Context, id uuid.UUID) (*models.Backtest, error) {
	if m.runErr != nil {
		return nil, m.runErr
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.backtest, nil
}

// mockPositionService is a configurable mock for handler tests.
type mockPositionService struct {
	position  *models.Position
	positions []*models.Position
	err       error
}

func (m *mockPositionService) Create(ctx context.Context, body services.Body) (*models.Position, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.position, nil
}
func (m *mockPositionService) Get(ctx context.Context, id uuid.UUID) (*models.Position, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.position, nil
}
func (m *mockPositionService) List(ctx context.Context, filter repositories.ListFilter) ([]*models.Position, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.positions, nil
}
func (m *mockPositionService) Update(ctx context.Context, id uuid.UUID, body services.Body) (*models.Position, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.position, nil
}
func (m *mockPositionService) Delete(ctx context.Context, id uuid.UUID) (*models.Position, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.position, nil
}

// mockWatchlistService is a configurable mock for handler tests.
type mockWatchlistService struct {
	item  *models.WatchlistItem
	items []*models.WatchlistItem
	err   error
}

func (m *mockWatchlistService) Create(ctx context.Context, body services.Body) (*models.WatchlistItem, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.item, nil
}
func (m *mockWatchlistService) Get(ctx context.Context, id uuid.UUID) (*models.WatchlistItem, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.item, nil
}
func (m *mockWatchlistService) List(ctx context.Context, filter repositories.ListFilter) ([]*models.WatchlistItem, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.items, nil
}
func (m *mockWatchlistService) Update(ctx context.Context, id uuid.UUID, body services.Body) (*models.WatchlistItem, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.item, nil
}
func (m *mockWatchlistService) Delete(ctx context.Context, id uuid.UUID) (*models.WatchlistItem, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.item, nil
}

// mockNewsService is a configurable mock for handler tests.
type mockNewsService struct {
	article  *models.NewsArticle
	articles []*models.NewsArticle
	filter   repositories.ListFilter
	err      error
}

func (m *mockNewsService) Create(ctx context.Context, body services.Body) (*models.NewsArticle, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.article, nil
}
func (m *mockNewsService) Get(ctx context.Context, id uuid.UUID) (*models.NewsArticle, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.article, nil
}
func (m *mockNewsService) List(ctx context.Context, filter repositories.ListFilter) ([]*models.NewsArticle, error) {
	m.filter = filter
	if m.err != nil {
		return nil, m.err
	}
	return m.articles, nil
}
func (m *mockNewsService) Update(ctx context.Context, id uuid.UUID, body services.Body) (*models.NewsArticle, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.article, nil
}
func (m *mockNewsService) Delete(ctx context.Context, id uuid.UUID) (*models.NewsArticle, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.article, nil
}

// mockMarketService is a configurable mock for handler tests.
type mockMarketService struct {
	quote      *marketdata.Quote
	indicators *marketdata.Indicators
	err        error
}

func (m *mockMarketService) Quote(ctx context.Context, symbol string) (*marketdata.Quote, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.quote, nil
}
func (m *mockMarketService) Indicators(ctx context.Context, symbol string) (*marketdata.Indicators, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.indicators, nil
}
