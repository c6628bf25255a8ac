package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tradingbuddy/tradingbuddy-engine/pkg/apperrors"
	"github.com/tradingbuddy/tradingbuddy-engine/pkg/auth"
	"github.com/tradingbuddy/tradingbuddy-engine/pkg/jsonutil"
	"github.com/tradingbuddy/tradingbuddy-engine/pkg/marketdata"
	"github.com/tradingbuddy/tradingbuddy-engine/pkg/models"
	"github.com/tradingbuddy/tradingbuddy-engine/pkg/repositories"
)

// BacktestService defines operations on backtests, including the
// server-driven run step that produces result metrics.
type BacktestService interface {
	Create(ctx context.Context, body Body) (*models.Backtest, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Backtest, error)
	List(ctx context.Context, filter repositories.ListFilter) ([]*models.Backtest, error)
	Update(ctx context.Context, id uuid.UUID, body Body) (*models.Backtest, error)
	Delete(ctx context.Context, id uuid.UUID) (*models.Backtest, error)

	// Run simulates the backtest and stores its result metrics. A
	// backtest that is already running yields ErrConflict.
	Run(ctx context.Context, id uuid.UUID) (*models.Backtest, error)
}

type backtestService struct {
	repo      repositories.BacktestRepository
	simulator marketdata.Simulator
	logger    *zap.Logger
}

// NewBacktestService creates a new backtest service.
func NewBacktestService(
	repo repositories.BacktestRepository,
	simulator marketdata.Simulator,
	logger *zap.Logger,
) BacktestService {
	return &backtestService{
		repo:      repo,
		simulator: simulator,
		logger:    logger,
	}
}

func (s *backtestService) validateBacktest(body Body, create bool) (models.BacktestPatch, error) {
	var patch models.BacktestPatch

	if err := rejectOwnerField(body); err != nil {
		return patch, err
	}

	if create {
		name, err := requireString(body, "name")
		if err != nil {
			return patch, err
		}
		patch.Name = jsonutil.Some(name)

		symbol, err := requireString(body, "symbol")
		if err != nil {
			return patch, err
		}
		patch.Symbol = jsonutil.Some(symbol)

		start, err := requireDate(body, "start_date")
		if err != nil {
			return patch, err
		}
		patch.StartDate = jsonutil.Some(start)

		end, err := requireDate(body, "end_date")
		if err != nil {
			return patch, err
		}
		patch.EndDate = jsonutil.Some(end)

		capital, err := requireNumber(body, "initial_capital")
		if err != nil {
			return patch, err
		}
		patch.InitialCapital = jsonutil.Some(capital)
	} else {
		if name := optionalString(body, "name"); name.Set {
			if name.Null || name.Value == "" {
				return patch, missingOnUpdate("name")
			}
			patch.Name = name
		}

		if symbol := optionalString(body, "symbol"); symbol.Set {
			if symbol.Null || symbol.Value == "" {
				return patch, missingOnUpdate("symbol")
			}
			patch.Symbol = symbol
		}

		start, err := optionalDate(body, "start_date")
		if err != nil {
			return patch, err
		}
		if start.Set && start.Null {
			return patch, missingOnUpdate("start_date")
		}
		patch.StartDate = start

		end, err := optionalDate(body, "end_date")
		if err != nil {
			return patch, err
		}
		if end.Set && end.Null {
			return patch, missingOnUpdate("end_date")
		}
		patch.EndDate = end

		capital, err := optionalNumber(body, "initial_capital")
		if err != nil {
			return patch, err
		}
		if capital.Set && capital.Null {
			return patch, missingOnUpdate("initial_capital")
		}
		patch.InitialCapital = capital
	}

	if patch.InitialCapital.Set && !patch.InitialCapital.Null && patch.InitialCapital.Value <= 0 {
		return patch, apperrors.InvalidField("initial_capital", "must be greater than zero")
	}

	if patch.StartDate.Set && patch.EndDate.Set &&
		!patch.StartDate.Null && !patch.EndDate.Null &&
		!patch.EndDate.Value.After(patch.StartDate.Value) {
		return patch, apperrors.InvalidField("end_date", "must be after start_date")
	}

	modelID, err := optionalUUID(body, "model_id")
	if err != nil {
		return patch, err
	}
	patch.ModelID = modelID

	return patch, nil
}

func (s *backtestService) Create(ctx context.Context, body Body) (*models.Backtest, error) {
	userID, err := auth.RequireUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	patch, err := s.validateBacktest(body, true)
	if err != nil {
		return nil, err
	}

	bt := &models.Backtest{
		UserID:         userID,
		Name:           patch.Name.Value,
		ModelID:        patch.ModelID.Ptr(),
		Symbol:         patch.Symbol.Value,
		StartDate:      patch.StartDate.Value,
		EndDate:        patch.EndDate.Value,
		InitialCapital: patch.InitialCapital.Value,
		Status:         models.BacktestStatusQueued,
	}

	if err := s.repo.Create(ctx, bt); err != nil {
		return nil, err
	}

	s.logger.Info("Created backtest",
		zap.String("id", bt.ID.String()),
		zap.String("symbol", bt.Symbol))

	return bt, nil
}

func (s *backtestService) Get(ctx context.Context, id uuid.UUID) (*models.Backtest, error) {
	userID, err := auth.RequireUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, userID, id)
}

func (s *backtestService) List(ctx context.Context, filter repositories.ListFilter) ([]*models.Backtest, error) {
	userID, err := auth.RequireUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if filter.Status != "" && !models.IsValidBacktestStatus(filter.Status) {
		return nil, apperrors.InvalidEnum("status", filter.Status, models.AllowedBacktestStatuses)
	}

	return s.repo.List(ctx, userID, filter)
}

func (s *backtestService) Update(ctx context.Context, id uuid.UUID, body Body) (*models.Backtest, error) {
	userID, err := auth.RequireUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	patch, err := s.validateBacktest(body, false)
	if err != nil {
		return nil, err
	}

	return s.repo.Update(ctx, userID, id, patch)
}

func (s *backtestService) Delete(ctx context.Context, id uuid.UUID) (*models.Backtest, error) {
	userID, err := auth.RequireUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	bt, err := s.repo.Delete(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Deleted backtest", zap.String("id", id.String()))

	return bt, nil
}

func (s *backtestService) Run(ctx context.Context, id uuid.UUID) (*models.Backtest, error) {
	userID, err := auth.RequireUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	// Resolve existence first so a missing backtest reports 404 rather
	// than a transition conflict.
	bt, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if bt.Status == models.BacktestStatusRunning {
		return nil, apperrors.ErrConflict
	}

	// Claim the run. The predicate on the current status serializes
	// concurrent attempts; the loser sees a conflict.
	if _, err := s.repo.SetStatus(ctx, userID, id, bt.Status, models.BacktestStatusRunning); err != nil {
		return nil, err
	}

	metrics, err := s.simulate(bt)
	if err != nil {
		s.logger.Error("Backtest simulation failed",
			zap.String("id", id.String()),
			zap.Error(err))
		if _, serr := s.repo.SetStatus(ctx, userID, id, models.BacktestStatusRunning, models.BacktestStatusFailed); serr != nil {
			s.logger.Error("Failed to mark backtest failed", zap.Error(serr))
		}
		return nil, fmt.Errorf("backtest simulation failed: %w", err)
	}

	stored, err := json.Marshal(metrics)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize backtest results: %w", err)
	}

	updated, err := s.repo.SetResults(ctx, userID, id, string(stored))
	if err != nil {
		return nil, err
	}

	s.logger.Info("Completed backtest run",
		zap.String("id", id.String()),
		zap.Float64("total_return", metrics.TotalReturn))

	return updated, nil
}

// simulate replays the backtest's date range against the market data
// simulator and summarizes performance.
func (s *backtestService) simulate(bt *models.Backtest) (*marketdata.BacktestMetrics, error) {
	days := int(bt.EndDate.Sub(bt.StartDate).Hours() / 24)
	if days < 2 {
		return nil, errors.New("date range too short to simulate")
	}

	series := s.simulator.DailySeries(bt.Symbol, bt.StartDate, days)
	return marketdata.ComputeBacktestMetrics(series, bt.InitialCapital)
}
