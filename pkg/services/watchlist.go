package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tradingbuddy/tradingbuddy-engine/pkg/apperrors"
	"github.com/tradingbuddy/tradingbuddy-engine/pkg/auth"
	"github.com/tradingbuddy/tradingbuddy-engine/pkg/jsonutil"
	"github.com/tradingbuddy/tradingbuddy-engine/pkg/models"
	"github.com/tradingbuddy/tradingbuddy-engine/pkg/repositories"
)

// WatchlistService defines operations on watchlist items.
type WatchlistService interface {
	Create(ctx context.Context, body Body) (*models.WatchlistItem, error)
	Get(ctx context.Context, id uuid.UUID) (*models.WatchlistItem, error)
	List(ctx context.Context, filter repositories.ListFilter) ([]*models.WatchlistItem, error)
	Update(ctx context.Context, id uuid.UUID, body Body) (*models.WatchlistItem, error)
	Delete(ctx context.Context, id uuid.UUID) (*models.WatchlistItem, error)
}

type watchlistService struct {
	repo   repositories.WatchlistRepository
	logger *zap.Logger
}

// NewWatchlistService creates a new watchlist service.
func NewWatchlistService(repo repositories.WatchlistRepository, logger *zap.Logger) WatchlistService {
	return &watchlistService{repo: repo, logger: logger}
}

func (s *watchlistService) validateItem(body Body, create bool) (models.WatchlistItemPatch, error) {
	var patch models.WatchlistItemPatch

	if err := rejectOwnerField(body); err != nil {
		return patch, err
	}

	if create {
		symbol, err := requireString(body, "symbol")
		if err != nil {
			return patch, err
		}
		patch.Symbol = jsonutil.Some(symbol)
	} else if symbol := optionalString(body, "symbol"); symbol.Set {
		if symbol.Null || symbol.Value == "" {
			return patch, missingOnUpdate("symbol")
		}
		patch.Symbol = symbol
	}

	patch.Notes = optionalString(body, "notes")

	target, err := optionalNumber(body, "target_price")
	if err != nil {
		return patch, err
	}
	if target.Set && !target.Null && target.Value <= 0 {
		return patch, apperrors.InvalidField("target_price", "must be greater than zero")
	}
	patch.TargetPrice = target

	alerts, err := optionalBool(body, "alerts_enabled")
	if err != nil {
		return patch, err
	}
	patch.AlertsEnabled = alerts

	return patch, nil
}

func (s *watchlistService) Create(ctx context.Context, body Body) (*models.WatchlistItem, error) {
	userID, err := auth.RequireUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	patch, err := s.validateItem(body, true)
	if err != nil {
		return nil, err
	}

	item := &models.WatchlistItem{
		UserID:        userID,
		Symbol:        patch.Symbol.Value,
		Notes:         patch.Notes.Ptr(),
		TargetPrice:   patch.TargetPrice.Ptr(),
		AlertsEnabled: false,
	}
	if patch.AlertsEnabled.Set && !patch.AlertsEnabled.Null {
		item.AlertsEnabled = patch.AlertsEnabled.Value
	}

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Info("Added watchlist item",
		zap.String("id", item.ID.String()),
		zap.String("symbol", item.Symbol))

	return item, nil
}

func (s *watchlistService) Get(ctx context.Context, id uuid.UUID) (*models.WatchlistItem, error) {
	userID, err := auth.RequireUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, userID, id)
}

func (s *watchlistService) List(ctx context.Context, filter repositories.ListFilter) ([]*models.WatchlistItem, error) {
	userID, err := auth.RequireUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, userID, filter)
}

func (s *watchlistService) Update(ctx context.Context, id uuid.UUID, body Body) (*models.WatchlistItem, error) {
	userID, err := auth.RequireUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	patch, err := s.validateItem(body, false)
	if err != nil {
		return nil, err
	}

	return s.repo.Update(ctx, userID, id, patch)
}

func (s *watchlistService) Delete(ctx context.Context, id uuid.UUID) (*models.WatchlistItem, error) {
	userID, err := auth.RequireUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	item, err := s.repo.Delete(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Removed watchlist item", zap.String("id", id.String()))

	return item, nil
}
