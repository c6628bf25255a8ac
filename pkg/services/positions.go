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

// PositionService defines operations on positions.
type PositionService interface {
	Create(ctx context.Context, body Body) (*models.Position, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Position, error)
	List(ctx context.Context, filter repositories.ListFilter) ([]*models.Position, error)
	Update(ctx context.Context, id uuid.UUID, body Body) (*models.Position, error)
	Delete(ctx context.Context, id uuid.UUID) (*models.Position, error)
}

type positionService struct {
	repo   repositories.PositionRepository
	logger *zap.Logger
}

// NewPositionService creates a new position service.
func NewPositionService(repo repositories.PositionRepository, logger *zap.Logger) PositionService {
	return &positionService{repo: repo, logger: logger}
}

func (s *positionService) validatePosition(body Body, create bool) (models.PositionPatch, error) {
	var patch models.PositionPatch

	if err := rejectOwnerField(body); err != nil {
		return patch, err
	}

	if create {
		symbol, err := requireString(body, "symbol")
		if err != nil {
			return patch, err
		}
		patch.Symbol = jsonutil.Some(symbol)

		side, err := requireEnum(body, "side", models.AllowedPositionSides, models.IsValidPositionSide)
		if err != nil {
			return patch, err
		}
		patch.Side = jsonutil.Some(side)

		quantity, err := requireNumber(body, "quantity")
		if err != nil {
			return patch, err
		}
		patch.Quantity = jsonutil.Some(quantity)

		entry, err := requireNumber(body, "entry_price")
		if err != nil {
			return patch, err
		}
		patch.EntryPrice = jsonutil.Some(entry)
	} else {
		if symbol := optionalString(body, "symbol"); symbol.Set {
			if symbol.Null || symbol.Value == "" {
				return patch, missingOnUpdate("symbol")
			}
			patch.Symbol = symbol
		}

		side, err := optionalEnum(body, "side", models.AllowedPositionSides, models.IsValidPositionSide)
		if err != nil {
			return patch, err
		}
		patch.Side = side

		quantity, err := optionalNumber(body, "quantity")
		if err != nil {
			return patch, err
		}
		if quantity.Set && quantity.Null {
			return patch, missingOnUpdate("quantity")
		}
		patch.Quantity = quantity

		entry, err := optionalNumber(body, "entry_price")
		if err != nil {
			return patch, err
		}
		if entry.Set && entry.Null {
			return patch, missingOnUpdate("entry_price")
		}
		patch.EntryPrice = entry
	}

	if patch.Quantity.Set && !patch.Quantity.Null && patch.Quantity.Value <= 0 {
		return patch, apperrors.InvalidField("quantity", "must be greater than zero")
	}
	if patch.EntryPrice.Set && !patch.EntryPrice.Null && patch.EntryPrice.Value <= 0 {
		return patch, apperrors.InvalidField("entry_price", "must be greater than zero")
	}

	status, err := optionalEnum(body, "status", models.AllowedPositionStatuses, models.IsValidPositionStatus)
	if err != nil {
		return patch, err
	}
	patch.Status = status

	exit, err := optionalNumber(body, "exit_price")
	if err != nil {
		return patch, err
	}
	if exit.Set && !exit.Null && exit.Value <= 0 {
		return patch, apperrors.InvalidField("exit_price", "must be greater than zero")
	}
	patch.ExitPrice = exit

	patch.Notes = optionalString(body, "notes")

	return patch, nil
}

func (s *positionService) Create(ctx context.Context, body Body) (*models.Position, error) {
	userID, err := auth.RequireUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	patch, err := s.validatePosition(body, true)
	if err != nil {
		return nil, err
	}

	p := &models.Position{
		UserID:     userID,
		Symbol:     patch.Symbol.Value,
		Side:       patch.Side.Value,
		Status:     models.PositionStatusOpen,
		Quantity:   patch.Quantity.Value,
		EntryPrice: patch.EntryPrice.Value,
		ExitPrice:  patch.ExitPrice.Ptr(),
		Notes:      patch.Notes.Ptr(),
	}
	if patch.Status.Set && !patch.Status.Null {
		p.Status = patch.Status.Value
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("Created position",
		zap.String("id", p.ID.String()),
		zap.String("symbol", p.Symbol),
		zap.String("side", p.Side))

	return p, nil
}

func (s *positionService) Get(ctx context.Context, id uuid.UUID) (*models.Position, error) {
	userID, err := auth.RequireUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, userID, id)
}

func (s *positionService) List(ctx context.Context, filter repositories.ListFilter) ([]*models.Position, error) {
	userID, err := auth.RequireUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if filter.Status != "" && !models.IsValidPositionStatus(filter.Status) {
		return nil, apperrors.InvalidEnum("status", filter.Status, models.AllowedPositionStatuses)
	}

	return s.repo.List(ctx, userID, filter)
}

func (s *positionService) Update(ctx context.Context, id uuid.UUID, body Body) (*models.Position, error) {
	userID, err := auth.RequireUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	patch, err := s.validatePosition(body, false)
	if err != nil {
		return nil, err
	}

	return s.repo.Update(ctx, userID, id, patch)
}

func (s *positionService) Delete(ctx context.Context, id uuid.UUID) (*models.Position, error) {
	userID, err := auth.RequireUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	p, err := s.repo.Delete(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Deleted position", zap.String("id", id.String()))

	return p, nil
}
