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

// MLModelService defines operations on ML model metadata. Reads are
// global to authenticated callers; mutations are owner-only.
type MLModelService interface {
	Create(ctx context.Context, body Body) (*models.MLModel, error)
	Get(ctx context.Context, id uuid.UUID) (*models.MLModel, error)
	List(ctx context.Context, filter repositories.ListFilter) ([]*models.MLModel, error)
	Update(ctx context.Context, id uuid.UUID, body Body) (*models.MLModel, error)
	Delete(ctx context.Context, id uuid.UUID) (*models.MLModel, error)
}

type mlModelService struct {
	repo   repositories.MLModelRepository
	logger *zap.Logger
}

// NewMLModelService creates a new ML model service.
func NewMLModelService(repo repositories.MLModelRepository, logger *zap.Logger) MLModelService {
	return &mlModelService{repo: repo, logger: logger}
}

func (s *mlModelService) validateModel(body Body, create bool) (models.MLModelPatch, error) {
	var patch models.MLModelPatch

	if err := rejectOwnerField(body); err != nil {
		return patch, err
	}

	if create {
		name, err := requireString(body, "name")
		if err != nil {
			return patch, err
		}
		patch.Name = jsonutil.Some(name)

		modelType, err := requireEnum(body, "model_type", models.AllowedModelTypes, models.IsValidModelType)
		if err != nil {
			return patch, err
		}
		patch.ModelType = jsonutil.Some(modelType)
	} else {
		if name := optionalString(body, "name"); name.Set {
			if name.Null || name.Value == "" {
				return patch, missingOnUpdate("name")
			}
			patch.Name = name
		}

		modelType, err := optionalEnum(body, "model_type", models.AllowedModelTypes, models.IsValidModelType)
		if err != nil {
			return patch, err
		}
		patch.ModelType = modelType
	}

	if version := optionalString(body, "version"); version.Set {
		if version.Null || version.Value == "" {
			return patch, missingOnUpdate("version")
		}
		patch.Version = version
	}

	status, err := optionalEnum(body, "status", models.AllowedModelStatuses, models.IsValidModelStatus)
	if err != nil {
		return patch, err
	}
	patch.Status = status

	hyper, err := optionalBlob(body, "hyperparameters")
	if err != nil {
		return patch, err
	}
	patch.Hyperparameters = hyper

	metrics, err := optionalBlob(body, "metrics")
	if err != nil {
		return patch, err
	}
	patch.Metrics = metrics

	return patch, nil
}

func (s *mlModelService) Create(ctx context.Context, body Body) (*models.MLModel, error) {
	userID, err := auth.RequireUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	patch, err := s.validateModel(body, true)
	if err != nil {
		return nil, err
	}

	model := &models.MLModel{
		UserID:          userID,
		Name:            patch.Name.Value,
		ModelType:       patch.ModelType.Value,
		Version:         "1",
		Status:          models.ModelStatusTraining,
		Hyperparameters: patch.Hyperparameters.Ptr(),
		Metrics:         patch.Metrics.Ptr(),
	}
	if patch.Version.Set && !patch.Version.Null {
		model.Version = patch.Version.Value
	}
	if patch.Status.Set && !patch.Status.Null {
		model.Status = patch.Status.Value
	}

	if err := s.repo.Create(ctx, model); err != nil {
		return nil, err
	}

	s.logger.Info("Created model",
		zap.String("id", model.ID.String()),
		zap.String("type", model.ModelType))

	return model, nil
}

func (s *mlModelService) Get(ctx context.Context, id uuid.UUID) (*models.MLModel, error) {
	if _, err := auth.RequireUserIDFromContext(ctx); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *mlModelService) List(ctx context.Context, filter repositories.ListFilter) ([]*models.MLModel, error) {
	if _, err := auth.RequireUserIDFromContext(ctx); err != nil {
		return nil, err
	}

	if filter.Status != "" && !models.IsValidModelStatus(filter.Status) {
		return nil, apperrors.InvalidEnum("status", filter.Status, models.AllowedModelStatuses)
	}
	if filter.Type != "" && !models.IsValidModelType(filter.Type) {
		return nil, apperrors.InvalidEnum("type", filter.Type, models.AllowedModelTypes)
	}

	return s.repo.List(ctx, filter)
}

func (s *mlModelService) Update(ctx context.Context, id uuid.UUID, body Body) (*models.MLModel, error) {
	userID, err := auth.RequireUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	patch, err := s.validateModel(body, false)
	if err != nil {
		return nil, err
	}

	return s.repo.Update(ctx, userID, id, patch)
}

func (s *mlModelService) Delete(ctx context.Context, id uuid.UUID) (*models.MLModel, error) {
	userID, err := auth.RequireUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	model, err := s.repo.Delete(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Deleted model", zap.String("id", id.String()))

	return model, nil
}
