package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tradingbuddy/tradingbuddy-engine/pkg/apperrors"
	"github.com/tradingbuddy/tradingbuddy-engine/pkg/database"
	"github.com/tradingbuddy/tradingbuddy-engine/pkg/models"
)

// MLModelRepository provides data access for ML model metadata. Models
// are readable by any authenticated user, so reads take no user scope;
// mutations verify ownership and distinguish "not yours" from "gone"
// (reads already reveal existence).
type MLModelRepository interface {
	Create(ctx context.Context, model *models.MLModel) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.MLModel, error)
	List(ctx context.Context, filter ListFilter) ([]*models.MLModel, error)
	Update(ctx context.Context, userID, id uuid.UUID, patch models.MLModelPatch) (*models.MLModel, error)
	Delete(ctx context.Context, userID, id uuid.UUID) (*models.MLModel, error)
}

type mlModelRepository struct {
	db *database.DB
}

// NewMLModelRepository creates a new MLModelRepository.
func NewMLModelRepository(db *database.DB) MLModelRepository {
	return &mlModelRepository{db: db}
}

var _ MLModelRepository = (*mlModelRepository)(nil)

const mlModelColumns = `id, user_id, name, model_type, version, status,
		hyperparameters, metrics, created_at, updated_at`

func (r *mlModelRepository) Create(ctx context.Context, model *models.MLModel) error {
	now := time.Now().UTC()
	if model.ID == uuid.Nil {
		model.ID = uuid.New()
	}
	model.CreatedAt = now
	model.UpdatedAt = now

	query := `
		INSERT INTO ml_models (
			id, user_id, name, model_type, version, status,
			hyperparameters, metrics, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.Pool.Exec(ctx, query,
		model.ID, model.UserID, model.Name, model.ModelType, model.Version, model.Status,
		model.Hyperparameters, model.Metrics, model.CreatedAt, model.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create model: %w", err)
	}

	return nil
}

func (r *mlModelRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.MLModel, error) {
	query := `
		SELECT ` + mlModelColumns + `
		FROM ml_models
		WHERE id = $1`

	row := r.db.Pool.QueryRow(ctx, query, id)
	model, err := scanMLModel(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get model: %w", err)
	}
	return model, nil
}

func (r *mlModelRepository) List(ctx context.Context, filter ListFilter) ([]*models.MLModel, error) {
	filter = filter.Normalize()

	query := `
		SELECT ` + mlModelColumns + `
		FROM ml_models
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = '' OR model_type = $2)
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4`

	rows, err := r.db.Pool.Query(ctx, query, filter.Status, filter.Type, filter.Limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}
	defer rows.Close()

	out := make([]*models.MLModel, 0)
	for rows.Next() {
		m, err := scanMLModel(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan model: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating models: %w", err)
	}

	return out, nil
}

// checkOwnership resolves the mutation precondition: the row must exist
// and belong to userID. Returns ErrNotFound or ErrForbidden accordingly.
func (r *mlModelRepository) checkOwnership(ctx context.Context, userID, id uuid.UUID) error {
	var ownerID uuid.UUID
	err := r.db.Pool.QueryRow(ctx, `SELECT user_id FROM ml_models WHERE id = $1`, id).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to check model ownership: %w", err)
	}
	if ownerID != userID {
		return apperrors.ErrForbidden
	}
	return nil
}

func (r *mlModelRepository) Update(ctx context.Context, userID, id uuid.UUID, patch models.MLModelPatch) (*models.MLModel, error) {
	if err := r.checkOwnership(ctx, userID, id); err != nil {
		return nil, err
	}

	var b setBuilder
	applyOpt(&b, "name", patch.Name)
	applyOpt(&b, "model_type", patch.ModelType)
	applyOpt(&b, "version", patch.Version)
	applyOpt(&b, "status", patch.Status)
	applyOpt(&b, "hyperparameters", patch.Hyperparameters)
	applyOpt(&b, "metrics", patch.Metrics)

	if b.empty() {
		return r.GetByID(ctx, id)
	}

	b.add("updated_at", time.Now().UTC())

	query := fmt.Sprintf(`
		UPDATE ml_models
		%s
		WHERE id = $%d AND user_id = $%d
		RETURNING `+mlModelColumns,
		b.set(), b.next(), b.next()+1)
	args := append(b.args, id, userID)

	row := r.db.Pool.QueryRow(ctx, query, args...)
	model, err := scanMLModel(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Ownership check passed moments ago; the row vanished in
			// between. Surface as an internal error, not a silent miss.
			return nil, fmt.Errorf("model %s disappeared during update", id)
		}
		return nil, fmt.Errorf("failed to update model: %w", err)
	}
	return model, nil
}

func (r *mlModelRepository) Delete(ctx context.Context, userID, id uuid.UUID) (*models.MLModel, error) {
	if err := r.checkOwnership(ctx, userID, id); err != nil {
		return nil, err
	}

	query := `
		DELETE FROM ml_models
		WHERE id = $1 AND user_id = $2
		RETURNING ` + mlModelColumns

	row := r.db.Pool.QueryRow(ctx, query, id, userID)
	model, err := scanMLModel(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to delete model: %w", err)
	}
	return model, nil
}

func scanMLModel(row pgx.Row) (*models.MLModel, error) {
	var m models.MLModel
	err := row.Scan(
		&m.ID, &m.UserID, &m.Name, &m.ModelType, &m.Version, &m.Status,
		&m.Hyperparameters, &m.Metrics, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
