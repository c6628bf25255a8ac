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

// PositionRepository provides data access for positions.
type PositionRepository interface {
	Create(ctx context.Context, p *models.Position) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Position, error)
	List(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]*models.Position, error)
	Update(ctx context.Context, userID, id uuid.UUID, patch models.PositionPatch) (*models.Position, error)
	Delete(ctx context.Context, userID, id uuid.UUID) (*models.Position, error)
}

type positionRepository struct {
	db *database.DB
}

// NewPositionRepository creates a new PositionRepository.
func NewPositionRepository(db *database.DB) PositionRepository {
	return &positionRepository{db: db}
}

var _ PositionRepository = (*positionRepository)(nil)

const positionColumns = `id, user_id, symbol, side, status, quantity,
		entry_price, exit_price, notes, created_at, updated_at`

func (r *positionRepository) Create(ctx context.Context, p *models.Position) error {
	now := time.Now().UTC()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = now
	p.UpdatedAt = now

	query := `
		INSERT INTO positions (
			id, user_id, symbol, side, status, quantity,
			entry_price, exit_price, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.db.Pool.Exec(ctx, query,
		p.ID, p.UserID, p.Symbol, p.Side, p.Status, p.Quantity,
		p.EntryPrice, p.ExitPrice, p.Notes, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create position: %w", err)
	}

	return nil
}

func (r *positionRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Position, error) {
	query := `
		SELECT ` + positionColumns + `
		FROM positions
		WHERE id = $1 AND user_id = $2`

	row := r.db.Pool.QueryRow(ctx, query, id, userID)
	p, err := scanPosition(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get position: %w", err)
	}
	return p, nil
}

func (r *positionRepository) List(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]*models.Position, error) {
	filter = filter.Normalize()

	query := `
		SELECT ` + positionColumns + `
		FROM positions
		WHERE user_id = $1
		  AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4`

	rows, err := r.db.Pool.Query(ctx, query, userID, filter.Status, filter.Limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list positions: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Position, 0)
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating positions: %w", err)
	}

	return out, nil
}

func (r *positionRepository) Update(ctx context.Context, userID, id uuid.UUID, patch models.PositionPatch) (*models.Position, error) {
	var b setBuilder
	applyOpt(&b, "symbol", patch.Symbol)
	applyOpt(&b, "side", patch.Side)
	applyOpt(&b, "status", patch.Status)
	applyOpt(&b, "quantity", patch.Quantity)
	applyOpt(&b, "entry_price", patch.EntryPrice)
	applyOpt(&b, "exit_price", patch.ExitPrice)
	applyOpt(&b, "notes", patch.Notes)

	if b.empty() {
		return r.GetByID(ctx, userID, id)
	}

	b.add("updated_at", time.Now().UTC())

	query := fmt.Sprintf(`
		UPDATE positions
		%s
		WHERE id = $%d AND user_id = $%d
		RETURNING `+positionColumns,
		b.set(), b.next(), b.next()+1)
	args := append(b.args, id, userID)

	row := r.db.Pool.QueryRow(ctx, query, args...)
	p, err := scanPosition(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update position: %w", err)
	}
	return p, nil
}

func (r *positionRepository) Delete(ctx context.Context, userID, id uuid.UUID) (*models.Position, error) {
	query := `
		DELETE FROM positions
		WHERE id = $1 AND user_id = $2
		RETURNING ` + positionColumns

	row := r.db.Pool.QueryRow(ctx, query, id, userID)
	p, err := scanPosition(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to delete position: %w", err)
	}
	return p, nil
}

func scanPosition(row pgx.Row) (*models.Position, error) {
	var p models.Position
	err := row.Scan(
		&p.ID, &p.UserID, &p.Symbol, &p.Side, &p.Status, &p.Quantity,
		&p.EntryPrice, &p.ExitPrice, &p.Notes, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
