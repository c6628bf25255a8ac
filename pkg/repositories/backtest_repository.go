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

// BacktestRepository provides data access for backtests.
type BacktestRepository interface {
	Create(ctx context.Context, bt *models.Backtest) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Backtest, error)
	List(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]*models.Backtest, error)
	Update(ctx context.Context, userID, id uuid.UUID, patch models.BacktestPatch) (*models.Backtest, error)
	Delete(ctx context.Context, userID, id uuid.UUID) (*models.Backtest, error)

	// SetStatus transitions the server-managed status field. When
	// fromStatus is non-empty the transition only applies if the current
	// status matches, which serializes concurrent run attempts.
	SetStatus(ctx context.Context, userID, id uuid.UUID, fromStatus, toStatus string) (*models.Backtest, error)
	// SetResults stores run output and marks the backtest completed.
	SetResults(ctx context.Context, userID, id uuid.UUID, results string) (*models.Backtest, error)
}

type backtestRepository struct {
	db *database.DB
}

// NewBacktestRepository creates a new BacktestRepository.
func NewBacktestRepository(db *database.DB) BacktestRepository {
	return &backtestRepository{db: db}
}

var _ BacktestRepository = (*backtestRepository)(nil)

const backtestColumns = `id, user_id, name, model_id, symbol, start_date, end_date,
		initial_capital, status, results, created_at, updated_at`

func (r *backtestRepository) Create(ctx context.Context, bt *models.Backtest) error {
	now := time.Now().UTC()
	if bt.ID == uuid.Nil {
		bt.ID = uuid.New()
	}
	bt.CreatedAt = now
	bt.UpdatedAt = now

	query := `
		INSERT INTO backtests (
			id, user_id, name, model_id, symbol, start_date, end_date,
			initial_capital, status, results, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.db.Pool.Exec(ctx, query,
		bt.ID, bt.UserID, bt.Name, bt.ModelID, bt.Symbol, bt.StartDate, bt.EndDate,
		bt.InitialCapital, bt.Status, bt.Results, bt.CreatedAt, bt.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create backtest: %w", err)
	}

	return nil
}

func (r *backtestRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Backtest, error) {
	query := `
		SELECT ` + backtestColumns + `
		FROM backtests
		WHERE id = $1 AND user_id = $2`

	row := r.db.Pool.QueryRow(ctx, query, id, userID)
	bt, err := scanBacktest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get backtest: %w", err)
	}
	return bt, nil
}

func (r *backtestRepository) List(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]*models.Backtest, error) {
	filter = filter.Normalize()

	query := `
		SELECT ` + backtestColumns + `
		FROM backtests
		WHERE user_id = $1
		  AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4`

	rows, err := r.db.Pool.Query(ctx, query, userID, filter.Status, filter.Limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list backtests: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Backtest, 0)
	for rows.Next() {
		bt, err := scanBacktest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan backtest: %w", err)
		}
		out = append(out, bt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating backtests: %w", err)
	}

	return out, nil
}

func (r *backtestRepository) Update(ctx context.Context, userID, id uuid.UUID, patch models.BacktestPatch) (*models.Backtest, error) {
	var b setBuilder
	applyOpt(&b, "name", patch.Name)
	applyOpt(&b, "model_id", patch.ModelID)
	applyOpt(&b, "symbol", patch.Symbol)
	applyOpt(&b, "start_date", patch.StartDate)
	applyOpt(&b, "end_date", patch.EndDate)
	applyOpt(&b, "initial_capital", patch.InitialCapital)

	if b.empty() {
		return r.GetByID(ctx, userID, id)
	}

	b.add("updated_at", time.Now().UTC())

	query := fmt.Sprintf(`
		UPDATE backtests
		%s
		WHERE id = $%d AND user_id = $%d
		RETURNING `+backtestColumns,
		b.set(), b.next(), b.next()+1)
	args := append(b.args, id, userID)

	row := r.db.Pool.QueryRow(ctx, query, args...)
	bt, err := scanBacktest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update backtest: %w", err)
	}
	return bt, nil
}

func (r *backtestRepository) Delete(ctx context.Context, userID, id uuid.UUID) (*models.Backtest, error) {
	query := `
		DELETE FROM backtests
		WHERE id = $1 AND user_id = $2
		RETURNING ` + backtestColumns

	row := r.db.Pool.QueryRow(ctx, query, id, userID)
	bt, err := scanBacktest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to delete backtest: %w", err)
	}
	return bt, nil
}

func (r *backtestRepository) SetStatus(ctx context.Context, userID, id uuid.UUID, fromStatus, toStatus string) (*models.Backtest, error) {
	query := `
		UPDATE backtests
		SET status = $1, updated_at = $2
		WHERE id = $3 AND user_id = $4
		  AND ($5 = '' OR status = $5)
		RETURNING ` + backtestColumns

	row := r.db.Pool.QueryRow(ctx, query, toStatus, time.Now().UTC(), id, userID, fromStatus)
	bt, err := scanBacktest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Either the row is gone or another request won the
			// transition. The service resolves which.
			return nil, apperrors.ErrConflict
		}
		return nil, fmt.Errorf("failed to set backtest status: %w", err)
	}
	return bt, nil
}

func (r *backtestRepository) SetResults(ctx context.Context, userID, id uuid.UUID, results string) (*models.Backtest, error) {
	query := `
		UPDATE backtests
		SET results = $1, status = $2, updated_at = $3
		WHERE id = $4 AND user_id = $5
		RETURNING ` + backtestColumns

	row := r.db.Pool.QueryRow(ctx, query, results, models.BacktestStatusCompleted, time.Now().UTC(), id, userID)
	bt, err := scanBacktest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to store backtest results: %w", err)
	}
	return bt, nil
}

func scanBacktest(row pgx.Row) (*models.Backtest, error) {
	var bt models.Backtest
	err := row.Scan(
		&bt.ID, &bt.UserID, &bt.Name, &bt.ModelID, &bt.Symbol, &bt.StartDate, &bt.EndDate,
		&bt.InitialCapital, &bt.Status, &bt.Results, &bt.CreatedAt, &bt.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &bt, nil
}
