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

// WatchlistRepository provides data access for watchlist items.
type WatchlistRepository interface {
	Create(ctx context.Context, item *models.WatchlistItem) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.WatchlistItem, error)
	List(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]*models.WatchlistItem, error)
	Update(ctx context.Context, userID, id uuid.UUID, patch models.WatchlistItemPatch) (*models.WatchlistItem, error)
	Delete(ctx context.Context, userID, id uuid.UUID) (*models.WatchlistItem, error)
}

type watchlistRepository struct {
	db *database.DB
}

// NewWatchlistRepository creates a new WatchlistRepository.
func NewWatchlistRepository(db *database.DB) WatchlistRepository {
	return &watchlistRepository{db: db}
}

var _ WatchlistRepository = (*watchlistRepository)(nil)

const watchlistColumns = `id, user_id, symbol, notes, target_price,
		alerts_enabled, created_at, updated_at`

func (r *watchlistRepository) Create(ctx context.Context, item *models.WatchlistItem) error {
	now := time.Now().UTC()
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	item.CreatedAt = now
	item.UpdatedAt = now

	query := `
		INSERT INTO watchlist_items (
			id, user_id, symbol, notes, target_price,
			alerts_enabled, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Pool.Exec(ctx, query,
		item.ID, item.UserID, item.Symbol, item.Notes, item.TargetPrice,
		item.AlertsEnabled, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.ErrConflict
		}
		return fmt.Errorf("failed to create watchlist item: %w", err)
	}

	return nil
}

func (r *watchlistRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.WatchlistItem, error) {
	query := `
		SELECT ` + watchlistColumns + `
		FROM watchlist_items
		WHERE id = $1 AND user_id = $2`

	row := r.db.Pool.QueryRow(ctx, query, id, userID)
	item, err := scanWatchlistItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get watchlist item: %w", err)
	}
	return item, nil
}

func (r *watchlistRepository) List(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]*models.WatchlistItem, error) {
	filter = filter.Normalize()

	query := `
		SELECT ` + watchlistColumns + `
		FROM watchlist_items
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Pool.Query(ctx, query, userID, filter.Limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list watchlist items: %w", err)
	}
	defer rows.Close()

	out := make([]*models.WatchlistItem, 0)
	for rows.Next() {
		item, err := scanWatchlistItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan watchlist item: %w", err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating watchlist items: %w", err)
	}

	return out, nil
}

func (r *watchlistRepository) Update(ctx context.Context, userID, id uuid.UUID, patch models.WatchlistItemPatch) (*models.WatchlistItem, error) {
	var b setBuilder
	applyOpt(&b, "symbol", patch.Symbol)
	applyOpt(&b, "notes", patch.Notes)
	applyOpt(&b, "target_price", patch.TargetPrice)
	applyOpt(&b, "alerts_enabled", patch.AlertsEnabled)

	if b.empty() {
		return r.GetByID(ctx, userID, id)
	}

	b.add("updated_at", time.Now().UTC())

	query := fmt.Sprintf(`
		UPDATE watchlist_items
		%s
		WHERE id = $%d AND user_id = $%d
		RETURNING `+watchlistColumns,
		b.set(), b.next(), b.next()+1)
	args := append(b.args, id, userID)

	row := r.db.Pool.QueryRow(ctx, query, args...)
	item, err := scanWatchlistItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		if database.IsUniqueViolation(err) {
			return nil, apperrors.ErrConflict
		}
		return nil, fmt.Errorf("failed to update watchlist item: %w", err)
	}
	return item, nil
}

func (r *watchlistRepository) Delete(ctx context.Context, userID, id uuid.UUID) (*models.WatchlistItem, error) {
	query := `
		DELETE FROM watchlist_items
		WHERE id = $1 AND user_id = $2
		RETURNING ` + watchlistColumns

	row := r.db.Pool.QueryRow(ctx, query, id, userID)
	item, err := scanWatchlistItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to delete watchlist item: %w", err)
	}
	return item, nil
}

func scanWatchlistItem(row pgx.Row) (*models.WatchlistItem, error) {
	var item models.WatchlistItem
	err := row.Scan(
		&item.ID, &item.UserID, &item.Symbol, &item.Notes, &item.TargetPrice,
		&item.AlertsEnabled, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}
