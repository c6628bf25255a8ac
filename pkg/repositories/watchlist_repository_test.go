package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradingbuddy/tradingbuddy-engine/pkg/apperrors"
	"github.com/tradingbuddy/tradingbuddy-engine/pkg/jsonutil"
	"github.com/tradingbuddy/tradingbuddy-engine/pkg/models"
)

var watchlistCols = []string{
	"id", "user_id", "symbol", "notes", "target_price",
	"alerts_enabled", "created_at", "updated_at",
}

func watchlistRow(id, userID uuid.UUID, symbol string) *pgxmock.Rows {
	now := time.Now().UTC()
	return pgxmock.NewRows(watchlistCols).
		AddRow(id, userID, symbol, (*string)(nil), (*float64)(nil), false, now, now)
}

func TestWatchlistRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	defer mock.Close()
	repo := NewWatchlistRepository(db)

	item := &models.WatchlistItem{UserID: uuid.New(), Symbol: "NVDA"}

	mock.ExpectExec(`INSERT INTO watchlist_items`).
		WithArgs(pgxmock.AnyArg(), item.UserID, "NVDA", pgxmock.AnyArg(), pgxmock.AnyArg(),
			false, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Create(context.Background(), item))
	assert.NotEqual(t, uuid.Nil, item.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWatchlistRepository_Create_DuplicateSymbol(t *testing.T) {
	db, mock := newMockDB(t)
	defer mock.Close()
	repo := NewWatchlistRepository(db)

	item := &models.WatchlistItem{UserID: uuid.New(), Symbol: "NVDA"}

	mock.ExpectExec(`INSERT INTO watchlist_items`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "watchlist_items_user_id_symbol_key"})

	err := repo.Create(context.Background(), item)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWatchlistRepository_Update_DuplicateSymbol(t *testing.T) {
	db, mock := newMockDB(t)
	defer mock.Close()
	repo := NewWatchlistRepository(db)

	patch := models.WatchlistItemPatch{Symbol: jsonutil.Some("NVDA")}

	mock.ExpectQuery(`UPDATE watchlist_items`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := repo.Update(context.Background(), uuid.New(), uuid.New(), patch)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWatchlistRepository_Delete_ScopedToOwner(t *testing.T) {
	db, mock := newMockDB(t)
	defer mock.Close()
	repo := NewWatchlistRepository(db)

	id := uuid.New()
	userID := uuid.New()

	mock.ExpectQuery(`DELETE FROM watchlist_items`).
		WithArgs(id, userID).
		WillReturnRows(watchlistRow(id, userID, "NVDA"))

	item, err := repo.Delete(context.Background(), userID, id)
	require.NoError(t, err)
	assert.Equal(t, "NVDA", item.Symbol)
	require.NoError(t, mock.ExpectationsWereMet())
}
