package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tradingbuddy/tradingbuddy-engine/pkg/apperrors"
	"github.com/tradingbuddy/tradingbuddy-engine/pkg/models"
)

func TestWatchlistService_Create_Defaults(t *testing.T) {
	repo := &mockWatchlistRepo{}
	svc := NewWatchlistService(repo, zap.NewNop())

	item, err := svc.Create(ctxWithUser(uuid.New()), bodyFromJSON(t, `{"symbol": "NVDA"}`))
	require.NoError(t, err)

	assert.Equal(t, "NVDA", item.Symbol)
	assert.False(t, item.AlertsEnabled)
	assert.Nil(t, item.TargetPrice)
	assert.Nil(t, item.Notes)
}

func TestWatchlistService_Create_AllFields(t *testing.T) {
	repo := &mockWatchlistRepo{}
	svc := NewWatchlistService(repo, zap.NewNop())

	body := bodyFromJSON(t, `{
		"symbol": "NVDA",
		"notes": "watch earnings",
		"target_price": 900,
		"alerts_enabled": true
	}`)

	item, err := svc.Create(ctxWithUser(uuid.New()), body)
	require.NoError(t, err)

	assert.True(t, item.AlertsEnabled)
	require.NotNil(t, item.TargetPrice)
	assert.Equal(t, 900.0, *item.TargetPrice)
	require.NotNil(t, item.Notes)
	assert.Equal(t, "watch earnings", *item.Notes)
}

func TestWatchlistService_Create_MissingSymbol(t *testing.T) {
	svc := NewWatchlistService(&mockWatchlistRepo{}, zap.NewNop())

	for _, raw := range []string{`{}`, `{"symbol": null}`, `{"symbol": "  "}`} {
		_, err := svc.Create(ctxWithUser(uuid.New()), bodyFromJSON(t, raw))
		verr, ok := apperrors.IsValidation(err)
		require.True(t, ok, "body %s", raw)
		assert.Equal(t, "MISSING_SYMBOL", verr.Code)
	}
}

func TestWatchlistService_Create_NonPositiveTarget(t *testing.T) {
	svc := NewWatchlistService(&mockWatchlistRepo{}, zap.NewNop())

	_, err := svc.Create(ctxWithUser(uuid.New()),
		bodyFromJSON(t, `{"symbol": "NVDA", "target_price": -1}`))
	verr, ok := apperrors.IsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "INVALID_TARGET_PRICE", verr.Code)
}

func TestWatchlistService_Create_DuplicateSymbol(t *testing.T) {
	repo := &mockWatchlistRepo{err: apperrors.ErrConflict}
	svc := NewWatchlistService(repo, zap.NewNop())

	_, err := svc.Create(ctxWithUser(uuid.New()), bodyFromJSON(t, `{"symbol": "NVDA"}`))
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestWatchlistService_Update_ClearsTarget(t *testing.T) {
	userID := uuid.New()
	repo := &mockWatchlistRepo{item: &models.WatchlistItem{ID: uuid.New(), UserID: userID}}
	svc := NewWatchlistService(repo, zap.NewNop())

	_, err := svc.Update(ctxWithUser(userID), repo.item.ID,
		bodyFromJSON(t, `{"target_price": null, "notes": null}`))
	require.NoError(t, err)
}

func TestWatchlistService_Update_BadAlertsType(t *testing.T) {
	userID := uuid.New()
	repo := &mockWatchlistRepo{item: &models.WatchlistItem{ID: uuid.New(), UserID: userID}}
	svc := NewWatchlistService(repo, zap.NewNop())

	_, err := svc.Update(ctxWithUser(userID), repo.item.ID,
		bodyFromJSON(t, `{"alerts_enabled": "yes"}`))
	verr, ok := apperrors.IsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "INVALID_ALERTS_ENABLED_TYPE", verr.Code)
}

func TestWatchlistService_OwnerFieldRejected(t *testing.T) {
	svc := NewWatchlistService(&mockWatchlistRepo{}, zap.NewNop())

	_, err := svc.Create(ctxWithUser(uuid.New()),
		bodyFromJSON(t, `{"symbol": "NVDA", "userId": "whatever"}`))
	verr, ok := apperrors.IsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "USER_ID_NOT_ALLOWED", verr.Code)
}
