package services

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tradingbuddy/tradingbuddy-engine/pkg/apperrors"
	"github.com/tradingbuddy/tradingbuddy-engine/pkg/marketdata"
	"github.com/tradingbuddy/tradingbuddy-engine/pkg/models"
	"github.com/tradingbuddy/tradingbuddy-engine/pkg/repositories"
)

func newBacktestService(repo repositories.BacktestRepository) BacktestService {
	return NewBacktestService(repo, marketdata.NewSimulator(), zap.NewNop())
}

func queuedBacktest(userID uuid.UUID) *models.Backtest {
	return &models.Backtest{
		ID:             uuid.New(),
		UserID:         userID,
		Name:           "SMA crossover",
		Symbol:         "AAPL",
		StartDate:      time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC),
		InitialCapital: 10000,
		Status:         models.BacktestStatusQueued,
	}
}

func TestBacktestService_Create_Defaults(t *testing.T) {
	repo := &mockBacktestRepo{}
	svc := newBacktestService(repo)
	userID := uuid.New()

	body := bodyFromJSON(t, `{
		"name": "SMA crossover",
		"symbol": "AAPL",
		"start_date": "2023-01-01",
		"end_date": "2023-07-01",
		"initial_capital": 10000
	}`)

	bt, err := svc.Create(ctxWithUser(userID), body)
	require.NoError(t, err)

	assert.Equal(t, models.BacktestStatusQueued, bt.Status)
	assert.Equal(t, userID, bt.UserID)
	assert.Nil(t, bt.ModelID)
	assert.Nil(t, bt.Results)
	assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), bt.StartDate)
}

func TestBacktestService_Create_NonPositiveCapital(t *testing.T) {
	repo := &mockBacktestRepo{}
	svc := newBacktestService(repo)

	for _, capital := range []string{"0", "-500"} {
		body := bodyFromJSON(t, `{
			"name": "SMA crossover",
			"symbol": "AAPL",
			"start_date": "2023-01-01",
			"end_date": "2023-07-01",
			"initial_capital": `+capital+`
		}`)

		_, err := svc.Create(ctxWithUser(uuid.New()), body)
		var verr *apperrors.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "INVALID_INITIAL_CAPITAL", verr.Code)
	}
}

func TestBacktestService_Create_EndNotAfterStart(t *testing.T) {
	repo := &mockBacktestRepo{}
	svc := newBacktestService(repo)

	body := bodyFromJSON(t, `{
		"name": "SMA crossover",
		"symbol": "AAPL",
		"start_date": "2023-07-01",
		"end_date": "2023-07-01",
		"initial_capital": 10000
	}`)

	_, err := svc.Create(ctxWithUser(uuid.New()), body)
	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "INVALID_END_DATE", verr.Code)
}

func TestBacktestService_Create_BadModelID(t *testing.T) {
	repo := &mockBacktestRepo{}
	svc := newBacktestService(repo)

	body := bodyFromJSON(t, `{
		"name": "SMA crossover",
		"symbol": "AAPL",
		"start_date": "2023-01-01",
		"end_date": "2023-07-01",
		"initial_capital": 10000,
		"model_id": "not-a-uuid"
	}`)

	_, err := svc.Create(ctxWithUser(uuid.New()), body)
	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "INVALID_MODEL_ID", verr.Code)
}

func TestBacktestService_Update_ClearingRequiredField(t *testing.T) {
	userID := uuid.New()
	repo := &mockBacktestRepo{backtest: queuedBacktest(userID)}
	svc := newBacktestService(repo)

	body := bodyFromJSON(t, `{"start_date": null}`)

	_, err := svc.Update(ctxWithUser(userID), repo.backtest.ID, body)
	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "MISSING_START_DATE", verr.Code)
}

func TestBacktestService_List_InvalidStatusFilter(t *testing.T) {
	repo := &mockBacktestRepo{}
	svc := newBacktestService(repo)

	_, err := svc.List(ctxWithUser(uuid.New()), repositories.ListFilter{Status: "sideways"})
	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "INVALID_STATUS", verr.Code)
}

func TestBacktestService_Run_StoresMetrics(t *testing.T) {
	userID := uuid.New()
	repo := &mockBacktestRepo{backtest: queuedBacktest(userID)}
	svc := newBacktestService(repo)

	bt, err := svc.Run(ctxWithUser(userID), repo.backtest.ID)
	require.NoError(t, err)

	assert.Equal(t, []string{models.BacktestStatusRunning, models.BacktestStatusCompleted}, repo.transitions)
	assert.Equal(t, models.BacktestStatusCompleted, bt.Status)
	require.NotNil(t, bt.Results)

	var metrics marketdata.BacktestMetrics
	require.NoError(t, json.Unmarshal([]byte(repo.results), &metrics))
	assert.Equal(t, 181, metrics.Days)
	assert.Greater(t, metrics.FinalEquity, 0.0)
}

func TestBacktestService_Run_Deterministic(t *testing.T) {
	userID := uuid.New()

	run := func() string {
		repo := &mockBacktestRepo{backtest: queuedBacktest(userID)}
		svc := newBacktestService(repo)
		_, err := svc.Run(ctxWithUser(userID), repo.backtest.ID)
		require.NoError(t, err)
		return repo.results
	}

	assert.Equal(t, run(), run())
}

func TestBacktestService_Run_AlreadyRunning(t *testing.T) {
	userID := uuid.New()
	bt := queuedBacktest(userID)
	bt.Status = models.BacktestStatusRunning
	repo := &mockBacktestRepo{backtest: bt}
	svc := newBacktestService(repo)

	_, err := svc.Run(ctxWithUser(userID), bt.ID)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Empty(t, repo.transitions)
}

func TestBacktestService_Run_NotFound(t *testing.T) {
	repo := &mockBacktestRepo{}
	svc := newBacktestService(repo)

	_, err := svc.Run(ctxWithUser(uuid.New()), uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestBacktestService_Run_ShortRangeMarksFailed(t *testing.T) {
	userID := uuid.New()
	bt := queuedBacktest(userID)
	bt.EndDate = bt.StartDate.Add(24 * time.Hour)
	repo := &mockBacktestRepo{backtest: bt}
	svc := newBacktestService(repo)

	_, err := svc.Run(ctxWithUser(userID), bt.ID)
	require.Error(t, err)

	assert.Equal(t, []string{models.BacktestStatusRunning, models.BacktestStatusFailed}, repo.transitions)
	assert.Empty(t, repo.results)
}

func TestBacktestService_Run_ClaimConflict(t *testing.T) {
	userID := uuid.New()
	repo := &mockBacktestRepo{backtest: queuedBacktest(userID), statusErr: apperrors.ErrConflict}
	svc := newBacktestService(repo)

	_, err := svc.Run(ctxWithUser(userID), repo.backtest.ID)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}
