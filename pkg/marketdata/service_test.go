package marketdata

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tradingbuddy/tradingbuddy-engine/pkg/apperrors"
)

func newTestService() *service {
	return &service{
		simulator: NewSimulator(),
		quoteTTL:  time.Minute,
		logger:    zap.NewNop(),
		now: func() time.Time {
			return time.Date(2024, 6, 1, 14, 30, 0, 0, time.UTC)
		},
	}
}

func TestService_Quote(t *testing.T) {
	svc := newTestService()

	quote, err := svc.Quote(context.Background(), "aapl")
	require.NoError(t, err)

	assert.Equal(t, "AAPL", quote.Symbol)
	assert.Greater(t, quote.Price, 0.0)
	assert.Equal(t, svc.now(), quote.AsOf)

	// Change is measured against the previous day's close.
	prev := svc.simulator.Price("AAPL", svc.now().AddDate(0, 0, -1))
	assert.InDelta(t, quote.Price-prev, quote.Change, 1e-9)
}

func TestService_Quote_BadSymbol(t *testing.T) {
	svc := newTestService()

	for _, sym := range []string{"", "TOOLONGG", "BRK.B", "123", " "} {
		_, err := svc.Quote(context.Background(), sym)
		verr, ok := apperrors.IsValidation(err)
		require.True(t, ok, "symbol %q", sym)
		assert.Equal(t, "INVALID_SYMBOL", verr.Code)
	}
}

func TestService_Quote_NoCacheConfigured(t *testing.T) {
	svc := newTestService()

	// Nil cache must fall through to the simulator on every call and
	// still agree across calls.
	q1, err := svc.Quote(context.Background(), "NVDA")
	require.NoError(t, err)
	q2, err := svc.Quote(context.Background(), "NVDA")
	require.NoError(t, err)

	assert.Equal(t, q1.Price, q2.Price)
}

func TestService_Indicators(t *testing.T) {
	svc := newTestService()

	ind, err := svc.Indicators(context.Background(), "msft")
	require.NoError(t, err)

	assert.Equal(t, "MSFT", ind.Symbol)
	assert.Greater(t, ind.SMA20, 0.0)
	assert.Greater(t, ind.EMA20, 0.0)
	assert.GreaterOrEqual(t, ind.RSI14, 0.0)
	assert.LessOrEqual(t, ind.RSI14, 100.0)
}

func TestService_Indicators_BadSymbol(t *testing.T) {
	svc := newTestService()

	_, err := svc.Indicators(context.Background(), "not a ticker")
	verr, ok := apperrors.IsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "INVALID_SYMBOL", verr.Code)
}
