package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/markcheno/go-talib"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/tradingbuddy/tradingbuddy-engine/pkg/apperrors"
)

// indicatorLookback is how many daily closes feed the indicator
// calculations. RSI-14 needs at least 15; extra history stabilizes the
// smoothed averages.
const indicatorLookback = 60

var symbolPattern = regexp.MustCompile(`^[A-Z]{1,6}$`)

// Quote is a point-in-time simulated price for a symbol.
type Quote struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"change_percent"`
	AsOf          time.Time `json:"as_of"`
}

// Indicators holds common technical indicators for a symbol.
type Indicators struct {
	Symbol string  `json:"symbol"`
	SMA20  float64 `json:"sma_20"`
	EMA20  float64 `json:"ema_20"`
	RSI14  float64 `json:"rsi_14"`
}

// Service exposes read-only simulated market data.
type Service interface {
	Quote(ctx context.Context, symbol string) (*Quote, error)
	Indicators(ctx context.Context, symbol string) (*Indicators, error)
}

type service struct {
	simulator Simulator
	cache     *redis.Client
	quoteTTL  time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// NewService creates a market data service. cache may be nil, in which
// case quotes are simulated on every request.
func NewService(simulator Simulator, cache *redis.Client, quoteTTL time.Duration, logger *zap.Logger) Service {
	return &service{
		simulator: simulator,
		cache:     cache,
		quoteTTL:  quoteTTL,
		logger:    logger,
		now:       time.Now,
	}
}

// normalizeSymbol uppercases and validates a ticker symbol.
func normalizeSymbol(symbol string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if !symbolPattern.MatchString(s) {
		return "", apperrors.InvalidField("symbol", "must be 1-6 letters")
	}
	return s, nil
}

func (s *service) Quote(ctx context.Context, symbol string) (*Quote, error) {
	sym, err := normalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}

	if cached := s.cachedQuote(ctx, sym); cached != nil {
		return cached, nil
	}

	quote := s.simulateQuote(sym)
	s.storeQuote(ctx, quote)
	return quote, nil
}

func (s *service) Indicators(ctx context.Context, symbol string) (*Indicators, error) {
	sym, err := normalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}

	today := s.now().UTC()
	start := today.AddDate(0, 0, -(indicatorLookback - 1))
	closes := s.simulator.DailySeries(sym, start, indicatorLookback)

	sma := talib.Sma(closes, 20)
	ema := talib.Ema(closes, 20)
	rsi := talib.Rsi(closes, 14)

	return &Indicators{
		Symbol: sym,
		SMA20:  last(sma),
		EMA20:  last(ema),
		RSI14:  last(rsi),
	}, nil
}

func (s *service) simulateQuote(sym string) *Quote {
	now := s.now().UTC()
	price := s.simulator.Price(sym, now)
	prev := s.simulator.Price(sym, now.AddDate(0, 0, -1))

	return &Quote{
		Symbol:        sym,
		Price:         price,
		Change:        price - prev,
		ChangePercent: (price/prev - 1) * 100,
		AsOf:          now,
	}
}

func quoteKey(sym string) string {
	return fmt.Sprintf("quote:%s", sym)
}

func (s *service) cachedQuote(ctx context.Context, sym string) *Quote {
	if s.cache == nil {
		return nil
	}

	raw, err := s.cache.Get(ctx, quoteKey(sym)).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn("Quote cache read failed", zap.String("symbol", sym), zap.Error(err))
		}
		return nil
	}

	var quote Quote
	if err := json.Unmarshal(raw, &quote); err != nil {
		s.logger.Warn("Discarding malformed cached quote", zap.String("symbol", sym), zap.Error(err))
		return nil
	}
	return &quote
}

func (s *service) storeQuote(ctx context.Context, quote *Quote) {
	if s.cache == nil {
		return
	}

	raw, err := json.Marshal(quote)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, quoteKey(quote.Symbol), raw, s.quoteTTL).Err(); err != nil {
		s.logger.Warn("Quote cache write failed", zap.String("symbol", quote.Symbol), zap.Error(err))
	}
}

func last(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return values[len(values)-1]
}
