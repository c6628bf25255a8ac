package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/tradingbuddy/tradingbuddy-engine/pkg/auth"
	"github.com/tradingbuddy/tradingbuddy-engine/pkg/marketdata"
)

// MarketHandler serves read-only simulated market data.
type MarketHandler struct {
	market marketdata.Service
	logger *zap.Logger
}

// NewMarketHandler creates a new market data handler.
func NewMarketHandler(market marketdata.Service, logger *zap.Logger) *MarketHandler {
	return &MarketHandler{market: market, logger: logger}
}

// RegisterRoutes registers the market data routes on the given mux.
func (h *MarketHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/market/quotes/{symbol}", authMiddleware.RequireAuth(h.Quote))
	mux.HandleFunc("GET /api/market/quotes/{symbol}/indicators", authMiddleware.RequireAuth(h.Indicators))
}

// Quote handles GET /api/market/quotes/{symbol}
func (h *MarketHandler) Quote(w http.ResponseWriter, r *http.Request) {
	quote, err := h.market.Quote(r.Context(), r.PathValue("symbol"))
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, quote); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Indicators handles GET /api/market/quotes/{symbol}/indicators
func (h *MarketHandler) Indicators(w http.ResponseWriter, r *http.Request) {
	indicators, err := h.market.Indicators(r.Context(), r.PathValue("symbol"))
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, indicators); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
