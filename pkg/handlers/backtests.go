package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/tradingbuddy/tradingbuddy-engine/pkg/auth"
	"github.com/tradingbuddy/tradingbuddy-engine/pkg/jsonutil"
	"github.com/tradingbuddy/tradingbuddy-engine/pkg/models"
	"github.com/tradingbuddy/tradingbuddy-engine/pkg/services"
)

// BacktestResponse is the wire form of a backtest, with stored result
// metrics expanded back into a JSON value.
type BacktestResponse struct {
	*models.Backtest
	Results any `json:"results"`
}

// BacktestListResponse for GET /api/backtests
type BacktestListResponse struct {
	Backtests []*BacktestResponse `json:"backtests"`
	Total     int                 `json:"total"`
}

// BacktestHandler handles backtest HTTP requests.
type BacktestHandler struct {
	service services.BacktestService
	logger  *zap.Logger
}

// NewBacktestHandler creates a new backtest handler.
func NewBacktestHandler(service services.BacktestService, logger *zap.Logger) *BacktestHandler {
	return &BacktestHandler{service: service, logger: logger}
}

// RegisterRoutes registers the backtest routes on the given mux.
func (h *BacktestHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	base := "/api/backtests"

	mux.HandleFunc("GET "+base, authMiddleware.RequireAuth(h.List))
	mux.HandleFunc("POST "+base, authMiddleware.RequireAuth(h.Create))
	mux.HandleFunc("GET "+base+"/{id}", authMiddleware.RequireAuth(h.Get))
	mux.HandleFunc("PUT "+base+"/{id}", authMiddleware.RequireAuth(h.Update))
	mux.HandleFunc("DELETE "+base+"/{id}", authMiddleware.RequireAuth(h.Delete))
	mux.HandleFunc("POST "+base+"/{id}/run", authMiddleware.RequireAuth(h.Run))
}

func backtestResponse(bt *models.Backtest) *BacktestResponse {
	return &BacktestResponse{
		Backtest: bt,
		Results:  jsonutil.BlobValue(bt.Results),
	}
}

// List handles GET /api/backtests
func (h *BacktestHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, ok := ParseListParams(w, r, h.logger)
	if !ok {
		return
	}

	list, err := h.service.List(r.Context(), filter)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	response := BacktestListResponse{
		Backtests: make([]*BacktestResponse, 0, len(list)),
		Total:     len(list),
	}
	for _, bt := range list {
		response.Backtests = append(response.Backtests, backtestResponse(bt))
	}

	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Create handles POST /api/backtests
func (h *BacktestHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, ok := DecodeBody(w, r, h.logger)
	if !ok {
		return
	}

	bt, err := h.service.Create(r.Context(), body)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, backtestResponse(bt)); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/backtests/{id}
func (h *BacktestHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(w, r, h.logger)
	if !ok {
		return
	}

	bt, err := h.service.Get(r.Context(), id)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, backtestResponse(bt)); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Update handles PUT /api/backtests/{id}
func (h *BacktestHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(w, r, h.logger)
	if !ok {
		return
	}

	body, ok := DecodeBody(w, r, h.logger)
	if !ok {
		return
	}

	bt, err := h.service.Update(r.Context(), id, body)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, backtestResponse(bt)); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Delete handles DELETE /api/backtests/{id}
func (h *BacktestHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(w, r, h.logger)
	if !ok {
		return
	}

	bt, err := h.service.Delete(r.Context(), id)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	resp := DeleteResponse{Message: "backtest deleted", Deleted: backtestResponse(bt)}
	if err := WriteJSON(w, http.StatusOK, resp); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Run handles POST /api/backtests/{id}/run
func (h *BacktestHandler) Run(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(w, r, h.logger)
	if !ok {
		return
	}

	bt, err := h.service.Run(r.Context(), id)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, backtestResponse(bt)); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
