package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/tradingbuddy/tradingbuddy-engine/pkg/auth"
	"github.com/tradingbuddy/tradingbuddy-engine/pkg/models"
	"github.com/tradingbuddy/tradingbuddy-engine/pkg/services"
)

// PositionListResponse for GET /api/positions
type PositionListResponse struct {
	Positions []*models.Position `json:"positions"`
	Total     int                `json:"total"`
}

// PositionHandler handles position HTTP requests.
type PositionHandler struct {
	service services.PositionService
	logger  *zap.Logger
}

// NewPositionHandler creates a new position handler.
func NewPositionHandler(service services.PositionService, logger *zap.Logger) *PositionHandler {
	return &PositionHandler{service: service, logger: logger}
}

// RegisterRoutes registers the position routes on the given mux.
func (h *PositionHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	base := "/api/positions"

	mux.HandleFunc("GET "+base, authMiddleware.RequireAuth(h.List))
	mux.HandleFunc("POST "+base, authMiddleware.RequireAuth(h.Create))
	mux.HandleFunc("GET "+base+"/{id}", authMiddleware.RequireAuth(h.Get))
	mux.HandleFunc("PUT "+base+"/{id}", authMiddleware.RequireAuth(h.Update))
	mux.HandleFunc("DELETE "+base+"/{id}", authMiddleware.RequireAuth(h.Delete))
}

// List handles GET /api/positions
func (h *PositionHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, ok := ParseListParams(w, r, h.logger)
	if !ok {
		return
	}

	positions, err := h.service.List(r.Context(), filter)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	if positions == nil {
		positions = []*models.Position{}
	}

	response := PositionListResponse{Positions: positions, Total: len(positions)}
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Create handles POST /api/positions
func (h *PositionHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, ok := DecodeBody(w, r, h.logger)
	if !ok {
		return
	}

	position, err := h.service.Create(r.Context(), body)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, position); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/positions/{id}
func (h *PositionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(w, r, h.logger)
	if !ok {
		return
	}

	position, err := h.service.Get(r.Context(), id)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, position); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Update handles PUT /api/positions/{id}
func (h *PositionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(w, r, h.logger)
	if !ok {
		return
	}

	body, ok := DecodeBody(w, r, h.logger)
	if !ok {
		return
	}

	position, err := h.service.Update(r.Context(), id, body)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, position); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Delete handles DELETE /api/positions/{id}
func (h *PositionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(w, r, h.logger)
	if !ok {
		return
	}

	position, err := h.service.Delete(r.Context(), id)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	resp := DeleteResponse{Message: "position deleted", Deleted: position}
	if err := WriteJSON(w, http.StatusOK, resp); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
