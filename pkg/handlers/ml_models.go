package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/tradingbuddy/tradingbuddy-engine/pkg/auth"
	"github.com/tradingbuddy/tradingbuddy-engine/pkg/jsonutil"
	"github.com/tradingbuddy/tradingbuddy-engine/pkg/models"
	"github.com/tradingbuddy/tradingbuddy-engine/pkg/services"
)

// MLModelResponse is the wire form of an ML model, with the stored
// hyperparameter and metric blobs expanded back into JSON values.
type MLModelResponse struct {
	*models.MLModel
	Hyperparameters any `json:"hyperparameters"`
	Metrics         any `json:"metrics"`
}

// MLModelListResponse for GET /api/models
type MLModelListResponse struct {
	Models []*MLModelResponse `json:"models"`
	Total  int                `json:"total"`
}

// MLModelHandler handles ML model HTTP requests. Reads are visible to
// every authenticated user; mutations are owner-only.
type MLModelHandler struct {
	service services.MLModelService
	logger  *zap.Logger
}

// NewMLModelHandler creates a new ML model handler.
func NewMLModelHandler(service services.MLModelService, logger *zap.Logger) *MLModelHandler {
	return &MLModelHandler{service: service, logger: logger}
}

// RegisterRoutes registers the model routes on the given mux.
func (h *MLModelHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	base := "/api/models"

	mux.HandleFunc("GET "+base, authMiddleware.RequireAuth(h.List))
	mux.HandleFunc("POST "+base, authMiddleware.RequireAuth(h.Create))
	mux.HandleFunc("GET "+base+"/{id}", authMiddleware.RequireAuth(h.Get))
	mux.HandleFunc("PUT "+base+"/{id}", authMiddleware.RequireAuth(h.Update))
	mux.HandleFunc("DELETE "+base+"/{id}", authMiddleware.RequireAuth(h.Delete))
}

func modelResponse(m *models.MLModel) *MLModelResponse {
	return &MLModelResponse{
		MLModel:         m,
		Hyperparameters: jsonutil.BlobValue(m.Hyperparameters),
		Metrics:         jsonutil.BlobValue(m.Metrics),
	}
}

// List handles GET /api/models
func (h *MLModelHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, ok := ParseListParams(w, r, h.logger)
	if !ok {
		return
	}

	list, err := h.service.List(r.Context(), filter)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	response := MLModelListResponse{
		Models: make([]*MLModelResponse, 0, len(list)),
		Total:  len(list),
	}
	for _, m := range list {
		response.Models = append(response.Models, modelResponse(m))
	}

	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Create handles POST /api/models
func (h *MLModelHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, ok := DecodeBody(w, r, h.logger)
	if !ok {
		return
	}

	m, err := h.service.Create(r.Context(), body)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, modelResponse(m)); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/models/{id}
func (h *MLModelHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(w, r, h.logger)
	if !ok {
		return
	}

	m, err := h.service.Get(r.Context(), id)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, modelResponse(m)); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Update handles PUT /api/models/{id}
func (h *MLModelHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(w, r, h.logger)
	if !ok {
		return
	}

	body, ok := DecodeBody(w, r, h.logger)
	if !ok {
		return
	}

	m, err := h.service.Update(r.Context(), id, body)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, modelResponse(m)); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Delete handles DELETE /api/models/{id}
func (h *MLModelHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(w, r, h.logger)
	if !ok {
		return
	}

	m, err := h.service.Delete(r.Context(), id)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	resp := DeleteResponse{Message: "model deleted", Deleted: modelResponse(m)}
	if err := WriteJSON(w, http.StatusOK, resp); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
