package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/tradingbuddy/tradingbuddy-engine/pkg/auth"
	"github.com/tradingbuddy/tradingbuddy-engine/pkg/jsonutil"
	"github.com/tradingbuddy/tradingbuddy-engine/pkg/models"
	"github.com/tradingbuddy/tradingbuddy-engine/pkg/services"
)

// BrokerConnectionResponse is the wire form of a broker connection. The
// stored API key never leaves the server; only a masked form does.
type BrokerConnectionResponse struct {
	*models.BrokerConnection
	APIKeyMasked string `json:"api_key_masked,omitempty"`
	Config       any    `json:"config"`
}

// BrokerConnectionListResponse for GET /api/broker-connections
type BrokerConnectionListResponse struct {
	Connections []*BrokerConnectionResponse `json:"connections"`
	Total       int                         `json:"total"`
}

// BrokerConnectionHandler handles broker connection HTTP requests.
type BrokerConnectionHandler struct {
	service services.BrokerConnectionService
	logger  *zap.Logger
}

// NewBrokerConnectionHandler creates a new broker connection handler.
func NewBrokerConnectionHandler(service services.BrokerConnectionService, logger *zap.Logger) *BrokerConnectionHandler {
	return &BrokerConnectionHandler{service: service, logger: logger}
}

// RegisterRoutes registers the broker connection routes on the given mux.
func (h *BrokerConnectionHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	base := "/api/broker-connections"

	mux.HandleFunc("GET "+base, authMiddleware.RequireAuth(h.List))
	mux.HandleFunc("POST "+base, authMiddleware.RequireAuth(h.Create))
	mux.HandleFunc("GET "+base+"/{id}", authMiddleware.RequireAuth(h.Get))
	mux.HandleFunc("PUT "+base+"/{id}", authMiddleware.RequireAuth(h.Update))
	mux.HandleFunc("DELETE "+base+"/{id}", authMiddleware.RequireAuth(h.Delete))
}

func (h *BrokerConnectionHandler) respond(conn *models.BrokerConnection) *BrokerConnectionResponse {
	return &BrokerConnectionResponse{
		BrokerConnection: conn,
		APIKeyMasked:     h.service.MaskedAPIKey(conn),
		Config:           jsonutil.BlobValue(conn.Config),
	}
}

// List handles GET /api/broker-connections
func (h *BrokerConnectionHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, ok := ParseListParams(w, r, h.logger)
	if !ok {
		return
	}

	conns, err := h.service.List(r.Context(), filter)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	response := BrokerConnectionListResponse{
		Connections: make([]*BrokerConnectionResponse, 0, len(conns)),
		Total:       len(conns),
	}
	for _, conn := range conns {
		response.Connections = append(response.Connections, h.respond(conn))
	}

	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Create handles POST /api/broker-connections
func (h *BrokerConnectionHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, ok := DecodeBody(w, r, h.logger)
	if !ok {
		return
	}

	conn, err := h.service.Create(r.Context(), body)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, h.respond(conn)); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/broker-connections/{id}
func (h *BrokerConnectionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(w, r, h.logger)
	if !ok {
		return
	}

	conn, err := h.service.Get(r.Context(), id)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, h.respond(conn)); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Update handles PUT /api/broker-connections/{id}
func (h *BrokerConnectionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(w, r, h.logger)
	if !ok {
		return
	}

	body, ok := DecodeBody(w, r, h.logger)
	if !ok {
		return
	}

	conn, err := h.service.Update(r.Context(), id, body)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, h.respond(conn)); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Delete handles DELETE /api/broker-connections/{id}
func (h *BrokerConnectionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(w, r, h.logger)
	if !ok {
		return
	}

	conn, err := h.service.Delete(r.Context(), id)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	resp := DeleteResponse{Message: "broker connection deleted", Deleted: h.respond(conn)}
	if err := WriteJSON(w, http.StatusOK, resp); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
