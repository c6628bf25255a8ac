package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/tradingbuddy/tradingbuddy-engine/pkg/auth"
	"github.com/tradingbuddy/tradingbuddy-engine/pkg/jsonutil"
	"github.com/tradingbuddy/tradingbuddy-engine/pkg/models"
	"github.com/tradingbuddy/tradingbuddy-engine/pkg/services"
)

// NewsArticleResponse is the wire form of a saved news article, with the
// stored symbol list expanded back into a JSON value.
type NewsArticleResponse struct {
	*models.NewsArticle
	Symbols any `json:"symbols"`
}

// NewsListResponse for GET /api/news
type NewsListResponse struct {
	Articles []*NewsArticleResponse `json:"articles"`
	Total    int                    `json:"total"`
}

// NewsHandler handles saved news HTTP requests.
type NewsHandler struct {
	service services.NewsService
	logger  *zap.Logger
}

// NewNewsHandler creates a new news handler.
func NewNewsHandler(service services.NewsService, logger *zap.Logger) *NewsHandler {
	return &NewsHandler{service: service, logger: logger}
}

// RegisterRoutes registers the news routes on the given mux.
func (h *NewsHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	base := "/api/news"

	mux.HandleFunc("GET "+base, authMiddleware.RequireAuth(h.List))
	mux.HandleFunc("POST "+base, authMiddleware.RequireAuth(h.Create))
	mux.HandleFunc("GET "+base+"/{id}", authMiddleware.RequireAuth(h.Get))
	mux.HandleFunc("PUT "+base+"/{id}", authMiddleware.RequireAuth(h.Update))
	mux.HandleFunc("DELETE "+base+"/{id}", authMiddleware.RequireAuth(h.Delete))
}

func newsResponse(article *models.NewsArticle) *NewsArticleResponse {
	return &NewsArticleResponse{
		NewsArticle: article,
		Symbols:     jsonutil.BlobValue(article.Symbols),
	}
}

// List handles GET /api/news. Articles may be filtered by sentiment via
// the sentiment query parameter.
func (h *NewsHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, ok := ParseListParams(w, r, h.logger)
	if !ok {
		return
	}
	if sentiment := r.URL.Query().Get("sentiment"); sentiment != "" {
		filter.Status = sentiment
	}

	articles, err := h.service.List(r.Context(), filter)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	response := NewsListResponse{
		Articles: make([]*NewsArticleResponse, 0, len(articles)),
		Total:    len(articles),
	}
	for _, article := range articles {
		response.Articles = append(response.Articles, newsResponse(article))
	}

	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Create handles POST /api/news
func (h *NewsHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, ok := DecodeBody(w, r, h.logger)
	if !ok {
		return
	}

	article, err := h.service.Create(r.Context(), body)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, newsResponse(article)); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/news/{id}
func (h *NewsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(w, r, h.logger)
	if !ok {
		return
	}

	article, err := h.service.Get(r.Context(), id)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, newsResponse(article)); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Update handles PUT /api/news/{id}
func (h *NewsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(w, r, h.logger)
	if !ok {
		return
	}

	body, ok := DecodeBody(w, r, h.logger)
	if !ok {
		return
	}

	article, err := h.service.Update(r.Context(), id, body)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, newsResponse(article)); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Delete handles DELETE /api/news/{id}
func (h *NewsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(w, r, h.logger)
	if !ok {
		return
	}

	article, err := h.service.Delete(r.Context(), id)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	resp := DeleteResponse{Message: "news article deleted", Deleted: newsResponse(article)}
	if err := WriteJSON(w, http.StatusOK, resp); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
