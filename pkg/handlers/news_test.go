package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tradingbuddy/tradingbuddy-engine/pkg/models"
)

func TestNewsHandler_List_SentimentQueryParam(t *testing.T) {
	mock := &mockNewsService{articles: []*models.NewsArticle{}}
	handler := NewNewsHandler(mock, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/news?sentiment=bullish&limit=5", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "bullish", mock.filter.Status)
	assert.Equal(t, 5, mock.filter.Limit)
}

func TestNewsHandler_List_ExpandsSymbols(t *testing.T) {
	stored := `["NVDA","AMD"]`
	mock := &mockNewsService{articles: []*models.NewsArticle{
		{
			ID:        uuid.New(),
			Headline:  "Chipmaker beats estimates",
			Sentiment: models.SentimentBullish,
			Symbols:   &stored,
		},
	}}
	handler := NewNewsHandler(mock, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/news", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response NewsListResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	require.Len(t, response.Articles, 1)
	assert.Equal(t, 1, response.Total)
	assert.Equal(t, []any{"NVDA", "AMD"}, response.Articles[0].Symbols)
}

func TestNewsHandler_Delete_WrapsSnapshot(t *testing.T) {
	id := uuid.New()
	stored := `["NVDA"]`
	mock := &mockNewsService{article: &models.NewsArticle{
		ID:        id,
		Headline:  "Chipmaker beats estimates",
		Sentiment: models.SentimentBullish,
		Symbols:   &stored,
	}}
	handler := NewNewsHandler(mock, zap.NewNop())

	req := httptest.NewRequest(http.MethodDelete, "/api/news/"+id.String(), nil)
	req.SetPathValue("id", id.String())
	rec := httptest.NewRecorder()

	handler.Delete(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response struct {
		Message string              `json:"message"`
		Deleted NewsArticleResponse `json:"deleted"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	assert.Equal(t, "news article deleted", response.Message)
	assert.Equal(t, id, response.Deleted.ID)
	assert.Equal(t, []any{"NVDA"}, response.Deleted.Symbols)
}

func TestNewsHandler_Create(t *testing.T) {
	mock := &mockNewsService{article: &models.NewsArticle{
		ID:        uuid.New(),
		Headline:  "Fed holds rates steady",
		Sentiment: models.SentimentNeutral,
	}}
	handler := NewNewsHandler(mock, zap.NewNop())

	body := bytes.NewBufferString(`{"headline": "Fed holds rates steady"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/news", body)
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var response NewsArticleResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	assert.Equal(t, models.SentimentNeutral, response.Sentiment)
	assert.Nil(t, response.Symbols)
}
