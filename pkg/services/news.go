package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tradingbuddy/tradingbuddy-engine/pkg/apperrors"
	"github.com/tradingbuddy/tradingbuddy-engine/pkg/auth"
	"github.com/tradingbuddy/tradingbuddy-engine/pkg/jsonutil"
	"github.com/tradingbuddy/tradingbuddy-engine/pkg/models"
	"github.com/tradingbuddy/tradingbuddy-engine/pkg/repositories"
)

// NewsService defines operations on a user's saved news feed.
type NewsService interface {
	Create(ctx context.Context, body Body) (*models.NewsArticle, error)
	Get(ctx context.Context, id uuid.UUID) (*models.NewsArticle, error)
	List(ctx context.Context, filter repositories.ListFilter) ([]*models.NewsArticle, error)
	Update(ctx context.Context, id uuid.UUID, body Body) (*models.NewsArticle, error)
	Delete(ctx context.Context, id uuid.UUID) (*models.NewsArticle, error)
}

type newsService struct {
	repo   repositories.NewsRepository
	logger *zap.Logger
}

// NewNewsService creates a new news service.
func NewNewsService(repo repositories.NewsRepository, logger *zap.Logger) NewsService {
	return &newsService{repo: repo, logger: logger}
}

func (s *newsService) validateArticle(body Body, create bool) (models.NewsArticlePatch, error) {
	var patch models.NewsArticlePatch

	if err := rejectOwnerField(body); err != nil {
		return patch, err
	}

	if create {
		headline, err := requireString(body, "headline")
		if err != nil {
			return patch, err
		}
		patch.Headline = jsonutil.Some(headline)
	} else if headline := optionalString(body, "headline"); headline.Set {
		if headline.Null || headline.Value == "" {
			return patch, missingOnUpdate("headline")
		}
		patch.Headline = headline
	}

	patch.URL = optionalString(body, "url")
	patch.Source = optionalString(body, "source")

	sentiment, err := optionalEnum(body, "sentiment", models.AllowedSentiments, models.IsValidSentiment)
	if err != nil {
		return patch, err
	}
	patch.Sentiment = sentiment

	symbols, err := optionalBlob(body, "symbols")
	if err != nil {
		return patch, err
	}
	patch.Symbols = symbols

	published, err := optionalDate(body, "published_at")
	if err != nil {
		return patch, err
	}
	patch.PublishedAt = published

	return patch, nil
}

func (s *newsService) Create(ctx context.Context, body Body) (*models.NewsArticle, error) {
	userID, err := auth.RequireUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	patch, err := s.validateArticle(body, true)
	if err != nil {
		return nil, err
	}

	article := &models.NewsArticle{
		UserID:      userID,
		Headline:    patch.Headline.Value,
		URL:         patch.URL.Ptr(),
		Source:      patch.Source.Ptr(),
		Sentiment:   models.SentimentNeutral,
		Symbols:     patch.Symbols.Ptr(),
		PublishedAt: patch.PublishedAt.Ptr(),
	}
	if patch.Sentiment.Set && !patch.Sentiment.Null {
		article.Sentiment = patch.Sentiment.Value
	}

	if err := s.repo.Create(ctx, article); err != nil {
		return nil, err
	}

	s.logger.Info("Saved news article",
		zap.String("id", article.ID.String()),
		zap.String("sentiment", article.Sentiment))

	return article, nil
}

func (s *newsService) Get(ctx context.Context, id uuid.UUID) (*models.NewsArticle, error) {
	userID, err := auth.RequireUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, userID, id)
}

func (s *newsService) List(ctx context.Context, filter repositories.ListFilter) ([]*models.NewsArticle, error) {
	userID, err := auth.RequireUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if filter.Status != "" && !models.IsValidSentiment(filter.Status) {
		return nil, apperrors.InvalidEnum("status", filter.Status, models.AllowedSentiments)
	}
	return s.repo.List(ctx, userID, filter)
}

func (s *newsService) Update(ctx context.Context, id uuid.UUID, body Body) (*models.NewsArticle, error) {
	userID, err := auth.RequireUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	patch, err := s.validateArticle(body, false)
	if err != nil {
		return nil, err
	}

	return s.repo.Update(ctx, userID, id, patch)
}

func (s *newsService) Delete(ctx context.Context, id uuid.UUID) (*models.NewsArticle, error) {
	userID, err := auth.RequireUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	article, err := s.repo.Delete(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Deleted news article", zap.String("id", id.String()))

	return article, nil
}
