package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tradingbuddy/tradingbuddy-engine/pkg/apperrors"
	"github.com/tradingbuddy/tradingbuddy-engine/pkg/database"
	"github.com/tradingbuddy/tradingbuddy-engine/pkg/models"
)

// NewsRepository provides data access for saved news articles.
type NewsRepository interface {
	Create(ctx context.Context, article *models.NewsArticle) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.NewsArticle, error)
	List(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]*models.NewsArticle, error)
	Update(ctx context.Context, userID, id uuid.UUID, patch models.NewsArticlePatch) (*models.NewsArticle, error)
	Delete(ctx context.Context, userID, id uuid.UUID) (*models.NewsArticle, error)
}

type newsRepository struct {
	db *database.DB
}

// NewNewsRepository creates a new NewsRepository.
func NewNewsRepository(db *database.DB) NewsRepository {
	return &newsRepository{db: db}
}

var _ NewsRepository = (*newsRepository)(nil)

const newsColumns = `id, user_id, headline, url, source, sentiment,
		symbols, published_at, created_at, updated_at`

func (r *newsRepository) Create(ctx context.Context, article *models.NewsArticle) error {
	now := time.Now().UTC()
	if article.ID == uuid.Nil {
		article.ID = uuid.New()
	}
	article.CreatedAt = now
	article.UpdatedAt = now

	query := `
		INSERT INTO news_articles (
			id, user_id, headline, url, source, sentiment,
			symbols, published_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.Pool.Exec(ctx, query,
		article.ID, article.UserID, article.Headline, article.URL, article.Source,
		article.Sentiment, article.Symbols, article.PublishedAt, article.CreatedAt, article.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create news article: %w", err)
	}

	return nil
}

func (r *newsRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.NewsArticle, error) {
	query := `
		SELECT ` + newsColumns + `
		FROM news_articles
		WHERE id = $1 AND user_id = $2`

	row := r.db.Pool.QueryRow(ctx, query, id, userID)
	article, err := scanNewsArticle(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get news article: %w", err)
	}
	return article, nil
}

func (r *newsRepository) List(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]*models.NewsArticle, error) {
	filter = filter.Normalize()

	query := `
		SELECT ` + newsColumns + `
		FROM news_articles
		WHERE user_id = $1
		  AND ($2 = '' OR sentiment = $2)
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4`

	rows, err := r.db.Pool.Query(ctx, query, userID, filter.Status, filter.Limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list news articles: %w", err)
	}
	defer rows.Close()

	out := make([]*models.NewsArticle, 0)
	for rows.Next() {
		article, err := scanNewsArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan news article: %w", err)
		}
		out = append(out, article)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating news articles: %w", err)
	}

	return out, nil
}

func (r *newsRepository) Update(ctx context.Context, userID, id uuid.UUID, patch models.NewsArticlePatch) (*models.NewsArticle, error) {
	var b setBuilder
	applyOpt(&b, "headline", patch.Headline)
	applyOpt(&b, "url", patch.URL)
	applyOpt(&b, "source", patch.Source)
	applyOpt(&b, "sentiment", patch.Sentiment)
	applyOpt(&b, "symbols", patch.Symbols)
	applyOpt(&b, "published_at", patch.PublishedAt)

	if b.empty() {
		return r.GetByID(ctx, userID, id)
	}

	b.add("updated_at", time.Now().UTC())

	query := fmt.Sprintf(`
		UPDATE news_articles
		%s
		WHERE id = $%d AND user_id = $%d
		RETURNING `+newsColumns,
		b.set(), b.next(), b.next()+1)
	args := append(b.args, id, userID)

	row := r.db.Pool.QueryRow(ctx, query, args...)
	article, err := scanNewsArticle(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update news article: %w", err)
	}
	return article, nil
}

func (r *newsRepository) Delete(ctx context.Context, userID, id uuid.UUID) (*models.NewsArticle, error) {
	query := `
		DELETE FROM news_articles
		WHERE id = $1 AND user_id = $2
		RETURNING ` + newsColumns

	row := r.db.Pool.QueryRow(ctx, query, id, userID)
	article, err := scanNewsArticle(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to delete news article: %w", err)
	}
	return article, nil
}

func scanNewsArticle(row pgx.Row) (*models.NewsArticle, error) {
	var a models.NewsArticle
	err := row.Scan(
		&a.ID, &a.UserID, &a.Headline, &a.URL, &a.Source, &a.Sentiment,
		&a.Symbols, &a.PublishedAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
