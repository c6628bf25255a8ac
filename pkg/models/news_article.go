package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tradingbuddy/tradingbuddy-engine/pkg/jsonutil"
)

// Sentiment labels for saved news.
const (
	SentimentBullish = "bullish"
	SentimentBearish = "bearish"
	SentimentNeutral = "neutral"
)

// AllowedSentiments is the closed set of sentiment values.
var AllowedSentiments = []string{SentimentBullish, SentimentBearish, SentimentNeutral}

// IsValidSentiment reports whether s is a valid sentiment label.
func IsValidSentiment(s string) bool {
	return s == SentimentBullish || s == SentimentBearish || s == SentimentNeutral
}

// NewsArticle is a news item a user saved to their feed. Symbols is a
// serialized JSON array of tickers the article mentions.
type NewsArticle struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	Headline    string     `json:"headline"`
	URL         *string    `json:"url"`
	Source      *string    `json:"source"`
	Sentiment   string     `json:"sentiment"`
	Symbols     *string    `json:"-"`
	PublishedAt *time.Time `json:"published_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewsArticlePatch carries validated partial-update fields.
type NewsArticlePatch struct {
	Headline    jsonutil.Optional[string]
	URL         jsonutil.Optional[string]
	Source      jsonutil.Optional[string]
	Sentiment   jsonutil.Optional[string]
	Symbols     jsonutil.Optional[string]
	PublishedAt jsonutil.Optional[time.Time]
}
