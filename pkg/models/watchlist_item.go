package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tradingbuddy/tradingbuddy-engine/pkg/jsonutil"
)

// WatchlistItem is a symbol a user is tracking, with an optional price
// target for alerting.
type WatchlistItem struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	Symbol        string    `json:"symbol"`
	Notes         *string   `json:"notes"`
	TargetPrice   *float64  `json:"target_price"`
	AlertsEnabled bool      `json:"alerts_enabled"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// WatchlistItemPatch carries validated partial-update fields.
type WatchlistItemPatch struct {
	Symbol        jsonutil.Optional[string]
	Notes         jsonutil.Optional[string]
	TargetPrice   jsonutil.Optional[float64]
	AlertsEnabled jsonutil.Optional[bool]
}
