package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tradingbuddy/tradingbuddy-engine/pkg/jsonutil"
)

// Position sides.
const (
	PositionSideLong  = "long"
	PositionSideShort = "short"
)

// AllowedPositionSides is the closed set of side values.
var AllowedPositionSides = []string{PositionSideLong, PositionSideShort}

// Position lifecycle statuses.
const (
	PositionStatusOpen   = "open"
	PositionStatusClosed = "closed"
)

// AllowedPositionStatuses is the closed set of status values.
var AllowedPositionStatuses = []string{PositionStatusOpen, PositionStatusClosed}

// IsValidPositionSide reports whether s is a valid side.
func IsValidPositionSide(s string) bool {
	return s == PositionSideLong || s == PositionSideShort
}

// IsValidPositionStatus reports whether s is a valid position status.
func IsValidPositionStatus(s string) bool {
	return s == PositionStatusOpen || s == PositionStatusClosed
}

// Position is a user's holding in a single symbol.
type Position struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	Symbol     string    `json:"symbol"`
	Side       string    `json:"side"`
	Status     string    `json:"status"`
	Quantity   float64   `json:"quantity"`
	EntryPrice float64   `json:"entry_price"`
	ExitPrice  *float64  `json:"exit_price"`
	Notes      *string   `json:"notes"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// PositionPatch carries validated partial-update fields.
type PositionPatch struct {
	Symbol     jsonutil.Optional[string]
	Side       jsonutil.Optional[string]
	Status     jsonutil.Optional[string]
	Quantity   jsonutil.Optional[float64]
	EntryPrice jsonutil.Optional[float64]
	ExitPrice  jsonutil.Optional[float64]
	Notes      jsonutil.Optional[string]
}
