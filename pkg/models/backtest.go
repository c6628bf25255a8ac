package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tradingbuddy/tradingbuddy-engine/pkg/jsonutil"
)

// Backtest lifecycle statuses. Transitions after creation are
// server-driven: queued -> running -> completed | failed.
const (
	BacktestStatusQueued    = "queued"
	BacktestStatusRunning   = "running"
	BacktestStatusCompleted = "completed"
	BacktestStatusFailed    = "failed"
)

// AllowedBacktestStatuses is the closed set of status values.
var AllowedBacktestStatuses = []string{
	BacktestStatusQueued,
	BacktestStatusRunning,
	BacktestStatusCompleted,
	BacktestStatusFailed,
}

// IsValidBacktestStatus reports whether s is a valid backtest status.
func IsValidBacktestStatus(s string) bool {
	for _, b := range AllowedBacktestStatuses {
		if b == s {
			return true
		}
	}
	return false
}

// Backtest is a strategy evaluation over a symbol and date range.
// Results is a serialized JSON blob written by the run step.
type Backtest struct {
	ID             uuid.UUID  `json:"id"`
	UserID         uuid.UUID  `json:"user_id"`
	Name           string     `json:"name"`
	ModelID        *uuid.UUID `json:"model_id"`
	Symbol         string     `json:"symbol"`
	StartDate      time.Time  `json:"start_date"`
	EndDate        time.Time  `json:"end_date"`
	InitialCapital float64    `json:"initial_capital"`
	Status         string     `json:"status"`
	Results        *string    `json:"-"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// BacktestPatch carries validated partial-update fields. Status and
// Results are server-set only and deliberately absent.
type BacktestPatch struct {
	Name           jsonutil.Optional[string]
	ModelID        jsonutil.Optional[uuid.UUID]
	Symbol         jsonutil.Optional[string]
	StartDate      jsonutil.Optional[time.Time]
	EndDate        jsonutil.Optional[time.Time]
	InitialCapital jsonutil.Optional[float64]
}
