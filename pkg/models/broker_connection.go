package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tradingbuddy/tradingbuddy-engine/pkg/jsonutil"
)

// Supported brokers.
const (
	BrokerTradier            = "tradier"
	BrokerAlpaca             = "alpaca"
	BrokerInteractiveBrokers = "interactive_brokers"
	BrokerSchwab             = "schwab"
	BrokerRobinhood          = "robinhood"
)

// AllowedBrokers is the closed set of broker_name values.
var AllowedBrokers = []string{
	BrokerTradier,
	BrokerAlpaca,
	BrokerInteractiveBrokers,
	BrokerSchwab,
	BrokerRobinhood,
}

// IsValidBroker reports whether name is a supported broker.
func IsValidBroker(name string) bool {
	for _, b := range AllowedBrokers {
		if b == name {
			return true
		}
	}
	return false
}

// BrokerConnection links a user to a brokerage account. APIKeyEncrypted
// holds the AES-GCM ciphertext of the broker API key; the plaintext never
// leaves the service layer and responses only carry a masked form.
type BrokerConnection struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"user_id"`
	BrokerName      string    `json:"broker_name"`
	APIKeyEncrypted *string   `json:"-"`
	AccountID       *string   `json:"account_id"`
	IsPaperTrading  bool      `json:"is_paper_trading"`
	IsConnected     bool      `json:"is_connected"`
	Config          *string   `json:"-"` // serialized JSON blob
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// BrokerConnectionPatch carries validated partial-update fields. Absent
// fields leave the stored value untouched; explicit nulls clear nullable
// columns.
type BrokerConnectionPatch struct {
	BrokerName      jsonutil.Optional[string]
	APIKeyEncrypted jsonutil.Optional[string]
	AccountID       jsonutil.Optional[string]
	IsPaperTrading  jsonutil.Optional[bool]
	IsConnected     jsonutil.Optional[bool]
	Config          jsonutil.Optional[string]
}
