package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tradingbuddy/tradingbuddy-engine/pkg/jsonutil"
)

// Model types supported by the training pipeline.
const (
	ModelTypeXGBoost  = "xgboost"
	ModelTypeLightGBM = "lightgbm"
	ModelTypeHARRV    = "har_rv"
	ModelTypeLSTM     = "lstm"
	ModelTypeEnsemble = "ensemble"
)

// AllowedModelTypes is the closed set of model_type values.
var AllowedModelTypes = []string{
	ModelTypeXGBoost,
	ModelTypeLightGBM,
	ModelTypeHARRV,
	ModelTypeLSTM,
	ModelTypeEnsemble,
}

// Model lifecycle statuses.
const (
	ModelStatusTraining = "training"
	ModelStatusReady    = "ready"
	ModelStatusDeployed = "deployed"
	ModelStatusArchived = "archived"
	ModelStatusFailed   = "failed"
)

// AllowedModelStatuses is the closed set of status values.
var AllowedModelStatuses = []string{
	ModelStatusTraining,
	ModelStatusReady,
	ModelStatusDeployed,
	ModelStatusArchived,
	ModelStatusFailed,
}

// IsValidModelType reports whether t is a supported model type.
func IsValidModelType(t string) bool {
	for _, m := range AllowedModelTypes {
		if m == t {
			return true
		}
	}
	return false
}

// IsValidModelStatus reports whether s is a valid model status.
func IsValidModelStatus(s string) bool {
	for _, m := range AllowedModelStatuses {
		if m == s {
			return true
		}
	}
	return false
}

// MLModel is metadata for a trained (or training) prediction model.
// Models are readable by any authenticated user; mutations remain
// owner-only. Hyperparameters and Metrics are serialized JSON blobs.
type MLModel struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"user_id"`
	Name            string    `json:"name"`
	ModelType       string    `json:"model_type"`
	Version         string    `json:"version"`
	Status          string    `json:"status"`
	Hyperparameters *string   `json:"-"`
	Metrics         *string   `json:"-"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// MLModelPatch carries validated partial-update fields.
type MLModelPatch struct {
	Name            jsonutil.Optional[string]
	ModelType       jsonutil.Optional[string]
	Version         jsonutil.Optional[string]
	Status          jsonutil.Optional[string]
	Hyperparameters jsonutil.Optional[string]
	Metrics         jsonutil.Optional[string]
}
