package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/tradingbuddy/tradingbuddy-engine/pkg/apperrors"
	"github.com/tradingbuddy/tradingbuddy-engine/pkg/logging"
)

// ErrorResponse writes a JSON error response and returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, code, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(map[string]string{
		"error": message,
		"code":  code,
	})
}

// DeleteResponse confirms a deletion and carries the removed row.
type DeleteResponse struct {
	Message string      `json:"message"`
	Deleted interface{} `json:"deleted"`
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// WriteServiceError maps a service-layer error onto the wire. Validation
// errors carry their own code; sentinel errors map to fixed statuses;
// anything else is a 500 with the detail logged rather than leaked.
func WriteServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var verr *apperrors.ValidationError
	switch {
	case errors.As(err, &verr):
		writeOrLog(w, logger, http.StatusBadRequest, verr.Code, verr.Message)
	case errors.Is(err, apperrors.ErrNotFound):
		writeOrLog(w, logger, http.StatusNotFound, "NOT_FOUND", "resource not found")
	case errors.Is(err, apperrors.ErrForbidden):
		writeOrLog(w, logger, http.StatusForbidden, "FORBIDDEN", "you do not own this resource")
	case errors.Is(err, apperrors.ErrConflict):
		writeOrLog(w, logger, http.StatusConflict, "CONFLICT", "resource state conflict")
	default:
		logger.Error("Request failed", zap.String("error", logging.SanitizeError(err)))
		writeOrLog(w, logger, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

func writeOrLog(w http.ResponseWriter, logger *zap.Logger, status int, code, message string) {
	if err := ErrorResponse(w, status, code, message); err != nil {
		logger.Error("Failed to write error response", zap.Error(err))
	}
}
