package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tradingbuddy/tradingbuddy-engine/pkg/repositories"
	"github.com/tradingbuddy/tradingbuddy-engine/pkg/services"
)

// DecodeBody reads the request body as a JSON object keyed by field.
// Returns false after writing an error response when the body is not a
// JSON object.
func DecodeBody(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (services.Body, bool) {
	var body services.Body
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeOrLog(w, logger, http.StatusBadRequest, "INVALID_BODY", "request body must be a JSON object")
		return nil, false
	}
	return body, true
}

// ParseID extracts and validates the resource ID from the request path.
// Returns uuid.Nil and false after writing an error response when the
// path segment is not a UUID.
// Expects path parameter: id
func ParseID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (uuid.UUID, bool) {
	raw := r.PathValue("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		writeOrLog(w, logger, http.StatusBadRequest, "INVALID_ID", "invalid resource ID format")
		return uuid.Nil, false
	}
	return id, true
}

// ParseListParams reads limit/offset/status/type query parameters into a
// list filter. Non-numeric limit or offset values are rejected; range
// clamping happens in ListFilter.Normalize.
func ParseListParams(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (repositories.ListFilter, bool) {
	var filter repositories.ListFilter

	q := r.URL.Query()
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			writeOrLog(w, logger, http.StatusBadRequest, "INVALID_LIMIT", "limit must be an integer")
			return filter, false
		}
		filter.Limit = limit
	}
	if raw := q.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil {
			writeOrLog(w, logger, http.StatusBadRequest, "INVALID_OFFSET", "offset must be an integer")
			return filter, false
		}
		filter.Offset = offset
	}
	filter.Status = q.Get("status")
	filter.Type = q.Get("type")

	return filter, true
}
