// Package services implements the business rules for Trading Buddy
// resources: request validation, ownership enforcement, and the
// orchestration of store mutations.
package services

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tradingbuddy/tradingbuddy-engine/pkg/apperrors"
	"github.com/tradingbuddy/tradingbuddy-engine/pkg/jsonutil"
)

// Body is a decoded request payload. Decoding to raw messages keeps
// absent-vs-null distinguishable and lets each field apply its own
// coercion rules.
type Body map[string]json.RawMessage

// ownerAliases are the client-forbidden spellings of the owner field.
// Their presence in a body is an error independent of value.
var ownerAliases = []string{"user_id", "userId", "owner_id", "ownerId"}

// rejectOwnerField fails when the body names the owner under any alias.
// The code is always USER_ID_NOT_ALLOWED regardless of the alias used.
func rejectOwnerField(body Body) error {
	for _, alias := range ownerAliases {
		if _, present := body[alias]; present {
			return apperrors.FieldNotAllowed("user_id")
		}
	}
	return nil
}

// missingOnUpdate rejects clearing a required field in a partial update:
// null or empty for a required column reuses the MISSING_<FIELD> code.
func missingOnUpdate(field string) error {
	return apperrors.MissingField(field)
}

// requireString extracts a required string field. Absent, null, empty,
// or whitespace-only values yield MISSING_<FIELD>.
func requireString(body Body, field string) (string, error) {
	raw, present := body[field]
	if !present || jsonutil.IsNull(raw) {
		return "", apperrors.MissingField(field)
	}
	s := strings.TrimSpace(jsonutil.FlexibleStringValue(raw))
	if s == "" {
		return "", apperrors.MissingField(field)
	}
	return s, nil
}

// optionalString extracts an optional string field, preserving
// absent-vs-null.
func optionalString(body Body, field string) jsonutil.Optional[string] {
	raw, present := body[field]
	if !present {
		return jsonutil.Optional[string]{}
	}
	if jsonutil.IsNull(raw) {
		return jsonutil.Null[string]()
	}
	return jsonutil.Some(strings.TrimSpace(jsonutil.FlexibleStringValue(raw)))
}

// requireEnum extracts a required enumerated field and checks membership.
func requireEnum(body Body, field string, allowed []string, valid func(string) bool) (string, error) {
	s, err := requireString(body, field)
	if err != nil {
		return "", err
	}
	s = strings.ToLower(s)
	if !valid(s) {
		return "", apperrors.InvalidEnum(field, s, allowed)
	}
	return s, nil
}

// optionalEnum extracts an optional enumerated field. Explicit null is
// rejected: enum columns are not nullable.
func optionalEnum(body Body, field string, allowed []string, valid func(string) bool) (jsonutil.Optional[string], error) {
	raw, present := body[field]
	if !present {
		return jsonutil.Optional[string]{}, nil
	}
	if jsonutil.IsNull(raw) {
		return jsonutil.Optional[string]{}, apperrors.InvalidEnum(field, "null", allowed)
	}
	s := strings.ToLower(strings.TrimSpace(jsonutil.FlexibleStringValue(raw)))
	if !valid(s) {
		return jsonutil.Optional[string]{}, apperrors.InvalidEnum(field, s, allowed)
	}
	return jsonutil.Some(s), nil
}

// requireNumber extracts a required numeric field, coercing numeric
// strings. Non-numbers yield INVALID_<FIELD>.
func requireNumber(body Body, field string) (float64, error) {
	raw, present := body[field]
	if !present || jsonutil.IsNull(raw) {
		return 0, apperrors.MissingField(field)
	}
	f, ok := jsonutil.FlexibleFloat(raw)
	if !ok {
		return 0, apperrors.InvalidField(field, "not a number")
	}
	return f, nil
}

// optionalNumber extracts an optional numeric field with string coercion,
// preserving absent-vs-null.
func optionalNumber(body Body, field string) (jsonutil.Optional[float64], error) {
	raw, present := body[field]
	if !present {
		return jsonutil.Optional[float64]{}, nil
	}
	if jsonutil.IsNull(raw) {
		return jsonutil.Null[float64](), nil
	}
	f, ok := jsonutil.FlexibleFloat(raw)
	if !ok {
		return jsonutil.Optional[float64]{}, apperrors.InvalidField(field, "not a number")
	}
	return jsonutil.Some(f), nil
}

// optionalBool extracts an optional boolean field. Only JSON booleans are
// accepted.
func optionalBool(body Body, field string) (jsonutil.Optional[bool], error) {
	raw, present := body[field]
	if !present {
		return jsonutil.Optional[bool]{}, nil
	}
	if jsonutil.IsNull(raw) {
		return jsonutil.Null[bool](), nil
	}
	var v bool
	if err := json.Unmarshal(raw, &v); err != nil {
		return jsonutil.Optional[bool]{}, apperrors.InvalidType(field, "a boolean")
	}
	return jsonutil.Some(v), nil
}

// optionalBlob extracts a JSON-blob field supplied as an object or a
// pre-serialized string, normalized to its stored serialization.
func optionalBlob(body Body, field string) (jsonutil.Optional[string], error) {
	raw, present := body[field]
	if !present {
		return jsonutil.Optional[string]{}, nil
	}
	if jsonutil.IsNull(raw) {
		return jsonutil.Null[string](), nil
	}
	stored, err := jsonutil.NormalizeBlob(raw)
	if err != nil {
		if errors.Is(err, jsonutil.ErrBlobBadJSON) {
			return jsonutil.Optional[string]{}, apperrors.InvalidJSON(field)
		}
		return jsonutil.Optional[string]{}, apperrors.InvalidType(field, "a JSON object, array, or string")
	}
	if stored == nil {
		return jsonutil.Null[string](), nil
	}
	return jsonutil.Some(*stored), nil
}

// optionalUUID extracts an optional UUID field, preserving
// absent-vs-null.
func optionalUUID(body Body, field string) (jsonutil.Optional[uuid.UUID], error) {
	raw, present := body[field]
	if !present {
		return jsonutil.Optional[uuid.UUID]{}, nil
	}
	if jsonutil.IsNull(raw) {
		return jsonutil.Null[uuid.UUID](), nil
	}
	s := strings.TrimSpace(jsonutil.FlexibleStringValue(raw))
	id, err := uuid.Parse(s)
	if err != nil {
		return jsonutil.Optional[uuid.UUID]{}, apperrors.InvalidField(field, "not a valid UUID")
	}
	return jsonutil.Some(id), nil
}

// dateLayouts are the accepted date formats, most specific first.
var dateLayouts = []string{time.RFC3339, "2006-01-02"}

// requireDate extracts a required date field.
func requireDate(body Body, field string) (time.Time, error) {
	raw, present := body[field]
	if !present || jsonutil.IsNull(raw) {
		return time.Time{}, apperrors.MissingField(field)
	}
	t, ok := parseDate(jsonutil.FlexibleStringValue(raw))
	if !ok {
		return time.Time{}, apperrors.InvalidField(field, "not a valid date (want YYYY-MM-DD or RFC 3339)")
	}
	return t, nil
}

// optionalDate extracts an optional date field, preserving
// absent-vs-null.
func optionalDate(body Body, field string) (jsonutil.Optional[time.Time], error) {
	raw, present := body[field]
	if !present {
		return jsonutil.Optional[time.Time]{}, nil
	}
	if jsonutil.IsNull(raw) {
		return jsonutil.Null[time.Time](), nil
	}
	t, ok := parseDate(jsonutil.FlexibleStringValue(raw))
	if !ok {
		return jsonutil.Optional[time.Time]{}, apperrors.InvalidField(field, "not a valid date (want YYYY-MM-DD or RFC 3339)")
	}
	return jsonutil.Some(t), nil
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
