// Package jsonutil provides tolerant decoding helpers for request
// payloads: JSON-blob fields that arrive as either objects or
// pre-serialized strings, numeric fields that arrive as strings, and
// per-field presence tracking for partial updates.
package jsonutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FlexibleStringValue converts a json.RawMessage to a string, handling
// clients that send numbers or booleans where a string is expected.
// Returns empty string for null/empty.
func FlexibleStringValue(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var strVal string
	if err := json.Unmarshal(raw, &strVal); err == nil {
		return strVal
	}

	var numVal float64
	if err := json.Unmarshal(raw, &numVal); err == nil {
		if numVal == float64(int64(numVal)) {
			return fmt.Sprintf("%d", int64(numVal))
		}
		return fmt.Sprintf("%g", numVal)
	}

	var boolVal bool
	if err := json.Unmarshal(raw, &boolVal); err == nil {
		return fmt.Sprintf("%t", boolVal)
	}

	return string(raw)
}

// FlexibleFloat converts a json.RawMessage to a float64, accepting both
// JSON numbers and numeric strings ("100.5"). The second return value is
// false when the raw value is neither.
func FlexibleFloat(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}

	var numVal float64
	if err := json.Unmarshal(raw, &numVal); err == nil {
		return numVal, true
	}

	var strVal string
	if err := json.Unmarshal(raw, &strVal); err == nil {
		f, err := strconv.ParseFloat(strings.TrimSpace(strVal), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}

	return 0, false
}

// IsNull reports whether raw is the JSON null literal.
func IsNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}

// IsString reports whether raw is a JSON string.
func IsString(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '"'
}

// IsArray reports whether raw is a JSON array.
func IsArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

// IsObject reports whether raw is a JSON object.
func IsObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}
