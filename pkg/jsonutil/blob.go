package jsonutil

import (
	"encoding/json"
	"errors"
)

// Blob-field decode errors. Callers translate these into the field's
// INVALID_<FIELD>_JSON / INVALID_<FIELD>_TYPE validation codes.
var (
	ErrBlobBadJSON = errors.New("string value is not valid JSON")
	ErrBlobType    = errors.New("value is neither a JSON object, array, nor string")
)

// NormalizeBlob canonicalizes a JSON-blob field supplied either as a
// native JSON object/array or as a pre-serialized JSON string. The result
// is the compact serialized form stored in the database, so a later read
// deserializes back to the submitted object. Returns nil for null/absent.
func NormalizeBlob(raw json.RawMessage) (*string, error) {
	if len(raw) == 0 || IsNull(raw) {
		return nil, nil
	}

	if IsString(raw) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, ErrBlobType
		}
		if !json.Valid([]byte(s)) {
			return nil, ErrBlobBadJSON
		}
		compact, err := compactJSON([]byte(s))
		if err != nil {
			return nil, ErrBlobBadJSON
		}
		return &compact, nil
	}

	if !IsObject(raw) && !IsArray(raw) {
		return nil, ErrBlobType
	}

	compact, err := compactJSON(raw)
	if err != nil {
		return nil, ErrBlobType
	}
	return &compact, nil
}

// compactJSON re-marshals through any to strip insignificant whitespace
// and normalize formatting.
func compactJSON(b []byte) (string, error) {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return "", err
	}
	out, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// BlobValue deserializes a stored blob back into a generic JSON value
// for response bodies. A nil stored value yields nil.
func BlobValue(stored *string) any {
	if stored == nil || *stored == "" {
		return nil
	}
	var v any
	if err := json.Unmarshal([]byte(*stored), &v); err != nil {
		// Stored blobs are validated on write; a parse failure here means
		// the row predates validation. Expose the raw text rather than drop it.
		return *stored
	}
	return v
}
