package jsonutil

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeBlob_ObjectAndStringAgree(t *testing.T) {
	object, err := NormalizeBlob(json.RawMessage(`{"a": 1, "b": [true]}`))
	require.NoError(t, err)
	stringified, err := NormalizeBlob(json.RawMessage(`"{\"a\": 1, \"b\": [true]}"`))
	require.NoError(t, err)

	require.NotNil(t, object)
	require.NotNil(t, stringified)
	assert.Equal(t, *object, *stringified)
}

func TestNormalizeBlob_Compacts(t *testing.T) {
	stored, err := NormalizeBlob(json.RawMessage("{\n  \"a\": 1\n}"))
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, `{"a":1}`, *stored)
}

func TestNormalizeBlob_Arrays(t *testing.T) {
	stored, err := NormalizeBlob(json.RawMessage(`["NVDA", "AMD"]`))
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, `["NVDA","AMD"]`, *stored)
}

func TestNormalizeBlob_NullAndAbsent(t *testing.T) {
	stored, err := NormalizeBlob(json.RawMessage(`null`))
	require.NoError(t, err)
	assert.Nil(t, stored)

	stored, err = NormalizeBlob(nil)
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestNormalizeBlob_BadJSONString(t *testing.T) {
	_, err := NormalizeBlob(json.RawMessage(`"{not json"`))
	assert.ErrorIs(t, err, ErrBlobBadJSON)
}

func TestNormalizeBlob_WrongType(t *testing.T) {
	for _, raw := range []string{`42`, `true`} {
		_, err := NormalizeBlob(json.RawMessage(raw))
		assert.ErrorIs(t, err, ErrBlobType, "raw %s", raw)
	}
}

func TestBlobValue_RoundTrip(t *testing.T) {
	stored, err := NormalizeBlob(json.RawMessage(`{"layers": 4}`))
	require.NoError(t, err)

	v := BlobValue(stored)
	m, ok := v.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 4.0, m["layers"])
}

func TestBlobValue_Nil(t *testing.T) {
	assert.Nil(t, BlobValue(nil))

	empty := ""
	assert.Nil(t, BlobValue(&empty))
}
