package jsonutil

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlexibleFloat(t *testing.T) {
	cases := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{`100.5`, 100.5, true},
		{`"100.5"`, 100.5, true},
		{`" 42 "`, 42, true},
		{`-3`, -3, true},
		{`"abc"`, 0, false},
		{`null`, 0, false},
		{`true`, 0, false},
		{`{}`, 0, false},
	}
	for _, tc := range cases {
		got, ok := FlexibleFloat(json.RawMessage(tc.raw))
		assert.Equal(t, tc.ok, ok, "raw %s", tc.raw)
		if tc.ok {
			assert.Equal(t, tc.want, got, "raw %s", tc.raw)
		}
	}
}

func TestFlexibleStringValue(t *testing.T) {
	assert.Equal(t, "hello", FlexibleStringValue(json.RawMessage(`"hello"`)))
	assert.Equal(t, "42", FlexibleStringValue(json.RawMessage(`42`)))
	assert.Equal(t, "2.5", FlexibleStringValue(json.RawMessage(`2.5`)))
	assert.Equal(t, "true", FlexibleStringValue(json.RawMessage(`true`)))
	assert.Equal(t, "", FlexibleStringValue(json.RawMessage(`null`)))
}

func TestOptional(t *testing.T) {
	absent := Optional[string]{}
	assert.False(t, absent.Set)
	assert.Nil(t, absent.Ptr())

	null := Null[int]()
	assert.True(t, null.Set)
	assert.True(t, null.Null)
	assert.Nil(t, null.Ptr())

	some := Some(7)
	assert.True(t, some.Set)
	assert.False(t, some.Null)
	p := some.Ptr()
	assert.NotNil(t, p)
	assert.Equal(t, 7, *p)
}
