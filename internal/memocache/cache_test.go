package memocache

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMissingKey(t *testing.T) {
	c := New()
	_, ok := c.Get("absent")
	assert.False(t, ok)
}

func TestInsertReturnsValueForChaining(t *testing.T) {
	c := New()
	value := map[string]interface{}{"a": float64(1)}
	assert.Equal(t, value, c.Insert("k", value, DefaultTTL))
}

func TestGetWithinTTL(t *testing.T) {
	c := New()
	c.Insert("k", "v", DefaultTTL)
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", got)
}

func TestExpiredEntryIsAbsent(t *testing.T) {
	c := New()
	c.Insert("k", "v", time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestInsertOverwrites(t *testing.T) {
	c := New()
	c.Insert("k", "old", DefaultTTL)
	c.Insert("k", "new", DefaultTTL)
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "new", got)
}

func TestGetReturnsIndependentCopy(t *testing.T) {
	c := New()
	c.Insert("k", map[string]interface{}{"nested": []interface{}{"a"}}, DefaultTTL)

	first, ok := c.Get("k")
	require.True(t, ok)
	first.(map[string]interface{})["nested"].([]interface{})[0] = "mutated"

	second, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, map[string]interface{}{"nested": []interface{}{"a"}}, second)
}

func TestInsertCopiesCallerValue(t *testing.T) {
	c := New()
	value := map[string]interface{}{"n": float64(1)}
	c.Insert("k", value, DefaultTTL)
	value["n"] = float64(2)

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, map[string]interface{}{"n": float64(1)}, got)
}

func mustJSON(t *testing.T, src string) interface{} {
	t.Helper()
	var value interface{}
	require.NoError(t, json.Unmarshal([]byte(src), &value))
	return value
}

func TestHashOrderIndependence(t *testing.T) {
	a := mustJSON(t, `{"a": 1, "b": 2, "c": {"x": [1, 2], "y": null}}`)
	b := mustJSON(t, `{"c": {"y": null, "x": [1, 2]}, "b": 2, "a": 1}`)
	assert.Equal(t, HashValue(a), HashValue(b))
}

func TestHashDistinguishesValues(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
	}{
		{name: "different values", a: `{"a": 1}`, b: `{"a": 2}`},
		{name: "different keys", a: `{"a": 1}`, b: `{"b": 1}`},
		{name: "array order matters", a: `[1, 2]`, b: `[2, 1]`},
		{name: "number vs string", a: `"1"`, b: `1`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEqual(t, HashValue(mustJSON(t, tt.a)), HashValue(mustJSON(t, tt.b)))
		})
	}
}

func TestHashStableAcrossCalls(t *testing.T) {
	value := mustJSON(t, `{"q": "boots", "page": 3, "flags": [true, false, null]}`)
	first := HashValue(value)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, HashValue(value))
	}
}

func TestHashNumericForms(t *testing.T) {
	// 1 hashes through the unsigned path, -1 the signed path, 1.5 the
	// float path; all three must be distinct.
	hashes := map[string]bool{
		HashValue(float64(1)):  true,
		HashValue(float64(-1)): true,
		HashValue(1.5):         true,
	}
	assert.Len(t, hashes, 3)
}
