package httpapi

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCORSConfig_Allowed(t *testing.T) {
	c := CORSConfig{
		Origins:      []string{"http://localhost:5173", "https://shop.example.com"},
		HostSuffixes: []string{".vercel.app"},
	}

	for origin, want := range map[string]bool{
		"http://localhost:5173":           true,
		"https://shop.example.com":        true,
		"https://preview-123.vercel.app":  true,
		"https://PREVIEW.Vercel.App":      true,
		"https://preview.vercel.app:8443": true,
		"http://localhost:3000":           false,
		"https://vercel.app":              false,
		"https://evil.com/.vercel.app":    false,
		"https://vercel.app.evil.com":     false,
		"ftp://x.vercel.app":              false,
		"":                                false,
		"null":                            false,
	} {
		assert.Equal(t, want, c.Allowed(origin), origin)
	}

	assert.False(t, CORSConfig{}.Allowed("http://localhost:5173"))
}

func TestNumber_UnmarshalJSON(t *testing.T) {
	var v struct {
		A number  `json:"a"`
		B number  `json:"b"`
		C *number `json:"c"`
		D number  `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 2.5, "b": "12", "c": null, "d": ""}`), &v))
	assert.Equal(t, number(2.5), v.A)
	assert.Equal(t, number(12), v.B)
	assert.Nil(t, v.C)
	assert.Equal(t, number(0), v.D)

	n, ok := v.B.int64()
	assert.True(t, ok)
	assert.Equal(t, int64(12), n)
	_, ok = v.A.int64()
	assert.False(t, ok)

	assert.Error(t, json.Unmarshal([]byte(`{"a": "abc"}`), &v))
	assert.Error(t, json.Unmarshal([]byte(`{"a": "NaN"}`), &v))
}

func TestNumber_Int64Range(t *testing.T) {
	for _, tt := range []struct {
		in   number
		want int64
		ok   bool
	}{
		{number(1 << 62), 1 << 62, true},
		{number(math.MinInt64), math.MinInt64, true},
		{number(1 << 63), 0, false},
		{number(math.MaxInt64), 0, false},
		{number(math.Inf(1)), 0, false},
		{number(math.Inf(-1)), 0, false},
		{number(-1 << 64), 0, false},
	} {
		got, ok := tt.in.int64()
		assert.Equal(t, tt.ok, ok, float64(tt.in))
		assert.Equal(t, tt.want, got, float64(tt.in))
	}
}
