package utils

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToInt(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		want    int
		wantErr bool
	}{
		{"int", 5, 5, false},
		{"int64", int64(7), 7, false},
		{"integral float", float64(300), 300, false},
		{"fractional float", 1.5, 0, true},
		{"json number", json.Number("500"), 500, false},
		{"json number float", json.Number("2.0"), 2, false},
		{"numeric string", " 42 ", 42, false},
		{"word", "fast", 0, true},
		{"bool", true, 0, true},
		{"nil", nil, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToInt(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToInt_OutOfRange(t *testing.T) {
	for name, in := range map[string]any{
		"json exponent":    json.Number("1e30"),
		"float above max":  1e19,
		"float below min":  -1e19,
		"two to the 63":    math.Ldexp(1, 63),
		"uint64 above max": uint64(math.MaxUint64),
		"uint above max":   uint(math.MaxUint),
		"string overflow":  "99999999999999999999",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ToInt(in)
			assert.Error(t, err)
		})
	}

	got, err := ToInt(uint64(math.MaxInt))
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt, got)

	_, err = ToInt(json.Number("1e30"))
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestToPositiveInt(t *testing.T) {
	got, err := ToPositiveInt(json.Number("250"))
	require.NoError(t, err)
	assert.Equal(t, 250, got)

	for _, in := range []any{0, -1, json.Number("0"), json.Number("1e30")} {
		_, err := ToPositiveInt(in)
		assert.ErrorIs(t, err, ErrOutOfRange, "input %v", in)
	}

	_, err = ToPositiveInt("fast")
	assert.Error(t, err)
}

func TestToString(t *testing.T) {
	s, err := ToString("Trip")
	require.NoError(t, err)
	assert.Equal(t, "Trip", s)

	s, err = ToString([]byte("raw"))
	require.NoError(t, err)
	assert.Equal(t, "raw", s)

	_, err = ToString(json.Number("1"))
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestToBool(t *testing.T) {
	for in, want := range map[any]bool{true: true, false: false, "TRUE": true, "0": false, 1: true} {
		got, err := ToBool(in)
		require.NoError(t, err, "input %v", in)
		assert.Equal(t, want, got, "input %v", in)
	}

	_, err := ToBool(2)
	assert.Error(t, err)
	_, err = ToBool("maybe")
	assert.Error(t, err)
}

func TestToFloat(t *testing.T) {
	f, err := ToFloat(json.Number("42.36"))
	require.NoError(t, err)
	assert.InDelta(t, 42.36, f, 1e-9)

	f, err = ToFloat(3)
	require.NoError(t, err)
	assert.Equal(t, 3.0, f)

	_, err = ToFloat([]int{1})
	assert.Error(t, err)
}
