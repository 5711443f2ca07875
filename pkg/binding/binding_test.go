package binding

import (
	"errors"
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ormasoftchile/tseq/pkg/signature"
)

func TestParseBool(t *testing.T) {
	for _, s := range []string{"true", "TRUE", " yes ", "On", "1"} {
		assert.True(t, ParseBool(s), s)
	}
	for _, s := range []string{"", "false", "0", "no", "off", "2", "y", "truthy"} {
		assert.False(t, ParseBool(s), s)
	}
}

func TestCoerce(t *testing.T) {
	tests := []struct {
		text string
		typ  signature.Type
		want any
	}{
		{"42", signature.Int, 42},
		{" -7 ", signature.Int, -7},
		{"2.5", signature.Float, 2.5},
		{"3", signature.Float, 3.0},
		{"1e3", signature.Float, 1000.0},
		{"yes", signature.Bool, true},
		{"banana", signature.Bool, false},
		{" raw text ", signature.String, " raw text "},
		{"", signature.Untyped, ""},
	}
	for _, tt := range tests {
		t.Run(string(tt.typ)+"/"+tt.text, func(t *testing.T) {
			got, err := Coerce(tt.text, tt.typ)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCoerceFloatSpecials(t *testing.T) {
	got, err := Coerce("inf", signature.Float)
	require.NoError(t, err)
	assert.True(t, math.IsInf(got.(float64), 1))
}

func TestCoerceFailures(t *testing.T) {
	for _, tc := range []struct {
		text string
		typ  signature.Type
	}{
		{"x", signature.Int},
		{"", signature.Int},
		{"1.5", signature.Int},
		{"0x10", signature.Int},
		{"abc", signature.Float},
		{"", signature.Float},
	} {
		_, err := Coerce(tc.text, tc.typ)
		assert.Error(t, err, "%s %q", tc.typ, tc.text)
	}

	_, err := Coerce("99999999999999999999", signature.Int)
	assert.ErrorIs(t, err, strconv.ErrRange)
}

type params map[string]string

func (p params) Param(name string) string { return p[name] }

func TestBind(t *testing.T) {
	sig := signature.Signature{Params: []signature.Param{
		{Name: "a", Type: signature.Int},
		{Name: "b", Type: signature.Int},
		{Name: "loud", Type: signature.Bool},
	}}

	args, err := Bind(params{"a": "2", "b": "3"}, sig)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 2, "b": 3, "loud": false}, args)
}

func TestBindStopsAtFirstFailure(t *testing.T) {
	sig := signature.Signature{Params: []signature.Param{
		{Name: "a", Type: signature.Int},
		{Name: "b", Type: signature.Int},
	}}

	_, err := Bind(params{"a": "x", "b": "y"}, sig)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrArgumentConversion)

	var ce *ConversionError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "a", ce.Param)
	assert.Contains(t, err.Error(), "a: ")
	assert.NotContains(t, err.Error(), "\"y\"")
}
