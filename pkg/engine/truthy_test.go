package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruthy(t *testing.T) {
	var nilMap map[string]int
	var nilPtr *int
	one := 1

	truthy := []any{true, 1, -1, uint8(3), 0.1, math.NaN(), "x", []int{0}, map[string]int{"a": 0}, &one, struct{}{}}
	falsy := []any{nil, false, 0, uint(0), 0.0, "", []int{}, nilMap, nilPtr, [0]int{}}

	for _, v := range truthy {
		assert.True(t, Truthy(v), "%#v", v)
	}
	for _, v := range falsy {
		assert.False(t, Truthy(v), "%#v", v)
	}
}
