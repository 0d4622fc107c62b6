package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMinMax(t *testing.T) {
	min, max := MinMax([]float64{4, -2, 9, 0})
	assert.Equal(t, -2.0, min)
	assert.Equal(t, 9.0, max)

	min, max = MinMax(nil)
	assert.Equal(t, 0.0, min, "Empty input should not panic")
	assert.Equal(t, 0.0, max)
}

func TestSafeDiv(t *testing.T) {
	assert.Equal(t, 5.0, SafeDiv(10, 2))
	assert.Equal(t, 0.0, SafeDiv(10, 0), "Division by zero should return 0")
	assert.Equal(t, 0.0, SafeDiv(10, math.NaN()))
}

func TestPercentOf(t *testing.T) {
	assert.Equal(t, 50.0, PercentOf(25, 50))
	assert.Equal(t, 0.0, PercentOf(25, 0))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 5.0, Clamp(5, 0, 10))
	assert.Equal(t, 0.0, Clamp(-3, 0, 10))
	assert.Equal(t, 10.0, Clamp(42, 0, 10))
}

func TestCoerce(t *testing.T) {
	assert.Equal(t, 5.5, Coerce(5.5))
	assert.Equal(t, 0.0, Coerce(math.NaN()), "NaN coerces to 0")
	assert.Equal(t, 0.0, Coerce(math.Inf(1)), "Infinity coerces to 0")
	assert.Equal(t, 0.0, Coerce(math.Inf(-1)))
}
