package indicator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEMASeries_WarmUpGate(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	series := EMASeries(values, 6) // minPeriods(6) = 3

	assert.True(t, math.IsNaN(series[0]))
	assert.True(t, math.IsNaN(series[1]))
	assert.False(t, math.IsNaN(series[2]))
	assert.False(t, math.IsNaN(series[4]))
}

func TestEMASeries_MatchesReferenceRecurrence(t *testing.T) {
	values := []float64{10, 12, 11, 13, 15, 14}
	span := 3
	alpha := 2.0 / 4.0

	expected := values[0]
	for i := 1; i < len(values); i++ {
		expected = alpha*values[i] + (1-alpha)*expected
	}

	series := EMASeries(values, span)
	assert.InDelta(t, expected, series[len(series)-1], 1e-9)
}

func TestEMALast_InsufficientData(t *testing.T) {
	_, ok := EMALast([]float64{1}, 10)
	assert.False(t, ok)
}
