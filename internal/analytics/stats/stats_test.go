package stats

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMeanAndStdDev(t *testing.T) {
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	assert.Equal(t, 5.0, Mean(values))
	assert.Equal(t, 2.0, PopulationStdDev(values))
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 0.0, PopulationStdDev(nil))
}

func TestPercentGuardsZero(t *testing.T) {
	assert.Equal(t, 0.0, Percent(3, 0))
	assert.Equal(t, 50.0, Percent(1, 2))
	assert.Equal(t, 0.0, SafeDiv(1, 0))
}

func TestMedianDuration(t *testing.T) {
	tests := []struct {
		name string
		in   []time.Duration
		want time.Duration
	}{
		{name: "empty", in: nil, want: 0},
		{name: "odd", in: []time.Duration{3 * time.Minute, time.Minute, 2 * time.Minute}, want: 2 * time.Minute},
		{name: "even interpolates", in: []time.Duration{4 * time.Minute, time.Minute, 2 * time.Minute, 3 * time.Minute}, want: 150 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MedianDuration(tt.in))
		})
	}
}

func TestJSONFloat(t *testing.T) {
	assert.Equal(t, 1.5, JSONFloat(1.5))
	assert.Equal(t, "Infinity", JSONFloat(math.Inf(1)))
	assert.Equal(t, "NaN", JSONFloat(math.NaN()))
}

func TestProfitFactor(t *testing.T) {
	tests := []struct {
		name        string
		grossProfit float64
		grossLoss   float64
		want        float64
	}{
		{name: "ratio", grossProfit: 300, grossLoss: 100, want: 3},
		{name: "only profits is unbounded", grossProfit: 50, grossLoss: 0, want: math.Inf(1)},
		{name: "only losses", grossProfit: 0, grossLoss: 40, want: 0},
		{name: "nothing", grossProfit: 0, grossLoss: 0, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ProfitFactor(tt.grossProfit, tt.grossLoss))
		})
	}
}
