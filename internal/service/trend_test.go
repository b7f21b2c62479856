package service

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fx-widget/internal/domain/model"
)

const epsilon = 1e-9

func TestTrendEstimator_SynthesizeBounds(t *testing.T) {
	estimator := NewTrendEstimator(nil, 0.015, 0.02)

	for i := 0; i < 1000; i++ {
		previous := estimator.Synthesize(referenceRates)
		require.Len(t, previous, len(referenceRates))

		for code, rate := range referenceRates {
			got, ok := previous[code]
			require.True(t, ok, code.String())
			assert.GreaterOrEqual(t, got, rate*0.985-epsilon, code.String())
			assert.LessOrEqual(t, got, rate*1.015+epsilon, code.String())
		}
	}
}

func TestTrendEstimator_SynthesizeIsIndependentPerCurrency(t *testing.T) {
	estimator := NewTrendEstimator(rand.NewPCG(7, 11), 0.015, 0.02)
	flat := model.RateSnapshot{model.USD: 1, model.EUR: 1, model.COP: 1, model.VES: 1}

	previous := estimator.Synthesize(flat)

	distinct := map[float64]bool{}
	for _, v := range previous {
		distinct[v] = true
	}
	assert.Greater(t, len(distinct), 1)
}

func TestTrendEstimator_Deterministic(t *testing.T) {
	a := NewTrendEstimator(rand.NewPCG(1, 2), 0.015, 0.02)
	b := NewTrendEstimator(rand.NewPCG(1, 2), 0.015, 0.02)
	end := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, a.History(1.5, 7, end), b.History(1.5, 7, end))
}

func TestTrendEstimator_ZeroSpread(t *testing.T) {
	estimator := NewTrendEstimator(nil, 0, 0)
	assert.Equal(t, referenceRates, estimator.Synthesize(referenceRates))
}

func TestTrendEstimator_History(t *testing.T) {
	estimator := NewTrendEstimator(nil, 0.015, 0.02)
	end := time.Date(2026, 10, 19, 15, 0, 0, 0, time.UTC) // Monday

	points := estimator.History(4193.55, 7, end)
	require.Len(t, points, 7)

	assert.Equal(t, "2026-10-13", points[0].Date)
	assert.Equal(t, "Tue", points[0].Label)
	assert.Equal(t, "2026-10-19", points[6].Date)
	assert.Equal(t, "Mon", points[6].Label)
	assert.Equal(t, 4193.55, points[6].Rate)

	for _, p := range points {
		assert.GreaterOrEqual(t, p.Rate, 4193.55*0.98-epsilon)
		assert.LessOrEqual(t, p.Rate, 4193.55*1.02+epsilon)
	}

	assert.Empty(t, estimator.History(1, 0, end))
}
