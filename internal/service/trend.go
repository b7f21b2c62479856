package service

import (
	"math/rand/v2"
	"sync"
	"time"

	"fx-widget/internal/domain/model"
	"fx-widget/pkg/utils"
)

// TrendEstimator fabricates comparison data when no historical source exists.
// Everything it returns is a display heuristic with no accuracy guarantee;
// callers label it model.TrendSourceSynthetic.
type TrendEstimator struct {
	mu            sync.Mutex
	rnd           *rand.Rand
	spread        float64
	historySpread float64
}

func NewTrendEstimator(src rand.Source, spread, historySpread float64) *TrendEstimator {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &TrendEstimator{
		rnd:           rand.New(src),
		spread:        spread,
		historySpread: historySpread,
	}
}

// perturb scales rate by a uniform factor in [1-spread, 1+spread].
func (t *TrendEstimator) perturb(rate, spread float64) float64 {
	t.mu.Lock()
	u := t.rnd.Float64()
	t.mu.Unlock()

	return rate * (1 + (u*2*spread - spread))
}

// Synthesize perturbs every rate independently within the configured spread.
func (t *TrendEstimator) Synthesize(current model.RateSnapshot) model.RateSnapshot {
	previous := make(model.RateSnapshot, len(current))
	for code, rate := range current {
		previous[code] = t.perturb(rate, t.spread)
	}
	return previous
}

// History produces a daily series of the given length ending on end, with the
// last point pinned to rate.
func (t *TrendEstimator) History(rate float64, days int, end time.Time) []model.HistoryPoint {
	if days < 1 {
		return []model.HistoryPoint{}
	}

	points := make([]model.HistoryPoint, 0, days)
	for i := days - 1; i >= 0; i-- {
		date := end.AddDate(0, 0, -i)
		points = append(points, model.HistoryPoint{
			Date:  utils.FormatDate(date),
			Label: date.Weekday().String()[:3],
			Rate:  t.perturb(rate, t.historySpread),
		})
	}
	points[len(points)-1].Rate = rate

	return points
}
