package service

import (
	"time"

	"github.com/benbjohnson/clock"

	"fx-widget/internal/domain/model"
	"fx-widget/pkg/utils"
)

// RefreshScheduler applies the business-day rules that decide whether stored
// rates are still good. The week is fixed to Monday through Friday; holidays
// are not modelled.
type RefreshScheduler struct {
	clock clock.Clock
}

func NewRefreshScheduler(clk clock.Clock) *RefreshScheduler {
	return &RefreshScheduler{clock: clk}
}

// Decide evaluates the startup table against the persisted state, which is
// nil when nothing usable was stored.
func (s *RefreshScheduler) Decide(stored *model.AppState) model.Decision {
	if stored == nil {
		return model.DecisionFetch
	}

	now := s.clock.Now()
	if utils.IsWeekend(now) || utils.SameDay(stored.FetchTimestamp, now) {
		return model.DecisionReuse
	}

	return model.DecisionFetch
}

// AllowManualRefresh refuses user-triggered refreshes on weekends.
func (s *RefreshScheduler) AllowManualRefresh() error {
	if utils.IsWeekend(s.clock.Now()) {
		return ErrMarketClosed
	}
	return nil
}

// MarketOpen reports whether today is a business day.
func (s *RefreshScheduler) MarketOpen() bool {
	return !utils.IsWeekend(s.clock.Now())
}

// NextUpdate is midnight at the start of the next business day, and the
// number of calendar days until then.
func (s *RefreshScheduler) NextUpdate() (time.Time, int) {
	now := s.clock.Now()
	days := NextUpdateOffset(now.Weekday())
	return utils.StartOfDay(now.AddDate(0, 0, days)), days
}

// NextUpdateOffset returns how many days until the next weekday. Friday,
// Saturday and Sunday all resolve to Monday.
func NextUpdateOffset(day time.Weekday) int {
	switch day {
	case time.Friday:
		return 3
	case time.Saturday:
		return 2
	default:
		return 1
	}
}
