package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"golang.org/x/sync/singleflight"

	"fx-widget/internal/domain/model"
	"fx-widget/internal/domain/ports"
	"fx-widget/internal/metrics"
	"fx-widget/pkg/logger"
	"fx-widget/pkg/utils"
)

const (
	refreshFlightKey    = "refresh"
	defaultFetchTimeout = 30 * time.Second
)

// Notices surfaced to the presentation layer.
const (
	NoticeMarketClosed = "Market closed. Next update: Monday"
	NoticeAutoUpdated  = "Rates updated automatically"
	NoticeOffline      = "Offline mode: using last known rates"
	NoticeOfflineFirst = "Offline mode: using estimated default rates"
)

// WidgetService owns the single live AppState. Only the fetch path replaces
// it, and every fetch runs through one singleflight key so overlapping
// refresh triggers share a single provider call and a single store write.
type WidgetService struct {
	fetcher   ports.RateFetcher
	store     ports.StateStore
	trend     *TrendEstimator
	scheduler *RefreshScheduler
	engine    *ConversionEngine
	clock     clock.Clock
	log       *logger.Logger
	metrics   *metrics.Metrics

	flight singleflight.Group

	mu           sync.RWMutex
	state        model.AppState
	stored       bool
	base         model.Currency
	defaultBase  model.Currency
	historyDays  int
	fetchTimeout time.Duration
}

type Options struct {
	DefaultBase model.Currency
	HistoryDays int

	// FetchTimeout bounds one shared fetch, retries included.
	FetchTimeout time.Duration
}

func NewWidgetService(
	fetcher ports.RateFetcher,
	store ports.StateStore,
	trend *TrendEstimator,
	clk clock.Clock,
	log *logger.Logger,
	m *metrics.Metrics,
	opts Options,
) *WidgetService {
	base := opts.DefaultBase
	if !base.IsSupported() {
		base = model.USD
	}
	days := opts.HistoryDays
	if days < 1 {
		days = 7
	}
	fetchTimeout := opts.FetchTimeout
	if fetchTimeout <= 0 {
		fetchTimeout = defaultFetchTimeout
	}

	return &WidgetService{
		fetcher:      fetcher,
		store:        store,
		trend:        trend,
		scheduler:    NewRefreshScheduler(clk),
		engine:       NewConversionEngine(),
		clock:        clk,
		log:          log,
		metrics:      m,
		state:        model.DefaultState(clk.Now()),
		base:         base,
		defaultBase:  base,
		historyDays:  days,
		fetchTimeout: fetchTimeout,
	}
}

// Restore loads the base preference and the persisted state without
// fetching. It reports whether a stored state became live.
func (s *WidgetService) Restore(ctx context.Context) bool {
	if base, ok := s.store.LoadBase(ctx); ok {
		s.mu.Lock()
		s.base = base
		s.mu.Unlock()
	}

	stored, found := s.store.Load(ctx)
	if !found || stored == nil {
		return false
	}

	s.mu.Lock()
	s.state = stored.Clone()
	s.stored = true
	s.mu.Unlock()
	return true
}

// Init restores the persisted state, then fetches only when the business-day
// rules say it is stale. A stale state stays live if that fetch fails.
func (s *WidgetService) Init(ctx context.Context) model.RefreshReport {
	var stored *model.AppState
	found := s.Restore(ctx)
	if found {
		st := s.State()
		stored = &st
	}

	decision := s.scheduler.Decide(stored)
	s.metrics.RefreshDecisionsTotal.WithLabelValues(decision.String()).Inc()
	s.log.Info("Startup refresh decision", "decision", decision, "stored", found)

	if decision == model.DecisionReuse {
		return model.RefreshReport{Decision: decision, State: s.State()}
	}

	report, err := s.refresh(ctx)
	report.Decision = decision
	if err != nil {
		s.log.Warn("Startup fetch failed, using fallback rates", "error", err)
	}
	return report
}

// Refresh is the user-triggered refresh. Weekends are refused with
// ErrMarketClosed without contacting the provider; weekdays always fetch.
func (s *WidgetService) Refresh(ctx context.Context) (model.RefreshReport, error) {
	if err := s.scheduler.AllowManualRefresh(); err != nil {
		s.metrics.RefreshDecisionsTotal.WithLabelValues(model.DecisionRefused.String()).Inc()
		s.log.Info("Manual refresh refused", "reason", err)
		return model.RefreshReport{
			Decision: model.DecisionRefused,
			Notice:   NoticeMarketClosed,
			State:    s.State(),
		}, err
	}

	s.metrics.RefreshDecisionsTotal.WithLabelValues(model.DecisionFetch.String()).Inc()
	report, err := s.refresh(ctx)
	report.Decision = model.DecisionFetch
	return report, err
}

// AutoRefresh re-evaluates the business-day rules against the live state.
func (s *WidgetService) AutoRefresh(ctx context.Context) model.RefreshReport {
	s.mu.RLock()
	var live *model.AppState
	if s.stored {
		st := s.state.Clone()
		live = &st
	}
	s.mu.RUnlock()

	decision := s.scheduler.Decide(live)
	s.metrics.RefreshDecisionsTotal.WithLabelValues(decision.String()).Inc()

	if decision == model.DecisionReuse {
		s.log.Debug("Auto refresh skipped, rates are current")
		return model.RefreshReport{Decision: decision, State: s.State()}
	}

	report, err := s.refresh(ctx)
	report.Decision = decision
	if err != nil {
		s.log.Warn("Auto refresh failed", "error", err)
		return report
	}
	report.Notice = NoticeAutoUpdated
	return report
}

// refresh funnels every fetch through the in-flight guard. The shared fetch
// runs detached from any single caller; each caller stops waiting when its
// own context ends.
func (s *WidgetService) refresh(ctx context.Context) (model.RefreshReport, error) {
	ch := s.flight.DoChan(refreshFlightKey, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.fetchTimeout)
		defer cancel()
		return s.fetchAndPersist(fetchCtx)
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		res.Err = fmt.Errorf("%w: %v", ErrFetchUnavailable, ctx.Err())
	}
	if res.Shared {
		s.metrics.RefreshDeduplicatedTotal.Inc()
	}

	if res.Err != nil {
		s.mu.RLock()
		notice := NoticeOffline
		if !s.stored {
			notice = NoticeOfflineFirst
		}
		s.mu.RUnlock()

		return model.RefreshReport{
			Offline: true,
			Notice:  notice,
			State:   s.State(),
		}, res.Err
	}

	return model.RefreshReport{Fetched: true, State: res.Val.(model.AppState).Clone()}, nil
}

func (s *WidgetService) fetchAndPersist(ctx context.Context) (model.AppState, error) {
	fetched, err := s.fetcher.FetchRates(ctx)
	if err != nil {
		s.metrics.RateFetchesTotal.WithLabelValues("failure").Inc()
		s.log.Error("Failed to fetch exchange rates", "error", err)
		return model.AppState{}, fmt.Errorf("%w: %v", ErrFetchUnavailable, err)
	}

	s.mu.RLock()
	known := s.state.Current.Clone()
	s.mu.RUnlock()

	current := fetched.Rates.Clone()
	if _, ok := current[model.VES]; !ok {
		// the provider is unreliable for VES; keep the last known rate
		current[model.VES] = known[model.VES]
		s.log.Info("Provider omitted VES, keeping previous rate", "rate", known[model.VES])
	}

	if err := current.Validate(); err != nil {
		s.metrics.RateFetchesTotal.WithLabelValues("failure").Inc()
		return model.AppState{}, fmt.Errorf("%w: %v", ErrFetchUnavailable, err)
	}
	s.metrics.RateFetchesTotal.WithLabelValues("success").Inc()

	now := s.clock.Now()
	apiTimestamp := fetched.Timestamp
	if apiTimestamp.IsZero() {
		apiTimestamp = now
	}

	next := model.AppState{
		Current:        current,
		Previous:       s.trend.Synthesize(current),
		PreviousSource: model.TrendSourceSynthetic,
		APITimestamp:   apiTimestamp,
		FetchTimestamp: now,
	}

	if err := s.store.Save(ctx, next); err != nil {
		s.metrics.PersistFailuresTotal.Inc()
		s.log.Error("Failed to persist rate state", "error", err)
	}

	s.mu.Lock()
	s.state = next
	s.stored = true
	s.mu.Unlock()

	s.metrics.LastFetchTimestamp.Set(float64(now.Unix()))
	s.log.Info("Exchange rates refreshed", "api_timestamp", apiTimestamp, "rates", current)

	return next.Clone(), nil
}

// Convert parses raw user input and converts it from base (or the stored
// preference when base is empty) into every other currency. Unusable input
// yields no results rather than an error.
func (s *WidgetService) Convert(rawAmount string, base model.Currency) ([]model.ConversionResult, error) {
	quote, err := s.Quote(rawAmount, base)
	if err != nil {
		return nil, err
	}
	return quote.Results, nil
}

// Quote is Convert plus the trend source and timestamp of the snapshot the
// results came from, all read under one lock.
func (s *WidgetService) Quote(rawAmount string, base model.Currency) (model.Quote, error) {
	s.metrics.ConversionRequestsTotal.Inc()

	s.mu.RLock()
	if base == "" {
		base = s.base
	}
	state := s.state.Clone()
	s.mu.RUnlock()

	if !base.IsSupported() {
		return model.Quote{}, ErrInvalidCurrency
	}

	quote := model.Quote{
		Base:        base,
		Amount:      utils.FormatAmountInput(rawAmount),
		Results:     []model.ConversionResult{},
		TrendSource: state.PreviousSource,
		AsOf:        state.APITimestamp,
	}

	amount, ok := NormalizeAmount(rawAmount)
	if !ok {
		return quote, nil
	}

	results, err := s.engine.Convert(amount, base, state.Current, state.Previous, state.APITimestamp)
	if err != nil {
		return model.Quote{}, err
	}
	quote.Results = results
	return quote, nil
}

func (s *WidgetService) Cards(results []model.ConversionResult) []model.CurrencyCard {
	return ToCards(results)
}

func (s *WidgetService) SetBase(ctx context.Context, base model.Currency) error {
	if !base.IsSupported() {
		return ErrInvalidCurrency
	}

	s.mu.Lock()
	s.base = base
	s.mu.Unlock()

	if err := s.store.SaveBase(ctx, base); err != nil {
		s.log.Error("Failed to persist base currency", "error", err, "base", base)
		return err
	}
	return nil
}

func (s *WidgetService) Base() model.Currency {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.base
}

func (s *WidgetService) State() model.AppState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

func (s *WidgetService) Status() model.StatusReport {
	s.mu.RLock()
	state := s.state
	stored := s.stored
	base := s.base
	s.mu.RUnlock()

	next, days := s.scheduler.NextUpdate()
	return model.StatusReport{
		BaseCurrency:     base,
		APITimestamp:     state.APITimestamp,
		FetchTimestamp:   state.FetchTimestamp,
		NextUpdate:       next,
		NextUpdateInDays: days,
		MarketOpen:       s.scheduler.MarketOpen(),
		TrendSource:      state.PreviousSource,
		Stored:           stored,
	}
}

// History returns a mock chart series of the base/target cross rate. When
// target is empty it compares against USD, or EUR when base is USD.
func (s *WidgetService) History(base, target model.Currency, days int) ([]model.HistoryPoint, error) {
	if base == "" {
		base = s.Base()
	}
	if target == "" {
		target = model.USD
		if base == model.USD {
			target = model.EUR
		}
	}
	if !base.IsSupported() || !target.IsSupported() {
		return nil, ErrInvalidCurrency
	}
	if days < 1 {
		days = s.historyDays
	}

	s.mu.RLock()
	baseRate := s.state.Current[base]
	targetRate := s.state.Current[target]
	s.mu.RUnlock()

	if !(baseRate > 0) || !(targetRate > 0) {
		return nil, ErrRateNotFound
	}

	return s.trend.History(targetRate/baseRate, days, s.clock.Now()), nil
}
