package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fx-widget/internal/domain/model"
	"fx-widget/internal/metrics"
	"fx-widget/pkg/logger"
)

type MockRateFetcher struct {
	FetchRatesFunc func(ctx context.Context) (model.FetchedRates, error)
	calls          atomic.Int32
}

func (m *MockRateFetcher) FetchRates(ctx context.Context) (model.FetchedRates, error) {
	m.calls.Add(1)
	if m.FetchRatesFunc != nil {
		return m.FetchRatesFunc(ctx)
	}
	return model.FetchedRates{}, errors.New("not implemented")
}

type MockStateStore struct {
	LoadFunc     func(ctx context.Context) (*model.AppState, bool)
	SaveFunc     func(ctx context.Context, state model.AppState) error
	LoadBaseFunc func(ctx context.Context) (model.Currency, bool)
	SaveBaseFunc func(ctx context.Context, base model.Currency) error

	mu    sync.Mutex
	saved []model.AppState
	bases []model.Currency
}

func (m *MockStateStore) Load(ctx context.Context) (*model.AppState, bool) {
	if m.LoadFunc != nil {
		return m.LoadFunc(ctx)
	}
	return nil, false
}

func (m *MockStateStore) Save(ctx context.Context, state model.AppState) error {
	m.mu.Lock()
	m.saved = append(m.saved, state)
	m.mu.Unlock()
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, state)
	}
	return nil
}

func (m *MockStateStore) LoadBase(ctx context.Context) (model.Currency, bool) {
	if m.LoadBaseFunc != nil {
		return m.LoadBaseFunc(ctx)
	}
	return "", false
}

func (m *MockStateStore) SaveBase(ctx context.Context, base model.Currency) error {
	m.mu.Lock()
	m.bases = append(m.bases, base)
	m.mu.Unlock()
	if m.SaveBaseFunc != nil {
		return m.SaveBaseFunc(ctx, base)
	}
	return nil
}

func (m *MockStateStore) savedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saved)
}

func storedState(fetchedAt time.Time) func(context.Context) (*model.AppState, bool) {
	return func(context.Context) (*model.AppState, bool) {
		s := model.AppState{
			Current:        model.RateSnapshot{model.USD: 1, model.EUR: 0.92, model.COP: 4100, model.VES: 40},
			Previous:       model.RateSnapshot{model.USD: 1, model.EUR: 0.91, model.COP: 4000, model.VES: 39},
			PreviousSource: model.TrendSourceSynthetic,
			APITimestamp:   fetchedAt.Add(-time.Hour),
			FetchTimestamp: fetchedAt,
		}
		return &s, true
	}
}

func providerRates(ts time.Time) func(context.Context) (model.FetchedRates, error) {
	return func(context.Context) (model.FetchedRates, error) {
		return model.FetchedRates{
			Rates:     model.RateSnapshot{model.USD: 1, model.EUR: 0.95, model.COP: 4200, model.VES: 45},
			Timestamp: ts,
		}, nil
	}
}

type widgetFixture struct {
	service *WidgetService
	fetcher *MockRateFetcher
	store   *MockStateStore
	metrics *metrics.Metrics
}

func newWidgetFixture(now time.Time, fetcher *MockRateFetcher, store *MockStateStore) *widgetFixture {
	m := metrics.NewMetrics(prometheus.NewRegistry())
	svc := NewWidgetService(
		fetcher,
		store,
		NewTrendEstimator(nil, 0.015, 0.02),
		mockClock(now),
		logger.NewNop(),
		m,
		Options{DefaultBase: model.USD, HistoryDays: 7},
	)
	return &widgetFixture{service: svc, fetcher: fetcher, store: store, metrics: m}
}

func TestWidgetService_InitWithoutStoredStateFetches(t *testing.T) {
	now := at(18, 9) // Sunday: a first run fetches even on weekends
	apiTime := at(17, 0)
	f := newWidgetFixture(now, &MockRateFetcher{FetchRatesFunc: providerRates(apiTime)}, &MockStateStore{})

	report := f.service.Init(context.Background())

	assert.Equal(t, model.DecisionFetch, report.Decision)
	assert.True(t, report.Fetched)
	assert.False(t, report.Offline)
	assert.Equal(t, int32(1), f.fetcher.calls.Load())
	assert.Equal(t, 1, f.store.savedCount())

	state := f.service.State()
	assert.Equal(t, 0.95, state.Current[model.EUR])
	assert.Equal(t, apiTime, state.APITimestamp)
	assert.Equal(t, now, state.FetchTimestamp)
	assert.Equal(t, model.TrendSourceSynthetic, state.PreviousSource)
	for code, rate := range state.Current {
		assert.InDelta(t, rate, state.Previous[code], rate*0.015+epsilon, code.String())
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.RefreshDecisionsTotal.WithLabelValues("fetch")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.RateFetchesTotal.WithLabelValues("success")))
	assert.Equal(t, float64(now.Unix()), testutil.ToFloat64(f.metrics.LastFetchTimestamp))
}

func TestWidgetService_InitDecisions(t *testing.T) {
	testCases := []struct {
		name      string
		now       time.Time
		fetchedAt time.Time
		want      model.Decision
		wantCalls int32
	}{
		{"same day Tuesday reuses", at(20, 15), at(20, 8), model.DecisionReuse, 0},
		{"stale on Wednesday fetches", at(21, 9), at(20, 18), model.DecisionFetch, 1},
		{"stale on Saturday reuses", at(24, 9), at(23, 18), model.DecisionReuse, 0},
		{"stale on Sunday reuses", at(18, 9), at(16, 18), model.DecisionReuse, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newWidgetFixture(
				tc.now,
				&MockRateFetcher{FetchRatesFunc: providerRates(tc.now)},
				&MockStateStore{LoadFunc: storedState(tc.fetchedAt)},
			)

			report := f.service.Init(context.Background())

			assert.Equal(t, tc.want, report.Decision)
			assert.Equal(t, tc.wantCalls, f.fetcher.calls.Load())
			if tc.want == model.DecisionReuse {
				assert.Equal(t, 0.92, report.State.Current[model.EUR])
				assert.Equal(t, tc.fetchedAt, report.State.FetchTimestamp)
				assert.Zero(t, f.store.savedCount())
			} else {
				assert.Equal(t, 0.95, report.State.Current[model.EUR])
				assert.Equal(t, 1, f.store.savedCount())
			}
			assert.True(t, f.service.Status().Stored)
		})
	}
}

func TestWidgetService_InitOfflineFirstRunUsesDefaults(t *testing.T) {
	now := at(19, 9)
	fetcher := &MockRateFetcher{FetchRatesFunc: func(context.Context) (model.FetchedRates, error) {
		return model.FetchedRates{}, errors.New("connection refused")
	}}
	f := newWidgetFixture(now, fetcher, &MockStateStore{})

	report := f.service.Init(context.Background())

	assert.Equal(t, model.DecisionFetch, report.Decision)
	assert.True(t, report.Offline)
	assert.False(t, report.Fetched)
	assert.Equal(t, NoticeOfflineFirst, report.Notice)
	assert.Equal(t, model.DefaultSnapshot(), report.State.Current)
	assert.Equal(t, model.TrendSourceBaseline, report.State.PreviousSource)
	assert.Zero(t, f.store.savedCount())
	assert.False(t, f.service.Status().Stored)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.RateFetchesTotal.WithLabelValues("failure")))

	results, err := f.service.Convert("100", model.USD)
	require.NoError(t, err)
	assert.InDelta(t, 93.0, resultFor(t, results, model.EUR).Value, 1e-9)
}

func TestWidgetService_InitOfflineKeepsStaleStoredState(t *testing.T) {
	now := at(21, 9)
	fetcher := &MockRateFetcher{FetchRatesFunc: func(context.Context) (model.FetchedRates, error) {
		return model.FetchedRates{}, errors.New("timeout")
	}}
	f := newWidgetFixture(now, fetcher, &MockStateStore{LoadFunc: storedState(at(20, 18))})

	report := f.service.Init(context.Background())

	assert.True(t, report.Offline)
	assert.Equal(t, NoticeOffline, report.Notice)
	assert.Equal(t, 0.92, report.State.Current[model.EUR])
	assert.Equal(t, at(20, 18), report.State.FetchTimestamp)
}

func TestWidgetService_MissingVESKeepsKnownRate(t *testing.T) {
	now := at(21, 9)
	fetcher := &MockRateFetcher{FetchRatesFunc: func(context.Context) (model.FetchedRates, error) {
		return model.FetchedRates{
			Rates: model.RateSnapshot{model.USD: 1, model.EUR: 0.95, model.COP: 4200},
		}, nil
	}}
	f := newWidgetFixture(now, fetcher, &MockStateStore{LoadFunc: storedState(at(20, 18))})

	report := f.service.Init(context.Background())
	require.True(t, report.Fetched)

	assert.Equal(t, 40.0, report.State.Current[model.VES])
	// no provider timestamp: the fetch time stands in
	assert.Equal(t, now, report.State.APITimestamp)
}

func TestWidgetService_MissingVESOnFirstRunUsesDefault(t *testing.T) {
	fetcher := &MockRateFetcher{FetchRatesFunc: func(context.Context) (model.FetchedRates, error) {
		return model.FetchedRates{
			Rates: model.RateSnapshot{model.USD: 1, model.EUR: 0.95, model.COP: 4200},
		}, nil
	}}
	f := newWidgetFixture(at(19, 9), fetcher, &MockStateStore{})

	report := f.service.Init(context.Background())
	require.True(t, report.Fetched)
	assert.Equal(t, 36.5, report.State.Current[model.VES])
}

func TestWidgetService_IncompleteProviderRatesAreRejected(t *testing.T) {
	fetcher := &MockRateFetcher{FetchRatesFunc: func(context.Context) (model.FetchedRates, error) {
		return model.FetchedRates{Rates: model.RateSnapshot{model.USD: 1, model.EUR: 0.95}}, nil
	}}
	f := newWidgetFixture(at(19, 9), fetcher, &MockStateStore{})

	_, err := f.service.Refresh(context.Background())

	assert.ErrorIs(t, err, ErrFetchUnavailable)
	assert.Zero(t, f.store.savedCount())
	assert.Equal(t, model.DefaultSnapshot(), f.service.State().Current)
}

func TestWidgetService_RefreshRefusedOnWeekends(t *testing.T) {
	for _, now := range []time.Time{at(17, 11), at(18, 23)} {
		t.Run(now.Weekday().String(), func(t *testing.T) {
			f := newWidgetFixture(now, &MockRateFetcher{FetchRatesFunc: providerRates(now)}, &MockStateStore{})

			report, err := f.service.Refresh(context.Background())

			assert.ErrorIs(t, err, ErrMarketClosed)
			assert.Equal(t, model.DecisionRefused, report.Decision)
			assert.Equal(t, NoticeMarketClosed, report.Notice)
			assert.Zero(t, f.fetcher.calls.Load())
			assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.RefreshDecisionsTotal.WithLabelValues("refused")))
		})
	}
}

func TestWidgetService_RefreshAlwaysFetchesOnWeekdays(t *testing.T) {
	now := at(20, 15)
	f := newWidgetFixture(
		now,
		&MockRateFetcher{FetchRatesFunc: providerRates(now)},
		&MockStateStore{LoadFunc: storedState(at(20, 8))},
	)
	f.service.Init(context.Background())
	require.Zero(t, f.fetcher.calls.Load())

	report, err := f.service.Refresh(context.Background())

	require.NoError(t, err)
	assert.Equal(t, model.DecisionFetch, report.Decision)
	assert.True(t, report.Fetched)
	assert.Equal(t, int32(1), f.fetcher.calls.Load())
	assert.Equal(t, 0.95, f.service.State().Current[model.EUR])
}

func TestWidgetService_RefreshFailureKeepsState(t *testing.T) {
	now := at(20, 15)
	fetcher := &MockRateFetcher{FetchRatesFunc: func(context.Context) (model.FetchedRates, error) {
		return model.FetchedRates{}, errors.New("503")
	}}
	f := newWidgetFixture(now, fetcher, &MockStateStore{LoadFunc: storedState(at(20, 8))})
	f.service.Init(context.Background())

	report, err := f.service.Refresh(context.Background())

	assert.ErrorIs(t, err, ErrFetchUnavailable)
	assert.True(t, report.Offline)
	assert.Equal(t, NoticeOffline, report.Notice)
	assert.Equal(t, 0.92, f.service.State().Current[model.EUR])
}

func TestWidgetService_ConcurrentRefreshSharesOneFetch(t *testing.T) {
	now := at(20, 15)
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once

	fetcher := &MockRateFetcher{FetchRatesFunc: func(ctx context.Context) (model.FetchedRates, error) {
		once.Do(func() { close(started) })
		<-release
		return providerRates(now)(ctx)
	}}
	f := newWidgetFixture(now, fetcher, &MockStateStore{})

	var wg sync.WaitGroup
	reports := make([]model.RefreshReport, 3)
	errs := make([]error, 3)

	wg.Add(1)
	go func() {
		defer wg.Done()
		reports[0], errs[0] = f.service.Refresh(context.Background())
	}()
	<-started

	for i := 1; i < 3; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			reports[i], errs[i] = f.service.Refresh(context.Background())
		}(i)
	}
	// let the followers join the in-flight call
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), fetcher.calls.Load())
	assert.Equal(t, 1, f.store.savedCount())
	for i := range reports {
		require.NoError(t, errs[i])
		assert.True(t, reports[i].Fetched)
		assert.Equal(t, reports[0].State.Previous, reports[i].State.Previous)
	}
	assert.Equal(t, 3.0, testutil.ToFloat64(f.metrics.RefreshDeduplicatedTotal))
}

func TestWidgetService_JoinedRefreshOutlivesLeaderCancellation(t *testing.T) {
	now := at(20, 15)
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once

	fetcher := &MockRateFetcher{FetchRatesFunc: func(ctx context.Context) (model.FetchedRates, error) {
		once.Do(func() { close(started) })
		select {
		case <-release:
		case <-ctx.Done():
			return model.FetchedRates{}, ctx.Err()
		}
		return providerRates(now)(ctx)
	}}
	f := newWidgetFixture(now, fetcher, &MockStateStore{})

	leaderCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	leaderErr := make(chan error, 1)
	go func() {
		_, err := f.service.Refresh(leaderCtx)
		leaderErr <- err
	}()
	<-started

	type outcome struct {
		report model.RefreshReport
		err    error
	}
	joined := make(chan outcome, 1)
	go func() {
		report, err := f.service.Refresh(context.Background())
		joined <- outcome{report, err}
	}()
	// let the second caller join the in-flight call
	time.Sleep(100 * time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-leaderErr, ErrFetchUnavailable)

	close(release)
	got := <-joined
	require.NoError(t, got.err)
	assert.True(t, got.report.Fetched)
	assert.Equal(t, 0.95, got.report.State.Current[model.EUR])

	assert.Equal(t, int32(1), fetcher.calls.Load())
	assert.Equal(t, 1, f.store.savedCount())
	assert.Equal(t, 0.95, f.service.State().Current[model.EUR])
}

func TestWidgetService_FetchTimeoutBoundsSharedFetch(t *testing.T) {
	fetcher := &MockRateFetcher{FetchRatesFunc: func(ctx context.Context) (model.FetchedRates, error) {
		<-ctx.Done()
		return model.FetchedRates{}, ctx.Err()
	}}
	svc := NewWidgetService(fetcher, &MockStateStore{}, NewTrendEstimator(nil, 0.015, 0.02),
		mockClock(at(20, 15)), logger.NewNop(), metrics.NewMetrics(prometheus.NewRegistry()),
		Options{FetchTimeout: 50 * time.Millisecond})

	report, err := svc.Refresh(context.Background())

	assert.ErrorIs(t, err, ErrFetchUnavailable)
	assert.True(t, report.Offline)
}

func TestWidgetService_PersistFailureKeepsFetchedRates(t *testing.T) {
	now := at(19, 9)
	store := &MockStateStore{SaveFunc: func(context.Context, model.AppState) error {
		return errors.New("disk full")
	}}
	f := newWidgetFixture(now, &MockRateFetcher{FetchRatesFunc: providerRates(now)}, store)

	report, err := f.service.Refresh(context.Background())

	require.NoError(t, err)
	assert.True(t, report.Fetched)
	assert.Equal(t, 0.95, f.service.State().Current[model.EUR])
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.PersistFailuresTotal))
}

func TestWidgetService_AutoRefresh(t *testing.T) {
	clk := mockClock(at(20, 15))
	fetcher := &MockRateFetcher{FetchRatesFunc: providerRates(at(20, 0))}
	m := metrics.NewMetrics(prometheus.NewRegistry())
	svc := NewWidgetService(fetcher, &MockStateStore{LoadFunc: storedState(at(20, 8))},
		NewTrendEstimator(nil, 0.015, 0.02), clk, logger.NewNop(), m, Options{})

	svc.Init(context.Background())

	report := svc.AutoRefresh(context.Background())
	assert.Equal(t, model.DecisionReuse, report.Decision)
	assert.Zero(t, fetcher.calls.Load())

	clk.Add(18 * time.Hour) // Wednesday 09:00
	report = svc.AutoRefresh(context.Background())
	assert.Equal(t, model.DecisionFetch, report.Decision)
	assert.True(t, report.Fetched)
	assert.Equal(t, NoticeAutoUpdated, report.Notice)
	assert.Equal(t, int32(1), fetcher.calls.Load())

	report = svc.AutoRefresh(context.Background())
	assert.Equal(t, model.DecisionReuse, report.Decision)
	assert.Equal(t, int32(1), fetcher.calls.Load())
}

func TestWidgetService_Restore(t *testing.T) {
	t.Run("stored state becomes live without fetching", func(t *testing.T) {
		store := &MockStateStore{
			LoadFunc:     storedState(at(16, 18)),
			LoadBaseFunc: func(context.Context) (model.Currency, bool) { return model.EUR, true },
		}
		f := newWidgetFixture(at(21, 9), &MockRateFetcher{FetchRatesFunc: providerRates(at(21, 0))}, store)

		assert.True(t, f.service.Restore(context.Background()))
		assert.Equal(t, 0.92, f.service.State().Current[model.EUR])
		assert.Equal(t, model.EUR, f.service.Base())
		assert.True(t, f.service.Status().Stored)
		assert.Zero(t, f.fetcher.calls.Load())
		assert.Zero(t, f.store.savedCount())
	})

	t.Run("nothing stored keeps defaults", func(t *testing.T) {
		f := newWidgetFixture(at(21, 9), &MockRateFetcher{}, &MockStateStore{})

		assert.False(t, f.service.Restore(context.Background()))
		assert.Equal(t, model.DefaultSnapshot(), f.service.State().Current)
		assert.False(t, f.service.Status().Stored)
	})
}

func TestWidgetService_WeekendManualRefreshWithoutStoredState(t *testing.T) {
	now := at(17, 10) // Saturday
	f := newWidgetFixture(now, &MockRateFetcher{FetchRatesFunc: providerRates(now)}, &MockStateStore{})

	require.False(t, f.service.Restore(context.Background()))
	report, err := f.service.Refresh(context.Background())

	assert.ErrorIs(t, err, ErrMarketClosed)
	assert.Equal(t, NoticeMarketClosed, report.Notice)
	assert.Zero(t, f.fetcher.calls.Load())
	assert.Equal(t, model.DefaultSnapshot(), report.State.Current)
}

func TestWidgetService_QuoteMatchesItsSnapshot(t *testing.T) {
	now := at(20, 15)
	apiTime := at(20, 0)
	f := newWidgetFixture(now, &MockRateFetcher{FetchRatesFunc: providerRates(apiTime)}, &MockStateStore{})
	f.service.Init(context.Background())

	quote, err := f.service.Quote("1250.5", "")
	require.NoError(t, err)

	state := f.service.State()
	assert.Equal(t, model.USD, quote.Base)
	assert.Equal(t, "1,250.5", quote.Amount)
	assert.Equal(t, model.TrendSourceSynthetic, quote.TrendSource)
	assert.Equal(t, apiTime, quote.AsOf)
	require.Len(t, quote.Results, 3)
	assert.InDelta(t, 1250.5*state.Current[model.EUR], resultFor(t, quote.Results, model.EUR).Value, 1e-9)
	for _, r := range quote.Results {
		assert.Equal(t, quote.AsOf, r.DisplayTimestamp)
	}

	invalid, err := f.service.Quote("abc", model.COP)
	require.NoError(t, err)
	assert.Equal(t, model.COP, invalid.Base)
	assert.Equal(t, "", invalid.Amount)
	assert.NotNil(t, invalid.Results)
	assert.Empty(t, invalid.Results)
}

func TestWidgetService_Convert(t *testing.T) {
	f := newWidgetFixture(at(19, 9), &MockRateFetcher{}, &MockStateStore{})

	results, err := f.service.Convert("100", "")
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, model.VES, results[0].Currency)

	negative, err := f.service.Convert("-100", model.USD)
	require.NoError(t, err)
	assert.Equal(t, results, negative)

	grouped, err := f.service.Convert("1,000", model.EUR)
	require.NoError(t, err)
	assert.InDelta(t, 1000/0.93, resultFor(t, grouped, model.USD).Value, 1e-9)

	empty, err := f.service.Convert("", model.USD)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	_, err = f.service.Convert("10", model.Currency("GBP"))
	assert.ErrorIs(t, err, ErrInvalidCurrency)

	assert.Equal(t, 5.0, testutil.ToFloat64(f.metrics.ConversionRequestsTotal))

	cards := f.service.Cards(results)
	require.Len(t, cards, 3)
	assert.Equal(t, "3,650.00", cards[0].FormattedValue)
}

func TestWidgetService_BaseCurrency(t *testing.T) {
	store := &MockStateStore{LoadBaseFunc: func(context.Context) (model.Currency, bool) {
		return model.COP, true
	}}
	f := newWidgetFixture(at(20, 9), &MockRateFetcher{FetchRatesFunc: providerRates(at(20, 0))}, store)

	assert.Equal(t, model.USD, f.service.Base())
	f.service.Init(context.Background())
	assert.Equal(t, model.COP, f.service.Base())

	results, err := f.service.Convert("1", "")
	require.NoError(t, err)
	assert.Equal(t, model.USD, results[0].Currency)

	require.NoError(t, f.service.SetBase(context.Background(), model.VES))
	assert.Equal(t, model.VES, f.service.Base())
	assert.Equal(t, []model.Currency{model.VES}, store.bases)

	assert.ErrorIs(t, f.service.SetBase(context.Background(), "JPY"), ErrInvalidCurrency)
	assert.Equal(t, model.VES, f.service.Base())

	store.SaveBaseFunc = func(context.Context, model.Currency) error { return errors.New("read-only") }
	assert.Error(t, f.service.SetBase(context.Background(), model.EUR))
}

func TestWidgetService_Status(t *testing.T) {
	testCases := []struct {
		name       string
		now        time.Time
		wantDays   int
		wantOpen   bool
		wantNextWD time.Weekday
	}{
		{"Tuesday", at(20, 10), 1, true, time.Wednesday},
		{"Friday", at(23, 10), 3, true, time.Monday},
		{"Saturday", at(24, 10), 2, false, time.Monday},
		{"Sunday", at(18, 10), 1, false, time.Monday},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newWidgetFixture(tc.now, &MockRateFetcher{}, &MockStateStore{})

			status := f.service.Status()

			assert.Equal(t, model.USD, status.BaseCurrency)
			assert.Equal(t, tc.wantDays, status.NextUpdateInDays)
			assert.Equal(t, tc.wantOpen, status.MarketOpen)
			assert.Equal(t, tc.wantNextWD, status.NextUpdate.Weekday())
			assert.Equal(t, model.TrendSourceBaseline, status.TrendSource)
			assert.False(t, status.Stored)
		})
	}
}

func TestWidgetService_History(t *testing.T) {
	f := newWidgetFixture(at(19, 9), &MockRateFetcher{}, &MockStateStore{})

	points, err := f.service.History(model.USD, "", 0)
	require.NoError(t, err)
	require.Len(t, points, 7)
	assert.Equal(t, 0.93, points[6].Rate)
	assert.Equal(t, "2026-10-19", points[6].Date)

	points, err = f.service.History(model.EUR, "", 3)
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.InDelta(t, 1/0.93, points[2].Rate, 1e-12)

	points, err = f.service.History(model.COP, model.VES, 5)
	require.NoError(t, err)
	assert.InDelta(t, 36.5/3900, points[4].Rate, 1e-12)

	_, err = f.service.History(model.USD, "XAU", 7)
	assert.ErrorIs(t, err, ErrInvalidCurrency)
}
