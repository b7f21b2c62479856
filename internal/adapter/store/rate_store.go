package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"fx-widget/internal/domain/model"
	"fx-widget/internal/domain/ports"
	"fx-widget/pkg/logger"
)

// Fixed keys of the persisted layout.
const (
	StateKey        = "exchangeAppState"
	BaseCurrencyKey = "baseCurrency"
)

// persistedState is the on-disk record. Timestamps are unix milliseconds.
type persistedState struct {
	Rates      model.RateSnapshot `json:"rates"`
	PrevRates  model.RateSnapshot `json:"prevRates"`
	PrevSource string             `json:"prevSource,omitempty"`
	APIDate    int64              `json:"apiDate"`
	FetchDate  int64              `json:"fetchDate"`
}

// RateStore persists the AppState and the preferred base currency on top of
// any KeyValueStore.
type RateStore struct {
	kv  ports.KeyValueStore
	log *logger.Logger
}

func NewRateStore(kv ports.KeyValueStore, log *logger.Logger) *RateStore {
	return &RateStore{kv: kv, log: log}
}

func (s *RateStore) Load(ctx context.Context) (*model.AppState, bool) {
	raw, found, err := s.kv.Get(ctx, StateKey)
	if err != nil {
		s.log.Warn("Failed to read persisted state", "error", err)
		return nil, false
	}
	if !found {
		return nil, false
	}

	state, err := decodeState(raw)
	if err != nil {
		s.log.Warn("Ignoring malformed persisted state", "error", err)
		return nil, false
	}

	return state, true
}

func (s *RateStore) Save(ctx context.Context, state model.AppState) error {
	raw, err := json.Marshal(persistedState{
		Rates:      state.Current,
		PrevRates:  state.Previous,
		PrevSource: state.PreviousSource,
		APIDate:    state.APITimestamp.UnixMilli(),
		FetchDate:  state.FetchTimestamp.UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	if err := s.kv.Set(ctx, StateKey, raw); err != nil {
		return fmt.Errorf("failed to persist state: %w", err)
	}

	return nil
}

func (s *RateStore) LoadBase(ctx context.Context) (model.Currency, bool) {
	raw, found, err := s.kv.Get(ctx, BaseCurrencyKey)
	if err != nil {
		s.log.Warn("Failed to read base currency preference", "error", err)
		return "", false
	}
	if !found {
		return "", false
	}

	base := model.Currency(strings.TrimSpace(string(raw)))
	if !base.IsSupported() {
		s.log.Warn("Ignoring unsupported stored base currency", "value", string(raw))
		return "", false
	}

	return base, true
}

func (s *RateStore) SaveBase(ctx context.Context, base model.Currency) error {
	if err := s.kv.Set(ctx, BaseCurrencyKey, []byte(base)); err != nil {
		return fmt.Errorf("failed to persist base currency: %w", err)
	}
	return nil
}

func decodeState(raw []byte) (*model.AppState, error) {
	var p persistedState
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}

	if err := p.Rates.Validate(); err != nil {
		return nil, fmt.Errorf("current rates: %w", err)
	}
	if p.FetchDate <= 0 {
		return nil, fmt.Errorf("missing fetch date")
	}

	previous := p.PrevRates
	if previous == nil {
		previous = model.RateSnapshot{}
	}
	source := p.PrevSource
	if source == "" {
		source = model.TrendSourceSynthetic
	}

	apiDate := p.APIDate
	if apiDate <= 0 {
		apiDate = p.FetchDate
	}

	return &model.AppState{
		Current:        p.Rates,
		Previous:       previous,
		PreviousSource: source,
		APITimestamp:   time.UnixMilli(apiDate),
		FetchTimestamp: time.UnixMilli(p.FetchDate),
	}, nil
}
