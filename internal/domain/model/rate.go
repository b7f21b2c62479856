package model

import (
	"fmt"
	"time"
)

// RateSnapshot maps each supported currency to its USD-relative rate.
type RateSnapshot map[Currency]float64

// DefaultSnapshot is the fallback used on a first run with no stored state
// and no network.
func DefaultSnapshot() RateSnapshot {
	return RateSnapshot{
		USD: 1,
		EUR: 0.93,
		COP: 3900,
		VES: 36.50,
	}
}

func (s RateSnapshot) Clone() RateSnapshot {
	out := make(RateSnapshot, len(s))
	for code, rate := range s {
		out[code] = rate
	}
	return out
}

// Validate checks that every supported currency is present with a positive rate.
func (s RateSnapshot) Validate() error {
	for _, code := range SupportedCurrencies {
		rate, ok := s[code]
		if !ok {
			return fmt.Errorf("missing rate for %s", code)
		}
		if !(rate > 0) {
			return fmt.Errorf("non-positive rate for %s: %v", code, rate)
		}
	}
	return nil
}

// Trend sources recorded alongside the comparison snapshot.
const (
	// TrendSourceSynthetic marks a previous snapshot produced by random
	// perturbation of the current one. It is not market history.
	TrendSourceSynthetic = "synthetic"
	// TrendSourceBaseline marks a previous snapshot equal to the current one,
	// so every trend reads zero.
	TrendSourceBaseline = "baseline"
)

// AppState is the single persisted unit of rate data.
type AppState struct {
	Current        RateSnapshot `json:"current"`
	Previous       RateSnapshot `json:"previous"`
	PreviousSource string       `json:"previous_source"`
	APITimestamp   time.Time    `json:"api_timestamp"`
	FetchTimestamp time.Time    `json:"fetch_timestamp"`
}

// DefaultState builds the offline fallback state at the given instant.
func DefaultState(now time.Time) AppState {
	current := DefaultSnapshot()
	return AppState{
		Current:        current,
		Previous:       current.Clone(),
		PreviousSource: TrendSourceBaseline,
		APITimestamp:   now,
		FetchTimestamp: now,
	}
}

func (s AppState) Clone() AppState {
	out := s
	out.Current = s.Current.Clone()
	out.Previous = s.Previous.Clone()
	return out
}

// FetchedRates is what the remote provider returned. Rates may lack VES and
// Timestamp is zero when the provider omitted it.
type FetchedRates struct {
	Rates     RateSnapshot
	Timestamp time.Time
}

type ConversionResult struct {
	Currency         Currency  `json:"currency"`
	Value            float64   `json:"value"`
	ChangePercent    float64   `json:"change_percent"`
	DisplayTimestamp time.Time `json:"display_timestamp"`
}

// Quote is a conversion together with the state snapshot it was computed
// from. Amount is the cleaned, grouped echo of the user's input.
type Quote struct {
	Base        Currency
	Amount      string
	Results     []ConversionResult
	TrendSource string
	AsOf        time.Time
}

// CurrencyCard is the display record handed to presentation layers.
type CurrencyCard struct {
	CurrencyCode     Currency  `json:"currency_code"`
	Name             string    `json:"name"`
	FormattedValue   string    `json:"formatted_value"`
	ChangePercent    float64   `json:"change_percent"`
	IsPositiveTrend  bool      `json:"is_positive_trend"`
	DisplayTimestamp time.Time `json:"display_timestamp"`
}

type HistoryPoint struct {
	Date  string  `json:"date"`
	Label string  `json:"label"`
	Rate  float64 `json:"rate"`
}
