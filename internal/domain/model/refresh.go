package model

import "time"

// Decision is the outcome of evaluating whether to fetch fresh rates.
type Decision string

const (
	DecisionFetch   Decision = "fetch"
	DecisionReuse   Decision = "reuse"
	DecisionRefused Decision = "refused"
)

func (d Decision) String() string {
	return string(d)
}

type RefreshReport struct {
	Decision Decision `json:"decision"`
	Fetched  bool     `json:"fetched"`
	Offline  bool     `json:"offline"`
	Notice   string   `json:"notice,omitempty"`
	State    AppState `json:"state"`
}

type StatusReport struct {
	BaseCurrency     Currency  `json:"base_currency"`
	APITimestamp     time.Time `json:"api_timestamp"`
	FetchTimestamp   time.Time `json:"fetch_timestamp"`
	NextUpdate       time.Time `json:"next_update"`
	NextUpdateInDays int       `json:"next_update_in_days"`
	MarketOpen       bool      `json:"market_open"`
	TrendSource      string    `json:"trend_source"`
	Stored           bool      `json:"stored"`
}
