package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"

	"fx-widget/internal/domain/model"
	"fx-widget/pkg/logger"
)

var (
	ErrUnavailable       = errors.New("rate provider unavailable")
	ErrMalformedResponse = errors.New("malformed provider response")
)

// Currencies the provider must always return. VES is optional.
var requiredCurrencies = []model.Currency{model.USD, model.EUR, model.COP}

type ExchangeAPI struct {
	url        string
	client     *resty.Client
	maxRetries int
	log        *logger.Logger
}

type exchangerateAPIResponse struct {
	TimeLastUpdated int64              `json:"time_last_updated"`
	Rates           map[string]float64 `json:"rates"`
}

func NewExchangeAPI(url string, timeout time.Duration, maxRetries int, log *logger.Logger) *ExchangeAPI {
	return &ExchangeAPI{
		url:        url,
		client:     resty.New().SetTimeout(timeout),
		maxRetries: maxRetries,
		log:        log,
	}
}

// FetchRates retrieves the latest USD-based snapshot. Every failure is
// reported as ErrUnavailable; the cause is kept in the error chain text.
func (e *ExchangeAPI) FetchRates(ctx context.Context) (model.FetchedRates, error) {
	var result model.FetchedRates

	attempt := 0
	operation := func() error {
		attempt++
		fetched, err := e.fetchOnce(ctx)
		if err != nil {
			e.log.Debug("Rate fetch attempt failed", "attempt", attempt, "error", err)
			return err
		}
		result = fetched
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 200 * time.Millisecond
	policy.MaxInterval = 2 * time.Second

	retries := e.maxRetries
	if retries < 0 {
		retries = 0
	}

	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(policy, uint64(retries)), ctx))
	if err != nil {
		return model.FetchedRates{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return result, nil
}

func (e *ExchangeAPI) fetchOnce(ctx context.Context) (model.FetchedRates, error) {
	resp, err := e.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		Get(e.url)
	if err != nil {
		if ctx.Err() != nil {
			return model.FetchedRates{}, backoff.Permanent(fmt.Errorf("failed to send request: %w", err))
		}
		return model.FetchedRates{}, fmt.Errorf("failed to send request: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		statusErr := fmt.Errorf("API returned non-OK status: %d", resp.StatusCode())
		if resp.StatusCode() >= 500 || resp.StatusCode() == http.StatusTooManyRequests {
			return model.FetchedRates{}, statusErr
		}
		return model.FetchedRates{}, backoff.Permanent(statusErr)
	}

	var apiResp exchangerateAPIResponse
	if err := json.Unmarshal(resp.Body(), &apiResp); err != nil {
		return model.FetchedRates{}, backoff.Permanent(fmt.Errorf("%w: %v", ErrMalformedResponse, err))
	}

	fetched, err := extractRates(apiResp)
	if err != nil {
		return model.FetchedRates{}, backoff.Permanent(err)
	}

	return fetched, nil
}

// extractRates keeps the supported currencies and rescales them so USD is 1.
func extractRates(apiResp exchangerateAPIResponse) (model.FetchedRates, error) {
	for _, code := range requiredCurrencies {
		rate, exists := apiResp.Rates[code.String()]
		if !exists {
			return model.FetchedRates{}, fmt.Errorf("%w: rate not found for currency: %s", ErrMalformedResponse, code)
		}
		if !(rate > 0) {
			return model.FetchedRates{}, fmt.Errorf("%w: non-positive rate for currency: %s", ErrMalformedResponse, code)
		}
	}

	usd := apiResp.Rates[model.USD.String()]
	rates := make(model.RateSnapshot, len(model.SupportedCurrencies))
	for _, code := range model.SupportedCurrencies {
		rate, exists := apiResp.Rates[code.String()]
		if !exists || !(rate > 0) {
			continue
		}
		rates[code] = rate / usd
	}

	var timestamp time.Time
	if apiResp.TimeLastUpdated > 0 {
		timestamp = time.Unix(apiResp.TimeLastUpdated, 0)
	}

	return model.FetchedRates{Rates: rates, Timestamp: timestamp}, nil
}
