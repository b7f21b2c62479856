package service

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fx-widget/internal/domain/model"
	"fx-widget/pkg/utils"
)

// ConversionEngine turns an amount in a base currency into every other
// supported currency, using USD-relative snapshots. It is pure and safe for
// concurrent use.
type ConversionEngine struct{}

func NewConversionEngine() *ConversionEngine {
	return &ConversionEngine{}
}

// Convert returns one result per supported currency other than base, in
// declared order. A NaN or infinite amount yields no results and no error;
// a negative amount is rejected with ErrInvalidAmount.
func (e *ConversionEngine) Convert(amount float64, base model.Currency, current, previous model.RateSnapshot, asOf time.Time) ([]model.ConversionResult, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return []model.ConversionResult{}, nil
	}
	if amount < 0 {
		return nil, ErrInvalidAmount
	}
	if !base.IsSupported() {
		return nil, ErrInvalidCurrency
	}

	baseRate, ok := current[base]
	if !ok || !(baseRate > 0) {
		return nil, fmt.Errorf("%w: %s", ErrRateNotFound, base)
	}
	prevBaseRate := fallbackRate(previous, base, baseRate)

	results := make([]model.ConversionResult, 0, len(model.SupportedCurrencies)-1)
	for _, target := range model.SupportedCurrencies {
		if target == base {
			continue
		}

		targetRate, ok := current[target]
		if !ok || !(targetRate > 0) {
			return nil, fmt.Errorf("%w: %s", ErrRateNotFound, target)
		}
		prevTargetRate := fallbackRate(previous, target, targetRate)

		currentCross := targetRate / baseRate
		previousCross := prevTargetRate / prevBaseRate

		results = append(results, model.ConversionResult{
			Currency:         target,
			Value:            amount / baseRate * targetRate,
			ChangePercent:    (currentCross - previousCross) / previousCross * 100,
			DisplayTimestamp: asOf,
		})
	}

	return results, nil
}

func fallbackRate(snapshot model.RateSnapshot, code model.Currency, fallback float64) float64 {
	if rate, ok := snapshot[code]; ok && rate > 0 {
		return rate
	}
	return fallback
}

// NormalizeAmount parses user input such as "1,250.75". Negative values are
// corrected to their absolute value. Empty or unparseable input returns
// (NaN, false).
func NormalizeAmount(raw string) (float64, bool) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if cleaned == "" {
		return math.NaN(), false
	}

	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return math.NaN(), false
	}

	return CorrectAmount(amount), true
}

// CorrectAmount maps negative amounts onto their absolute value.
func CorrectAmount(amount float64) float64 {
	return math.Abs(amount)
}

// FormatValue renders a converted value with two decimals and grouped thousands.
func FormatValue(value float64) string {
	return utils.GroupThousands(decimal.NewFromFloat(value).StringFixed(2))
}

// ToCards maps conversion results onto presentation records.
func ToCards(results []model.ConversionResult) []model.CurrencyCard {
	cards := make([]model.CurrencyCard, 0, len(results))
	for _, r := range results {
		cards = append(cards, model.CurrencyCard{
			CurrencyCode:     r.Currency,
			Name:             r.Currency.Name(),
			FormattedValue:   FormatValue(r.Value),
			ChangePercent:    r.ChangePercent,
			IsPositiveTrend:  r.ChangePercent >= 0,
			DisplayTimestamp: r.DisplayTimestamp,
		})
	}
	return cards
}
