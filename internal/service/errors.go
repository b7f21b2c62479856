package service

import "errors"

var (
	ErrInvalidCurrency  = errors.New("invalid currency")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrRateNotFound     = errors.New("exchange rate not found")
	ErrFetchUnavailable = errors.New("exchange rates unavailable")
	ErrMarketClosed     = errors.New("market closed")
)
