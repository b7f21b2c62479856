package ports

import (
	"context"

	"fx-widget/internal/domain/model"
)

type WidgetService interface {
	Restore(ctx context.Context) bool
	Init(ctx context.Context) model.RefreshReport
	Refresh(ctx context.Context) (model.RefreshReport, error)
	AutoRefresh(ctx context.Context) model.RefreshReport
	Convert(rawAmount string, base model.Currency) ([]model.ConversionResult, error)
	Quote(rawAmount string, base model.Currency) (model.Quote, error)
	Cards(results []model.ConversionResult) []model.CurrencyCard
	SetBase(ctx context.Context, base model.Currency) error
	Base() model.Currency
	State() model.AppState
	Status() model.StatusReport
	History(base, target model.Currency, days int) ([]model.HistoryPoint, error)
}
