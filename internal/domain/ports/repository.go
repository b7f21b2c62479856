package ports

import (
	"context"

	"fx-widget/internal/domain/model"
)

type RateFetcher interface {
	FetchRates(ctx context.Context) (model.FetchedRates, error)
}
