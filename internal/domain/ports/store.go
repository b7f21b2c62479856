package ports

import (
	"context"

	"fx-widget/internal/domain/model"
)

// KeyValueStore is the durable storage capability the rate store sits on.
// Get reports found=false with a nil error when the key does not exist.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// StateStore persists the live AppState and the preferred base currency.
// Load never fails: missing or malformed data reads as absent.
type StateStore interface {
	Load(ctx context.Context) (*model.AppState, bool)
	Save(ctx context.Context, state model.AppState) error
	LoadBase(ctx context.Context) (model.Currency, bool)
	SaveBase(ctx context.Context, base model.Currency) error
}
