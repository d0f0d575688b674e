package cache

import (
	"context"
	"time"

	"github.com/Mohamed-Faroug/store-management-system/internal/domain"
)

// StockAlertCache holds the computed low-stock / out-of-stock view so the
// alerts endpoint does not hit the database on every poll. Any stock
// mutation invalidates it.
type StockAlertCache interface {
	Get(ctx context.Context, key string) (*domain.StockAlerts, bool, error)
	Set(ctx context.Context, key string, value *domain.StockAlerts, ttl time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

type NoopStockAlertCache struct{}

func (NoopStockAlertCache) Get(_ context.Context, _ string) (*domain.StockAlerts, bool, error) {
	return nil, false, nil
}

func (NoopStockAlertCache) Set(_ context.Context, _ string, _ *domain.StockAlerts, _ time.Duration) error {
	return nil
}

func (NoopStockAlertCache) Invalidate(_ context.Context, _ string) error {
	return nil
}
