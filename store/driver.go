package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	// IsInitialized reports whether the request_metric table exists.
	IsInitialized(ctx context.Context) (bool, error)

	// RequestMetric model related methods.
	CreateRequestMetric(ctx context.Context, create *RequestMetric) (*RequestMetric, error)
	ListRequestMetrics(ctx context.Context, find *FindRequestMetric) ([]*RequestMetric, error)
	DeleteRequestMetrics(ctx context.Context, delete *DeleteRequestMetric) error
}
