package store

import (
	"context"

	"github.com/hrygo/smartrouter/internal/profile"
)

// Store provides database access to persisted request metrics.
type Store struct {
	profile *profile.Profile
	driver  Driver
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:  driver,
		profile: profile,
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	return s.driver.Close()
}

func (s *Store) CreateRequestMetric(ctx context.Context, create *RequestMetric) (*RequestMetric, error) {
	return s.driver.CreateRequestMetric(ctx, create)
}

func (s *Store) ListRequestMetrics(ctx context.Context, find *FindRequestMetric) ([]*RequestMetric, error) {
	return s.driver.ListRequestMetrics(ctx, find)
}

func (s *Store) DeleteRequestMetrics(ctx context.Context, delete *DeleteRequestMetric) error {
	return s.driver.DeleteRequestMetrics(ctx, delete)
}
