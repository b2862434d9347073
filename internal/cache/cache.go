package cache

import (
	"context"
	"errors"

	"github.com/fjod/cart-pricing/internal/domain"
)

// SnapshotCache stores serialized cart snapshots keyed by cart id.
// Consumers define this interface, not the Redis implementation.
type SnapshotCache interface {
	Get(ctx context.Context, cartID string) (*domain.CartSnapshot, error)
	Set(ctx context.Context, cartID string, snap *domain.CartSnapshot) error
	Delete(ctx context.Context, cartID string) error
}

var ErrCacheMiss = errors.New("cache miss")
