package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/fjod/cart-pricing/internal/cache"
	"github.com/fjod/cart-pricing/internal/domain"
	"github.com/fjod/cart-pricing/internal/registry"
	"golang.org/x/sync/singleflight"
)

// CartService is the application-facing surface over the registry and the
// snapshot cache. The caller is expected to have validated external facts
// (product existence, stock, current price) before handing a unit price to
// AddItem; the core does not re-check them.
type CartService struct {
	reg   *registry.Registry
	cache cache.SnapshotCache
	sfg   singleflight.Group // Prevents cache stampede
}

// Totals is the derived monetary view of one cart.
type Totals struct {
	Subtotal      domain.Money
	TotalDiscount domain.Money
	Total         domain.Money
}

func NewCartService(reg *registry.Registry, snapCache cache.SnapshotCache) *CartService {
	return &CartService{
		reg:   reg,
		cache: snapCache,
	}
}

// CreateCart makes an empty cart for the owner and returns its snapshot.
func (s *CartService) CreateCart(ownerID string) domain.CartSnapshot {
	return s.reg.Create(ownerID).Snapshot()
}

// GetCart returns the cart snapshot, read through the cache.
func (s *CartService) GetCart(ctx context.Context, cartID string) (*domain.CartSnapshot, error) {
	// Use singleflight to prevent multiple concurrent cache misses for same key
	v, err, _ := s.sfg.Do(cartID, func() (interface{}, error) {

		snap, err := s.cache.Get(ctx, cartID)
		if err == nil {
			return snap, nil // snapshot is in cache
		}

		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("cache get error: %v \n", err) // log cache error but continue
		}

		cart, errGet := s.reg.Get(cartID)
		if errGet != nil {
			return nil, errGet
		}
		fresh := cart.Snapshot()

		// set cache
		go func() {
			errSet := s.cache.Set(context.Background(), cartID, &fresh)
			if errSet != nil {
				log.Printf("cache set error: %v \n", errSet)
			}
		}()

		return &fresh, nil
	})

	if err != nil {
		return nil, err
	}

	return v.(*domain.CartSnapshot), nil
}

// Totals computes subtotal, total discount and total for the cart.
func (s *CartService) Totals(_ context.Context, cartID string) (Totals, error) {
	cart, err := s.reg.Get(cartID)
	if err != nil {
		return Totals{}, err
	}
	return Totals{
		Subtotal:      cart.Subtotal(),
		TotalDiscount: cart.TotalDiscount(),
		Total:         cart.Total(),
	}, nil
}

func (s *CartService) AddItem(ctx context.Context, cartID string, productID domain.ProductID, quantity domain.Quantity, unitPrice domain.Money) error {
	errAdd := s.reg.WithCart(cartID, func(c *domain.Cart) error {
		return c.AddItem(productID, quantity, unitPrice)
	})
	if errAdd != nil {
		log.Printf("add item error: %v \n", errAdd)
		return errAdd
	}

	invalidateCache(s, cartID)
	return nil
}

func (s *CartService) UpdateQuantity(ctx context.Context, cartID string, productID domain.ProductID, quantity domain.Quantity) error {
	errUpdate := s.reg.WithCart(cartID, func(c *domain.Cart) error {
		return c.UpdateItem(productID, quantity)
	})
	if errUpdate != nil {
		log.Printf("update item quantity error: %v \n", errUpdate)
		return errUpdate
	}

	invalidateCache(s, cartID)
	return nil
}

func (s *CartService) RemoveItem(ctx context.Context, cartID string, productID domain.ProductID) error {
	errRemove := s.reg.WithCart(cartID, func(c *domain.Cart) error {
		return c.RemoveItem(productID)
	})
	if errRemove != nil {
		log.Printf("remove item error: %v \n", errRemove)
		return errRemove
	}

	invalidateCache(s, cartID)
	return nil
}

func (s *CartService) ClearCart(ctx context.Context, cartID string) error {
	errClear := s.reg.WithCart(cartID, func(c *domain.Cart) error {
		c.Clear()
		return nil
	})
	if errClear != nil {
		log.Printf("clear cart error: %v \n", errClear)
		return errClear
	}

	invalidateCache(s, cartID)
	return nil
}

func (s *CartService) ApplyDiscount(ctx context.Context, cartID string, d domain.Discount) error {
	errApply := s.reg.WithCart(cartID, func(c *domain.Cart) error {
		return c.ApplyDiscount(d)
	})
	if errApply != nil {
		log.Printf("apply discount error: %v \n", errApply)
		return errApply
	}

	invalidateCache(s, cartID)
	return nil
}

func (s *CartService) RemoveDiscount(ctx context.Context, cartID string, name string) error {
	errRemove := s.reg.WithCart(cartID, func(c *domain.Cart) error {
		return c.RemoveDiscount(name)
	})
	if errRemove != nil {
		log.Printf("remove discount error: %v \n", errRemove)
		return errRemove
	}

	invalidateCache(s, cartID)
	return nil
}

// ApplyFreebieRule rejects conflicting rules before they ever reach the
// aggregate: duplicate names, duplicate pairings and circular pairings.
func (s *CartService) ApplyFreebieRule(ctx context.Context, cartID string, rule domain.FreebieRule) error {
	errApply := s.reg.WithCart(cartID, func(c *domain.Cart) error {
		if conflicts := domain.FindRuleConflicts(c.FreebieRules(), rule); len(conflicts) > 0 {
			return fmt.Errorf("%w: %s", domain.ErrConflict, strings.Join(conflicts, "; "))
		}
		return c.ApplyFreebieRule(rule)
	})
	if errApply != nil {
		log.Printf("apply freebie rule error: %v \n", errApply)
		return errApply
	}

	invalidateCache(s, cartID)
	return nil
}

func (s *CartService) RemoveFreebieRule(ctx context.Context, cartID string, name string) error {
	errRemove := s.reg.WithCart(cartID, func(c *domain.Cart) error {
		return c.RemoveFreebieRule(name)
	})
	if errRemove != nil {
		log.Printf("remove freebie rule error: %v \n", errRemove)
		return errRemove
	}

	invalidateCache(s, cartID)
	return nil
}

// DeleteCart destroys the cart in the registry and drops its cached snapshot.
func (s *CartService) DeleteCart(ctx context.Context, cartID string) error {
	if err := s.reg.Remove(cartID); err != nil {
		return err
	}
	invalidateCache(s, cartID)
	return nil
}

func invalidateCache(s *CartService, cartID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	errInvalidate := s.cache.Delete(ctx, cartID)
	if errInvalidate != nil {
		log.Printf("cache invalidate error: %v \n", errInvalidate)
	}
}
