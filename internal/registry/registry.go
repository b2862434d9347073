package registry

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/fjod/cart-pricing/internal/domain"
)

var ErrCartNotFound = errors.New("cart not found")

// Registry is the process-wide keyed store of cart aggregates with an
// owner index. It gives each cart the single-writer guarantee the domain
// core assumes: mutations go through WithCart, which serializes access per
// cart while operations on different carts proceed in parallel.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
	owners  map[string]map[string]struct{}
}

type entry struct {
	mu         sync.Mutex
	cart       *domain.Cart
	ownerID    string
	lastActive time.Time
}

func New() *Registry {
	return &Registry{
		entries: make(map[string]*entry),
		owners:  make(map[string]map[string]struct{}),
	}
}

// Create makes a fresh empty cart for the owner and indexes it.
func (r *Registry) Create(ownerID string) *domain.Cart {
	cart := domain.NewCart()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[cart.ID()] = &entry{cart: cart, ownerID: ownerID, lastActive: time.Now()}
	if ownerID != "" {
		if r.owners[ownerID] == nil {
			r.owners[ownerID] = make(map[string]struct{})
		}
		r.owners[ownerID][cart.ID()] = struct{}{}
	}
	return cart
}

// Get returns the cart for read access. Mutations must go through WithCart.
func (r *Registry) Get(cartID string) (*domain.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[cartID]
	if !ok {
		return nil, ErrCartNotFound
	}
	return e.cart, nil
}

// WithCart runs fn with exclusive access to the cart and records activity.
func (r *Registry) WithCart(cartID string, fn func(*domain.Cart) error) error {
	r.mu.RLock()
	e, ok := r.entries[cartID]
	r.mu.RUnlock()
	if !ok {
		return ErrCartNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := fn(e.cart); err != nil {
		return err
	}
	e.lastActive = time.Now()
	return nil
}

// Remove destroys the cart and unindexes it from its owner.
func (r *Registry) Remove(cartID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[cartID]
	if !ok {
		return ErrCartNotFound
	}
	delete(r.entries, cartID)
	r.unindex(e.ownerID, cartID)
	return nil
}

// CartsForOwner lists the owner's cart ids, most recently active first.
func (r *Registry) CartsForOwner(ownerID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.owners[ownerID]))
	for id := range r.owners[ownerID] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return r.entries[ids[i]].lastActive.After(r.entries[ids[j]].lastActive)
	})
	return ids
}

// MostRecentForOwner returns the owner's most recently active cart.
func (r *Registry) MostRecentForOwner(ownerID string) (*domain.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var best *entry
	for id := range r.owners[ownerID] {
		e := r.entries[id]
		if best == nil || e.lastActive.After(best.lastActive) {
			best = e
		}
	}
	if best == nil {
		return nil, ErrCartNotFound
	}
	return best.cart, nil
}

// SweepAbandoned garbage-collects carts idle for longer than maxIdle and
// returns how many were removed.
func (r *Registry) SweepAbandoned(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, e := range r.entries {
		if e.lastActive.Before(cutoff) {
			delete(r.entries, id)
			r.unindex(e.ownerID, id)
			removed++
		}
	}
	return removed
}

// Len reports the number of registered carts.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

func (r *Registry) unindex(ownerID, cartID string) {
	if ownerID == "" {
		return
	}
	delete(r.owners[ownerID], cartID)
	if len(r.owners[ownerID]) == 0 {
		delete(r.owners, ownerID)
	}
}
