package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/fjod/cart-pricing/internal/cache"
	"github.com/fjod/cart-pricing/internal/domain"
	"github.com/fjod/cart-pricing/internal/registry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCache struct {
	m    sync.RWMutex
	snap *domain.CartSnapshot
	err  error
}

func (m *mockCache) Get(context.Context, string) (*domain.CartSnapshot, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.snap == nil {
		return nil, cache.ErrCacheMiss
	}
	return m.snap, nil
}

func (m *mockCache) Set(_ context.Context, _ string, snap *domain.CartSnapshot) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.snap = snap
	return m.err
}

func (m *mockCache) Delete(context.Context, string) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.snap = nil
	return m.err
}

func (m *mockCache) getSnap() *domain.CartSnapshot {
	m.m.RLock()
	defer m.m.RUnlock()
	return m.snap
}

func price(t *testing.T, amount string) domain.Money {
	t.Helper()
	m, err := domain.NewMoney(decimal.RequireFromString(amount), "THB")
	require.NoError(t, err)
	return m
}

func qty(t *testing.T, v int) domain.Quantity {
	t.Helper()
	q, err := domain.NewQuantity(v)
	require.NoError(t, err)
	return q
}

func newService(t *testing.T) (*CartService, *registry.Registry, *mockCache) {
	t.Helper()
	reg := registry.New()
	mockC := &mockCache{}
	return NewCartService(reg, mockC), reg, mockC
}

func TestCreateCart(t *testing.T) {
	sut, reg, _ := newService(t)

	snap := sut.CreateCart("owner-1")
	assert.NotEmpty(t, snap.ID)
	assert.Empty(t, snap.Items)

	ids := reg.CartsForOwner("owner-1")
	require.Len(t, ids, 1)
	assert.Equal(t, snap.ID, ids[0])
}

func TestGetCart_CacheMissFillsCache(t *testing.T) {
	sut, _, mockC := newService(t)
	created := sut.CreateCart("owner-1")

	ret, err := sut.GetCart(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, ret.ID)

	require.Eventually(t, func() bool {
		return mockC.getSnap() != nil
	}, 100*time.Millisecond, 10*time.Millisecond, "snapshot was not set in cache")
}

func TestGetCart_CacheHit(t *testing.T) {
	sut, _, mockC := newService(t)
	snap := &domain.CartSnapshot{ID: "cached-cart"}
	mockC.snap = snap

	// cart is not in the registry at all; the cached snapshot is served
	ret, err := sut.GetCart(context.Background(), "cached-cart")
	require.NoError(t, err)
	assert.Equal(t, "cached-cart", ret.ID)
}

func TestGetCart_NotFound(t *testing.T) {
	sut, _, _ := newService(t)

	_, err := sut.GetCart(context.Background(), "ghost")
	require.ErrorIs(t, err, registry.ErrCartNotFound)
}

func TestGetCart_CacheErrorFallsThrough(t *testing.T) {
	sut, _, mockC := newService(t)
	mockC.err = fmt.Errorf("redis down")
	created := sut.CreateCart("owner-1")

	ret, err := sut.GetCart(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, ret.ID)
}

func TestAddItem_Success(t *testing.T) {
	sut, reg, mockC := newService(t)
	created := sut.CreateCart("owner-1")
	mockC.snap = &created

	err := sut.AddItem(context.Background(), created.ID, "prod-1", qty(t, 5), price(t, "100"))
	require.NoError(t, err)

	cart, err := reg.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, cart.TotalItemCount())

	// Verify cache was invalidated
	assert.Nil(t, mockC.getSnap())
}

func TestAddItem_ValidationErrorSurfaced(t *testing.T) {
	sut, _, _ := newService(t)
	created := sut.CreateCart("owner-1")

	err := sut.AddItem(context.Background(), created.ID, "", qty(t, 1), price(t, "10"))
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestAddItem_CartNotFound(t *testing.T) {
	sut, _, _ := newService(t)
	err := sut.AddItem(context.Background(), "ghost", "prod-1", qty(t, 1), price(t, "10"))
	require.ErrorIs(t, err, registry.ErrCartNotFound)
}

func TestUpdateQuantity_Success(t *testing.T) {
	sut, reg, mockC := newService(t)
	created := sut.CreateCart("owner-1")
	require.NoError(t, sut.AddItem(context.Background(), created.ID, "prod-1", qty(t, 5), price(t, "100")))
	mockC.snap = &created

	err := sut.UpdateQuantity(context.Background(), created.ID, "prod-1", qty(t, 20))
	require.NoError(t, err)

	cart, err := reg.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, cart.TotalItemCount())
	assert.Nil(t, mockC.getSnap())
}

func TestRemoveItem_Success(t *testing.T) {
	sut, reg, mockC := newService(t)
	created := sut.CreateCart("owner-1")
	require.NoError(t, sut.AddItem(context.Background(), created.ID, "prod-1", qty(t, 5), price(t, "100")))
	mockC.snap = &created

	err := sut.RemoveItem(context.Background(), created.ID, "prod-1")
	require.NoError(t, err)

	cart, err := reg.Get(created.ID)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
	assert.Nil(t, mockC.getSnap())
}

func TestClearCart_Success(t *testing.T) {
	sut, reg, mockC := newService(t)
	created := sut.CreateCart("owner-1")
	require.NoError(t, sut.AddItem(context.Background(), created.ID, "prod-1", qty(t, 5), price(t, "100")))
	mockC.snap = &created

	err := sut.ClearCart(context.Background(), created.ID)
	require.NoError(t, err)

	cart, err := reg.Get(created.ID)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
	assert.Nil(t, mockC.getSnap())
}

func TestApplyAndRemoveDiscount(t *testing.T) {
	sut, _, _ := newService(t)
	created := sut.CreateCart("owner-1")
	require.NoError(t, sut.AddItem(context.Background(), created.ID, "prod-1", qty(t, 5), price(t, "100")))

	d, err := domain.NewFixedDiscount("SAVE50", decimal.NewFromInt(50))
	require.NoError(t, err)
	require.NoError(t, sut.ApplyDiscount(context.Background(), created.ID, d))

	totals, err := sut.Totals(context.Background(), created.ID)
	require.NoError(t, err)
	assert.True(t, totals.Subtotal.Amount().Equal(decimal.NewFromInt(500)))
	assert.True(t, totals.TotalDiscount.Amount().Equal(decimal.NewFromInt(50)))
	assert.True(t, totals.Total.Amount().Equal(decimal.NewFromInt(450)))

	require.NoError(t, sut.RemoveDiscount(context.Background(), created.ID, "SAVE50"))
	totals, err = sut.Totals(context.Background(), created.ID)
	require.NoError(t, err)
	assert.True(t, totals.Total.Amount().Equal(decimal.NewFromInt(500)))
}

func TestApplyFreebieRule_Success(t *testing.T) {
	sut, reg, _ := newService(t)
	created := sut.CreateCart("owner-1")
	require.NoError(t, sut.AddItem(context.Background(), created.ID, "prod-x", qty(t, 1), price(t, "100")))

	rule, err := domain.NewFreebieRule("x-gives-y", "prod-x", "prod-y", domain.Quantity{})
	require.NoError(t, err)
	require.NoError(t, sut.ApplyFreebieRule(context.Background(), created.ID, rule))

	cart, err := reg.Get(created.ID)
	require.NoError(t, err)
	assert.Len(t, cart.FreebieItems(), 1)
}

func TestApplyFreebieRule_CircularConflictRejected(t *testing.T) {
	sut, reg, _ := newService(t)
	created := sut.CreateCart("owner-1")

	ruleA, err := domain.NewFreebieRule("A", "x", "y", domain.Quantity{})
	require.NoError(t, err)
	ruleB, err := domain.NewFreebieRule("B", "y", "x", domain.Quantity{})
	require.NoError(t, err)

	require.NoError(t, sut.ApplyFreebieRule(context.Background(), created.ID, ruleA))

	err = sut.ApplyFreebieRule(context.Background(), created.ID, ruleB)
	require.ErrorIs(t, err, domain.ErrConflict)
	assert.ErrorContains(t, err, "circular")

	// the conflicting rule never reached the aggregate
	cart, err := reg.Get(created.ID)
	require.NoError(t, err)
	assert.Len(t, cart.FreebieRules(), 1)
}

func TestRemoveFreebieRule_Success(t *testing.T) {
	sut, reg, _ := newService(t)
	created := sut.CreateCart("owner-1")
	require.NoError(t, sut.AddItem(context.Background(), created.ID, "prod-x", qty(t, 1), price(t, "100")))

	rule, err := domain.NewFreebieRule("x-gives-y", "prod-x", "prod-y", domain.Quantity{})
	require.NoError(t, err)
	require.NoError(t, sut.ApplyFreebieRule(context.Background(), created.ID, rule))
	require.NoError(t, sut.RemoveFreebieRule(context.Background(), created.ID, "x-gives-y"))

	cart, err := reg.Get(created.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.FreebieItems())
	assert.Empty(t, cart.FreebieRules())
}

func TestDeleteCart(t *testing.T) {
	sut, reg, mockC := newService(t)
	created := sut.CreateCart("owner-1")
	mockC.snap = &created

	require.NoError(t, sut.DeleteCart(context.Background(), created.ID))

	_, err := reg.Get(created.ID)
	require.ErrorIs(t, err, registry.ErrCartNotFound)
	assert.Nil(t, mockC.getSnap())
}

func TestTotals_CartNotFound(t *testing.T) {
	sut, _, _ := newService(t)
	_, err := sut.Totals(context.Background(), "ghost")
	require.ErrorIs(t, err, registry.ErrCartNotFound)
}
