package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"comanda/internal/cart"
	"comanda/internal/domain"
	"comanda/internal/order/repository"
	"comanda/internal/testutil"
)

func integrationTenant() *domain.TenantPage {
	return &domain.TenantPage{
		Slug:  "lanchonete-da-ana",
		Title: "Lanchonete da Ana",
		Coupons: []domain.Coupon{
			{Code: "SAVE10", Kind: domain.CouponPercent, Value: decimal.RequireFromString("10"), Active: true},
			{Code: "BIG100", Kind: domain.CouponFixed, Value: decimal.RequireFromString("100"), Active: true},
		},
	}
}

func integrationCart() *cart.Cart {
	c := cart.New()
	c.Add("Pizza Calabresa", decimal.RequireFromString("30.00"))
	c.Add("Pizza Calabresa", decimal.RequireFromString("30.00"))
	c.Add("Guaraná", decimal.RequireFromString("8.00"))
	return c
}

func TestSubmit_PersistsPendingOrderWithDerivedTotals(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := repository.NewMySQLOrderRepository(db)
	svc := NewCheckoutService(db, repo, zap.NewNop(), 5*time.Second)

	c := integrationCart()
	sub := deliverySubmission()
	sub.CouponCode = "save10"

	order, err := svc.Submit(context.Background(), integrationTenant(), c, sub)
	require.NoError(t, err)

	found, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)

	assert.Equal(t, "lanchonete-da-ana", found.TenantSlug)
	assert.Equal(t, domain.StatusPending, found.Status)
	require.NotNil(t, found.CouponCode)
	assert.Equal(t, "SAVE10", *found.CouponCode)
	assert.True(t, found.Subtotal.Equal(decimal.RequireFromString("68.00")))
	assert.True(t, found.Discount.Equal(decimal.RequireFromString("6.80")))
	assert.True(t, found.Total.Equal(decimal.RequireFromString("61.20")))
	require.NotNil(t, found.DeliveryAddress)
	assert.Equal(t, "Rua das Flores, 123 - Centro", *found.DeliveryAddress)

	require.Len(t, found.Items, 2)
	assert.Equal(t, "Pizza Calabresa", found.Items[0].Title)
	assert.Equal(t, 2, found.Items[0].Quantity)
	assert.Equal(t, "Guaraná", found.Items[1].Title)

	// Exactly one order row per successful call.
	var rows int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM Orders").Scan(&rows))
	assert.Equal(t, 1, rows)
}

func TestSubmit_FixedCouponClampsTotalToZero(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := repository.NewMySQLOrderRepository(db)
	svc := NewCheckoutService(db, repo, zap.NewNop(), 5*time.Second)

	sub := deliverySubmission()
	sub.CouponCode = "BIG100"

	order, err := svc.Submit(context.Background(), integrationTenant(), integrationCart(), sub)
	require.NoError(t, err)

	found, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)

	assert.True(t, found.Discount.Equal(decimal.RequireFromString("68.00")))
	assert.True(t, found.Total.IsZero())
}

func TestSubmit_OrderSnapshotsCartAtSubmission(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := repository.NewMySQLOrderRepository(db)
	svc := NewCheckoutService(db, repo, zap.NewNop(), 5*time.Second)

	c := integrationCart()
	order, err := svc.Submit(context.Background(), integrationTenant(), c, deliverySubmission())
	require.NoError(t, err)

	// The shopper keeps mutating the cart; the persisted order must not move.
	c.Add("Pizza Calabresa", decimal.RequireFromString("30.00"))
	c.Remove("Guaraná")

	assert.Equal(t, 2, order.Items[0].Quantity)

	found, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, found.Items, 2)
	assert.Equal(t, 2, found.Items[0].Quantity)
	assert.True(t, found.Subtotal.Equal(decimal.RequireFromString("68.00")))
}
