package coupon

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"comanda/internal/domain"
	apperrors "comanda/internal/errors"
)

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var testCoupons = []domain.Coupon{
	{Code: "SAVE10", Kind: domain.CouponPercent, Value: price("10"), Active: true},
	{Code: "BIG50", Kind: domain.CouponFixed, Value: price("50"), Active: true},
	{Code: "OLD20", Kind: domain.CouponPercent, Value: price("20"), Active: false},
}

func TestResolve_PercentDiscount(t *testing.T) {
	result, err := Resolve("SAVE10", testCoupons, price("68.00"))

	require.NoError(t, err)
	assert.Equal(t, "SAVE10", result.Code)
	assert.Equal(t, "6.80", result.Discount.StringFixed(2))
}

func TestResolve_FixedDiscountClampedToSubtotal(t *testing.T) {
	result, err := Resolve("BIG50", testCoupons, price("68.00"))
	require.NoError(t, err)
	assert.Equal(t, "50.00", result.Discount.StringFixed(2))

	// A fixed discount larger than the subtotal never drives the total
	// negative.
	result, err = Resolve("BIG50", testCoupons, price("30.00"))
	require.NoError(t, err)
	assert.Equal(t, "30.00", result.Discount.StringFixed(2))
}

func TestResolve_MatchingIsCaseInsensitiveAndTrimmed(t *testing.T) {
	for _, entered := range []string{"save10", "Save10", "  SAVE10  ", "sAvE10"} {
		result, err := Resolve(entered, testCoupons, price("100.00"))
		require.NoError(t, err, "entered %q", entered)
		assert.Equal(t, "SAVE10", result.Code)
		assert.Equal(t, "10.00", result.Discount.StringFixed(2))
	}
}

func TestResolve_UnknownAndInactiveAreIndistinguishable(t *testing.T) {
	_, unknownErr := Resolve("NOPE", testCoupons, price("68.00"))
	_, inactiveErr := Resolve("OLD20", testCoupons, price("68.00"))

	require.Error(t, unknownErr)
	require.Error(t, inactiveErr)
	assert.Equal(t, unknownErr, inactiveErr)
	assert.ErrorIs(t, unknownErr, apperrors.ErrCouponNotFound)
}

func TestResolve_InactiveEntryDoesNotShadowActiveDuplicate(t *testing.T) {
	// A replaced coupon list may carry an inactive entry alongside an
	// active one with the same code; the active one wins regardless of
	// list order.
	coupons := []domain.Coupon{
		{Code: "PROMO5", Kind: domain.CouponFixed, Value: price("5"), Active: false},
		{Code: "promo5", Kind: domain.CouponFixed, Value: price("5"), Active: true},
	}

	result, err := Resolve("PROMO5", coupons, price("68.00"))
	require.NoError(t, err)
	assert.Equal(t, "PROMO5", result.Code)
	assert.Equal(t, "5.00", result.Discount.StringFixed(2))

	// All matches inactive still reads as not found.
	_, err = Resolve("PROMO5", coupons[:1], price("68.00"))
	assert.ErrorIs(t, err, apperrors.ErrCouponNotFound)
}

func TestResolve_BlankCode(t *testing.T) {
	_, err := Resolve("   ", testCoupons, price("68.00"))
	assert.ErrorIs(t, err, apperrors.ErrCouponNotFound)
}

func TestResolve_PercentRounding(t *testing.T) {
	coupons := []domain.Coupon{
		{Code: "SAVE15", Kind: domain.CouponPercent, Value: price("15"), Active: true},
	}

	// 15% of 33.30 is 4.995, rounded half-up to 5.00.
	result, err := Resolve("SAVE15", coupons, price("33.30"))
	require.NoError(t, err)
	assert.Equal(t, "5.00", result.Discount.StringFixed(2))
}

func TestResolve_DoesNotMutateInputs(t *testing.T) {
	coupons := []domain.Coupon{
		{Code: "SAVE10", Kind: domain.CouponPercent, Value: price("10"), Active: true},
	}
	subtotal := price("68.00")

	_, err := Resolve("SAVE10", coupons, subtotal)
	require.NoError(t, err)

	assert.Equal(t, "SAVE10", coupons[0].Code)
	assert.Equal(t, "10", coupons[0].Value.String())
	assert.Equal(t, "68.00", subtotal.StringFixed(2))
}
