// Package coupon resolves discount codes against a tenant's coupon list. It
// is pure pricing logic; entitlement gating is the caller's responsibility.
package coupon

import (
	"strings"

	"github.com/shopspring/decimal"

	"comanda/internal/domain"
	"comanda/internal/errors"
)

var hundred = decimal.NewFromInt(100)

type DiscountResult struct {
	Code     string
	Discount decimal.Decimal
}

// Resolve validates code against coupons and computes the discount for the
// given subtotal. Matching trims surrounding whitespace and ignores case, and
// only considers active coupons; an inactive match and no match at all return
// the same errors.ErrCouponNotFound. The discount is clamped to the subtotal
// so the payable total can never go negative.
func Resolve(code string, coupons []domain.Coupon, subtotal decimal.Decimal) (DiscountResult, error) {
	normalized := strings.TrimSpace(code)
	if normalized == "" {
		return DiscountResult{}, errors.ErrCouponNotFound
	}

	for _, c := range coupons {
		if !strings.EqualFold(strings.TrimSpace(c.Code), normalized) {
			continue
		}
		// An inactive or malformed entry must not shadow an active one
		// with the same code later in the list.
		if !c.Active {
			continue
		}

		var raw decimal.Decimal
		switch c.Kind {
		case domain.CouponPercent:
			raw = subtotal.Mul(c.Value).Div(hundred).Round(2)
		case domain.CouponFixed:
			raw = c.Value.Round(2)
		default:
			continue
		}

		if raw.GreaterThan(subtotal) {
			raw = subtotal
		}
		if raw.IsNegative() {
			raw = decimal.Zero
		}

		return DiscountResult{Code: strings.ToUpper(normalized), Discount: raw}, nil
	}

	return DiscountResult{}, errors.ErrCouponNotFound
}
