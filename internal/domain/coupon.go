package domain

import "github.com/shopspring/decimal"

type CouponKind string

const (
	CouponPercent CouponKind = "percent"
	CouponFixed   CouponKind = "fixed"
)

type Coupon struct {
	Code   string
	Kind   CouponKind
	Value  decimal.Decimal
	Active bool
}
