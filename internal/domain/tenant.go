package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Plan string

const (
	PlanFree Plan = "free"
	PlanPro  Plan = "pro"
)

// ParsePlan is fail-closed: anything that is not exactly "pro" is free.
func ParsePlan(raw string) Plan {
	if Plan(raw) == PlanPro {
		return PlanPro
	}
	return PlanFree
}

// MenuItem is one dish on a tenant's published menu. Identity is the title.
type MenuItem struct {
	Title       string
	Price       decimal.Decimal
	Description string
	ImageURL    string
	Category    string
	Position    int
}

// FreeMenuItemLimit caps the menu size for free-plan tenants.
const FreeMenuItemLimit = 8

// Account is the merchant's private record. Plan and TrialDeadline are the
// authoritative plan snapshot for merchant-side reads.
type Account struct {
	ID            string
	Email         string
	DisplayName   string
	Plan          Plan
	TrialDeadline *time.Time
	PageSlug      string
	Role          string
}

const RoleSuper = "super"

// TenantPage is the tenant's public page record. Plan and TrialDeadline are
// denormalized copies of the account fields so anonymous visitors can resolve
// entitlement without reading the account; any plan write updates both rows
// in one transaction.
type TenantPage struct {
	Slug          string
	AccountID     string
	Title         string
	Bio           string
	Address       string
	WhatsApp      string
	PixKey        string
	Theme         string
	IsOpen        bool
	Plan          Plan
	TrialDeadline *time.Time
	Coupons       []Coupon
	Items         []MenuItem
}
