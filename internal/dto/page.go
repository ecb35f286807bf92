package dto

import "time"

type MenuItemDTO struct {
	Title       string `json:"title"`
	Price       string `json:"price"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
	Category    string `json:"category,omitempty"`
	Position    int    `json:"position"`
}

// PublicPageDTO is the anonymous visitor view of a tenant. Coupon codes are
// never exposed here; codes are validated server-side at checkout. PixKey is
// blanked when the tenant is not entitled to pro features.
type PublicPageDTO struct {
	Slug               string        `json:"slug"`
	Title              string        `json:"title"`
	Bio                string        `json:"bio,omitempty"`
	Address            string        `json:"address,omitempty"`
	Theme              string        `json:"theme,omitempty"`
	IsOpen             bool          `json:"isOpen"`
	PixKey             string        `json:"pixKey,omitempty"`
	ProFeaturesEnabled bool          `json:"proFeaturesEnabled"`
	Items              []MenuItemDTO `json:"items"`
}

type CouponDTO struct {
	Code   string `json:"code"`
	Kind   string `json:"kind"`
	Value  string `json:"value"`
	Active bool   `json:"active"`
}

// AccountOverviewDTO is the merchant's private dashboard view.
type AccountOverviewDTO struct {
	AccountID          string      `json:"accountId"`
	Email              string      `json:"email"`
	PageSlug           string      `json:"pageSlug"`
	Plan               string      `json:"plan"`
	ProFeaturesEnabled bool        `json:"proFeaturesEnabled"`
	TrialDaysLeft      *int        `json:"trialDaysLeft,omitempty"`
	Page               PageDTO     `json:"page"`
	Coupons            []CouponDTO `json:"coupons"`
}

type PageDTO struct {
	Slug     string        `json:"slug"`
	Title    string        `json:"title"`
	Bio      string        `json:"bio,omitempty"`
	Address  string        `json:"address,omitempty"`
	WhatsApp string        `json:"whatsapp,omitempty"`
	PixKey   string        `json:"pixKey,omitempty"`
	Theme    string        `json:"theme,omitempty"`
	IsOpen   bool          `json:"isOpen"`
	Items    []MenuItemDTO `json:"items"`
}

type UpdateProfileRequest struct {
	Title    string `json:"title"`
	Bio      string `json:"bio"`
	Address  string `json:"address"`
	WhatsApp string `json:"whatsapp"`
	PixKey   string `json:"pixKey"`
	Theme    string `json:"theme"`
	IsOpen   bool   `json:"isOpen"`
}

type AddCouponRequest struct {
	Code  string `json:"code"`
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

type MenuItemRequest struct {
	Title       string `json:"title"`
	Price       string `json:"price"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
	Category    string `json:"category,omitempty"`
}

type ReorderMenuRequest struct {
	Titles []string `json:"titles"`
}

type UpdatePlanRequest struct {
	AccountID     string     `json:"accountId"`
	Plan          string     `json:"plan"`
	TrialDeadline *time.Time `json:"trialDeadline,omitempty"`
}
