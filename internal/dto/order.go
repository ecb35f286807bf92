package dto

import "time"

type OrderItemDTO struct {
	Title     string `json:"title"`
	UnitPrice string `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
	LineTotal string `json:"lineTotal"`
}

type OrderDTO struct {
	ID              string         `json:"id"`
	TenantSlug      string         `json:"tenantSlug"`
	CustomerName    string         `json:"customerName"`
	CustomerPhone   *string        `json:"customerPhone,omitempty"`
	Items           []OrderItemDTO `json:"items"`
	Subtotal        string         `json:"subtotal"`
	CouponCode      *string        `json:"couponCode,omitempty"`
	Discount        string         `json:"discount"`
	Total           string         `json:"total"`
	FulfillmentMode string         `json:"fulfillmentMode"`
	DeliveryAddress *string        `json:"deliveryAddress,omitempty"`
	Status          string         `json:"status"`
	CreatedAt       time.Time      `json:"createdAt"`
}

// TrackingDTO is the read-only public projection served to any holder of the
// tracking link. It deliberately omits customer contact details.
type TrackingDTO struct {
	ID              string         `json:"id"`
	TenantSlug      string         `json:"tenantSlug"`
	CustomerName    string         `json:"customerName"`
	Items           []OrderItemDTO `json:"items"`
	Total           string         `json:"total"`
	FulfillmentMode string         `json:"fulfillmentMode"`
	DeliveryAddress *string        `json:"deliveryAddress,omitempty"`
	Status          string         `json:"status"`
	CreatedAt       time.Time      `json:"createdAt"`
}

type FinancialsDTO struct {
	From          time.Time `json:"from"`
	To            time.Time `json:"to"`
	OrderCount    int       `json:"orderCount"`
	CanceledCount int       `json:"canceledCount"`
	Revenue       string    `json:"revenue"`
}
