package dto

type AddressInput struct {
	Street       string `json:"street"`
	Number       string `json:"number"`
	Neighborhood string `json:"neighborhood"`
	Complement   string `json:"complement,omitempty"`
}

type CheckoutRequest struct {
	CustomerName    string       `json:"customerName"`
	CustomerPhone   string       `json:"customerPhone,omitempty"`
	CustomerRef     string       `json:"customerRef,omitempty"`
	FulfillmentMode string       `json:"fulfillmentMode"`
	Address         AddressInput `json:"address"`
	CouponCode      string       `json:"couponCode,omitempty"`
}

type CheckoutResponse struct {
	TraceID      string   `json:"traceId"`
	Order        OrderDTO `json:"order"`
	Message      string   `json:"message"`
	WhatsAppLink string   `json:"whatsappLink,omitempty"`
	TrackingURL  string   `json:"trackingUrl"`
}

type AddCartItemRequest struct {
	Title     string `json:"title"`
	UnitPrice string `json:"unitPrice"`
}

type CartLineDTO struct {
	Title     string `json:"title"`
	UnitPrice string `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
	LineTotal string `json:"lineTotal"`
}

type CartDTO struct {
	SessionToken string        `json:"sessionToken"`
	Lines        []CartLineDTO `json:"lines"`
	Units        int           `json:"units"`
	Subtotal     string        `json:"subtotal"`
}
