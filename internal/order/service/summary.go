package service

import (
	"fmt"
	"net/url"
	"strings"

	"comanda/internal/domain"
)

// SummaryMessage renders the plain-text order summary handed off to the chat
// transport. The wording is free, but the field sequence is a presentation
// contract: greeting, fulfillment mode (with address for delivery), item
// lines, subtotal, coupon discount when applied, total, pay-by-transfer note
// when a pix key is configured, tracking link.
func SummaryMessage(tenant *domain.TenantPage, order *domain.Order, baseURL string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Olá *%s*! Pedido de *%s*:\n\n", tenant.Title, order.CustomerName)

	if order.FulfillmentMode == domain.FulfillmentDelivery && order.DeliveryAddress != nil {
		fmt.Fprintf(&b, "Entrega: %s\n\n", *order.DeliveryAddress)
	} else {
		b.WriteString("Retirada no local\n\n")
	}

	for _, item := range order.Items {
		fmt.Fprintf(&b, "%dx %s - R$ %s\n", item.Quantity, item.Title, item.LineTotal().StringFixed(2))
	}

	fmt.Fprintf(&b, "\nSubtotal: R$ %s\n", order.Subtotal.StringFixed(2))
	if order.CouponCode != nil {
		fmt.Fprintf(&b, "Cupom %s: -R$ %s\n", *order.CouponCode, order.Discount.StringFixed(2))
	}
	fmt.Fprintf(&b, "*Total: R$ %s*\n", order.Total.StringFixed(2))

	if tenant.PixKey != "" {
		fmt.Fprintf(&b, "\nPagamento via Pix: %s\n", tenant.PixKey)
	}

	fmt.Fprintf(&b, "\nAcompanhe seu pedido: %s", TrackingURL(baseURL, order))

	return b.String()
}

// TrackingURL is the stable capability link to the read-only live view of one
// order; holding the link is the only credential required.
func TrackingURL(baseURL string, order *domain.Order) string {
	return fmt.Sprintf("%s/%s/order/%s", strings.TrimRight(baseURL, "/"), order.TenantSlug, order.ID)
}

// WhatsAppLink composes the chat deep-link that opens the summary in the
// merchant's conversation. Empty when no number is configured.
func WhatsAppLink(number, message string) string {
	if number == "" {
		return ""
	}
	return fmt.Sprintf("https://wa.me/%s?text=%s", number, url.QueryEscape(message))
}
