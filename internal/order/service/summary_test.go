package service

import (
	"net/url"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"comanda/internal/domain"
)

func summaryOrder() *domain.Order {
	code := "SAVE10"
	addr := "Rua das Flores, 123 - Centro"
	return &domain.Order{
		ID:           "order-1",
		TenantSlug:   "lanchonete-da-ana",
		CustomerName: "João",
		Items: []domain.OrderItem{
			{Title: "X-Burger", UnitPrice: decimal.RequireFromString("25.00"), Quantity: 2},
			{Title: "Batata Frita", UnitPrice: decimal.RequireFromString("18.00"), Quantity: 1},
		},
		Subtotal:        decimal.RequireFromString("68.00"),
		CouponCode:      &code,
		Discount:        decimal.RequireFromString("6.80"),
		Total:           decimal.RequireFromString("61.20"),
		FulfillmentMode: domain.FulfillmentDelivery,
		DeliveryAddress: &addr,
		Status:          domain.StatusPending,
	}
}

func TestSummaryMessage_DeliveryWithCoupon(t *testing.T) {
	tenant := &domain.TenantPage{
		Slug:   "lanchonete-da-ana",
		Title:  "Lanchonete da Ana",
		PixKey: "ana@example.com",
	}

	message := SummaryMessage(tenant, summaryOrder(), "https://comanda.app")

	// The field sequence is a contract: greeting, mode, items, subtotal,
	// discount, total, payment, tracking link.
	wantInOrder := []string{
		"Lanchonete da Ana",
		"João",
		"Entrega: Rua das Flores, 123 - Centro",
		"2x X-Burger - R$ 50.00",
		"1x Batata Frita - R$ 18.00",
		"Subtotal: R$ 68.00",
		"Cupom SAVE10: -R$ 6.80",
		"*Total: R$ 61.20*",
		"Pagamento via Pix: ana@example.com",
		"Acompanhe seu pedido: https://comanda.app/lanchonete-da-ana/order/order-1",
	}

	offset := 0
	for _, want := range wantInOrder {
		idx := strings.Index(message[offset:], want)
		require.GreaterOrEqual(t, idx, 0, "missing %q in:\n%s", want, message)
		offset += idx + len(want)
	}
}

func TestSummaryMessage_PickupWithoutExtras(t *testing.T) {
	tenant := &domain.TenantPage{Slug: "lanchonete-da-ana", Title: "Lanchonete da Ana"}

	order := summaryOrder()
	order.FulfillmentMode = domain.FulfillmentPickup
	order.DeliveryAddress = nil
	order.CouponCode = nil

	message := SummaryMessage(tenant, order, "https://comanda.app")

	assert.Contains(t, message, "Retirada no local")
	assert.NotContains(t, message, "Entrega:")
	assert.NotContains(t, message, "Cupom")
	assert.NotContains(t, message, "Pix")
}

func TestTrackingURL(t *testing.T) {
	order := summaryOrder()

	assert.Equal(t,
		"https://comanda.app/lanchonete-da-ana/order/order-1",
		TrackingURL("https://comanda.app", order),
	)
	// A trailing slash on the base never doubles up.
	assert.Equal(t,
		"https://comanda.app/lanchonete-da-ana/order/order-1",
		TrackingURL("https://comanda.app/", order),
	)
}

func TestWhatsAppLink(t *testing.T) {
	link := WhatsAppLink("5511999990000", "Olá *Ana*! Pedido de *João*")

	require.True(t, strings.HasPrefix(link, "https://wa.me/5511999990000?text="))

	parsed, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "Olá *Ana*! Pedido de *João*", parsed.Query().Get("text"))

	assert.Empty(t, WhatsAppLink("", "anything"))
}
