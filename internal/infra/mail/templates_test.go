package mail

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderOrderConfirmation(t *testing.T) {
	subject, html, err := RenderOrderConfirmation(OrderConfirmationView{
		OrderID: "3f2b1c9e-aaaa-bbbb-cccc-000000000000",
		Items: []ItemView{
			{Name: "Box <Geek>", Quantity: 2, UnitPrice: "19.99", Total: "39.98"},
		},
		Subtotal:        "39.98",
		VAT:             "9.20",
		Shipping:        "4.99",
		Total:           "54.17",
		ShippingAddress: "Rua A, Lisboa",
		PaymentMethod:   "stripe",
	})
	require.NoError(t, err)

	assert.Equal(t, "Confirmação da encomenda #3f2b1c9e", subject)
	assert.Contains(t, html, "Box &lt;Geek&gt;")
	assert.Contains(t, html, "€54.17")
	assert.NotContains(t, html, "Desconto")
}

func TestRenderOrderConfirmation_WithDiscount(t *testing.T) {
	_, html, err := RenderOrderConfirmation(OrderConfirmationView{OrderID: "o1", HasDiscount: true, Discount: "5.00"})
	require.NoError(t, err)
	assert.Contains(t, html, "Desconto: -€5.00")
}

func TestRenderShippingNotification(t *testing.T) {
	subject, html, err := RenderShippingNotification(ShippingNotificationView{OrderID: "o1", TrackingNumber: "CTT123"})
	require.NoError(t, err)

	assert.Equal(t, "Encomenda #o1 enviada", subject)
	assert.Contains(t, html, "CTT123")
}

func TestLogSender(t *testing.T) {
	id, err := LogSender{}.Send(context.Background(), "a@b.pt", "hi", "<p>x</p>")
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}
