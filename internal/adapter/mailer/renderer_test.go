package mailer

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polkiloo/prowriters/internal/domain/model"
)

func testSummary() *model.OrderSummary {
	return &model.OrderSummary{
		Number:       "PW20250101ABCDEF0123",
		ServiceName:  "Resume Writing",
		PackageName:  "Premium",
		Amount:       decimal.NewFromInt(4999),
		Currency:     model.CurrencyINR,
		DeliveryDays: 2,
	}
}

func TestRenderWelcome(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	msg, err := r.Render(model.Notification{Kind: model.NotificationWelcome, Recipient: "a@b.c", Name: "Asha <b>"})
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", msg.To)
	assert.Equal(t, "Welcome to Professional Writers!", msg.Subject)
	assert.Contains(t, msg.HTML, "Hello Asha &lt;b&gt;!")
}

func TestRenderOrderConfirmed(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	msg, err := r.Render(model.Notification{Kind: model.NotificationOrderConfirmed, Recipient: "a@b.c", Name: "Asha", Order: testSummary()})
	require.NoError(t, err)
	assert.Equal(t, "Order Confirmation - PW20250101ABCDEF0123", msg.Subject)
	assert.Contains(t, msg.HTML, "Resume Writing")
	assert.Contains(t, msg.HTML, "Premium")
	assert.Contains(t, msg.HTML, "₹4999.00")
	assert.Contains(t, msg.HTML, "2 working days")
}

func TestRenderOrderCompleted(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	summary := testSummary()
	summary.Currency = model.CurrencyUSD
	summary.Amount = decimal.NewFromInt(69)
	msg, err := r.Render(model.Notification{Kind: model.NotificationOrderCompleted, Recipient: "a@b.c", Name: "Asha", Order: summary})
	require.NoError(t, err)
	assert.Equal(t, "Your Order is Complete - PW20250101ABCDEF0123", msg.Subject)
	assert.Contains(t, msg.HTML, "$69.00")
}

func TestRenderRejectsIncompleteNotifications(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	_, err = r.Render(model.Notification{Kind: "newsletter", Recipient: "a@b.c"})
	assert.Error(t, err)
	_, err = r.Render(model.Notification{Kind: model.NotificationWelcome})
	assert.Error(t, err)
	_, err = r.Render(model.Notification{Kind: model.NotificationOrderConfirmed, Recipient: "a@b.c"})
	assert.Error(t, err)
}
