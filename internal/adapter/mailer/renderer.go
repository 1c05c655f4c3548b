package mailer

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/polkiloo/prowriters/internal/domain/model"
)

//go:embed templates/*.html
var templateFS embed.FS

var subjects = map[model.NotificationKind]func(model.Notification) string{
	model.NotificationWelcome: func(model.Notification) string {
		return "Welcome to Professional Writers!"
	},
	model.NotificationOrderConfirmed: func(n model.Notification) string {
		return "Order Confirmation - " + n.Order.Number
	},
	model.NotificationOrderCompleted: func(n model.Notification) string {
		return "Your Order is Complete - " + n.Order.Number
	},
}

var currencySymbols = map[model.Currency]string{
	model.CurrencyINR: "₹",
	model.CurrencyUSD: "$",
}

// Renderer turns notifications into email messages.
type Renderer struct {
	templates *template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("mail").Funcs(template.FuncMap{
		"money": formatMoney,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse mail templates: %w", err)
	}
	return &Renderer{templates: tmpl}, nil
}

// Render builds the message for n.
func (r *Renderer) Render(n model.Notification) (Message, error) {
	subject, ok := subjects[n.Kind]
	if !ok {
		return Message{}, fmt.Errorf("unknown notification kind %q", n.Kind)
	}
	if n.Recipient == "" {
		return Message{}, fmt.Errorf("notification %s has no recipient", n.Kind)
	}
	if n.Kind != model.NotificationWelcome && n.Order == nil {
		return Message{}, fmt.Errorf("notification %s requires order details", n.Kind)
	}

	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, string(n.Kind)+".html", n); err != nil {
		return Message{}, fmt.Errorf("render %s: %w", n.Kind, err)
	}

	return Message{To: n.Recipient, Subject: subject(n), HTML: buf.String()}, nil
}

func formatMoney(o *model.OrderSummary) string {
	symbol, ok := currencySymbols[o.Currency]
	if !ok {
		symbol = string(o.Currency) + " "
	}
	return symbol + o.Amount.StringFixed(o.Currency.Exponent())
}
