package model

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestOrderStatusValues(t *testing.T) {
	cases := []struct {
		name  string
		got   OrderStatus
		value string
	}{
		{"pending", OrderStatusPending, "pending"},
		{"confirmed", OrderStatusConfirmed, "confirmed"},
		{"in progress", OrderStatusInProgress, "in_progress"},
		{"revision", OrderStatusRevision, "revision"},
		{"completed", OrderStatusCompleted, "completed"},
		{"cancelled", OrderStatusCancelled, "cancelled"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if string(tc.got) != tc.value {
				t.Fatalf("expected %s, got %s", tc.value, tc.got)
			}
		})
	}
}

func TestOrderCanMoveTo(t *testing.T) {
	cases := []struct {
		name    string
		status  OrderStatus
		payment PaymentStatus
		next    OrderStatus
		want    bool
	}{
		{"unpaid cannot confirm", OrderStatusPending, PaymentStatusPending, OrderStatusConfirmed, false},
		{"paid confirm", OrderStatusPending, PaymentStatusPaid, OrderStatusConfirmed, true},
		{"pending cancel", OrderStatusPending, PaymentStatusPending, OrderStatusCancelled, true},
		{"pending complete", OrderStatusPending, PaymentStatusPaid, OrderStatusCompleted, false},
		{"start work", OrderStatusConfirmed, PaymentStatusPaid, OrderStatusInProgress, true},
		{"refunded cannot start", OrderStatusConfirmed, PaymentStatusRefunded, OrderStatusInProgress, false},
		{"revision after completion", OrderStatusCompleted, PaymentStatusPaid, OrderStatusRevision, true},
		{"revision back to work", OrderStatusRevision, PaymentStatusPaid, OrderStatusInProgress, true},
		{"revision cancel", OrderStatusRevision, PaymentStatusPaid, OrderStatusCancelled, true},
		{"completed cannot cancel", OrderStatusCompleted, PaymentStatusPaid, OrderStatusCancelled, false},
		{"cancelled terminal", OrderStatusCancelled, PaymentStatusRefunded, OrderStatusPending, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := &Order{Status: tc.status, PaymentStatus: tc.payment}
			if got := o.CanMoveTo(tc.next); got != tc.want {
				t.Fatalf("CanMoveTo(%s) = %v, want %v", tc.next, got, tc.want)
			}
		})
	}
}

func TestPaymentTransitions(t *testing.T) {
	if !PaymentStatusPending.CanTransition(PaymentStatusPaid) {
		t.Fatal("pending -> paid must be allowed")
	}
	if !PaymentStatusFailed.CanTransition(PaymentStatusPaid) {
		t.Fatal("failed -> paid must be allowed")
	}
	if PaymentStatusRefunded.CanTransition(PaymentStatusPaid) {
		t.Fatal("refunded is terminal")
	}
	if PaymentStatusPending.CanTransition(PaymentStatusRefunded) {
		t.Fatal("unpaid orders cannot be refunded")
	}
}

func TestOrderPayable(t *testing.T) {
	if !(&Order{Status: OrderStatusPending, PaymentStatus: PaymentStatusFailed}).Payable() {
		t.Fatal("failed payment may be retried")
	}
	if (&Order{Status: OrderStatusConfirmed, PaymentStatus: PaymentStatusPaid}).Payable() {
		t.Fatal("paid order is not payable")
	}
	if (&Order{Status: OrderStatusCancelled, PaymentStatus: PaymentStatusPending}).Payable() {
		t.Fatal("cancelled order is not payable")
	}
}

func TestParseCurrency(t *testing.T) {
	if c, err := ParseCurrency(""); err != nil || c != CurrencyINR {
		t.Fatalf("expected INR default, got %s %v", c, err)
	}
	if c, err := ParseCurrency(" usd "); err != nil || c != CurrencyUSD {
		t.Fatalf("expected USD, got %s %v", c, err)
	}
	if _, err := ParseCurrency("EUR"); err == nil {
		t.Fatal("expected error for unsupported currency")
	}
	if CurrencyUSD.Exponent() != 2 || Currency("JPY").Exponent() != 2 {
		t.Fatal("unexpected exponent")
	}
}

func TestPackagePriceFor(t *testing.T) {
	pkg := &ServicePackage{PriceINR: decimal.NewFromInt(2999), PriceUSD: decimal.NewFromInt(39)}
	if p, _ := pkg.PriceFor(CurrencyINR); !p.Equal(decimal.NewFromInt(2999)) {
		t.Fatalf("unexpected INR price %s", p)
	}
	if p, _ := pkg.PriceFor(CurrencyUSD); !p.Equal(decimal.NewFromInt(39)) {
		t.Fatalf("unexpected USD price %s", p)
	}
	if _, err := pkg.PriceFor("EUR"); err == nil {
		t.Fatal("expected error")
	}
}

func TestUserHelpers(t *testing.T) {
	u := &User{Email: "a@b.c", FirstName: "Asha", LastName: "Rao"}
	if u.FullName() != "Asha Rao" {
		t.Fatalf("unexpected name %q", u.FullName())
	}
	if (&User{Email: "a@b.c"}).FullName() != "a@b.c" {
		t.Fatal("expected email fallback")
	}
	if RoleCustomer.IsStaff() || !RoleSupport.IsStaff() || !RoleAdmin.IsStaff() {
		t.Fatal("unexpected staff flags")
	}
	if Role("root").Valid() {
		t.Fatal("unexpected valid role")
	}
}
