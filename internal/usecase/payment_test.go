package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/polkiloo/prowriters/internal/adapter/gateway"
	domainErrors "github.com/polkiloo/prowriters/internal/domain/errors"
	"github.com/polkiloo/prowriters/internal/domain/model"
)

func TestCheckoutCreatesAndReusesRemoteOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seeded := f.seedOrder(1, model.OrderStatusPending, model.PaymentStatusPending)

	first, err := f.paymentUC.Checkout(ctx, customer, 1)
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	if first.AmountMinor != 299900 || first.Currency != model.CurrencyINR {
		t.Fatalf("unexpected amount %d %s", first.AmountMinor, first.Currency)
	}
	if first.KeyID != "rzp_test_key" || first.OrderNumber != seeded.Number {
		t.Fatalf("unexpected checkout %+v", first)
	}
	if first.RemoteOrderID != "order_"+seeded.Number {
		t.Fatalf("receipt must be the order number, got remote id %q", first.RemoteOrderID)
	}

	second, err := f.paymentUC.Checkout(ctx, customer, 1)
	if err != nil {
		t.Fatalf("second checkout failed: %v", err)
	}
	if second.RemoteOrderID != first.RemoteOrderID {
		t.Fatalf("expected remote order reuse, got %q and %q", first.RemoteOrderID, second.RemoteOrderID)
	}
	if len(f.gateway.Created) != 1 {
		t.Fatalf("expected one remote order, got %d", len(f.gateway.Created))
	}
}

func TestCheckoutRejections(t *testing.T) {
	ctx := context.Background()

	t.Run("stranger", func(t *testing.T) {
		f := newFixture(t)
		f.seedOrder(1, model.OrderStatusPending, model.PaymentStatusPending)
		if _, err := f.paymentUC.Checkout(ctx, stranger, 1); err != domainErrors.ErrNotFound {
			t.Fatalf("expected not found, got %v", err)
		}
	})

	t.Run("already paid", func(t *testing.T) {
		f := newFixture(t)
		f.seedOrder(1, model.OrderStatusConfirmed, model.PaymentStatusPaid)
		if _, err := f.paymentUC.Checkout(ctx, customer, 1); err != domainErrors.ErrAlreadyPaid {
			t.Fatalf("expected ErrAlreadyPaid, got %v", err)
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		f := newFixture(t)
		f.seedOrder(1, model.OrderStatusCancelled, model.PaymentStatusPending)
		if _, err := f.paymentUC.Checkout(ctx, customer, 1); !errors.Is(err, domainErrors.ErrInvalidTransition) {
			t.Fatalf("expected invalid transition, got %v", err)
		}
	})

	t.Run("gateway failure", func(t *testing.T) {
		f := newFixture(t)
		f.seedOrder(1, model.OrderStatusPending, model.PaymentStatusPending)
		f.gateway.CreateErr = &domainErrors.GatewayError{Op: "create order", StatusCode: 503, Err: errors.New("unavailable")}
		if _, err := f.paymentUC.Checkout(ctx, customer, 1); !errors.Is(err, domainErrors.ErrGateway) {
			t.Fatalf("expected gateway error, got %v", err)
		}
		stored, _ := f.orders.Snapshot(1)
		if stored.RemoteOrderID != "" {
			t.Fatalf("remote order stored after failure: %q", stored.RemoteOrderID)
		}
	})
}

func checkoutFor(t *testing.T, f *fixture, id int64) *model.Checkout {
	t.Helper()
	co, err := f.paymentUC.Checkout(context.Background(), customer, id)
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	return co
}

func TestConfirmMarksOrderPaid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedOrder(1, model.OrderStatusPending, model.PaymentStatusPending)
	co := checkoutFor(t, f, 1)

	cb := model.PaymentCallback{
		PaymentID:     "pay_29QQoUBi66xm2f",
		RemoteOrderID: co.RemoteOrderID,
		Signature:     f.gateway.Verifier.Sign("pay_29QQoUBi66xm2f", co.RemoteOrderID),
	}
	order, err := f.paymentUC.Confirm(ctx, customer, 1, cb)
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if order.Status != model.OrderStatusConfirmed || order.PaymentStatus != model.PaymentStatusPaid || order.PaymentID != cb.PaymentID {
		t.Fatalf("unexpected order %+v", order)
	}

	// the processor may deliver the same callback twice
	if _, err := f.paymentUC.Confirm(ctx, customer, 1, cb); err != nil {
		t.Fatalf("replayed callback failed: %v", err)
	}
	if kinds := f.queue.Kinds(); len(kinds) != 1 || kinds[0] != model.NotificationOrderConfirmed {
		t.Fatalf("expected one confirmation email, got %v", kinds)
	}
}

func TestConfirmRejectsTamperedCallbacks(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name     string
		callback func(*testing.T, *fixture) model.PaymentCallback
	}{
		{
			name: "wrong signature",
			callback: func(t *testing.T, f *fixture) model.PaymentCallback {
				co := checkoutFor(t, f, 1)
				return model.PaymentCallback{PaymentID: "pay_1", RemoteOrderID: co.RemoteOrderID, Signature: f.gateway.Verifier.Sign("pay_2", co.RemoteOrderID)}
			},
		},
		{
			name: "signature from another secret",
			callback: func(t *testing.T, f *fixture) model.PaymentCallback {
				co := checkoutFor(t, f, 1)
				forged := gateway.NewVerifier("attacker").Sign("pay_1", co.RemoteOrderID)
				return model.PaymentCallback{PaymentID: "pay_1", RemoteOrderID: co.RemoteOrderID, Signature: forged}
			},
		},
		{
			name: "malformed signature",
			callback: func(t *testing.T, f *fixture) model.PaymentCallback {
				co := checkoutFor(t, f, 1)
				return model.PaymentCallback{PaymentID: "pay_1", RemoteOrderID: co.RemoteOrderID, Signature: "deadbeef"}
			},
		},
		{
			name: "remote order mismatch",
			callback: func(t *testing.T, f *fixture) model.PaymentCallback {
				checkoutFor(t, f, 1)
				return model.PaymentCallback{PaymentID: "pay_1", RemoteOrderID: "order_other", Signature: f.gateway.Verifier.Sign("pay_1", "order_other")}
			},
		},
		{
			name: "no checkout yet",
			callback: func(t *testing.T, f *fixture) model.PaymentCallback {
				return model.PaymentCallback{PaymentID: "pay_1", Signature: f.gateway.Verifier.Sign("pay_1", "")}
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.seedOrder(1, model.OrderStatusPending, model.PaymentStatusPending)
			cb := tc.callback(t, f)

			if _, err := f.paymentUC.Confirm(ctx, customer, 1, cb); err != domainErrors.ErrPaymentRejected {
				t.Fatalf("expected ErrPaymentRejected, got %v", err)
			}
			stored, _ := f.orders.Snapshot(1)
			if stored.Status != model.OrderStatusPending || stored.PaymentStatus != model.PaymentStatusPending || stored.PaymentID != "" {
				t.Fatalf("rejected callback changed order: %+v", stored)
			}
			if len(f.queue.Items()) != 0 {
				t.Fatal("rejected callback must not notify")
			}
			if got := testutil.ToFloat64(f.metrics.PaymentsRejected); got != 1 {
				t.Fatalf("expected rejected counter 1, got %v", got)
			}
		})
	}
}

func TestConfirmByStrangerIsNotFound(t *testing.T) {
	f := newFixture(t)
	f.seedOrder(1, model.OrderStatusPending, model.PaymentStatusPending)
	co := checkoutFor(t, f, 1)

	cb := model.PaymentCallback{PaymentID: "pay_1", RemoteOrderID: co.RemoteOrderID, Signature: f.gateway.Verifier.Sign("pay_1", co.RemoteOrderID)}
	if _, err := f.paymentUC.Confirm(context.Background(), stranger, 1, cb); err != domainErrors.ErrNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	stored, _ := f.orders.Snapshot(1)
	if stored.PaymentStatus != model.PaymentStatusPending {
		t.Fatalf("order changed: %s", stored.PaymentStatus)
	}
}

func TestConfirmSecondPaymentIsAlreadyPaid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedOrder(1, model.OrderStatusPending, model.PaymentStatusPending)
	co := checkoutFor(t, f, 1)

	sign := func(paymentID string) model.PaymentCallback {
		return model.PaymentCallback{PaymentID: paymentID, RemoteOrderID: co.RemoteOrderID, Signature: f.gateway.Verifier.Sign(paymentID, co.RemoteOrderID)}
	}
	if _, err := f.paymentUC.Confirm(ctx, customer, 1, sign("pay_A")); err != nil {
		t.Fatalf("first confirm failed: %v", err)
	}
	if _, err := f.paymentUC.Confirm(ctx, customer, 1, sign("pay_B")); err != domainErrors.ErrAlreadyPaid {
		t.Fatalf("expected ErrAlreadyPaid, got %v", err)
	}
	stored, _ := f.orders.Snapshot(1)
	if stored.PaymentID != "pay_A" {
		t.Fatalf("payment reference overwritten: %q", stored.PaymentID)
	}
}

func TestConfirmConcurrentCallbacksApplyOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedOrder(1, model.OrderStatusPending, model.PaymentStatusPending)
	co := checkoutFor(t, f, 1)
	cb := model.PaymentCallback{PaymentID: "pay_A", RemoteOrderID: co.RemoteOrderID, Signature: f.gateway.Verifier.Sign("pay_A", co.RemoteOrderID)}

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.paymentUC.Confirm(ctx, customer, 1, cb); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent confirm failed: %v", err)
	}

	if got := len(f.queue.Items()); got != 1 {
		t.Fatalf("expected exactly one confirmation, got %d", got)
	}
	if got := testutil.ToFloat64(f.metrics.PaymentsConfirmed); got != 1 {
		t.Fatalf("expected one confirmed payment, got %v", got)
	}
}

func TestPaymentFail(t *testing.T) {
	f := newFixture(t)
	f.seedOrder(1, model.OrderStatusPending, model.PaymentStatusPending)

	order, err := f.paymentUC.Fail(context.Background(), customer, 1)
	if err != nil || order.PaymentStatus != model.PaymentStatusFailed || order.Status != model.OrderStatusPending {
		t.Fatalf("unexpected result %+v, %v", order, err)
	}
}
