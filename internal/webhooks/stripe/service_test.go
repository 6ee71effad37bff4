package stripewebhook

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stripe/stripe-go/v84"

	"github.com/eyira/storefront/internal/checkout"
	"github.com/eyira/storefront/internal/fulfillment"
	pkgerrors "github.com/eyira/storefront/pkg/errors"
	"github.com/eyira/storefront/pkg/logger"
)

type recordingDispatcher struct {
	fulfilled []checkout.Session
	abandoned []checkout.Session
}

func (r *recordingDispatcher) FulfillOrder(_ context.Context, s checkout.Session) fulfillment.Outcome {
	r.fulfilled = append(r.fulfilled, s)
	return fulfillment.OutcomeSent
}

func (r *recordingDispatcher) SendAbandonedCartNotice(_ context.Context, s checkout.Session) fulfillment.Outcome {
	r.abandoned = append(r.abandoned, s)
	return fulfillment.OutcomeSent
}

func newTestService(t *testing.T, d *recordingDispatcher) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{Dispatcher: d, Logger: logger.Nop()})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func event(eventType stripe.EventType, object string) *stripe.Event {
	return &stripe.Event{
		ID:   "evt_test",
		Type: eventType,
		Data: &stripe.EventData{Raw: json.RawMessage(object)},
	}
}

func TestHandleEventCompletedFulfills(t *testing.T) {
	d := &recordingDispatcher{}
	svc := newTestService(t, d)

	err := svc.HandleEvent(context.Background(), event(stripe.EventTypeCheckoutSessionCompleted,
		`{"id":"cs_test_1","customer_details":{"email":"ada@example.com"},"metadata":{"delivery_type":"pickup"}}`))
	if err != nil {
		t.Fatalf("HandleEvent returned error: %v", err)
	}
	if len(d.fulfilled) != 1 || d.fulfilled[0].ID != "cs_test_1" {
		t.Fatalf("expected one fulfillment, got %+v", d.fulfilled)
	}
	if len(d.abandoned) != 0 {
		t.Fatal("completed event must not send an abandoned notice")
	}
}

func TestHandleEventExpiredRequiresEmail(t *testing.T) {
	d := &recordingDispatcher{}
	svc := newTestService(t, d)

	if err := svc.HandleEvent(context.Background(), event(stripe.EventTypeCheckoutSessionExpired, `{"id":"cs_test_2"}`)); err != nil {
		t.Fatalf("HandleEvent returned error: %v", err)
	}
	if len(d.abandoned) != 0 {
		t.Fatal("expired session without email must be skipped")
	}

	if err := svc.HandleEvent(context.Background(), event(stripe.EventTypeCheckoutSessionExpired,
		`{"id":"cs_test_3","customer_details":{"email":"late@example.com"}}`)); err != nil {
		t.Fatalf("HandleEvent returned error: %v", err)
	}
	if len(d.abandoned) != 1 || d.abandoned[0].CustomerEmail != "late@example.com" {
		t.Fatalf("expected one abandoned notice, got %+v", d.abandoned)
	}
}

func TestHandleEventIgnoresOtherTypes(t *testing.T) {
	d := &recordingDispatcher{}
	svc := newTestService(t, d)

	if err := svc.HandleEvent(context.Background(), event(stripe.EventTypePaymentIntentSucceeded, `{"id":"pi_1"}`)); err != nil {
		t.Fatalf("HandleEvent returned error: %v", err)
	}
	if len(d.fulfilled)+len(d.abandoned) != 0 {
		t.Fatal("unrelated events must not dispatch")
	}
}

func TestHandleEventRejectsUndecodableSession(t *testing.T) {
	svc := newTestService(t, &recordingDispatcher{})

	err := svc.HandleEvent(context.Background(), event(stripe.EventTypeCheckoutSessionCompleted, `"not an object"`))
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := svc.HandleEvent(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil event")
	}
}
