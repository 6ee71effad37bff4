package checkout

import (
	"testing"

	"github.com/stripe/stripe-go/v84"

	"github.com/eyira/storefront/pkg/enums"
)

func TestIsSessionID(t *testing.T) {
	cases := map[string]bool{
		"cs_test_a1B2c3":       true,
		"cs_live_XYZ":          true,
		"":                     false,
		"pi_123":               false,
		"cs_":                  false,
		"cs_test_<script>":     false,
		"cs_test_123/../admin": false,
	}
	for id, want := range cases {
		if got := IsSessionID(id); got != want {
			t.Fatalf("IsSessionID(%q) = %v, want %v", id, got, want)
		}
	}
}

func TestDecodeSessionFromWebhookObject(t *testing.T) {
	raw := []byte(`{
		"id": "cs_test_123",
		"object": "checkout.session",
		"payment_status": "paid",
		"amount_total": 6700,
		"currency": "cad",
		"customer_details": {"email": "ada@example.com", "name": "Ada Lovelace"},
		"collected_information": {"shipping_details": {"name": "Ada L."}},
		"metadata": {"delivery_method": "pickup"}
	}`)

	s, err := DecodeSession(raw)
	if err != nil {
		t.Fatalf("DecodeSession returned error: %v", err)
	}
	if s.ID != "cs_test_123" {
		t.Fatalf("unexpected id %q", s.ID)
	}
	if s.CustomerEmail != "ada@example.com" || s.CustomerName != "Ada Lovelace" {
		t.Fatalf("unexpected customer %q %q", s.CustomerEmail, s.CustomerName)
	}
	if s.ShippingName != "Ada L." {
		t.Fatalf("unexpected shipping name %q", s.ShippingName)
	}
	if s.PaymentStatus != "paid" || s.AmountTotal != 6700 || s.Currency != "cad" {
		t.Fatalf("unexpected totals %+v", s)
	}
	if s.DeliveryMethod() != enums.DeliveryMethodPickup {
		t.Fatalf("expected legacy metadata key to resolve pickup, got %q", s.DeliveryMethod())
	}
}

func TestDecodeSessionRejectsGarbage(t *testing.T) {
	if _, err := DecodeSession([]byte(`{not json`)); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestSessionFromStripeLineItems(t *testing.T) {
	cs := &stripe.CheckoutSession{
		ID:            "cs_test_9",
		CustomerEmail: "fallback@example.com",
		LineItems: &stripe.LineItemList{
			Data: []*stripe.LineItem{
				{Description: "Eyira - Standard", Quantity: 2, AmountTotal: 5200},
				nil,
			},
		},
	}

	s := SessionFromStripe(cs)
	if s.CustomerEmail != "fallback@example.com" {
		t.Fatalf("expected top-level email fallback, got %q", s.CustomerEmail)
	}
	if len(s.LineItems) != 1 || s.LineItems[0].AmountTotal != 5200 {
		t.Fatalf("unexpected line items %+v", s.LineItems)
	}
	if s.DeliveryMethod() != enums.DeliveryMethodShip {
		t.Fatalf("missing metadata should default to ship")
	}
	if (SessionFromStripe(nil)).ID != "" {
		t.Fatal("nil session should project to zero value")
	}
}
