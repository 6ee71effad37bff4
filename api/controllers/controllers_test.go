package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v84"

	checkoutsvc "github.com/eyira/storefront/internal/checkout"
	"github.com/eyira/storefront/internal/sessions"
	"github.com/eyira/storefront/pkg/config"
	pkgerrors "github.com/eyira/storefront/pkg/errors"
	"github.com/eyira/storefront/pkg/logger"
	"github.com/eyira/storefront/pkg/types"
)

type fakeCheckoutService struct {
	req    checkoutsvc.Request
	result *checkoutsvc.Result
	err    error
}

func (f *fakeCheckoutService) CreateSession(_ context.Context, req checkoutsvc.Request) (*checkoutsvc.Result, error) {
	f.req = req
	return f.result, f.err
}

type fakeLookup struct {
	result sessions.Result
}

func (f fakeLookup) Lookup(context.Context, string) sessions.Result {
	return f.result
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func TestCheckoutReturnsURL(t *testing.T) {
	svc := &fakeCheckoutService{result: &checkoutsvc.Result{SessionID: "cs_test_1", URL: "https://checkout.stripe.com/c/pay/cs_test_1"}}
	body := `{"items":[{"id":"standard","name":"Standard","price":26,"size":"250g","quantity":2,"image":"/img/standard.png"}],"deliveryMethod":"ship"}`

	rec := httptest.NewRecorder()
	Checkout(svc, logger.Nop()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/checkout", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	var resp types.CheckoutResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.URL != "https://checkout.stripe.com/c/pay/cs_test_1" {
		t.Fatalf("unexpected url %q", resp.URL)
	}
	if len(svc.req.Items) != 1 || svc.req.Items[0].Quantity != 2 || svc.req.DeliveryMethod != "ship" {
		t.Fatalf("unexpected request forwarded %+v", svc.req)
	}
}

func TestCheckoutRejectsEmptyCart(t *testing.T) {
	svc := &fakeCheckoutService{}
	rec := httptest.NewRecorder()
	Checkout(svc, logger.Nop()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/checkout", strings.NewReader(`{"items":[],"deliveryMethod":"ship"}`)))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if svc.req.DeliveryMethod != "" {
		t.Fatal("service must not be called for an empty cart")
	}
}

type countingProvider struct{ calls int }

func (p *countingProvider) CreateCheckoutSession(context.Context, *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	p.calls++
	return &stripe.CheckoutSession{ID: "cs_test_1", URL: "https://checkout.stripe.com/c/pay/cs_test_1"}, nil
}

func TestCheckoutInvalidCartIs500BeforeProvider(t *testing.T) {
	provider := &countingProvider{}
	svc, err := checkoutsvc.NewService(checkoutsvc.ServiceParams{
		Builder: checkoutsvc.NewBuilder(config.StorefrontConfig{
			PublicDomain:          "https://eyira.shop",
			Brand:                 "Eyira",
			Currency:              "cad",
			FreeShippingThreshold: decimal.NewFromInt(75),
			StandardShippingCents: 1500,
			AllowedCountries:      []string{"CA", "US"},
		}),
		Provider: provider,
		Logger:   logger.Nop(),
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	bodies := map[string]string{
		"empty cart":     `{"items":[],"deliveryMethod":"ship"}`,
		"unknown method": `{"items":[{"id":"pilot","name":"Pilot","price":"15.00","quantity":1}],"deliveryMethod":"courier"}`,
		"zero quantity":  `{"items":[{"id":"pilot","name":"Pilot","price":"15.00","quantity":0}],"deliveryMethod":"ship"}`,
		"malformed json": `{"items":`,
	}
	for name, body := range bodies {
		rec := httptest.NewRecorder()
		Checkout(svc, logger.Nop()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/checkout", strings.NewReader(body)))

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("%s: expected 500, got %d (%s)", name, rec.Code, rec.Body.String())
		}
		var env types.ErrorEnvelope
		if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
			t.Fatalf("%s: decode: %v", name, err)
		}
		if env.Error.Code != string(pkgerrors.CodeInternal) || env.Error.Message == "" {
			t.Fatalf("%s: unexpected envelope %+v", name, env.Error)
		}
	}
	if provider.calls != 0 {
		t.Fatalf("provider called %d times for invalid carts", provider.calls)
	}
}

func TestCheckoutProviderFailureIs500WithoutLeak(t *testing.T) {
	svc := &fakeCheckoutService{err: pkgerrors.Wrap(pkgerrors.CodeInternal, errors.New("Invalid API Key provided: sk_live_abc"), "error creating checkout session")}
	body := `{"items":[{"id":"pilot","name":"Pilot","price":"15.00","quantity":1}],"deliveryMethod":"pickup"}`

	rec := httptest.NewRecorder()
	Checkout(svc, logger.Nop()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/checkout", strings.NewReader(body)))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "sk_live") {
		t.Fatalf("secret leaked: %s", rec.Body.String())
	}
	var env types.ErrorEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil || env.Error.Message == "" {
		t.Fatalf("expected error envelope, got %v", err)
	}
}

func TestGetSessionAlwaysOK(t *testing.T) {
	rec := httptest.NewRecorder()
	svc := fakeLookup{result: sessions.Unavailable("invalid session id")}
	GetSession(svc, logger.Nop()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/get-session?id=not-a-real-id", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"customer_name":"Valued Customer","delivery_type":"ship"}` {
		t.Fatalf("unexpected default payload %s", got)
	}
	if strings.Contains(rec.Body.String(), "invalid session id") {
		t.Fatal("internal reason must not reach the browser")
	}
}

func TestGetSessionFound(t *testing.T) {
	amount := int64(6700)
	svc := fakeLookup{result: sessions.Found(sessions.Projection{
		CustomerName:  "Ada",
		DeliveryType:  "pickup",
		PaymentStatus: "paid",
		AmountTotal:   &amount,
		Currency:      "cad",
	})}
	rec := httptest.NewRecorder()
	GetSession(svc, logger.Nop()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/get-session?id=cs_test_1", nil))

	var p sessions.Projection
	if err := json.NewDecoder(rec.Body).Decode(&p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.CustomerName != "Ada" || p.AmountTotal == nil || *p.AmountTotal != 6700 {
		t.Fatalf("unexpected projection %+v", p)
	}
}

func TestHealthReady(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "dev"}}

	rec := httptest.NewRecorder()
	HealthReady(cfg, logger.Nop(), map[string]Pinger{"redis": fakePinger{}, "db": nil}).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected ready, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	HealthReady(cfg, logger.Nop(), map[string]Pinger{"redis": fakePinger{err: errors.New("down")}}).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if got := rec.Header().Get("X-Eyira-Env"); got != "dev" {
		t.Fatalf("expected env header, got %q", got)
	}
}
