package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Storefront records checkout, webhook and fulfillment outcomes.
type Storefront struct {
	checkoutSessions *prometheus.CounterVec
	webhookEvents    *prometheus.CounterVec
	emails           *prometheus.CounterVec
	lookups          *prometheus.CounterVec
}

// NewStorefront registers the storefront metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewStorefront(reg prometheus.Registerer) *Storefront {
	if reg == nil {
		return &Storefront{}
	}
	checkoutSessions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_sessions_total",
		Help: "Checkout session creation attempts by delivery method and outcome.",
	}, []string{"delivery_method", "outcome"})
	webhookEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_events_total",
		Help: "Payment provider webhook deliveries by event type and outcome.",
	}, []string{"type", "outcome"})
	emails := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fulfillment_emails_total",
		Help: "Fulfillment emails by kind and outcome.",
	}, []string{"kind", "outcome"})
	lookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "session_lookups_total",
		Help: "Confirmation page session lookups by result.",
	}, []string{"result"})
	reg.MustRegister(checkoutSessions, webhookEvents, emails, lookups)
	return &Storefront{
		checkoutSessions: checkoutSessions,
		webhookEvents:    webhookEvents,
		emails:           emails,
		lookups:          lookups,
	}
}

func (s *Storefront) CheckoutSession(deliveryMethod, outcome string) {
	if s == nil || s.checkoutSessions == nil {
		return
	}
	s.checkoutSessions.WithLabelValues(normalizeLabel(deliveryMethod), normalizeLabel(outcome)).Inc()
}

func (s *Storefront) WebhookEvent(eventType, outcome string) {
	if s == nil || s.webhookEvents == nil {
		return
	}
	s.webhookEvents.WithLabelValues(normalizeLabel(eventType), normalizeLabel(outcome)).Inc()
}

func (s *Storefront) Email(kind, outcome string) {
	if s == nil || s.emails == nil {
		return
	}
	s.emails.WithLabelValues(normalizeLabel(kind), normalizeLabel(outcome)).Inc()
}

func (s *Storefront) Lookup(result string) {
	if s == nil || s.lookups == nil {
		return
	}
	s.lookups.WithLabelValues(normalizeLabel(result)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
