package sessions

import (
	"context"
	"errors"
	"strings"

	"github.com/stripe/stripe-go/v84"

	"github.com/eyira/storefront/internal/checkout"
	"github.com/eyira/storefront/pkg/logger"
	"github.com/eyira/storefront/pkg/metrics"
)

// DefaultCustomerName is shown when the session carries no usable name.
const DefaultCustomerName = "Valued Customer"

// Expand lists the session fields retrieved alongside the lookup.
var Expand = []string{"line_items", "customer_details"}

// Projection is the browser-safe view of a checkout session.
type Projection struct {
	CustomerName  string     `json:"customer_name"`
	DeliveryType  string     `json:"delivery_type"`
	PaymentStatus string     `json:"payment_status,omitempty"`
	AmountTotal   *int64     `json:"amount_total,omitempty"`
	Currency      string     `json:"currency,omitempty"`
	LineItems     []LineItem `json:"line_items,omitempty"`
}

type LineItem struct {
	Description string `json:"description"`
	Quantity    int64  `json:"quantity"`
	AmountTotal int64  `json:"amount_total"`
}

// DefaultProjection is returned whenever a session cannot be looked up.
func DefaultProjection() Projection {
	return Projection{
		CustomerName: DefaultCustomerName,
		DeliveryType: checkout.DefaultDeliveryMethod.String(),
	}
}

// Result is either Found with the session projection or Unavailable with the
// default projection. Both render the same way to the browser.
type Result struct {
	Found      bool
	Projection Projection
	// Reason explains an Unavailable result; it is logged, never returned.
	Reason string
}

func Found(p Projection) Result {
	return Result{Found: true, Projection: p}
}

func Unavailable(reason string) Result {
	return Result{Projection: DefaultProjection(), Reason: reason}
}

type sessionGetter interface {
	GetCheckoutSession(ctx context.Context, id string, expand ...string) (*stripe.CheckoutSession, error)
}

type Service interface {
	Lookup(ctx context.Context, id string) Result
}

type ServiceParams struct {
	Provider sessionGetter
	Metrics  *metrics.Storefront
	Logger   *logger.Logger
}

type service struct {
	provider sessionGetter
	metrics  *metrics.Storefront
	logg     *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Provider == nil {
		return nil, errors.New("payment provider required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger required")
	}
	return &service{provider: params.Provider, metrics: params.Metrics, logg: params.Logger}, nil
}

// Lookup retrieves and projects a session. It never fails: malformed ids and
// provider errors collapse to Unavailable.
func (s *service) Lookup(ctx context.Context, id string) Result {
	id = strings.TrimSpace(id)
	if !checkout.IsSessionID(id) {
		s.metrics.Lookup("invalid_id")
		return Unavailable("invalid session id")
	}
	ctx = s.logg.WithSessionID(ctx, id)

	cs, err := s.provider.GetCheckoutSession(ctx, id, Expand...)
	if err != nil {
		s.logg.Error(ctx, "sessions.lookup_failed", err)
		s.metrics.Lookup("unavailable")
		return Unavailable("provider retrieval failed")
	}
	if cs == nil {
		s.metrics.Lookup("unavailable")
		return Unavailable("provider returned no session")
	}

	s.metrics.Lookup("found")
	return Found(Project(checkout.SessionFromStripe(cs)))
}

// Project maps a session onto the browser-safe fields.
func Project(session checkout.Session) Projection {
	amount := session.AmountTotal
	p := Projection{
		CustomerName:  displayName(session),
		DeliveryType:  session.DeliveryMethod().String(),
		PaymentStatus: session.PaymentStatus,
		AmountTotal:   &amount,
		Currency:      session.Currency,
	}
	for _, li := range session.LineItems {
		p.LineItems = append(p.LineItems, LineItem{
			Description: li.Description,
			Quantity:    li.Quantity,
			AmountTotal: li.AmountTotal,
		})
	}
	return p
}

func displayName(session checkout.Session) string {
	for _, name := range []string{session.CustomerName, session.ShippingName} {
		if name = strings.TrimSpace(name); name != "" {
			return name
		}
	}
	return DefaultCustomerName
}
