package checkout

import (
	"context"
	"strings"

	"github.com/stripe/stripe-go/v84"

	"github.com/eyira/storefront/internal/cart"
	"github.com/eyira/storefront/pkg/enums"
	pkgerrors "github.com/eyira/storefront/pkg/errors"
	"github.com/eyira/storefront/pkg/logger"
	"github.com/eyira/storefront/pkg/metrics"
)

// Request is the cart snapshot submitted when the buyer proceeds to checkout.
type Request struct {
	Items          []cart.LineItem `json:"items" validate:"required,min=1,dive"`
	DeliveryMethod string          `json:"deliveryMethod" validate:"required"`
}

// Result carries the hosted payment page the buyer is redirected to.
type Result struct {
	SessionID string
	URL       string
}

type sessionCreator interface {
	CreateCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

type Service interface {
	CreateSession(ctx context.Context, req Request) (*Result, error)
}

type ServiceParams struct {
	Builder  *Builder
	Provider sessionCreator
	Metrics  *metrics.Storefront
	Logger   *logger.Logger
}

type service struct {
	builder  *Builder
	provider sessionCreator
	metrics  *metrics.Storefront
	logg     *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Builder == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "checkout builder required")
	}
	if params.Provider == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payment provider required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &service{
		builder:  params.Builder,
		provider: params.Provider,
		metrics:  params.Metrics,
		logg:     params.Logger,
	}, nil
}

// CreateSession validates the cart, builds the session config and opens it with
// the provider. Nothing is sent to the provider for an invalid cart.
func (s *service) CreateSession(ctx context.Context, req Request) (*Result, error) {
	method, err := enums.ParseDeliveryMethod(req.DeliveryMethod)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "deliveryMethod must be ship or pickup")
	}
	ctx = s.logg.WithField(ctx, "delivery_method", method.String())

	if len(req.Items) == 0 {
		s.metrics.CheckoutSession(method.String(), "rejected")
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	snapshot, err := cart.FromItems(req.Items)
	if err != nil {
		s.metrics.CheckoutSession(method.String(), "rejected")
		return nil, err
	}

	cfg, err := s.builder.Build(snapshot.Items(), method)
	if err != nil {
		s.metrics.CheckoutSession(method.String(), "rejected")
		return nil, err
	}

	created, err := s.provider.CreateCheckoutSession(ctx, cfg.StripeParams())
	if err != nil {
		s.metrics.CheckoutSession(method.String(), "failed")
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "error creating checkout session")
	}
	if created == nil || strings.TrimSpace(created.URL) == "" {
		s.metrics.CheckoutSession(method.String(), "failed")
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "checkout session missing redirect url")
	}

	s.metrics.CheckoutSession(method.String(), "created")
	s.logg.Info(s.logg.WithSessionID(ctx, created.ID), "checkout.session_created")

	return &Result{SessionID: created.ID, URL: created.URL}, nil
}
