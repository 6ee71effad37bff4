package stripewebhook

import (
	"context"
	"strings"

	"github.com/stripe/stripe-go/v84"

	"github.com/eyira/storefront/internal/checkout"
	"github.com/eyira/storefront/internal/fulfillment"
	pkgerrors "github.com/eyira/storefront/pkg/errors"
	"github.com/eyira/storefront/pkg/logger"
	"github.com/eyira/storefront/pkg/metrics"
)

type dispatcher interface {
	FulfillOrder(ctx context.Context, session checkout.Session) fulfillment.Outcome
	SendAbandonedCartNotice(ctx context.Context, session checkout.Session) fulfillment.Outcome
}

type ServiceParams struct {
	Dispatcher dispatcher
	Metrics    *metrics.Storefront
	Logger     *logger.Logger
}

type Service struct {
	dispatcher dispatcher
	metrics    *metrics.Storefront
	logg       *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Dispatcher == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "fulfillment dispatcher required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &Service{
		dispatcher: params.Dispatcher,
		metrics:    params.Metrics,
		logg:       params.Logger,
	}, nil
}

// HandleEvent routes a verified event. Email failures are absorbed by the
// dispatcher; only undecodable payloads come back as errors.
func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}
	eventType := string(event.Type)
	ctx = s.logg.WithFields(ctx, map[string]any{"event_id": event.ID, "event_type": eventType})

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		session, err := checkout.DecodeSession(event.Data.Raw)
		if err != nil {
			s.metrics.WebhookEvent(eventType, "decode_failed")
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode checkout session")
		}
		outcome := s.dispatcher.FulfillOrder(ctx, session)
		s.metrics.WebhookEvent(eventType, string(outcome))
		return nil
	case stripe.EventTypeCheckoutSessionExpired:
		session, err := checkout.DecodeSession(event.Data.Raw)
		if err != nil {
			s.metrics.WebhookEvent(eventType, "decode_failed")
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode checkout session")
		}
		if strings.TrimSpace(session.CustomerEmail) == "" {
			s.logg.Info(s.logg.WithSessionID(ctx, session.ID), "webhook.expired_without_email")
			s.metrics.WebhookEvent(eventType, string(fulfillment.OutcomeSkipped))
			return nil
		}
		outcome := s.dispatcher.SendAbandonedCartNotice(ctx, session)
		s.metrics.WebhookEvent(eventType, string(outcome))
		return nil
	default:
		s.logg.Info(ctx, "webhook.event_ignored")
		s.metrics.WebhookEvent(eventType, "ignored")
		return nil
	}
}
