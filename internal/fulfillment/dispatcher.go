package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/eyira/storefront/internal/checkout"
	"github.com/eyira/storefront/pkg/config"
	"github.com/eyira/storefront/pkg/email"
	"github.com/eyira/storefront/pkg/enums"
	"github.com/eyira/storefront/pkg/logger"
	"github.com/eyira/storefront/pkg/metrics"
)

const (
	emailKindConfirmation = "order_confirmation"
	emailKindAbandoned    = "abandoned_cart"
)

// Outcome describes what a dispatch call did.
type Outcome string

const (
	OutcomeSent      Outcome = "sent"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeFailed    Outcome = "failed"
)

// Mailer delivers a single transactional email.
type Mailer interface {
	Send(ctx context.Context, msg email.Message) error
}

type DispatcherParams struct {
	Store      ProcessedSessionStore
	Mailer     Mailer
	Storefront config.StorefrontConfig
	Metrics    *metrics.Storefront
	Logger     *logger.Logger
}

// Dispatcher sends post-payment emails. Order confirmations go out at most
// once per session id as far as the ProcessedSessionStore can tell.
type Dispatcher struct {
	store          ProcessedSessionStore
	mailer         Mailer
	from           string
	brand          string
	pickupLocation string
	storeURL       string
	metrics        *metrics.Storefront
	logg           *logger.Logger
	inflight       singleflight.Group
}

func NewDispatcher(params DispatcherParams) (*Dispatcher, error) {
	if params.Store == nil {
		return nil, errors.New("processed session store is required")
	}
	if params.Mailer == nil {
		return nil, errors.New("mailer is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	return &Dispatcher{
		store:          params.Store,
		mailer:         params.Mailer,
		from:           params.Storefront.EmailFrom,
		brand:          params.Storefront.Brand,
		pickupLocation: params.Storefront.PickupLocation,
		storeURL:       strings.TrimRight(params.Storefront.PublicDomain, "/") + "/",
		metrics:        params.Metrics,
		logg:           params.Logger,
	}, nil
}

// FulfillOrder sends the order confirmation for a completed session unless it
// was already sent. Failures are logged and reported through the Outcome only;
// the session is marked processed after a successful send and never before.
func (d *Dispatcher) FulfillOrder(ctx context.Context, session checkout.Session) Outcome {
	ctx = d.logg.WithSessionID(ctx, session.ID)
	if session.ID == "" {
		d.logg.Warn(ctx, "fulfillment.missing_session_id")
		return OutcomeSkipped
	}

	// Concurrent deliveries of the same session share one attempt. The shared
	// send must outlive the request that started it.
	leader := false
	v, _, _ := d.inflight.Do(session.ID, func() (any, error) {
		leader = true
		return d.fulfill(context.WithoutCancel(ctx), session), nil
	})
	outcome := v.(Outcome)
	if !leader && outcome == OutcomeSent {
		d.logg.Info(ctx, "fulfillment.already_processed")
		d.metrics.Email(emailKindConfirmation, string(OutcomeDuplicate))
		return OutcomeDuplicate
	}
	return outcome
}

func (d *Dispatcher) fulfill(ctx context.Context, session checkout.Session) Outcome {
	processed, err := d.store.HasProcessed(ctx, session.ID)
	if err != nil {
		// Attempt the send anyway; a duplicate email beats a lost confirmation.
		d.logg.Error(ctx, "fulfillment.processed_lookup_failed", err)
	}
	if processed {
		d.logg.Info(ctx, "fulfillment.already_processed")
		d.metrics.Email(emailKindConfirmation, string(OutcomeDuplicate))
		return OutcomeDuplicate
	}

	if strings.TrimSpace(session.CustomerEmail) == "" {
		d.logg.Warn(ctx, "fulfillment.missing_customer_email")
		d.metrics.Email(emailKindConfirmation, string(OutcomeSkipped))
		return OutcomeSkipped
	}

	method := session.DeliveryMethod()
	ctx = d.logg.WithField(ctx, "delivery_method", method.String())

	msg, err := d.confirmationMessage(session, method)
	if err != nil {
		d.logg.Error(ctx, "fulfillment.render_failed", err)
		d.metrics.Email(emailKindConfirmation, string(OutcomeFailed))
		return OutcomeFailed
	}

	if err := d.mailer.Send(ctx, msg); err != nil {
		d.logg.Error(ctx, "fulfillment.send_failed", err)
		d.metrics.Email(emailKindConfirmation, string(OutcomeFailed))
		return OutcomeFailed
	}

	if err := d.store.MarkProcessed(ctx, session.ID); err != nil {
		d.logg.Error(ctx, "fulfillment.mark_processed_failed", err)
	}
	d.metrics.Email(emailKindConfirmation, string(OutcomeSent))
	d.logg.Info(ctx, "fulfillment.confirmation_sent")
	return OutcomeSent
}

func (d *Dispatcher) confirmationMessage(session checkout.Session, method enums.DeliveryMethod) (email.Message, error) {
	html, err := renderConfirmation(confirmationData{
		FirstName:      FirstName(session.CustomerName),
		Brand:          d.brand,
		Pickup:         method == enums.DeliveryMethodPickup,
		PickupLocation: d.pickupLocation,
		SessionID:      session.ID,
	})
	if err != nil {
		return email.Message{}, err
	}
	return email.Message{
		From:    d.from,
		To:      session.CustomerEmail,
		Subject: confirmationSubject(d.brand, method),
		HTML:    html,
	}, nil
}

// SendAbandonedCartNotice emails a reminder for an expired session. It has no
// duplicate guard and does nothing when the session carries no email address.
func (d *Dispatcher) SendAbandonedCartNotice(ctx context.Context, session checkout.Session) Outcome {
	ctx = d.logg.WithSessionID(ctx, session.ID)
	if strings.TrimSpace(session.CustomerEmail) == "" {
		d.metrics.Email(emailKindAbandoned, string(OutcomeSkipped))
		return OutcomeSkipped
	}

	html, err := renderAbandoned(abandonedData{Brand: d.brand, StoreURL: d.storeURL})
	if err != nil {
		d.logg.Error(ctx, "fulfillment.render_failed", err)
		d.metrics.Email(emailKindAbandoned, string(OutcomeFailed))
		return OutcomeFailed
	}

	msg := email.Message{
		From:    d.from,
		To:      session.CustomerEmail,
		Subject: fmt.Sprintf(subjectAbandoned, d.brand),
		HTML:    html,
	}
	if err := d.mailer.Send(ctx, msg); err != nil {
		d.logg.Error(ctx, "fulfillment.abandoned_send_failed", err)
		d.metrics.Email(emailKindAbandoned, string(OutcomeFailed))
		return OutcomeFailed
	}
	d.metrics.Email(emailKindAbandoned, string(OutcomeSent))
	d.logg.Info(ctx, "fulfillment.abandoned_notice_sent")
	return OutcomeSent
}
