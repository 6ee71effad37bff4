package webhooks

import (
	"context"
	"io"
	"net/http"

	"github.com/stripe/stripe-go/v84"

	"github.com/eyira/storefront/api/responses"
	pkgerrors "github.com/eyira/storefront/pkg/errors"
	"github.com/eyira/storefront/pkg/logger"
	stripeclient "github.com/eyira/storefront/pkg/stripe"
	"github.com/eyira/storefront/pkg/types"
)

// maxPayloadBytes bounds webhook bodies; provider events are far smaller.
const maxPayloadBytes = 65536

type StripeWebhookService interface {
	HandleEvent(ctx context.Context, event *stripe.Event) error
}

type EventVerifier interface {
	ConstructEvent(payload []byte, sigHeader string) (stripe.Event, error)
}

// StripeWebhook verifies and dispatches checkout session events. Once the
// signature checks out the provider always gets a 200, whatever happens downstream.
func StripeWebhook(svc StripeWebhookService, verifier EventVerifier, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook service unavailable"))
			return
		}
		if verifier == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "stripe client unavailable"))
			return
		}

		payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPayloadBytes))
		if err != nil {
			rejectEvent(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeSignature, err, "read request body"))
			return
		}

		event, err := verifier.ConstructEvent(payload, r.Header.Get(stripeclient.SignatureHeader))
		if err != nil {
			rejectEvent(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeSignature, err, "verify signature"))
			return
		}

		if logg != nil {
			ctx = logg.WithEventID(ctx, event.ID)
		}
		if err := svc.HandleEvent(ctx, &event); err != nil && logg != nil {
			logg.Error(ctx, "webhook.handle_failed", err)
		}

		responses.WriteJSON(w, http.StatusOK, types.WebhookAck{Received: true})
	}
}

func rejectEvent(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err *pkgerrors.Error) {
	if logg != nil {
		logg.Warn(logg.WithFields(ctx, pkgerrors.Dump(err).Fields()), "webhook.rejected")
	}
	cause := err.Unwrap()
	responses.WriteText(w, pkgerrors.MetadataFor(err.Code()).HTTPStatus, "Webhook Error: "+cause.Error())
}
