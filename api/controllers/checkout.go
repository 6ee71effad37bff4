package controllers

import (
	"net/http"

	"github.com/eyira/storefront/api/responses"
	"github.com/eyira/storefront/api/validators"
	checkoutsvc "github.com/eyira/storefront/internal/checkout"
	pkgerrors "github.com/eyira/storefront/pkg/errors"
	"github.com/eyira/storefront/pkg/logger"
	"github.com/eyira/storefront/pkg/types"
)

// Checkout opens a hosted payment session for the submitted cart and returns its URL.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload checkoutsvc.Request
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, checkoutFailure(err))
			return
		}

		result, err := svc.CreateSession(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, checkoutFailure(err))
			return
		}

		responses.WriteJSON(w, http.StatusOK, types.CheckoutResponse{URL: result.URL})
	}
}

// checkoutFailure reports every checkout error, a rejected cart included, as a
// 500. The cause is only logged.
func checkoutFailure(err error) error {
	if pkgerrors.IsCode(err, pkgerrors.CodeInternal) {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checkout request rejected")
}
