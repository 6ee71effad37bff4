package controllers

import (
	"net/http"

	"github.com/eyira/storefront/api/responses"
	"github.com/eyira/storefront/internal/sessions"
	"github.com/eyira/storefront/pkg/logger"
)

// GetSession serves the confirmation page. It always answers 200; lookups
// that fail return the default projection.
func GetSession(svc sessions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteJSON(w, http.StatusOK, sessions.DefaultProjection())
			return
		}

		result := svc.Lookup(r.Context(), r.URL.Query().Get("id"))
		if !result.Found && logg != nil {
			logg.Info(logg.WithField(r.Context(), "reason", result.Reason), "sessions.lookup_unavailable")
		}
		responses.WriteJSON(w, http.StatusOK, result.Projection)
	}
}
