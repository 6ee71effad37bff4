package middleware

import (
	"net/http"
	"strings"

	"github.com/eyira/storefront/api/responses"
)

// AllowMethods answers any method outside allowed with 405 and an Allow header.
func AllowMethods(allowed ...string) func(http.Handler) http.Handler {
	allow := strings.Join(allowed, ", ")
	set := make(map[string]struct{}, len(allowed))
	for _, m := range allowed {
		set[m] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := set[r.Method]; !ok {
				w.Header().Set("Allow", allow)
				responses.WriteText(w, http.StatusMethodNotAllowed, "Method Not Allowed")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
