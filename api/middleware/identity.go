package middleware

import (
	"net/http"

	"github.com/angelmondragon/storefront-engine/pkg/logger"
)

const userIDHeader = "X-User-Id"

// Identity stamps the authenticated shopper id, forwarded by the edge
// gateway, onto the request context. Absence of the header means a guest
// session; handlers decide what that implies.
func Identity(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := r.Header.Get(userIDHeader)
			if userID == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := WithUserID(r.Context(), userID)
			if logg != nil {
				ctx = logg.WithUserID(ctx, userID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
