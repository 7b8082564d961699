package middleware

import (
	"context"
	"net/http"
	"regexp"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/logger"
)

// SessionHeader identifies the shopper's browsing session. Ids are issued by
// an external session provider and are opaque to the storefront.
const SessionHeader = "X-Session-ID"

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,128}$`)

// RequireSession rejects requests without a well-formed X-Session-ID header
// and stores the id in the request context.
func RequireSession() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(SessionHeader)
			if id == "" {
				httputil.WriteError(w, r, apperrors.InvalidInput("missing "+SessionHeader+" header"), nil)
				return
			}
			if !sessionIDPattern.MatchString(id) {
				httputil.WriteError(w, r, apperrors.InvalidInput("malformed "+SessionHeader+" header"), nil)
				return
			}

			ctx := logger.WithSessionID(r.Context(), id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionIDFromContext returns the session id stored by RequireSession.
func SessionIDFromContext(ctx context.Context) string {
	return logger.SessionIDFromContext(ctx)
}
