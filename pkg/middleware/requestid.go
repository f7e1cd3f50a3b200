package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/atriumhq/atrium/pkg/contextkeys"
)

// HeaderRequestID carries the request ID back to the client and accepts a
// caller-supplied ID for cross-service correlation.
const HeaderRequestID = "X-Request-ID"

// RequestID assigns every request an ID, reusing the inbound header when
// present. The ID travels in the context for log correlation.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		w.Header().Set(HeaderRequestID, requestID)
		ctx := contextkeys.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
