package middleware

import (
	"net/http"

	"github.com/PhilHem/netlog/backend/logger"

	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// RequestID tags the request context and response with an id. A valid
// incoming X-Request-ID is kept.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(logger.WithRequestID(r.Context(), id)))
	})
}
