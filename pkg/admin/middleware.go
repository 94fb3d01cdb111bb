package admin

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/getmockd/mb/pkg/httputil"
)

const requestIDHeader = "X-Request-ID"

// statusRecorder captures the response status for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withMiddleware wraps handler with request IDs, logging and access control.
func (a *API) withMiddleware(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(requestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, reqID)

		if !a.access.allowed(r.RemoteAddr) {
			a.log.Warn("blocked admin request", "remote", r.RemoteAddr, "requestId", reqID)
			httputil.WriteForbidden(w, "client address is not allowed")
			return
		}

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		handler.ServeHTTP(rec, r)

		a.log.Debug("admin request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
			"requestId", reqID,
		)
	})
}
