package server

import (
	"log/slog"
	"net/http"

	"github.com/PhilHem/netlog/backend/handlers"
	"github.com/PhilHem/netlog/backend/metrics"
	"github.com/PhilHem/netlog/backend/middleware"

	"github.com/klauspost/compress/gzhttp"
)

type Deps struct {
	Logs            *handlers.LogsHandler
	Diagnostics     *handlers.DiagnosticsHandler
	DB              handlers.Pinger
	Limiter         *middleware.RateLimiter
	IngestTokenHash string
	// AdminTokenHash guards /admin/api. Without it the admin API is not served.
	AdminTokenHash  string
}

// NewRouter builds the service's HTTP handler.
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", d.Logs.Root)
	mux.Handle("GET /health", handlers.Health(d.DB))
	mux.Handle("GET /metrics", metrics.Handler())

	// Ingestion (rate limited, optional bearer token)
	ingest := func(h http.HandlerFunc) http.Handler {
		return d.Limiter.Limit(middleware.RequireToken(d.IngestTokenHash, h))
	}
	mux.Handle("POST /log", ingest(d.Logs.CreateLog))
	mux.Handle("POST /log-form", ingest(d.Logs.CreateLogForm))

	// Queries can return whole files; compress them
	mux.Handle("GET /logs", gzhttp.GzipHandler(http.HandlerFunc(d.Logs.GetLogs)))
	mux.Handle("GET /logs/{source_ip}", gzhttp.GzipHandler(http.HandlerFunc(d.Logs.GetLogsByIP)))

	// Admin API (requires the admin bearer token)
	switch {
	case d.Diagnostics == nil:
	case d.AdminTokenHash == "":
		slog.Warn("no admin token configured, admin API disabled", "source", "server")
	default:
		admin := func(h http.Handler) http.Handler {
			return middleware.RequireToken(d.AdminTokenHash, h)
		}
		mux.Handle("GET /admin/api/diagnostics", admin(gzhttp.GzipHandler(http.HandlerFunc(d.Diagnostics.GetDiagnostics))))
		mux.Handle("GET /admin/api/diagnostics/sources", admin(http.HandlerFunc(d.Diagnostics.GetDiagnosticSources)))
	}

	return middleware.RequestID(middleware.SecurityHeaders(mux))
}
