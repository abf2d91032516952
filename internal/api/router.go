// Package api exposes imports and statistics over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"trade-journal-lab/internal/config"
	"trade-journal-lab/internal/domain"
	"trade-journal-lab/internal/journal"
	"trade-journal-lab/internal/observability"
)

// DefaultMaxUploadBytes caps the size of an uploaded CSV.
const DefaultMaxUploadBytes = 10 << 20

// Options for creating the router.
type Options struct {
	Importer *journal.Importer
	Analyzer *journal.Analyzer

	// Profile supplies the column mapping, import defaults and time buckets.
	Profile *config.Profile
	// Defaults fill values the profile leaves unset.
	Defaults domain.ImportDefaults

	Metrics        *observability.Metrics // optional
	Gatherer       prometheus.Gatherer    // serves /metrics; nil disables the endpoint
	Logger         zerolog.Logger
	MaxUploadBytes int64
}

// handler holds the dependencies shared by all routes.
type handler struct {
	importer  *journal.Importer
	analyzer  *journal.Analyzer
	profile   *config.Profile
	defaults  domain.ImportDefaults
	maxUpload int64
	log       zerolog.Logger
}

// NewRouter builds the HTTP routes.
func NewRouter(opts Options) http.Handler {
	if opts.Profile == nil {
		opts.Profile = &config.Profile{}
	}
	h := &handler{
		importer:  opts.Importer,
		analyzer:  opts.Analyzer,
		profile:   opts.Profile,
		defaults:  opts.Profile.ImportDefaults(opts.Defaults),
		maxUpload: opts.MaxUploadBytes,
		log:       opts.Logger.With().Str("component", "api").Logger(),
	}
	if h.maxUpload <= 0 {
		h.maxUpload = DefaultMaxUploadBytes
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestMetrics(opts.Metrics, h.log))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	if opts.Gatherer != nil {
		r.Handle("/metrics", observability.Handler(opts.Gatherer))
	}

	r.Route("/accounts/{accountID}", func(r chi.Router) {
		r.Post("/imports", h.handleImport)
		r.Get("/stats", h.handleStats)
		r.Get("/snapshots/{dimension}", h.handleLatestSnapshot)
	})

	return r
}

// requestMetrics records the duration of every request under its route pattern
// and logs it at debug level.
func requestMetrics(m *observability.Metrics, log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			elapsed := time.Since(start)

			if m != nil {
				m.RecordHTTPRequest(route, r.Method, status, elapsed.Seconds())
			}
			log.Debug().
				Str("method", r.Method).
				Str("route", route).
				Int("status", status).
				Dur("elapsed", elapsed).
				Msg("request served")
		})
	}
}
