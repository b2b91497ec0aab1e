package web

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"classroll/internal/adapters/http/middleware"
	"classroll/internal/adapters/metrics"
	"classroll/internal/application/app"
)

// Options configures NewMux.
type Options struct {
	// CSRFKey is the 32-byte gorilla/csrf secret.
	CSRFKey []byte
	// Secure marks the CSRF cookie Secure (production behind TLS).
	Secure bool
	// TrustedOrigins are hosts allowed to submit forms cross-origin.
	TrustedOrigins []string
	// RateLimitPerSecond caps requests per client address. Zero uses 10.
	RateLimitPerSecond int
	// SlowRequest is the latency above which requests log at WARN.
	SlowRequest time.Duration
	// Health reports backend reachability for /healthz. Nil means always healthy.
	Health func(ctx context.Context) error
	// Now is the clock used for check-ins and "today". Nil means time.Now.
	Now func() time.Time
}

type server struct {
	app    *app.App
	health func(ctx context.Context) error
	now    func() time.Time
}

// NewMux wires HTTP handlers for the app.
func NewMux(a *app.App, opts Options) http.Handler {
	s := &server{app: a, health: opts.Health, now: opts.Now}
	if s.now == nil {
		s.now = time.Now
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	rate := opts.RateLimitPerSecond
	if rate <= 0 {
		rate = 10
	}
	limiter := middleware.NewRateLimiter(rate, time.Second)

	// Apply middleware: Timing -> RateLimit -> CSRF -> SecurityHeaders -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(opts.CSRFKey, opts.Secure, opts.TrustedOrigins),
		middleware.RateLimit(limiter),
		middleware.Timing(opts.SlowRequest),
	)
}

func (s *server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("POST /api/logout", s.handleLogout)
	mux.HandleFunc("GET /api/session", s.handleSession)

	mux.HandleFunc("GET /api/attendance", s.handleAttendanceList)
	mux.HandleFunc("GET /api/attendance/export", s.handleAttendanceExport)
	mux.HandleFunc("PUT /api/attendance/{id}", s.handleAttendanceEdit)
	mux.HandleFunc("POST /api/checkin", s.handleCheckIn)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /api/overview", s.handleOverview)

	mux.HandleFunc("GET /api/users", s.handleUserList)
	mux.HandleFunc("POST /api/users", s.handleUserCreate)
	mux.HandleFunc("PUT /api/users/{username}", s.handleUserUpdate)
	mux.HandleFunc("DELETE /api/users/{username}", s.handleUserDelete)
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.health(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
