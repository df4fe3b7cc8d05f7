// Package http serves the records gateway as a JSON API.
package http

import (
	"context"
	"net/http"
	"time"

	"agency/internal/auth"
	applog "agency/internal/log"
	"agency/internal/middleware/ratelimit"
	"agency/internal/middleware/security"
	"agency/internal/middleware/trace"
	"agency/internal/services"
)

type Options struct {
	Logger             *applog.Logger
	RateLimitPerMinute int
	// Ready reports whether the document store is reachable.
	Ready func(ctx context.Context) error
}

type Server struct {
	http.Server
	gateway  *services.Gateway
	verifier *auth.TokenVerifier
	logger   *applog.Logger

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware
	ready    func(ctx context.Context) error

	started        time.Time
	recordsCreated int64
}

// NewServer wires the API routes. A nil verifier makes every request anonymous.
func NewServer(addr string, gateway *services.Gateway, verifier *auth.TokenVerifier, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.Default(applog.ComponentHTTP)
	}
	ready := opts.Ready
	if ready == nil {
		ready = func(context.Context) error { return nil }
	}

	s := &Server{
		gateway:  gateway,
		verifier: verifier,
		logger:   logger.WithComponent(applog.ComponentHTTP),
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		detector: security.NewDetector(),
		ready:    ready,
		started:  time.Now(),
	}
	s.tracer = trace.NewMiddleware(s.logger, s.detector.ExtractClientIP)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.middleware(s.routes()),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	api := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, s.withSession(h))
	}

	api("POST /api/clients", createHandler(s, s.gateway.CreateClient))
	api("GET /api/clients", listHandler(s, s.gateway.ListClients))
	api("POST /api/revenues", createHandler(s, s.gateway.CreateRevenue))
	api("GET /api/revenues", listHandler(s, s.gateway.ListRevenues))
	api("POST /api/expenses", createHandler(s, s.gateway.CreateExpense))
	api("GET /api/expenses", listHandler(s, s.gateway.ListExpenses))
	api("POST /api/credentials", createHandler(s, s.gateway.CreateCredential))
	api("GET /api/credentials", listHandler(s, s.gateway.ListCredentials))
	api("POST /api/projects", createHandler(s, s.gateway.CreateProject))
	api("GET /api/projects", listHandler(s, s.gateway.ListProjects))
	api("POST /api/budgets", createHandler(s, s.gateway.CreateBudget))
	api("GET /api/budgets", listHandler(s, s.gateway.ListBudgets))
	api("POST /api/receipts", createHandler(s, s.gateway.CreateReceipt))
	api("GET /api/receipts", listHandler(s, s.gateway.ListReceipts))

	api("POST /api/projects/{id}/activities", s.handleCreateActivity)
	api("GET /api/projects/{id}/activities", s.handleListActivities)

	api("PATCH /api/projects/{id}/status", s.handleProjectStatus)
	api("PATCH /api/activities/{id}/completed", s.handleActivityCompleted)
	api("PATCH /api/budgets/{id}/status", s.handleBudgetStatus)
	api("PATCH /api/budgets/{id}", s.handleBudgetPatch)
	api("PATCH /api/receipts/{id}/status", s.handleReceiptStatus)
	api("PATCH /api/receipts/{id}", s.handleReceiptPatch)

	api("GET /api/dashboard/recent", s.handleRecentActivity)
	api("GET /api/dashboard/overview", s.handleMonthOverview)

	return mux
}

// middleware applies, outermost first: security headers, tracing, request
// inspection and rate limiting.
func (s *Server) middleware(next http.Handler) http.Handler {
	h := s.limiter.Middleware(s.detector.ExtractClientIP, s.onRateLimited)(next)
	h = s.detector.Middleware(s.logger)(h)
	h = s.tracer.Middleware(h)
	return security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldComponent, applog.ComponentRateLimit,
		applog.FieldClientIP, s.detector.ExtractClientIP(r),
		applog.FieldPath, r.URL.Path)
	NewJSONResponse().
		Status(http.StatusTooManyRequests).
		Error("rate limit exceeded", trace.GetRequestID(r.Context())).
		Write(w)
}

// Shutdown stops the rate limiter and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	return s.Server.Shutdown(ctx)
}
