package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"smartledger/internal/log"
	"smartledger/internal/middleware/trace"
	"smartledger/internal/services"
)

// Options tunes per-server behavior.
type Options struct {
	RateLimitPerMinute int
}

type Server struct {
	http.Server

	ledger      *services.LedgerService
	rateLimiter *rateLimiter
	traceMW     *trace.Middleware
	logger      *log.Logger
	started     time.Time

	shutdownOnce sync.Once
}

// NewServer wires the JSON API around the ledger service. The caller owns
// the service lifetime; Shutdown only stops HTTP-side resources.
func NewServer(addr string, ledger *services.LedgerService, logger *log.Logger, opts Options) *Server {
	if opts.RateLimitPerMinute <= 0 {
		opts.RateLimitPerMinute = 60
	}

	s := &Server{
		ledger:      ledger,
		rateLimiter: newRateLimiter(opts.RateLimitPerMinute),
		traceMW:     trace.NewMiddleware(clientIP),
		logger:      logger.WithComponent(log.ComponentHTTP),
		started:     time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/api/categories", s.handleCategories)
	mux.HandleFunc("/api/entries", s.handleEntries)
	mux.HandleFunc("/api/entries/", s.handleEntry)
	mux.HandleFunc("/api/charts/summary", s.handleChartSummary)
	mux.HandleFunc("/api/charts/breakdown", s.handleChartBreakdown)
	mux.HandleFunc("/api/charts/trend", s.handleChartTrend)
	mux.HandleFunc("/api/backup", s.handleBackup)

	s.Addr = addr
	s.Handler = s.traceMW.Middleware(s.withRateLimit(mux))

	return s
}

// Shutdown stops background HTTP resources before draining connections.
func (s *Server) Shutdown(ctx context.Context) error {
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
	})
	return s.Server.Shutdown(ctx)
}

func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !s.rateLimiter.allow(ip) {
			s.logger.WarnContext(r.Context(), "Rate limit exceeded",
				log.FieldClientIP, ip,
				log.FieldPath, r.URL.Path)
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}
