package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/lcalzada-xor/netpath/internal/adapters/web/handlers"
	"github.com/lcalzada-xor/netpath/internal/adapters/web/middleware"
	"github.com/lcalzada-xor/netpath/internal/adapters/web/websocket"
	"github.com/lcalzada-xor/netpath/internal/core/ports"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Options configures the HTTP server.
type Options struct {
	Addr           string
	APIKeyHash     string // bcrypt; empty disables API key checks
	AllowedOrigins []string

	// AnalyzeLimit requests per AnalyzeWindow per client on POST /api/analyze.
	AnalyzeLimit  int
	AnalyzeWindow time.Duration
}

// Server handles HTTP and WebSocket connections.
type Server struct {
	Addr    string
	Service ports.PathService

	WSManager       *websocket.WSManager
	PathHandler     *handlers.PathHandler
	AnalysisHandler *handlers.AnalysisHandler
	ReportHandler   *handlers.ReportHandler

	apiKeyHash     string
	analyzeLimiter *middleware.RateLimiter
	logger         *slog.Logger
	srv            *http.Server
}

// NewServer creates a new web server.
func NewServer(opts Options, service ports.PathService, exporter handlers.AnalysisExporter, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.AnalyzeLimit <= 0 {
		opts.AnalyzeLimit = 30
	}
	if opts.AnalyzeWindow <= 0 {
		opts.AnalyzeWindow = time.Minute
	}

	return &Server{
		Addr:    opts.Addr,
		Service: service,

		WSManager:       websocket.NewWSManager(opts.AllowedOrigins, logger),
		PathHandler:     handlers.NewPathHandler(service),
		AnalysisHandler: handlers.NewAnalysisHandler(service),
		ReportHandler:   handlers.NewReportHandler(service, exporter),

		apiKeyHash:     opts.APIKeyHash,
		analyzeLimiter: middleware.NewRateLimiter(opts.AnalyzeLimit, opts.AnalyzeWindow),
		logger:         logger.With("component", "http"),
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.WSManager.Start(ctx)
	go s.analyzeLimiter.Run(ctx)

	s.srv = &http.Server{
		Addr:              s.Addr,
		Handler:           otelhttp.NewHandler(SetupRoutes(s), "netpath-server"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info("Web server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Web server shutdown error", "error", err)
		}
	}()

	s.logger.Info("Web server listening", "addr", s.Addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
