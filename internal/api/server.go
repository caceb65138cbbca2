// Package api provides the HTTP API server for signed report generation and
// verification.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/report-enclave/internal/logging"
	"github.com/report-enclave/internal/models"
	"github.com/report-enclave/internal/service"
	"github.com/report-enclave/internal/signing"
)

// ReportServiceInterface defines the interface for report service operations
type ReportServiceInterface interface {
	GenerateSignedReport(ctx context.Context, req *service.ReportRequest) (*service.ReportResponse, error)
	VerifyReport(report *models.SignedReport) signing.VerificationResult
	VerifyDetachedSignature(hash, signature, publicKey string) signing.VerificationResult
}

// Pinger reports backend reachability for the health endpoint
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP API server.
type Server struct {
	router        *mux.Router
	httpServer    *http.Server
	reportService ReportServiceInterface
	postgres      Pinger
	redis         Pinger
	logger        *logging.Logger
	config        *ServerConfig
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	FreeTierRPS     int
	BasicTierRPS    int
	PremiumTierRPS  int
}

// NewServer creates a new API server instance. The postgres and redis
// pingers may be nil; the health endpoint then skips them.
func NewServer(
	config *ServerConfig,
	reportService ReportServiceInterface,
	postgres Pinger,
	redis Pinger,
	logger *logging.Logger,
) *Server {
	s := &Server{
		router:        mux.NewRouter(),
		reportService: reportService,
		postgres:      postgres,
		redis:         redis,
		logger:        logger,
		config:        config,
	}

	s.setupRouter()

	return s
}

// setupRouter configures the router with middleware and routes
func (s *Server) setupRouter() {
	rateLimiter := NewRateLimiter(s.config.FreeTierRPS, s.config.BasicTierRPS, s.config.PremiumTierRPS)

	// Middleware order matters: logging first so every request gets an ID.
	s.router.Use(LoggingMiddleware(s.logger))
	s.router.Use(RecoveryMiddleware)
	s.router.Use(CORSMiddleware)
	s.router.Use(RateLimitMiddleware(rateLimiter))
	s.router.Use(CompressionMiddleware)

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%s", s.config.Host, s.config.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/reports", s.handleGenerateReport).Methods("POST")
	api.HandleFunc("/reports/verify", s.handleVerifyReport).Methods("POST")
	api.HandleFunc("/signatures/verify", s.handleVerifySignature).Methods("POST")
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := map[string]string{
		"status":  "healthy",
		"service": "report-enclave",
	}
	healthy := true

	if s.postgres != nil {
		if err := s.postgres.Ping(ctx); err != nil {
			status["postgres"] = "unreachable"
			healthy = false
		} else {
			status["postgres"] = "ok"
		}
	}
	if s.redis != nil {
		if err := s.redis.Ping(ctx); err != nil {
			status["redis"] = "unreachable"
			healthy = false
		} else {
			status["redis"] = "ok"
		}
	}

	code := http.StatusOK
	if !healthy {
		status["status"] = "degraded"
		code = http.StatusServiceUnavailable
	}
	respondJSON(w, code, status)
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.WithField("addr", s.httpServer.Addr).Info("Starting API server")
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server")
	return s.httpServer.Shutdown(ctx)
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler {
	return s.router
}
