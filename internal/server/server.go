package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jonathan/hiring-pipeline/internal/ats"
	"github.com/jonathan/hiring-pipeline/internal/logging"
	"github.com/jonathan/hiring-pipeline/internal/observability"
	"github.com/jonathan/hiring-pipeline/internal/server/middleware"
	"github.com/jonathan/hiring-pipeline/internal/server/ratelimit"
)

// Deps collects what the HTTP layer needs.
type Deps struct {
	Service        *ats.Service
	Users          *UserService
	JWT            *JWTService
	Limiter        *ratelimit.Limiter
	Logger         *logging.Logger
	AllowedOrigin  string
	MaxUploadBytes int64
}

// Config holds listener settings.
type Config struct {
	Port            int
	ShutdownTimeout time.Duration
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	svc         *ats.Service
	authHandler *AuthHandler
	jwtService  *JWTService
	rateLimiter *ratelimit.Limiter
	log         *logging.Logger

	allowedOrigin  string
	maxUploadBytes int64
	shutdown       time.Duration
}

// defaultUploadBytes bounds multipart bodies when no limit is configured.
const defaultUploadBytes = 10 << 20

// New creates a new server instance
func New(cfg Config, deps Deps) (*Server, error) {
	if deps.Service == nil || deps.Users == nil || deps.JWT == nil {
		return nil, errors.New("server requires a pipeline service, a user service and a JWT service")
	}
	if deps.Logger == nil {
		deps.Logger = logging.NewNop()
	}
	if deps.Limiter == nil {
		deps.Limiter = ratelimit.NewLimiter(&ratelimit.Config{Enabled: false}, nil, deps.Logger)
	}
	if deps.AllowedOrigin == "" {
		deps.AllowedOrigin = "*"
	}
	if deps.MaxUploadBytes <= 0 {
		deps.MaxUploadBytes = defaultUploadBytes
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}

	s := &Server{
		svc:            deps.Service,
		authHandler:    NewAuthHandler(deps.Users, deps.JWT, deps.Logger),
		jwtService:     deps.JWT,
		rateLimiter:    deps.Limiter,
		log:            deps.Logger,
		allowedOrigin:  deps.AllowedOrigin,
		maxUploadBytes: deps.MaxUploadBytes,
		shutdown:       cfg.ShutdownTimeout,
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // uploads are scored synchronously
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	auth := middleware.AuthMiddleware(s.jwtService.AsTokenValidator())
	protected := func(h http.HandlerFunc) http.Handler { return auth(h) }

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Authentication
	mux.HandleFunc("POST /auth/register", s.authHandler.Register)
	mux.HandleFunc("POST /auth/login", s.authHandler.Login)
	mux.Handle("PUT /auth/password", protected(s.authHandler.UpdatePassword))

	// Jobs
	mux.Handle("POST /ats/jobs", protected(s.handleCreateJob))
	mux.Handle("GET /ats/jobs", protected(s.handleListJobs))
	mux.Handle("GET /ats/jobs/{id}", protected(s.handleGetJob))
	mux.Handle("PATCH /ats/jobs/{id}/stages", protected(s.handleUpdateJobStages))
	mux.Handle("POST /ats/jobs/{id}/close", protected(s.handleCloseJob))
	mux.Handle("GET /ats/jobs/{id}/kanban", protected(s.handleKanban))
	mux.Handle("POST /ats/jobs/{id}/applications", protected(s.handleSubmitApplication))

	// Applications and the stage machine
	mux.Handle("GET /ats/applications/mine", protected(s.handleListMyApplications))
	mux.Handle("GET /ats/applications/{id}", protected(s.handleGetApplication))
	mux.Handle("POST /ats/applications/{id}/rescore", protected(s.handleRescoreApplication))
	mux.Handle("PATCH /ats/applications/{id}/stage", protected(s.handleMoveToStage))
	mux.Handle("PATCH /ats/applications/{id}/substage", protected(s.handleUpdateSubStage))
	mux.Handle("POST /ats/applications/{id}/reject", protected(s.handleRejectApplication))
	mux.Handle("GET /ats/applications/{id}/next-stage", protected(s.handleNextStage))
	mux.Handle("GET /ats/applications/{id}/activities", protected(s.handleListActivities))
	mux.Handle("GET /ats/applications/{id}/comments", protected(s.handleListComments))
	mux.Handle("POST /ats/applications/{id}/comments", protected(s.handleAddComment))
	mux.Handle("GET /ats/applications/{id}/interviews", protected(s.handleListInterviews))
	mux.Handle("GET /ats/applications/{id}/tasks", protected(s.handleListTasks))
	mux.Handle("GET /ats/applications/{id}/offers", protected(s.handleListOffers))
	mux.Handle("GET /ats/applications/{id}/compensation", protected(s.handleGetCompensation))
	mux.Handle("GET /ats/applications/{id}/compensation-meetings", protected(s.handleListMeetings))

	// Interviews
	mux.Handle("POST /ats/interviews", protected(s.handleScheduleInterview))
	mux.Handle("PATCH /ats/interviews/{id}", protected(s.handleUpdateInterview))
	mux.Handle("POST /ats/interviews/{id}/complete", protected(s.handleCompleteInterview))
	mux.Handle("POST /ats/interviews/{id}/cancel", protected(s.handleCancelInterview))
	mux.Handle("POST /ats/interviews/{id}/feedback", protected(s.handleInterviewFeedback))

	// Technical tasks
	mux.Handle("POST /ats/tasks", protected(s.handleAssignTask))
	mux.Handle("PATCH /ats/tasks/{id}", protected(s.handleUpdateTask))
	mux.Handle("DELETE /ats/tasks/{id}", protected(s.handleDeleteTask))
	mux.Handle("POST /ats/tasks/{id}/submit", protected(s.handleSubmitTask))
	mux.Handle("POST /ats/tasks/{id}/review", protected(s.handleStartTaskReview))
	mux.Handle("POST /ats/tasks/{id}/complete", protected(s.handleCompleteTask))

	// Offers
	mux.Handle("POST /ats/offers", protected(s.handleSendOffer))
	mux.Handle("PATCH /ats/offers/{id}", protected(s.handleUpdateOffer))
	mux.Handle("POST /ats/offers/{id}/sign", protected(s.handleSignOffer))
	mux.Handle("POST /ats/offers/{id}/decline", protected(s.handleDeclineOffer))

	// Compensation and compensation meetings
	mux.Handle("POST /ats/compensation", protected(s.handleInitiateCompensation))
	mux.Handle("PATCH /ats/compensation/{id}", protected(s.handleUpdateCompensation))
	mux.Handle("POST /ats/compensation/{id}/send", protected(s.handleSendCompensation))
	mux.Handle("POST /ats/compensation/{id}/approve", protected(s.handleApproveCompensation))
	mux.Handle("POST /ats/compensation/{id}/decline", protected(s.handleDeclineCompensation))
	mux.Handle("POST /ats/compensation-meetings", protected(s.handleScheduleMeeting))
	mux.Handle("PATCH /ats/compensation-meetings/{id}", protected(s.handleUpdateMeeting))
	mux.Handle("POST /ats/compensation-meetings/{id}/complete", protected(s.handleCompleteMeeting))
	mux.Handle("POST /ats/compensation-meetings/{id}/cancel", protected(s.handleCancelMeeting))

	return s.withRateLimit(s.withLogging(s.withCORS(mux)))
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server starting", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdown)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.rateLimiter.Stop()
	s.log.Info("server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.allowedOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(r.Context(), s.extractClientID(r), r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder remembers the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// withLogging logs each request and records request metrics
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		elapsed := time.Since(start)

		observability.HTTPRequests.WithLabelValues(r.Method, strconv.Itoa(rec.status)).Inc()
		observability.HTTPRequestDuration.WithLabelValues(r.Method).Observe(elapsed.Seconds())
		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", elapsed,
			"remote", r.RemoteAddr,
		)
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// extractClientID uses the IP address from RemoteAddr.
// X-Forwarded-For is ignored because it is client-controlled without a trusted proxy.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	retryAfter := int(info.RetryAfter.Seconds())
	if info.RetryAfter > 0 && retryAfter == 0 {
		retryAfter = 1
	}
	if retryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	}
	s.jsonResponse(w, http.StatusTooManyRequests, map[string]any{
		"error":       "rate_limit_exceeded",
		"message":     "Too many requests. Please try again later.",
		"retry_after": retryAfter,
	})
}
