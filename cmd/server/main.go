package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rehearsal/attendance/internal/config"
	"github.com/rehearsal/attendance/internal/database"
	"github.com/rehearsal/attendance/internal/handler"
	"github.com/rehearsal/attendance/internal/middleware"
	"github.com/rehearsal/attendance/internal/repository"
	"github.com/rehearsal/attendance/internal/service"
	"github.com/rehearsal/attendance/internal/session"
	"github.com/rehearsal/attendance/pkg/ticket"
)

func main() {
	// Initialize structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	signingSecret, usingFallback := cfg.SigningSecret()
	if usingFallback {
		slog.Warn("ATTENDANCE_HMAC_SECRET not set, using development fallback secret")
	}
	sessionSecret, usingFallback := cfg.SessionSecret()
	if usingFallback {
		slog.Warn("SESSION_JWT_SECRET not set, using development fallback secret")
	}

	// Initialize database connection
	db := database.NewSurrealDB(database.Config{
		Host:      cfg.Database.Host,
		Port:      cfg.Database.Port,
		User:      cfg.Database.User,
		Password:  cfg.Database.Password,
		Namespace: cfg.Database.Namespace,
		Database:  cfg.Database.Database,
	})

	ctx := context.Background()
	if err := db.Connect(ctx); err != nil {
		slog.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	slog.Info("connected to database",
		slog.String("host", cfg.Database.Host),
		slog.String("database", cfg.Database.Database),
	)

	if err := database.ApplySchema(ctx, db); err != nil {
		slog.Error("failed to apply schema", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize ticket signing service
	tickets, err := ticket.NewService(ticket.Config{
		Secret:      signingSecret,
		AttendeeTTL: cfg.Attendance.TicketTTL,
		StationTTL:  cfg.Attendance.StationTTL,
		Grace:       cfg.Attendance.ClockGrace,
	})
	if err != nil {
		slog.Error("failed to initialize ticket service", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize session manager
	sessions, err := session.NewManager(session.ManagerConfig{
		Secret: sessionSecret,
		Issuer: cfg.Session.Issuer,
		TTL:    time.Duration(cfg.Session.ExpirationMins) * time.Minute,
	})
	if err != nil {
		slog.Error("failed to initialize session manager", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize repositories
	workshopRepo := repository.NewWorkshopRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Initialize services
	attendanceService := service.NewAttendanceService(service.AttendanceServiceConfig{
		WorkshopRepo:   workshopRepo,
		AttendanceRepo: attendanceRepo,
		PaymentRepo:    paymentRepo,
		UserRepo:       userRepo,
		Tickets:        tickets,
	})

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		Rate:   100, // 100 requests per minute
		Window: time.Minute,
		Burst:  20, // Allow bursts up to 20
	})
	defer rateLimiter.Stop()

	// Initialize handlers
	attendanceHandler := handler.NewAttendanceHandler(attendanceService)
	healthHandler := handler.NewHealthHandler(db)

	// Create router and register routes
	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("GET /health", healthHandler.Check)

	authMiddleware := middleware.Auth(sessions)
	optionalAuthMiddleware := middleware.OptionalAuth(sessions)

	// Attendance endpoints
	mux.Handle("POST /v1/workshops/{workshopId}/ticket", authMiddleware(http.HandlerFunc(attendanceHandler.IssueTicket)))
	mux.Handle("POST /v1/workshops/{workshopId}/station-token", authMiddleware(http.HandlerFunc(attendanceHandler.IssueStationToken)))
	mux.Handle("POST /v1/workshops/{workshopId}/join", authMiddleware(http.HandlerFunc(attendanceHandler.Join)))
	mux.Handle("GET /v1/workshops/{workshopId}/attendance", authMiddleware(http.HandlerFunc(attendanceHandler.Roster)))

	// Scan accepts either an authenticated session or a station token in
	// the body, so auth is optional at the transport level.
	mux.Handle("POST /v1/workshops/{workshopId}/scan", optionalAuthMiddleware(http.HandlerFunc(attendanceHandler.Scan)))

	// Apply global middleware
	wrapped := middleware.Chain(
		mux,
		middleware.RequestID,
		middleware.Logger,
		middleware.Recovery,
		middleware.CORS(cfg.Server.AllowedOrigins),
		middleware.RateLimit(rateLimiter),
		middleware.Compress,
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      wrapped,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("starting server",
			slog.String("port", cfg.Server.Port),
			slog.String("env", cfg.Server.Env),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", slog.String("error", err.Error()))
	}

	slog.Info("server exited")
}
