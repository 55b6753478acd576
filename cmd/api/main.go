package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/renthub/laptop-bookings/internal/http/handlers"
	httpmw "github.com/renthub/laptop-bookings/internal/http/middleware"
	"github.com/renthub/laptop-bookings/internal/otp"
	"github.com/renthub/laptop-bookings/internal/persist"
	"github.com/renthub/laptop-bookings/internal/service"
	"github.com/renthub/laptop-bookings/internal/store"
	"github.com/renthub/laptop-bookings/pkg/config"
	"github.com/renthub/laptop-bookings/pkg/events"
	"github.com/renthub/laptop-bookings/pkg/logger"
	"github.com/renthub/laptop-bookings/pkg/metrics"
	mw "github.com/renthub/laptop-bookings/pkg/middleware"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	metrics.Register()

	ctx := context.Background()

	// Persistence gateway
	gateway, err := newGateway(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize persistence gateway", "error", err)
		os.Exit(1)
	}
	defer gateway.Close()

	// Load durable state; a failure here is fatal to startup.
	snapshot, err := gateway.LoadAll(ctx)
	if err != nil {
		logger.Error("Failed to load collections", "error", err)
		os.Exit(1)
	}

	users := store.NewUsers()
	laptops := store.NewLaptops()
	bookings := store.NewBookings()
	users.Load(snapshot.Users)
	laptops.Load(snapshot.Laptops)
	bookings.Load(snapshot.Bookings)

	logger.Info("Collections loaded",
		"users", len(snapshot.Users),
		"laptops", len(snapshot.Laptops),
		"bookings", len(snapshot.Bookings),
	)

	// Event bus
	var eventBus events.Publisher = events.NoopPublisher{}
	if cfg.NATS.URL != "" {
		bus, err := events.NewNATSEventBus(cfg.NATS.URL)
		if err != nil {
			logger.Error("Failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer bus.Close()
		eventBus = bus
	}

	// Services
	registry := otp.NewRegistry(cfg.OTP.TTL, cfg.OTP.MaxAttempts)
	authService := service.NewAuthService(users, gateway, eventBus, cfg)
	recoveryService := service.NewRecoveryService(users, registry, gateway, eventBus)
	laptopService := service.NewLaptopService(laptops, gateway)
	bookingService := service.NewBookingService(bookings, laptops, gateway, eventBus, cfg.Booking.CancelWindow)

	h := handlers.New(authService, recoveryService, laptopService, bookingService, cfg)

	// One passcode issuance per 5-minute window per caller, matching the
	// OTP TTL.
	var otpLimiter httpmw.Limiter
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			logger.Error("Invalid REDIS_URL", "error", err)
			os.Exit(1)
		}
		otpLimiter = httpmw.NewRedisLimiter(redis.NewClient(opts), "otp_issue", 1, cfg.OTP.TTL)
	} else {
		otpLimiter = httpmw.NewMemoryLimiter(1, cfg.OTP.TTL)
	}

	// Router
	r := chi.NewRouter()
	r.Use(mw.RequestID)
	r.Use(mw.ServiceName("api"))
	r.Use(mw.Logging)
	r.Use(mw.Recover)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(mw.Health)
	r.Use(mw.Metrics)

	r.Handle("/metrics", metrics.Handler())
	r.Mount("/", h.Routes(httpmw.RateLimit(otpLimiter)))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Shutdown error", "error", err)
		}
	}()

	logger.Info("Starting laptop bookings API", "port", cfg.Server.Port, "storage", cfg.Storage.Driver)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}

func newGateway(ctx context.Context, cfg *config.Config) (persist.Gateway, error) {
	if cfg.Storage.Driver == "postgres" {
		return persist.NewPostgresGateway(ctx, cfg.Storage.DatabaseURL)
	}
	return persist.NewFileGateway(cfg.Storage.DataDir)
}
