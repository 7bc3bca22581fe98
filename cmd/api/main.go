package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/apollos-hideaway/hideaway-api/internal/config"
	"github.com/apollos-hideaway/hideaway-api/internal/domain/admin"
	"github.com/apollos-hideaway/hideaway-api/internal/domain/booking"
	"github.com/apollos-hideaway/hideaway-api/internal/domain/contact"
	"github.com/apollos-hideaway/hideaway-api/internal/domain/payment"
	"github.com/apollos-hideaway/hideaway-api/internal/domain/villa"
	"github.com/apollos-hideaway/hideaway-api/internal/middleware"
	"github.com/apollos-hideaway/hideaway-api/internal/notify"
	"github.com/apollos-hideaway/hideaway-api/internal/pkg/checkout"
	"github.com/apollos-hideaway/hideaway-api/internal/pkg/database"
	"github.com/apollos-hideaway/hideaway-api/internal/pkg/email"
	"github.com/apollos-hideaway/hideaway-api/internal/pkg/events"
	"github.com/apollos-hideaway/hideaway-api/internal/pkg/imaging"
	"github.com/apollos-hideaway/hideaway-api/internal/pkg/jwt"
	"github.com/apollos-hideaway/hideaway-api/internal/pkg/logger"
	pkgresponse "github.com/apollos-hideaway/hideaway-api/internal/pkg/response"
	"github.com/apollos-hideaway/hideaway-api/internal/pkg/storage"
	"github.com/apollos-hideaway/hideaway-api/internal/reconcile"
)

const (
	mediaPrefix   = "/media"
	sandboxPrefix = "/sandbox/checkout"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.Env,
		Service:     "hideaway-api",
	})

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting Apollo's Hideaway API")

	ctx := context.Background()

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	if err := database.EnsureSchema(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database schema")
	}

	redis, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, continuing without cache and rate limits")
		redis = nil
	}
	defer database.CloseRedis(redis)

	// ---------- Events ----------
	var (
		publisher events.Publisher
		closeBus  func()
	)
	if cfg.AMQPURL != "" {
		rabbit, err := events.NewRabbitPublisher(cfg.AMQPURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to RabbitMQ")
		}
		publisher = rabbit
		closeBus = func() { _ = rabbit.Close() }
		log.Info().Msg("Publishing events to RabbitMQ")
	} else {
		mailer := email.NewFromConfig(email.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.EmailFrom,
			FromName:  cfg.EmailFromName,
		})
		router := events.NewRouter()
		notify.New(mailer, cfg.ContactRecipient).Register(router)
		bus := events.NewLocalBus(router, 100)
		publisher = bus
		closeBus = func() {
			bus.Close()
			mailer.Close()
		}
		log.Info().Msg("Delivering events in-process")
	}
	defer closeBus()

	// ---------- Storage ----------
	store, err := storage.New(ctx, storage.Config{
		S3Endpoint:   cfg.S3Endpoint,
		S3Region:     cfg.S3Region,
		S3Bucket:     cfg.S3Bucket,
		S3AccessKey:  cfg.S3AccessKey,
		S3SecretKey:  cfg.S3SecretKey,
		S3PublicURL:  cfg.S3PublicURL,
		LocalPath:    cfg.LocalStoragePath,
		LocalBaseURL: cfg.PublicBaseURL + mediaPrefix,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create storage")
	}
	var mediaDir string
	if local, ok := store.(*storage.LocalStorage); ok {
		mediaDir = local.Root()
	}

	// ---------- Checkout gateway ----------
	var (
		gateway checkout.Gateway
		sandbox *checkout.SandboxGateway
	)
	if cfg.UseSandboxPayments() {
		sandbox = checkout.NewSandboxGateway(cfg.PublicBaseURL, cfg.StripeWebhookSecret)
		gateway = sandbox
		log.Warn().Msg("STRIPE_API_KEY not set, using sandbox checkout")
	} else {
		gateway = checkout.NewStripeClient(checkout.StripeConfig{
			BaseURL:       cfg.StripeBaseURL,
			APIKey:        cfg.StripeAPIKey,
			WebhookSecret: cfg.StripeWebhookSecret,
			Timeout:       cfg.StripeTimeout,
		})
	}

	// ---------- Services ----------
	villaService := villa.NewService(villa.NewCachedRepository(villa.NewRepository(db), redis))
	villaService.SetImageStorage(store, imaging.NewProcessor(imaging.DefaultConfig()))
	if cfg.SeedVillas {
		if _, err := villaService.Seed(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to seed villas")
		}
	}

	bookingService := booking.NewService(booking.NewRepository(db), villaService, cfg.BookingHoldTTL)
	bookingService.SetPublisher(publisher)

	paymentService := payment.NewService(payment.NewRepository(db), bookingService, gateway, cfg.PaymentCurrency)
	paymentService.SetBroker(payment.NewStatusBroker(redis))

	contactService := contact.NewService(contact.NewRepository(db))
	contactService.SetPublisher(publisher)

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL)
	adminService := admin.NewService(cfg.AdminEmail, cfg.AdminPasswordHash, jwtService)
	if !adminService.Enabled() {
		log.Warn().Msg("ADMIN_EMAIL or ADMIN_PASSWORD_HASH not set, admin API disabled")
	}

	// Sandbox sessions live in this process, so the sweep has to run here too
	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	if sandbox != nil {
		go (&reconcile.Runner{
			Payments: paymentService,
			Bookings: bookingService,
			Interval: cfg.ReconcileInterval,
		}).Run(sweepCtx)
	}

	counter := middleware.NewRedisCounter(redis)

	r := newRouter(routes{
		villas:         villa.NewHandler(villaService),
		bookings:       booking.NewHandler(bookingService),
		payments:       payment.NewHandler(paymentService, cfg.AllowedOrigins),
		contact:        contact.NewHandler(contactService),
		admin:          admin.NewHandler(adminService),
		jwt:            jwtService,
		sandbox:        sandbox,
		mediaDir:       mediaDir,
		allowedOrigins: cfg.AllowedOrigins,
		contactLimiter: middleware.RateLimit(counter, "contact", cfg.ContactRateLimit, cfg.ContactRateWindow),
		loginLimiter:   middleware.RateLimit(counter, "admin-login", 10, 15*time.Minute),
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}

type routes struct {
	villas   *villa.Handler
	bookings *booking.Handler
	payments *payment.Handler
	contact  *contact.Handler
	admin    *admin.Handler
	jwt      *jwt.Service
	sandbox  *checkout.SandboxGateway

	// mediaDir is served under /media when images are stored on local disk
	mediaDir       string
	allowedOrigins []string
	contactLimiter func(http.Handler) http.Handler
	loginLimiter   func(http.Handler) http.Handler
}

func newRouter(rt routes) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(rt.allowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		pkgresponse.OK(w, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			pkgresponse.OK(w, map[string]string{"message": "Apollo's Hideaway API"})
		})

		r.Mount("/villas", rt.villas.Routes())
		r.Mount("/bookings", rt.bookings.Routes())
		r.Mount("/payments", rt.payments.Routes())
		r.Mount("/webhook", rt.payments.WebhookRoutes())
		r.Mount("/contact", rt.contact.Routes(rt.contactLimiter))

		r.Mount("/admin", rt.admin.Routes(rt.jwt, rt.loginLimiter, admin.Sections{
			Bookings: rt.bookings.AdminRoutes(),
			Villas:   rt.villas.AdminRoutes(),
			Contact:  rt.contact.AdminRoutes(),
		}))
	})

	if rt.sandbox != nil {
		r.Mount(sandboxPrefix, rt.sandbox.Routes())
	}
	if rt.mediaDir != "" {
		r.Handle(mediaPrefix+"/*", http.StripPrefix(mediaPrefix, http.FileServer(http.Dir(rt.mediaDir))))
	}

	return r
}
