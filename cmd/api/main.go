package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/angelmondragon/salonbook-backend/api/controllers"
	"github.com/angelmondragon/salonbook-backend/api/routes"
	"github.com/angelmondragon/salonbook-backend/internal/appointments"
	"github.com/angelmondragon/salonbook-backend/internal/auth"
	"github.com/angelmondragon/salonbook-backend/internal/earnings"
	"github.com/angelmondragon/salonbook-backend/internal/notifications"
	"github.com/angelmondragon/salonbook-backend/internal/partners"
	"github.com/angelmondragon/salonbook-backend/internal/payments"
	"github.com/angelmondragon/salonbook-backend/internal/plans"
	"github.com/angelmondragon/salonbook-backend/internal/pricing"
	"github.com/angelmondragon/salonbook-backend/internal/sales"
	"github.com/angelmondragon/salonbook-backend/internal/users"
	"github.com/angelmondragon/salonbook-backend/pkg/auth/session"
	"github.com/angelmondragon/salonbook-backend/pkg/config"
	"github.com/angelmondragon/salonbook-backend/pkg/db"
	"github.com/angelmondragon/salonbook-backend/pkg/instance"
	"github.com/angelmondragon/salonbook-backend/pkg/logger"
	"github.com/angelmondragon/salonbook-backend/pkg/metrics"
	"github.com/angelmondragon/salonbook-backend/pkg/migrate"
	"github.com/angelmondragon/salonbook-backend/pkg/outbox"
	"github.com/angelmondragon/salonbook-backend/pkg/redis"
	"github.com/angelmondragon/salonbook-backend/pkg/storage/gcs"
	"github.com/angelmondragon/salonbook-backend/pkg/whatsapp"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	loc, err := cfg.Booking.Location()
	if err != nil {
		logg.Error(context.Background(), "invalid booking timezone", err)
		os.Exit(1)
	}

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	pingers := map[string]controllers.Pinger{
		"database": dbClient,
		"redis":    redisClient,
	}

	// avatar uploads are optional in local setups
	var uploader gcs.Uploader
	if cfg.GCS.BucketName != "" {
		gcsClient, err := gcs.NewClient(context.Background(), cfg.GCS, cfg.GCP, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap gcs", err)
			os.Exit(1)
		}
		uploader = gcsClient
		pingers["gcs"] = gcsClient
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	bookingMetrics := metrics.NewBookingMetrics(registry)

	emitter := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	deps, err := buildServices(cfg, logg, serviceDeps{
		db:       dbClient,
		tx:       dbClient,
		outbox:   emitter,
		sessions: sessionManager,
		uploader: uploader,
		metrics:  bookingMetrics,
		location: loc,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
		os.Exit(1)
	}
	deps.Pingers = pingers
	deps.Redis = redisClient
	deps.Sessions = sessionManager
	deps.Metrics = metrics.NewHTTPMetrics(registry)
	deps.Gatherer = registry

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-runCtx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}

type serviceDeps struct {
	db       *db.Client
	tx       db.TxRunner
	outbox   outbox.Emitter
	sessions *session.Manager
	uploader gcs.Uploader
	metrics  *metrics.BookingMetrics
	location *time.Location
}

// buildServices wires the domain services in dependency order: plans before
// appointments, both before sales.
func buildServices(cfg *config.Config, logg *logger.Logger, d serviceDeps) (routes.Deps, error) {
	conn := d.db.DB()
	userRepo := users.NewRepository(conn)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: d.sessions,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		Logger:         logg,
	})
	if err != nil {
		return routes.Deps{}, err
	}
	usersService, err := users.NewService(userRepo, cfg.Password)
	if err != nil {
		return routes.Deps{}, err
	}

	planRepo := plans.NewRepository(conn)
	plansService, err := plans.NewService(plans.ServiceParams{
		Repo:    planRepo,
		Tx:      d.tx,
		Outbox:  d.outbox,
		Metrics: d.metrics,
		Logger:  logg,
	})
	if err != nil {
		return routes.Deps{}, err
	}

	appointmentsService, err := appointments.NewService(appointments.ServiceParams{
		Repo:     appointments.NewRepository(conn),
		Tx:       d.tx,
		Outbox:   d.outbox,
		Plans:    plansService,
		Metrics:  d.metrics,
		Logger:   logg,
		Location: d.location,
	})
	if err != nil {
		return routes.Deps{}, err
	}

	pricingService, err := pricing.NewService(pricing.NewRepository(conn), planRepo)
	if err != nil {
		return routes.Deps{}, err
	}

	paymentsService, err := payments.NewService(payments.ServiceParams{
		Repo:   payments.NewRepository(conn),
		Tx:     d.tx,
		Outbox: d.outbox,
	})
	if err != nil {
		return routes.Deps{}, err
	}

	salesService, err := sales.NewService(sales.ServiceParams{
		Tx:           d.tx,
		Pricing:      pricingService,
		Plans:        plansService,
		Appointments: appointmentsService,
		Payments:     paymentsService,
		Logger:       logg,
	})
	if err != nil {
		return routes.Deps{}, err
	}

	partnersService, err := partners.NewService(partners.ServiceParams{
		Repo:     partners.NewRepository(conn),
		Uploader: d.uploader,
		Logger:   logg,
	})
	if err != nil {
		return routes.Deps{}, err
	}

	earningsService, err := earnings.NewService(earnings.NewRepository(conn))
	if err != nil {
		return routes.Deps{}, err
	}

	// the API only reads delivery history; sending happens in the worker
	var notificationsService notifications.Service
	if sender, err := whatsapp.NewFromConfig(cfg.WhatsApp); err == nil {
		notificationsService, err = notifications.NewService(notifications.ServiceParams{
			Repo:     notifications.NewRepository(conn),
			Sender:   sender,
			Business: cfg.WhatsApp.BusinessName,
			Logger:   logg,
		})
		if err != nil {
			return routes.Deps{}, err
		}
	} else {
		logg.Warn(logg.WithField(context.Background(), "error", err.Error()), "whatsapp gateway not configured, delivery history disabled")
	}

	return routes.Deps{
		Auth:          authService,
		Users:         usersService,
		Appointments:  appointmentsService,
		Plans:         plansService,
		Pricing:       pricingService,
		Sales:         salesService,
		Partners:      partnersService,
		Payments:      paymentsService,
		Earnings:      earningsService,
		Notifications: notificationsService,
	}, nil
}
