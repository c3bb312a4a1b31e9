package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/salonbook-backend/api/controllers"
	"github.com/angelmondragon/salonbook-backend/api/middleware"
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
	"github.com/angelmondragon/salonbook-backend/pkg/enums"
	"github.com/angelmondragon/salonbook-backend/pkg/logger"
	"github.com/angelmondragon/salonbook-backend/pkg/metrics"
	pkgredis "github.com/angelmondragon/salonbook-backend/pkg/redis"
)

// Redis is the subset of the redis client the HTTP layer depends on.
type Redis interface {
	pkgredis.IdempotencyStore
	pkgredis.RateLimiter
}

// Deps carries everything NewRouter wires into handlers.
type Deps struct {
	Pingers  map[string]controllers.Pinger
	Redis    Redis
	Sessions session.AccessSessionChecker
	Metrics  *metrics.HTTPMetrics
	Gatherer prometheus.Gatherer

	Auth          auth.Service
	Users         users.Service
	Appointments  appointments.Service
	Plans         plans.Service
	Pricing       pricing.Service
	Sales         sales.Service
	Partners      partners.Service
	Payments      payments.Service
	Earnings      earnings.Service
	Notifications notifications.Service
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, deps.Metrics),
		middleware.CORS(cfg.CORS),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)
	authenticated := []func(http.Handler) http.Handler{
		middleware.Auth(cfg.JWT, deps.Sessions, logg),
		middleware.RateLimit(cfg.RateLimit.Limit, cfg.RateLimit.Window, deps.Redis, logg),
		middleware.Idempotency(deps.Redis, logg),
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Pingers))
	})
	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(
				middleware.AuthRateLimit(registerPolicy, deps.Redis, logg),
				middleware.Idempotency(deps.Redis, logg),
			).Post("/register", controllers.AuthRegister(deps.Auth, logg))
			r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.AuthLogin(deps.Auth, logg))
			r.Post("/refresh", controllers.AuthRefresh(deps.Auth, logg))
			r.Post("/logout", controllers.AuthLogout(deps.Auth, cfg.JWT, logg))
		})

		r.Get("/services", controllers.ListCatalogue(deps.Pricing, false, logg))
		r.Get("/pricing/{slug}", controllers.PriceQuote(deps.Pricing, logg))

		r.Group(func(r chi.Router) {
			r.Use(authenticated...)
			r.Get("/availability", controllers.Availability(deps.Appointments, logg))

			r.Route("/me", func(r chi.Router) {
				r.Get("/", controllers.Me(deps.Users, logg))

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(logg, enums.UserRoleClient))
					r.Get("/plans", controllers.MyPlans(deps.Plans, logg))
					r.Route("/appointments", func(r chi.Router) {
						r.Get("/", controllers.ListAppointments(deps.Appointments, logg))
						r.Get("/{id}", controllers.GetAppointment(deps.Appointments, logg))
						if cfg.FeatureFlags.SelfServiceBooking {
							r.Post("/", controllers.BookAppointment(deps.Appointments, logg))
							r.Post("/{id}/reschedule", controllers.RescheduleAppointment(deps.Appointments, logg))
						}
						r.Post("/{id}/cancel", controllers.CancelAppointment(deps.Appointments, logg))
					})
				})
			})
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(authenticated[0], middleware.RequireRole(logg, enums.UserRoleAdmin))
		r.Use(authenticated[1:]...)

		r.Route("/clients", func(r chi.Router) {
			r.Get("/", controllers.ListClients(deps.Users, logg))
			r.Post("/", controllers.CreateClient(deps.Users, logg))
			r.Get("/{id}", controllers.GetClient(deps.Users, logg))
			r.Get("/{id}/plans", controllers.ClientPlans(deps.Plans, logg))
		})

		r.Route("/plans", func(r chi.Router) {
			r.Post("/", controllers.CreatePlan(deps.Plans, logg))
			r.Get("/{id}", controllers.GetPlan(deps.Plans, logg))
			r.Patch("/{id}", controllers.EditPlan(deps.Plans, logg))
			r.Delete("/{id}", controllers.DeletePlan(deps.Plans, logg))
			r.Post("/{id}/adjust", controllers.AdjustPlan(deps.Plans, logg))
		})

		r.Route("/appointments", func(r chi.Router) {
			r.Get("/", controllers.ListAppointments(deps.Appointments, logg))
			r.Post("/", controllers.BookAppointment(deps.Appointments, logg))
			r.Get("/{id}", controllers.GetAppointment(deps.Appointments, logg))
			r.Delete("/{id}", controllers.DeleteAppointment(deps.Appointments, logg))
			r.Post("/{id}/confirm", controllers.ConfirmAppointment(deps.Appointments, logg))
			r.Post("/{id}/cancel", controllers.CancelAppointment(deps.Appointments, logg))
			r.Post("/{id}/complete", controllers.CompleteAppointment(deps.Appointments, logg))
			r.Post("/{id}/reschedule", controllers.RescheduleAppointment(deps.Appointments, logg))
			r.Post("/{id}/price", controllers.MarkAppointmentPrice(deps.Appointments, logg))
			r.Get("/{id}/deliveries", controllers.AppointmentDeliveries(deps.Notifications, logg))
		})

		r.Post("/sales/plans", controllers.SellPlan(deps.Sales, logg))

		r.Route("/services", func(r chi.Router) {
			r.Get("/", controllers.ListCatalogue(deps.Pricing, true, logg))
			r.Put("/", controllers.UpsertService(deps.Pricing, logg))
			r.Put("/{id}/prices", controllers.UpsertPrice(deps.Pricing, logg))
			r.Delete("/{id}/prices/{plan}", controllers.DeletePrice(deps.Pricing, logg))
		})

		r.Route("/partners", func(r chi.Router) {
			r.Get("/", controllers.ListPartners(deps.Partners, logg))
			r.Post("/", controllers.CreatePartner(deps.Partners, logg))
			r.Get("/{id}", controllers.GetPartner(deps.Partners, logg))
			r.Patch("/{id}", controllers.UpdatePartner(deps.Partners, logg))
			r.Put("/{id}/commission", controllers.UpdatePartnerCommission(deps.Partners, logg))
			r.Put("/{id}/active", controllers.SetPartnerActive(deps.Partners, logg))
			r.Post("/{id}/avatar", controllers.UploadPartnerAvatar(deps.Partners, logg))
		})

		r.Route("/payments", func(r chi.Router) {
			r.Get("/", controllers.ListPayments(deps.Payments, logg))
			r.Post("/", controllers.RecordPayment(deps.Payments, logg))
		})

		r.Get("/reports/earnings", controllers.EarningsReport(deps.Earnings, logg))
	})

	return r
}
