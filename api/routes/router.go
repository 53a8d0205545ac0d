package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/procurehub/portal/api/controllers"
	ordercontrollers "github.com/procurehub/portal/api/controllers/orders"
	quotationcontrollers "github.com/procurehub/portal/api/controllers/quotations"
	"github.com/procurehub/portal/api/middleware"
	"github.com/procurehub/portal/internal/access"
	"github.com/procurehub/portal/internal/auth"
	"github.com/procurehub/portal/internal/orders"
	"github.com/procurehub/portal/internal/quotations"
	"github.com/procurehub/portal/internal/users"
	"github.com/procurehub/portal/internal/vendors"
	"github.com/procurehub/portal/pkg/auth/session"
	"github.com/procurehub/portal/pkg/config"
	"github.com/procurehub/portal/pkg/logger"
	"github.com/procurehub/portal/pkg/metrics"
	"github.com/procurehub/portal/pkg/redis"
)

// RedisStore is the Redis surface the HTTP layer relies on.
type RedisStore interface {
	redis.IdempotencyStore
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (redis.WindowResult, error)
	Ping(ctx context.Context) error
}

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config     *config.Config
	Logger     *logger.Logger
	DB         controllers.Pinger
	Redis      RedisStore
	Sessions   session.AccessSessionChecker
	Gatherer   prometheus.Gatherer
	Metrics    *metrics.HTTPMetrics
	Auth       auth.Service
	Register   auth.RegisterService
	Users      users.Service
	Orders     orders.Service
	Quotations quotations.Service
	Vendors    vendors.Service
}

func NewRouter(d Deps) http.Handler {
	cfg, logg := d.Config, d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(d.Metrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	var (
		rateStore   middleware.RateLimitStore
		idemStore   redis.IdempotencyStore
		readyChecks = map[string]controllers.Pinger{}
	)
	if d.Redis != nil {
		rateStore, idemStore = d.Redis, d.Redis
		readyChecks["redis"] = d.Redis
	}
	if d.DB != nil {
		readyChecks["db"] = d.DB
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginUsernameLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterUsernameLimit,
	)
	idempotent := middleware.Idempotency(idemStore, cfg.Idempotency.TTL, logg)
	requireAuth := middleware.Auth(cfg.JWT, d.Sessions, logg)
	can := func(action access.Action) func(http.Handler) http.Handler {
		return middleware.RequireAction(action, logg)
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive())
		r.Get("/ready", controllers.HealthReady(readyChecks, logg))
	})

	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(loginPolicy, rateStore, logg)).Post("/login", controllers.AuthLogin(d.Auth, logg))
			r.With(middleware.AuthRateLimit(registerPolicy, rateStore, logg), idempotent).Post("/register", controllers.AuthRegister(d.Register, logg))
			r.Post("/refresh", controllers.AuthRefresh(d.Auth, logg))
			r.With(requireAuth).Post("/logout", controllers.AuthLogout(d.Auth, logg))
		})

		r.With(middleware.OptionalAuth(cfg.JWT, d.Sessions, logg)).Get("/dashboard/{area}", controllers.DashboardGate(logg))

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Route("/users/{userId}", func(r chi.Router) {
				r.Get("/", controllers.UserGet(d.Users, logg))
				r.With(can(access.ActionProfileUpdate)).Patch("/", controllers.UserUpdateProfile(d.Users, logg))
				r.With(can(access.ActionPasswordChange)).Patch("/password", controllers.UserChangePassword(d.Users, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.With(can(access.ActionOrderCreate), idempotent).Post("/", ordercontrollers.Create(d.Orders, logg))
				r.With(can(access.ActionOrderList)).Get("/", ordercontrollers.List(d.Orders, logg))
				r.Route("/{orderId}", func(r chi.Router) {
					r.With(can(access.ActionOrderView)).Get("/", ordercontrollers.Detail(d.Orders, logg))
					r.With(can(access.ActionOrderDecide), idempotent).Post("/decision", ordercontrollers.Decide(d.Orders, logg))
					r.With(can(access.ActionOrderPost), idempotent).Post("/post", ordercontrollers.Post(d.Orders, logg))
					r.With(can(access.ActionOrderApproveVendor), idempotent).Post("/approve-vendor", ordercontrollers.ApproveVendor(d.Orders, logg))
					r.With(can(access.ActionQuotationList)).Get("/quotations", quotationcontrollers.ListForOrder(d.Quotations, logg))
					r.With(can(access.ActionQuotationBid), idempotent).Post("/quotations", quotationcontrollers.SubmitForOrder(d.Quotations, logg))
				})
			})

			r.Route("/quotations", func(r chi.Router) {
				r.With(can(access.ActionQuotationSubmit), idempotent).Post("/", quotationcontrollers.Submit(d.Quotations, logg))
				r.With(can(access.ActionQuotationList)).Get("/", quotationcontrollers.List(d.Quotations, logg))
				r.With(can(access.ActionQuotationDelete)).Delete("/{quotationId}", quotationcontrollers.Delete(d.Quotations, logg))
			})

			r.With(can(access.ActionQuotationListByAdmin)).Get("/admin/quotations", quotationcontrollers.ListForAdmin(d.Quotations, logg))
			r.With(can(access.ActionVendorList)).Get("/superadmin/vendors", controllers.VendorDirectory(d.Vendors, logg))
		})
	})

	return r
}
