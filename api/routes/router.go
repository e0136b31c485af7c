package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/hangout-backend/api/controllers"
	"github.com/angelmondragon/hangout-backend/api/middleware"
	"github.com/angelmondragon/hangout-backend/internal/businesses"
	"github.com/angelmondragon/hangout-backend/internal/events"
	"github.com/angelmondragon/hangout-backend/internal/ledger"
	"github.com/angelmondragon/hangout-backend/internal/vouchers"
	"github.com/angelmondragon/hangout-backend/pkg/auth/session"
	"github.com/angelmondragon/hangout-backend/pkg/config"
	"github.com/angelmondragon/hangout-backend/pkg/enums"
	"github.com/angelmondragon/hangout-backend/pkg/logger"
	"github.com/angelmondragon/hangout-backend/pkg/metrics"
	pkgredis "github.com/angelmondragon/hangout-backend/pkg/redis"
)

// RequestStore backs idempotency replay and the ledger rate limit.
type RequestStore interface {
	pkgredis.IdempotencyStore
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// Dependencies is everything the HTTP surface needs from cmd/api.
type Dependencies struct {
	Config   *config.Config
	Logger   *logger.Logger
	Store    RequestStore
	Sessions session.Revoker

	Readiness []controllers.ReadinessCheck
	Metrics   *metrics.HTTPMetrics
	Gatherer  prometheus.Gatherer

	Businesses businesses.Service
	Vouchers   vouchers.Service
	Ledger     ledger.Service
	Events     events.Service
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.Metrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	ledgerPolicy := middleware.NewRateLimitPolicy("ledger", cfg.RateLimit.LedgerWindow, cfg.RateLimit.LedgerLimit)
	ownerOnly := middleware.RequireRole(logg, enums.AccountRoleBusinessOwner.String(), enums.AccountRoleAdmin.String())

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Readiness...))
	})
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/events", controllers.EventList(deps.Events, logg))
		r.Get("/events/{eventId}", controllers.EventGet(deps.Events, logg))
		r.Get("/businesses/{businessId}/vouchers", controllers.BusinessVouchers(deps.Vouchers, logg))
		r.Get("/vouchers/{voucherId}", controllers.VoucherGet(deps.Vouchers, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
		r.Use(middleware.Idempotency(deps.Store, logg))

		r.Post("/auth/logout", controllers.AuthLogout(deps.Sessions, logg))
		r.Get("/me/vouchers", controllers.MyVouchers(deps.Ledger, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(ledgerPolicy, deps.Store, logg))
			r.Post("/vouchers/{voucherId}/grant", controllers.VoucherGrant(deps.Ledger, logg))
			r.Post("/vouchers/{voucherId}/redeem", controllers.VoucherRedeem(deps.Ledger, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(ownerOnly)

			r.Post("/businesses", controllers.BusinessCreate(deps.Businesses, logg))
			r.Get("/businesses/mine", controllers.MyBusinesses(deps.Businesses, logg))
			r.Get("/businesses/{businessId}/voucher-grants", controllers.BusinessVoucherGrants(deps.Ledger, logg))

			r.Post("/vouchers", controllers.VoucherCreate(deps.Vouchers, logg))
			r.Patch("/vouchers/{voucherId}", controllers.VoucherEdit(deps.Vouchers, logg))
			r.Delete("/vouchers/{voucherId}", controllers.VoucherDelete(deps.Vouchers, logg))
			r.Get("/owner/vouchers", controllers.OwnerVouchers(deps.Vouchers, logg))

			r.Post("/events", controllers.EventCreate(deps.Events, cfg.Media, logg))
			r.Patch("/events/{eventId}", controllers.EventEdit(deps.Events, cfg.Media, logg))
			r.Delete("/events/{eventId}", controllers.EventDelete(deps.Events, logg))
			r.Get("/owner/events", controllers.OwnerEvents(deps.Events, logg))
		})
	})

	return r
}
