package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/agromart/agromart/internal/auth"
	"github.com/agromart/agromart/internal/catalog"
	"github.com/agromart/agromart/internal/customers"
	"github.com/agromart/agromart/internal/dashboard"
	"github.com/agromart/agromart/internal/ledger"
	"github.com/agromart/agromart/internal/observability"
	"github.com/agromart/agromart/internal/orders"
	"github.com/agromart/agromart/internal/platform/httpx"
	"github.com/agromart/agromart/internal/promotions"
	"github.com/agromart/agromart/internal/shared"
	"github.com/agromart/agromart/internal/statements"
)

// RouterParams aggregates everything the HTTP router needs.
type RouterParams struct {
	Logger  *slog.Logger
	Config  *Config
	Pool    *pgxpool.Pool
	Redis   *redis.Client
	Metrics *observability.Metrics
}

// NewRouter wires repositories, services and handlers into the chi router.
func NewRouter(p RouterParams) chi.Router {
	r := chi.NewRouter()
	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  p.Logger,
		Config:  p.Config,
		Metrics: p.Metrics,
	}) {
		r.Use(mw)
	}

	audit := shared.NewAuditLogger(p.Pool)
	idem := shared.NewIdempotencyStore(p.Pool)
	sessions := auth.NewSessionStore(p.Redis, "agromart_session", p.Config.SessionTTL)

	authHandler := auth.NewHandler(p.Logger, auth.NewService(auth.NewRepository(p.Pool)), sessions)

	customerSvc := customers.NewService(customers.NewRepository(p.Pool))
	catalogSvc := catalog.NewService(catalog.NewRepository(p.Pool), audit)
	promoSvc := promotions.NewService(promotions.NewRepository(p.Pool), customerSvc, catalogSvc)
	ledgerSvc := ledger.NewService(ledger.NewRepository(p.Pool), audit, idem, p.Logger)
	orderSvc := orders.NewService(orders.NewRepository(p.Pool), promoSvc, ledgerSvc, audit, p.Logger)
	dashboardSvc := dashboard.NewService(dashboard.NewRepository(p.Pool))
	statementSvc := statements.NewService(ledgerSvc)

	customerHandler := customers.NewHandler(p.Logger, customerSvc)
	catalogHandler := catalog.NewHandler(p.Logger, catalogSvc)
	promoHandler := promotions.NewHandler(p.Logger, promoSvc)
	ledgerHandler := ledger.NewHandler(p.Logger, ledgerSvc)
	orderHandler := orders.NewHandler(p.Logger, orderSvc)
	dashboardHandler := dashboard.NewHandler(p.Logger, dashboardSvc)
	statementHandler := statements.NewHandler(p.Logger, statementSvc)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if p.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", p.Metrics.Handler())
	}

	r.Route("/api", func(api chi.Router) {
		api.Route("/auth", authHandler.MountRoutes)

		api.Group(func(private chi.Router) {
			private.Use(auth.RequireUser(sessions))
			private.Route("/customers", customerHandler.MountRoutes)
			private.Route("/products", catalogHandler.MountRoutes)
			private.Route("/promotions", promoHandler.MountRoutes)
			private.Route("/ledger", ledgerHandler.MountRoutes)
			private.Route("/orders", orderHandler.MountRoutes)
			private.Route("/dashboard", dashboardHandler.MountRoutes)
			private.Route("/statements", statementHandler.MountRoutes)
		})
	})

	return r
}
