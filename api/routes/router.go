package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/storefront/api/controllers"
	"github.com/angelmondragon/storefront/api/middleware"
	"github.com/angelmondragon/storefront/internal/shopper"
	"github.com/angelmondragon/storefront/pkg/config"
	"github.com/angelmondragon/storefront/pkg/logger"
)

// Deps collects what the router needs. Gatherer may be nil to skip /metrics.
type Deps struct {
	Config    *config.Config
	Logger    *logger.Logger
	Session   *shopper.Session
	SessionID string
	Catalog   controllers.ProductLookup
	Pingers   map[string]controllers.Pinger
	Gatherer  prometheus.Gatherer
}

func NewRouter(deps Deps) http.Handler {
	cfg, logg, sess := deps.Config, deps.Logger, deps.Session

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.CORS(cfg.App.CORSOrigins),
		middleware.RequestID(logg),
		middleware.SessionID(logg, deps.SessionID),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Pingers))
	})

	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(sess.Cart()))
			r.Put("/", controllers.CartReplace(sess.Cart(), logg))
			r.Post("/items", controllers.CartAddItem(sess.Cart(), deps.Catalog, logg))
			r.Patch("/items/{id}", controllers.CartSetQty(sess.Cart(), logg))
			r.Delete("/items/{id}", controllers.CartRemoveItem(sess.Cart(), logg))
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/", controllers.CheckoutGet(sess))
			r.Post("/", controllers.CheckoutSubmit(sess, logg))
			r.Patch("/{record}", controllers.CheckoutSetDraft(sess, logg))
		})

		r.Route("/orders/current", func(r chi.Router) {
			r.Get("/", controllers.OrderCurrent(sess, logg))
			r.Post("/confirmation", controllers.OrderConfirm(sess, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductsList(deps.Catalog, logg))
			r.Get("/{id}", controllers.ProductGet(deps.Catalog, logg))
		})
	})

	return r
}
