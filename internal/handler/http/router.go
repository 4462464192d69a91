package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/akshansh2332/driftclic-aesthetic-studio/internal/catalog"
	"github.com/akshansh2332/driftclic-aesthetic-studio/internal/service"
	"github.com/akshansh2332/driftclic-aesthetic-studio/pkg/health"
	"github.com/akshansh2332/driftclic-aesthetic-studio/pkg/middleware"
)

// RouterConfig holds the knobs of the HTTP surface.
type RouterConfig struct {
	CORS             middleware.CORSConfig
	CatalogCacheSecs int
	RequestTimeout   time.Duration

	// RateLimitRPS and RateLimitBurst bound session traffic per client IP.
	// A zero RateLimitRPS disables the limit.
	RateLimitRPS   float64
	RateLimitBurst int
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(
	cat *catalog.Catalog,
	sessionService *service.SessionService,
	events *EventsHandler,
	healthHandler *health.Handler,
	logger *slog.Logger,
	cfg RouterConfig,
) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("storefront"))
	r.Use(middleware.Tracing("storefront"))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg.CORS))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// The change stream hijacks the connection, so it stays outside
	// compression and the request timeout.
	r.With(SessionIDFromHeader(true)).Get("/api/v1/sessions/events", events.Stream)

	productHandler := NewProductHandler(cat, logger)
	cartHandler := NewCartHandler(sessionService, logger)
	wishlistHandler := NewWishlistHandler(sessionService, logger)
	sessionHandler := NewSessionHandler(sessionService, logger)

	r.Group(func(r chi.Router) {
		r.Use(chimw.Compress(5))
		r.Use(chimw.Timeout(cfg.RequestTimeout))
		r.Use(ContentTypeJSON)

		r.Group(func(r chi.Router) {
			r.Use(middleware.CacheControl(cfg.CatalogCacheSecs))

			r.Get("/api/v1/collections", productHandler.ListCollections)
			r.Route("/api/v1/products", func(r chi.Router) {
				r.Get("/", productHandler.ListProducts)
				r.Get("/filters", productHandler.FilterOptions)
				r.Get("/best-sellers", productHandler.BestSellers)
				r.Get("/new-arrivals", productHandler.NewArrivals)
				r.Get("/{id}", productHandler.GetProduct)
				r.Get("/{id}/related", productHandler.RelatedProducts)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.CacheControl(0))
			r.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, logger))

			r.Post("/api/v1/sessions", sessionHandler.CreateSession)
			r.With(SessionIDFromHeader(false)).Delete("/api/v1/sessions", sessionHandler.EndSession)

			r.Route("/api/v1/cart", func(r chi.Router) {
				r.Use(SessionIDFromHeader(false))

				r.Get("/", cartHandler.GetCart)
				r.Delete("/", cartHandler.ClearCart)

				r.Post("/items", cartHandler.AddItem)
				r.Put("/items/{productId}/{size}/{color}", cartHandler.UpdateItemQuantity)
				r.Delete("/items/{productId}/{size}/{color}", cartHandler.RemoveItem)

				r.Post("/open", cartHandler.OpenCart)
				r.Post("/close", cartHandler.CloseCart)
				r.Post("/toggle", cartHandler.ToggleCart)
			})

			r.Route("/api/v1/wishlist", func(r chi.Router) {
				r.Use(SessionIDFromHeader(false))

				r.Get("/", wishlistHandler.GetWishlist)
				r.Get("/{productId}", wishlistHandler.Contains)
				r.Put("/{productId}", wishlistHandler.Add)
				r.Delete("/{productId}", wishlistHandler.Remove)
			})
		})
	})

	return r
}
