package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/saikat7890/Lost-and-Found-System/internal/service"
	"github.com/saikat7890/Lost-and-Found-System/pkg/health"
	"github.com/saikat7890/Lost-and-Found-System/pkg/httputil"
	"github.com/saikat7890/Lost-and-Found-System/pkg/middleware"
)

// Banner is the body of GET /.
const Banner = "TrackItDown API is running!"

// RouterConfig collects what the router mounts.
type RouterConfig struct {
	ServiceName string
	Items       *service.ItemService
	Health      *health.Handler
	VerifyToken middleware.TokenValidator
	CORS        middleware.CORSConfig
	// RateLimiter throttles mutating item routes when set.
	RateLimiter *middleware.RateLimiter
	// Media serves stored images under /media/ when set.
	Media http.Handler
	// MediaCacheMaxAge is the Cache-Control max-age, in seconds, of served
	// images. Zero sends no header.
	MediaCacheMaxAge int
	// PprofCIDRs enables /debug/pprof for these networks when non-empty.
	PprofCIDRs []string
	Logger     *slog.Logger
}

// NewRouter creates a chi router with all item service routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(middleware.PrometheusMetrics(cfg.ServiceName))
	r.Use(middleware.CORS(cfg.CORS))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": Banner})
	})

	// Health check endpoints
	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	if len(cfg.PprofCIDRs) > 0 {
		middleware.RegisterPprof(r, cfg.PprofCIDRs, cfg.Logger)
	}

	if cfg.Media != nil {
		media := cfg.Media
		if cfg.MediaCacheMaxAge > 0 {
			// Object keys are never reused.
			media = middleware.CacheControl(cfg.MediaCacheMaxAge, true)(media)
		}
		r.Handle("/media/*", media)
	}

	items := NewItemHandler(cfg.Items, cfg.Logger)

	r.Route("/api/items", func(r chi.Router) {
		r.Get("/", items.ListItems)
		r.Get("/{id}", items.GetItem)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.VerifyToken))

			r.Get("/my-items", items.ListMyItems)

			r.Group(func(r chi.Router) {
				if cfg.RateLimiter != nil {
					r.Use(cfg.RateLimiter.Middleware)
				}
				r.Post("/", items.CreateItem)
				r.Put("/{id}", items.UpdateItem)
				r.Delete("/{id}", items.DeleteItem)
			})
		})
	})

	return r
}
