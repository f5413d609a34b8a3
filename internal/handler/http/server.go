package http

import (
	"net/http"
	"shortlink-backend/internal/metrics"
	"shortlink-backend/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

const maxRequestBodyBytes = 1 << 20

// Options holds the HTTP-facing settings of the server.
type Options struct {
	BaseURL        string
	AllowedOrigins []string
}

// Server HTTP сервер с обработчиками
type Server struct {
	linksHandler    *LinksHandler
	redirectHandler *RedirectHandler
	healthHandler   *HealthHandler
	allowedOrigins  []string
	log             *zap.Logger
}

// NewServer создает новый HTTP сервер
func NewServer(urlShortener *service.URLShortenerService, storage StorageStatus, opts Options, log *zap.Logger) *Server {
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	return &Server{
		linksHandler:    NewLinksHandler(urlShortener, log.Named("links"), opts.BaseURL),
		redirectHandler: NewRedirectHandler(urlShortener, log.Named("redirect")),
		healthHandler:   NewHealthHandler(storage, log.Named("health")),
		allowedOrigins:  origins,
		log:             log,
	}
}

// SetupRoutes настраивает маршруты
func (s *Server) SetupRoutes() http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log.Named("http")))
	r.Use(recoverer(s.log.Named("http")))
	r.Use(metrics.Middleware)
	r.Use(middleware.RequestSize(maxRequestBodyBytes))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusNotFound, notFoundResponse)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusMethodNotAllowed, methodNotAllowedResponse)
	})

	r.Handle("/metrics", metrics.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.healthHandler.Health)

		r.Route("/shorturls", func(r chi.Router) {
			r.Post("/", s.linksHandler.CreateShortURL)
			r.Get("/{shortcode}", s.linksHandler.GetStatistics)
		})
	})

	// Redirect endpoint - статические маршруты выше имеют приоритет
	r.Get("/{shortcode}", s.redirectHandler.HandleRedirect)

	return r
}
