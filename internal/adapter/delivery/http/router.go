// Package http provides the HTTP delivery layer for the URL shortener service.
// It contains the handlers that create and resolve short codes, request
// validation and the JSON shapes of responses.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/go-playground/validator/v10"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/vadimbarashkov/url-shortener-kv/docs"
)

// NewRouter initializes and returns a new Chi router configured with middleware and routes.
// Short links are built as redirectBaseURL + "/u/" + code. A nil metrics handler disables /metrics.
func NewRouter(logger *httplog.Logger, urlUseCase urlUseCase, redirectBaseURL string, metrics http.Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"POST", "GET", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           84600,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/swagger.yml"),
	))

	r.Get("/docs/swagger.yml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		w.Write(docs.Swagger)
	})

	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}

	r.Get("/api/v1/ping", handlePing)

	h := newURLHandler(urlUseCase, validator.New(), redirectBaseURL)

	r.Get("/", handleRoot)
	r.Post("/url", h.shortenURL)
	r.Get("/u/", h.resolveShortCode)
	r.Get("/u/{code}", h.resolveShortCode)

	return r
}
