package http

import (
	"context"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/go-playground/validator/v10"
	"github.com/robustonian/url-shortener/internal/models"
)

// URLService defines the interface for the core URL shortening business logic.
type URLService interface {
	// ShortenURL returns a mapping for the target URL, creating one if it
	// doesn't exist yet. Returns service.ErrInvalidURL for rejected input.
	ShortenURL(ctx context.Context, targetURL string) (*models.URL, error)

	// ResolveShortCode retrieves the mapping for a short code and counts
	// the visit. Returns database.ErrURLNotFound for unknown codes.
	ResolveShortCode(ctx context.Context, code string) (*models.URL, error)

	// GetURLStats retrieves the mapping for a short code without side
	// effects. Returns database.ErrURLNotFound for unknown codes.
	GetURLStats(ctx context.Context, code string) (*models.URL, error)
}

// NewRouter initializes and returns a new HTTP router with all routes and middleware configured.
func NewRouter(logger *httplog.Logger, urlSvc URLService, baseURL string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	validate := getValidate()

	r.Get("/ping", handlePing)
	r.Post("/shorten", handleShortenURL(urlSvc, validate, baseURL))
	r.Get("/_stats/{code}", handleGetURLStats(urlSvc))
	r.Get("/{code}", handleRedirect(urlSvc))

	return r
}

// getValidate initializes a new validator instance for validating incoming request payloads.
// It customizes tag name extraction from struct fields to match JSON tags.
func getValidate() *validator.Validate {
	validate := validator.New()

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return validate
}
