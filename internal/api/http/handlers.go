package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/robustonian/url-shortener/internal/database"
	"github.com/robustonian/url-shortener/internal/service"
	"github.com/robustonian/url-shortener/pkg/response"
)

// handlePing handles health check requests to ensure the server is running.
func handlePing(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "pong")
}

// shortenRequest represents the request payload for shortening a URL.
type shortenRequest struct {
	URL string `json:"url" validate:"required"`
}

// shortenResponse is the wire format of a successful shorten call. The
// shape is part of the external contract, so it carries no envelope.
type shortenResponse struct {
	Code     string `json:"code"`
	ShortURL string `json:"short_url"`
}

// statsResponse is the wire format of a successful stats call.
type statsResponse struct {
	Code   string `json:"code"`
	Target string `json:"target"`
	Visits int64  `json:"visits"`
}

// handleShortenURL handles POST requests to shorten a URL.
//
// The handler validates the input, calls the URL shortening service, and
// returns the short code together with the absolute short URL. Submitting
// an already shortened URL returns the existing code.
func handleShortenURL(svc URLService, validate *validator.Validate, baseURL string) http.HandlerFunc {
	const op = "api.http.handleShortenURL"

	return func(w http.ResponseWriter, r *http.Request) {
		var req shortenRequest

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			if errors.Is(err, io.EOF) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.EmptyRequestBodyResponse)
				return
			}

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.BadRequestResponse)
			return
		}

		if err := validate.Struct(req); err != nil {
			render.Status(r, http.StatusUnprocessableEntity)
			render.JSON(w, r, response.ValidationErrorResponse(err))
			return
		}

		url, err := svc.ShortenURL(r.Context(), req.URL)
		if err != nil {
			if errors.Is(err, service.ErrInvalidURL) {
				render.Status(r, http.StatusUnprocessableEntity)
				render.JSON(w, r, response.ValidationErrorResponse(errors.Unwrap(err)))
				return
			}

			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, shortenResponse{
			Code:     url.Code,
			ShortURL: baseURL + "/" + url.Code,
		})
	}
}

// handleRedirect handles GET requests for a short code.
//
// The handler resolves the code, counts the visit and redirects to the
// target URL with a 307, so clients preserve the request method.
func handleRedirect(svc URLService) http.HandlerFunc {
	const op = "api.http.handleRedirect"

	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")

		url, err := svc.ResolveShortCode(r.Context(), code)
		if err != nil {
			if errors.Is(err, database.ErrURLNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.ResourceNotFoundResponse)
				return
			}

			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		http.Redirect(w, r, url.TargetURL, http.StatusTemporaryRedirect)
	}
}

// handleGetURLStats handles GET requests for the statistics of a short code.
//
// The handler returns the code, the target URL and the visit count without
// affecting the counter.
func handleGetURLStats(svc URLService) http.HandlerFunc {
	const op = "api.http.handleGetURLStats"

	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")

		url, err := svc.GetURLStats(r.Context(), code)
		if err != nil {
			if errors.Is(err, database.ErrURLNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.ResourceNotFoundResponse)
				return
			}

			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, statsResponse{
			Code:   url.Code,
			Target: url.TargetURL,
			Visits: url.Visits,
		})
	}
}
