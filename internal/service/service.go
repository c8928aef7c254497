package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/robustonian/url-shortener/internal/database"
	"github.com/robustonian/url-shortener/internal/models"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// codeAlphabet is the 62-symbol alphabet short codes are drawn from. The
// default nanoid alphabet also contains '-' and '_', which codes must not.
const codeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

var (
	// ErrMaxRetriesExceeded is returned when the maximum number of retries for generating a short code is exceeded.
	ErrMaxRetriesExceeded = errors.New("maximum retries exceeded for generating short code")
	// ErrInvalidURL is returned when the submitted URL fails validation.
	// It is always wrapped with the reason the URL was rejected.
	ErrInvalidURL = errors.New("invalid url")
)

// URLRepository defines the interface for working with URL mappings at the business logic layer.
type URLRepository interface {
	// Create inserts a new mapping with a zero visit count.
	// Returns database.ErrCodeExists or database.ErrTargetURLExists on
	// the corresponding unique violation.
	Create(ctx context.Context, code, targetURL string) (*models.URL, error)

	// GetByCode retrieves a mapping by its short code without side effects.
	// Returns database.ErrURLNotFound if the code doesn't exist.
	GetByCode(ctx context.Context, code string) (*models.URL, error)

	// GetByTargetURL retrieves a mapping by exact target URL match.
	// Returns database.ErrURLNotFound if the URL hasn't been shortened.
	GetByTargetURL(ctx context.Context, targetURL string) (*models.URL, error)

	// IncrementVisits atomically increases the visit counter for a code
	// and returns the updated mapping.
	// Returns database.ErrURLNotFound if the code doesn't exist.
	IncrementVisits(ctx context.Context, code string) (*models.URL, error)
}

// URLService provides methods to manage URL shortening operations.
// The service uses a URLRepository interface to interact with the underlying database.
type URLService struct {
	repo       URLRepository
	codeLength int
}

// NewURLService creates a new instance of URLService with the provided repository and short code length.
func NewURLService(repo URLRepository, codeLength int) *URLService {
	return &URLService{
		repo:       repo,
		codeLength: codeLength,
	}
}

// validateURL checks the submitted URL against the acceptance rules: not
// empty after trimming, no whitespace anywhere, and an exact http:// or
// https:// scheme prefix. The rest of the string is accepted as-is.
func validateURL(targetURL string) error {
	switch {
	case strings.TrimSpace(targetURL) == "":
		return fmt.Errorf("%w: url must not be empty", ErrInvalidURL)
	case strings.IndexFunc(targetURL, unicode.IsSpace) >= 0:
		return fmt.Errorf("%w: url must not contain whitespace", ErrInvalidURL)
	case !strings.HasPrefix(targetURL, "http://") && !strings.HasPrefix(targetURL, "https://"):
		return fmt.Errorf("%w: url must start with http:// or https://", ErrInvalidURL)
	}

	return nil
}

// ShortenURL returns a mapping for the provided target URL, creating one if
// it doesn't exist yet. Re-submitting an already shortened URL returns the
// existing mapping unchanged. For a new URL it attempts to generate a unique
// short code up to a maximum number of retries.
func (s *URLService) ShortenURL(ctx context.Context, targetURL string) (*models.URL, error) {
	const op = "service.URLService.ShortenURL"
	const maxRetries = 5

	if err := validateURL(targetURL); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	url, err := s.repo.GetByTargetURL(ctx, targetURL)
	if err == nil {
		return url, nil
	}
	if !errors.Is(err, database.ErrURLNotFound) {
		return nil, fmt.Errorf("%s: failed to check for existing mapping: %w", op, err)
	}

	for i := 0; i < maxRetries; i++ {
		code, err := gonanoid.Generate(codeAlphabet, s.codeLength)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to generate short code: %w", op, err)
		}

		url, err := s.repo.Create(ctx, code, targetURL)
		if err != nil {
			if errors.Is(err, database.ErrCodeExists) {
				continue
			}

			if errors.Is(err, database.ErrTargetURLExists) {
				// Lost the insert race against a concurrent request for
				// the same target URL. The winner's mapping is the result.
				url, err := s.repo.GetByTargetURL(ctx, targetURL)
				if err != nil {
					return nil, fmt.Errorf("%s: failed to get existing mapping: %w", op, err)
				}

				return url, nil
			}

			return nil, fmt.Errorf("%s: failed to shorten url: %w", op, err)
		}

		return url, nil
	}

	return nil, fmt.Errorf("%s: %w", op, ErrMaxRetriesExceeded)
}

// ResolveShortCode retrieves the mapping associated with the provided short
// code and increments its visit counter. The increment and the read happen
// in one repository operation, so a stats read immediately after a resolve
// reflects the visit.
func (s *URLService) ResolveShortCode(ctx context.Context, code string) (*models.URL, error) {
	const op = "service.URLService.ResolveShortCode"

	url, err := s.repo.IncrementVisits(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to resolve short code: %w", op, err)
	}

	return url, nil
}

// GetURLStats retrieves the mapping associated with the provided short code
// without touching the visit counter.
func (s *URLService) GetURLStats(ctx context.Context, code string) (*models.URL, error) {
	const op = "service.URLService.GetURLStats"

	url, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get url stats: %w", op, err)
	}

	return url, nil
}
