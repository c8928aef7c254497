package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/robustonian/url-shortener/internal/database"
	"github.com/robustonian/url-shortener/internal/models"
)

type urlRecord struct {
	ID        int64     `db:"id"`
	Code      string    `db:"code"`
	TargetURL string    `db:"target_url"`
	Visits    int64     `db:"visits"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r *urlRecord) ToURL() *models.URL {
	return &models.URL{
		ID:        r.ID,
		Code:      r.Code,
		TargetURL: r.TargetURL,
		Visits:    r.Visits,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// URLRepository persists URL mappings in a local SQLite file.
type URLRepository struct {
	db *sqlx.DB
}

func NewURLRepository(db *sqlx.DB) *URLRepository {
	return &URLRepository{
		db: db,
	}
}

// Create inserts a new mapping with a zero visit count. A unique violation
// on the code column maps to database.ErrCodeExists, one on the target_url
// column to database.ErrTargetURLExists.
func (r *URLRepository) Create(ctx context.Context, code, targetURL string) (*models.URL, error) {
	const op = "database.sqlite.URLRepository.Create"

	rec := new(urlRecord)
	query := `INSERT INTO url_mappings(code, target_url)
		VALUES (?, ?)
		RETURNING *`

	err := r.db.GetContext(ctx, rec, query, code, targetURL)
	if err != nil {
		if isUniqueViolationError(err, "target_url") {
			return nil, fmt.Errorf("%s: %w", op, database.ErrTargetURLExists)
		}
		if isUniqueViolationError(err, "code") {
			return nil, fmt.Errorf("%s: %w", op, database.ErrCodeExists)
		}

		return nil, fmt.Errorf("%s: failed to create url mapping: %w", op, err)
	}

	return rec.ToURL(), nil
}

// GetByCode retrieves a mapping by its short code without side effects.
func (r *URLRepository) GetByCode(ctx context.Context, code string) (*models.URL, error) {
	const op = "database.sqlite.URLRepository.GetByCode"

	rec := new(urlRecord)
	query := `SELECT * FROM url_mappings
		WHERE code = ?`

	err := r.db.GetContext(ctx, rec, query, code)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, database.ErrURLNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get url mapping: %w", op, err)
	}

	return rec.ToURL(), nil
}

// GetByTargetURL retrieves a mapping by exact target URL match.
func (r *URLRepository) GetByTargetURL(ctx context.Context, targetURL string) (*models.URL, error) {
	const op = "database.sqlite.URLRepository.GetByTargetURL"

	rec := new(urlRecord)
	query := `SELECT * FROM url_mappings
		WHERE target_url = ?`

	err := r.db.GetContext(ctx, rec, query, targetURL)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, database.ErrURLNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get url mapping: %w", op, err)
	}

	return rec.ToURL(), nil
}

// IncrementVisits bumps the visit counter in a single statement, so
// concurrent resolves never lose updates.
func (r *URLRepository) IncrementVisits(ctx context.Context, code string) (*models.URL, error) {
	const op = "database.sqlite.URLRepository.IncrementVisits"

	rec := new(urlRecord)
	query := `UPDATE url_mappings
		SET visits = visits + 1, updated_at = CURRENT_TIMESTAMP
		WHERE code = ?
		RETURNING *`

	err := r.db.GetContext(ctx, rec, query, code)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, database.ErrURLNotFound)
		}

		return nil, fmt.Errorf("%s: failed to increment visits: %w", op, err)
	}

	return rec.ToURL(), nil
}
