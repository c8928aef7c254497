package models

import "time"

// URL represents a mapping between a short code and its target URL.
type URL struct {
	// ID is the unique identifier for the mapping record.
	ID int64
	// Code is the short code associated with the target URL.
	Code string
	// TargetURL is the original, full-length URL that the code redirects to.
	TargetURL string
	// Visits tracks the number of times the short code has been resolved.
	Visits int64
	// CreatedAt is the timestamp indicating when the mapping was created.
	CreatedAt time.Time
	// UpdatedAt is the timestamp indicating when the mapping was last updated.
	UpdatedAt time.Time
}
