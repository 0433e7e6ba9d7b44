package database

import (
	"time"
)

// Source is a registered upstream's fetch bookkeeping record.
type Source struct {
	ID            string // Database UUID
	PluginID      string
	Name          string
	URL           string
	Kind          string
	LastFetchedAt *time.Time
	NextFetchAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time // Tracks last successful processing
}

// Item is a stored normalized record. Tags and Metadata are kept as
// JSON text columns; the canonical in-memory form lives in
// app/normalize.
type Item struct {
	ID                 string
	PluginID           string
	RecordID           string
	Title              string
	Summary            string
	URL                string
	PublishedAt        time.Time
	Source             string
	Category           string
	Tags               []string
	Priority           string
	TrustRating        int
	VerificationStatus string
	DataQuality        int
	Metadata           map[string]any
	ContentHash        string
	CreatedAt          time.Time

	ContentExtractedAt      *time.Time
	ContentExtractionStatus string // pending, success, failed, skipped
}
