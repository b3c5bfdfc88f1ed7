// Package models defines core data structures for series, ratings, and search results.
package models

// Series represents a television series in the catalog.
// Name is unique and used as the join key throughout the engine;
// lookups are case-insensitive but the original casing is preserved for display.
type Series struct {
	ID       int64  `json:"id" db:"id"`
	Name     string `json:"name" db:"name"`
	Synopsis string `json:"synopsis,omitempty" db:"synopsis"`
	ImageURL string `json:"image_url,omitempty" db:"image_url"`
}

// TermEntry is a subtitle-derived term frequency for one series.
// Count is a non-negative real frequency (may be scaled, not necessarily integral).
type TermEntry struct {
	SeriesID int64   `json:"series_id" db:"tvshow_id"`
	Term     string  `json:"term" db:"term"`
	Count    float64 `json:"count" db:"count"`
}
