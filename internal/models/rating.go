package models

import "fmt"

// Rating is one user's rating of a series, unique per (username, series name).
type Rating struct {
	Username   string  `json:"username" db:"username"`
	SeriesName string  `json:"series_name" db:"tvshow_name"`
	Rating     float64 `json:"rating" db:"rating"`
}

// Validate checks that the rating is within the allowed [1,5] range.
// Out-of-range values are rejected at the boundary before reaching the engine.
func (r *Rating) Validate() error {
	if r.Username == "" {
		return fmt.Errorf("username cannot be empty")
	}
	if r.SeriesName == "" {
		return fmt.Errorf("series name cannot be empty")
	}
	if r.Rating < 1 || r.Rating > 5 {
		return fmt.Errorf("rating must be between 1 and 5, got %g", r.Rating)
	}
	return nil
}
