package models

// ScoredSeries is a single ranked hit: a series name and its score.
type ScoredSeries struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// SearchResult is the enriched form of a hit, carrying catalog metadata.
type SearchResult struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	ImageURL string  `json:"image_url,omitempty"`
	Synopsis string  `json:"synopsis"`
	Score    float64 `json:"score"`
}

// SearchResponse is the response for a search request.
type SearchResponse struct {
	Query     string         `json:"query"`
	Count     int            `json:"count"`
	Results   []SearchResult `json:"results"`
	QueryTime int64          `json:"query_time_ms"`
}

// RecommendResponse is the response for a recommendation request.
type RecommendResponse struct {
	For             string         `json:"for"`
	Recommendations []SearchResult `json:"recommendations"`
}
