// Package cli provides output helpers for the Substream command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/substream/substream/internal/models"
	"github.com/substream/substream/pkg/utils"
)

// OutputFormat is the format for CLI output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat converts a flag value to an OutputFormat.
func ParseOutputFormat(value string) (OutputFormat, error) {
	switch value {
	case "text", "":
		return OutputText, nil
	case "json":
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text or json", value)
	}
}

// WriteSearchResults writes a search response to w in the given format.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, response)
	}
	fmt.Fprintf(w, "\nFound %d results for %q in %dms\n\n", response.Count, response.Query, response.QueryTime)
	for i, result := range response.Results {
		writeOneResult(w, i+1, result)
	}
	return nil
}

// WriteRecommendations writes a recommendation response to w in the given format.
func WriteRecommendations(w io.Writer, response *models.RecommendResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, response)
	}
	fmt.Fprintf(w, "\n%d recommendations for %s\n\n", len(response.Recommendations), response.For)
	for i, result := range response.Recommendations {
		writeOneResult(w, i+1, result)
	}
	return nil
}

func writeOneResult(w io.Writer, rank int, result models.SearchResult) {
	fmt.Fprintf(w, "%2d. %s (id %d, score %.3f)\n", rank, result.Name, result.ID, result.Score)
	if result.Synopsis != "" {
		fmt.Fprintf(w, "    %s\n", utils.Truncate(result.Synopsis, 160))
	}
}

func writeJSON(w io.Writer, payload interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
