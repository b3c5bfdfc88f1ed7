// Package storage defines the persistence interface for the series catalog.
package storage

import (
	"context"

	"github.com/substream/substream/internal/models"
)

// Storage defines catalog persistence operations.
type Storage interface {
	// Series operations
	CreateSeries(ctx context.Context, series *models.Series) error
	GetSeriesByID(ctx context.Context, id int64) (*models.Series, error)
	GetSeriesByName(ctx context.Context, name string) (*models.Series, error)
	ListSeries(ctx context.Context) ([]*models.Series, error)

	// Term table operations (subtitle-derived frequencies)
	ListTermEntries(ctx context.Context) ([]models.TermEntry, error)
	ReplaceTermCounts(ctx context.Context, seriesID int64, counts map[string]float64) error

	// Rating operations
	UpsertRating(ctx context.Context, rating *models.Rating) error
	GetRatings(ctx context.Context, username string) ([]*models.Rating, error)
	DeleteRating(ctx context.Context, username, seriesName string) error

	// Watchlist operations
	AddToWatchlist(ctx context.Context, username string, seriesID int64) error
	RemoveFromWatchlist(ctx context.Context, username string, seriesID int64) error
	ListWatchlist(ctx context.Context, username string) ([]*models.Series, error)

	// Account operations
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// Stats
	CountSeries(ctx context.Context) (int64, error)
	CountTermEntries(ctx context.Context) (int64, error)

	Close() error
}
