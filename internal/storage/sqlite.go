// Package storage provides the SQLite implementation of the Storage interface.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/substream/substream/internal/models"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes
// the schema. Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS tvshow (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		synopsis TEXT,
		image_url TEXT
	);

	CREATE TABLE IF NOT EXISTS tvshow_term (
		tvshow_id INTEGER NOT NULL,
		term TEXT NOT NULL,
		count REAL NOT NULL,
		PRIMARY KEY (tvshow_id, term),
		FOREIGN KEY (tvshow_id) REFERENCES tvshow(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_tvshow_term_show ON tvshow_term(tvshow_id);

	CREATE TABLE IF NOT EXISTS user (
		username TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS ratings (
		username TEXT NOT NULL,
		tvshow_name TEXT NOT NULL,
		rating REAL NOT NULL,
		PRIMARY KEY (username, tvshow_name)
	);

	CREATE TABLE IF NOT EXISTS watchlist (
		username TEXT NOT NULL,
		tvshow_id INTEGER NOT NULL,
		PRIMARY KEY (username, tvshow_id),
		FOREIGN KEY (tvshow_id) REFERENCES tvshow(id) ON DELETE CASCADE
	);
	`
	_, err := db.Exec(schema)
	return err
}

// CreateSeries inserts a series. The generated id is written back to series.ID.
func (s *SQLiteStorage) CreateSeries(ctx context.Context, series *models.Series) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO tvshow (name, synopsis, image_url) VALUES (?, ?, ?)`,
		series.Name, series.Synopsis, series.ImageURL,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	series.ID = id
	return nil
}

// GetSeriesByID returns a series by id.
func (s *SQLiteStorage) GetSeriesByID(ctx context.Context, id int64) (*models.Series, error) {
	return s.scanSeries(s.db.QueryRowContext(ctx,
		`SELECT id, name, COALESCE(synopsis, ''), COALESCE(image_url, '')
		 FROM tvshow WHERE id = ?`, id))
}

// GetSeriesByName returns a series by name. Lookup is case-insensitive;
// the stored casing is returned.
func (s *SQLiteStorage) GetSeriesByName(ctx context.Context, name string) (*models.Series, error) {
	return s.scanSeries(s.db.QueryRowContext(ctx,
		`SELECT id, name, COALESCE(synopsis, ''), COALESCE(image_url, '')
		 FROM tvshow WHERE lower(name) = lower(?)`, name))
}

func (s *SQLiteStorage) scanSeries(row *sql.Row) (*models.Series, error) {
	var series models.Series
	err := row.Scan(&series.ID, &series.Name, &series.Synopsis, &series.ImageURL)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("series not found")
	}
	if err != nil {
		return nil, err
	}
	return &series, nil
}

// ListSeries returns all series ordered by id.
func (s *SQLiteStorage) ListSeries(ctx context.Context) ([]*models.Series, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, COALESCE(synopsis, ''), COALESCE(image_url, '')
		 FROM tvshow ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*models.Series
	for rows.Next() {
		var series models.Series
		if err := rows.Scan(&series.ID, &series.Name, &series.Synopsis, &series.ImageURL); err != nil {
			return nil, err
		}
		list = append(list, &series)
	}
	return list, rows.Err()
}

// ListTermEntries returns all positive-count term entries ordered by series id.
func (s *SQLiteStorage) ListTermEntries(ctx context.Context) ([]models.TermEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT tvshow_id, term, count FROM tvshow_term
		 WHERE count > 0 ORDER BY tvshow_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.TermEntry
	for rows.Next() {
		var entry models.TermEntry
		if err := rows.Scan(&entry.SeriesID, &entry.Term, &entry.Count); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// ReplaceTermCounts replaces the whole term table of one series in a transaction.
func (s *SQLiteStorage) ReplaceTermCounts(ctx context.Context, seriesID int64, counts map[string]float64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM tvshow_term WHERE tvshow_id = ?`, seriesID); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO tvshow_term (tvshow_id, term, count) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for term, count := range counts {
		if count <= 0 {
			continue
		}
		if _, err := stmt.ExecContext(ctx, seriesID, term, count); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// UpsertRating inserts or overwrites the rating for (username, series name).
func (s *SQLiteStorage) UpsertRating(ctx context.Context, rating *models.Rating) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ratings (username, tvshow_name, rating) VALUES (?, ?, ?)
		 ON CONFLICT(username, tvshow_name) DO UPDATE SET rating = excluded.rating`,
		rating.Username, rating.SeriesName, rating.Rating,
	)
	return err
}

// GetRatings returns all ratings by one user.
func (s *SQLiteStorage) GetRatings(ctx context.Context, username string) ([]*models.Rating, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT username, tvshow_name, rating FROM ratings WHERE username = ?`, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ratings []*models.Rating
	for rows.Next() {
		var rating models.Rating
		if err := rows.Scan(&rating.Username, &rating.SeriesName, &rating.Rating); err != nil {
			return nil, err
		}
		ratings = append(ratings, &rating)
	}
	return ratings, rows.Err()
}

// DeleteRating removes one rating.
func (s *SQLiteStorage) DeleteRating(ctx context.Context, username, seriesName string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM ratings WHERE username = ? AND tvshow_name = ?`, username, seriesName)
	return err
}

// AddToWatchlist adds a series to the user's watchlist (idempotent).
func (s *SQLiteStorage) AddToWatchlist(ctx context.Context, username string, seriesID int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO watchlist (username, tvshow_id) VALUES (?, ?)`,
		username, seriesID)
	return err
}

// RemoveFromWatchlist removes a series from the user's watchlist.
func (s *SQLiteStorage) RemoveFromWatchlist(ctx context.Context, username string, seriesID int64) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM watchlist WHERE username = ? AND tvshow_id = ?`, username, seriesID)
	return err
}

// ListWatchlist returns the series on the user's watchlist ordered by id.
func (s *SQLiteStorage) ListWatchlist(ctx context.Context, username string) ([]*models.Series, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT t.id, t.name, COALESCE(t.synopsis, ''), COALESCE(t.image_url, '')
		 FROM watchlist w JOIN tvshow t ON t.id = w.tvshow_id
		 WHERE w.username = ? ORDER BY t.id`, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*models.Series
	for rows.Next() {
		var series models.Series
		if err := rows.Scan(&series.ID, &series.Name, &series.Synopsis, &series.ImageURL); err != nil {
			return nil, err
		}
		list = append(list, &series)
	}
	return list, rows.Err()
}

// CreateUser inserts a new account.
func (s *SQLiteStorage) CreateUser(ctx context.Context, user *models.User) error {
	user.CreatedAt = time.Now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user (username, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		user.Username, user.Email, user.PasswordHash, user.CreatedAt)
	return err
}

// GetUser returns an account by username.
func (s *SQLiteStorage) GetUser(ctx context.Context, username string) (*models.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT username, email, password_hash, created_at FROM user WHERE username = ?`, username))
}

// GetUserByEmail returns an account by email.
func (s *SQLiteStorage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT username, email, password_hash, created_at FROM user WHERE email = ?`, email))
}

func (s *SQLiteStorage) scanUser(row *sql.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(&user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user not found")
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CountSeries returns the number of series in the catalog.
func (s *SQLiteStorage) CountSeries(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tvshow`).Scan(&n)
	return n, err
}

// CountTermEntries returns the number of term entries.
func (s *SQLiteStorage) CountTermEntries(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tvshow_term`).Scan(&n)
	return n, err
}

// Close closes the database.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
