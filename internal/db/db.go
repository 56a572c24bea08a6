package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"moviereview/internal/review"
	"moviereview/pkg/models"
)

var ErrNotFound = errors.New("not found")

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, fmt.Errorf("database path is required")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	// One process-wide connection.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) init() error {
	queryMovies := `
	CREATE TABLE IF NOT EXISTS movies (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tmdb_id INTEGER NOT NULL UNIQUE,
		imdb_id TEXT,
		original_title TEXT,
		default_title TEXT,
		year INTEGER,
		runtime INTEGER
	);`

	// One review per movie, looked up by movie_id.
	queryReviews := `
	CREATE TABLE IF NOT EXISTS reviews (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		movie_id INTEGER,
		review TEXT,
		modification_date TEXT,
		creation_date TEXT,
		FOREIGN KEY(movie_id) REFERENCES movies(id)
	);`

	if _, err := s.db.Exec(queryMovies); err != nil {
		return fmt.Errorf("failed to create movies table: %w", err)
	}
	if _, err := s.db.Exec(queryReviews); err != nil {
		return fmt.Errorf("failed to create reviews table: %w", err)
	}
	return nil
}

// InTx runs fn in a transaction and commits only if fn returns nil.
func (s *Store) InTx(ctx context.Context, fn func(review.Repository) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&Tx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// Tx is the transactional side of the store.
type Tx struct {
	tx *sql.Tx
}

func (t *Tx) FindMovieID(ctx context.Context, tmdbID int64) (int64, bool, error) {
	var id int64
	err := t.tx.QueryRowContext(ctx, "SELECT id FROM movies WHERE tmdb_id = ?", tmdbID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

func (t *Tx) InsertMovie(ctx context.Context, m models.Movie) (int64, error) {
	res, err := t.tx.ExecContext(ctx, `
		INSERT INTO movies (tmdb_id, imdb_id, original_title, default_title, year, runtime)
		VALUES (?, ?, ?, ?, ?, ?)`,
		m.TMDBID, m.IMDBID, m.OriginalTitle, m.DefaultTitle, nullInt(m.Year), nullInt(m.Runtime),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (t *Tx) FindReviewByMovie(ctx context.Context, movieID int64) (*models.Review, error) {
	var r models.Review
	err := t.tx.QueryRowContext(ctx, `
		SELECT id, movie_id, review, creation_date, modification_date
		FROM reviews WHERE movie_id = ? ORDER BY id LIMIT 1`, movieID,
	).Scan(&r.ID, &r.MovieID, &r.Text, &r.CreationDate, &r.ModificationDate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (t *Tx) InsertReview(ctx context.Context, r models.Review) (int64, error) {
	res, err := t.tx.ExecContext(ctx, `
		INSERT INTO reviews (movie_id, review, modification_date, creation_date)
		VALUES (?, ?, ?, ?)`,
		r.MovieID, r.Text, r.ModificationDate, r.CreationDate,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// UpdateReview rewrites the text and modification date of a single review.
// creation_date is never touched.
func (t *Tx) UpdateReview(ctx context.Context, reviewID int64, text, modificationDate string) error {
	res, err := t.tx.ExecContext(ctx,
		"UPDATE reviews SET review = ?, modification_date = ? WHERE id = ?",
		text, modificationDate, reviewID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("review %d: %w", reviewID, ErrNotFound)
	}
	return nil
}

const reviewedMovieColumns = `
	m.id, m.tmdb_id, m.imdb_id, m.original_title, m.default_title, m.year, m.runtime,
	r.id, r.movie_id, r.review, r.creation_date, r.modification_date`

func scanReviewedMovie(scan func(dest ...any) error) (models.ReviewedMovie, error) {
	var rm models.ReviewedMovie
	var imdbID sql.NullString
	var year, runtime sql.NullInt64
	err := scan(
		&rm.MovieID, &rm.Movie.TMDBID, &imdbID, &rm.Movie.OriginalTitle, &rm.Movie.DefaultTitle, &year, &runtime,
		&rm.Review.ID, &rm.Review.MovieID, &rm.Review.Text, &rm.Review.CreationDate, &rm.Review.ModificationDate,
	)
	if err != nil {
		return models.ReviewedMovie{}, err
	}
	rm.Movie.IMDBID = imdbID.String
	rm.Movie.Year = intPtr(year)
	rm.Movie.Runtime = intPtr(runtime)
	return rm, nil
}

// ListReviews returns reviewed movies, most recently modified first. A
// non-empty filter matches either title.
func (s *Store) ListReviews(ctx context.Context, limit int, filter string) ([]models.ReviewedMovie, error) {
	query := "SELECT" + reviewedMovieColumns + `
	FROM reviews r JOIN movies m ON m.id = r.movie_id`

	var args []any
	if filter != "" {
		query += " WHERE m.original_title LIKE ? OR m.default_title LIKE ?"
		args = append(args, "%"+filter+"%", "%"+filter+"%")
	}

	query += " ORDER BY r.modification_date DESC, r.id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer rows.Close()

	var results []models.ReviewedMovie
	for rows.Next() {
		rm, err := scanReviewedMovie(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		results = append(results, rm)
	}
	return results, rows.Err()
}

func (s *Store) GetReview(ctx context.Context, movieID int64) (models.ReviewedMovie, error) {
	row := s.db.QueryRowContext(ctx, "SELECT"+reviewedMovieColumns+`
	FROM reviews r JOIN movies m ON m.id = r.movie_id
	WHERE m.id = ? ORDER BY r.id LIMIT 1`, movieID)

	rm, err := scanReviewedMovie(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ReviewedMovie{}, fmt.Errorf("review for movie %d: %w", movieID, ErrNotFound)
	}
	return rm, err
}

// DeleteEmptyReviews removes reviews whose text is blank and reports how
// many were removed.
func (s *Store) DeleteEmptyReviews(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM reviews WHERE TRIM(COALESCE(review, ''), ' '||char(9)||char(10)||char(13)) = ''")
	if err != nil {
		return 0, fmt.Errorf("failed to delete empty reviews: %w", err)
	}
	return res.RowsAffected()
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}
