// Package review records a movie review: it looks a movie up, lets the user
// pick a candidate and stores the movie and its review in one transaction.
package review

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"go.uber.org/zap"
	"moviereview/pkg/models"
)

// DateLayout is the layout of stored creation and modification dates.
const DateLayout = "2006-01-02"

const DefaultLimit = 3

var ErrNoResults = errors.New("no movies found")

// Repository is the storage seen from inside a transaction.
type Repository interface {
	// FindMovieID reports the internal id of the movie with the given TMDB id.
	FindMovieID(ctx context.Context, tmdbID int64) (int64, bool, error)
	InsertMovie(ctx context.Context, movie models.Movie) (int64, error)
	// FindReviewByMovie returns nil when the movie has no review yet.
	FindReviewByMovie(ctx context.Context, movieID int64) (*models.Review, error)
	InsertReview(ctx context.Context, r models.Review) (int64, error)
	UpdateReview(ctx context.Context, reviewID int64, text, modificationDate string) error
}

// Transactor runs fn inside a transaction, committing only when fn succeeds.
type Transactor interface {
	InTx(ctx context.Context, fn func(Repository) error) error
}

type Searcher interface {
	Search(ctx context.Context, title string, year int) iter.Seq2[models.Movie, error]
}

type Selector interface {
	Select(ctx context.Context, movies []models.Movie) (models.Movie, error)
}

type Editor interface {
	Edit(initText string) (string, error)
}

// ReviewResult describes what FindOrCreateReview did.
type ReviewResult struct {
	ID      int64
	Created bool
	Text    string
}

// FindOrCreateMovie returns the internal id for movie, inserting it when no
// row with the same TMDB id exists, and reports whether it inserted.
// Existing rows are never modified.
func FindOrCreateMovie(ctx context.Context, repo Repository, movie models.Movie) (int64, bool, error) {
	id, found, err := repo.FindMovieID(ctx, movie.TMDBID)
	if err != nil {
		return 0, false, fmt.Errorf("failed to look up movie %d: %w", movie.TMDBID, err)
	}
	if found {
		return id, false, nil
	}

	id, err = repo.InsertMovie(ctx, movie)
	if err != nil {
		return 0, false, fmt.Errorf("failed to insert movie %d: %w", movie.TMDBID, err)
	}
	return id, true, nil
}

// FindOrCreateReview opens the editor on the movie's review and stores the
// result. A new review starts empty and gets today as both dates; an
// existing one is edited in place and only its modification date moves.
func FindOrCreateReview(ctx context.Context, repo Repository, movieID int64, editor Editor, today string) (ReviewResult, error) {
	existing, err := repo.FindReviewByMovie(ctx, movieID)
	if err != nil {
		return ReviewResult{}, fmt.Errorf("failed to look up review for movie %d: %w", movieID, err)
	}

	if existing == nil {
		text, err := editor.Edit("")
		if err != nil {
			return ReviewResult{}, fmt.Errorf("failed to edit review: %w", err)
		}
		id, err := repo.InsertReview(ctx, models.Review{
			MovieID:          movieID,
			Text:             text,
			CreationDate:     today,
			ModificationDate: today,
		})
		if err != nil {
			return ReviewResult{}, fmt.Errorf("failed to insert review: %w", err)
		}
		return ReviewResult{ID: id, Created: true, Text: text}, nil
	}

	text, err := editor.Edit(existing.Text)
	if err != nil {
		return ReviewResult{}, fmt.Errorf("failed to edit review: %w", err)
	}
	if err := repo.UpdateReview(ctx, existing.ID, text, today); err != nil {
		return ReviewResult{}, fmt.Errorf("failed to update review %d: %w", existing.ID, err)
	}
	return ReviewResult{ID: existing.ID, Text: text}, nil
}

// Take pulls at most n values from seq. A zero or negative n pulls nothing.
func Take[T any](seq iter.Seq2[T, error], n int) ([]T, error) {
	if n <= 0 {
		return nil, nil
	}
	var out []T
	for v, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, v)
		if len(out) == n {
			break
		}
	}
	return out, nil
}

type Query struct {
	Title string
	Year  int // 0 means any year
	Limit int
}

// Outcome is the result of a successful run.
type Outcome struct {
	Movie         models.Movie
	MovieID       int64
	MovieCreated  bool
	ReviewID      int64
	ReviewCreated bool
}

// Workflow wires the lookup, selection, editor and store together.
type Workflow struct {
	Searcher Searcher
	Selector Selector
	Editor   Editor
	Store    Transactor
	Now      func() time.Time
	Logger   *zap.Logger
}

// Run performs one search, select and save cycle. Nothing is persisted
// unless both the movie and the review are written.
func (w *Workflow) Run(ctx context.Context, q Query) (Outcome, error) {
	logger := w.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := w.Now
	if now == nil {
		now = time.Now
	}
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	movies, err := Take(w.Searcher.Search(ctx, q.Title, q.Year), limit)
	if err != nil {
		return Outcome{}, err
	}
	if len(movies) == 0 {
		return Outcome{}, fmt.Errorf("%w for %q", ErrNoResults, q.Title)
	}
	logger.Debug("lookup finished", zap.String("title", q.Title), zap.Int("year", q.Year), zap.Int("candidates", len(movies)))

	movie, err := w.Selector.Select(ctx, movies)
	if err != nil {
		return Outcome{}, err
	}
	logger.Debug("movie selected", zap.Int64("tmdb_id", movie.TMDBID), zap.String("title", movie.OriginalTitle))

	out := Outcome{Movie: movie}
	today := now().Format(DateLayout)
	err = w.Store.InTx(ctx, func(repo Repository) error {
		movieID, movieCreated, err := FindOrCreateMovie(ctx, repo, movie)
		if err != nil {
			return err
		}
		logger.Debug("movie stored", zap.Int64("movie_id", movieID), zap.Bool("created", movieCreated))
		res, err := FindOrCreateReview(ctx, repo, movieID, w.Editor, today)
		if err != nil {
			return err
		}
		out.MovieID = movieID
		out.MovieCreated = movieCreated
		out.ReviewID = res.ID
		out.ReviewCreated = res.Created
		return nil
	})
	if err != nil {
		return Outcome{}, err
	}

	logger.Debug("review saved",
		zap.Int64("movie_id", out.MovieID),
		zap.Bool("movie_created", out.MovieCreated),
		zap.Int64("review_id", out.ReviewID),
		zap.Bool("created", out.ReviewCreated),
	)
	return out, nil
}
