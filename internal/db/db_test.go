package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"moviereview/internal/review"
	"moviereview/pkg/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := New(filepath.Join(t.TempDir(), "nested", "movies.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func intPtrOf(v int) *int { return &v }

func arrival() models.Movie {
	return models.Movie{
		TMDBID:        329865,
		IMDBID:        "tt2543164",
		OriginalTitle: "Arrival",
		DefaultTitle:  "Arrival",
		Year:          intPtrOf(2016),
		Runtime:       intPtrOf(116),
	}
}

// scriptedEditor returns canned texts and records what it was opened with.
type scriptedEditor struct {
	texts []string
	seen  []string
}

func (e *scriptedEditor) Edit(initText string) (string, error) {
	e.seen = append(e.seen, initText)
	text := e.texts[0]
	e.texts = e.texts[1:]
	return text, nil
}

func countRows(t *testing.T, s *Store, table string) int {
	t.Helper()

	var n int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func TestNew_RequiresPath(t *testing.T) {
	_, err := New("  ")
	require.Error(t, err)
}

func TestNew_IsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movies.db")

	first, err := New(path)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := New(path)
	require.NoError(t, err)
	require.NoError(t, second.Close())
}

func TestFindOrCreateMovie_SecondRunReusesRow(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	var firstID, secondID int64
	var firstCreated, secondCreated bool
	require.NoError(t, store.InTx(ctx, func(repo review.Repository) error {
		var err error
		firstID, firstCreated, err = review.FindOrCreateMovie(ctx, repo, arrival())
		return err
	}))

	changed := arrival()
	changed.DefaultTitle = "L'Arrivée"
	changed.Runtime = nil
	require.NoError(t, store.InTx(ctx, func(repo review.Repository) error {
		var err error
		secondID, secondCreated, err = review.FindOrCreateMovie(ctx, repo, changed)
		return err
	}))

	assert.Equal(t, firstID, secondID)
	assert.True(t, firstCreated)
	assert.False(t, secondCreated)
	assert.Equal(t, 1, countRows(t, store, "movies"))

	var title string
	var runtime int
	require.NoError(t, store.db.QueryRow("SELECT default_title, runtime FROM movies WHERE id = ?", firstID).Scan(&title, &runtime))
	assert.Equal(t, "Arrival", title, "existing movie fields are not overwritten")
	assert.Equal(t, 116, runtime)
}

func TestInsertMovie_StoresNullForUnknownYearAndRuntime(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	movie := arrival()
	movie.Year = nil
	movie.Runtime = nil

	var id int64
	require.NoError(t, store.InTx(ctx, func(repo review.Repository) error {
		var err error
		id, err = repo.InsertMovie(ctx, movie)
		return err
	}))

	var nulls int
	require.NoError(t, store.db.QueryRow("SELECT COUNT(*) FROM movies WHERE id = ? AND year IS NULL AND runtime IS NULL", id).Scan(&nulls))
	assert.Equal(t, 1, nulls)
}

func TestFindOrCreateReview_CreateThenEdit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	editor := &scriptedEditor{texts: []string{"Great film.", "Great film.\nEven better the second time.\n"}}

	var movieID int64
	var first review.ReviewResult
	require.NoError(t, store.InTx(ctx, func(repo review.Repository) error {
		var err error
		movieID, _, err = review.FindOrCreateMovie(ctx, repo, arrival())
		if err != nil {
			return err
		}
		first, err = review.FindOrCreateReview(ctx, repo, movieID, editor, "2026-10-01")
		return err
	}))
	assert.True(t, first.Created)

	got, err := store.GetReview(ctx, movieID)
	require.NoError(t, err)
	assert.Equal(t, "Great film.", got.Review.Text)
	assert.Equal(t, "2026-10-01", got.Review.CreationDate)
	assert.Equal(t, "2026-10-01", got.Review.ModificationDate)

	var second review.ReviewResult
	require.NoError(t, store.InTx(ctx, func(repo review.Repository) error {
		var err error
		second, err = review.FindOrCreateReview(ctx, repo, movieID, editor, "2026-10-15")
		return err
	}))
	assert.False(t, second.Created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, []string{"", "Great film."}, editor.seen)

	got, err = store.GetReview(ctx, movieID)
	require.NoError(t, err)
	assert.Equal(t, "Great film.\nEven better the second time.\n", got.Review.Text)
	assert.Equal(t, "2026-10-01", got.Review.CreationDate)
	assert.Equal(t, "2026-10-15", got.Review.ModificationDate)
	assert.Equal(t, 1, countRows(t, store, "reviews"))
}

func TestUpdateReview_TouchesOnlyThatReview(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	other := arrival()
	other.TMDBID = 27205
	other.OriginalTitle = "Inception"

	var keepID, editID int64
	require.NoError(t, store.InTx(ctx, func(repo review.Repository) error {
		a, err := repo.InsertMovie(ctx, arrival())
		require.NoError(t, err)
		b, err := repo.InsertMovie(ctx, other)
		require.NoError(t, err)
		keepID, err = repo.InsertReview(ctx, models.Review{MovieID: a, Text: "keep", CreationDate: "2026-01-01", ModificationDate: "2026-01-01"})
		require.NoError(t, err)
		editID, err = repo.InsertReview(ctx, models.Review{MovieID: b, Text: "old", CreationDate: "2026-01-01", ModificationDate: "2026-01-01"})
		require.NoError(t, err)
		return repo.UpdateReview(ctx, editID, "new", "2026-02-02")
	}))

	var text, mod string
	require.NoError(t, store.db.QueryRow("SELECT review, modification_date FROM reviews WHERE id = ?", keepID).Scan(&text, &mod))
	assert.Equal(t, "keep", text)
	assert.Equal(t, "2026-01-01", mod)
}

func TestUpdateReview_Missing(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.InTx(ctx, func(repo review.Repository) error {
		return repo.UpdateReview(ctx, 42, "text", "2026-10-15")
	})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestInTx_RollsBackOnError(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	boom := errors.New("editor crashed")

	err := store.InTx(ctx, func(repo review.Repository) error {
		if _, _, err := review.FindOrCreateMovie(ctx, repo, arrival()); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	assert.Equal(t, 0, countRows(t, store, "movies"))
	assert.Equal(t, 0, countRows(t, store, "reviews"))
}

func TestInTx_CancelledBeforeCommit(t *testing.T) {
	store := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())

	err := store.InTx(ctx, func(repo review.Repository) error {
		if _, _, err := review.FindOrCreateMovie(ctx, repo, arrival()); err != nil {
			return err
		}
		cancel()
		return nil
	})
	require.Error(t, err)

	assert.Equal(t, 0, countRows(t, store, "movies"))
}

func TestListReviews(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	inception := models.Movie{TMDBID: 27205, OriginalTitle: "Inception", DefaultTitle: "Inception"}
	require.NoError(t, store.InTx(ctx, func(repo review.Repository) error {
		a, err := repo.InsertMovie(ctx, arrival())
		require.NoError(t, err)
		b, err := repo.InsertMovie(ctx, inception)
		require.NoError(t, err)
		_, err = repo.InsertReview(ctx, models.Review{MovieID: a, Text: "a", CreationDate: "2026-01-01", ModificationDate: "2026-03-01"})
		require.NoError(t, err)
		_, err = repo.InsertReview(ctx, models.Review{MovieID: b, Text: "b", CreationDate: "2026-01-01", ModificationDate: "2026-02-01"})
		return err
	}))

	all, err := store.ListReviews(ctx, 10, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Arrival", all[0].Movie.OriginalTitle)
	require.NotNil(t, all[0].Movie.Year)
	assert.Equal(t, 2016, *all[0].Movie.Year)
	assert.Equal(t, "Inception", all[1].Movie.OriginalTitle)
	assert.Nil(t, all[1].Movie.Year)

	filtered, err := store.ListReviews(ctx, 10, "incep")
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, int64(27205), filtered[0].Movie.TMDBID)

	limited, err := store.ListReviews(ctx, 1, "")
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestGetReview_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetReview(context.Background(), 7)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteEmptyReviews(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InTx(ctx, func(repo review.Repository) error {
		id, err := repo.InsertMovie(ctx, arrival())
		require.NoError(t, err)
		for _, text := range []string{"", "\n\n", "Great film."} {
			_, err := repo.InsertReview(ctx, models.Review{MovieID: id, Text: text, CreationDate: "2026-01-01", ModificationDate: "2026-01-01"})
			require.NoError(t, err)
		}
		return nil
	}))

	n, err := store.DeleteEmptyReviews(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, 1, countRows(t, store, "reviews"))
}
