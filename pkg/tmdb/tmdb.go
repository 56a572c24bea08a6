package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"moviereview/pkg/models"
)

const (
	DefaultBaseURL  = "https://api.themoviedb.org/3"
	DefaultLanguage = "en-US"
	DefaultTimeout  = 10 * time.Second
	UserAgent       = "moviereview/1.0"
)

var ErrMissingAPIKey = errors.New("TMDB API key not configured")

// StatusError is returned when TMDB answers with a non-200 status.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("tmdb: received non-200 response: %d", e.StatusCode)
	}
	return fmt.Sprintf("tmdb: received non-200 response: %d (%s)", e.StatusCode, e.Message)
}

type Config struct {
	APIKey   string
	BaseURL  string
	Language string
	Timeout  time.Duration
	Logger   *zap.Logger
}

// Client talks to the TMDB v3 REST API.
type Client struct {
	HTTPClient *http.Client

	apiKey   string
	baseURL  string
	language string
	logger   *zap.Logger
}

func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Client{
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		language:   cfg.Language,
		logger:     cfg.Logger,
	}
}

// searchResponse is the JSON shape of GET /search/movie.
type searchResponse struct {
	Page         int `json:"page"`
	TotalPages   int `json:"total_pages"`
	TotalResults int `json:"total_results"`
	Results      []struct {
		ID            int64  `json:"id"`
		Title         string `json:"title"`
		OriginalTitle string `json:"original_title"`
		ReleaseDate   string `json:"release_date"`
	} `json:"results"`
}

// movieDetails is the JSON shape of GET /movie/{id}.
type movieDetails struct {
	ID            int64  `json:"id"`
	IMDBID        string `json:"imdb_id"`
	Title         string `json:"title"`
	OriginalTitle string `json:"original_title"`
	ReleaseDate   string `json:"release_date"`
	Runtime       int    `json:"runtime"`
}

type errorResponse struct {
	StatusMessage string `json:"status_message"`
}

// Search returns candidates for title in TMDB relevance order. Pages and
// per-movie details are fetched only as the caller pulls values; the caller
// decides how many it wants. A year of 0 disables the year filter.
// On failure the error is yielded once and the sequence ends.
func (c *Client) Search(ctx context.Context, title string, year int) iter.Seq2[models.Movie, error] {
	return func(yield func(models.Movie, error) bool) {
		if c.apiKey == "" {
			yield(models.Movie{}, ErrMissingAPIKey)
			return
		}

		for page := 1; ; page++ {
			params := url.Values{}
			params.Set("query", title)
			params.Set("page", strconv.Itoa(page))
			params.Set("include_adult", "false")
			if year > 0 {
				params.Set("year", strconv.Itoa(year))
			}

			var resp searchResponse
			if err := c.get(ctx, "/search/movie", params, &resp); err != nil {
				yield(models.Movie{}, fmt.Errorf("search %q: %w", title, err))
				return
			}
			c.logger.Debug("tmdb search page",
				zap.String("title", title),
				zap.Int("page", resp.Page),
				zap.Int("total_pages", resp.TotalPages),
				zap.Int("results", len(resp.Results)),
			)

			for _, r := range resp.Results {
				movie, err := c.Movie(ctx, r.ID)
				if err != nil {
					yield(models.Movie{}, err)
					return
				}
				if !yield(movie, nil) {
					return
				}
			}

			if len(resp.Results) == 0 || page >= resp.TotalPages {
				return
			}
		}
	}
}

// Movie fetches full details for a single TMDB id.
func (c *Client) Movie(ctx context.Context, tmdbID int64) (models.Movie, error) {
	if c.apiKey == "" {
		return models.Movie{}, ErrMissingAPIKey
	}

	var d movieDetails
	if err := c.get(ctx, "/movie/"+strconv.FormatInt(tmdbID, 10), url.Values{}, &d); err != nil {
		return models.Movie{}, fmt.Errorf("movie %d: %w", tmdbID, err)
	}

	movie := models.Movie{
		TMDBID:        d.ID,
		IMDBID:        d.IMDBID,
		OriginalTitle: d.OriginalTitle,
		DefaultTitle:  d.Title,
		Year:          releaseYear(d.ReleaseDate),
	}
	if d.Runtime > 0 {
		runtime := d.Runtime
		movie.Runtime = &runtime
	}
	return movie, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	params.Set("api_key", c.apiKey)
	params.Set("language", c.language)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("error fetching %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr errorResponse
		_ = json.Unmarshal(body, &apiErr)
		return &StatusError{StatusCode: resp.StatusCode, Message: apiErr.StatusMessage}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("error unmarshaling %s: %w", path, err)
	}
	return nil
}

// releaseYear extracts the year from a YYYY-MM-DD date, nil when absent.
func releaseYear(date string) *int {
	if len(date) < 4 {
		return nil
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil || year <= 0 {
		return nil
	}
	return &year
}
