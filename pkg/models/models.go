package models

// Movie is a candidate returned by the lookup service.
type Movie struct {
	TMDBID        int64  `json:"tmdb_id"`
	IMDBID        string `json:"imdb_id"`
	OriginalTitle string `json:"original_title"`
	DefaultTitle  string `json:"default_title"`
	Year          *int   `json:"year,omitempty"`
	Runtime       *int   `json:"runtime,omitempty"` // minutes
}

// Review is the stored review of a single movie. Dates are YYYY-MM-DD.
type Review struct {
	ID               int64  `json:"id"` // Database ID
	MovieID          int64  `json:"movie_id"`
	Text             string `json:"review"`
	CreationDate     string `json:"creation_date"`
	ModificationDate string `json:"modification_date"`
}

// ReviewedMovie joins a stored movie with its review.
type ReviewedMovie struct {
	MovieID int64  `json:"movie_id"`
	Movie   Movie  `json:"movie"`
	Review  Review `json:"review"`
}
