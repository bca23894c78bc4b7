package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	gocache "github.com/eko/gocache/lib/v4/cache"
	"github.com/jon4hz/cinelog/internal/cache"
	"github.com/jon4hz/cinelog/internal/config"
	"github.com/samber/lo"
)

// DefaultSimilarLimit caps similar-movie listings when no limit is given.
const DefaultSimilarLimit = 10

// Movie represents a movie record as reported by TMDB. Listing endpoints
// fill GenreIDs, the detail endpoint fills Genres, Runtime and Tagline.
type Movie struct {
	ID            int     `json:"id"`
	Title         string  `json:"title"`
	OriginalTitle string  `json:"original_title,omitempty"`
	Overview      string  `json:"overview"`
	PosterPath    string  `json:"poster_path"`
	BackdropPath  string  `json:"backdrop_path,omitempty"`
	ReleaseDate   string  `json:"release_date"`
	VoteAverage   float64 `json:"vote_average"`
	VoteCount     int     `json:"vote_count"`
	GenreIDs      []int   `json:"genre_ids,omitempty"`
	Genres        []Genre `json:"genres,omitempty"`
	Runtime       int     `json:"runtime,omitempty"`
	Tagline       string  `json:"tagline,omitempty"`
}

// Genre is a single entry of the TMDB genre taxonomy.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type movieListResponse struct {
	Results []Movie `json:"results"`
}

type genreListResponse struct {
	Genres []Genre `json:"genres"`
}

// Client talks to the TMDB API. Every fetch degrades to its declared
// fallback value (empty list or zero struct) on network failure, non-2xx
// responses or malformed bodies; callers must treat "empty" as
// "unavailable", not "confirmed zero results". Degradations are logged so
// outages are not masked entirely.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client

	listCache   *cache.PrefixedCache[[]Movie]
	genreCache  *cache.PrefixedCache[[]Genre]
	detailCache *cache.PrefixedCache[Movie]
}

// New creates a new TMDB client.
func New(cfg *config.TMDBConfig, backend *gocache.Cache[[]byte], ttl time.Duration) *Client {
	return &Client{
		baseURL: cfg.URL,
		apiKey:  cfg.APIKey,
		client: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		listCache:   cache.NewPrefixedCache[[]Movie](backend, "tmdb:list:", ttl),
		genreCache:  cache.NewPrefixedCache[[]Genre](backend, "tmdb:genres:", ttl),
		detailCache: cache.NewPrefixedCache[Movie](backend, "tmdb:detail:", ttl),
	}
}

// Language maps the session language preference to a TMDB region code.
func Language(lang string) string {
	if lang == config.LanguageHungarian {
		return "hu-HU"
	}
	return "en-US"
}

// GetPopularMovies fetches the popular-movies listing. Returns an empty
// slice when the catalog is unavailable.
func (c *Client) GetPopularMovies(ctx context.Context, lang string) []Movie {
	langCode := Language(lang)
	cacheKey := "popular:" + langCode

	if movies, err := c.listCache.Get(ctx, cacheKey); err == nil {
		return movies
	}

	var resp movieListResponse
	if err := c.get(ctx, "movie/popular", url.Values{"language": {langCode}}, &resp); err != nil {
		c.degraded("movie/popular", err)
		return []Movie{}
	}
	if resp.Results == nil {
		resp.Results = []Movie{}
	}

	if err := c.listCache.Set(ctx, cacheKey, resp.Results); err != nil {
		log.Debug("failed to cache popular movies", "error", err)
	}
	return resp.Results
}

// GetMovieDetails fetches a single movie record. The second return value
// reports whether the fetch succeeded; on failure the zero Movie is
// returned so callers can still render whatever local data they have.
func (c *Client) GetMovieDetails(ctx context.Context, movieID int, lang string) (Movie, bool) {
	langCode := Language(lang)
	cacheKey := fmt.Sprintf("%d:%s", movieID, langCode)

	if movie, err := c.detailCache.Get(ctx, cacheKey); err == nil {
		return movie, true
	}

	var movie Movie
	endpoint := fmt.Sprintf("movie/%d", movieID)
	if err := c.get(ctx, endpoint, url.Values{"language": {langCode}}, &movie); err != nil {
		c.degraded(endpoint, err)
		return Movie{}, false
	}

	if err := c.detailCache.Set(ctx, cacheKey, movie); err != nil {
		log.Debug("failed to cache movie details", "error", err)
	}
	return movie, true
}

// GetSimilarMovies fetches movies similar to the given one, capped at limit.
// The language is pinned to en-US regardless of the session preference; the
// upstream similar listings are unusably sparse for smaller locales.
func (c *Client) GetSimilarMovies(ctx context.Context, movieID, limit int) []Movie {
	if limit <= 0 {
		limit = DefaultSimilarLimit
	}
	cacheKey := fmt.Sprintf("similar:%d", movieID)

	if movies, err := c.listCache.Get(ctx, cacheKey); err == nil {
		return lo.Slice(movies, 0, limit)
	}

	endpoint := fmt.Sprintf("movie/%d/similar", movieID)
	var resp movieListResponse
	if err := c.get(ctx, endpoint, url.Values{"language": {"en-US"}}, &resp); err != nil {
		c.degraded(endpoint, err)
		return []Movie{}
	}
	if resp.Results == nil {
		resp.Results = []Movie{}
	}

	if err := c.listCache.Set(ctx, cacheKey, resp.Results); err != nil {
		log.Debug("failed to cache similar movies", "error", err)
	}
	return lo.Slice(resp.Results, 0, limit)
}

// GetGenres fetches the movie genre taxonomy. Returns an empty slice when
// the catalog is unavailable.
func (c *Client) GetGenres(ctx context.Context, lang string) []Genre {
	langCode := Language(lang)

	if genres, err := c.genreCache.Get(ctx, langCode); err == nil {
		return genres
	}

	var resp genreListResponse
	if err := c.get(ctx, "genre/movie/list", url.Values{"language": {langCode}}, &resp); err != nil {
		c.degraded("genre/movie/list", err)
		return []Genre{}
	}
	if resp.Genres == nil {
		resp.Genres = []Genre{}
	}

	if err := c.genreCache.Set(ctx, langCode, resp.Genres); err != nil {
		log.Debug("failed to cache genres", "error", err)
	}
	return resp.Genres
}

// RefreshGenres re-fetches the genre taxonomy and overwrites the cached
// copy, used by the background warmup job.
func (c *Client) RefreshGenres(ctx context.Context, lang string) error {
	langCode := Language(lang)
	var resp genreListResponse
	if err := c.get(ctx, "genre/movie/list", url.Values{"language": {langCode}}, &resp); err != nil {
		return err
	}
	if resp.Genres == nil {
		resp.Genres = []Genre{}
	}
	return c.genreCache.Set(ctx, langCode, resp.Genres)
}

// SearchMovies searches the catalog for a free-text query and optionally
// filters the results by genre. A genreID of 0 means no filter. Returns an
// empty slice when the query is empty or the catalog is unavailable.
func (c *Client) SearchMovies(ctx context.Context, query string, genreID int, lang string) []Movie {
	if query == "" {
		return []Movie{}
	}

	params := url.Values{
		"language": {Language(lang)},
		"query":    {query},
	}
	var resp movieListResponse
	if err := c.get(ctx, "search/movie", params, &resp); err != nil {
		c.degraded("search/movie", err)
		return []Movie{}
	}
	if resp.Results == nil {
		resp.Results = []Movie{}
	}

	if genreID == 0 {
		return resp.Results
	}
	return lo.Filter(resp.Results, func(m Movie, _ int) bool {
		return lo.Contains(m.GenreIDs, genreID)
	})
}

// get performs a GET request against the TMDB API and decodes the JSON
// response. The API key is sent as a query parameter, requests carry the
// configured timeout.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	u, err := url.Parse(c.baseURL + "/" + endpoint)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}

	query := u.Query()
	for key, values := range params {
		for _, v := range values {
			query.Set(key, v)
		}
	}
	query.Set("api_key", c.apiKey)
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

// degraded logs a silently degraded catalog call. The fallback value still
// goes out to the caller, but the outage stays visible in the logs.
func (c *Client) degraded(endpoint string, err error) {
	log.Warn("movie catalog unavailable, serving fallback", "endpoint", endpoint, "error", err)
}
