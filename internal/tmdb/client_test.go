package tmdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jon4hz/cinelog/internal/cache"
	"github.com/jon4hz/cinelog/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return New(&config.TMDBConfig{
		APIKey:  "test-key",
		URL:     server.URL,
		Timeout: 1,
	}, cache.New(nil), time.Minute)
}

func TestLanguage(t *testing.T) {
	assert.Equal(t, "hu-HU", Language("hu"))
	assert.Equal(t, "en-US", Language("en"))
	assert.Equal(t, "en-US", Language(""))
	assert.Equal(t, "en-US", Language("de"))
}

func TestGetPopularMovies(t *testing.T) {
	var gotLanguage, gotAPIKey string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/movie/popular", r.URL.Path)
		gotLanguage = r.URL.Query().Get("language")
		gotAPIKey = r.URL.Query().Get("api_key")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[{"id":603,"title":"The Matrix"},{"id":604,"title":"The Matrix Reloaded"}]}`))
	}))

	movies := client.GetPopularMovies(context.Background(), "hu")
	require.Len(t, movies, 2)
	assert.Equal(t, 603, movies[0].ID)
	assert.Equal(t, "hu-HU", gotLanguage)
	assert.Equal(t, "test-key", gotAPIKey)
}

func TestGetPopularMovies_CachesResponses(t *testing.T) {
	var requests int
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		_, _ = w.Write([]byte(`{"results":[{"id":1,"title":"Cached"}]}`))
	}))

	ctx := context.Background()
	first := client.GetPopularMovies(ctx, "en")
	second := client.GetPopularMovies(ctx, "en")

	assert.Equal(t, first, second)
	assert.Equal(t, 1, requests)
}

func TestGetPopularMovies_Fallbacks(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"results": not json`))
			},
		},
		{
			name: "timeout",
			handler: func(w http.ResponseWriter, r *http.Request) {
				time.Sleep(1500 * time.Millisecond)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.handler)
			movies := client.GetPopularMovies(context.Background(), "hu")
			assert.NotNil(t, movies)
			assert.Empty(t, movies)
		})
	}
}

func TestGetPopularMovies_Unreachable(t *testing.T) {
	client := New(&config.TMDBConfig{
		APIKey:  "test-key",
		URL:     "http://127.0.0.1:1",
		Timeout: 1,
	}, cache.New(nil), time.Minute)

	movies := client.GetPopularMovies(context.Background(), "hu")
	assert.NotNil(t, movies)
	assert.Empty(t, movies)
}

func TestGetMovieDetails(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/movie/603", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":603,"title":"The Matrix","runtime":136,"genres":[{"id":28,"name":"Action"}]}`))
	}))

	movie, found := client.GetMovieDetails(context.Background(), 603, "en")
	require.True(t, found)
	assert.Equal(t, "The Matrix", movie.Title)
	assert.Equal(t, 136, movie.Runtime)
	require.Len(t, movie.Genres, 1)
	assert.Equal(t, 28, movie.Genres[0].ID)
}

func TestGetMovieDetails_NotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	movie, found := client.GetMovieDetails(context.Background(), 999999, "en")
	assert.False(t, found)
	assert.Zero(t, movie.ID)
}

func TestGetSimilarMovies_PinsEnglish(t *testing.T) {
	var gotLanguage string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/movie/603/similar", r.URL.Path)
		gotLanguage = r.URL.Query().Get("language")
		_, _ = w.Write([]byte(`{"results":[{"id":1},{"id":2},{"id":3}]}`))
	}))

	movies := client.GetSimilarMovies(context.Background(), 603, 2)

	// The similar listing ignores the session language entirely.
	assert.Equal(t, "en-US", gotLanguage)
	assert.Len(t, movies, 2)
}

func TestGetSimilarMovies_DefaultLimit(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[
			{"id":1},{"id":2},{"id":3},{"id":4},{"id":5},{"id":6},
			{"id":7},{"id":8},{"id":9},{"id":10},{"id":11},{"id":12}]}`))
	}))

	movies := client.GetSimilarMovies(context.Background(), 603, 0)
	assert.Len(t, movies, DefaultSimilarLimit)
}

func TestGetGenres(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/genre/movie/list", r.URL.Path)
		_, _ = w.Write([]byte(`{"genres":[{"id":28,"name":"Action"},{"id":35,"name":"Comedy"}]}`))
	}))

	genres := client.GetGenres(context.Background(), "en")
	require.Len(t, genres, 2)
	assert.Equal(t, "Action", genres[0].Name)
}

func TestSearchMovies_GenreFilter(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/search/movie", r.URL.Path)
		require.Equal(t, "Matrix", r.URL.Query().Get("query"))
		_, _ = w.Write([]byte(`{"results":[
			{"id":603,"title":"The Matrix","genre_ids":[28,878]},
			{"id":1000,"title":"Matrix documentary","genre_ids":[99]},
			{"id":604,"title":"The Matrix Reloaded","genre_ids":[28]}]}`))
	}))

	ctx := context.Background()

	// Genre 0 means no filter.
	all := client.SearchMovies(ctx, "Matrix", 0, "en")
	assert.Len(t, all, 3)

	// Only results whose genre id list contains the filter survive.
	action := client.SearchMovies(ctx, "Matrix", 28, "en")
	require.Len(t, action, 2)
	assert.Equal(t, 603, action[0].ID)
	assert.Equal(t, 604, action[1].ID)

	none := client.SearchMovies(ctx, "Matrix", 12345, "en")
	assert.Empty(t, none)
}

func TestSearchMovies_EmptyQuery(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("empty query must not reach the catalog")
	}))

	movies := client.SearchMovies(context.Background(), "", 0, "en")
	assert.Empty(t, movies)
}

func TestRefreshGenres(t *testing.T) {
	var requests int
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		_, _ = w.Write([]byte(`{"genres":[{"id":28,"name":"Action"}]}`))
	}))

	ctx := context.Background()
	require.NoError(t, client.RefreshGenres(ctx, "en"))

	// The warmed cache serves the follow-up lookup.
	genres := client.GetGenres(ctx, "en")
	assert.Len(t, genres, 1)
	assert.Equal(t, 1, requests)
}
