package lists

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pibble/pibble/internal/catalog/movies"
	"github.com/pibble/pibble/internal/catalog/shows"
	"github.com/pibble/pibble/internal/config"
	"github.com/pibble/pibble/internal/enrich"
	"github.com/pibble/pibble/internal/media"
	"github.com/pibble/pibble/internal/testutil"
	"github.com/pibble/pibble/internal/userdata"
)

func newIntegrationService(t *testing.T, upstream *testutil.FakeUpstream) *Service {
	t.Helper()

	logger := testutil.NewTestLogger(t)
	svc := config.ServiceConfig{BaseURL: upstream.URL, Timeout: 5}
	enricher := enrich.NewEnricher(
		movies.NewClient(svc, logger),
		shows.NewClient(svc, logger),
		media.NewNormalizer("https://img.example/w500/"),
		logger,
	)
	return NewService(userdata.NewClient(svc, logger), enrich.NewOrchestrator(enricher, 0, logger), logger)
}

func TestService_RefreshEndToEnd(t *testing.T) {
	upstream := testutil.NewFakeUpstream(t).
		JSON("/users/u1/watchlist", `{"data": [
			{"media_type": "movie", "media_id": "tt0133093"},
			{"media_type": "movie", "media_id": "tt"},
			{"media_type": "movie", "media_id": true},
			{"media_type": "tvshow", "media_id": "tt0903747"},
			{"media_type": "movie", "media_id": "tt404"}
		]}`).
		JSON("/movies/133093", `{"data": {"id": 603, "title": "The Matrix", "genres": ["Action"], "poster_path": "/f89U.jpg", "release_date": "1999-03-31", "vote_average": 8.2}}`).
		JSON("/shows/903747", `{"showId": "1396", "name": "Breaking Bad", "genres": [{"name": "Crime"}, {"name": "Drama"}], "posterUrl": "https://img/bb.jpg"}`)

	svc := newIntegrationService(t, upstream)

	snap, err := svc.Refresh(context.Background(), "tok", "u1", "watchlist")
	require.NoError(t, err)
	assert.Equal(t, StatusReady, snap.Status)
	assert.NotEmpty(t, snap.BatchID)

	require.Len(t, snap.Items, 2)
	matrix, bb := snap.Items[0], snap.Items[1]

	assert.Equal(t, 603, matrix.ID)
	assert.Equal(t, "https://img.example/w500/f89U.jpg", matrix.PosterURL)
	assert.InDelta(t, 8.2, matrix.Rating, 0.0001)
	assert.Equal(t, []string{"Action"}, matrix.Genres)

	assert.Equal(t, 1396, bb.ID)
	assert.Equal(t, "Breaking Bad", bb.Title)
	assert.Equal(t, media.MediaTypeTVShow, bb.MediaType)
	assert.Equal(t, []string{"Crime", "Drama"}, bb.Genres)
}

func TestService_RefreshListFailure(t *testing.T) {
	upstream := testutil.NewFakeUpstream(t).
		Handle("/users/u1/favorites", testutil.Response{Status: http.StatusInternalServerError, Body: `{"error": "db down"}`})

	svc := newIntegrationService(t, upstream)

	snap, err := svc.Refresh(context.Background(), "", "u1", "favorites")
	require.ErrorIs(t, err, ErrListUnavailable)
	assert.Equal(t, StatusError, snap.Status)
	assert.Empty(t, snap.Items)

	for _, req := range upstream.Requests() {
		assert.Equal(t, "/users/u1/favorites", req.Path, "no detail lookups after a failed list fetch")
	}
}
