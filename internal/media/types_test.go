package media

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMediaType(t *testing.T) {
	tests := []struct {
		in   string
		want MediaType
	}{
		{"movie", MediaTypeMovie},
		{" Movie ", MediaTypeMovie},
		{"tvshow", MediaTypeTVShow},
		{"tv", MediaTypeTVShow},
		{"series", MediaTypeTVShow},
		{"book", MediaTypeUnknown},
		{"", MediaTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseMediaType(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want != MediaTypeUnknown, got.Valid())
		})
	}
}

func TestParseListCategory(t *testing.T) {
	c, ok := ParseListCategory("Favorites")
	assert.True(t, ok)
	assert.Equal(t, ListFavorites, c)

	_, ok = ParseListCategory("history")
	assert.False(t, ok)
}

func TestRawListEntry_UnmarshalJSON(t *testing.T) {
	var entries []RawListEntry
	err := json.Unmarshal([]byte(`[
		{"media_type": "movie", "media_id": "tt0133093"},
		{"mediaType": "tvshow", "mediaId": 1396},
		{"media_type": "podcast", "media_id": "p1"},
		{"media_type": "movie"}
	]`), &entries)
	require.NoError(t, err)

	assert.Equal(t, []RawListEntry{
		{MediaType: MediaTypeMovie, MediaID: "tt0133093"},
		{MediaType: MediaTypeTVShow, MediaID: "1396"},
		{MediaType: MediaTypeUnknown, MediaID: "p1"},
		{MediaType: MediaTypeMovie, MediaID: ""},
	}, entries)
}

func TestRawListEntry_UnmarshalJSON_UnusableFields(t *testing.T) {
	var entries []RawListEntry
	err := json.Unmarshal([]byte(`[
		{"media_type": "movie", "media_id": {"x": 1}},
		{"media_type": "movie", "media_id": true},
		{"media_type": 7, "media_id": "603"},
		{"media_type": "tvshow", "media_id": null},
		42,
		"tt0133093",
		null
	]`), &entries)
	require.NoError(t, err)

	assert.Equal(t, []RawListEntry{
		{MediaType: MediaTypeMovie, MediaID: ""},
		{MediaType: MediaTypeMovie, MediaID: ""},
		{MediaType: MediaTypeUnknown, MediaID: "603"},
		{MediaType: MediaTypeTVShow, MediaID: ""},
		{MediaType: MediaTypeUnknown, MediaID: ""},
		{MediaType: MediaTypeUnknown, MediaID: ""},
		{MediaType: MediaTypeUnknown, MediaID: ""},
	}, entries)
}

func TestEnrichedMediaItem_MarshalJSON(t *testing.T) {
	movie := EnrichedMediaItem{
		ID: 603, Title: "The Matrix", PosterURL: "https://img/x.jpg",
		Date: "1999-03-31", MediaType: MediaTypeMovie,
	}
	data, err := json.Marshal(movie)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": 603, "title": "The Matrix", "description": "", "posterUrl": "https://img/x.jpg",
		"releaseDate": "1999-03-31", "rating": 0, "genres": [], "mediaType": "movie"
	}`, string(data))

	show := EnrichedMediaItem{ID: 1396, Title: "Breaking Bad", Genres: []string{"Crime"}, MediaType: MediaTypeTVShow}
	data, err = json.Marshal(show)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": 1396, "name": "Breaking Bad", "description": "", "firstAirDate": "",
		"rating": 0, "genres": ["Crime"], "mediaType": "tvshow"
	}`, string(data))

	var back EnrichedMediaItem
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, show, back)
}
