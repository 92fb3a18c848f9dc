package media

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testImageBase = "https://image.example/t/p/w500"

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func TestNormalizeGenres_Shapes(t *testing.T) {
	want := []string{"Drama", "Comedy"}

	tests := []struct {
		name string
		json string
	}{
		{"strings", `{"genres": ["Drama", "Comedy"]}`},
		{"objects", `{"genres": [{"id": 18, "name": "Drama"}, {"name": "Comedy"}]}`},
		{"comma string", `{"genres": "Drama, Comedy"}`},
		{"comma string without spaces", `{"genres": "Drama,Comedy"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj := decode(t, tt.json).(map[string]any)
			assert.Equal(t, want, NormalizeGenres(obj["genres"]))
		})
	}
}

func TestNormalizeGenres_Empty(t *testing.T) {
	tests := []struct {
		name  string
		value any
	}{
		{"absent", nil},
		{"number", float64(3)},
		{"object", map[string]any{"name": "Drama"}},
		{"empty string", ""},
		{"blank entries", []any{"", "  ", map[string]any{"id": float64(1)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeGenres(tt.value)
			require.NotNil(t, got)
			assert.Empty(t, got)
		})
	}
}

func TestNormalizeGenres_MixedArray(t *testing.T) {
	got := NormalizeGenres([]any{"Action", map[string]any{"name": "Thriller"}, float64(7), true})
	assert.Equal(t, []string{"Action", "Thriller"}, got)
}

func TestNormalizer_PosterURL(t *testing.T) {
	n := NewNormalizer(testImageBase + "/")

	tests := []struct {
		name  string
		value string
		want  string
	}{
		{"absolute https", "https://img.example/x.jpg", "https://img.example/x.jpg"},
		{"absolute http", "http://img.example/x.jpg", "http://img.example/x.jpg"},
		{"uppercase scheme", "HTTPS://img.example/x.jpg", "HTTPS://img.example/x.jpg"},
		{"relative with slash", "/x.jpg", testImageBase + "/x.jpg"},
		{"relative without slash", "x.jpg", testImageBase + "/x.jpg"},
		{"blank", "   ", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.PosterURL(tt.value))
		})
	}
}

func TestNormalizer_PosterURL_Idempotent(t *testing.T) {
	n := NewNormalizer(testImageBase)

	once := n.PosterURL("/x.jpg")
	twice := n.PosterURL(once)

	assert.Equal(t, testImageBase+"/x.jpg", once)
	assert.Equal(t, once, twice)
}

func TestNormalizer_Defaults(t *testing.T) {
	n := NewNormalizer(testImageBase)

	item, err := n.Normalize(decode(t, `{"id": 42}`), MediaTypeMovie)
	require.NoError(t, err)

	assert.Equal(t, 42, item.ID)
	assert.Equal(t, DefaultTitle, item.Title)
	assert.Equal(t, "", item.Description)
	assert.Equal(t, float64(0), item.Rating)
	assert.Equal(t, "", item.PosterURL)
	assert.Equal(t, "", item.Date)
	assert.NotNil(t, item.Genres)
	assert.Empty(t, item.Genres)
	assert.Equal(t, MediaTypeMovie, item.MediaType)
}

func TestNormalizer_BlankTitleDefaults(t *testing.T) {
	n := NewNormalizer(testImageBase)

	item, err := n.Normalize(decode(t, `{"id": 1, "name": "   "}`), MediaTypeTVShow)
	require.NoError(t, err)
	assert.Equal(t, DefaultTitle, item.Title)
}

func TestNormalizer_Identifier(t *testing.T) {
	n := NewNormalizer(testImageBase)

	tests := []struct {
		name      string
		json      string
		mediaType MediaType
		want      int
		wantErr   error
	}{
		{"movie generic id", `{"id": 603}`, MediaTypeMovie, 603, nil},
		{"movieId wins over id", `{"movieId": 7, "id": 603}`, MediaTypeMovie, 7, nil},
		{"movie_id", `{"movie_id": "99"}`, MediaTypeMovie, 99, nil},
		{"showId", `{"showId": 1396}`, MediaTypeTVShow, 1396, nil},
		{"show_id", `{"show_id": 1396, "id": 5}`, MediaTypeTVShow, 1396, nil},
		{"show ignores movieId", `{"movieId": 4}`, MediaTypeTVShow, 0, ErrMissingIdentifier},
		{"unusable primary falls back", `{"showId": "abc", "id": 12}`, MediaTypeTVShow, 12, nil},
		{"zero id", `{"id": 0}`, MediaTypeMovie, 0, ErrMissingIdentifier},
		{"fractional id", `{"id": 1.5}`, MediaTypeMovie, 0, ErrMissingIdentifier},
		{"null id", `{"id": null}`, MediaTypeMovie, 0, ErrMissingIdentifier},
		{"no id", `{"title": "x"}`, MediaTypeMovie, 0, ErrMissingIdentifier},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, err := n.Normalize(decode(t, tt.json), tt.mediaType)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, item.ID)
		})
	}
}

func TestNormalizer_MalformedShape(t *testing.T) {
	n := NewNormalizer(testImageBase)

	for _, raw := range []string{`[]`, `null`, `"text"`, `12`} {
		t.Run(raw, func(t *testing.T) {
			_, err := n.Normalize(decode(t, raw), MediaTypeMovie)
			assert.ErrorIs(t, err, ErrMalformedShape)
			assert.Equal(t, KindMalformedShape, KindOf(err))
		})
	}

	_, err := n.Normalize(map[string]any{"id": float64(1)}, MediaTypeUnknown)
	assert.ErrorIs(t, err, ErrMalformedShape)
}

func TestNormalizer_Movie(t *testing.T) {
	n := NewNormalizer(testImageBase)

	item, err := n.Normalize(decode(t, `{
		"id": 603,
		"title": "The Matrix",
		"overview": "A hacker learns the truth.",
		"genres": [{"name": "Action"}],
		"poster_url": "/f89U.jpg",
		"release_date": "1999-03-31",
		"vote_average": 8.2
	}`), MediaTypeMovie)
	require.NoError(t, err)

	assert.Equal(t, EnrichedMediaItem{
		ID:          603,
		Title:       "The Matrix",
		Description: "A hacker learns the truth.",
		PosterURL:   testImageBase + "/f89U.jpg",
		Date:        "1999-03-31",
		Rating:      8.2,
		Genres:      []string{"Action"},
		MediaType:   MediaTypeMovie,
	}, item)
}

func TestNormalizer_Show(t *testing.T) {
	n := NewNormalizer(testImageBase)

	item, err := n.Normalize(decode(t, `{
		"show_id": 1396,
		"name": "Breaking Bad",
		"description": "Chemistry teacher turns.",
		"genres": "Crime, Drama",
		"poster_url": "https://img/bb.jpg",
		"firstAirDate": "2008-01-20",
		"rating": "9.5"
	}`), MediaTypeTVShow)
	require.NoError(t, err)

	assert.Equal(t, 1396, item.ID)
	assert.Equal(t, "Breaking Bad", item.Title)
	assert.Equal(t, "Chemistry teacher turns.", item.Description)
	assert.Equal(t, "https://img/bb.jpg", item.PosterURL)
	assert.Equal(t, "2008-01-20", item.Date)
	assert.Equal(t, 9.5, item.Rating)
	assert.Equal(t, []string{"Crime", "Drama"}, item.Genres)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNone, KindOf(nil))
	assert.Equal(t, KindMissingIdentifier, KindOf(ErrMissingIdentifier))
	assert.Equal(t, KindNetworkFailure, KindOf(assert.AnError))
}
