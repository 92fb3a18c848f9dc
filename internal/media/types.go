package media

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// MediaType identifies which detail service owns a media id.
type MediaType string

const (
	MediaTypeMovie   MediaType = "movie"
	MediaTypeTVShow  MediaType = "tvshow"
	MediaTypeUnknown MediaType = "unknown"
)

// ParseMediaType maps a user-data or URL media type onto a MediaType.
// Unrecognized values yield MediaTypeUnknown.
func ParseMediaType(s string) MediaType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "movie", "movies", "film":
		return MediaTypeMovie
	case "tvshow", "tv", "show", "shows", "series", "tv_show":
		return MediaTypeTVShow
	default:
		return MediaTypeUnknown
	}
}

// Valid reports whether t is a known media type.
func (t MediaType) Valid() bool {
	return t == MediaTypeMovie || t == MediaTypeTVShow
}

// RawListEntry is a minimal list record as stored by the user-data service.
type RawListEntry struct {
	MediaType MediaType `json:"mediaType"`
	MediaID   string    `json:"mediaId"`
}

func (e RawListEntry) String() string {
	return fmt.Sprintf("%s:%s", e.MediaType, e.MediaID)
}

// UnmarshalJSON accepts snake_case and camelCase keys, and a numeric or string media id.
// It never fails on a well-formed value: a record that is not an object, or whose
// type or id has an unusable shape, decodes with MediaTypeUnknown or an empty id
// so that only this entry is dropped later.
func (e *RawListEntry) UnmarshalJSON(data []byte) error {
	e.MediaType = MediaTypeUnknown
	e.MediaID = ""

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}

	if v, ok := firstKey(raw, "media_type", "mediaType", "type"); ok {
		var typ string
		if json.Unmarshal(v, &typ) == nil {
			e.MediaType = ParseMediaType(typ)
		}
	}

	if v, ok := firstKey(raw, "media_id", "mediaId"); ok {
		e.MediaID = rawID(v)
	}
	return nil
}

func firstKey(raw map[string]json.RawMessage, keys ...string) (json.RawMessage, bool) {
	for _, key := range keys {
		if v, ok := raw[key]; ok {
			return v, true
		}
	}
	return nil, false
}

// rawID returns a string or number id as text, and "" for any other shape.
func rawID(v json.RawMessage) string {
	var anyID any
	dec := json.NewDecoder(bytes.NewReader(v))
	dec.UseNumber()
	if err := dec.Decode(&anyID); err != nil {
		return ""
	}

	switch val := anyID.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	default:
		return ""
	}
}

// ListCategory names one of the user's media lists.
type ListCategory string

const (
	ListWatchlist ListCategory = "watchlist"
	ListFavorites ListCategory = "favorites"
	ListWatched   ListCategory = "watched"
)

// ParseListCategory returns the category for s and whether it is known.
func ParseListCategory(s string) (ListCategory, bool) {
	c := ListCategory(strings.ToLower(strings.TrimSpace(s)))
	switch c {
	case ListWatchlist, ListFavorites, ListWatched:
		return c, true
	default:
		return "", false
	}
}

// EnrichedMediaItem is the canonical display record for one list entry.
// Title holds the movie title or the show name; Date holds the release date
// or first air date. JSON encoding picks the field names by media type.
type EnrichedMediaItem struct {
	ID          int
	Title       string
	Description string
	PosterURL   string
	Date        string
	Rating      float64
	Genres      []string
	MediaType   MediaType
}

type movieJSON struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	PosterURL   string    `json:"posterUrl,omitempty"`
	ReleaseDate string    `json:"releaseDate"`
	Rating      float64   `json:"rating"`
	Genres      []string  `json:"genres"`
	MediaType   MediaType `json:"mediaType"`
}

type showJSON struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	PosterURL    string    `json:"posterUrl,omitempty"`
	FirstAirDate string    `json:"firstAirDate"`
	Rating       float64   `json:"rating"`
	Genres       []string  `json:"genres"`
	MediaType    MediaType `json:"mediaType"`
}

// MarshalJSON emits title/releaseDate for movies and name/firstAirDate for shows.
func (m EnrichedMediaItem) MarshalJSON() ([]byte, error) {
	genres := m.Genres
	if genres == nil {
		genres = []string{}
	}

	if m.MediaType == MediaTypeTVShow {
		return json.Marshal(showJSON{
			ID:           m.ID,
			Name:         m.Title,
			Description:  m.Description,
			PosterURL:    m.PosterURL,
			FirstAirDate: m.Date,
			Rating:       m.Rating,
			Genres:       genres,
			MediaType:    m.MediaType,
		})
	}

	return json.Marshal(movieJSON{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		PosterURL:   m.PosterURL,
		ReleaseDate: m.Date,
		Rating:      m.Rating,
		Genres:      genres,
		MediaType:   m.MediaType,
	})
}

// UnmarshalJSON reverses MarshalJSON.
func (m *EnrichedMediaItem) UnmarshalJSON(data []byte) error {
	var probe struct {
		MediaType MediaType `json:"mediaType"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}

	if probe.MediaType == MediaTypeTVShow {
		var s showJSON
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*m = EnrichedMediaItem{
			ID: s.ID, Title: s.Name, Description: s.Description, PosterURL: s.PosterURL,
			Date: s.FirstAirDate, Rating: s.Rating, Genres: s.Genres, MediaType: s.MediaType,
		}
		return nil
	}

	var mv movieJSON
	if err := json.Unmarshal(data, &mv); err != nil {
		return err
	}
	*m = EnrichedMediaItem{
		ID: mv.ID, Title: mv.Title, Description: mv.Description, PosterURL: mv.PosterURL,
		Date: mv.ReleaseDate, Rating: mv.Rating, Genres: mv.Genres, MediaType: mv.MediaType,
	}
	return nil
}
