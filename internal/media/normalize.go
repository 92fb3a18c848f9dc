package media

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DefaultTitle is used when an upstream record has no title or name.
const DefaultTitle = "Untitled"

// largest integer a JSON number decoded as float64 holds exactly
const maxExactID = 1 << 53

// field lookup order per media type
var (
	movieIDFields = []string{"movieId", "movie_id", "id"}
	showIDFields  = []string{"showId", "show_id", "id"}

	movieTitleFields = []string{"title", "name"}
	showTitleFields  = []string{"name", "title"}

	movieDateFields = []string{"release_date", "releaseDate"}
	showDateFields  = []string{"first_air_date", "firstAirDate"}

	descriptionFields = []string{"overview", "description"}
	ratingFields      = []string{"rating", "vote_average", "voteAverage"}
	posterFields      = []string{"posterUrl", "poster_url", "poster_path", "posterPath"}
)

// Normalizer turns upstream detail records into EnrichedMediaItems.
type Normalizer struct {
	imageBaseURL string
}

// NewNormalizer creates a normalizer that resolves relative poster paths
// against imageBaseURL.
func NewNormalizer(imageBaseURL string) *Normalizer {
	return &Normalizer{imageBaseURL: strings.TrimRight(strings.TrimSpace(imageBaseURL), "/")}
}

// ImageBaseURL returns the base used for relative poster paths.
func (n *Normalizer) ImageBaseURL() string {
	return n.imageBaseURL
}

// Normalize maps one decoded detail record onto an EnrichedMediaItem.
// The record is the value produced by decoding JSON into an `any`.
func (n *Normalizer) Normalize(record any, mediaType MediaType) (EnrichedMediaItem, error) {
	obj, ok := record.(map[string]any)
	if !ok {
		return EnrichedMediaItem{}, fmt.Errorf("%w: expected object, got %s", ErrMalformedShape, describe(record))
	}

	var idFields, titleFields, dateFields []string
	switch mediaType {
	case MediaTypeMovie:
		idFields, titleFields, dateFields = movieIDFields, movieTitleFields, movieDateFields
	case MediaTypeTVShow:
		idFields, titleFields, dateFields = showIDFields, showTitleFields, showDateFields
	default:
		return EnrichedMediaItem{}, fmt.Errorf("%w: unsupported media type %q", ErrMalformedShape, mediaType)
	}

	id, ok := resolveID(obj, idFields)
	if !ok {
		return EnrichedMediaItem{}, fmt.Errorf("%w: tried %s", ErrMissingIdentifier, strings.Join(idFields, ", "))
	}

	title := firstString(obj, titleFields)
	if title == "" {
		title = DefaultTitle
	}

	return EnrichedMediaItem{
		ID:          id,
		Title:       title,
		Description: firstString(obj, descriptionFields),
		PosterURL:   n.PosterURL(firstString(obj, posterFields)),
		Date:        firstString(obj, dateFields),
		Rating:      firstNumber(obj, ratingFields),
		Genres:      NormalizeGenres(obj["genres"]),
		MediaType:   mediaType,
	}, nil
}

// PosterURL returns value unchanged when it is already an absolute http(s) URL,
// otherwise joins it to the image base. Blank values yield "".
func (n *Normalizer) PosterURL(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if isAbsoluteURL(value) {
		return value
	}
	return n.imageBaseURL + "/" + strings.TrimLeft(value, "/")
}

func isAbsoluteURL(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// NormalizeGenres accepts a list of names, a list of {name: ...} objects, or a
// comma-separated string. Any other shape yields an empty, non-nil slice.
func NormalizeGenres(value any) []string {
	genres := make([]string, 0)

	switch v := value.(type) {
	case []any:
		for _, elem := range v {
			var name string
			switch g := elem.(type) {
			case string:
				name = g
			case map[string]any:
				name, _ = g["name"].(string)
			}
			if name = strings.TrimSpace(name); name != "" {
				genres = append(genres, name)
			}
		}
	case []string:
		for _, g := range v {
			if g = strings.TrimSpace(g); g != "" {
				genres = append(genres, g)
			}
		}
	case string:
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				genres = append(genres, part)
			}
		}
	}

	return genres
}

// resolveID returns the first usable id among fields: a positive integral
// number or an all-digit string.
func resolveID(obj map[string]any, fields []string) (int, bool) {
	for _, f := range fields {
		if id, ok := asID(obj[f]); ok {
			return id, true
		}
	}
	return 0, false
}

func asID(v any) (int, bool) {
	switch val := v.(type) {
	case float64:
		if val <= 0 || val != math.Trunc(val) || val > maxExactID {
			return 0, false
		}
		return int(val), true
	case json.Number:
		id, err := strconv.Atoi(val.String())
		return id, err == nil && id > 0
	case int:
		return val, val > 0
	case int64:
		return int(val), val > 0
	case string:
		s := strings.TrimSpace(val)
		if s == "" || strings.TrimLeft(s, "0123456789") != "" {
			return 0, false
		}
		id, err := strconv.Atoi(s)
		return id, err == nil && id > 0
	default:
		return 0, false
	}
}

func firstString(obj map[string]any, fields []string) string {
	for _, f := range fields {
		if s, ok := obj[f].(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
		}
	}
	return ""
}

func firstNumber(obj map[string]any, fields []string) float64 {
	for _, f := range fields {
		switch v := obj[f].(type) {
		case float64:
			return v
		case json.Number:
			if n, err := v.Float64(); err == nil {
				return n
			}
		case string:
			if n, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				return n
			}
		}
	}
	return 0
}

func describe(v any) string {
	if v == nil {
		return "null"
	}
	switch v.(type) {
	case []any:
		return "array"
	case string:
		return "string"
	case float64, json.Number:
		return "number"
	case bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}
