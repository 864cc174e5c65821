package catalog

import (
	"strings"

	"discofm/store/query"
)

func floatPtr(v float64) *float64 {
	return &v
}

// moodPredicates maps a mood name to its audio-feature constraints. Unknown
// moods impose no constraint; search stays permissive.
func moodPredicates(mood string) []query.Predicate {
	switch strings.ToLower(mood) {
	case "happy":
		return []query.Predicate{
			query.Range{Field: "valence", Min: floatPtr(0.6)},
			query.Range{Field: "energy", Min: floatPtr(0.6)},
			query.Range{Field: "danceability", Min: floatPtr(0.6)},
		}
	case "sad":
		return []query.Predicate{
			query.Range{Field: "valence", Max: floatPtr(0.4)},
			query.Range{Field: "energy", Max: floatPtr(0.4)},
			query.Range{Field: "tempo", Max: floatPtr(100)},
		}
	case "energetic":
		return []query.Predicate{
			query.Range{Field: "energy", Min: floatPtr(0.7)},
			query.Range{Field: "tempo", Min: floatPtr(120)},
			query.Range{Field: "loudness", Min: floatPtr(-10)},
		}
	case "calm":
		return []query.Predicate{
			query.Range{Field: "energy", Max: floatPtr(0.4)},
			query.Range{Field: "acousticness", Min: floatPtr(0.6)},
			query.Range{Field: "loudness", Max: floatPtr(-15)},
		}
	default:
		return nil
	}
}

// Moods lists the recognized mood names.
func Moods() []string {
	return []string{"happy", "sad", "energetic", "calm"}
}
