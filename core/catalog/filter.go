// Package catalog holds the track search filter construction and the
// discography analytics aggregation.
package catalog

import (
	"regexp"
	"strings"

	"discofm/store/query"
)

// SearchParams are the optional track search criteria. Zero values impose no
// constraint.
type SearchParams struct {
	Title       string
	AlbumTokens []string // album ids or names, already split on commas
	MinDuration *float64 // milliseconds
	MaxDuration *float64
	MinBPM      *float64
	MaxBPM      *float64
	Mood        string
}

// SplitAlbumTokens splits a comma-separated album parameter into trimmed,
// non-empty tokens.
func SplitAlbumTokens(raw string) []string {
	if raw == "" {
		return nil
	}
	tokens := make([]string, 0)
	for _, token := range strings.Split(raw, ",") {
		token = strings.TrimSpace(token)
		if token != "" {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

// BuildTrackFilter assembles the logical AND of all supplied constraints.
// albumIDs is the already-resolved album id set; the caller short-circuits to
// an empty result when tokens were supplied but nothing resolved, so an empty
// albumIDs slice here means "no album constraint".
func BuildTrackFilter(params SearchParams, albumIDs []string, visibleOnly bool) *query.Filter {
	preds := make([]query.Predicate, 0)

	if visibleOnly {
		preds = append(preds, query.Eq{Field: "is_visible", Value: true})
	}

	if params.Title != "" {
		preds = append(preds, query.Regex{
			Field:   "name",
			Pattern: regexp.QuoteMeta(params.Title),
		})
	}

	if len(albumIDs) > 0 {
		preds = append(preds, query.In{Field: "album_id", Values: albumIDs})
	}

	if params.MinDuration != nil || params.MaxDuration != nil {
		preds = append(preds, query.Range{
			Field: "duration_ms",
			Min:   params.MinDuration,
			Max:   params.MaxDuration,
		})
	}

	if params.MinBPM != nil || params.MaxBPM != nil {
		preds = append(preds, query.Range{
			Field: "tempo",
			Min:   params.MinBPM,
			Max:   params.MaxBPM,
		})
	}

	if params.Mood != "" {
		preds = append(preds, moodPredicates(params.Mood)...)
	}

	filter := &query.Filter{}
	if len(preds) > 0 {
		filter.Root = query.And{Preds: preds}
	}
	return filter
}
