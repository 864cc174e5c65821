package catalog

import (
	"errors"
	"math"
	"sort"
	"time"

	"discofm/model"
)

// ErrNoData signals that no tracks (or no album info) exist to aggregate.
// Callers translate it to the no-data payload instead of returning zeros.
var ErrNoData = errors.New("catalog: no data available")

// Summary holds the discography-wide statistics.
type Summary struct {
	TotalSongs           int `json:"totalSongs"`
	TotalAlbums          int `json:"totalAlbums"`
	TotalDurationMinutes int `json:"totalDurationMinutes"`
	YearsSinceFirstAlbum int `json:"yearsSinceFirstAlbum"`
	DaysSinceLastAlbum   int `json:"daysSinceLastAlbum"`
}

// Summarize reduces the track collection, joined with its albums, to the
// summary statistics. The distinct album set is derived from the album ids the
// tracks actually reference, so albums without tracks do not count. Duration
// is reported in whole minutes, rounded half away from zero.
func Summarize(tracks []model.Track, albums map[string]model.Album, now time.Time) (*Summary, error) {
	if len(tracks) == 0 {
		return nil, ErrNoData
	}

	totalDurationMs := 0
	referenced := make(map[string]model.Album)
	for _, track := range tracks {
		totalDurationMs += track.DurationMs
		if album, ok := albums[track.AlbumID]; ok {
			referenced[album.ID] = album
		}
	}

	if len(referenced) == 0 {
		return nil, ErrNoData
	}

	sorted := make([]model.Album, 0, len(referenced))
	for _, album := range referenced {
		sorted = append(sorted, album)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ReleaseDate.Before(sorted[j].ReleaseDate)
	})

	first := sorted[0]
	last := sorted[len(sorted)-1]

	return &Summary{
		TotalSongs:           len(tracks),
		TotalAlbums:          len(referenced),
		TotalDurationMinutes: int(math.Round(float64(totalDurationMs) / 60000.0)),
		YearsSinceFirstAlbum: now.Year() - first.ReleaseDate.Year(),
		DaysSinceLastAlbum:   int(math.Floor(now.Sub(last.ReleaseDate).Hours() / 24)),
	}, nil
}
