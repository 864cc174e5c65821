package cmd

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"discofm/config"
	"discofm/db"
	"discofm/model"
	"discofm/repository"
	"discofm/store/query"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Import a discography CSV into the catalog",
	Long: `Import a cleaned discography CSV (one row per track, with album name,
release date and audio features) into MongoDB. Albums are created on first
sight; tracks reference them by id.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSeed(cmd.Context(), seedFile)
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "path to the discography CSV file")
	seedCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(ctx context.Context, path string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	database, err := db.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Disconnect(ctx, database)

	trackRepo := repository.NewMongoTrackRepository(database)
	albumRepo := repository.NewMongoAlbumRepository(database)

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read CSV header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"name", "album", "release_date", "id", "duration_ms"} {
		if _, ok := col[required]; !ok {
			return fmt.Errorf("seed file is missing required column %q", required)
		}
	}

	// Albums already in the catalog keep their ids across re-imports.
	existing, err := albumRepo.Find(ctx, &query.Filter{})
	if err != nil {
		return err
	}
	albumIDsByName := make(map[string]string, len(existing))
	for _, album := range existing {
		albumIDsByName[strings.ToLower(album.AlbumName)] = album.ID
	}

	records, err := reader.ReadAll()
	if err != nil {
		return fmt.Errorf("failed to read CSV rows: %w", err)
	}

	field := func(record []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}
	floatField := func(record []string, name string) float64 {
		v, _ := strconv.ParseFloat(field(record, name), 64)
		return v
	}
	intField := func(record []string, name string) int {
		v, _ := strconv.Atoi(field(record, name))
		return v
	}

	var albumsCreated, tracksCreated int
	for _, record := range records {
		albumName := field(record, "album")
		if albumName == "" {
			continue
		}

		albumID, ok := albumIDsByName[strings.ToLower(albumName)]
		if !ok {
			releaseDate, err := parseSeedDate(field(record, "release_date"))
			if err != nil {
				return fmt.Errorf("invalid release_date for album %q: %w", albumName, err)
			}

			album := &model.Album{
				ID:          uuid.NewString(),
				AlbumName:   albumName,
				ReleaseDate: releaseDate,
				IsVisible:   true,
			}
			if err := albumRepo.Create(ctx, album); err != nil {
				return err
			}
			albumID = album.ID
			albumIDsByName[strings.ToLower(albumName)] = albumID
			albumsCreated++
		}

		trackID := field(record, "id")
		if trackID == "" {
			trackID = uuid.NewString()
		}
		if existing, err := trackRepo.GetByTrackID(ctx, trackID); err != nil {
			return err
		} else if existing != nil {
			continue
		}

		track := &model.Track{
			TrackID:          trackID,
			Name:             field(record, "name"),
			AlbumID:          albumID,
			TrackNumber:      intField(record, "track_number"),
			URI:              field(record, "uri"),
			Acousticness:     floatField(record, "acousticness"),
			Danceability:     floatField(record, "danceability"),
			Energy:           floatField(record, "energy"),
			Instrumentalness: floatField(record, "instrumentalness"),
			Liveness:         floatField(record, "liveness"),
			Loudness:         floatField(record, "loudness"),
			Speechiness:      floatField(record, "speechiness"),
			Tempo:            floatField(record, "tempo"),
			Valence:          floatField(record, "valence"),
			Popularity:       intField(record, "popularity"),
			DurationMs:       intField(record, "duration_ms"),
			IsVisible:        true,
		}
		if err := trackRepo.Create(ctx, track); err != nil {
			return err
		}
		tracksCreated++
	}

	fmt.Printf("Seed complete: %d albums, %d tracks imported\n", albumsCreated, tracksCreated)
	return nil
}

// parseSeedDate accepts the date formats that appear in exported datasets.
func parseSeedDate(raw string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}
