package server

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"time"

	"discofm/config"
	"discofm/core/auth"
	"discofm/model"
	"discofm/repository"
)

// APIHandler handles all API requests.
type APIHandler struct {
	trackRepo repository.TrackRepository
	albumRepo repository.AlbumRepository
	userRepo  repository.UserRepository
	tokens    *auth.Manager
	cfg       *config.Config
}

// NewAPIHandler creates a new API handler.
func NewAPIHandler(
	trackRepo repository.TrackRepository,
	albumRepo repository.AlbumRepository,
	userRepo repository.UserRepository,
	tokens *auth.Manager,
	cfg *config.Config,
) *APIHandler {
	return &APIHandler{
		trackRepo: trackRepo,
		albumRepo: albumRepo,
		userRepo:  userRepo,
		tokens:    tokens,
		cfg:       cfg,
	}
}

// decodeJSON decodes a JSON request body into v.
func decodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// respondError writes a JSON error body. Internal details stay in the logs;
// the client only sees the message given here.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// pagination holds the parsed page/limit query parameters.
type pagination struct {
	Page  int
	Limit int
}

// parsePagination reads page and limit with the catalog defaults.
func parsePagination(r *http.Request) pagination {
	p := pagination{Page: 1, Limit: 10}
	if raw := r.URL.Query().Get("page"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			p.Page = v
		}
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			p.Limit = v
		}
	}
	return p
}

// totalPages computes ceil(total / limit).
func totalPages(total int64, limit int) int {
	if total == 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(limit)))
}

// parseFloatParam parses an optional numeric query parameter; nil when absent
// or malformed.
func parseFloatParam(r *http.Request, name string) *float64 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

// parseDate parses a date from the formats the clients send.
func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

// expandAlbums populates the album projection on each track from one batched
// album lookup.
func (h *APIHandler) expandAlbums(ctx context.Context, tracks []model.Track) ([]model.Track, error) {
	ids := make([]string, 0, len(tracks))
	seen := make(map[string]bool, len(tracks))
	for _, track := range tracks {
		if track.AlbumID != "" && !seen[track.AlbumID] {
			seen[track.AlbumID] = true
			ids = append(ids, track.AlbumID)
		}
	}

	albums, err := h.albumRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	for i := range tracks {
		if album, ok := albums[tracks[i].AlbumID]; ok {
			tracks[i].Album = album.Ref()
			tracks[i].AlbumTitle = album.AlbumName
		}
	}
	return tracks, nil
}
