package server

import (
	"net/http"
	"time"

	"discofm/core/catalog"
	"discofm/logger"
	"discofm/model"
	"discofm/store/query"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/mongo"
)

// TrackRequest is the admin create payload for a track.
type TrackRequest struct {
	TrackID          string   `json:"id"`
	Name             string   `json:"name"`
	AlbumID          string   `json:"album_id"`
	TrackNumber      int      `json:"track_number"`
	URI              string   `json:"uri"`
	Acousticness     float64  `json:"acousticness"`
	Danceability     float64  `json:"danceability"`
	Energy           float64  `json:"energy"`
	Instrumentalness float64  `json:"instrumentalness"`
	Liveness         float64  `json:"liveness"`
	Loudness         float64  `json:"loudness"`
	Speechiness      float64  `json:"speechiness"`
	Tempo            float64  `json:"tempo"`
	Valence          float64  `json:"valence"`
	Popularity       int      `json:"popularity"`
	DurationMs       int      `json:"duration_ms"`
	IsVisible        *bool    `json:"is_visible"`
}

// TrackUpdateRequest is the admin partial-update payload for a track.
// Nil fields stay untouched.
type TrackUpdateRequest struct {
	Name             *string  `json:"name"`
	AlbumID          *string  `json:"album_id"`
	TrackNumber      *int     `json:"track_number"`
	URI              *string  `json:"uri"`
	Acousticness     *float64 `json:"acousticness"`
	Danceability     *float64 `json:"danceability"`
	Energy           *float64 `json:"energy"`
	Instrumentalness *float64 `json:"instrumentalness"`
	Liveness         *float64 `json:"liveness"`
	Loudness         *float64 `json:"loudness"`
	Speechiness      *float64 `json:"speechiness"`
	Tempo            *float64 `json:"tempo"`
	Valence          *float64 `json:"valence"`
	Popularity       *int     `json:"popularity"`
	DurationMs       *int     `json:"duration_ms"`
	IsVisible        *bool    `json:"is_visible"`
}

// GetTopTracksHandler returns the 50 most popular visible tracks.
func (h *APIHandler) GetTopTracksHandler(w http.ResponseWriter, r *http.Request) {
	filter := &query.Filter{
		Root:     query.Eq{Field: "is_visible", Value: true},
		SortBy:   "popularity",
		SortDesc: true,
		Limit:    50,
	}

	tracks, err := h.trackRepo.Find(r.Context(), filter)
	if err != nil {
		logger.Error("failed to fetch top tracks", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	tracks, err = h.expandAlbums(r.Context(), tracks)
	if err != nil {
		logger.Error("failed to expand albums", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	respondJSON(w, http.StatusOK, tracks)
}

// SearchByTitleHandler returns visible tracks whose name contains the given
// substring, case-insensitively.
func (h *APIHandler) SearchByTitleHandler(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("title")
	if title == "" {
		respondError(w, http.StatusBadRequest, "Title is required")
		return
	}

	filter := catalog.BuildTrackFilter(catalog.SearchParams{Title: title}, nil, true)

	tracks, err := h.trackRepo.Find(r.Context(), filter)
	if err != nil {
		logger.Error("failed to search tracks by title", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	tracks, err = h.expandAlbums(r.Context(), tracks)
	if err != nil {
		logger.Error("failed to expand albums", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	respondJSON(w, http.StatusOK, tracks)
}

// SearchWithFiltersHandler combines title, album, duration, BPM and mood
// constraints into one query.
func (h *APIHandler) SearchWithFiltersHandler(w http.ResponseWriter, r *http.Request) {
	params := catalog.SearchParams{
		Title:       r.URL.Query().Get("title"),
		AlbumTokens: catalog.SplitAlbumTokens(r.URL.Query().Get("album")),
		MinDuration: parseFloatParam(r, "minDuration"),
		MaxDuration: parseFloatParam(r, "maxDuration"),
		MinBPM:      parseFloatParam(r, "minBPM"),
		MaxBPM:      parseFloatParam(r, "maxBPM"),
		Mood:        r.URL.Query().Get("mood"),
	}

	var albumIDs []string
	if len(params.AlbumTokens) > 0 {
		resolved, err := h.albumRepo.ResolveIDs(r.Context(), params.AlbumTokens)
		if err != nil {
			logger.Error("failed to resolve album tokens", logger.ErrorField(err))
			respondError(w, http.StatusInternalServerError, "Internal Server Error")
			return
		}
		// Album names were supplied but none exist: empty result, never an
		// unfiltered query.
		if len(resolved) == 0 {
			respondJSON(w, http.StatusOK, []model.Track{})
			return
		}
		albumIDs = resolved
	}

	filter := catalog.BuildTrackFilter(params, albumIDs, true)

	tracks, err := h.trackRepo.Find(r.Context(), filter)
	if err != nil {
		logger.Error("failed to search tracks with filters", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	tracks, err = h.expandAlbums(r.Context(), tracks)
	if err != nil {
		logger.Error("failed to expand albums", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	respondJSON(w, http.StatusOK, tracks)
}

// AnalyticsHandler returns the discography summary statistics.
func (h *APIHandler) AnalyticsHandler(w http.ResponseWriter, r *http.Request) {
	filter := &query.Filter{Root: query.Eq{Field: "is_visible", Value: true}}

	tracks, err := h.trackRepo.Find(r.Context(), filter)
	if err != nil {
		logger.Error("failed to fetch tracks for analytics", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	ids := make([]string, 0, len(tracks))
	seen := make(map[string]bool, len(tracks))
	for _, track := range tracks {
		if track.AlbumID != "" && !seen[track.AlbumID] {
			seen[track.AlbumID] = true
			ids = append(ids, track.AlbumID)
		}
	}

	albums, err := h.albumRepo.GetByIDs(r.Context(), ids)
	if err != nil {
		logger.Error("failed to fetch albums for analytics", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	summary, err := catalog.Summarize(tracks, albums, time.Now())
	if err == catalog.ErrNoData {
		respondJSON(w, http.StatusOK, map[string]string{"error": "No data available"})
		return
	}
	if err != nil {
		logger.Error("failed to summarize catalog", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

// AdminListTracksHandler returns a paginated list of all tracks, hidden ones
// included.
func (h *APIHandler) AdminListTracksHandler(w http.ResponseWriter, r *http.Request) {
	p := parsePagination(r)

	total, err := h.trackRepo.Count(r.Context(), &query.Filter{})
	if err != nil {
		logger.Error("failed to count tracks", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	filter := &query.Filter{
		SortBy: "name",
		Limit:  int64(p.Limit),
		Skip:   int64((p.Page - 1) * p.Limit),
	}

	tracks, err := h.trackRepo.Find(r.Context(), filter)
	if err != nil {
		logger.Error("failed to list tracks", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	tracks, err = h.expandAlbums(r.Context(), tracks)
	if err != nil {
		logger.Error("failed to expand albums", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"tracks":     tracks,
		"total":      total,
		"totalPages": totalPages(total, p.Limit),
		"page":       p.Page,
		"limit":      p.Limit,
	})
}

// CreateTrackHandler creates a track. The referenced album must exist.
func (h *APIHandler) CreateTrackHandler(w http.ResponseWriter, r *http.Request) {
	var req TrackRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Name == "" || req.AlbumID == "" {
		respondError(w, http.StatusBadRequest, "Name and album_id are required")
		return
	}

	album, err := h.albumRepo.GetByID(r.Context(), req.AlbumID)
	if err != nil {
		logger.Error("failed to look up album", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if album == nil {
		respondError(w, http.StatusBadRequest, "Referenced album does not exist")
		return
	}

	if req.TrackID == "" {
		req.TrackID = uuid.NewString()
	}

	existing, err := h.trackRepo.GetByTrackID(r.Context(), req.TrackID)
	if err != nil {
		logger.Error("failed to look up track", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if existing != nil {
		respondError(w, http.StatusBadRequest, "Track id already exists")
		return
	}

	visible := true
	if req.IsVisible != nil {
		visible = *req.IsVisible
	}

	track := &model.Track{
		TrackID:          req.TrackID,
		Name:             req.Name,
		AlbumID:          req.AlbumID,
		TrackNumber:      req.TrackNumber,
		URI:              req.URI,
		Acousticness:     req.Acousticness,
		Danceability:     req.Danceability,
		Energy:           req.Energy,
		Instrumentalness: req.Instrumentalness,
		Liveness:         req.Liveness,
		Loudness:         req.Loudness,
		Speechiness:      req.Speechiness,
		Tempo:            req.Tempo,
		Valence:          req.Valence,
		Popularity:       req.Popularity,
		DurationMs:       req.DurationMs,
		IsVisible:        visible,
	}

	if err := h.trackRepo.Create(r.Context(), track); err != nil {
		logger.Error("failed to create track", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	track.Album = album.Ref()
	track.AlbumTitle = album.AlbumName

	logger.Info("track created",
		logger.String("id", track.TrackID),
		logger.String("name", track.Name))
	respondJSON(w, http.StatusCreated, track)
}

// UpdateTrackHandler applies a partial update to a track.
func (h *APIHandler) UpdateTrackHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req TrackUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	fields := make(map[string]interface{})
	setString := func(key string, v *string) {
		if v != nil {
			fields[key] = *v
		}
	}
	setInt := func(key string, v *int) {
		if v != nil {
			fields[key] = *v
		}
	}
	setFloat := func(key string, v *float64) {
		if v != nil {
			fields[key] = *v
		}
	}

	setString("name", req.Name)
	setString("uri", req.URI)
	setInt("track_number", req.TrackNumber)
	setInt("popularity", req.Popularity)
	setInt("duration_ms", req.DurationMs)
	setFloat("acousticness", req.Acousticness)
	setFloat("danceability", req.Danceability)
	setFloat("energy", req.Energy)
	setFloat("instrumentalness", req.Instrumentalness)
	setFloat("liveness", req.Liveness)
	setFloat("loudness", req.Loudness)
	setFloat("speechiness", req.Speechiness)
	setFloat("tempo", req.Tempo)
	setFloat("valence", req.Valence)
	if req.IsVisible != nil {
		fields["is_visible"] = *req.IsVisible
	}

	if req.AlbumID != nil {
		album, err := h.albumRepo.GetByID(r.Context(), *req.AlbumID)
		if err != nil {
			logger.Error("failed to look up album", logger.ErrorField(err))
			respondError(w, http.StatusInternalServerError, "Internal Server Error")
			return
		}
		if album == nil {
			respondError(w, http.StatusBadRequest, "Referenced album does not exist")
			return
		}
		fields["album_id"] = *req.AlbumID
	}

	if len(fields) == 0 {
		respondError(w, http.StatusBadRequest, "No fields to update")
		return
	}

	if err := h.trackRepo.Update(r.Context(), id, fields); err != nil {
		if err == mongo.ErrNoDocuments {
			respondError(w, http.StatusNotFound, "Track not found")
			return
		}
		logger.Error("failed to update track", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	h.respondWithTrack(w, r, id)
}

// UpdateTrackVisibilityHandler toggles only the visibility flag.
func (h *APIHandler) UpdateTrackVisibilityHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req struct {
		IsVisible *bool `json:"is_visible"`
	}
	if err := decodeJSON(r, &req); err != nil || req.IsVisible == nil {
		respondError(w, http.StatusBadRequest, "is_visible is required")
		return
	}

	if err := h.trackRepo.SetVisibility(r.Context(), id, *req.IsVisible); err != nil {
		if err == mongo.ErrNoDocuments {
			respondError(w, http.StatusNotFound, "Track not found")
			return
		}
		logger.Error("failed to update track visibility", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	h.respondWithTrack(w, r, id)
}

// DeleteTrackHandler removes a track.
func (h *APIHandler) DeleteTrackHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	count, err := h.trackRepo.Delete(r.Context(), id)
	if err != nil {
		logger.Error("failed to delete track", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if count == 0 {
		respondError(w, http.StatusNotFound, "Track not found")
		return
	}

	logger.Info("track deleted", logger.String("id", id))
	respondJSON(w, http.StatusOK, map[string]string{"message": "Track deleted"})
}

// respondWithTrack refetches a track and writes it album-expanded.
func (h *APIHandler) respondWithTrack(w http.ResponseWriter, r *http.Request, id string) {
	track, err := h.trackRepo.GetByTrackID(r.Context(), id)
	if err != nil {
		logger.Error("failed to refetch track", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if track == nil {
		respondError(w, http.StatusNotFound, "Track not found")
		return
	}

	expanded, err := h.expandAlbums(r.Context(), []model.Track{*track})
	if err != nil {
		logger.Error("failed to expand albums", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	respondJSON(w, http.StatusOK, expanded[0])
}
