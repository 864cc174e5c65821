package server

import (
	"net/http"

	"discofm/logger"
	"discofm/model"
	"discofm/store/query"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/mongo"
)

// AlbumRequest is the admin create payload for an album.
type AlbumRequest struct {
	ID          string `json:"_id"`
	AlbumName   string `json:"album_name"`
	ReleaseDate string `json:"release_date"`
	IsVisible   *bool  `json:"is_visible"`
}

// AlbumUpdateRequest is the admin partial-update payload for an album.
type AlbumUpdateRequest struct {
	AlbumName   *string `json:"album_name"`
	ReleaseDate *string `json:"release_date"`
	IsVisible   *bool   `json:"is_visible"`
}

// ListAlbumsHandler returns all visible albums.
func (h *APIHandler) ListAlbumsHandler(w http.ResponseWriter, r *http.Request) {
	filter := &query.Filter{
		Root:   query.Eq{Field: "is_visible", Value: true},
		SortBy: "release_date",
	}

	albums, err := h.albumRepo.Find(r.Context(), filter)
	if err != nil {
		logger.Error("failed to list albums", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	respondJSON(w, http.StatusOK, albums)
}

// AdminListAlbumsHandler returns a paginated list of all albums, hidden ones
// included.
func (h *APIHandler) AdminListAlbumsHandler(w http.ResponseWriter, r *http.Request) {
	p := parsePagination(r)

	total, err := h.albumRepo.Count(r.Context(), &query.Filter{})
	if err != nil {
		logger.Error("failed to count albums", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	filter := &query.Filter{
		SortBy: "release_date",
		Limit:  int64(p.Limit),
		Skip:   int64((p.Page - 1) * p.Limit),
	}

	albums, err := h.albumRepo.Find(r.Context(), filter)
	if err != nil {
		logger.Error("failed to list albums", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"albums":     albums,
		"total":      total,
		"totalPages": totalPages(total, p.Limit),
		"page":       p.Page,
		"limit":      p.Limit,
	})
}

// CreateAlbumHandler creates an album.
func (h *APIHandler) CreateAlbumHandler(w http.ResponseWriter, r *http.Request) {
	var req AlbumRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.AlbumName == "" || req.ReleaseDate == "" {
		respondError(w, http.StatusBadRequest, "album_name and release_date are required")
		return
	}

	releaseDate, err := parseDate(req.ReleaseDate)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid release_date")
		return
	}

	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	existing, err := h.albumRepo.GetByID(r.Context(), req.ID)
	if err != nil {
		logger.Error("failed to look up album", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if existing != nil {
		respondError(w, http.StatusBadRequest, "Album id already exists")
		return
	}

	visible := true
	if req.IsVisible != nil {
		visible = *req.IsVisible
	}

	album := &model.Album{
		ID:          req.ID,
		AlbumName:   req.AlbumName,
		ReleaseDate: releaseDate,
		IsVisible:   visible,
	}

	if err := h.albumRepo.Create(r.Context(), album); err != nil {
		logger.Error("failed to create album", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	logger.Info("album created",
		logger.String("id", album.ID),
		logger.String("name", album.AlbumName))
	respondJSON(w, http.StatusCreated, album)
}

// UpdateAlbumHandler applies a partial update to an album.
func (h *APIHandler) UpdateAlbumHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req AlbumUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	fields := make(map[string]interface{})
	if req.AlbumName != nil {
		fields["album_name"] = *req.AlbumName
	}
	if req.ReleaseDate != nil {
		releaseDate, err := parseDate(*req.ReleaseDate)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid release_date")
			return
		}
		fields["release_date"] = releaseDate
	}
	if req.IsVisible != nil {
		fields["is_visible"] = *req.IsVisible
	}

	if len(fields) == 0 {
		respondError(w, http.StatusBadRequest, "No fields to update")
		return
	}

	if err := h.albumRepo.Update(r.Context(), id, fields); err != nil {
		if err == mongo.ErrNoDocuments {
			respondError(w, http.StatusNotFound, "Album not found")
			return
		}
		logger.Error("failed to update album", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	h.respondWithAlbum(w, r, id)
}

// UpdateAlbumVisibilityHandler toggles only the visibility flag.
func (h *APIHandler) UpdateAlbumVisibilityHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req struct {
		IsVisible *bool `json:"is_visible"`
	}
	if err := decodeJSON(r, &req); err != nil || req.IsVisible == nil {
		respondError(w, http.StatusBadRequest, "is_visible is required")
		return
	}

	if err := h.albumRepo.SetVisibility(r.Context(), id, *req.IsVisible); err != nil {
		if err == mongo.ErrNoDocuments {
			respondError(w, http.StatusNotFound, "Album not found")
			return
		}
		logger.Error("failed to update album visibility", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	h.respondWithAlbum(w, r, id)
}

// DeleteAlbumHandler removes an album and every track referencing it. The
// reported track count is taken before the deletes; the two steps are not
// atomic.
func (h *APIHandler) DeleteAlbumHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	album, err := h.albumRepo.GetByID(r.Context(), id)
	if err != nil {
		logger.Error("failed to look up album", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if album == nil {
		respondError(w, http.StatusNotFound, "Album not found")
		return
	}

	trackCount, err := h.trackRepo.CountByAlbum(r.Context(), id)
	if err != nil {
		logger.Error("failed to count album tracks", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	if _, err := h.trackRepo.DeleteByAlbum(r.Context(), id); err != nil {
		logger.Error("failed to delete album tracks", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	if _, err := h.albumRepo.Delete(r.Context(), id); err != nil {
		logger.Error("failed to delete album", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	logger.Info("album deleted",
		logger.String("id", id),
		logger.Int64("deletedTracks", trackCount))
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":       "Album deleted",
		"deletedTracks": trackCount,
	})
}

// respondWithAlbum refetches an album and writes it.
func (h *APIHandler) respondWithAlbum(w http.ResponseWriter, r *http.Request, id string) {
	album, err := h.albumRepo.GetByID(r.Context(), id)
	if err != nil {
		logger.Error("failed to refetch album", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if album == nil {
		respondError(w, http.StatusNotFound, "Album not found")
		return
	}
	respondJSON(w, http.StatusOK, album)
}
