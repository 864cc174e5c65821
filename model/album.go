package model

import "time"

// Album represents a release grouping for tracks. The identifier is a
// catalog-assigned string, not an ObjectID, so it can survive re-imports.
type Album struct {
	ID          string    `json:"_id" bson:"_id"`
	AlbumName   string    `json:"album_name" bson:"album_name"`
	ReleaseDate time.Time `json:"release_date" bson:"release_date"`
	IsVisible   bool      `json:"is_visible" bson:"is_visible"`
}

// AlbumRef is the compact album projection embedded in track responses.
type AlbumRef struct {
	ID          string    `json:"_id"`
	AlbumName   string    `json:"album_name"`
	ReleaseDate time.Time `json:"release_date"`
}

// Ref returns the client-facing projection of the album.
func (a *Album) Ref() *AlbumRef {
	return &AlbumRef{
		ID:          a.ID,
		AlbumName:   a.AlbumName,
		ReleaseDate: a.ReleaseDate,
	}
}
