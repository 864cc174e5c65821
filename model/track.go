package model

import "go.mongodb.org/mongo-driver/bson/primitive"

// Track represents a single song with its audio-feature metrics. TrackID is
// the catalog identifier, distinct from the database-assigned ObjectID. The
// stored album_id foreign key is never serialized raw; responses carry the
// expanded Album projection under the same JSON key instead.
type Track struct {
	OID     primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	TrackID string             `json:"id" bson:"id"`
	Name    string             `json:"name" bson:"name"`
	AlbumID string             `json:"-" bson:"album_id"`

	TrackNumber int    `json:"track_number" bson:"track_number"`
	URI         string `json:"uri,omitempty" bson:"uri,omitempty"`

	Acousticness     float64 `json:"acousticness" bson:"acousticness"`
	Danceability     float64 `json:"danceability" bson:"danceability"`
	Energy           float64 `json:"energy" bson:"energy"`
	Instrumentalness float64 `json:"instrumentalness" bson:"instrumentalness"`
	Liveness         float64 `json:"liveness" bson:"liveness"`
	Loudness         float64 `json:"loudness" bson:"loudness"` // dB, typically negative
	Speechiness      float64 `json:"speechiness" bson:"speechiness"`
	Tempo            float64 `json:"tempo" bson:"tempo"` // BPM
	Valence          float64 `json:"valence" bson:"valence"`

	Popularity int  `json:"popularity" bson:"popularity"`
	DurationMs int  `json:"duration_ms" bson:"duration_ms"`
	IsVisible  bool `json:"is_visible" bson:"is_visible"`

	// Populated for responses only, never stored.
	Album      *AlbumRef `json:"album_id,omitempty" bson:"-"`
	AlbumTitle string    `json:"album,omitempty" bson:"-"`
}
