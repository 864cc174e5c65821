package repository

import (
	"context"
	"fmt"
	"time"

	"discofm/model"
	"discofm/store/query"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// TrackRepository defines the interface for track data operations.
type TrackRepository interface {
	Create(ctx context.Context, track *model.Track) error
	GetByTrackID(ctx context.Context, id string) (*model.Track, error)
	Find(ctx context.Context, filter *query.Filter) ([]model.Track, error)
	Count(ctx context.Context, filter *query.Filter) (int64, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	SetVisibility(ctx context.Context, id string, visible bool) error
	Delete(ctx context.Context, id string) (int64, error)
	CountByAlbum(ctx context.Context, albumID string) (int64, error)
	DeleteByAlbum(ctx context.Context, albumID string) (int64, error)
}

// mongoTrackRepository implements TrackRepository against MongoDB.
type mongoTrackRepository struct {
	collection *mongo.Collection
}

// NewMongoTrackRepository creates a new mongoTrackRepository.
func NewMongoTrackRepository(database *mongo.Database) TrackRepository {
	return &mongoTrackRepository{collection: database.Collection("tracks")}
}

// EnsureTrackIndexes creates the unique index on the catalog track id.
func EnsureTrackIndexes(ctx context.Context, database *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := database.Collection("tracks").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: uniqueIndex(),
	})
	if err != nil {
		return fmt.Errorf("failed to create track indexes: %w", err)
	}
	return nil
}

// Create adds a new track to the database.
func (r *mongoTrackRepository) Create(ctx context.Context, track *model.Track) error {
	res, err := r.collection.InsertOne(ctx, track)
	if err != nil {
		return fmt.Errorf("failed to insert track %s: %w", track.TrackID, err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		track.OID = oid
	}
	return nil
}

// GetByTrackID retrieves a track by its catalog id. Returns nil when absent.
func (r *mongoTrackRepository) GetByTrackID(ctx context.Context, id string) (*model.Track, error) {
	track := &model.Track{}
	err := r.collection.FindOne(ctx, bson.M{"id": id}).Decode(track)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find track %s: %w", id, err)
	}
	return track, nil
}

// Find retrieves all tracks matching the filter.
func (r *mongoTrackRepository) Find(ctx context.Context, filter *query.Filter) ([]model.Track, error) {
	cursor, err := r.collection.Find(ctx, filter.BSON(), filter.FindOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer cursor.Close(ctx)

	tracks := make([]model.Track, 0)
	if err := cursor.All(ctx, &tracks); err != nil {
		return nil, fmt.Errorf("failed to decode tracks: %w", err)
	}
	return tracks, nil
}

// Count counts the tracks matching the filter, ignoring paging.
func (r *mongoTrackRepository) Count(ctx context.Context, filter *query.Filter) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, filter.BSON())
	if err != nil {
		return 0, fmt.Errorf("failed to count tracks: %w", err)
	}
	return count, nil
}

// Update applies a partial update to the track with the given catalog id.
func (r *mongoTrackRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": bson.M(fields)})
	if err != nil {
		return fmt.Errorf("failed to update track %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// SetVisibility flips the visibility flag of a track.
func (r *mongoTrackRepository) SetVisibility(ctx context.Context, id string, visible bool) error {
	return r.Update(ctx, id, map[string]interface{}{"is_visible": visible})
}

// Delete removes a track, returning the number of removed documents.
func (r *mongoTrackRepository) Delete(ctx context.Context, id string) (int64, error) {
	res, err := r.collection.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return 0, fmt.Errorf("failed to delete track %s: %w", id, err)
	}
	return res.DeletedCount, nil
}

// CountByAlbum counts the tracks referencing the given album.
func (r *mongoTrackRepository) CountByAlbum(ctx context.Context, albumID string) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"album_id": albumID})
	if err != nil {
		return 0, fmt.Errorf("failed to count tracks for album %s: %w", albumID, err)
	}
	return count, nil
}

// DeleteByAlbum removes every track referencing the given album.
func (r *mongoTrackRepository) DeleteByAlbum(ctx context.Context, albumID string) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"album_id": albumID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete tracks for album %s: %w", albumID, err)
	}
	return res.DeletedCount, nil
}
