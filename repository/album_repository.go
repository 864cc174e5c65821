package repository

import (
	"context"
	"fmt"
	"regexp"

	"discofm/model"
	"discofm/store/query"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AlbumRepository defines the interface for album data operations.
type AlbumRepository interface {
	Create(ctx context.Context, album *model.Album) error
	GetByID(ctx context.Context, id string) (*model.Album, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]model.Album, error)
	Find(ctx context.Context, filter *query.Filter) ([]model.Album, error)
	Count(ctx context.Context, filter *query.Filter) (int64, error)
	ResolveIDs(ctx context.Context, tokens []string) ([]string, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	SetVisibility(ctx context.Context, id string, visible bool) error
	Delete(ctx context.Context, id string) (int64, error)
}

// mongoAlbumRepository implements AlbumRepository against MongoDB.
type mongoAlbumRepository struct {
	collection *mongo.Collection
}

// NewMongoAlbumRepository creates a new mongoAlbumRepository.
func NewMongoAlbumRepository(database *mongo.Database) AlbumRepository {
	return &mongoAlbumRepository{collection: database.Collection("albums")}
}

// Create adds a new album to the database.
func (r *mongoAlbumRepository) Create(ctx context.Context, album *model.Album) error {
	if _, err := r.collection.InsertOne(ctx, album); err != nil {
		return fmt.Errorf("failed to insert album %s: %w", album.ID, err)
	}
	return nil
}

// GetByID retrieves an album by id. Returns nil when absent.
func (r *mongoAlbumRepository) GetByID(ctx context.Context, id string) (*model.Album, error) {
	album := &model.Album{}
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(album)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find album %s: %w", id, err)
	}
	return album, nil
}

// GetByIDs retrieves the albums with the given ids, keyed by id.
func (r *mongoAlbumRepository) GetByIDs(ctx context.Context, ids []string) (map[string]model.Album, error) {
	albums := make(map[string]model.Album, len(ids))
	if len(ids) == 0 {
		return albums, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to query albums by ids: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var album model.Album
		if err := cursor.Decode(&album); err != nil {
			return nil, fmt.Errorf("failed to decode album: %w", err)
		}
		albums[album.ID] = album
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("error during album cursor iteration: %w", err)
	}
	return albums, nil
}

// Find retrieves all albums matching the filter.
func (r *mongoAlbumRepository) Find(ctx context.Context, filter *query.Filter) ([]model.Album, error) {
	cursor, err := r.collection.Find(ctx, filter.BSON(), filter.FindOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to query albums: %w", err)
	}
	defer cursor.Close(ctx)

	albums := make([]model.Album, 0)
	if err := cursor.All(ctx, &albums); err != nil {
		return nil, fmt.Errorf("failed to decode albums: %w", err)
	}
	return albums, nil
}

// Count counts the albums matching the filter, ignoring paging.
func (r *mongoAlbumRepository) Count(ctx context.Context, filter *query.Filter) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, filter.BSON())
	if err != nil {
		return 0, fmt.Errorf("failed to count albums: %w", err)
	}
	return count, nil
}

// ResolveIDs resolves a mixed list of album ids and album names to the set of
// matching album ids. Name matching is case-insensitive and exact; tokens that
// resolve to nothing are dropped.
func (r *mongoAlbumRepository) ResolveIDs(ctx context.Context, tokens []string) ([]string, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	clauses := []bson.M{{"_id": bson.M{"$in": tokens}}}
	for _, token := range tokens {
		clauses = append(clauses, bson.M{"album_name": bson.M{
			"$regex":   "^" + regexp.QuoteMeta(token) + "$",
			"$options": "i",
		}})
	}

	cursor, err := r.collection.Find(ctx, bson.M{"$or": clauses},
		options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve album tokens: %w", err)
	}
	defer cursor.Close(ctx)

	ids := make([]string, 0, len(tokens))
	for cursor.Next(ctx) {
		var doc struct {
			ID string `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode album id: %w", err)
		}
		ids = append(ids, doc.ID)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("error during album id cursor iteration: %w", err)
	}
	return ids, nil
}

// Update applies a partial update to the album with the given id.
func (r *mongoAlbumRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M(fields)})
	if err != nil {
		return fmt.Errorf("failed to update album %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// SetVisibility flips the visibility flag of an album.
func (r *mongoAlbumRepository) SetVisibility(ctx context.Context, id string, visible bool) error {
	return r.Update(ctx, id, map[string]interface{}{"is_visible": visible})
}

// Delete removes an album, returning the number of removed documents.
func (r *mongoAlbumRepository) Delete(ctx context.Context, id string) (int64, error) {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, fmt.Errorf("failed to delete album %s: %w", id, err)
	}
	return res.DeletedCount, nil
}

// uniqueIndex returns index options with the unique flag set.
func uniqueIndex() *options.IndexOptions {
	return options.Index().SetUnique(true)
}
