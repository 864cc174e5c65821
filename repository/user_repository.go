package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"discofm/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrDuplicateUser is returned when a username or email is already taken.
var ErrDuplicateUser = errors.New("username or email already exists")

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// mongoUserRepository implements UserRepository against MongoDB.
type mongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new mongoUserRepository.
func NewMongoUserRepository(database *mongo.Database) UserRepository {
	return &mongoUserRepository{collection: database.Collection("users")}
}

// EnsureUserIndexes creates the unique indexes on username and email.
func EnsureUserIndexes(ctx context.Context, database *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := database.Collection("users").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: uniqueIndex()},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: uniqueIndex()},
	})
	if err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}
	return nil
}

// Create adds a new user. Returns ErrDuplicateUser when the username or email
// is already taken.
func (r *mongoUserRepository) Create(ctx context.Context, user *model.User) (primitive.ObjectID, error) {
	existing := r.collection.FindOne(ctx, bson.M{"$or": []bson.M{
		{"username": user.Username},
		{"email": user.Email},
	}})
	if existing.Err() == nil {
		return primitive.NilObjectID, ErrDuplicateUser
	}
	if existing.Err() != mongo.ErrNoDocuments {
		return primitive.NilObjectID, fmt.Errorf("failed to check for existing user: %w", existing.Err())
	}

	user.CreatedAt = time.Now()
	res, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		// The unique indexes close the race between check and insert.
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, ErrDuplicateUser
		}
		return primitive.NilObjectID, fmt.Errorf("failed to insert user: %w", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	user.ID = oid
	return oid, nil
}

// GetByID retrieves a user by id. Returns nil when absent.
func (r *mongoUserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetByUsername retrieves a user by username. Returns nil when absent.
func (r *mongoUserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

// GetByEmail retrieves a user by email. Returns nil when absent.
func (r *mongoUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *mongoUserRepository) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	user := &model.User{}
	err := r.collection.FindOne(ctx, filter).Decode(user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}
