package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/anonto42/circle/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	DeletePost(ctx context.Context, id string) error
	GetPostsByAuthor(ctx context.Context, authorID uint, skip, limit int64) ([]models.Post, error)
	GetPostsByAuthors(ctx context.Context, authorIDs []uint, limit int64) ([]models.Post, error)
	GetMostLiked(ctx context.Context, limit int64) ([]models.Post, error)
	GetRecentPublic(ctx context.Context, limit int64) ([]models.Post, error)
	HasPostSince(ctx context.Context, authorID uint, since time.Time) (bool, error)
	AdjustLikesCount(ctx context.Context, id string, delta int64) (int64, error)
	AdjustCommentsCount(ctx context.Context, id string, delta int64) error
	GetAllCounters(ctx context.Context) ([]models.Post, error)
	SetCounters(ctx context.Context, id primitive.ObjectID, likes, comments int64) error
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

// EnsureIndexes creates the indexes the feed and rate-limit queries rely on
func (r *MongoPostRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "author_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "is_public", Value: 1}, {Key: "likes_count", Value: -1}}},
		{Keys: bson.D{{Key: "is_public", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	return err
}

func parseObjectID(id string) (primitive.ObjectID, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %s", ErrInvalidID, id)
	}
	return objID, nil
}

func (r *MongoPostRepository) find(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]models.Post, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// CreatePost inserts a post, assigning an id and creation time when they are unset
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}
	_, err := r.collection.InsertOne(ctx, post)
	return translate(err)
}

// GetPostByID retrieves a post by ID from MongoDB
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	objID, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	var post models.Post
	if err := r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&post); err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

// DeletePost deletes a post by ID from MongoDB
func (r *MongoPostRepository) DeletePost(ctx context.Context, id string) error {
	objID, err := parseObjectID(id)
	if err != nil {
		return err
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// GetPostsByAuthor retrieves one author's posts, newest first
func (r *MongoPostRepository) GetPostsByAuthor(ctx context.Context, authorID uint, skip, limit int64) ([]models.Post, error) {
	opts := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	return r.find(ctx, bson.M{"author_id": authorID}, opts)
}

// GetPostsByAuthors retrieves the newest posts written by any of the given authors
func (r *MongoPostRepository) GetPostsByAuthors(ctx context.Context, authorIDs []uint, limit int64) ([]models.Post, error) {
	if len(authorIDs) == 0 {
		return []models.Post{}, nil
	}
	opts := options.Find().SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	return r.find(ctx, bson.M{"author_id": bson.M{"$in": authorIDs}}, opts)
}

// GetMostLiked retrieves public posts ordered by like count; _id keeps ties stable
func (r *MongoPostRepository) GetMostLiked(ctx context.Context, limit int64) ([]models.Post, error) {
	opts := options.Find().SetLimit(limit).SetSort(bson.D{{Key: "likes_count", Value: -1}, {Key: "_id", Value: -1}})
	return r.find(ctx, bson.M{"is_public": true}, opts)
}

// GetRecentPublic retrieves the newest public posts
func (r *MongoPostRepository) GetRecentPublic(ctx context.Context, limit int64) ([]models.Post, error) {
	opts := options.Find().SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	return r.find(ctx, bson.M{"is_public": true}, opts)
}

// HasPostSince reports whether the author created any post at or after since
func (r *MongoPostRepository) HasPostSince(ctx context.Context, authorID uint, since time.Time) (bool, error) {
	filter := bson.M{"author_id": authorID, "created_at": bson.M{"$gte": since}}
	opts := options.FindOne().SetProjection(bson.M{"_id": 1})
	err := r.collection.FindOne(ctx, filter, opts).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// AdjustLikesCount applies delta to a post's like counter and returns the new value
func (r *MongoPostRepository) AdjustLikesCount(ctx context.Context, id string, delta int64) (int64, error) {
	objID, err := parseObjectID(id)
	if err != nil {
		return 0, err
	}

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"likes_count": 1})

	var updated models.Post
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objID}, bson.M{"$inc": bson.M{"likes_count": delta}}, opts).Decode(&updated)
	if err != nil {
		return 0, translate(err)
	}
	return updated.LikesCount, nil
}

// AdjustCommentsCount applies delta to a post's comment counter
func (r *MongoPostRepository) AdjustCommentsCount(ctx context.Context, id string, delta int64) error {
	objID, err := parseObjectID(id)
	if err != nil {
		return err
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$inc": bson.M{"comments_count": delta}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// GetAllCounters returns every post with only its id, author and counter fields populated
func (r *MongoPostRepository) GetAllCounters(ctx context.Context) ([]models.Post, error) {
	opts := options.Find().SetProjection(bson.M{"author_id": 1, "likes_count": 1, "comments_count": 1})
	return r.find(ctx, bson.D{}, opts)
}

// SetCounters overwrites a post's denormalized counters
func (r *MongoPostRepository) SetCounters(ctx context.Context, id primitive.ObjectID, likes, comments int64) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"likes_count": likes, "comments_count": comments}})
	return err
}
