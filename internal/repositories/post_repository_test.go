package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/anonto42/circle/backend/internal/models"
)

const postsNS = "circle.posts"

func TestMongoPostRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("HasPostSince reports a recent post", func(mt *mtest.T) {
		repo := NewMongoPostRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, postsNS, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}}))

		recent, err := repo.HasPostSince(ctx, 7, time.Now().Add(-time.Minute))

		require.NoError(mt, err)
		assert.True(mt, recent)
	})

	mt.Run("HasPostSince is false when nothing matches", func(mt *mtest.T) {
		repo := NewMongoPostRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, postsNS, mtest.FirstBatch))

		recent, err := repo.HasPostSince(ctx, 7, time.Now().Add(-time.Minute))

		require.NoError(mt, err)
		assert.False(mt, recent)
	})

	mt.Run("AdjustLikesCount returns the updated counter", func(mt *mtest.T) {
		repo := NewMongoPostRepository(mt.DB)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{
			Key:   "value",
			Value: bson.D{{Key: "_id", Value: id}, {Key: "likes_count", Value: int64(4)}},
		}))

		count, err := repo.AdjustLikesCount(ctx, id.Hex(), 1)

		require.NoError(mt, err)
		assert.Equal(mt, int64(4), count)
	})

	mt.Run("AdjustLikesCount on a missing post is not found", func(mt *mtest.T) {
		repo := NewMongoPostRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := repo.AdjustLikesCount(ctx, primitive.NewObjectID().Hex(), 1)

		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("GetPostByID rejects malformed ids before querying", func(mt *mtest.T) {
		repo := NewMongoPostRepository(mt.DB)

		_, err := repo.GetPostByID(ctx, "not-an-object-id")

		assert.ErrorIs(mt, err, ErrInvalidID)
	})

	mt.Run("GetMostLiked decodes the returned window", func(mt *mtest.T) {
		repo := NewMongoPostRepository(mt.DB)
		first, second := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(1, postsNS, mtest.FirstBatch,
				bson.D{{Key: "_id", Value: first}, {Key: "author_id", Value: int64(1)}, {Key: "likes_count", Value: int64(9)}, {Key: "is_public", Value: true}}),
			mtest.CreateCursorResponse(0, postsNS, mtest.NextBatch,
				bson.D{{Key: "_id", Value: second}, {Key: "author_id", Value: int64(2)}, {Key: "likes_count", Value: int64(3)}, {Key: "is_public", Value: true}}),
		)

		posts, err := repo.GetMostLiked(ctx, 10)

		require.NoError(mt, err)
		require.Len(mt, posts, 2)
		assert.Equal(mt, []primitive.ObjectID{first, second}, []primitive.ObjectID{posts[0].ID, posts[1].ID})
		assert.Equal(mt, int64(9), posts[0].LikesCount)
	})

	mt.Run("CreatePost maps duplicate keys", func(mt *mtest.T) {
		repo := NewMongoPostRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key error"}))

		err := repo.CreatePost(ctx, &models.Post{AuthorID: 1, Content: "hello"})

		assert.ErrorIs(mt, err, ErrDuplicate)
	})
}
