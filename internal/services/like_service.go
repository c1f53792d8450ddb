package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/anonto42/circle/backend/internal/events"
	"github.com/anonto42/circle/backend/internal/inflight"
	"github.com/anonto42/circle/backend/internal/models"
	"github.com/anonto42/circle/backend/internal/repositories"
)

// LikeService toggles (viewer, post) like edges and the post's denormalized like counter
type LikeService struct {
	likes     repositories.LikeRepository
	posts     repositories.PostRepository
	users     repositories.UserRepository
	guard     inflight.Guard
	notifier  *NotificationService
	publisher events.Publisher
	logger    *slog.Logger
}

func NewLikeService(
	likes repositories.LikeRepository,
	posts repositories.PostRepository,
	users repositories.UserRepository,
	guard inflight.Guard,
	notifier *NotificationService,
	publisher events.Publisher,
	logger *slog.Logger,
) *LikeService {
	return &LikeService{
		likes:     likes,
		posts:     posts,
		users:     users,
		guard:     guard,
		notifier:  notifier,
		publisher: publisher,
		logger:    logger,
	}
}

// ToggleLike flips the viewer's like on a post. The edge write and the counter
// write are sequential and not transactional: if the counter write fails the
// error is returned and the edge is left as written.
func (s *LikeService) ToggleLike(ctx context.Context, viewer *models.User, postID string) (*models.LikeResult, error) {
	release, ok, err := s.guard.Acquire(ctx, fmt.Sprintf("like:%d:%s", viewer.ID, postID))
	if err != nil {
		return nil, fmt.Errorf("acquire like guard: %w", err)
	}
	if !ok {
		return nil, ErrBusy
	}
	defer release()

	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, storageErr(err, "load post")
	}

	liked, err := s.likes.HasUserLikedPost(ctx, postID, viewer.ID)
	if err != nil {
		return nil, storageErr(err, "check like")
	}

	if liked {
		return s.unlike(ctx, viewer, post)
	}
	return s.like(ctx, viewer, post)
}

func (s *LikeService) like(ctx context.Context, viewer *models.User, post *models.Post) (*models.LikeResult, error) {
	postID := post.ID.Hex()

	err := s.likes.CreateLike(ctx, &models.Like{PostID: postID, UserID: viewer.ID, CreatedAt: time.Now().UTC()})
	if errors.Is(err, repositories.ErrDuplicate) {
		// another request won the race; report the settled state
		return &models.LikeResult{PostID: postID, Liked: true, LikesCount: post.LikesCount}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("create like: %w", err)
	}

	count, err := s.posts.AdjustLikesCount(ctx, postID, 1)
	if err != nil {
		return nil, fmt.Errorf("like recorded but counter not updated: %w", err)
	}

	s.adjustAuthor(ctx, post.AuthorID, 1)
	s.notifier.Notify(ctx, viewer, post.AuthorID, models.NotificationLike, post, viewer.DisplayName+" liked your post")
	publish(ctx, s.publisher, s.logger, events.New(events.PostLiked, viewer.ID, postID, map[string]interface{}{"likes_count": count}))

	return &models.LikeResult{PostID: postID, Liked: true, LikesCount: count}, nil
}

func (s *LikeService) unlike(ctx context.Context, viewer *models.User, post *models.Post) (*models.LikeResult, error) {
	postID := post.ID.Hex()

	err := s.likes.DeleteLike(ctx, postID, viewer.ID)
	if errors.Is(err, repositories.ErrNotFound) {
		return &models.LikeResult{PostID: postID, Liked: false, LikesCount: post.LikesCount}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("delete like: %w", err)
	}

	count, err := s.posts.AdjustLikesCount(ctx, postID, -1)
	if err != nil {
		return nil, fmt.Errorf("like removed but counter not updated: %w", err)
	}

	s.adjustAuthor(ctx, post.AuthorID, -1)
	publish(ctx, s.publisher, s.logger, events.New(events.PostUnliked, viewer.ID, postID, map[string]interface{}{"likes_count": count}))

	return &models.LikeResult{PostID: postID, Liked: false, LikesCount: count}, nil
}

// Status reports the viewer's like state and the post's like counter
func (s *LikeService) Status(ctx context.Context, viewerID uint, postID string) (*models.LikeResult, error) {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, storageErr(err, "load post")
	}
	liked, err := s.likes.HasUserLikedPost(ctx, postID, viewerID)
	if err != nil {
		return nil, storageErr(err, "check like")
	}
	return &models.LikeResult{PostID: postID, Liked: liked, LikesCount: post.LikesCount}, nil
}

func (s *LikeService) adjustAuthor(ctx context.Context, authorID uint, delta int64) {
	if err := s.users.AdjustCounter(ctx, authorID, repositories.LikesCount, delta); err != nil {
		s.logger.Warn("failed to adjust author like counter", "user_id", authorID, "delta", delta, "error", err)
	}
}
