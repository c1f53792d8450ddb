package services

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/anonto42/circle/backend/internal/events"
	"github.com/anonto42/circle/backend/internal/models"
	"github.com/anonto42/circle/backend/internal/repositories"
)

// DefaultRateWindow is how long an author must wait between posts
const DefaultRateWindow = 60 * time.Second

var mentionPattern = regexp.MustCompile(`(?i)(?:^|[^a-z0-9_@])@([a-z0-9_]{3,30})\b`)

type PostConfig struct {
	RateWindow time.Duration
	Now        func() time.Time
}

// PostService creates, reads and deletes posts and their comments
type PostService struct {
	posts     repositories.PostRepository
	users     repositories.UserRepository
	comments  repositories.CommentRepository
	graph     *GraphService
	notifier  *NotificationService
	publisher events.Publisher
	logger    *slog.Logger

	rateWindow time.Duration
	now        func() time.Time
}

func NewPostService(
	posts repositories.PostRepository,
	users repositories.UserRepository,
	comments repositories.CommentRepository,
	graph *GraphService,
	notifier *NotificationService,
	publisher events.Publisher,
	logger *slog.Logger,
	cfg PostConfig,
) *PostService {
	if cfg.RateWindow <= 0 {
		cfg.RateWindow = DefaultRateWindow
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &PostService{
		posts:      posts,
		users:      users,
		comments:   comments,
		graph:      graph,
		notifier:   notifier,
		publisher:  publisher,
		logger:     logger,
		rateWindow: cfg.RateWindow,
		now:        cfg.Now,
	}
}

// CreatePost rejects the post with ErrPostingTooFast when the author already posted
// within the rate window. The check and the insert are separate queries, so two
// near-simultaneous submissions can both get through.
func (s *PostService) CreatePost(ctx context.Context, author *models.User, content, imageURL string) (*models.Post, error) {
	content = strings.TrimSpace(content)
	if n := utf8.RuneCountInString(content); n == 0 || n > models.MaxPostLength {
		return nil, fmt.Errorf("%w: content must be 1 to %d characters", ErrInvalidInput, models.MaxPostLength)
	}

	now := s.now().UTC()
	recent, err := s.posts.HasPostSince(ctx, author.ID, now.Add(-s.rateWindow))
	if err != nil {
		return nil, storageErr(err, "check recent posts")
	}
	if recent {
		return nil, ErrPostingTooFast
	}

	post := &models.Post{
		AuthorID:          author.ID,
		AuthorHandle:      author.Handle,
		AuthorDisplayName: author.DisplayName,
		Content:           content,
		ImageURL:          strings.TrimSpace(imageURL),
		IsPublic:          !author.IsPrivate,
		CreatedAt:         now,
	}
	if err := s.posts.CreatePost(ctx, post); err != nil {
		return nil, storageErr(err, "create post")
	}

	if err := s.users.AdjustCounter(ctx, author.ID, repositories.PostsCount, 1); err != nil {
		s.logger.Warn("failed to increment post counter", "user_id", author.ID, "post_id", post.ID.Hex(), "error", err)
	}

	s.notifyMentions(ctx, author, post)
	publish(ctx, s.publisher, s.logger, events.New(events.PostCreated, author.ID, post.ID.Hex(), map[string]interface{}{
		"is_public": post.IsPublic,
	}))
	return post, nil
}

func (s *PostService) notifyMentions(ctx context.Context, author *models.User, post *models.Post) {
	handles := extractMentions(post.Content)
	if len(handles) == 0 {
		return
	}

	mentioned, err := s.users.GetUsersByHandles(ctx, handles)
	if err != nil {
		s.logger.Warn("failed to resolve mentions", "post_id", post.ID.Hex(), "error", err)
		return
	}
	for i := range mentioned {
		s.notifier.Notify(ctx, author, mentioned[i].ID, models.NotificationMention, post, author.DisplayName+" mentioned you")
	}
}

// extractMentions returns the distinct lowercase handles referenced as @handle
func extractMentions(content string) []string {
	seen := make(map[string]bool)
	var handles []string
	for _, m := range mentionPattern.FindAllStringSubmatch(content, -1) {
		h := strings.ToLower(m[1])
		if !seen[h] {
			seen[h] = true
			handles = append(handles, h)
		}
	}
	return handles
}

// GetPost loads a post the viewer is allowed to read
func (s *PostService) GetPost(ctx context.Context, viewer *models.User, postID string) (*models.Post, error) {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, storageErr(err, "load post")
	}
	if post.IsPublic || post.AuthorID == viewer.ID {
		return post, nil
	}

	following, err := s.graph.IsFollowing(ctx, viewer.ID, post.AuthorID)
	if err != nil {
		return nil, err
	}
	if !following {
		return nil, ErrForbidden
	}
	return post, nil
}

// DeletePost removes the viewer's own post and decrements their post counter
func (s *PostService) DeletePost(ctx context.Context, viewer *models.User, postID string) error {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return storageErr(err, "load post")
	}
	if post.AuthorID != viewer.ID {
		return ErrForbidden
	}

	if err := s.posts.DeletePost(ctx, postID); err != nil {
		return storageErr(err, "delete post")
	}
	if err := s.users.AdjustCounter(ctx, viewer.ID, repositories.PostsCount, -1); err != nil {
		s.logger.Warn("failed to decrement post counter", "user_id", viewer.ID, "post_id", postID, "error", err)
	}
	publish(ctx, s.publisher, s.logger, events.New(events.PostDeleted, viewer.ID, postID, nil))
	return nil
}

// AuthorPosts lists an author's posts for a profile view, honoring the author's privacy flag
func (s *PostService) AuthorPosts(ctx context.Context, viewer *models.User, author *models.User, page, limit int) ([]models.Post, error) {
	allowed, err := s.graph.CanSeePosts(ctx, viewer.ID, author)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrForbidden
	}

	posts, err := s.posts.GetPostsByAuthor(ctx, author.ID, int64((page-1)*limit), int64(limit))
	if err != nil {
		return nil, storageErr(err, "load author posts")
	}
	return posts, nil
}

// Comment adds a comment and bumps the post's comment counter as a separate write
func (s *PostService) Comment(ctx context.Context, viewer *models.User, postID, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if n := utf8.RuneCountInString(content); n == 0 || n > models.MaxPostLength {
		return nil, fmt.Errorf("%w: comment must be 1 to %d characters", ErrInvalidInput, models.MaxPostLength)
	}

	post, err := s.GetPost(ctx, viewer, postID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PostID:    post.ID.Hex(),
		UserID:    viewer.ID,
		Content:   content,
		CreatedAt: s.now().UTC(),
	}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, storageErr(err, "create comment")
	}
	if err := s.posts.AdjustCommentsCount(ctx, comment.PostID, 1); err != nil {
		return nil, fmt.Errorf("comment recorded but counter not updated: %w", err)
	}

	s.notifier.Notify(ctx, viewer, post.AuthorID, models.NotificationComment, post, viewer.DisplayName+" commented on your post")
	publish(ctx, s.publisher, s.logger, events.New(events.PostCommented, viewer.ID, comment.PostID, nil))
	return comment, nil
}

func (s *PostService) Comments(ctx context.Context, viewer *models.User, postID string) ([]models.Comment, error) {
	post, err := s.GetPost(ctx, viewer, postID)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.GetCommentsByPostID(ctx, post.ID.Hex())
	if err != nil {
		return nil, storageErr(err, "list comments")
	}
	return comments, nil
}
