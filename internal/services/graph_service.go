package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/anonto42/circle/backend/internal/events"
	"github.com/anonto42/circle/backend/internal/models"
	"github.com/anonto42/circle/backend/internal/repositories"
)

// GraphService records and queries directed follow edges
type GraphService struct {
	follows   repositories.FollowRepository
	users     repositories.UserRepository
	notifier  *NotificationService
	publisher events.Publisher
	logger    *slog.Logger
}

func NewGraphService(
	follows repositories.FollowRepository,
	users repositories.UserRepository,
	notifier *NotificationService,
	publisher events.Publisher,
	logger *slog.Logger,
) *GraphService {
	return &GraphService{
		follows:   follows,
		users:     users,
		notifier:  notifier,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *GraphService) IsFollowing(ctx context.Context, viewerID, targetID uint) (bool, error) {
	following, err := s.follows.IsFollowing(ctx, viewerID, targetID)
	if err != nil {
		return false, storageErr(err, "check follow")
	}
	return following, nil
}

// Follow inserts the viewer -> target edge. Counters, the notification and the event
// are written afterwards and independently; their failures are logged only.
func (s *GraphService) Follow(ctx context.Context, viewer *models.User, targetID uint) error {
	if viewer.ID == targetID {
		return ErrSelfFollow
	}
	if _, err := s.users.GetUserByID(ctx, targetID); err != nil {
		return storageErr(err, "load follow target")
	}

	err := s.follows.CreateFollow(ctx, &models.Follow{
		FollowerID:  viewer.ID,
		FollowingID: targetID,
		CreatedAt:   time.Now().UTC(),
	})
	if errors.Is(err, repositories.ErrDuplicate) {
		return ErrAlreadyFollowing
	}
	if err != nil {
		return fmt.Errorf("create follow: %w", err)
	}

	s.adjust(ctx, viewer.ID, repositories.FollowingCount, 1)
	s.adjust(ctx, targetID, repositories.FollowersCount, 1)
	s.notifier.Notify(ctx, viewer, targetID, models.NotificationFollow, nil, viewer.DisplayName+" started following you")
	publish(ctx, s.publisher, s.logger, events.New(events.UserFollowed, viewer.ID, strconv.FormatUint(uint64(targetID), 10), nil))
	return nil
}

// Unfollow deletes the first edge matching the ordered pair
func (s *GraphService) Unfollow(ctx context.Context, viewerID, targetID uint) error {
	err := s.follows.DeleteFollow(ctx, viewerID, targetID)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrNotFollowing
	}
	if err != nil {
		return fmt.Errorf("delete follow: %w", err)
	}

	s.adjust(ctx, viewerID, repositories.FollowingCount, -1)
	s.adjust(ctx, targetID, repositories.FollowersCount, -1)
	publish(ctx, s.publisher, s.logger, events.New(events.UserUnfollowed, viewerID, strconv.FormatUint(uint64(targetID), 10), nil))
	return nil
}

func (s *GraphService) Followers(ctx context.Context, userID uint) ([]models.UserCompact, error) {
	users, err := s.follows.GetFollowers(ctx, userID)
	if err != nil {
		return nil, storageErr(err, "list followers")
	}
	return compact(users), nil
}

func (s *GraphService) Following(ctx context.Context, userID uint) ([]models.UserCompact, error) {
	users, err := s.follows.GetFollowing(ctx, userID)
	if err != nil {
		return nil, storageErr(err, "list following")
	}
	return compact(users), nil
}

// CanSeePosts reports whether viewer may read owner's posts: public accounts,
// the owner themself, and followers of a private account.
func (s *GraphService) CanSeePosts(ctx context.Context, viewerID uint, owner *models.User) (bool, error) {
	if !owner.IsPrivate || viewerID == owner.ID {
		return true, nil
	}
	return s.IsFollowing(ctx, viewerID, owner.ID)
}

func (s *GraphService) adjust(ctx context.Context, userID uint, field repositories.CounterField, delta int64) {
	if err := s.users.AdjustCounter(ctx, userID, field, delta); err != nil {
		s.logger.Warn("failed to adjust counter", "user_id", userID, "counter", string(field), "delta", delta, "error", err)
	}
}

func compact(users []models.User) []models.UserCompact {
	out := make([]models.UserCompact, len(users))
	for i := range users {
		out[i] = users[i].ToCompact()
	}
	return out
}
