package services

import (
	"context"
	"strings"

	"github.com/anonto42/circle/backend/internal/models"
	"github.com/anonto42/circle/backend/internal/repositories"
)

const searchLimit = 20

// ProfileService reads and edits identity records
type ProfileService struct {
	users    repositories.UserRepository
	sessions IdentityInvalidator
}

func NewProfileService(users repositories.UserRepository, sessions IdentityInvalidator) *ProfileService {
	return &ProfileService{users: users, sessions: sessions}
}

func (s *ProfileService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, storageErr(err, "load user")
	}
	return user, nil
}

func (s *ProfileService) GetByHandle(ctx context.Context, handle string) (*models.User, error) {
	user, err := s.users.GetUserByHandle(ctx, strings.TrimPrefix(handle, "@"))
	if err != nil {
		return nil, storageErr(err, "load user "+handle)
	}
	return user, nil
}

func (s *ProfileService) Search(ctx context.Context, query string) ([]models.UserCompact, error) {
	users, err := s.users.SearchUsers(ctx, strings.TrimSpace(query), searchLimit)
	if err != nil {
		return nil, storageErr(err, "search users")
	}
	return compact(users), nil
}

// UpdateProfile applies the non-empty fields of req. Posts keep the author
// snapshot they were created with.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID uint, req models.UpdateProfileRequest) (*models.User, error) {
	fields := map[string]interface{}{}
	if req.DisplayName != "" {
		fields["display_name"] = req.DisplayName
	}
	if req.Bio != "" {
		fields["bio"] = req.Bio
	}
	if req.AvatarURL != "" {
		fields["avatar_url"] = req.AvatarURL
	}
	if req.Website != "" {
		fields["website"] = req.Website
	}
	if req.TwitterHandle != "" {
		fields["twitter_handle"] = req.TwitterHandle
	}
	if req.GithubHandle != "" {
		fields["github_handle"] = req.GithubHandle
	}
	return s.update(ctx, userID, fields)
}

// UpdateSettings toggles privacy and theme. Existing posts keep the visibility they were created with.
func (s *ProfileService) UpdateSettings(ctx context.Context, userID uint, req models.UpdateSettingsRequest) (*models.User, error) {
	fields := map[string]interface{}{}
	if req.IsPrivate != nil {
		fields["is_private"] = *req.IsPrivate
	}
	if req.Theme != "" {
		fields["theme"] = req.Theme
	}
	return s.update(ctx, userID, fields)
}

func (s *ProfileService) update(ctx context.Context, userID uint, fields map[string]interface{}) (*models.User, error) {
	if err := s.users.UpdateFields(ctx, userID, fields); err != nil {
		return nil, storageErr(err, "update user")
	}
	s.sessions.Invalidate(userID)
	return s.GetByID(ctx, userID)
}
