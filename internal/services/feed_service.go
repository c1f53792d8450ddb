package services

import (
	"context"
	"strings"

	"github.com/anonto42/circle/backend/internal/models"
	"github.com/anonto42/circle/backend/internal/repositories"
)

const (
	// FollowQueryLimit caps how many followees feed the home query; later followees are left out.
	FollowQueryLimit = 10
	HomeFeedLimit    = 20
	TrendingLimit    = 10
	ExploreWindow    = 20
)

const (
	StrategyFollowing = "following"
	StrategyTrending  = "trending"
)

// FeedResult is one page of the home feed and how it was assembled
type FeedResult struct {
	Strategy  string        `json:"strategy"`
	Posts     []models.Post `json:"posts"`
	Truncated bool          `json:"truncated"` // some followees were outside FollowQueryLimit
}

// EnrichedPost is a post with the viewer's like state attached
type EnrichedPost struct {
	models.Post
	IsLiked bool `json:"is_liked"`
}

type FeedService struct {
	posts   repositories.PostRepository
	follows repositories.FollowRepository
	likes   repositories.LikeRepository
}

func NewFeedService(posts repositories.PostRepository, follows repositories.FollowRepository, likes repositories.LikeRepository) *FeedService {
	return &FeedService{posts: posts, follows: follows, likes: likes}
}

// HomeFeed returns the newest posts of the viewer's first FollowQueryLimit followees,
// or the most-liked public posts when the viewer follows nobody.
func (s *FeedService) HomeFeed(ctx context.Context, viewerID uint) (*FeedResult, error) {
	followingIDs, err := s.follows.GetFollowingIDs(ctx, viewerID)
	if err != nil {
		return nil, storageErr(err, "load follow set")
	}

	if len(followingIDs) == 0 {
		posts, err := s.posts.GetMostLiked(ctx, TrendingLimit)
		if err != nil {
			return nil, storageErr(err, "load trending posts")
		}
		return &FeedResult{Strategy: StrategyTrending, Posts: posts}, nil
	}

	truncated := false
	if len(followingIDs) > FollowQueryLimit {
		followingIDs = followingIDs[:FollowQueryLimit]
		truncated = true
	}

	posts, err := s.posts.GetPostsByAuthors(ctx, followingIDs, HomeFeedLimit)
	if err != nil {
		return nil, storageErr(err, "load followed posts")
	}
	return &FeedResult{Strategy: StrategyFollowing, Posts: posts, Truncated: truncated}, nil
}

// Explore filters the newest public posts by a case-insensitive substring of the
// content, author handle or author display name. Recall is bounded by ExploreWindow.
func (s *FeedService) Explore(ctx context.Context, query string) ([]models.Post, error) {
	posts, err := s.posts.GetRecentPublic(ctx, ExploreWindow)
	if err != nil {
		return nil, storageErr(err, "load recent posts")
	}

	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return posts, nil
	}

	matched := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		if strings.Contains(strings.ToLower(p.Content), needle) ||
			strings.Contains(strings.ToLower(p.AuthorHandle), needle) ||
			strings.Contains(strings.ToLower(p.AuthorDisplayName), needle) {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

// Enrich attaches the viewer's like state to each post
func (s *FeedService) Enrich(ctx context.Context, viewerID uint, posts []models.Post) ([]EnrichedPost, error) {
	ids := make([]string, len(posts))
	for i, p := range posts {
		ids[i] = p.ID.Hex()
	}

	liked, err := s.likes.GetLikedPostIDs(ctx, viewerID, ids)
	if err != nil {
		return nil, storageErr(err, "load liked posts")
	}

	enriched := make([]EnrichedPost, len(posts))
	for i, p := range posts {
		enriched[i] = EnrichedPost{Post: p, IsLiked: liked[ids[i]]}
	}
	return enriched, nil
}
