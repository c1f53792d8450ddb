package fakes

import (
	"context"
	"sync"

	"github.com/anonto42/circle/backend/internal/models"
	"github.com/anonto42/circle/backend/internal/repositories"
)

// Follows keeps edges in insertion order, which stands in for created_at ordering
type Follows struct {
	mu     sync.Mutex
	edges  []models.Follow
	nextID uint
	users  *Users
}

func NewFollows(users *Users) *Follows {
	return &Follows{users: users}
}

func (f *Follows) CreateFollow(_ context.Context, follow *models.Follow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.edges {
		if e.FollowerID == follow.FollowerID && e.FollowingID == follow.FollowingID {
			return repositories.ErrDuplicate
		}
	}
	f.nextID++
	follow.ID = f.nextID
	f.edges = append(f.edges, *follow)
	return nil
}

func (f *Follows) DeleteFollow(_ context.Context, followerID, followingID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, e := range f.edges {
		if e.FollowerID == followerID && e.FollowingID == followingID {
			f.edges = append(f.edges[:i], f.edges[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (f *Follows) IsFollowing(_ context.Context, followerID, followingID uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.edges {
		if e.FollowerID == followerID && e.FollowingID == followingID {
			return true, nil
		}
	}
	return false, nil
}

func (f *Follows) collect(pick func(models.Follow) (uint, bool)) []uint {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := []uint{}
	for _, e := range f.edges {
		if id, ok := pick(e); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

func (f *Follows) resolve(ctx context.Context, ids []uint) ([]models.User, error) {
	users := []models.User{}
	for _, id := range ids {
		user, err := f.users.GetUserByID(ctx, id)
		if err != nil {
			continue
		}
		users = append(users, *user)
	}
	return users, nil
}

func (f *Follows) GetFollowers(ctx context.Context, userID uint) ([]models.User, error) {
	return f.resolve(ctx, f.collect(func(e models.Follow) (uint, bool) { return e.FollowerID, e.FollowingID == userID }))
}

func (f *Follows) GetFollowing(ctx context.Context, userID uint) ([]models.User, error) {
	return f.resolve(ctx, f.followingIDs(userID))
}

func (f *Follows) GetFollowersCount(_ context.Context, userID uint) (int64, error) {
	return int64(len(f.collect(func(e models.Follow) (uint, bool) { return e.FollowerID, e.FollowingID == userID }))), nil
}

func (f *Follows) GetFollowingCount(_ context.Context, userID uint) (int64, error) {
	return int64(len(f.followingIDs(userID))), nil
}

func (f *Follows) GetFollowingIDs(_ context.Context, userID uint) ([]uint, error) {
	return f.followingIDs(userID), nil
}

func (f *Follows) followingIDs(userID uint) []uint {
	return f.collect(func(e models.Follow) (uint, bool) { return e.FollowingID, e.FollowerID == userID })
}

type Likes struct {
	mu    sync.Mutex
	edges map[string]map[uint]bool
}

func NewLikes() *Likes {
	return &Likes{edges: make(map[string]map[uint]bool)}
}

func (l *Likes) CreateLike(_ context.Context, like *models.Like) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.edges[like.PostID] == nil {
		l.edges[like.PostID] = make(map[uint]bool)
	}
	if l.edges[like.PostID][like.UserID] {
		return repositories.ErrDuplicate
	}
	l.edges[like.PostID][like.UserID] = true
	return nil
}

func (l *Likes) DeleteLike(_ context.Context, postID string, userID uint) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.edges[postID][userID] {
		return repositories.ErrNotFound
	}
	delete(l.edges[postID], userID)
	return nil
}

func (l *Likes) HasUserLikedPost(_ context.Context, postID string, userID uint) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.edges[postID][userID], nil
}

func (l *Likes) GetLikedPostIDs(_ context.Context, userID uint, postIDs []string) (map[string]bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	liked := make(map[string]bool)
	for _, id := range postIDs {
		if l.edges[id][userID] {
			liked[id] = true
		}
	}
	return liked, nil
}

func (l *Likes) GetLikeCounts(context.Context) (map[string]int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	counts := make(map[string]int64)
	for postID, users := range l.edges {
		if len(users) > 0 {
			counts[postID] = int64(len(users))
		}
	}
	return counts, nil
}
