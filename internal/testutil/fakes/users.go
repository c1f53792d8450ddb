// Package fakes holds in-memory repository implementations for service and handler tests.
package fakes

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/anonto42/circle/backend/internal/models"
	"github.com/anonto42/circle/backend/internal/repositories"
)

type Users struct {
	mu     sync.Mutex
	rows   map[uint]models.User
	nextID uint
}

func NewUsers() *Users {
	return &Users{rows: make(map[uint]models.User)}
}

// Seed stores copies of users, assigning ids to those without one
func (u *Users) Seed(users ...*models.User) {
	for _, user := range users {
		if err := u.CreateUser(context.Background(), user); err != nil {
			panic(err)
		}
	}
}

func (u *Users) CreateUser(_ context.Context, user *models.User) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	user.Handle = strings.ToLower(user.Handle)
	for _, existing := range u.rows {
		if existing.Handle == user.Handle || (user.Email != "" && existing.Email == user.Email) {
			return repositories.ErrDuplicate
		}
	}
	if user.ID == 0 {
		u.nextID++
		user.ID = u.nextID
	} else if user.ID > u.nextID {
		u.nextID = user.ID
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	u.rows[user.ID] = *user
	return nil
}

func (u *Users) GetUserByID(_ context.Context, id uint) (*models.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	user, ok := u.rows[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &user, nil
}

func (u *Users) find(match func(models.User) bool) (*models.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, user := range u.rows {
		if match(user) {
			found := user
			return &found, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (u *Users) GetUserByHandle(_ context.Context, handle string) (*models.User, error) {
	handle = strings.ToLower(handle)
	return u.find(func(user models.User) bool { return user.Handle == handle })
}

func (u *Users) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	return u.find(func(user models.User) bool { return user.Email == email })
}

func (u *Users) GetUserByFirebaseUID(_ context.Context, uid string) (*models.User, error) {
	return u.find(func(user models.User) bool { return user.FirebaseUID != nil && *user.FirebaseUID == uid })
}

func (u *Users) GetUsersByHandles(_ context.Context, handles []string) ([]models.User, error) {
	want := make(map[string]bool, len(handles))
	for _, h := range handles {
		want[strings.ToLower(h)] = true
	}
	users := []models.User{}
	for _, user := range u.all() {
		if want[user.Handle] {
			users = append(users, user)
		}
	}
	return users, nil
}

func (u *Users) GetUsers(context.Context) ([]models.User, error) {
	return u.all(), nil
}

func (u *Users) all() []models.User {
	u.mu.Lock()
	defer u.mu.Unlock()
	users := make([]models.User, 0, len(u.rows))
	for _, user := range u.rows {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users
}

func (u *Users) UpdateFields(_ context.Context, id uint, fields map[string]interface{}) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	user, ok := u.rows[id]
	if !ok {
		return repositories.ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "display_name":
			user.DisplayName = v.(string)
		case "bio":
			user.Bio = v.(string)
		case "avatar_url":
			user.AvatarURL = v.(string)
		case "website":
			user.Website = v.(string)
		case "twitter_handle":
			user.TwitterHandle = v.(string)
		case "github_handle":
			user.GithubHandle = v.(string)
		case "theme":
			user.Theme = v.(string)
		case "is_private":
			user.IsPrivate = v.(bool)
		case "firebase_uid":
			uid := v.(string)
			user.FirebaseUID = &uid
		}
	}
	u.rows[id] = user
	return nil
}

func (u *Users) SearchUsers(_ context.Context, query string, limit int) ([]models.User, error) {
	q := strings.ToLower(query)
	users := []models.User{}
	for _, user := range u.all() {
		if strings.Contains(user.Handle, q) || strings.Contains(strings.ToLower(user.DisplayName), q) {
			users = append(users, user)
		}
	}
	sort.SliceStable(users, func(i, j int) bool { return users[i].FollowersCount > users[j].FollowersCount })
	if len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

func (u *Users) AdjustCounter(_ context.Context, id uint, field repositories.CounterField, delta int64) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	user, ok := u.rows[id]
	if !ok {
		return repositories.ErrNotFound
	}
	switch field {
	case repositories.FollowersCount:
		user.FollowersCount += delta
	case repositories.FollowingCount:
		user.FollowingCount += delta
	case repositories.PostsCount:
		user.PostsCount += delta
	case repositories.LikesCount:
		user.LikesCount += delta
	}
	u.rows[id] = user
	return nil
}

func (u *Users) SetCounters(_ context.Context, id uint, c repositories.UserCounters) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	user, ok := u.rows[id]
	if !ok {
		return repositories.ErrNotFound
	}
	user.FollowersCount, user.FollowingCount, user.PostsCount, user.LikesCount = c.Followers, c.Following, c.Posts, c.Likes
	u.rows[id] = user
	return nil
}

func (u *Users) SetVerified(_ context.Context, id uint, verified bool) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	user, ok := u.rows[id]
	if !ok {
		return repositories.ErrNotFound
	}
	user.IsVerified = verified
	u.rows[id] = user
	return nil
}
