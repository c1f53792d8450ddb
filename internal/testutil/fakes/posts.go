package fakes

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/anonto42/circle/backend/internal/models"
	"github.com/anonto42/circle/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Posts struct {
	mu   sync.Mutex
	rows map[primitive.ObjectID]models.Post

	// AdjustErr, when set, fails every counter write
	AdjustErr error
}

func NewPosts() *Posts {
	return &Posts{rows: make(map[primitive.ObjectID]models.Post)}
}

func (p *Posts) Seed(posts ...*models.Post) {
	for _, post := range posts {
		_ = p.CreatePost(context.Background(), post)
	}
}

func (p *Posts) CreatePost(_ context.Context, post *models.Post) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}
	p.rows[post.ID] = *post
	return nil
}

func (p *Posts) lookup(id string) (primitive.ObjectID, models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return objID, models.Post{}, repositories.ErrInvalidID
	}
	post, ok := p.rows[objID]
	if !ok {
		return objID, models.Post{}, repositories.ErrNotFound
	}
	return objID, post, nil
}

func (p *Posts) GetPostByID(_ context.Context, id string) (*models.Post, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, post, err := p.lookup(id)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (p *Posts) DeletePost(_ context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	objID, _, err := p.lookup(id)
	if err != nil {
		return err
	}
	delete(p.rows, objID)
	return nil
}

// query filters, sorts and limits a snapshot of the collection
func (p *Posts) query(match func(models.Post) bool, less func(a, b models.Post) bool, skip, limit int64) []models.Post {
	p.mu.Lock()
	posts := []models.Post{}
	for _, post := range p.rows {
		if match(post) {
			posts = append(posts, post)
		}
	}
	p.mu.Unlock()

	sort.Slice(posts, func(i, j int) bool { return less(posts[i], posts[j]) })
	if skip >= int64(len(posts)) {
		return []models.Post{}
	}
	posts = posts[skip:]
	if limit > 0 && int64(len(posts)) > limit {
		posts = posts[:limit]
	}
	return posts
}

func newestFirst(a, b models.Post) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID.Hex() > b.ID.Hex()
}

func (p *Posts) GetPostsByAuthor(_ context.Context, authorID uint, skip, limit int64) ([]models.Post, error) {
	return p.query(func(post models.Post) bool { return post.AuthorID == authorID }, newestFirst, skip, limit), nil
}

func (p *Posts) GetPostsByAuthors(_ context.Context, authorIDs []uint, limit int64) ([]models.Post, error) {
	in := make(map[uint]bool, len(authorIDs))
	for _, id := range authorIDs {
		in[id] = true
	}
	return p.query(func(post models.Post) bool { return in[post.AuthorID] }, newestFirst, 0, limit), nil
}

func (p *Posts) GetMostLiked(_ context.Context, limit int64) ([]models.Post, error) {
	return p.query(
		func(post models.Post) bool { return post.IsPublic },
		func(a, b models.Post) bool {
			if a.LikesCount != b.LikesCount {
				return a.LikesCount > b.LikesCount
			}
			return a.ID.Hex() > b.ID.Hex()
		}, 0, limit), nil
}

func (p *Posts) GetRecentPublic(_ context.Context, limit int64) ([]models.Post, error) {
	return p.query(func(post models.Post) bool { return post.IsPublic }, newestFirst, 0, limit), nil
}

func (p *Posts) HasPostSince(_ context.Context, authorID uint, since time.Time) (bool, error) {
	found := p.query(func(post models.Post) bool {
		return post.AuthorID == authorID && !post.CreatedAt.Before(since)
	}, newestFirst, 0, 1)
	return len(found) > 0, nil
}

func (p *Posts) AdjustLikesCount(_ context.Context, id string, delta int64) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.AdjustErr != nil {
		return 0, p.AdjustErr
	}
	objID, post, err := p.lookup(id)
	if err != nil {
		return 0, err
	}
	post.LikesCount += delta
	p.rows[objID] = post
	return post.LikesCount, nil
}

func (p *Posts) AdjustCommentsCount(_ context.Context, id string, delta int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.AdjustErr != nil {
		return p.AdjustErr
	}
	objID, post, err := p.lookup(id)
	if err != nil {
		return err
	}
	post.CommentsCount += delta
	p.rows[objID] = post
	return nil
}

func (p *Posts) GetAllCounters(context.Context) ([]models.Post, error) {
	return p.query(func(models.Post) bool { return true }, newestFirst, 0, 0), nil
}

func (p *Posts) SetCounters(_ context.Context, id primitive.ObjectID, likes, comments int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	post, ok := p.rows[id]
	if !ok {
		return repositories.ErrNotFound
	}
	post.LikesCount, post.CommentsCount = likes, comments
	p.rows[id] = post
	return nil
}
