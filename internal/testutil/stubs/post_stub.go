package stubs

import (
	"time"

	"github.com/anonto42/circle/backend/internal/models"
	"github.com/brianvoe/gofakeit/v6"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PostStub struct {
	post models.Post
}

func NewPostStub() PostStub {
	return PostStub{post: models.Post{
		ID:                primitive.NewObjectID(),
		AuthorID:          uint(gofakeit.Number(1, 1000)),
		AuthorHandle:      gofakeit.Username(),
		AuthorDisplayName: gofakeit.Name(),
		Content:           gofakeit.Sentence(12),
		IsPublic:          true,
		CreatedAt:         gofakeit.DateRange(time.Now().Add(-72*time.Hour), time.Now()).UTC(),
	}}
}

// By copies the author snapshot from user
func (ps PostStub) By(user *models.User) PostStub {
	ps.post.AuthorID = user.ID
	ps.post.AuthorHandle = user.Handle
	ps.post.AuthorDisplayName = user.DisplayName
	ps.post.IsPublic = !user.IsPrivate
	return ps
}

func (ps PostStub) WithContent(content string) PostStub {
	ps.post.Content = content
	return ps
}

func (ps PostStub) WithLikes(n int64) PostStub {
	ps.post.LikesCount = n
	return ps
}

func (ps PostStub) At(t time.Time) PostStub {
	ps.post.CreatedAt = t.UTC()
	return ps
}

func (ps PostStub) NotPublic() PostStub {
	ps.post.IsPublic = false
	return ps
}

func (ps PostStub) Get() *models.Post {
	p := ps.post
	return &p
}
