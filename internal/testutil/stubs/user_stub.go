package stubs

import (
	"fmt"
	"strings"
	"time"

	"github.com/anonto42/circle/backend/internal/models"
	"github.com/brianvoe/gofakeit/v6"
)

type UserStub struct {
	user models.User
}

func NewUserStub() UserStub {
	now := time.Now().UTC()
	handle := strings.ToLower(fmt.Sprintf("%s_%d", gofakeit.LetterN(6), gofakeit.Number(100, 999)))

	return UserStub{user: models.User{
		Handle:      handle,
		DisplayName: gofakeit.Name(),
		Email:       gofakeit.Email(),
		Bio:         gofakeit.Sentence(8),
		AvatarURL:   gofakeit.URL(),
		Theme:       models.ThemeSystem,
		CreatedAt:   now,
		UpdatedAt:   now,
	}}
}

func (us UserStub) WithID(id uint) UserStub {
	us.user.ID = id
	return us
}

func (us UserStub) WithHandle(handle string) UserStub {
	us.user.Handle = handle
	return us
}

func (us UserStub) WithDisplayName(name string) UserStub {
	us.user.DisplayName = name
	return us
}

func (us UserStub) Private() UserStub {
	us.user.IsPrivate = true
	return us
}

func (us UserStub) Admin() UserStub {
	us.user.IsAdmin = true
	return us
}

func (us UserStub) Verified() UserStub {
	us.user.IsVerified = true
	return us
}

// Get returns a pointer to a fresh copy
func (us UserStub) Get() *models.User {
	u := us.user
	return &u
}
