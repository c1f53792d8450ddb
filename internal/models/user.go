package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Theme values accepted by the settings endpoint
const (
	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeSystem = "system"
)

// User is an identity and its denormalized profile record
type User struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	FirebaseUID   *string   `json:"-" gorm:"uniqueIndex"` // Link to Firebase User UID, nil for local accounts
	Email         string    `json:"email,omitempty" gorm:"uniqueIndex"`
	Password      string    `json:"-"` // bcrypt hash
	Handle        string    `json:"handle" gorm:"size:30;uniqueIndex"`
	DisplayName   string    `json:"display_name" gorm:"size:50"`
	Bio           string    `json:"bio,omitempty" gorm:"size:160"`
	AvatarURL     string    `json:"avatar_url,omitempty"`
	Website       string    `json:"website,omitempty"`
	TwitterHandle string    `json:"twitter_handle,omitempty"`
	GithubHandle  string    `json:"github_handle,omitempty"`
	Theme         string    `json:"theme" gorm:"size:10;default:'system'"`
	IsPrivate     bool      `json:"is_private" gorm:"default:false"`
	IsVerified    bool      `json:"is_verified" gorm:"default:false"`
	IsAdmin       bool      `json:"is_admin" gorm:"default:false"`

	FollowersCount int64 `json:"followers_count" gorm:"default:0"`
	FollowingCount int64 `json:"following_count" gorm:"default:0"`
	PostsCount     int64 `json:"posts_count" gorm:"default:0"`
	LikesCount     int64 `json:"likes_count" gorm:"default:0"` // likes received across the user's posts

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserCompact is the author/actor shape embedded in feed and notification payloads
type UserCompact struct {
	ID          uint   `json:"id"`
	Handle      string `json:"handle"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	IsVerified  bool   `json:"is_verified"`
}

// ToCompact strips a user down to its public display fields
func (u *User) ToCompact() UserCompact {
	return UserCompact{
		ID:          u.ID,
		Handle:      u.Handle,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
		IsVerified:  u.IsVerified,
	}
}

type CreateLocalUserRequest struct {
	Handle      string `json:"handle" validate:"required,handle"`
	DisplayName string `json:"display_name" validate:"required,min=1,max=50"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	DisplayName   string `json:"display_name,omitempty" validate:"omitempty,min=1,max=50"`
	Bio           string `json:"bio,omitempty" validate:"omitempty,max=160"`
	AvatarURL     string `json:"avatar_url,omitempty" validate:"omitempty,url"`
	Website       string `json:"website,omitempty" validate:"omitempty,url"`
	TwitterHandle string `json:"twitter_handle,omitempty" validate:"omitempty,max=30"`
	GithubHandle  string `json:"github_handle,omitempty" validate:"omitempty,max=39"`
}

// UpdateSettingsRequest carries the privacy toggle and theme preference.
// IsPrivate is a pointer so an absent field leaves the flag untouched.
type UpdateSettingsRequest struct {
	IsPrivate *bool  `json:"is_private,omitempty"`
	Theme     string `json:"theme,omitempty" validate:"omitempty,oneof=light dark system"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID uint   `json:"user_id"`
	Handle string `json:"handle"`
	jwt.RegisteredClaims
}
