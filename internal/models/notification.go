package models

import "time"

// Notification types
const (
	NotificationLike    = "like"
	NotificationComment = "comment"
	NotificationFollow  = "follow"
	NotificationMention = "mention"
)

// Notification represents a user notification (PostgreSQL).
// Actor display fields are denormalized at creation time.
type Notification struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	RecipientID      uint      `json:"recipient_id" gorm:"index"`
	Type             string    `json:"type" gorm:"size:20;index"`
	ActorID          uint      `json:"actor_id" gorm:"index"`
	ActorHandle      string    `json:"actor_handle"`
	ActorDisplayName string    `json:"actor_display_name"`
	ActorAvatarURL   string    `json:"actor_avatar_url,omitempty"`
	PostID           string    `json:"post_id,omitempty"`
	PostSnippet      string    `json:"post_snippet,omitempty"`
	Message          string    `json:"message"`
	IsRead           bool      `json:"is_read" gorm:"default:false;index"`
	CreatedAt        time.Time `json:"created_at" gorm:"index"`
}

// GroupedNotifications buckets a recipient's notifications by age
type GroupedNotifications struct {
	Today     []Notification `json:"today"`
	Yesterday []Notification `json:"yesterday"`
	ThisWeek  []Notification `json:"thisWeek"`
	Older     []Notification `json:"older"`
}
