package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxPostLength bounds post text, counted in runes
const MaxPostLength = 500

// Post is a content item stored in MongoDB.
// Author fields are captured at creation time and are not kept in sync with later profile edits.
type Post struct {
	ID                primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	AuthorID          uint               `json:"author_id" bson:"author_id"`
	AuthorHandle      string             `json:"author_handle" bson:"author_handle"`
	AuthorDisplayName string             `json:"author_display_name" bson:"author_display_name"`
	Content           string             `json:"content" bson:"content"`
	ImageURL          string             `json:"image_url,omitempty" bson:"image_url,omitempty"`
	LikesCount        int64              `json:"likes_count" bson:"likes_count"`
	CommentsCount     int64              `json:"comments_count" bson:"comments_count"`
	IsPublic          bool               `json:"is_public" bson:"is_public"`
	CreatedAt         time.Time          `json:"created_at" bson:"created_at"`
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Content  string `json:"content" validate:"required,min=1,max=500"`
	ImageURL string `json:"image_url,omitempty" validate:"omitempty,url"`
}
