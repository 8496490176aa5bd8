package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post represents a post document. Author fields are denormalized at creation
// time; author_id is always the author's hex id.
type Post struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title                string             `bson:"title" json:"title"`
	Content              string             `bson:"content" json:"content"`
	AuthorID             string             `bson:"author_id" json:"author_id"`
	AuthorUsername       string             `bson:"author_username" json:"author_username"`
	AuthorProfilePicture string             `bson:"author_profile_picture,omitempty" json:"author_profile_picture,omitempty"`
	LikesCount           int                `bson:"likes_count" json:"likes_count"`
	LikedBy              []string           `bson:"liked_by" json:"liked_by"`
	CommentsCount        int                `bson:"comments_count" json:"comments_count"`
	CreatedAt            time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt            time.Time          `bson:"updated_at" json:"updated_at"`
}

// CreatePostRequest defines the request body for creating a post.
type CreatePostRequest struct {
	Title   string `json:"title" validate:"required,min=1,max=200"`
	Content string `json:"content" validate:"required,min=1"`
}

// UpdatePostRequest defines the request body for editing a post.
type UpdatePostRequest struct {
	Title   *string `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Content *string `json:"content,omitempty" validate:"omitempty,min=1"`
}
