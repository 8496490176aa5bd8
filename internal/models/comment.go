package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment represents a comment document attached to a post.
type Comment struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PostID         string             `bson:"post_id" json:"post_id"`
	AuthorID       string             `bson:"author_id" json:"author_id"`
	AuthorUsername string             `bson:"author_username" json:"author_username"`
	Content        string             `bson:"content" json:"content"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
}

// CreateCommentRequest defines the request body for creating a comment.
type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=2000"`
}
