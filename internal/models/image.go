package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Image represents an uploaded image document. Comments on an image live in
// their own collection keyed by image_id; likes are embedded as liked_by.
type Image struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID       string             `bson:"owner_id" json:"owner_id"`
	OwnerUsername string             `bson:"owner_username" json:"owner_username"`
	URL           string             `bson:"url" json:"url"`
	Caption       string             `bson:"caption,omitempty" json:"caption,omitempty"`
	LikesCount    int                `bson:"likes_count" json:"likes_count"`
	LikedBy       []string           `bson:"liked_by" json:"liked_by"`
	CommentsCount int                `bson:"comments_count" json:"comments_count"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
}

// ImageComment represents a comment document attached to an image.
type ImageComment struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ImageID        string             `bson:"image_id" json:"image_id"`
	AuthorID       string             `bson:"author_id" json:"author_id"`
	AuthorUsername string             `bson:"author_username" json:"author_username"`
	Content        string             `bson:"content" json:"content"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
}

// CreateImageCommentRequest defines the request body for commenting on an image.
type CreateImageCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=2000"`
}
