package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationType classifies a notification.
type NotificationType string

const (
	NotificationLike           NotificationType = "like"
	NotificationComment        NotificationType = "comment"
	NotificationNewFollower    NotificationType = "new_follower"
	NotificationFriendRequest  NotificationType = "friend_request"
	NotificationFriendAccepted NotificationType = "friend_accepted"
	NotificationImageLike      NotificationType = "image_like"
	NotificationImageComment   NotificationType = "image_comment"
)

// PostSnapshot is the denormalized copy of a post embedded in a notification at
// creation time, so the notification stays meaningful after the post is edited
// or deleted. This duplication is intentional.
type PostSnapshot struct {
	Title                string    `bson:"title" json:"title"`
	Content              string    `bson:"content" json:"content"`
	AuthorID             string    `bson:"author_id" json:"author_id"`
	AuthorUsername       string    `bson:"author_username" json:"author_username"`
	AuthorProfilePicture string    `bson:"author_profile_picture,omitempty" json:"author_profile_picture,omitempty"`
	LikesCount           int       `bson:"likes_count" json:"likes_count"`
	CommentsCount        int       `bson:"comments_count" json:"comments_count"`
	CreatedAt            time.Time `bson:"created_at" json:"created_at"`
}

// ImageSnapshot is the denormalized copy of an image embedded in a notification.
type ImageSnapshot struct {
	URL           string    `bson:"url" json:"url"`
	OwnerID       string    `bson:"owner_id" json:"owner_id"`
	OwnerUsername string    `bson:"owner_username" json:"owner_username"`
	LikesCount    int       `bson:"likes_count" json:"likes_count"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
}

// Notification represents a notification document. It is mutated only by the
// mark-read operation and deleted only alongside its related post.
type Notification struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID          string             `bson:"user_id" json:"user_id"`
	EmitterID       string             `bson:"emitter_id" json:"emitter_id"`
	EmitterUsername string             `bson:"emitter_username" json:"emitter_username"`
	Type            NotificationType   `bson:"type" json:"type"`
	Message         string             `bson:"message" json:"message"`
	Read            bool               `bson:"read" json:"read"`
	ReadAt          *time.Time         `bson:"read_at,omitempty" json:"read_at,omitempty"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
	PostID          string             `bson:"post_id,omitempty" json:"post_id,omitempty"`
	CommentID       string             `bson:"comment_id,omitempty" json:"comment_id,omitempty"`
	ImageID         string             `bson:"image_id,omitempty" json:"image_id,omitempty"`
	Post            *PostSnapshot      `bson:"post,omitempty" json:"post,omitempty"`
	Image           *ImageSnapshot     `bson:"image,omitempty" json:"image,omitempty"`
}
