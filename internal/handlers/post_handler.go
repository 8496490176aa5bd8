package handlers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/urbano-social/backend/internal/models"
	"github.com/urbano-social/backend/internal/realtime"
	"github.com/urbano-social/backend/internal/repositories"
	"github.com/urbano-social/backend/internal/services"
)

// PostHandler handles post CRUD and likes.
type PostHandler struct {
	posts         repositories.PostRepository
	comments      repositories.CommentRepository
	notifications repositories.NotificationRepository
	notifier      *services.NotificationService
	broadcaster   *realtime.Broadcaster
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(
	posts repositories.PostRepository,
	comments repositories.CommentRepository,
	notifications repositories.NotificationRepository,
	notifier *services.NotificationService,
	broadcaster *realtime.Broadcaster,
) *PostHandler {
	return &PostHandler{
		posts:         posts,
		comments:      comments,
		notifications: notifications,
		notifier:      notifier,
		broadcaster:   broadcaster,
	}
}

// RegisterPostRoutes registers post routes on the authenticated group.
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("", h.CreatePost)
	g.GET("", h.GetPosts)
	g.GET("/:post_id", h.GetPost)
	g.PATCH("/:post_id", h.UpdatePost)
	g.DELETE("/:post_id", h.DeletePost)
	g.POST("/:post_id/like", h.LikePost)
	g.DELETE("/:post_id/like", h.UnlikePost)
}

// CreatePost creates a post with denormalized author fields and announces it to
// every connected personal stream.
func (h *PostHandler) CreatePost(c echo.Context) error {
	currentUser, err := requireUser(c)
	if err != nil {
		return err
	}

	req := new(models.CreatePostRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	post := &models.Post{
		Title:                req.Title,
		Content:              req.Content,
		AuthorID:             currentUser.ID,
		AuthorUsername:       currentUser.Username,
		AuthorProfilePicture: currentUser.ProfilePicture,
	}
	if err := h.posts.CreatePost(c.Request().Context(), post); err != nil {
		return toHTTPError(err)
	}

	h.broadcaster.BroadcastToAllUsers(realtime.Event{Name: realtime.EventNewPost, Data: post})
	return c.JSON(http.StatusCreated, post)
}

// GetPosts returns the feed, newest first. An author_id query parameter
// narrows it to one user's posts.
func (h *PostHandler) GetPosts(c echo.Context) error {
	skip, limit := paging(c, 20, 100)
	ctx := c.Request().Context()

	var (
		posts []models.Post
		err   error
	)
	if authorID := c.QueryParam("author_id"); authorID != "" {
		posts, err = h.posts.GetPostsByAuthorID(ctx, authorID, skip, limit)
	} else {
		posts, err = h.posts.GetAllPosts(ctx, skip, limit)
	}
	if err != nil {
		return toHTTPError(err)
	}
	if posts == nil {
		posts = []models.Post{}
	}
	return c.JSON(http.StatusOK, posts)
}

// GetPost returns one post.
func (h *PostHandler) GetPost(c echo.Context) error {
	post, err := h.posts.GetPostByID(c.Request().Context(), c.Param("post_id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, post)
}

// UpdatePost edits a post. Only the author may edit; the update is broadcast
// to everyone watching the post's thread.
func (h *PostHandler) UpdatePost(c echo.Context) error {
	currentUser, err := requireUser(c)
	if err != nil {
		return err
	}
	postID := c.Param("post_id")
	ctx := c.Request().Context()

	post, err := h.posts.GetPostByID(ctx, postID)
	if err != nil {
		return toHTTPError(err)
	}
	if post.AuthorID != currentUser.ID {
		return echo.NewHTTPError(http.StatusForbidden, "Not authorized to edit this post")
	}

	req := new(models.UpdatePostRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	updated, err := h.posts.UpdatePost(ctx, postID, req)
	if err != nil {
		return toHTTPError(err)
	}

	h.broadcaster.Broadcast(realtime.PostChannel(postID), realtime.Event{
		Name: realtime.EventPostUpdated,
		Data: updated,
	})
	return c.JSON(http.StatusOK, updated)
}

// DeletePost removes a post, its comments and every notification referencing
// it, then announces the deletion on the post's thread.
func (h *PostHandler) DeletePost(c echo.Context) error {
	currentUser, err := requireUser(c)
	if err != nil {
		return err
	}
	postID := c.Param("post_id")
	ctx := c.Request().Context()

	post, err := h.posts.GetPostByID(ctx, postID)
	if err != nil {
		return toHTTPError(err)
	}
	if post.AuthorID != currentUser.ID && currentUser.Role != models.RoleAdmin {
		return echo.NewHTTPError(http.StatusForbidden, "Not authorized to delete this post")
	}

	if err := h.posts.DeletePost(ctx, postID); err != nil {
		return toHTTPError(err)
	}
	if _, err := h.comments.DeleteCommentsByPostID(ctx, postID); err != nil {
		return toHTTPError(err)
	}
	if _, err := h.notifications.DeleteByPostID(ctx, postID); err != nil {
		return toHTTPError(err)
	}

	h.broadcaster.Broadcast(realtime.PostChannel(postID), realtime.Event{
		Name: realtime.EventPostDeleted,
		Data: map[string]string{"post_id": postID},
	})
	return c.NoContent(http.StatusNoContent)
}

// LikePost records a like, notifies the post's author and pushes the new count
// to the post's thread. Liking twice is a conflict.
func (h *PostHandler) LikePost(c echo.Context) error {
	currentUser, err := requireUser(c)
	if err != nil {
		return err
	}
	postID := c.Param("post_id")
	ctx := c.Request().Context()

	post, err := h.posts.GetPostByID(ctx, postID)
	if err != nil {
		return toHTTPError(err)
	}
	if err := h.posts.AddLike(ctx, postID, currentUser.ID); err != nil {
		return toHTTPError(err)
	}

	updated, err := h.posts.GetPostByID(ctx, postID)
	if err != nil {
		return toHTTPError(err)
	}

	// Best-effort: the like stands even when the notification write fails.
	_ = h.notifier.Notify(ctx, &models.Notification{
		UserID:          post.AuthorID,
		EmitterID:       currentUser.ID,
		EmitterUsername: currentUser.Username,
		Type:            models.NotificationLike,
		Message:         fmt.Sprintf("%s liked your post", currentUser.Username),
		PostID:          postID,
		Post:            snapshotPost(updated),
	})

	h.broadcaster.Broadcast(realtime.PostChannel(postID), realtime.Event{
		Name: realtime.EventPostUpdated,
		Data: map[string]any{
			"post_id":     postID,
			"likes_count": updated.LikesCount,
			"liked_by":    updated.LikedBy,
		},
	})
	return c.JSON(http.StatusOK, updated)
}

// UnlikePost removes a like and pushes the new count to the post's thread.
func (h *PostHandler) UnlikePost(c echo.Context) error {
	currentUser, err := requireUser(c)
	if err != nil {
		return err
	}
	postID := c.Param("post_id")
	ctx := c.Request().Context()

	if err := h.posts.RemoveLike(ctx, postID, currentUser.ID); err != nil {
		return toHTTPError(err)
	}
	updated, err := h.posts.GetPostByID(ctx, postID)
	if err != nil {
		return toHTTPError(err)
	}

	h.broadcaster.Broadcast(realtime.PostChannel(postID), realtime.Event{
		Name: realtime.EventPostUpdated,
		Data: map[string]any{
			"post_id":     postID,
			"likes_count": updated.LikesCount,
			"liked_by":    updated.LikedBy,
		},
	})
	return c.JSON(http.StatusOK, updated)
}

// snapshotPost freezes the post's current state for embedding in a notification.
func snapshotPost(post *models.Post) *models.PostSnapshot {
	return &models.PostSnapshot{
		Title:                post.Title,
		Content:              post.Content,
		AuthorID:             post.AuthorID,
		AuthorUsername:       post.AuthorUsername,
		AuthorProfilePicture: post.AuthorProfilePicture,
		LikesCount:           post.LikesCount,
		CommentsCount:        post.CommentsCount,
		CreatedAt:            post.CreatedAt,
	}
}
