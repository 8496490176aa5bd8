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

// CommentHandler handles comments on posts.
type CommentHandler struct {
	comments    repositories.CommentRepository
	posts       repositories.PostRepository
	notifier    *services.NotificationService
	broadcaster *realtime.Broadcaster
}

// NewCommentHandler creates a new CommentHandler.
func NewCommentHandler(
	comments repositories.CommentRepository,
	posts repositories.PostRepository,
	notifier *services.NotificationService,
	broadcaster *realtime.Broadcaster,
) *CommentHandler {
	return &CommentHandler{comments: comments, posts: posts, notifier: notifier, broadcaster: broadcaster}
}

// RegisterCommentRoutes registers comment routes on the authenticated group.
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/:post_id/comments", h.CreateComment)
	g.GET("/:post_id/comments", h.GetComments)
	g.DELETE("/:post_id/comments/:comment_id", h.DeleteComment)
}

// CreateComment persists the comment, bumps the post's counter, notifies the
// post's author and pushes the comment to everyone watching the thread.
func (h *CommentHandler) CreateComment(c echo.Context) error {
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

	req := new(models.CreateCommentRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	comment := &models.Comment{
		PostID:         postID,
		AuthorID:       currentUser.ID,
		AuthorUsername: currentUser.Username,
		Content:        req.Content,
	}
	if err := h.comments.CreateComment(ctx, comment); err != nil {
		return toHTTPError(err)
	}
	if err := h.posts.IncrementCommentsCount(ctx, postID); err != nil {
		return toHTTPError(err)
	}

	post.CommentsCount++
	_ = h.notifier.Notify(ctx, &models.Notification{
		UserID:          post.AuthorID,
		EmitterID:       currentUser.ID,
		EmitterUsername: currentUser.Username,
		Type:            models.NotificationComment,
		Message:         fmt.Sprintf("%s commented on your post", currentUser.Username),
		PostID:          postID,
		CommentID:       comment.ID.Hex(),
		Post:            snapshotPost(post),
	})

	h.broadcaster.Broadcast(realtime.PostChannel(postID), realtime.Event{
		Name: realtime.EventNewComment,
		Data: comment,
	})
	return c.JSON(http.StatusCreated, comment)
}

// GetComments returns a post's comments, newest first.
func (h *CommentHandler) GetComments(c echo.Context) error {
	postID := c.Param("post_id")
	ctx := c.Request().Context()

	if _, err := h.posts.GetPostByID(ctx, postID); err != nil {
		return toHTTPError(err)
	}

	skip, limit := paging(c, 50, 200)
	comments, err := h.comments.GetCommentsByPostID(ctx, postID, skip, limit)
	if err != nil {
		return toHTTPError(err)
	}
	if comments == nil {
		comments = []models.Comment{}
	}
	return c.JSON(http.StatusOK, comments)
}

// DeleteComment removes a comment. The comment's author and admins may delete.
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	currentUser, err := requireUser(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	comment, err := h.comments.GetCommentByID(ctx, c.Param("comment_id"))
	if err != nil {
		return toHTTPError(err)
	}
	if comment.PostID != c.Param("post_id") {
		return echo.NewHTTPError(http.StatusNotFound, "comment not found")
	}
	if comment.AuthorID != currentUser.ID && currentUser.Role != models.RoleAdmin {
		return echo.NewHTTPError(http.StatusForbidden, "Not authorized to delete this comment")
	}

	if err := h.comments.DeleteComment(ctx, comment.ID.Hex()); err != nil {
		return toHTTPError(err)
	}
	if err := h.posts.DecrementCommentsCount(ctx, comment.PostID); err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
