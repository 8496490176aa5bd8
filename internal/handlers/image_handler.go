package handlers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/urbano-social/backend/internal/models"
	"github.com/urbano-social/backend/internal/realtime"
	"github.com/urbano-social/backend/internal/repositories"
	"github.com/urbano-social/backend/internal/services"
)

// ImageHandler handles image uploads, likes and comments.
type ImageHandler struct {
	images      repositories.ImageRepository
	notifier    *services.NotificationService
	broadcaster *realtime.Broadcaster
	uploadDir   string
}

// NewImageHandler creates a new ImageHandler.
func NewImageHandler(
	images repositories.ImageRepository,
	notifier *services.NotificationService,
	broadcaster *realtime.Broadcaster,
	uploadDir string,
) *ImageHandler {
	return &ImageHandler{images: images, notifier: notifier, broadcaster: broadcaster, uploadDir: uploadDir}
}

// RegisterImageRoutes registers image routes on the authenticated group.
func (h *ImageHandler) RegisterImageRoutes(g *echo.Group) {
	g.POST("", h.UploadImage)
	g.GET("", h.GetImages)
	g.GET("/:image_id", h.GetImage)
	g.DELETE("/:image_id", h.DeleteImage)
	g.POST("/:image_id/like", h.LikeImage)
	g.DELETE("/:image_id/like", h.UnlikeImage)
	g.POST("/:image_id/comments", h.CreateImageComment)
	g.GET("/:image_id/comments", h.GetImageComments)
}

var allowedImageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
}

// UploadImage stores the multipart file under a random name and creates the
// image document.
func (h *ImageHandler) UploadImage(c echo.Context) error {
	currentUser, err := requireUser(c)
	if err != nil {
		return err
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing file")
	}
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedImageExtensions[ext] {
		return echo.NewHTTPError(http.StatusBadRequest, "Unsupported image type")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Failed to read file")
	}
	defer src.Close()

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to store file")
	}
	filename := uuid.NewString() + ext
	dstPath := filepath.Join(h.uploadDir, filename)
	dst, err := os.Create(dstPath)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to store file")
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dstPath)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to store file")
	}

	image := &models.Image{
		OwnerID:       currentUser.ID,
		OwnerUsername: currentUser.Username,
		URL:           "/uploads/" + filename,
		Caption:       c.FormValue("caption"),
	}
	if err := h.images.CreateImage(c.Request().Context(), image); err != nil {
		os.Remove(dstPath)
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, image)
}

// GetImages returns a user's images, newest first. owner_id defaults to the
// authenticated user.
func (h *ImageHandler) GetImages(c echo.Context) error {
	currentUser, err := requireUser(c)
	if err != nil {
		return err
	}
	ownerID := c.QueryParam("owner_id")
	if ownerID == "" {
		ownerID = currentUser.ID
	}

	skip, limit := paging(c, 20, 100)
	images, err := h.images.GetImagesByOwnerID(c.Request().Context(), ownerID, skip, limit)
	if err != nil {
		return toHTTPError(err)
	}
	if images == nil {
		images = []models.Image{}
	}
	return c.JSON(http.StatusOK, images)
}

// GetImage returns one image.
func (h *ImageHandler) GetImage(c echo.Context) error {
	image, err := h.images.GetImageByID(c.Request().Context(), c.Param("image_id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, image)
}

// DeleteImage removes an image and its stored file. The owner and admins may
// delete.
func (h *ImageHandler) DeleteImage(c echo.Context) error {
	currentUser, err := requireUser(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	image, err := h.images.GetImageByID(ctx, c.Param("image_id"))
	if err != nil {
		return toHTTPError(err)
	}
	if image.OwnerID != currentUser.ID && currentUser.Role != models.RoleAdmin {
		return echo.NewHTTPError(http.StatusForbidden, "Not authorized to delete this image")
	}

	if err := h.images.DeleteImage(ctx, image.ID.Hex()); err != nil {
		return toHTTPError(err)
	}
	if name := strings.TrimPrefix(image.URL, "/uploads/"); name != image.URL {
		os.Remove(filepath.Join(h.uploadDir, name))
	}
	return c.NoContent(http.StatusNoContent)
}

// LikeImage records a like, notifies the owner and pushes the new count to the
// image's stream.
func (h *ImageHandler) LikeImage(c echo.Context) error {
	currentUser, err := requireUser(c)
	if err != nil {
		return err
	}
	imageID := c.Param("image_id")
	ctx := c.Request().Context()

	image, err := h.images.GetImageByID(ctx, imageID)
	if err != nil {
		return toHTTPError(err)
	}
	if err := h.images.AddLike(ctx, imageID, currentUser.ID); err != nil {
		return toHTTPError(err)
	}
	updated, err := h.images.GetImageByID(ctx, imageID)
	if err != nil {
		return toHTTPError(err)
	}

	_ = h.notifier.Notify(ctx, &models.Notification{
		UserID:          image.OwnerID,
		EmitterID:       currentUser.ID,
		EmitterUsername: currentUser.Username,
		Type:            models.NotificationImageLike,
		Message:         fmt.Sprintf("%s liked your image", currentUser.Username),
		ImageID:         imageID,
		Image:           snapshotImage(updated),
	})

	h.broadcaster.Broadcast(realtime.ImageChannel(imageID), realtime.Event{
		Name: realtime.EventImageUpdated,
		Data: map[string]any{
			"image_id":    imageID,
			"likes_count": updated.LikesCount,
			"liked_by":    updated.LikedBy,
		},
	})
	return c.JSON(http.StatusOK, updated)
}

// UnlikeImage removes a like and pushes the new count to the image's stream.
func (h *ImageHandler) UnlikeImage(c echo.Context) error {
	currentUser, err := requireUser(c)
	if err != nil {
		return err
	}
	imageID := c.Param("image_id")
	ctx := c.Request().Context()

	if err := h.images.RemoveLike(ctx, imageID, currentUser.ID); err != nil {
		return toHTTPError(err)
	}
	updated, err := h.images.GetImageByID(ctx, imageID)
	if err != nil {
		return toHTTPError(err)
	}

	h.broadcaster.Broadcast(realtime.ImageChannel(imageID), realtime.Event{
		Name: realtime.EventImageUpdated,
		Data: map[string]any{
			"image_id":    imageID,
			"likes_count": updated.LikesCount,
			"liked_by":    updated.LikedBy,
		},
	})
	return c.JSON(http.StatusOK, updated)
}

// CreateImageComment persists the comment, bumps the image's counter, notifies
// the owner and pushes the comment to the image's stream.
func (h *ImageHandler) CreateImageComment(c echo.Context) error {
	currentUser, err := requireUser(c)
	if err != nil {
		return err
	}
	imageID := c.Param("image_id")
	ctx := c.Request().Context()

	image, err := h.images.GetImageByID(ctx, imageID)
	if err != nil {
		return toHTTPError(err)
	}

	req := new(models.CreateImageCommentRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	comment := &models.ImageComment{
		ImageID:        imageID,
		AuthorID:       currentUser.ID,
		AuthorUsername: currentUser.Username,
		Content:        req.Content,
	}
	if err := h.images.CreateComment(ctx, comment); err != nil {
		return toHTTPError(err)
	}
	if err := h.images.IncrementCommentsCount(ctx, imageID); err != nil {
		return toHTTPError(err)
	}

	_ = h.notifier.Notify(ctx, &models.Notification{
		UserID:          image.OwnerID,
		EmitterID:       currentUser.ID,
		EmitterUsername: currentUser.Username,
		Type:            models.NotificationImageComment,
		Message:         fmt.Sprintf("%s commented on your image", currentUser.Username),
		ImageID:         imageID,
		CommentID:       comment.ID.Hex(),
		Image:           snapshotImage(image),
	})

	h.broadcaster.Broadcast(realtime.ImageChannel(imageID), realtime.Event{
		Name: realtime.EventNewImageComment,
		Data: comment,
	})
	return c.JSON(http.StatusCreated, comment)
}

// GetImageComments returns an image's comments, newest first.
func (h *ImageHandler) GetImageComments(c echo.Context) error {
	imageID := c.Param("image_id")
	ctx := c.Request().Context()

	if _, err := h.images.GetImageByID(ctx, imageID); err != nil {
		return toHTTPError(err)
	}

	skip, limit := paging(c, 50, 200)
	comments, err := h.images.GetCommentsByImageID(ctx, imageID, skip, limit)
	if err != nil {
		return toHTTPError(err)
	}
	if comments == nil {
		comments = []models.ImageComment{}
	}
	return c.JSON(http.StatusOK, comments)
}

// snapshotImage freezes the image's current state for embedding in a notification.
func snapshotImage(image *models.Image) *models.ImageSnapshot {
	return &models.ImageSnapshot{
		URL:           image.URL,
		OwnerID:       image.OwnerID,
		OwnerUsername: image.OwnerUsername,
		LikesCount:    image.LikesCount,
		CreatedAt:     image.CreatedAt,
	}
}
