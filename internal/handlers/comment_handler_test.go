package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urbano-social/backend/internal/apperrors"
	"github.com/urbano-social/backend/internal/auth"
	"github.com/urbano-social/backend/internal/middleware"
	"github.com/urbano-social/backend/internal/models"
	"github.com/urbano-social/backend/internal/realtime"
	"github.com/urbano-social/backend/internal/repositories"
	"github.com/urbano-social/backend/internal/services"
	"github.com/urbano-social/backend/internal/validators"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// recordingConn is a realtime.Connection that records outbound events.
type recordingConn struct {
	mu   sync.Mutex
	sent []any
}

func (c *recordingConn) Accept() error { return nil }

func (c *recordingConn) SendJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, v)
	return nil
}

func (c *recordingConn) ReadMessage() ([]byte, error) { return nil, io.EOF }

func (c *recordingConn) Close(realtime.CloseCode, string) error { return nil }

func (c *recordingConn) events() []realtime.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []realtime.Event
	for _, v := range c.sent {
		if event, ok := v.(realtime.Event); ok {
			out = append(out, event)
		}
	}
	return out
}

// fakePostRepo holds a single post.
type fakePostRepo struct {
	mu   sync.Mutex
	post *models.Post
}

func (r *fakePostRepo) CreatePost(_ context.Context, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	post.ID = primitive.NewObjectID()
	r.post = post
	return nil
}

func (r *fakePostRepo) GetPostByID(_ context.Context, id string) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.post == nil || r.post.ID.Hex() != id {
		return nil, apperrors.New(apperrors.NotFound, "post not found")
	}
	copied := *r.post
	return &copied, nil
}

func (r *fakePostRepo) GetPostsByAuthorID(context.Context, string, int64, int64) ([]models.Post, error) {
	return nil, nil
}

func (r *fakePostRepo) GetAllPosts(context.Context, int64, int64) ([]models.Post, error) {
	return nil, nil
}

func (r *fakePostRepo) UpdatePost(context.Context, string, *models.UpdatePostRequest) (*models.Post, error) {
	return nil, apperrors.New(apperrors.NotFound, "post not found")
}

func (r *fakePostRepo) DeletePost(context.Context, string) error { return nil }

func (r *fakePostRepo) IncrementCommentsCount(_ context.Context, postID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.post != nil && r.post.ID.Hex() == postID {
		r.post.CommentsCount++
	}
	return nil
}

func (r *fakePostRepo) DecrementCommentsCount(_ context.Context, postID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.post != nil && r.post.ID.Hex() == postID {
		r.post.CommentsCount--
	}
	return nil
}

func (r *fakePostRepo) AddLike(context.Context, string, string) error    { return nil }
func (r *fakePostRepo) RemoveLike(context.Context, string, string) error { return nil }

var _ repositories.PostRepository = (*fakePostRepo)(nil)

// fakeCommentRepo records created comments.
type fakeCommentRepo struct {
	mu       sync.Mutex
	comments []*models.Comment
}

func (r *fakeCommentRepo) CreateComment(_ context.Context, comment *models.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	comment.ID = primitive.NewObjectID()
	r.comments = append(r.comments, comment)
	return nil
}

func (r *fakeCommentRepo) GetCommentByID(_ context.Context, id string) (*models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, comment := range r.comments {
		if comment.ID.Hex() == id {
			return comment, nil
		}
	}
	return nil, apperrors.New(apperrors.NotFound, "comment not found")
}

func (r *fakeCommentRepo) GetCommentsByPostID(_ context.Context, postID string, _, _ int64) ([]models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Comment
	for _, comment := range r.comments {
		if comment.PostID == postID {
			out = append(out, *comment)
		}
	}
	return out, nil
}

func (r *fakeCommentRepo) DeleteComment(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, comment := range r.comments {
		if comment.ID.Hex() == id {
			r.comments = append(r.comments[:i], r.comments[i+1:]...)
			return nil
		}
	}
	return apperrors.New(apperrors.NotFound, "comment not found")
}

func (r *fakeCommentRepo) DeleteCommentsByPostID(context.Context, string) (int64, error) {
	return 0, nil
}

var _ repositories.CommentRepository = (*fakeCommentRepo)(nil)

// stubNotificationRepo records created notifications and stubs the rest.
type stubNotificationRepo struct {
	mu      sync.Mutex
	created []*models.Notification
}

func (r *stubNotificationRepo) CreateNotification(_ context.Context, notification *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	notification.ID = primitive.NewObjectID()
	r.created = append(r.created, notification)
	return nil
}

func (r *stubNotificationRepo) GetByRecipientID(context.Context, string, int64, bool) ([]models.Notification, error) {
	return nil, nil
}

func (r *stubNotificationRepo) GetUnreadCount(context.Context, string) (int64, error) {
	return 0, nil
}

func (r *stubNotificationRepo) MarkManyAsRead(context.Context, string, []string) (int64, error) {
	return 0, nil
}

func (r *stubNotificationRepo) DeleteByPostID(context.Context, string) (int64, error) {
	return 0, nil
}

var _ repositories.NotificationRepository = (*stubNotificationRepo)(nil)

type commentFixture struct {
	handler       *CommentHandler
	posts         *fakePostRepo
	comments      *fakeCommentRepo
	notifications *stubNotificationRepo
	registry      *realtime.Registry
	post          *models.Post
	owner         auth.CurrentUser
}

func newCommentFixture(t *testing.T) *commentFixture {
	t.Helper()
	ownerID := primitive.NewObjectID()
	post := &models.Post{
		ID:             primitive.NewObjectID(),
		Title:          "hello",
		Content:        "first post",
		AuthorID:       ownerID.Hex(),
		AuthorUsername: "owner",
	}

	posts := &fakePostRepo{post: post}
	comments := &fakeCommentRepo{}
	notifications := &stubNotificationRepo{}
	registry := realtime.NewRegistry()
	broadcaster := realtime.NewBroadcaster(registry, nil)
	notifier := services.NewNotificationService(notifications, broadcaster, nil)

	return &commentFixture{
		handler:       NewCommentHandler(comments, posts, notifier, broadcaster),
		posts:         posts,
		comments:      comments,
		notifications: notifications,
		registry:      registry,
		post:          post,
		owner:         auth.CurrentUser{ID: ownerID.Hex(), Username: "owner", Role: models.RoleUser},
	}
}

func newCommentContext(t *testing.T, postID, body string, user auth.CurrentUser) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = validators.NewValidator()
	req := httptest.NewRequest(http.MethodPost, "/posts/"+postID+"/comments", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("post_id")
	c.SetParamValues(postID)
	c.Set(middleware.CurrentUserKey, user)
	return c, rec
}

func TestCreateCommentFullFlow(t *testing.T) {
	f := newCommentFixture(t)
	postID := f.post.ID.Hex()
	commenter := auth.CurrentUser{ID: primitive.NewObjectID().Hex(), Username: "carol", Role: models.RoleUser}

	threadConn := &recordingConn{}
	ownerConn := &recordingConn{}
	require.NoError(t, f.registry.Register(threadConn, realtime.PostChannel(postID)))
	require.NoError(t, f.registry.Register(ownerConn, realtime.UserChannel(f.owner.ID)))

	c, rec := newCommentContext(t, postID, `{"content":"great post"}`, commenter)
	require.NoError(t, f.handler.CreateComment(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	// Comment persisted and counter bumped.
	require.Len(t, f.comments.comments, 1)
	comment := f.comments.comments[0]
	assert.Equal(t, "great post", comment.Content)
	assert.Equal(t, commenter.ID, comment.AuthorID)
	assert.Equal(t, 1, f.posts.post.CommentsCount)

	// The post's author got a notification carrying a post snapshot.
	require.Len(t, f.notifications.created, 1)
	notification := f.notifications.created[0]
	assert.Equal(t, f.owner.ID, notification.UserID)
	assert.Equal(t, models.NotificationComment, notification.Type)
	assert.Equal(t, "carol commented on your post", notification.Message)
	require.NotNil(t, notification.Post)
	assert.Equal(t, "hello", notification.Post.Title)
	assert.Equal(t, 1, notification.Post.CommentsCount)

	// Thread watchers saw the comment; the owner's stream saw the notification.
	threadEvents := threadConn.events()
	require.Len(t, threadEvents, 1)
	assert.Equal(t, realtime.EventNewComment, threadEvents[0].Name)

	ownerEvents := ownerConn.events()
	require.Len(t, ownerEvents, 1)
	assert.Equal(t, realtime.EventNewNotification, ownerEvents[0].Name)
}

func TestCreateCommentOnOwnPostSkipsNotification(t *testing.T) {
	f := newCommentFixture(t)
	postID := f.post.ID.Hex()

	threadConn := &recordingConn{}
	require.NoError(t, f.registry.Register(threadConn, realtime.PostChannel(postID)))

	c, rec := newCommentContext(t, postID, `{"content":"replying to myself"}`, f.owner)
	require.NoError(t, f.handler.CreateComment(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	assert.Empty(t, f.notifications.created)
	assert.Len(t, threadConn.events(), 1)
}

func TestCreateCommentOnMissingPostIs404(t *testing.T) {
	f := newCommentFixture(t)
	commenter := auth.CurrentUser{ID: primitive.NewObjectID().Hex(), Username: "carol", Role: models.RoleUser}

	c, _ := newCommentContext(t, primitive.NewObjectID().Hex(), `{"content":"x"}`, commenter)
	err := f.handler.CreateComment(c)
	require.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, httpErr.Code)
	assert.Empty(t, f.comments.comments)
}

func TestCreateCommentEmptyContentIs400(t *testing.T) {
	f := newCommentFixture(t)
	commenter := auth.CurrentUser{ID: primitive.NewObjectID().Hex(), Username: "carol", Role: models.RoleUser}

	c, _ := newCommentContext(t, f.post.ID.Hex(), `{"content":""}`, commenter)
	err := f.handler.CreateComment(c)
	require.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestDeleteCommentByNonAuthorIs403(t *testing.T) {
	f := newCommentFixture(t)
	postID := f.post.ID.Hex()
	commenter := auth.CurrentUser{ID: primitive.NewObjectID().Hex(), Username: "carol", Role: models.RoleUser}

	c, _ := newCommentContext(t, postID, `{"content":"mine"}`, commenter)
	require.NoError(t, f.handler.CreateComment(c))
	commentID := f.comments.comments[0].ID.Hex()

	stranger := auth.CurrentUser{ID: primitive.NewObjectID().Hex(), Username: "mallory", Role: models.RoleUser}
	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	dc := e.NewContext(req, rec)
	dc.SetParamNames("post_id", "comment_id")
	dc.SetParamValues(postID, commentID)
	dc.Set(middleware.CurrentUserKey, stranger)

	err := f.handler.DeleteComment(dc)
	require.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, httpErr.Code)
	assert.Len(t, f.comments.comments, 1)
}
