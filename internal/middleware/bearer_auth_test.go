package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urbano-social/backend/internal/apperrors"
	"github.com/urbano-social/backend/internal/auth"
)

type stubResolver struct {
	user auth.CurrentUser
	err  error
}

func (r stubResolver) Resolve(context.Context, string) (auth.CurrentUser, error) {
	return r.user, r.err
}

func runBearerAuth(t *testing.T, resolver auth.TokenResolver, header string) (echo.Context, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	handler := BearerAuth(resolver)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	return c, handler(c)
}

func TestBearerAuthSetsCurrentUser(t *testing.T) {
	want := auth.CurrentUser{ID: "u1", Username: "alice"}
	c, err := runBearerAuth(t, stubResolver{user: want}, "Bearer good-token")
	require.NoError(t, err)

	got, ok := CurrentUserFrom(c)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestBearerAuthMissingHeader(t *testing.T) {
	_, err := runBearerAuth(t, stubResolver{}, "")
	require.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestBearerAuthMalformedHeader(t *testing.T) {
	_, err := runBearerAuth(t, stubResolver{}, "Token abc")
	require.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestBearerAuthInvalidToken(t *testing.T) {
	resolver := stubResolver{err: apperrors.New(apperrors.Unauthorized, "invalid token")}
	c, err := runBearerAuth(t, resolver, "Bearer bad-token")
	require.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)

	_, ok = CurrentUserFrom(c)
	assert.False(t, ok)
}
