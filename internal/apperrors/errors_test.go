package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOfDefaultsToInternal(t *testing.T) {
	assert.Equal(t, Internal, KindOf(errors.New("plain")))
	assert.Equal(t, NotFound, KindOf(New(NotFound, "missing")))
}

func TestKindOfSeesThroughWrapping(t *testing.T) {
	err := fmt.Errorf("context: %w", New(Conflict, "already friends"))
	assert.Equal(t, Conflict, KindOf(err))
}

func TestMessageOfHidesInternalDetail(t *testing.T) {
	err := Wrap(Internal, "failed to load user", errors.New("connection refused"))
	assert.Equal(t, "internal server error", MessageOf(err))
	assert.Equal(t, "internal server error", MessageOf(errors.New("raw")))
	assert.Equal(t, "user not found", MessageOf(New(NotFound, "user not found")))
}

func TestUnwrapPreservesCause(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(NotFound, "user not found", cause)
	assert.True(t, errors.Is(err, cause))
}

func TestHTTPStatusMapping(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(New(InvalidInput, "bad id")))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(New(NotFound, "missing")))
	assert.Equal(t, http.StatusConflict, HTTPStatus(New(Conflict, "dup")))
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(New(Unauthorized, "no")))
	assert.Equal(t, http.StatusForbidden, HTTPStatus(New(Forbidden, "no")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("boom")))
}
