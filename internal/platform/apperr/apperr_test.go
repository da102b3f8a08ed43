package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "validation", err: Validation("bad"), want: http.StatusBadRequest},
		{name: "not found", err: NotFound("gone"), want: http.StatusNotFound},
		{name: "conflict", err: Conflict("busy"), want: http.StatusConflict},
		{name: "external", err: External("upstream", errors.New("boom")), want: http.StatusBadGateway},
		{name: "wrapped", err: fmt.Errorf("outer: %w", Conflict("busy")), want: http.StatusConflict},
		{name: "plain", err: errors.New("plain"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestAppError_IsAndUnwrap(t *testing.T) {
	sentinel := Conflict("request already in flight")
	wrapped := fmt.Errorf("send: %w", sentinel)

	assert.ErrorIs(t, wrapped, sentinel)
	assert.NotErrorIs(t, wrapped, Conflict("other"))

	cause := errors.New("dial tcp: refused")
	ext := External("diagnosis service unavailable", cause)
	assert.ErrorIs(t, ext, cause)
	assert.Equal(t, "EXTERNAL: diagnosis service unavailable: dial tcp: refused", ext.Error())
}

func TestPublicMessage(t *testing.T) {
	assert.Equal(t, "bad input", PublicMessage(Validation("bad input")))
	assert.Equal(t, "internal error", PublicMessage(Internal("db exploded", errors.New("x"))))
	assert.Equal(t, "internal error", PublicMessage(errors.New("x")))
}
