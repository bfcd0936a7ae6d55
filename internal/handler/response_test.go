package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sakif/item-shop/internal/apperror"
)

func TestWriteError_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{
			"validation",
			apperror.ValidationFailed("offer_id", "missing offer_id"),
			http.StatusBadRequest,
			`{"error":"missing offer_id"}`,
		},
		{
			"not found",
			apperror.NotFound("user", "u1"),
			http.StatusNotFound,
			`{"error":"user not found with id u1"}`,
		},
		{
			"unauthorized",
			apperror.Unauthorized("invalid username or password"),
			http.StatusUnauthorized,
			`{"error":"invalid username or password"}`,
		},
		{
			"conflict",
			apperror.Conflict("username", "that username is taken"),
			http.StatusConflict,
			`{"error":"that username is taken"}`,
		},
		{
			"upstream",
			apperror.Upstream("item shop API returned status 503", nil),
			http.StatusBadGateway,
			`{"error":"item shop API returned status 503"}`,
		},
		{
			"unknown error stays generic",
			errors.New("pq: connection reset"),
			http.StatusInternalServerError,
			`{"error":"an internal error occurred"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			assert.JSONEq(t, tt.body, rec.Body.String())
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestWriteError_WrappedErrorKeepsMapping(t *testing.T) {
	// Services wrap repo errors with context; the mapping follows the chain.
	err := errors.Join(errors.New("service/wishlist: adding"), apperror.Conflict("offer_id", "offer already in wishlist"))

	rec := httptest.NewRecorder()
	writeError(rec, err)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "missing offer_id",
		userMessage(apperror.ValidationFailed("offer_id", "missing offer_id"), "fallback"))
	assert.Equal(t, "fallback",
		userMessage(errors.New("driver: bad connection"), "fallback"))
}
