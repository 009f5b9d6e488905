package outcome

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{Pending, http.StatusAccepted},
		{Verified, http.StatusOK},
		{AlreadyVerified, http.StatusOK},
		{Expired, http.StatusGone},
		{Invalid, http.StatusBadRequest},
		{NotFound, http.StatusNotFound},
		{AlreadyClaimed, http.StatusConflict},
		{RateLimited, http.StatusTooManyRequests},
		{Code("bogus"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.code.HTTPStatus(), string(tt.code))
	}
}

func TestExpiredAndInvalidGuidanceDiffer(t *testing.T) {
	assert.NotEqual(t, Expired.Message(), Invalid.Message())
	assert.Contains(t, Expired.Message(), "claim again")
}

func TestSuccess(t *testing.T) {
	assert.True(t, AlreadyVerified.Success())
	assert.True(t, Pending.Success())
	assert.False(t, AlreadyClaimed.Success())
	assert.False(t, Expired.Success())
}
