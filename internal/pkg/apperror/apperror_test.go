package apperror

import (
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestPersistenceWrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Persistence(cause, "failed to load listing")

	assert.True(t, errors.Is(err, ErrPersistence))
	assert.False(t, errors.Is(err, ErrTransport))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, KindPersistence, KindOf(err))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestWrappedErrorKeepsKind(t *testing.T) {
	err := errors.Wrap(Transport(errors.New("timeout"), "stripe request failed"), "create checkout")

	assert.True(t, errors.Is(err, ErrTransport))
	assert.Equal(t, http.StatusBadGateway, HTTPCodeOf(err))
}

func TestNilCauseStaysNil(t *testing.T) {
	assert.NoError(t, Persistence(nil, "noop"))
	assert.NoError(t, Transport(nil, "noop"))
}

func TestHTTPCodeOf(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{InvalidInput("bad email"), http.StatusBadRequest},
		{New(KindUnauthorized, "missing token"), http.StatusUnauthorized},
		{New(KindForbidden, "not owner"), http.StatusForbidden},
		{New(KindNotFound, "listing not found"), http.StatusNotFound},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPCodeOf(tt.err), tt.err.Error())
	}
}
