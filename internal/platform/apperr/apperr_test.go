package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_HTTPStatus(t *testing.T) {
	tests := []struct {
		err  *Error
		want int
	}{
		{Unauthorized("x"), http.StatusUnauthorized},
		{Forbidden("x"), http.StatusForbidden},
		{NotFound("x"), http.StatusNotFound},
		{Invalid("x"), http.StatusBadRequest},
		{TooLarge("x"), http.StatusRequestEntityTooLarge},
		{RangeNotSatisfiable("x"), http.StatusRequestedRangeNotSatisfiable},
		{TooManyRequests("x"), http.StatusTooManyRequests},
		{Internal("x", nil), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.err.Kind), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.HTTPStatus())
		})
	}
}

func TestFrom(t *testing.T) {
	assert.Nil(t, From(nil))

	nf := NotFound("gone")
	assert.Same(t, nf, From(fmt.Errorf("wrapped: %w", nf)))

	plain := errors.New("boom")
	got := From(plain)
	assert.Equal(t, KindInternal, got.Kind)
	assert.ErrorIs(t, got, plain)
}

func TestIs(t *testing.T) {
	assert.True(t, Is(fmt.Errorf("ctx: %w", Forbidden("no")), KindForbidden))
	assert.False(t, Is(errors.New("plain"), KindForbidden))
}

func TestWrite_hides_internal_cause(t *testing.T) {
	rec := httptest.NewRecorder()
	Write(rec, nil, Internal("internal server error", errors.New("disk exploded")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "internal server error", body.Error)
	assert.Equal(t, KindInternal, body.Type)
	assert.NotContains(t, rec.Body.String(), "disk exploded")
}
