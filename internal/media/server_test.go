package media

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"radio-broadcast/internal/platform/apperr"
	"radio-broadcast/internal/platform/logger"
	"radio-broadcast/internal/track"
)

func fixture(t *testing.T, name string, size int) (*Server, *track.Registry, track.ID, []byte) {
	t.Helper()
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i % 251)
	}
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	reg := track.NewRegistry()
	id := reg.Register(path)
	return NewServer(reg, logger.Discard(), nil), reg, id, data
}

func serve(t *testing.T, s *Server, method string, id track.ID, rangeHeader string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	req := httptest.NewRequest(method, "/stream/"+string(id), nil)
	if rangeHeader != "" {
		req.Header.Set("Range", rangeHeader)
	}
	rec := httptest.NewRecorder()
	err := s.Serve(rec, req, id)
	return rec, err
}

func TestServer_range_request(t *testing.T) {
	s, _, id, data := fixture(t, "1_song.mp3", 1000)

	rec, err := serve(t, s, http.MethodGet, id, "bytes=100-199")
	require.NoError(t, err)

	assert.Equal(t, http.StatusPartialContent, rec.Code)
	assert.Equal(t, "bytes 100-199/1000", rec.Header().Get("Content-Range"))
	assert.Equal(t, "bytes", rec.Header().Get("Accept-Ranges"))
	assert.Equal(t, "100", rec.Header().Get("Content-Length"))
	assert.Equal(t, "audio/mpeg", rec.Header().Get("Content-Type"))
	assert.Equal(t, data[100:200], rec.Body.Bytes())
}

func TestServer_open_ended_range(t *testing.T) {
	s, _, id, data := fixture(t, "1_song.ogg", 1000)

	rec, err := serve(t, s, http.MethodGet, id, "bytes=500-")
	require.NoError(t, err)

	assert.Equal(t, http.StatusPartialContent, rec.Code)
	assert.Equal(t, "bytes 500-999/1000", rec.Header().Get("Content-Range"))
	assert.Equal(t, "audio/ogg", rec.Header().Get("Content-Type"))
	assert.Equal(t, data[500:], rec.Body.Bytes())
}

func TestServer_full_body(t *testing.T) {
	s, _, id, data := fixture(t, "1_song.flac", 1000)

	rec, err := serve(t, s, http.MethodGet, id, "")
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1000", rec.Header().Get("Content-Length"))
	assert.Equal(t, "bytes", rec.Header().Get("Accept-Ranges"))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
	assert.Empty(t, rec.Header().Get("Content-Range"))
	assert.Equal(t, data, rec.Body.Bytes())
}

func TestServer_head(t *testing.T) {
	s, _, id, _ := fixture(t, "1_song.mp3", 1000)

	rec, err := serve(t, s, http.MethodHead, id, "bytes=0-9")
	require.NoError(t, err)
	assert.Equal(t, http.StatusPartialContent, rec.Code)
	assert.Equal(t, "10", rec.Header().Get("Content-Length"))
	assert.Zero(t, rec.Body.Len())
}

func TestServer_unsatisfiable(t *testing.T) {
	s, _, id, _ := fixture(t, "1_song.mp3", 1000)

	rec, err := serve(t, s, http.MethodGet, id, "bytes=1000-")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindRangeNotSatisfiable))
	assert.Equal(t, "bytes */1000", rec.Header().Get("Content-Range"))
	assert.Zero(t, rec.Body.Len(), "nothing is written before the error is returned")
}

func TestServer_unknown_track(t *testing.T) {
	s, _, _, _ := fixture(t, "1_song.mp3", 10)

	_, err := serve(t, s, http.MethodGet, "nope", "")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestServer_swept_file_is_not_found(t *testing.T) {
	s, reg, id, _ := fixture(t, "1_song.mp3", 10)
	loc, ok := reg.Resolve(id)
	require.True(t, ok)
	require.NoError(t, os.Remove(loc))

	_, err := serve(t, s, http.MethodGet, id, "")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

type brokenWriter struct {
	*httptest.ResponseRecorder
}

func (brokenWriter) Write([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestServer_write_failure_is_contained(t *testing.T) {
	s, _, id, _ := fixture(t, "1_song.mp3", 1000)

	req := httptest.NewRequest(http.MethodGet, "/stream/"+string(id), nil)
	w := brokenWriter{httptest.NewRecorder()}

	assert.NoError(t, s.Serve(w, req, id))
	assert.Equal(t, http.StatusOK, w.Code)
}
