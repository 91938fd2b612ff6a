// Package media delivers stored audio to listeners with single byte-range
// support so players can seek and resume.
package media

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"radio-broadcast/internal/platform/apperr"
	"radio-broadcast/internal/platform/metrics"
	"radio-broadcast/internal/track"
)

// Resolver finds where a track's bytes live.
type Resolver interface {
	Resolve(id track.ID) (string, bool)
}

// Server streams tracks. It holds no locks of its own; every request reads
// its own file handle.
type Server struct {
	tracks  Resolver
	log     *slog.Logger
	metrics *metrics.Metrics
}

// NewServer returns a Server resolving ids through tracks. Metrics may be nil.
func NewServer(tracks Resolver, log *slog.Logger, m *metrics.Metrics) *Server {
	return &Server{tracks: tracks, log: log, metrics: m}
}

// Serve writes track id to w, honoring the request's Range header. Errors are
// returned only while nothing has been written; a failure after the headers
// went out is logged and ends the response early.
func (s *Server) Serve(w http.ResponseWriter, r *http.Request, id track.ID) error {
	loc, ok := s.tracks.Resolve(id)
	if !ok {
		return apperr.NotFound("track not found")
	}

	f, err := os.Open(loc)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return apperr.NotFound("track file missing")
		}
		return apperr.Internal("open track", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return apperr.Internal("stat track", err)
	}
	if !info.Mode().IsRegular() {
		return apperr.NotFound("track file missing")
	}
	size := info.Size()

	h := w.Header()
	h.Set("Accept-Ranges", "bytes")
	h.Set("Cache-Control", "no-cache")

	rng, partial, err := ParseRange(r.Header.Get("Range"), size)
	if err != nil {
		h.Set("Content-Range", fmt.Sprintf("bytes */%d", size))
		return apperr.RangeNotSatisfiable(fmt.Sprintf("range outside 0-%d", size))
	}

	status, start, length := http.StatusOK, int64(0), size
	if partial {
		status, start, length = http.StatusPartialContent, rng.Start, rng.Length()
		h.Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", rng.Start, rng.End, size))
	}
	h.Set("Content-Type", ContentType(loc))
	h.Set("Content-Length", strconv.FormatInt(length, 10))
	w.WriteHeader(status)

	if r.Method == http.MethodHead {
		return nil
	}

	n, err := io.CopyN(w, io.NewSectionReader(f, start, length), length)
	s.metrics.AddStreamBytes(n)
	if err != nil {
		s.metrics.IncStreamFailures()
		s.log.Debug("stream interrupted",
			slog.String("track_id", string(id)),
			slog.Int64("sent", n),
			slog.Int64("want", length),
			slog.String("error", err.Error()))
	}
	return nil
}
