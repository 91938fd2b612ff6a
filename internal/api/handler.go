// Package api exposes the broadcast controller over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"radio-broadcast/internal/broadcast"
	"radio-broadcast/internal/media"
	"radio-broadcast/internal/platform/apperr"
	"radio-broadcast/internal/platform/metrics"
	"radio-broadcast/internal/session"
	"radio-broadcast/internal/storage"
	"radio-broadcast/internal/track"
)

// Deps are the collaborators a Handler needs. Metrics and Throttle may be nil.
type Deps struct {
	Station        *broadcast.Station
	Sessions       *session.Store
	Accounts       *session.Accounts
	Throttle       *session.Throttle
	Tracks         *track.Registry
	Disk           *storage.Disk
	Media          *media.Server
	Live           http.Handler
	Log            *slog.Logger
	Metrics        *metrics.Metrics
	MaxUploadBytes int64
}

// Handler serves the moderator and listener endpoints.
type Handler struct {
	station   *broadcast.Station
	sessions  *session.Store
	accounts  *session.Accounts
	throttle  *session.Throttle
	tracks    *track.Registry
	disk      *storage.Disk
	media     *media.Server
	live      http.Handler
	log       *slog.Logger
	metrics   *metrics.Metrics
	maxUpload int64
}

// NewHandler returns a Handler wired to d.
func NewHandler(d Deps) *Handler {
	return &Handler{
		station:   d.Station,
		sessions:  d.Sessions,
		accounts:  d.Accounts,
		throttle:  d.Throttle,
		tracks:    d.Tracks,
		disk:      d.Disk,
		media:     d.Media,
		live:      d.Live,
		log:       d.Log,
		metrics:   d.Metrics,
		maxUpload: d.MaxUploadBytes,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token    string       `json:"token"`
	Role     session.Role `json:"role"`
	Username string       `json:"username"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

type idResponse struct {
	OK bool   `json:"ok"`
	ID string `json:"id"`
}

type advanceResponse struct {
	OK    bool                  `json:"ok"`
	Empty bool                  `json:"empty,omitempty"`
	Item  *broadcast.PublicItem `json:"item,omitempty"`
}

type removeResponse struct {
	OK      bool `json:"ok"`
	Removed bool `json:"removed"`
}

// Health handles GET /healthz.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Login handles POST /login. Body: {"username": "...", "password": "..."}.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if h.throttle != nil && !h.throttle.Allow(clientIP(r)) {
		apperr.Write(w, h.log, apperr.TooManyRequests("too many login attempts"))
		return
	}

	var req loginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxFieldBytes)).Decode(&req); err != nil {
		apperr.Write(w, h.log, apperr.Invalid("malformed login body"))
		return
	}
	if req.Username == "" || req.Password == "" {
		apperr.Write(w, h.log, apperr.Invalid("username and password are required"))
		return
	}

	name, role, ok := h.accounts.Authenticate(req.Username, req.Password)
	if !ok {
		h.log.Info("login failed", slog.String("username", req.Username), slog.String("remote_ip", clientIP(r)))
		apperr.Write(w, h.log, apperr.Unauthorized("invalid username or password"))
		return
	}

	token, err := h.sessions.Create(name, role)
	if err != nil {
		apperr.Write(w, h.log, apperr.Internal("create session", err))
		return
	}
	if role == session.RoleModerator {
		h.station.ModeratorLogin()
	}

	h.log.Info("login", slog.String("username", name), slog.String("role", string(role)))
	writeJSON(w, http.StatusOK, loginResponse{Token: token, Role: role, Username: name})
}

// Logout handles POST /logout. A moderator logout takes the station offline.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFrom(r.Context())
	if sess.IsModerator() {
		h.station.ModeratorLogout()
	}
	h.sessions.Revoke(sess.Token)

	h.log.Info("logout", slog.String("username", sess.Identity), slog.String("role", string(sess.Role)))
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

// State handles GET /state.
func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.station.PublicSnapshot())
}

// Upload handles POST /upload: multipart "audio" file plus optional "title".
// The track is appended to the queue.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	f, err := h.readForm(w, r)
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	if f.file == nil {
		apperr.Write(w, h.log, apperr.Invalid("no audio file"))
		return
	}

	item, err := h.registerAudio(f)
	if err != nil {
		h.discard(f)
		apperr.Write(w, h.log, err)
		return
	}
	if err := h.station.Enqueue(item); err != nil {
		apperr.Write(w, h.log, itemError(err))
		return
	}

	h.metrics.IncUploads()
	h.log.Info("track queued",
		slog.String("item_id", item.ID),
		slog.String("name", item.Name),
		slog.Int64("bytes", f.file.Size))
	writeJSON(w, http.StatusOK, idResponse{OK: true, ID: item.ID})
}

// QueueText handles POST /queue/text. Body: {"text": "..."}.
func (h *Handler) QueueText(w http.ResponseWriter, r *http.Request) {
	f, err := h.readForm(w, r)
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}
	h.discard(f)

	item, err := broadcast.NewText(f.value("text"))
	if err != nil {
		apperr.Write(w, h.log, itemError(err))
		return
	}
	if err := h.station.Enqueue(item); err != nil {
		apperr.Write(w, h.log, itemError(err))
		return
	}

	h.log.Info("text queued", slog.String("item_id", item.ID), slog.String("name", item.Name))
	writeJSON(w, http.StatusOK, idResponse{OK: true, ID: item.ID})
}

// PlayNow handles POST /play-now. Field "type" selects "audio" (multipart
// "audio" file, optional "title") or "text" ("text" field).
func (h *Handler) PlayNow(w http.ResponseWriter, r *http.Request) {
	f, err := h.readForm(w, r)
	if err != nil {
		apperr.Write(w, h.log, err)
		return
	}

	var item broadcast.Item
	switch broadcast.Kind(f.value("type")) {
	case broadcast.KindAudio:
		if f.file == nil {
			apperr.Write(w, h.log, apperr.Invalid("no audio file"))
			return
		}
		a, err := h.registerAudio(f)
		if err != nil {
			h.discard(f)
			apperr.Write(w, h.log, err)
			return
		}
		h.metrics.IncUploads()
		item = a
	case broadcast.KindText:
		h.discard(f)
		t, err := broadcast.NewText(f.value("text"))
		if err != nil {
			apperr.Write(w, h.log, itemError(err))
			return
		}
		item = t
	default:
		h.discard(f)
		apperr.Write(w, h.log, apperr.Invalid("type must be audio or text"))
		return
	}

	if err := h.station.PlayNow(item); err != nil {
		apperr.Write(w, h.log, itemError(err))
		return
	}

	h.log.Info("playing now",
		slog.String("item_id", item.ItemID()),
		slog.String("type", string(item.Kind())),
		slog.String("name", item.DisplayName()))
	writeJSON(w, http.StatusOK, idResponse{OK: true, ID: item.ItemID()})
}

// Next handles POST /next.
func (h *Handler) Next(w http.ResponseWriter, r *http.Request) {
	h.advance(w, "next")
}

// TrackEnded handles POST /track-ended, the moderator client's end-of-track signal.
func (h *Handler) TrackEnded(w http.ResponseWriter, r *http.Request) {
	h.advance(w, "track_ended")
}

func (h *Handler) advance(w http.ResponseWriter, cause string) {
	item, ok := h.station.Advance()
	if !ok {
		h.log.Info("queue empty", slog.String("cause", cause))
		writeJSON(w, http.StatusOK, advanceResponse{OK: true, Empty: true})
		return
	}

	pub := broadcast.PublicItemOf(item)
	h.log.Info("advanced",
		slog.String("cause", cause),
		slog.String("item_id", pub.ID),
		slog.String("type", string(pub.Type)))
	writeJSON(w, http.StatusOK, advanceResponse{OK: true, Item: &pub})
}

// Stop handles POST /stop.
func (h *Handler) Stop(w http.ResponseWriter, r *http.Request) {
	h.station.Stop()
	h.log.Info("stopped")
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

// RemoveQueued handles DELETE /queue/{id}.
func (h *Handler) RemoveQueued(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		apperr.Write(w, h.log, apperr.Invalid("missing id"))
		return
	}

	removed := h.station.Remove(id)
	h.log.Info("queue item removed", slog.String("item_id", id), slog.Bool("found", removed))
	writeJSON(w, http.StatusOK, removeResponse{OK: true, Removed: removed})
}

// Stream handles GET and HEAD /stream/{id}.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	id := track.ID(chi.URLParam(r, "id"))
	if err := h.media.Serve(w, r, id); err != nil {
		apperr.Write(w, h.log, err)
	}
}

// registerAudio records the stored file in the track registry and builds the
// queue item for it.
func (h *Handler) registerAudio(f *form) (broadcast.Audio, error) {
	id := h.tracks.Register(f.file.Path)
	item, err := broadcast.NewAudio(id, f.file.Filename, f.value("title"), f.origName)
	if err != nil {
		return broadcast.Audio{}, itemError(err)
	}
	return item, nil
}

func itemError(err error) error {
	switch {
	case errors.Is(err, broadcast.ErrEmptyText):
		return apperr.Invalid("text is empty")
	case errors.Is(err, broadcast.ErrNoTrack), errors.Is(err, broadcast.ErrNoItem):
		return apperr.Invalid("missing audio")
	default:
		return err
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
