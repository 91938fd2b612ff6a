package api

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"radio-broadcast/internal/media"
	"radio-broadcast/internal/platform/apperr"
	"radio-broadcast/internal/storage"
)

const (
	audioField    = "audio"
	maxFieldBytes = 64 << 10
)

// form is a parsed request body: plain fields plus at most one stored audio file.
type form struct {
	fields   map[string]string
	file     *storage.Stored
	origName string
}

func (f *form) value(key string) string { return f.fields[key] }

// readForm parses a JSON object or a multipart body. A multipart "audio" part
// is streamed straight to disk; the caller owns the stored file and must
// discard it if the request is later rejected.
func (h *Handler) readForm(w http.ResponseWriter, r *http.Request) (*form, error) {
	if r.ContentLength > h.maxUpload {
		return nil, apperr.TooLarge("upload exceeds size limit")
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	f := &form{fields: make(map[string]string)}
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mediaType {
	case "multipart/form-data":
		if err := h.readMultipart(r, f); err != nil {
			h.discard(f)
			return nil, err
		}
	case "application/json", "":
		if err := readJSON(r, f); err != nil {
			return nil, err
		}
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, bodyError(err)
		}
		for k := range r.PostForm {
			v := r.PostForm.Get(k)
			if len(v) > maxFieldBytes {
				return nil, fieldTooLarge(k)
			}
			f.fields[k] = v
		}
	default:
		return nil, apperr.Invalid("unsupported content type")
	}
	return f, nil
}

func (h *Handler) readMultipart(r *http.Request, f *form) error {
	mr, err := r.MultipartReader()
	if err != nil {
		return apperr.Invalid("malformed multipart body")
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return bodyError(err)
		}

		name := part.FormName()
		if part.FileName() == "" {
			b, err := io.ReadAll(io.LimitReader(part, maxFieldBytes+1))
			part.Close()
			if err != nil {
				return bodyError(err)
			}
			if len(b) > maxFieldBytes {
				return fieldTooLarge(name)
			}
			f.fields[name] = string(b)
			continue
		}

		if name != audioField || f.file != nil {
			_, _ = io.Copy(io.Discard, part)
			part.Close()
			continue
		}
		if !isAudioPart(part.Header.Get("Content-Type"), part.FileName()) {
			part.Close()
			return apperr.Invalid("only audio files are accepted")
		}

		src := &trackedReader{r: part}
		stored, err := h.disk.Save(part.FileName(), src)
		part.Close()
		if err != nil {
			if src.err != nil {
				return bodyError(src.err)
			}
			return apperr.Internal("store upload", err)
		}
		f.file = &stored
		f.origName = part.FileName()
	}
}

func readJSON(r *http.Request, f *form) error {
	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return bodyError(err)
	}
	for k, v := range raw {
		s, ok := v.(string)
		if !ok {
			continue
		}
		if len(s) > maxFieldBytes {
			return fieldTooLarge(k)
		}
		f.fields[k] = s
	}
	return nil
}

// fieldTooLarge rejects a form value over maxFieldBytes. Values are never cut.
func fieldTooLarge(name string) error {
	return apperr.TooLarge("field " + name + " exceeds 64 KiB")
}

func isAudioPart(contentType, filename string) bool {
	ct, _, _ := mime.ParseMediaType(contentType)
	if strings.HasPrefix(ct, "audio/") {
		return true
	}
	if ct == "" || ct == "application/octet-stream" {
		return media.IsAudioExt(filename)
	}
	return false
}

// bodyError classifies a failure while reading the request body.
func bodyError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return apperr.TooLarge("upload exceeds size limit")
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return ae
	}
	return &apperr.Error{Kind: apperr.KindInvalidInput, Message: "malformed request body", Cause: err}
}

// trackedReader remembers the first read error so storage failures can be told
// apart from a broken request body.
type trackedReader struct {
	r   io.Reader
	err error
}

func (t *trackedReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if err != nil && !errors.Is(err, io.EOF) && t.err == nil {
		t.err = err
	}
	return n, err
}

// discard removes the stored file of a rejected request.
func (h *Handler) discard(f *form) {
	if f == nil || f.file == nil {
		return
	}
	if err := h.disk.Remove(*f.file); err != nil {
		h.log.Warn("remove rejected upload", "file", f.file.Filename, "error", err)
	}
	f.file = nil
}
