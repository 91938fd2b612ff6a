package media

import (
	"errors"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrUnsatisfiable means the requested range lies outside the resource.
var ErrUnsatisfiable = errors.New("range not satisfiable")

var contentTypes = map[string]string{
	".mp3":  "audio/mpeg",
	".ogg":  "audio/ogg",
	".wav":  "audio/wav",
	".flac": "audio/flac",
	".m4a":  "audio/mp4",
	".aac":  "audio/aac",
	".opus": "audio/opus",
	".webm": "audio/webm",
}

// DefaultContentType is used for unrecognized extensions.
const DefaultContentType = "audio/mpeg"

// ContentType picks the audio MIME type from a file extension.
func ContentType(name string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	return DefaultContentType
}

// IsAudioExt reports whether the extension is in the audio table.
func IsAudioExt(name string) bool {
	_, ok := contentTypes[strings.ToLower(filepath.Ext(name))]
	return ok
}

// Range is an inclusive byte span.
type Range struct {
	Start, End int64
}

// Length returns the number of bytes covered.
func (r Range) Length() int64 { return r.End - r.Start + 1 }

// ParseRange interprets a Range header against a resource of size bytes.
// Only one "bytes=" range is honored: "a-b", "a-" and "-n" forms. The end is
// clamped to the last byte. ok is false when the header is absent, malformed
// or asks for several ranges; the whole resource should be sent then.
// ErrUnsatisfiable is returned when the range starts past the end.
func ParseRange(header string, size int64) (r Range, ok bool, err error) {
	byteSet, found := strings.CutPrefix(strings.TrimSpace(header), "bytes=")
	if !found || byteSet == "" || strings.Contains(byteSet, ",") {
		return Range{}, false, nil
	}

	first, last, found := strings.Cut(strings.TrimSpace(byteSet), "-")
	if !found {
		return Range{}, false, nil
	}
	first, last = strings.TrimSpace(first), strings.TrimSpace(last)

	if first == "" {
		// Suffix form: the final n bytes.
		n, perr := strconv.ParseInt(last, 10, 64)
		if perr != nil || n < 0 {
			return Range{}, false, nil
		}
		if n == 0 || size == 0 {
			return Range{}, false, ErrUnsatisfiable
		}
		if n > size {
			n = size
		}
		return Range{Start: size - n, End: size - 1}, true, nil
	}

	start, perr := strconv.ParseInt(first, 10, 64)
	if perr != nil || start < 0 {
		return Range{}, false, nil
	}
	end := size - 1
	if last != "" {
		e, perr := strconv.ParseInt(last, 10, 64)
		if perr != nil || e < start {
			return Range{}, false, nil
		}
		if e < end {
			end = e
		}
	}
	if start >= size {
		return Range{}, false, ErrUnsatisfiable
	}
	return Range{Start: start, End: end}, true, nil
}
