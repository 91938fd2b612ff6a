// Package storage keeps uploaded audio on local disk and purges it after a
// fixed retention window.
package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/jonboulle/clockwork"
)

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// maxNameAttempts bounds the collision retries for one upload.
const maxNameAttempts = 100

// Stored describes a file written by Save.
type Stored struct {
	Filename string // name inside the upload directory
	Path     string // absolute location
	Size     int64
}

// Disk writes uploads into a single directory.
type Disk struct {
	dir   string
	clock clockwork.Clock
}

// NewDisk creates dir if needed and returns a Disk rooted there.
func NewDisk(dir string, clock clockwork.Clock) (*Disk, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve upload dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Disk{dir: abs, clock: clock}, nil
}

// Dir returns the absolute upload directory.
func (d *Disk) Dir() string { return d.dir }

// Save copies r into a new file named <unix-ms>_<sanitized original name>.
// On any error the partial file is removed and the reader's error is returned
// unchanged so callers can detect size limits.
func (d *Disk) Save(originalName string, r io.Reader) (Stored, error) {
	base := strconv.FormatInt(d.clock.Now().UnixMilli(), 10) + "_" + SanitizeName(originalName)

	f, name, err := d.create(base)
	if err != nil {
		return Stored{}, err
	}
	path := filepath.Join(d.dir, name)

	n, copyErr := io.Copy(f, r)
	closeErr := f.Close()
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(path)
		if copyErr != nil {
			return Stored{}, copyErr
		}
		return Stored{}, fmt.Errorf("close %s: %w", name, closeErr)
	}

	return Stored{Filename: name, Path: path, Size: n}, nil
}

// Remove deletes a stored file. A file that is already gone is not an error.
func (d *Disk) Remove(s Stored) error {
	if err := os.Remove(s.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (d *Disk) create(base string) (*os.File, string, error) {
	name := base
	for i := 1; i <= maxNameAttempts; i++ {
		f, err := os.OpenFile(filepath.Join(d.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, name, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, "", fmt.Errorf("create upload file: %w", err)
		}
		name = strconv.Itoa(i) + "-" + base
	}
	return nil, "", fmt.Errorf("create upload file: too many collisions for %s", base)
}

// SanitizeName keeps the base name of an upload and replaces every character
// outside [a-zA-Z0-9._-] with an underscore.
func SanitizeName(name string) string {
	name = filepath.Base(filepath.ToSlash(name))
	if name == "." || name == "/" || name == "" {
		return "audio"
	}
	return unsafeChars.ReplaceAllString(name, "_")
}
