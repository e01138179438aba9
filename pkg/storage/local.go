// Package storage keeps uploaded images on local disk.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// MaxImageSize caps a single upload.
const MaxImageSize = 5 << 20

var (
	ErrUnsupportedType = errors.New("only JPG/PNG allowed")
	ErrTooLarge        = errors.New("file exceeds 5MB limit")
	ErrEmptyFile       = errors.New("no file uploaded")
)

var allowedTypes = []string{"image/jpeg", "image/png"}

type Stored struct {
	URL  string `json:"url"`
	Path string `json:"path"`
}

// LocalStorage writes files under Dir and serves them from URLPrefix.
type LocalStorage struct {
	Dir       string
	URLPrefix string
	// PublicURL is prepended to the path to build an absolute URL.
	PublicURL string
	now       func() time.Time
}

func NewLocalStorage(dir, urlPrefix, publicURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStorage{
		Dir:       dir,
		URLPrefix: strings.TrimRight(urlPrefix, "/"),
		PublicURL: strings.TrimRight(publicURL, "/"),
		now:       time.Now,
	}, nil
}

// SaveImage sniffs the content, rejects anything but JPEG/PNG, and stores
// it under a timestamped name derived from originalName.
func (s *LocalStorage) SaveImage(originalName string, r io.Reader) (*Stored, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	if len(data) > MaxImageSize {
		return nil, ErrTooLarge
	}

	mt := mimetype.Detect(data)
	if !mimetype.EqualsAny(mt.String(), allowedTypes...) {
		return nil, ErrUnsupportedType
	}

	name := s.fileName(originalName, mt.Extension())
	if err := os.WriteFile(filepath.Join(s.Dir, name), data, 0o644); err != nil {
		return nil, fmt.Errorf("write upload: %w", err)
	}

	path := s.URLPrefix + "/" + name
	return &Stored{URL: s.PublicURL + path, Path: path}, nil
}

func (s *LocalStorage) fileName(original, ext string) string {
	base := filepath.Base(original)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.ReplaceAll(base, " ", "_")
	if base == "" || base == "." || base == "/" {
		base = "image"
	}
	return fmt.Sprintf("%d-%s%s", s.now().UnixMilli(), base, ext)
}
