// Package storage implements the filesystem-backed image store for uploaded
// card images.
package storage

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/cardfolio/cardfolio-api/internal/metrics"
	"github.com/cardfolio/cardfolio-api/internal/core/domain"
)

const (
	cardsSubdir = "cards"
	publicBase  = "/uploads/cards/"

	// MaxImageSize is the upload ceiling for a single card image.
	MaxImageSize = 5 << 20 // 5 MB
)

// ImageStore writes card images under <root>/cards and maps stored filenames
// to the /uploads/cards/<filename> paths they are served from.
type ImageStore struct {
	root string
}

func NewImageStore(root string) *ImageStore {
	return &ImageStore{root: root}
}

// Root returns the uploads root directory, as served by the static route.
func (s *ImageStore) Root() string {
	return s.root
}

// EnsureDirectories idempotently creates the storage root and its cards
// subdirectory. Called once at startup.
func (s *ImageStore) EnsureDirectories() error {
	if err := os.MkdirAll(filepath.Join(s.root, cardsSubdir), 0o755); err != nil {
		return fmt.Errorf("create upload directories: %w", err)
	}
	return nil
}

// Save writes the image bytes to disk. Non-image content types and files over
// MaxImageSize are rejected with domain.ErrInvalidImage. The reader is capped
// so a lying Content-Length cannot push past the ceiling.
func (s *ImageStore) Save(filename string, r io.Reader, size int64, contentType string) error {
	if !strings.HasPrefix(contentType, "image/") {
		metrics.UploadsRejectedTotal.WithLabelValues("content_type").Inc()
		return fmt.Errorf("%w: only image files are allowed", domain.ErrInvalidImage)
	}
	if size > MaxImageSize {
		metrics.UploadsRejectedTotal.WithLabelValues("too_large").Inc()
		return fmt.Errorf("%w: file exceeds 5 MB limit", domain.ErrInvalidImage)
	}

	dst, err := os.Create(s.path(filename))
	if err != nil {
		return fmt.Errorf("create image file: %w", err)
	}

	written, err := io.Copy(dst, io.LimitReader(r, MaxImageSize+1))
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(s.path(filename))
		return fmt.Errorf("write image file: %w", err)
	}
	if written > MaxImageSize {
		_ = os.Remove(s.path(filename))
		metrics.UploadsRejectedTotal.WithLabelValues("too_large").Inc()
		return fmt.Errorf("%w: file exceeds 5 MB limit", domain.ErrInvalidImage)
	}
	return nil
}

// Delete removes a stored image. Best-effort: a file that is already gone is
// not an error.
func (s *ImageStore) Delete(filename string) error {
	if filename == "" {
		return nil
	}
	if err := os.Remove(s.path(filename)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete image file: %w", err)
	}
	return nil
}

// GenerateFilename derives card_<userID>_<epochMillis><ext>. Uniqueness is
// practical, not guaranteed: two uploads from the same user in the same
// millisecond would collide.
func (s *ImageStore) GenerateFilename(userID, originalName string) string {
	ext := filepath.Ext(originalName)
	return fmt.Sprintf("card_%s_%d%s", userID, time.Now().UnixMilli(), ext)
}

// PublicURL maps a stored filename to its externally served path.
func (s *ImageStore) PublicURL(filename string) string {
	return publicBase + filename
}

// FilenameFromURL is the inverse of PublicURL.
func (s *ImageStore) FilenameFromURL(url string) string {
	return path.Base(url)
}

func (s *ImageStore) path(filename string) string {
	// Strip any directory components so a crafted filename cannot escape
	// the cards directory.
	return filepath.Join(s.root, cardsSubdir, filepath.Base(filename))
}
