package ports

import "io"

// ImageStore persists uploaded card images and maps stored filenames to the
// public URLs they are served under.
type ImageStore interface {
	// Save writes the image bytes under the given filename. It rejects
	// non-image content types and files over the size ceiling with
	// domain.ErrInvalidImage.
	Save(filename string, r io.Reader, size int64, contentType string) error

	// Delete is best-effort; a missing file is not an error.
	Delete(filename string) error

	// GenerateFilename derives a practically unique name for an upload,
	// card_<userID>_<epochMillis><ext>.
	GenerateFilename(userID, originalName string) string

	// PublicURL and FilenameFromURL are inverse pure mappings between a
	// stored filename and its externally served path.
	PublicURL(filename string) string
	FilenameFromURL(url string) string
}
