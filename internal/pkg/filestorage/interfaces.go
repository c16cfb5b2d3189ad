package filestorage

import "io"

// FileInfo describes a stored file
type FileInfo struct {
	Name     string // Generated file name under the storage root
	Path     string // Path relative to the storage root
	URL      string // Public URL, empty when no base URL is configured
	FileSize int64
	MimeType string
}

// FileStorage stores rendered exports
type FileStorage interface {
	// Save writes data under a generated name with the given extension
	Save(data []byte, ext, mimeType string) (*FileInfo, error)

	// Open opens a stored file for reading
	Open(name string) (io.ReadCloser, error)

	// Delete removes a stored file
	Delete(name string) error
}
