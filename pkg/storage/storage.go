package storage

import (
	"context"
	"fmt"
	"io"
)

const (
	DriverLocal      = "local"
	DriverCloudinary = "cloudinary"
)

// ImageStorage defines contract for the photo blob store.
type ImageStorage interface {
	// UploadImage stores the blob under folder and returns the stored path
	// (relative for the local driver, a secure URL for cloudinary).
	UploadImage(ctx context.Context, r io.Reader, folder, fileName string) (string, error)
	// DeleteImage removes a blob by the path UploadImage returned.
	// Deleting a blob that is already gone is not an error.
	DeleteImage(ctx context.Context, path string) error
	// URL returns a client-reachable URL for a stored path.
	URL(path string) string
}

type Options struct {
	Driver string

	PublicDir string
	PublicURL string

	CloudName    string
	APIKey       string
	APISecret    string
	UploadFolder string
}

// New builds the driver selected by opts.Driver.
func New(opts Options) (ImageStorage, error) {
	switch opts.Driver {
	case DriverCloudinary:
		return NewCloudinaryStorage(opts.CloudName, opts.APIKey, opts.APISecret, opts.UploadFolder)
	case DriverLocal, "":
		return NewLocalStorage(opts.PublicDir, opts.PublicURL)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
	}
}
