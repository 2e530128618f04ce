package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// localStorage writes blobs below a directory that the HTTP server exposes
// read-only (the "public disk").
type localStorage struct {
	root      string
	publicURL string
}

func NewLocalStorage(root, publicURL string) (ImageStorage, error) {
	if root == "" {
		return nil, fmt.Errorf("local storage root is empty")
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage root: %w", err)
	}

	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}

	return &localStorage{root: abs, publicURL: strings.TrimRight(publicURL, "/")}, nil
}

func (s *localStorage) UploadImage(ctx context.Context, r io.Reader, folder, fileName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	rel := path.Join(folder, uuid.NewString()+strings.ToLower(filepath.Ext(fileName)))
	full, err := s.resolve(rel)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("failed to create folder: %w", err)
	}

	f, err := os.OpenFile(full, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		_ = os.Remove(full)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(full)
		return "", fmt.Errorf("failed to close file: %w", err)
	}

	return rel, nil
}

func (s *localStorage) DeleteImage(ctx context.Context, rel string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	full, err := s.resolve(rel)
	if err != nil {
		return err
	}

	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (s *localStorage) URL(rel string) string {
	return s.publicURL + "/" + strings.TrimLeft(rel, "/")
}

// resolve maps a stored path onto the filesystem, refusing anything that
// escapes the root.
func (s *localStorage) resolve(rel string) (string, error) {
	clean := path.Clean("/" + rel)
	if clean == "/" {
		return "", fmt.Errorf("invalid storage path %q", rel)
	}

	full := filepath.Join(s.root, filepath.FromSlash(clean))
	if !strings.HasPrefix(full, s.root+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid storage path %q", rel)
	}
	return full, nil
}
