package images

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store is the permanent home for relocated listing images. Nothing outside
// this package writes into the listing-image namespace.
type Store interface {
	// Put persists data under the listing's namespace and returns the
	// durable public URL.
	Put(externalID, filename string, data []byte) (string, error)
	// RemoveAll deletes every stored image for the listing. Used to clear
	// a previous run's uploads before re-relocating.
	RemoveAll(externalID string) error
}

// DiskStore keeps images on the local filesystem, served as static files by
// the HTTP layer.
type DiskStore struct {
	baseDir string
	baseURL string
}

// NewDiskStore creates a store rooted at baseDir. baseURL is the public
// prefix the HTTP layer serves baseDir under, e.g. "/images".
func NewDiskStore(baseDir, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}
	return &DiskStore{
		baseDir: baseDir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

func (s *DiskStore) Put(externalID, filename string, data []byte) (string, error) {
	dir := filepath.Join(s.baseDir, "cars", externalID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create listing directory: %w", err)
	}

	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}

	return s.baseURL + "/cars/" + externalID + "/" + filename, nil
}

func (s *DiskStore) RemoveAll(externalID string) error {
	if externalID == "" {
		return nil
	}
	return os.RemoveAll(filepath.Join(s.baseDir, "cars", externalID))
}
