package blobstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_blob_store.go -package=mocks knowledge-search/internal/blobstore BlobStore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"knowledge-search/internal/domain"
)

// BlobStore stores raw uploaded files by key.
type BlobStore interface {
	// Put stores data under key, replacing any existing blob.
	Put(ctx context.Context, key string, data []byte) error
	// Get returns the blob stored under key. Returns domain.ErrNotFound if there is none.
	Get(ctx context.Context, key string) ([]byte, error)
	// Delete removes the blob stored under key. Deleting a missing blob is not an error.
	Delete(ctx context.Context, key string) error
}

// Verify interface compliance
var _ BlobStore = (*LocalStore)(nil)

// LocalStore keeps blobs as files under a root directory. Keys are slash-separated relative paths.
type LocalStore struct {
	root string
}

// NewLocalStore creates a local blob store rooted at dir, creating it if needed.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create blob directory: %w", err)
	}
	return &LocalStore{root: dir}, nil
}

// Put stores data under key. The file is written to a temporary name and renamed into place.
func (s *LocalStore) Put(_ context.Context, key string, data []byte) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create blob directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".blob-*")
	if err != nil {
		return fmt.Errorf("failed to create blob: %w", err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write blob: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to store blob: %w", err)
	}
	return nil
}

// Get returns the blob stored under key.
func (s *LocalStore) Get(_ context.Context, key string) ([]byte, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read blob: %w", err)
	}
	return data, nil
}

// Delete removes the blob stored under key.
func (s *LocalStore) Delete(_ context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete blob: %w", err)
	}
	return nil
}

// path resolves key under the root, rejecting keys that would escape it.
func (s *LocalStore) path(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || !fs.ValidPath(key) {
		return "", &domain.ValidationError{Field: "storage_key", Message: fmt.Sprintf("invalid blob key %q", key)}
	}
	return filepath.Join(s.root, filepath.FromSlash(key)), nil
}

// DocumentKey returns the blob key of an uploaded file: documents/{owner}/{token}-{filename}.
// Path separators in owner or filename are replaced so the key stays three segments deep.
func DocumentKey(ownerID, token, filename string) string {
	clean := strings.NewReplacer("/", "_", "\\", "_")
	return "documents/" + clean.Replace(ownerID) + "/" + token + "-" + clean.Replace(filename)
}
