package blobstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// LocalStore writes blobs under <root>/images/{full|thumbnail}/<shard>/<sha256>.<ext>,
// matching the layout spec.md §6 describes.
type LocalStore struct {
	root string
}

// NewLocalStore creates a filesystem-backed Store rooted at root. The
// directory tree is created lazily, per-write.
func NewLocalStore(root string) *LocalStore {
	return &LocalStore{root: root}
}

func (s *LocalStore) path(sha256Hex, ext string, isThumb bool) string {
	return filepath.Join(s.root, "images", namespace(isThumb), Shard(sha256Hex), sha256Hex+ext)
}

// Put is never required to fsync — readers tolerate a 404 race on a blob
// that's mid-write, per spec.md §4.2's write discipline.
func (s *LocalStore) Put(ctx context.Context, data []byte, ext string, isThumb bool) (string, error) {
	hash := Hash(data)
	p := s.path(hash, ext, isThumb)

	if _, err := os.Stat(p); err == nil {
		// Same content hash already on disk; the hash guarantees identity,
		// so there is nothing to overwrite.
		return hash, nil
	}

	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", fmt.Errorf("blobstore: mkdir: %w", err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return "", fmt.Errorf("blobstore: write: %w", err)
	}
	return hash, nil
}

func (s *LocalStore) Delete(ctx context.Context, sha256Hex, ext string, isThumb bool) error {
	p := s.path(sha256Hex, ext, isThumb)
	if err := os.Remove(p); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("blobstore: remove: %w", err)
	}
	return nil
}

func (s *LocalStore) Get(ctx context.Context, sha256Hex, ext string, isThumb bool) ([]byte, error) {
	p := s.path(sha256Hex, ext, isThumb)
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("blobstore: read: %w", err)
	}
	return data, nil
}

var _ Store = (*LocalStore)(nil)
