// Package blobstore implements the content-addressed blob store from
// spec.md §4.2: the key of a blob is the hex SHA-256 of its bytes, and
// two namespaces (full, thumbnail) are partitioned by a 2-char shard of
// the hash. The filesystem and S3/R2 backends are interchangeable behind
// the Store interface; the archival pipeline depends only on the
// interface, never on which one is configured.
package blobstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// ErrNotFound is returned by Get, and by LocalStore.Delete, when the key
// does not exist. S3Store.Delete reports success for a missing key.
var ErrNotFound = errors.New("blobstore: not found")

// Store is the two-operation contract the archival pipeline depends on,
// plus Get for the read-side (spec.md §1, §4.2).
type Store interface {
	// Put hashes data and writes it under the content-addressed key,
	// returning the hex sha256. Writing the same hash twice is a no-op
	// beyond the first write — the hash guarantees identity.
	Put(ctx context.Context, data []byte, ext string, isThumb bool) (sha256Hex string, err error)
	Delete(ctx context.Context, sha256Hex, ext string, isThumb bool) error
	Get(ctx context.Context, sha256Hex, ext string, isThumb bool) ([]byte, error)
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Shard returns the 2-char filesystem/key-prefix shard for a hex hash.
// Callers must pass a hash of at least 2 hex chars; this is only ever
// called with a just-computed or already-validated sha256 hex string.
func Shard(sha256Hex string) string {
	if len(sha256Hex) < 2 {
		return "00"
	}
	return sha256Hex[:2]
}

func namespace(isThumb bool) string {
	if isThumb {
		return "thumbnail"
	}
	return "full"
}
