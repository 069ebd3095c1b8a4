// Package repositories is the Persistence Layer (spec.md C3): the
// transactional store for boards, posts, files, the post/file join table,
// the thread/image backlogs, and the file blacklist. Every operation here
// is expected to be atomic at the single-statement level; multi-row flows
// like purge are deliberately not wrapped in one transaction (spec.md §4.3).
package repositories

import (
	"database/sql"
	"errors"
	"log/slog"

	"github.com/reasv/board-archiver/internal/database"
	"github.com/reasv/board-archiver/internal/dedup"
)

// Store is the persistence layer, backed by Postgres and the process-wide
// Dedup Cache. The cache is consulted before any write that spec.md marks
// as a dedup point (insert_posts, insert_thread_job).
type Store struct {
	db     *database.DB
	cache  *dedup.Cache
	logger *slog.Logger
}

func New(db *database.DB, cache *dedup.Cache, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, cache: cache, logger: logger}
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
