package repositories

import (
	"context"
	"fmt"
)

// GetStoredFiles returns the count of non-thumbnail file rows.
func (s *Store) GetStoredFiles(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.GetContext(ctx, &n, `SELECT count(*) FROM files WHERE is_thumbnail = false`); err != nil {
		return 0, fmt.Errorf("repositories: get stored files: %w", err)
	}
	return n, nil
}

// GetStoredThumbnails returns the count of thumbnail file rows.
func (s *Store) GetStoredThumbnails(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.GetContext(ctx, &n, `SELECT count(*) FROM files WHERE is_thumbnail = true`); err != nil {
		return 0, fmt.Errorf("repositories: get stored thumbnails: %w", err)
	}
	return n, nil
}

// GetMissingThumbnails counts posts with an attachment but no linked
// thumbnail yet — a health signal for the metrics-snapshot cycle.
func (s *Store) GetMissingThumbnails(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.GetContext(ctx, &n, `
		SELECT count(*) FROM posts
		LEFT JOIN posts_files ON posts_files.post_id = posts.post_id
		WHERE posts_files.thumbnail_id IS NULL
		AND posts.tim != 0 AND posts.filedeleted = false AND posts.deleted_on = 0
	`)
	if err != nil {
		return 0, fmt.Errorf("repositories: get missing thumbnails: %w", err)
	}
	return n, nil
}
