package repositories

import (
	"context"
	"fmt"

	"github.com/reasv/board-archiver/internal/boardapi"
	"github.com/reasv/board-archiver/internal/models"
)

// InsertThreadJob is idempotent: if the dedup cache already has this
// fingerprint, or a post already exists with last_modified >=
// info.LastModified, it returns (nil, nil) without touching the backlog.
// Otherwise it upserts on conflict (board, no, last_modified), deletes any
// backlog rows for the same thread with a strictly lower last_modified
// (superseded by this one), and only then records the dedup fingerprint —
// marking it before the insert commits would permanently hide a job whose
// write failed. Mirrors insert_thread_job from the original implementation.
func (s *Store) InsertThreadJob(ctx context.Context, info models.ThreadJobInfo) (*models.ThreadJob, error) {
	if s.cache.HasSeenThreadJob(info.Board, info.No, info.LastModified) {
		return nil, nil
	}

	post, err := s.GetPost(ctx, info.Board, info.No)
	if err != nil {
		return nil, err
	}
	if post != nil && post.LastModified >= info.LastModified {
		return nil, nil
	}

	var job models.ThreadJob
	err = s.db.GetContext(ctx, &job, `
		INSERT INTO thread_backlog (board, no, last_modified, replies, page)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (board, no, last_modified) DO UPDATE SET
			replies = $4,
			page = $5
		RETURNING *
	`, info.Board, info.No, info.LastModified, info.Replies, info.Page)
	if err != nil {
		return nil, fmt.Errorf("repositories: insert thread job /%s/%d: %w", info.Board, info.No, err)
	}

	if _, err := s.db.ExecContext(ctx, `
		DELETE FROM thread_backlog WHERE board = $1 AND no = $2 AND last_modified < $3
	`, info.Board, info.No, info.LastModified); err != nil {
		return nil, fmt.Errorf("repositories: supersede thread jobs /%s/%d: %w", info.Board, info.No, err)
	}

	s.cache.MarkThreadJobSeen(info.Board, info.No, info.LastModified)
	return &job, nil
}

// GetThreadJobs returns up to limit jobs ordered page DESC, id ASC —
// threads about to expire soonest, dispatched first.
func (s *Store) GetThreadJobs(ctx context.Context, limit int) ([]models.ThreadJob, error) {
	var jobs []models.ThreadJob
	err := s.db.SelectContext(ctx, &jobs, `
		SELECT * FROM thread_backlog ORDER BY page DESC, id ASC LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("repositories: get thread jobs: %w", err)
	}
	return jobs, nil
}

func (s *Store) DeleteThreadJob(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM thread_backlog WHERE id = $1`, id); err != nil {
		return fmt.Errorf("repositories: delete thread job %d: %w", id, err)
	}
	return nil
}

// GetThreadBacklogSize returns the count of thread jobs at page >= minPage.
func (s *Store) GetThreadBacklogSize(ctx context.Context, minPage int) (int64, error) {
	var n int64
	err := s.db.GetContext(ctx, &n, `SELECT count(*) FROM thread_backlog WHERE page >= $1`, minPage)
	if err != nil {
		return 0, fmt.Errorf("repositories: get thread backlog size: %w", err)
	}
	return n, nil
}

// InsertImageJob upserts on conflict (board, no), updating only page — used
// by the Thread Worker Pool each time it schedules a fresh attachment job.
func (s *Store) InsertImageJob(ctx context.Context, info models.ImageJobInfo) (*models.ImageJob, error) {
	var job models.ImageJob
	err := s.db.GetContext(ctx, &job, `
		INSERT INTO image_backlog (board, no, url, thumbnail_url, ext, page, file_sha256, thumbnail_sha256)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (board, no) DO UPDATE SET page = $6
		WHERE image_backlog.board = $1 AND image_backlog.no = $2
		RETURNING *
	`, info.Board, info.No, info.URL, info.ThumbnailURL, info.Ext, info.Page, info.FileSHA256, info.ThumbSHA256)
	if err != nil {
		return nil, fmt.Errorf("repositories: insert image job /%s/%d: %w", info.Board, info.No, err)
	}
	return &job, nil
}

// GetImageJobs returns up to limit jobs ordered page DESC, id ASC.
func (s *Store) GetImageJobs(ctx context.Context, limit int) ([]models.ImageJob, error) {
	var jobs []models.ImageJob
	err := s.db.SelectContext(ctx, &jobs, `
		SELECT * FROM image_backlog ORDER BY page DESC, id ASC LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("repositories: get image jobs: %w", err)
	}
	return jobs, nil
}

func (s *Store) DeleteImageJob(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM image_backlog WHERE id = $1`, id); err != nil {
		return fmt.Errorf("repositories: delete image job %d: %w", id, err)
	}
	return nil
}

// GetImageBacklogSize returns the count of image jobs at page >= minPage.
func (s *Store) GetImageBacklogSize(ctx context.Context, minPage int) (int64, error) {
	var n int64
	err := s.db.GetContext(ctx, &n, `SELECT count(*) FROM image_backlog WHERE page >= $1`, minPage)
	if err != nil {
		return 0, fmt.Errorf("repositories: get image backlog size: %w", err)
	}
	return n, nil
}

// ScheduleMissingFullFiles finds posts on board that have a thumbnail but no
// full-file reference and enqueues image jobs for them at ImageBackfillPage
// (middle priority), used when a board flips full_images_enabled on.
// imageCDNBase is the upstream image host (e.g. "https://i.4cdn.org").
func (s *Store) ScheduleMissingFullFiles(ctx context.Context, board, imageCDNBase string) (int, error) {
	rows, err := s.db.QueryxContext(ctx, `
		SELECT posts.no, posts.tim, posts.ext, files.sha256 AS file_sha256, thumbnails.sha256 AS thumbnail_sha256
		FROM posts
		LEFT JOIN posts_files ON posts_files.post_id = posts.post_id AND posts_files.idx = 0
		LEFT JOIN files ON files.file_id = posts_files.file_id
		LEFT JOIN files AS thumbnails ON thumbnails.file_id = posts_files.thumbnail_id
		WHERE posts_files.file_id IS NULL
		AND posts.board = $1
		AND posts.tim != 0 AND posts.filedeleted = false AND posts.deleted_on = 0
	`, board)
	if err != nil {
		return 0, fmt.Errorf("repositories: schedule missing full files /%s/: %w", board, err)
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var no, tim int64
		var ext string
		var fileSHA256, thumbSHA256 *string
		if err := rows.Scan(&no, &tim, &ext, &fileSHA256, &thumbSHA256); err != nil {
			return count, fmt.Errorf("repositories: schedule missing full files /%s/: scan: %w", board, err)
		}
		info := models.ImageJobInfo{
			Board:        board,
			No:           no,
			URL:          boardapi.ImageURL(imageCDNBase, board, tim, ext),
			ThumbnailURL: boardapi.ThumbnailURL(imageCDNBase, board, tim),
			Ext:          ext,
			Page:         models.ImageBackfillPage,
			ThumbSHA256:  derefStr(thumbSHA256),
		}
		if _, err := s.InsertImageJob(ctx, info); err != nil {
			return count, err
		}
		count++
	}
	return count, rows.Err()
}

func derefStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
