package repositories

import (
	"context"
	"fmt"

	"github.com/reasv/board-archiver/internal/models"
)

// PurgeBoardBacklogs deletes every thread/image backlog row for board,
// returning (threadJobsDeleted, imageJobsDeleted).
func (s *Store) PurgeBoardBacklogs(ctx context.Context, board string) (int64, int64, error) {
	threadRes, err := s.db.ExecContext(ctx, `DELETE FROM thread_backlog WHERE board = $1`, board)
	if err != nil {
		return 0, 0, fmt.Errorf("repositories: purge thread backlog /%s/: %w", board, err)
	}
	threadN, _ := threadRes.RowsAffected()

	imageRes, err := s.db.ExecContext(ctx, `DELETE FROM image_backlog WHERE board = $1`, board)
	if err != nil {
		return threadN, 0, fmt.Errorf("repositories: purge image backlog /%s/: %w", board, err)
	}
	imageN, _ := imageRes.RowsAffected()
	return threadN, imageN, nil
}

// purgeBoardPosts deletes every post row for board. Unexported: spec.md
// calls this only as a step inside PurgeBoardData, never standalone.
func (s *Store) purgeBoardPosts(ctx context.Context, board string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE board = $1`, board)
	if err != nil {
		return 0, fmt.Errorf("repositories: purge posts /%s/: %w", board, err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// PurgeBoardData deletes the board's backlogs and posts, then the board row
// itself — posts/backlog rows carry a foreign key to boards(name), so they
// must go first. It does not touch files — blob/file cleanup is the
// caller's job (Supervisor), which lists exclusive files before calling
// this and deletes them after it (posts_files rows reference files, so a
// file row cannot be deleted while this board's posts still point at it),
// re-checking exclusivity right at delete time to close the race window.
func (s *Store) PurgeBoardData(ctx context.Context, board string) (postsDeleted int64, err error) {
	if _, _, err := s.PurgeBoardBacklogs(ctx, board); err != nil {
		return 0, err
	}
	n, err := s.purgeBoardPosts(ctx, board)
	if err != nil {
		return 0, err
	}
	if _, err := s.DeleteBoard(ctx, board); err != nil {
		return n, err
	}
	return n, nil
}

// FilesExclusiveToBoard returns every non-thumbnail File referenced only by
// posts on board (full-file side of posts_files.idx=0).
func (s *Store) FilesExclusiveToBoard(ctx context.Context, board string) ([]models.File, error) {
	return s.exclusiveFiles(ctx, board, false)
}

// ThumbnailsExclusiveToBoard returns every thumbnail File referenced only by
// posts on board.
func (s *Store) ThumbnailsExclusiveToBoard(ctx context.Context, board string) ([]models.File, error) {
	return s.exclusiveFiles(ctx, board, true)
}

// exclusiveFiles returns every File referenced from board via column (either
// "file_id" or "thumbnail_id") that has no reference from any posts_files
// row belonging to a DIFFERENT board. Filtering to board in the outer query
// and then separately proving no other board's posts_files row points at the
// same file_id (via NOT EXISTS) is what makes this exclusive rather than
// merely "referenced by board" — a plain WHERE+GROUP BY on pre-filtered rows
// can never detect a reference living outside that filter.
func (s *Store) exclusiveFiles(ctx context.Context, board string, thumbnails bool) ([]models.File, error) {
	column := "file_id"
	if thumbnails {
		column = "thumbnail_id"
	}
	var files []models.File
	query := fmt.Sprintf(`
		SELECT DISTINCT f.* FROM files f
		JOIN posts_files pf ON pf.%s = f.file_id
		JOIN posts p ON p.post_id = pf.post_id
		WHERE p.board = $1
		AND NOT EXISTS (
			SELECT 1 FROM posts_files pf2
			JOIN posts p2 ON p2.post_id = pf2.post_id
			WHERE (pf2.file_id = f.file_id OR pf2.thumbnail_id = f.file_id)
			AND p2.board != $1
		)
	`, column)
	if err := s.db.SelectContext(ctx, &files, query, board); err != nil {
		return nil, fmt.Errorf("repositories: exclusive files /%s/ thumbnails=%v: %w", board, thumbnails, err)
	}
	return files, nil
}

// IsFileOnOtherBoards reports whether sha256 is still referenced by any
// post on a board other than exclude — used to re-check exclusivity
// immediately before a blob delete, closing the race spec.md §4.8 calls out.
func (s *Store) IsFileOnOtherBoards(ctx context.Context, sha256, exclude string) (bool, error) {
	var n int
	err := s.db.GetContext(ctx, &n, `
		SELECT count(*) FROM files f
		JOIN posts_files pf ON pf.file_id = f.file_id OR pf.thumbnail_id = f.file_id
		JOIN posts p ON p.post_id = pf.post_id
		WHERE f.sha256 = $1 AND p.board != $2
	`, sha256, exclude)
	if err != nil {
		return false, fmt.Errorf("repositories: is file on other boards %s: %w", sha256, err)
	}
	return n > 0, nil
}

// DeleteFile removes the file row outright (used after its blob has been
// deleted from the blob store).
func (s *Store) DeleteFile(ctx context.Context, sha256 string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM files WHERE sha256 = $1`, sha256); err != nil {
		return fmt.Errorf("repositories: delete file %s: %w", sha256, err)
	}
	return nil
}

// RemoveFullFileReferencesForBoard nulls out posts_files.file_id for every
// post on board, used by purge_board(only_full_images=true) before deleting
// the now-unreferenced full-file blobs.
func (s *Store) RemoveFullFileReferencesForBoard(ctx context.Context, board string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE posts_files SET file_id = NULL
		WHERE post_id IN (SELECT post_id FROM posts WHERE board = $1)
	`, board)
	if err != nil {
		return 0, fmt.Errorf("repositories: remove full file references /%s/: %w", board, err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
