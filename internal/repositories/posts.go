package repositories

import (
	"context"
	"fmt"

	"github.com/lib/pq"

	"github.com/reasv/board-archiver/internal/models"
)

// GetPost returns (nil, nil) if no such (board, no) row exists.
func (s *Store) GetPost(ctx context.Context, board string, no int64) (*models.Post, error) {
	var p models.Post
	err := s.db.GetContext(ctx, &p, `SELECT * FROM posts WHERE board = $1 AND no = $2`, board, no)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("repositories: get post /%s/%d: %w", board, no, err)
	}
	return &p, nil
}

// postDedupFields mirrors get_post_hash from the original implementation:
// hash every field except post_id, the two file hashes (those move through
// set_post_files, not insert_posts), and — for replies only — last_modified,
// since upstream bumps last_modified on a thread regardless of which post
// changed. OPs always accept a last_modified-only change (spec.md §3).
func postDedupFields(p models.Post) []string {
	lastModified := p.LastModified
	if !p.IsOP() {
		lastModified = 0
	}
	return []string{
		p.Board, int64Str(p.No), int64Str(p.Resto),
		int64Str(p.Time), int64Str(lastModified), int64Str(p.ArchivedOn), int64Str(p.DeletedOn),
		p.Name, p.Sub, p.Com, p.Filename, p.Ext, p.Trip, p.ID, p.Country, p.CountryName,
		int64Str(int64(p.Replies)), int64Str(int64(p.Images)), int64Str(int64(p.UniqueIPs)),
		boolStr(p.Sticky), boolStr(p.Closed), boolStr(p.Archived), boolStr(p.FileDeleted),
		boolStr(p.Spoiler), boolStr(p.BumpLimit), boolStr(p.ImageLimit), int64Str(int64(p.CustomSpoiler)),
		int64Str(p.Tim), p.MD5, int64Str(p.Fsize),
		int64Str(int64(p.W)), int64Str(int64(p.H)), int64Str(int64(p.TnW)), int64Str(int64(p.TnH)),
		boolStr(p.PostHidden), boolStr(p.ComHidden),
	}
}

func boolStr(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func int64Str(n int64) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// InsertPosts upserts each post, consulting the Dedup Cache first, and
// returns only the posts that were actually written (new or changed) —
// callers use this to decide which posts need a follow-up image job.
// Mirrors insert_posts / get_post_hash from the original implementation
// and the upsert contract in spec.md §4.3.
func (s *Store) InsertPosts(ctx context.Context, entries []models.Post) ([]models.Post, error) {
	var written []models.Post
	for _, entry := range entries {
		dedupFields := postDedupFields(entry)
		if s.cache.HasSeenPost(dedupFields...) {
			continue
		}

		_, err := s.db.ExecContext(ctx, `
			INSERT INTO posts (
				board, no, resto, sticky, closed, time, name, trip, poster_id,
				country, country_name, sub, com, tim, filename, ext, fsize, md5,
				w, h, tn_w, tn_h, filedeleted, spoiler, custom_spoiler,
				replies, images, bumplimit, imagelimit, unique_ips,
				archived, archived_on, last_modified, deleted_on,
				post_hidden, com_hidden
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, $9,
				$10, $11, $12, $13, $14, $15, $16, $17, $18,
				$19, $20, $21, $22, $23, $24, $25,
				$26, $27, $28, $29, $30,
				$31, $32, $33, $34,
				$35, $36
			)
			ON CONFLICT (board, no) DO UPDATE SET
				closed = $5,
				sticky = $4,
				com = $13,
				filedeleted = $23,
				spoiler = $24,
				custom_spoiler = $25,
				replies = $26,
				images = $27,
				bumplimit = $28,
				imagelimit = $29,
				unique_ips = CASE WHEN posts.unique_ips < $30 THEN $30 ELSE posts.unique_ips END,
				archived = $31,
				archived_on = $32,
				last_modified = $33,
				deleted_on = $34
			WHERE posts.board = $1 AND posts.no = $2
		`,
			entry.Board, entry.No, entry.Resto, entry.Sticky, entry.Closed, entry.Time, entry.Name, entry.Trip, entry.ID,
			entry.Country, entry.CountryName, entry.Sub, entry.Com, entry.Tim, entry.Filename, entry.Ext, entry.Fsize, entry.MD5,
			entry.W, entry.H, entry.TnW, entry.TnH, entry.FileDeleted, entry.Spoiler, entry.CustomSpoiler,
			entry.Replies, entry.Images, entry.BumpLimit, entry.ImageLimit, entry.UniqueIPs,
			entry.Archived, entry.ArchivedOn, entry.LastModified, entry.DeletedOn,
			entry.PostHidden, entry.ComHidden,
		)
		if err != nil {
			return written, fmt.Errorf("repositories: insert post /%s/%d: %w", entry.Board, entry.No, err)
		}
		s.cache.MarkPostSeen(dedupFields...)

		got, err := s.GetPost(ctx, entry.Board, entry.No)
		if err != nil {
			return written, err
		}
		if got != nil {
			written = append(written, *got)
		}
	}
	return written, nil
}

// SetMissingPostsDeleted flips deleted_on on replies (resto = threadNo) that
// are absent from currentNos — the in-thread deletion branch. The OP is
// deliberately excluded: an absent OP means the whole thread 404'd, which
// is handled separately by SetPostDeleted (spec.md §9 Open Question).
func (s *Store) SetMissingPostsDeleted(ctx context.Context, board string, threadNo int64, currentNos []int64, deletedTime int64) ([]models.Post, error) {
	var posts []models.Post
	err := s.db.SelectContext(ctx, &posts, `
		UPDATE posts
		SET deleted_on = $1
		WHERE board = $2 AND resto = $3 AND deleted_on = 0 AND no != ALL($4)
		RETURNING *
	`, deletedTime, board, threadNo, pq.Array(currentNos))
	if err != nil {
		return nil, fmt.Errorf("repositories: set missing posts deleted /%s/%d: %w", board, threadNo, err)
	}
	return posts, nil
}

// SetPostDeleted marks a single post (the OP, when its thread 404s) deleted.
func (s *Store) SetPostDeleted(ctx context.Context, board string, no int64, deletedTime int64) (*models.Post, error) {
	var p models.Post
	err := s.db.GetContext(ctx, &p, `
		UPDATE posts SET deleted_on = $1 WHERE board = $2 AND no = $3
		RETURNING *
	`, deletedTime, board, no)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("repositories: set post deleted /%s/%d: %w", board, no, err)
	}
	return &p, nil
}

// SetPostFiles inserts files rows if absent (unique by sha256) then upserts
// the (post_id, idx=0, file_id, thumbnail_id) join row, updating only the
// side that was just populated. An empty sha256 (upstream 404 on that side)
// is a no-op for that side, per spec.md §4.7.
func (s *Store) SetPostFiles(ctx context.Context, board string, no int64, fileSHA256, fileExt, thumbnailSHA256 string) error {
	var postID int64
	err := s.db.GetContext(ctx, &postID, `SELECT post_id FROM posts WHERE board = $1 AND no = $2`, board, no)
	if err != nil {
		if isNoRows(err) {
			return nil
		}
		return fmt.Errorf("repositories: set post files /%s/%d: lookup post: %w", board, no, err)
	}

	var fileID, thumbID *int64
	if thumbnailSHA256 != "" {
		id, err := s.ensureFileRow(ctx, thumbnailSHA256, ".jpg", true)
		if err != nil {
			return err
		}
		thumbID = &id
	}
	if fileSHA256 != "" {
		id, err := s.ensureFileRow(ctx, fileSHA256, fileExt, false)
		if err != nil {
			return err
		}
		fileID = &id
	}
	if fileID == nil && thumbID == nil {
		return nil
	}

	if fileID != nil && thumbID != nil {
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO posts_files (post_id, idx, file_id, thumbnail_id)
			VALUES ($1, 0, $2, $3)
			ON CONFLICT (post_id, idx) DO UPDATE SET file_id = $2, thumbnail_id = $3
		`, postID, fileID, thumbID)
	} else if thumbID != nil {
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO posts_files (post_id, idx, thumbnail_id, file_id)
			VALUES ($1, 0, $2, NULL)
			ON CONFLICT (post_id, idx) DO UPDATE SET thumbnail_id = $2
		`, postID, thumbID)
	} else {
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO posts_files (post_id, idx, file_id, thumbnail_id)
			VALUES ($1, 0, $2, NULL)
			ON CONFLICT (post_id, idx) DO UPDATE SET file_id = $2
		`, postID, fileID)
	}
	if err != nil {
		return fmt.Errorf("repositories: set post files /%s/%d: link: %w", board, no, err)
	}
	return nil
}

func (s *Store) ensureFileRow(ctx context.Context, sha256, ext string, isThumbnail bool) (int64, error) {
	var id int64
	err := s.db.GetContext(ctx, &id, `
		INSERT INTO files (sha256, is_thumbnail, hidden, file_ext)
		VALUES ($1, $2, false, $3)
		ON CONFLICT (sha256) DO UPDATE SET sha256 = EXCLUDED.sha256
		RETURNING file_id
	`, sha256, isThumbnail, ext)
	if err != nil {
		return 0, fmt.Errorf("repositories: ensure file row %s: %w", sha256, err)
	}
	return id, nil
}
