package repositories

import (
	"context"
	"fmt"
)

// BlacklistFile records sha256 in the blacklist (no-op if already present)
// and hides every File row with that hash, regardless of which board(s)
// reference it.
func (s *Store) BlacklistFile(ctx context.Context, sha256, reason string) (blacklisted bool, filesHidden int64, err error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO file_blacklist (sha256, reason) VALUES ($1, $2)
		ON CONFLICT (sha256) DO NOTHING
	`, sha256, reason)
	if err != nil {
		return false, 0, fmt.Errorf("repositories: blacklist file %s: %w", sha256, err)
	}
	n, _ := res.RowsAffected()

	hideRes, err := s.db.ExecContext(ctx, `UPDATE files SET hidden = true WHERE sha256 = $1`, sha256)
	if err != nil {
		return false, 0, fmt.Errorf("repositories: hide blacklisted file %s: %w", sha256, err)
	}
	hidden, _ := hideRes.RowsAffected()
	return n > 0, hidden, nil
}

// UnblacklistFile is the inverse of BlacklistFile.
func (s *Store) UnblacklistFile(ctx context.Context, sha256 string) (removed bool, filesShown int64, err error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM file_blacklist WHERE sha256 = $1`, sha256)
	if err != nil {
		return false, 0, fmt.Errorf("repositories: unblacklist file %s: %w", sha256, err)
	}
	n, _ := res.RowsAffected()

	showRes, err := s.db.ExecContext(ctx, `UPDATE files SET hidden = false WHERE sha256 = $1`, sha256)
	if err != nil {
		return false, 0, fmt.Errorf("repositories: unhide file %s: %w", sha256, err)
	}
	shown, _ := showRes.RowsAffected()
	return n > 0, shown, nil
}

func (s *Store) IsFileBlacklisted(ctx context.Context, sha256 string) (bool, error) {
	var n int
	err := s.db.GetContext(ctx, &n, `SELECT count(*) FROM file_blacklist WHERE sha256 = $1`, sha256)
	if err != nil {
		return false, fmt.Errorf("repositories: is file blacklisted %s: %w", sha256, err)
	}
	return n > 0, nil
}
