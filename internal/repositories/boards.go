package repositories

import (
	"context"
	"fmt"

	"github.com/reasv/board-archiver/internal/models"
)

// UpsertBoard inserts or replaces a board's flags, returning the resulting row.
func (s *Store) UpsertBoard(ctx context.Context, board models.Board) (models.Board, error) {
	var out models.Board
	err := s.db.GetContext(ctx, &out, `
		INSERT INTO boards (name, full_images, archive, enable_search)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO UPDATE SET
			full_images = $2,
			archive = $3,
			enable_search = $4
		RETURNING *
	`, board.Name, board.FullImagesEnabled, board.ArchiveEnabled, board.SearchEnabled)
	if err != nil {
		return models.Board{}, fmt.Errorf("repositories: upsert board %s: %w", board.Name, err)
	}
	return out, nil
}

func (s *Store) GetAllBoards(ctx context.Context) ([]models.Board, error) {
	var boards []models.Board
	if err := s.db.SelectContext(ctx, &boards, `SELECT * FROM boards ORDER BY name ASC`); err != nil {
		return nil, fmt.Errorf("repositories: get all boards: %w", err)
	}
	return boards, nil
}

// GetBoard returns (nil, nil) if the board does not exist.
func (s *Store) GetBoard(ctx context.Context, name string) (*models.Board, error) {
	var b models.Board
	err := s.db.GetContext(ctx, &b, `SELECT * FROM boards WHERE name = $1`, name)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("repositories: get board %s: %w", name, err)
	}
	return &b, nil
}

func (s *Store) DeleteBoard(ctx context.Context, name string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM boards WHERE name = $1`, name)
	if err != nil {
		return 0, fmt.Errorf("repositories: delete board %s: %w", name, err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
