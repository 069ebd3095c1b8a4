package models

// Board is an enabled image board identified by its short upstream name
// (e.g. "g", "a"). Flags are admin-controlled and gate scanner/worker
// behavior; see archiver.Supervisor.SetBoard.
type Board struct {
	Name               string `db:"name" json:"name"`
	ArchiveEnabled     bool   `db:"archive" json:"archive_enabled"`
	FullImagesEnabled  bool   `db:"full_images" json:"full_images_enabled"`
	SearchEnabled      bool   `db:"enable_search" json:"search_enabled"`
}

// CanArchive reports whether the scanner/worker pools should process this board.
func (b Board) CanArchive() bool {
	return b.ArchiveEnabled
}

// IsSearchEnabled reports whether a read-side search API should expose this
// board. No search query logic lives in this module; the flag is stored
// and surfaced so a future read API can gate on it.
func (b Board) IsSearchEnabled() bool {
	return b.SearchEnabled
}
