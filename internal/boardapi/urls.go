// Package boardapi builds the upstream JSON/image URLs the pipeline reads
// from, per spec.md §6's External Interfaces table.
package boardapi

import "fmt"

func BoardsURL(apiBase string) string {
	return fmt.Sprintf("%s/boards.json", apiBase)
}

func ThreadsURL(apiBase, board string) string {
	return fmt.Sprintf("%s/%s/threads.json", apiBase, board)
}

func ArchiveURL(apiBase, board string) string {
	return fmt.Sprintf("%s/%s/archive.json", apiBase, board)
}

func ThreadURL(apiBase, board string, no int64) string {
	return fmt.Sprintf("%s/%s/thread/%d.json", apiBase, board, no)
}

// ImageURL is the full-size attachment URL for a post's tim+ext.
func ImageURL(cdnBase, board string, tim int64, ext string) string {
	return fmt.Sprintf("%s/%s/%d%s", cdnBase, board, tim, ext)
}

// ThumbnailURL is always .jpg regardless of the post's own ext — the
// original implementation hardcodes this and spec.md §9 keeps it (treat
// thumbnails as always-JPEG; don't try to preserve the upstream MIME).
func ThumbnailURL(cdnBase, board string, tim int64) string {
	return fmt.Sprintf("%s/%s/%ds.jpg", cdnBase, board, tim)
}
