package models

// ThreadJobInfo is what the Board Scanner knows about a thread before it
// schedules a backlog row: the bits it read off threads.json/archive.json.
type ThreadJobInfo struct {
	Board        string
	No           int64
	LastModified int64
	Replies      int
	Page         int
}

// ThreadJob is a persisted thread-fetch backlog row.
type ThreadJob struct {
	ID           int64  `db:"id"`
	Board        string `db:"board"`
	No           int64  `db:"no"`
	LastModified int64  `db:"last_modified"`
	Replies      int    `db:"replies"`
	Page         int    `db:"page"`
}

// ImageJobInfo is what the Thread Worker knows about an attachment before
// it schedules an image backlog row.
type ImageJobInfo struct {
	Board         string
	No            int64
	URL           string
	ThumbnailURL  string
	Ext           string
	Page          int
	FileSHA256    string
	ThumbSHA256   string
}

// ImageJob is a persisted image-fetch backlog row.
type ImageJob struct {
	ID               int64  `db:"id"`
	Board            string `db:"board"`
	No               int64  `db:"no"`
	URL              string `db:"url"`
	ThumbnailURL     string `db:"thumbnail_url"`
	Ext              string `db:"ext"`
	Page             int    `db:"page"`
	FileSHA256       string `db:"file_sha256"`
	ThumbnailSHA256  string `db:"thumbnail_sha256"`
}

// ImageBackfillPage is the priority page stamped on jobs created by
// schedule_missing_full_files: higher priority than archive-grade (page 0)
// threads, lower than live scraping, so backfill doesn't starve the scanner.
const ImageBackfillPage = 5

// ArchivePage is the priority page used for archived-thread rescans: they
// are not about to disappear imminently, so they sort last.
const ArchivePage = 0
