package models

// File is a content-addressed blob row. Exactly one row exists per
// distinct sha256, reused across any number of posts via PostFile.
type File struct {
	FileID      int64  `db:"file_id" json:"file_id"`
	SHA256      string `db:"sha256" json:"sha256"`
	Ext         string `db:"file_ext" json:"ext"`
	IsThumbnail bool   `db:"is_thumbnail" json:"is_thumbnail"`
	Hidden      bool   `db:"hidden" json:"hidden"`
}

// PostFile is the join row linking a post's attachment slot to the
// full-file and/or thumbnail File rows. Either side may be nil.
type PostFile struct {
	PostID       int64  `db:"post_id" json:"post_id"`
	Idx          int    `db:"idx" json:"idx"`
	FileID       *int64 `db:"file_id" json:"file_id,omitempty"`
	ThumbnailID  *int64 `db:"thumbnail_id" json:"thumbnail_id,omitempty"`
}

// FileBlacklistEntry forces hidden=true on every File row with this hash.
// Reason is operator-supplied free text (moderation-log persistence is out
// of scope; we keep only the reason string that justified the blacklist).
type FileBlacklistEntry struct {
	SHA256 string `db:"sha256" json:"sha256"`
	Reason string `db:"reason" json:"reason"`
}
