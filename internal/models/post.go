package models

// Post is a single board post, uniquely identified by (Board, No).
// Field names mirror the upstream JSON API closely, matching the
// vocabulary archive operators already use.
type Post struct {
	PostID int64 `db:"post_id" json:"post_id"`

	Board string `db:"board" json:"board"`
	No    int64  `db:"no" json:"no"`
	Resto int64  `db:"resto" json:"resto"` // 0 => this post is the OP

	Time         int64 `db:"time" json:"time"`
	LastModified int64 `db:"last_modified" json:"last_modified"`
	ArchivedOn   int64 `db:"archived_on" json:"archived_on"`
	DeletedOn    int64 `db:"deleted_on" json:"deleted_on"`

	Name    string `db:"name" json:"name"`
	Sub     string `db:"sub" json:"sub"`
	Com     string `db:"com" json:"com"`
	Filename string `db:"filename" json:"filename"`
	Ext     string `db:"ext" json:"ext"`
	Trip    string `db:"trip" json:"trip"`
	ID      string `db:"poster_id" json:"id"`
	Country string `db:"country" json:"country"`
	CountryName string `db:"country_name" json:"country_name"`

	Replies   int `db:"replies" json:"replies"`
	Images    int `db:"images" json:"images"`
	UniqueIPs int `db:"unique_ips" json:"unique_ips"`

	Sticky     bool `db:"sticky" json:"sticky"`
	Closed     bool `db:"closed" json:"closed"`
	Archived   bool `db:"archived" json:"archived"`
	FileDeleted bool `db:"filedeleted" json:"filedeleted"`
	Spoiler    bool `db:"spoiler" json:"spoiler"`
	BumpLimit  bool `db:"bumplimit" json:"bumplimit"`
	ImageLimit bool `db:"imagelimit" json:"imagelimit"`
	CustomSpoiler int `db:"custom_spoiler" json:"custom_spoiler"`

	// Upstream image attachment descriptor. Tim is the upstream file
	// timestamp-id; zero means this post has no attachment.
	Tim   int64 `db:"tim" json:"tim"`
	MD5   string `db:"md5" json:"md5"`
	Fsize int64 `db:"fsize" json:"fsize"`
	W     int   `db:"w" json:"w"`
	H     int   `db:"h" json:"h"`
	TnW   int   `db:"tn_w" json:"tn_w"`
	TnH   int   `db:"tn_h" json:"tn_h"`

	PostHidden bool `db:"post_hidden" json:"post_hidden"`
	ComHidden  bool `db:"com_hidden" json:"com_hidden"`
}

// IsOP reports whether this post opens its thread.
func (p Post) IsOP() bool {
	return p.Resto == 0
}

// ThreadNo returns the post-number of the thread this post belongs to.
func (p Post) ThreadNo() int64 {
	if p.IsOP() {
		return p.No
	}
	return p.Resto
}

// HasAttachment reports whether the post references an upstream image/file.
func (p Post) HasAttachment() bool {
	return p.Tim != 0
}

// MutablePostFields is the fixed whitelist of columns an upsert is allowed
// to overwrite on conflict. This list is policy, not incidental: fields
// outside it (e.g. Time) are frozen at first insert. Copy verbatim; do not
// grow or shrink without re-reading spec.md §4.3 and §9.
var MutablePostFields = []string{
	"closed", "sticky", "com", "filedeleted", "spoiler", "custom_spoiler",
	"replies", "images", "bumplimit", "imagelimit", "archived",
	"archived_on", "last_modified", "deleted_on",
}
