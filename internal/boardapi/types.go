package boardapi

import "github.com/reasv/board-archiver/internal/models"

// BoardsResponse is the body of GET /boards.json.
type BoardsResponse struct {
	Boards []BoardInfo `json:"boards"`
}

type BoardInfo struct {
	Board string `json:"board"`
	Title string `json:"title"`
}

// ThreadsPage is one page of GET /{board}/threads.json.
type ThreadsPage struct {
	Page    int                `json:"page"`
	Threads []ThreadsPageEntry `json:"threads"`
}

type ThreadsPageEntry struct {
	No           int64 `json:"no"`
	LastModified int64 `json:"last_modified"`
	Replies      int   `json:"replies"`
}

// ThreadResponse is the body of GET /{board}/thread/{no}.json.
type ThreadResponse struct {
	Posts []PostJSON `json:"posts"`
}

// PostJSON mirrors the upstream post schema field-for-field; zero values
// for absent fields are the upstream convention (e.g. tim=0 ⇒ no attachment).
type PostJSON struct {
	No    int64 `json:"no"`
	Resto int64 `json:"resto"`

	Now  string `json:"now"`
	Time int64  `json:"time"`

	Name        string `json:"name"`
	Sub         string `json:"sub"`
	Com         string `json:"com"`
	Filename    string `json:"filename"`
	Ext         string `json:"ext"`
	Trip        string `json:"trip"`
	ID          string `json:"id"`
	Capcode     string `json:"capcode"`
	Country     string `json:"country"`
	CountryName string `json:"country_name"`

	Replies    int `json:"replies"`
	Images     int `json:"images"`
	UniqueIPs  int `json:"unique_ips"`
	BumpLimit  int `json:"bumplimit"`
	ImageLimit int `json:"imagelimit"`

	Sticky        int `json:"sticky"`
	Closed        int `json:"closed"`
	Archived      int `json:"archived"`
	ArchivedOn    int64 `json:"archived_on"`
	FileDeleted   int `json:"filedeleted"`
	Spoiler       int `json:"spoiler"`
	CustomSpoiler int `json:"custom_spoiler"`

	Tim   int64  `json:"tim"`
	MD5   string `json:"md5"`
	Fsize int64  `json:"fsize"`
	W     int    `json:"w"`
	H     int    `json:"h"`
	TnW   int    `json:"tn_w"`
	TnH   int    `json:"tn_h"`
}

// ToPost maps upstream JSON onto the persistence model. board and
// lastModified are stamped by the caller (the scan's thread-listing entry,
// not the post itself — see spec.md §4.6).
func (p PostJSON) ToPost(board string, lastModified int64) models.Post {
	return models.Post{
		Board:         board,
		No:            p.No,
		Resto:         p.Resto,
		Time:          p.Time,
		LastModified:  lastModified,
		ArchivedOn:    p.ArchivedOn,
		Name:          p.Name,
		Sub:           p.Sub,
		Com:           p.Com,
		Filename:      p.Filename,
		Ext:           p.Ext,
		Trip:          p.Trip,
		ID:            p.ID,
		Country:       p.Country,
		CountryName:   p.CountryName,
		Replies:       p.Replies,
		Images:        p.Images,
		UniqueIPs:     p.UniqueIPs,
		Sticky:        p.Sticky != 0,
		Closed:        p.Closed != 0,
		Archived:      p.Archived != 0,
		FileDeleted:   p.FileDeleted != 0,
		Spoiler:       p.Spoiler != 0,
		BumpLimit:     p.BumpLimit != 0,
		ImageLimit:    p.ImageLimit != 0,
		CustomSpoiler: p.CustomSpoiler,
		Tim:           p.Tim,
		MD5:           p.MD5,
		Fsize:         p.Fsize,
		W:             p.W,
		H:             p.H,
		TnW:           p.TnW,
		TnH:           p.TnH,
	}
}
