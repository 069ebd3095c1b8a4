package boardapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPostJSONToPostMapsIntFlagsToBools(t *testing.T) {
	pj := PostJSON{
		No: 42, Resto: 0, Time: 1000,
		Sticky: 1, Closed: 0, Archived: 1, FileDeleted: 0, Spoiler: 1,
		Tim: 555, Ext: ".jpg",
	}
	p := pj.ToPost("g", 2000)

	assert.Equal(t, "g", p.Board)
	assert.Equal(t, int64(42), p.No)
	assert.Equal(t, int64(2000), p.LastModified, "last_modified is stamped by the caller, not read off the post")
	assert.True(t, p.Sticky)
	assert.False(t, p.Closed)
	assert.True(t, p.Archived)
	assert.False(t, p.FileDeleted)
	assert.True(t, p.Spoiler)
	assert.True(t, p.IsOP())
	assert.True(t, p.HasAttachment())
}

func TestPostJSONToPostNonOPThreadNo(t *testing.T) {
	pj := PostJSON{No: 43, Resto: 42}
	p := pj.ToPost("g", 2000)
	assert.False(t, p.IsOP())
	assert.Equal(t, int64(42), p.ThreadNo())
}
