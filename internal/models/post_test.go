package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsOPAndThreadNo(t *testing.T) {
	op := Post{No: 10, Resto: 0}
	assert.True(t, op.IsOP())
	assert.Equal(t, int64(10), op.ThreadNo())

	reply := Post{No: 11, Resto: 10}
	assert.False(t, reply.IsOP())
	assert.Equal(t, int64(10), reply.ThreadNo())
}

func TestHasAttachment(t *testing.T) {
	assert.False(t, Post{Tim: 0}.HasAttachment())
	assert.True(t, Post{Tim: 123}.HasAttachment())
}

func TestMutablePostFieldsExcludesFrozenColumns(t *testing.T) {
	frozen := []string{"post_id", "board", "no", "resto", "time", "tim", "md5", "unique_ips"}
	for _, col := range frozen {
		assert.NotContains(t, MutablePostFields, col,
			"%s must stay frozen at first insert, or be handled outside the plain whitelist", col)
	}
}

func TestBoardCanArchive(t *testing.T) {
	assert.True(t, Board{ArchiveEnabled: true}.CanArchive())
	assert.False(t, Board{ArchiveEnabled: false}.CanArchive())
}
