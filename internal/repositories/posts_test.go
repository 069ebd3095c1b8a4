package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/reasv/board-archiver/internal/models"
)

func TestPostDedupFieldsIgnoresLastModifiedForReplies(t *testing.T) {
	reply := models.Post{Board: "g", No: 2, Resto: 1, Com: "hello", LastModified: 100}
	a := postDedupFields(reply)
	reply.LastModified = 200
	b := postDedupFields(reply)
	assert.Equal(t, a, b, "a reply's last_modified-only change must not change its dedup fingerprint")
}

func TestPostDedupFieldsKeepsLastModifiedForOPs(t *testing.T) {
	op := models.Post{Board: "g", No: 1, Resto: 0, Com: "hello", LastModified: 100}
	a := postDedupFields(op)
	op.LastModified = 200
	b := postDedupFields(op)
	assert.NotEqual(t, a, b, "an OP's last_modified change must always change its dedup fingerprint")
}

func TestPostDedupFieldsExcludesFileHashes(t *testing.T) {
	// FileSHA256/ThumbnailSHA256 aren't fields on models.Post at all — they
	// move through SetPostFiles, never through InsertPosts — so this is a
	// structural guarantee rather than something postDedupFields filters out.
	p := models.Post{Board: "g", No: 1, Resto: 0}
	fields := postDedupFields(p)
	assert.NotContains(t, fields, "sha256-looking-value")
}

func TestPostDedupFieldsDistinguishesContentChange(t *testing.T) {
	p1 := models.Post{Board: "g", No: 1, Resto: 1, Com: "first"}
	p2 := models.Post{Board: "g", No: 1, Resto: 1, Com: "second"}
	assert.NotEqual(t, postDedupFields(p1), postDedupFields(p2))
}

func TestInt64StrAndBoolStr(t *testing.T) {
	assert.Equal(t, "0", int64Str(0))
	assert.Equal(t, "42", int64Str(42))
	assert.Equal(t, "-7", int64Str(-7))
	assert.Equal(t, "1", boolStr(true))
	assert.Equal(t, "0", boolStr(false))
}
