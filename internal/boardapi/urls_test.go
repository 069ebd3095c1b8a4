package boardapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestURLBuilders(t *testing.T) {
	assert.Equal(t, "https://a.4cdn.org/boards.json", BoardsURL("https://a.4cdn.org"))
	assert.Equal(t, "https://a.4cdn.org/g/threads.json", ThreadsURL("https://a.4cdn.org", "g"))
	assert.Equal(t, "https://a.4cdn.org/g/archive.json", ArchiveURL("https://a.4cdn.org", "g"))
	assert.Equal(t, "https://a.4cdn.org/g/thread/12345.json", ThreadURL("https://a.4cdn.org", "g", 12345))
	assert.Equal(t, "https://i.4cdn.org/g/999.png", ImageURL("https://i.4cdn.org", "g", 999, ".png"))
}

func TestThumbnailURLIsAlwaysJPEG(t *testing.T) {
	got := ThumbnailURL("https://i.4cdn.org", "g", 999)
	assert.Equal(t, "https://i.4cdn.org/g/999s.jpg", got)
}
