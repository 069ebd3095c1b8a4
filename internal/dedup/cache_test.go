package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeenPostDedup(t *testing.T) {
	c := New()
	assert.False(t, c.HasSeenPost("a", "b", "c"), "first sighting should not be marked seen")
	c.MarkPostSeen("a", "b", "c")
	assert.True(t, c.HasSeenPost("a", "b", "c"), "repeat fingerprint should be seen after marking")
	assert.False(t, c.HasSeenPost("a", "b", "d"), "a different fingerprint is a distinct entry")
}

func TestHasSeenPostDoesNotMark(t *testing.T) {
	c := New()
	assert.False(t, c.HasSeenPost("a", "b", "c"))
	assert.False(t, c.HasSeenPost("a", "b", "c"), "a read-only check must not itself mark the fingerprint seen")
}

func TestFieldSeparatorAvoidsCollision(t *testing.T) {
	c := New()
	c.MarkPostSeen("ab", "c")
	assert.True(t, c.HasSeenPost("ab", "c"))
	assert.False(t, c.HasSeenPost("a", "bc"), "\"ab\",\"c\" must not collide with \"a\",\"bc\"")
}

func TestSeenThreadJobDistinguishesLastModified(t *testing.T) {
	c := New()
	assert.False(t, c.HasSeenThreadJob("g", 123, 1000))
	c.MarkThreadJobSeen("g", 123, 1000)
	assert.True(t, c.HasSeenThreadJob("g", 123, 1000))
	assert.False(t, c.HasSeenThreadJob("g", 123, 1001), "a newer last_modified is a distinct fingerprint")
}

func TestSeenArchivedThread(t *testing.T) {
	c := New()
	assert.False(t, c.HasSeenArchivedThread("g", 42))
	c.MarkArchivedThreadSeen("g", 42)
	assert.True(t, c.HasSeenArchivedThread("g", 42))
	assert.False(t, c.HasSeenArchivedThread("a", 42), "same thread id on a different board is distinct")
}

func TestSetOverflowClears(t *testing.T) {
	s := newSet()
	s.insertIfAbsent(1)
	s.insertIfAbsent(2)
	assert.Equal(t, 2, s.size())

	s.clear()
	assert.Equal(t, 0, s.size())
	assert.False(t, s.contains(1))
	assert.True(t, s.insertIfAbsent(1), "after clear, a previously seen hash is newly absent")
}
