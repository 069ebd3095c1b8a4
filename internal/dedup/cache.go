// Package dedup implements the process-wide, lossy content-hash caches
// described in spec.md §4.4. These are caches, not sources of truth: the
// datastore is authoritative, and the cache only exists to cut down on
// no-op writes. Losing entries (via the overflow clear) is an acceptable
// correctness trade-off, never a correctness hazard.
package dedup

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

// maxEntries bounds a single set before it is cleared and shrunk. This is
// a crude upper bound, not a precise LRU budget — see spec.md §9.
const maxEntries = 100_000_000

// shardCount trades a little memory for much lower lock contention between
// the Scanner/Thread/Image pools, which all touch the cache concurrently.
const shardCount = 64

// set is one bounded, sharded 64-bit hash set.
type set struct {
	shards [shardCount]shard
}

type shard struct {
	mu   sync.Mutex
	seen map[uint64]struct{}
}

func newSet() *set {
	s := &set{}
	for i := range s.shards {
		s.shards[i].seen = make(map[uint64]struct{})
	}
	return s
}

func (s *set) shardFor(h uint64) *shard {
	return &s.shards[h%shardCount]
}

// insertIfAbsent returns true if h was newly inserted, false if already present.
func (s *set) insertIfAbsent(h uint64) bool {
	// size() takes every shard lock in turn, so the overflow check runs
	// before this shard's lock is held.
	if !s.contains(h) && s.size() >= maxEntries {
		s.clear()
	}

	sh := s.shardFor(h)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	if _, ok := sh.seen[h]; ok {
		return false
	}
	sh.seen[h] = struct{}{}
	return true
}

func (s *set) contains(h uint64) bool {
	sh := s.shardFor(h)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	_, ok := sh.seen[h]
	return ok
}

// size is an approximation taken without a global lock; fine for a
// coarse overflow trigger.
func (s *set) size() int {
	n := 0
	for i := range s.shards {
		s.shards[i].mu.Lock()
		n += len(s.shards[i].seen)
		s.shards[i].mu.Unlock()
	}
	return n
}

func (s *set) clear() {
	for i := range s.shards {
		s.shards[i].seen = make(map[uint64]struct{})
	}
}

// Cache holds the three hash sets spec.md §4.4 calls for: post-content
// fingerprints, thread-job fingerprints, and archived-thread-id fingerprints.
type Cache struct {
	posts           *set
	threadJobs      *set
	archivedThreads *set
}

func New() *Cache {
	return &Cache{
		posts:           newSet(),
		threadJobs:      newSet(),
		archivedThreads: newSet(),
	}
}

// HasSeenPost reports whether a post-content fingerprint is already
// recorded, without marking it. Callers must only mark it (MarkPostSeen)
// after the corresponding write to the store has actually succeeded —
// otherwise a failed write followed by a retry would find the hash already
// present and skip forever, violating the idempotent-retry guarantee.
func (c *Cache) HasSeenPost(fields ...string) bool {
	return c.posts.contains(hashFields(fields...))
}

// MarkPostSeen records a post-content fingerprint. Call only after the
// write it guards has committed.
func (c *Cache) MarkPostSeen(fields ...string) {
	c.posts.insertIfAbsent(hashFields(fields...))
}

// HasSeenThreadJob reports whether a thread-job fingerprint is already
// recorded, without marking it.
func (c *Cache) HasSeenThreadJob(board string, no, lastModified int64) bool {
	return c.threadJobs.contains(hashFields(board, int64Str(no), int64Str(lastModified)))
}

// MarkThreadJobSeen records a thread-job fingerprint. Call only after the
// backlog insert it guards has committed.
func (c *Cache) MarkThreadJobSeen(board string, no, lastModified int64) {
	c.threadJobs.insertIfAbsent(hashFields(board, int64Str(no), int64Str(lastModified)))
}

// HasSeenArchivedThread reports whether an archived-thread-id fingerprint
// is already recorded, without marking it.
func (c *Cache) HasSeenArchivedThread(board string, tid int64) bool {
	return c.archivedThreads.contains(hashFields(board, int64Str(tid)))
}

// MarkArchivedThreadSeen records an archived-thread-id fingerprint. Call
// only after the corresponding write has committed.
func (c *Cache) MarkArchivedThreadSeen(board string, tid int64) {
	c.archivedThreads.insertIfAbsent(hashFields(board, int64Str(tid)))
}

// Sizes returns the approximate current entry counts for the three sets,
// in the order (posts, thread_jobs, archived_threads). Nothing in this
// module publishes them as gauges.
func (c *Cache) Sizes() (posts, threadJobs, archivedThreads int) {
	return c.posts.size(), c.threadJobs.size(), c.archivedThreads.size()
}

func hashFields(fields ...string) uint64 {
	d := xxhash.New()
	for _, f := range fields {
		d.WriteString(f)
		d.Write([]byte{0}) // field separator so "ab","c" != "a","bc"
	}
	return d.Sum64()
}

func int64Str(n int64) string {
	// Avoid strconv import churn across call sites; cheap enough for the
	// hot dedup path, and the field separator above keeps it collision-safe.
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
