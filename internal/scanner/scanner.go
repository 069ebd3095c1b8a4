// Package scanner implements the Board Scanner (spec.md C5): for every
// archive-enabled board it walks threads.json in reverse-page order and
// archive.json, enqueueing thread jobs for anything new or changed.
package scanner

import (
	"context"
	"log/slog"
	"time"

	"github.com/reasv/board-archiver/internal/boardapi"
	"github.com/reasv/board-archiver/internal/dedup"
	"github.com/reasv/board-archiver/internal/fetcher"
	"github.com/reasv/board-archiver/internal/metrics"
	"github.com/reasv/board-archiver/internal/models"
	"github.com/reasv/board-archiver/internal/repositories"
)

type Scanner struct {
	store   *repositories.Store
	fetcher *fetcher.Fetcher
	cache   *dedup.Cache
	sink    metrics.Sink
	logger  *slog.Logger

	apiBase string
}

func New(store *repositories.Store, f *fetcher.Fetcher, cache *dedup.Cache, sink metrics.Sink, apiBase string, logger *slog.Logger) *Scanner {
	if sink == nil {
		sink = metrics.NoopSink{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{store: store, fetcher: f, cache: cache, sink: sink, apiBase: apiBase, logger: logger.With("component", "scanner")}
}

func (s *Scanner) getBoardPages(ctx context.Context, board string) ([]boardapi.ThreadsPage, error) {
	return fetcher.FetchJSON[[]boardapi.ThreadsPage](ctx, s.fetcher, boardapi.ThreadsURL(s.apiBase, board))
}

// pushNewThreads walks threads.json in reverse-page, reverse-thread order —
// threads about to fall off the board get scheduled first — stamping board
// and page on each entry before calling InsertThreadJob.
func (s *Scanner) pushNewThreads(ctx context.Context, board string) (int, error) {
	pages, err := s.getBoardPages(ctx, board)
	if err != nil {
		return 0, err
	}

	added := 0
	for i := len(pages) - 1; i >= 0; i-- {
		page := pages[i]
		for j := len(page.Threads) - 1; j >= 0; j-- {
			t := page.Threads[j]
			job, err := s.store.InsertThreadJob(ctx, models.ThreadJobInfo{
				Board:        board,
				No:           t.No,
				LastModified: t.LastModified,
				Replies:      t.Replies,
				Page:         page.Page,
			})
			if err != nil {
				s.logger.Error("insert thread job failed", "board", board, "no", t.No, "error", err)
				return added, err
			}
			if job != nil {
				added++
			}
		}
	}
	return added, nil
}

func (s *Scanner) getBoardArchive(ctx context.Context, board string) ([]int64, error) {
	return fetcher.FetchJSON[[]int64](ctx, s.fetcher, boardapi.ArchiveURL(s.apiBase, board))
}

// pushArchivedThreads schedules a rescan for every archived OP not already
// known-archived, at the lowest priority (page=0).
func (s *Scanner) pushArchivedThreads(ctx context.Context, board string) error {
	tids, err := s.getBoardArchive(ctx, board)
	if err != nil {
		return err
	}

	for _, tid := range tids {
		if s.cache.HasSeenArchivedThread(board, tid) {
			continue
		}

		var lastModified int64
		var replies int
		op, err := s.store.GetPost(ctx, board, tid)
		if err != nil {
			s.logger.Error("get post failed", "board", board, "tid", tid, "error", err)
			return err
		}
		if op != nil {
			if op.Archived {
				s.cache.MarkArchivedThreadSeen(board, tid)
				continue
			}
			lastModified = op.LastModified
			replies = op.Replies
		}

		if _, err := s.store.InsertThreadJob(ctx, models.ThreadJobInfo{
			Board:        board,
			No:           tid,
			LastModified: lastModified,
			Replies:      replies,
			Page:         models.ArchivePage,
		}); err != nil {
			s.logger.Error("insert archived thread job failed", "board", board, "tid", tid, "error", err)
			return err
		}
		s.cache.MarkArchivedThreadSeen(board, tid)
	}
	return nil
}

// BoardCycle runs one scan over every archive-enabled board, returning the
// number of new thread jobs scheduled.
func (s *Scanner) BoardCycle(ctx context.Context) (int, error) {
	boards, err := s.store.GetAllBoards(ctx)
	if err != nil {
		return 0, err
	}

	added := 0
	for _, b := range boards {
		if !b.CanArchive() {
			continue
		}
		n, err := s.pushNewThreads(ctx, b.Name)
		if err != nil {
			return added, err
		}
		added += n
		if err := s.pushArchivedThreads(ctx, b.Name); err != nil {
			return added, err
		}
	}
	return added, nil
}

// Run is the long-running scanner loop: one cycle, sleep 10s if it found
// nothing new, 1s otherwise, forever. A panic in one cycle is recovered by
// runCycleSafely and an error is logged; either way the loop goes on to
// the next cycle.
func (s *Scanner) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		start := time.Now()
		added, err := s.runCycleSafely(ctx)
		s.sink.ObserveHistogram("boards_scan_duration", float64(time.Since(start).Milliseconds()))

		if err != nil {
			s.logger.Error("board cycle failed", "error", err)
		}

		sleep := 10 * time.Second
		if added > 0 {
			sleep = time.Second
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(sleep):
		}
	}
}

func (s *Scanner) runCycleSafely(ctx context.Context) (added int, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("board cycle panicked", "panic", r)
		}
	}()
	return s.BoardCycle(ctx)
}
