// Package threadworker implements the Thread Worker Pool (spec.md C6):
// drains the thread-job backlog with at most 20 concurrent workers,
// fetching each thread's posts, diffing them against the store, and
// scheduling image jobs for anything new with an attachment.
package threadworker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/reasv/board-archiver/internal/boardapi"
	"github.com/reasv/board-archiver/internal/fetcher"
	"github.com/reasv/board-archiver/internal/metrics"
	"github.com/reasv/board-archiver/internal/models"
	"github.com/reasv/board-archiver/internal/repositories"
)

// maxConcurrent bounds in-flight thread workers regardless of backlog size
// (spec.md §5).
const maxConcurrent = 20

// batchSize is how many jobs are drained from the backlog per round; a new
// batch is only fetched once the previous one is exhausted.
const batchSize = 250

type Pool struct {
	store   *repositories.Store
	fetcher *fetcher.Fetcher
	sink    metrics.Sink
	logger  *slog.Logger

	apiBase      string
	imageCDNBase string
}

func New(store *repositories.Store, f *fetcher.Fetcher, sink metrics.Sink, apiBase, imageCDNBase string, logger *slog.Logger) *Pool {
	if sink == nil {
		sink = metrics.NoopSink{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pool{store: store, fetcher: f, sink: sink, apiBase: apiBase, imageCDNBase: imageCDNBase, logger: logger.With("component", "thread_worker")}
}

// Run is the thread_cycle loop: drain up to batchSize jobs, dispatch up to
// maxConcurrent workers, await a completion signal before dispatching the
// next when saturated. A panic inside one job is isolated to that job.
func (p *Pool) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		jobs, err := p.store.GetThreadJobs(ctx, batchSize)
		if err != nil {
			p.logger.Error("get thread jobs failed", "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(10 * time.Second):
			}
			continue
		}
		if len(jobs) == 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(10 * time.Second):
			}
			continue
		}

		done := make(chan int64, maxConcurrent)
		running := make(map[int64]struct{}, maxConcurrent)

		for i := 0; i < len(jobs); i++ {
			job := jobs[i]
			if _, ok := running[job.ID]; ok {
				continue
			}
			running[job.ID] = struct{}{}
			go p.dispatch(ctx, job, done)

			if len(running) < maxConcurrent {
				continue
			}
			id := <-done
			delete(running, id)
		}
		// drain stragglers from this batch before fetching the next
		for len(running) > 0 {
			id := <-done
			delete(running, id)
		}
	}
}

func (p *Pool) dispatch(ctx context.Context, job models.ThreadJob, done chan<- int64) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("thread job panicked", "job_id", job.ID, "panic", r)
		}
		done <- job.ID
	}()

	p.sink.SetGauge("thread_jobs_running", 1)
	start := time.Now()
	if err := p.archiveThread(ctx, job); err != nil {
		p.logger.Error("archive thread failed", "board", job.Board, "no", job.No, "error", err)
	}
	p.sink.ObserveHistogram("thread_job_duration", float64(time.Since(start).Milliseconds()))
	p.sink.SetGauge("thread_jobs_running", -1)
}

// archiveThread mirrors archive_thread from the original implementation.
func (p *Pool) archiveThread(ctx context.Context, job models.ThreadJob) error {
	now := time.Now().Unix()

	board, err := p.store.GetBoard(ctx, job.Board)
	if err != nil {
		return err
	}
	if board == nil || !board.CanArchive() {
		p.logger.Warn("board missing or archive disabled, dropping job", "board", job.Board, "no", job.No)
		return p.store.DeleteThreadJob(ctx, job.ID)
	}

	thread, err := fetcher.FetchJSON[boardapi.ThreadResponse](ctx, p.fetcher, boardapi.ThreadURL(p.apiBase, job.Board, job.No))
	p.sink.IncCounter("threads_fetched", 1)
	if err != nil {
		if errors.Is(err, fetcher.ErrNotFound) {
			if _, err := p.store.SetPostDeleted(ctx, job.Board, job.No, now); err != nil {
				return err
			}
			p.sink.IncCounter("thread_404", 1)
			return p.store.DeleteThreadJob(ctx, job.ID)
		}
		// transient: leave the job in the backlog for the next cycle
		return err
	}

	posts := make([]models.Post, 0, len(thread.Posts))
	postNos := make([]int64, 0, len(thread.Posts))
	for _, pj := range thread.Posts {
		posts = append(posts, pj.ToPost(job.Board, job.LastModified))
		postNos = append(postNos, pj.No)
	}

	deleted, err := p.store.SetMissingPostsDeleted(ctx, job.Board, job.No, postNos, now)
	if err != nil {
		return err
	}
	p.sink.IncCounter("post_deleted", float64(len(deleted)))

	changed, err := p.store.InsertPosts(ctx, posts)
	if err != nil {
		return err
	}

	for _, post := range changed {
		if post.Tim == 0 || post.FileDeleted {
			continue
		}
		_, err := p.store.InsertImageJob(ctx, models.ImageJobInfo{
			Board:        job.Board,
			No:           post.No,
			URL:          boardapi.ImageURL(p.imageCDNBase, job.Board, post.Tim, post.Ext),
			ThumbnailURL: boardapi.ThumbnailURL(p.imageCDNBase, job.Board, post.Tim),
			Ext:          post.Ext,
			Page:         job.Page,
		})
		if err != nil {
			return err
		}
	}

	return p.store.DeleteThreadJob(ctx, job.ID)
}
