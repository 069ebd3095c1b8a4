// Package imageworker implements the Image Worker Pool (spec.md C7):
// drains the image-job backlog with at most 20 concurrent workers,
// downloading and hashing thumbnails (always) and full images (when the
// board has full_images_enabled), linking the resulting blobs to posts.
package imageworker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/reasv/board-archiver/internal/blobstore"
	"github.com/reasv/board-archiver/internal/fetcher"
	"github.com/reasv/board-archiver/internal/imaging"
	"github.com/reasv/board-archiver/internal/metrics"
	"github.com/reasv/board-archiver/internal/models"
	"github.com/reasv/board-archiver/internal/repositories"
)

const maxConcurrent = 20
const batchSize = 250

type Pool struct {
	store  *repositories.Store
	blobs  blobstore.Store
	fetch  *fetcher.Fetcher
	sink   metrics.Sink
	logger *slog.Logger
}

func New(store *repositories.Store, blobs blobstore.Store, f *fetcher.Fetcher, sink metrics.Sink, logger *slog.Logger) *Pool {
	if sink == nil {
		sink = metrics.NoopSink{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pool{store: store, blobs: blobs, fetch: f, sink: sink, logger: logger.With("component", "image_worker")}
}

// Run is the image_cycle loop, shaped identically to threadworker.Pool.Run.
func (p *Pool) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		jobs, err := p.store.GetImageJobs(ctx, batchSize)
		if err != nil {
			p.logger.Error("get image jobs failed", "error", err)
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
		for len(running) > 0 {
			id := <-done
			delete(running, id)
		}
	}
}

func (p *Pool) dispatch(ctx context.Context, job models.ImageJob, done chan<- int64) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("image job panicked", "job_id", job.ID, "panic", r)
		}
		done <- job.ID
	}()

	p.sink.SetGauge("file_jobs_running", 1)
	start := time.Now()
	if err := p.archiveImage(ctx, job); err != nil {
		p.logger.Error("archive image failed", "board", job.Board, "no", job.No, "error", err)
	}
	p.sink.ObserveHistogram("file_job_duration", float64(time.Since(start).Milliseconds()))
	p.sink.SetGauge("file_jobs_running", -1)
}

// archiveImage mirrors archive_image from the original implementation. It
// only deletes the job on a clean pass all the way through; a transient
// download/DB error returns early, leaving the job for the next cycle.
func (p *Pool) archiveImage(ctx context.Context, job models.ImageJob) error {
	thumbnailSHA256 := job.ThumbnailSHA256
	fileSHA256 := job.FileSHA256

	if thumbnailSHA256 == "" {
		hash, err := p.downloadAndStore(ctx, job.ThumbnailURL, ".jpg", true)
		if err != nil {
			return err
		}
		thumbnailSHA256 = hash
		p.sink.IncCounter("thumbnails_fetched", 1)
		if err := p.store.SetPostFiles(ctx, job.Board, job.No, fileSHA256, job.Ext, thumbnailSHA256); err != nil {
			return err
		}
	}

	if fileSHA256 == "" {
		board, err := p.store.GetBoard(ctx, job.Board)
		if err != nil {
			return err
		}
		if board != nil && board.FullImagesEnabled {
			hash, err := p.downloadAndStore(ctx, job.URL, job.Ext, false)
			if err != nil {
				return err
			}
			fileSHA256 = hash
			p.sink.IncCounter("files_fetched", 1)
			if err := p.store.SetPostFiles(ctx, job.Board, job.No, fileSHA256, job.Ext, thumbnailSHA256); err != nil {
				return err
			}
		}
	}

	return p.store.DeleteImageJob(ctx, job.ID)
}

// downloadAndStore fetches and hashes one attachment side. A 404 is not an
// error here — it returns ("", nil) so the post still advances instead of
// retrying forever (spec.md §4.7).
func (p *Pool) downloadAndStore(ctx context.Context, url, ext string, isThumb bool) (string, error) {
	data, err := p.fetch.FetchBytes(ctx, url, "download")
	if err != nil {
		if errors.Is(err, fetcher.ErrNotFound) {
			return "", nil
		}
		return "", err
	}

	if _, err := imaging.ValidateImage(data, imaging.DefaultLimits); err != nil {
		return "", fmt.Errorf("imageworker: downloaded image failed validation, will retry: %w", err)
	}

	if ext == "" {
		ext = imaging.SniffExtension(data)
	}

	hash, err := p.blobs.Put(ctx, data, ext, isThumb)
	if err != nil {
		return "", fmt.Errorf("imageworker: store blob: %w", err)
	}
	return hash, nil
}
