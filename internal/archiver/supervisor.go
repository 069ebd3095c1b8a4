// Package archiver implements the Archiver Supervisor (spec.md C8): it
// owns the Persistence Layer, Dedup Cache, Fetcher and Blob Store, launches
// the long-running Scanner/Thread/Image pool tasks plus a metrics-snapshot
// cycle, and exposes the admin-facing board lifecycle operations.
package archiver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/reasv/board-archiver/internal/blobstore"
	"github.com/reasv/board-archiver/internal/boardapi"
	"github.com/reasv/board-archiver/internal/dedup"
	"github.com/reasv/board-archiver/internal/fetcher"
	"github.com/reasv/board-archiver/internal/imageworker"
	"github.com/reasv/board-archiver/internal/metrics"
	"github.com/reasv/board-archiver/internal/models"
	"github.com/reasv/board-archiver/internal/repositories"
	"github.com/reasv/board-archiver/internal/scanner"
	"github.com/reasv/board-archiver/internal/threadworker"
)

// ErrUnknownBoard is returned by SetBoard when the board does not exist
// upstream (boards.json doesn't list it).
var ErrUnknownBoard = errors.New("archiver: board does not exist upstream")

// PurgeReport summarizes the outcome of a board purge, per spec.md §4.8.
type PurgeReport struct {
	FullFilesDeleted int
	FullFilesFailed  int
	ThumbnailsDeleted int
	ThumbnailsFailed  int
	RemovedPosts     int64
}

type Supervisor struct {
	store    *repositories.Store
	fetcher  *fetcher.Fetcher
	blobs    blobstore.Store
	sink     metrics.Sink
	logger   *slog.Logger

	scan    *scanner.Scanner
	threads *threadworker.Pool
	images  *imageworker.Pool

	apiBase      string
	imageCDNBase string
}

func New(
	store *repositories.Store,
	f *fetcher.Fetcher,
	blobs blobstore.Store,
	sink metrics.Sink,
	apiBase, imageCDNBase string,
	logger *slog.Logger,
) *Supervisor {
	if sink == nil {
		sink = metrics.NoopSink{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "supervisor")

	return &Supervisor{
		store:        store,
		fetcher:      f,
		blobs:        blobs,
		sink:         sink,
		logger:       logger,
		apiBase:      apiBase,
		imageCDNBase: imageCDNBase,
	}
}

// Run launches the Scanner, Thread Worker Pool, Image Worker Pool, and
// metrics-snapshot cycle as crash-isolated long-running tasks, blocking
// until ctx is cancelled.
func (sv *Supervisor) Run(ctx context.Context, cache *dedup.Cache) {
	scan := scanner.New(sv.store, sv.fetcher, cache, sv.sink, sv.apiBase, sv.logger)
	threads := threadworker.New(sv.store, sv.fetcher, sv.sink, sv.apiBase, sv.imageCDNBase, sv.logger)
	images := imageworker.New(sv.store, sv.blobs, sv.fetcher, sv.sink, sv.logger)
	sv.scan, sv.threads, sv.images = scan, threads, images

	tasks := []struct {
		name string
		run  func(context.Context)
	}{
		{"scanner", scan.Run},
		{"thread_worker", threads.Run},
		{"image_worker", images.Run},
		{"metrics", sv.runMetricsCycle},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, t := range tasks {
		name, run := t.name, t.run
		g.Go(func() error {
			sv.runGuarded(gctx, name, run)
			return nil
		})
	}
	// Every task runs until ctx is cancelled and never returns an error
	// (runGuarded absorbs panics by re-entering), so Wait only ever blocks
	// until shutdown.
	_ = g.Wait()
}

// runGuarded wraps a long-running task so a panic does not terminate the
// process: the outer loop re-enters the task function, discarding whatever
// in-memory state it held (all real progress lives in the backlog tables,
// per spec.md §9).
func (sv *Supervisor) runGuarded(ctx context.Context, name string, run func(context.Context)) {
	for {
		if ctx.Err() != nil {
			return
		}
		func() {
			defer func() {
				if r := recover(); r != nil {
					sv.logger.Error("task panicked, restarting", "task", name, "panic", r)
				}
			}()
			run(ctx)
		}()
		if ctx.Err() != nil {
			return
		}
	}
}

// runMetricsCycle publishes backlog sizes, stored file/thumbnail counts,
// and the missing-thumbnail count every 5s, per spec.md §4.8.
func (sv *Supervisor) runMetricsCycle(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sv.snapshotMetrics(ctx)
		}
	}
}

func (sv *Supervisor) snapshotMetrics(ctx context.Context) {
	if n, err := sv.store.GetThreadBacklogSize(ctx, 0); err == nil {
		sv.sink.SetGauge("thread_backlog_size", float64(n))
	}
	if n, err := sv.store.GetImageBacklogSize(ctx, 0); err == nil {
		sv.sink.SetGauge("file_backlog_size", float64(n))
	}
	if n, err := sv.store.GetStoredFiles(ctx); err == nil {
		sv.sink.SetGauge("stored_files", float64(n))
	}
	if n, err := sv.store.GetStoredThumbnails(ctx); err == nil {
		sv.sink.SetGauge("stored_thumbnails", float64(n))
	}
	if n, err := sv.store.GetMissingThumbnails(ctx); err == nil {
		sv.sink.SetGauge("missing_thumbnails", float64(n))
	}
}

// SetBoard validates the board exists upstream, then upserts its flags. If
// full_images_enabled flips false -> true, it schedules missing full-file
// jobs for the posts that only have a thumbnail so far.
func (sv *Supervisor) SetBoard(ctx context.Context, board models.Board) (models.Board, error) {
	exists, err := sv.boardExistsUpstream(ctx, board.Name)
	if err != nil {
		return models.Board{}, err
	}
	if !exists {
		return models.Board{}, fmt.Errorf("%w: /%s/", ErrUnknownBoard, board.Name)
	}

	before, err := sv.store.GetBoard(ctx, board.Name)
	if err != nil {
		return models.Board{}, err
	}

	updated, err := sv.store.UpsertBoard(ctx, board)
	if err != nil {
		return models.Board{}, err
	}

	flippedOn := updated.FullImagesEnabled && (before == nil || !before.FullImagesEnabled)
	if flippedOn {
		n, err := sv.store.ScheduleMissingFullFiles(ctx, board.Name, sv.imageCDNBase)
		if err != nil {
			sv.logger.Error("schedule missing full files failed", "board", board.Name, "error", err)
		} else {
			sv.logger.Info("scheduled missing full files", "board", board.Name, "count", n)
		}
	}
	return updated, nil
}

func (sv *Supervisor) boardExistsUpstream(ctx context.Context, name string) (bool, error) {
	resp, err := fetcher.FetchJSON[boardapi.BoardsResponse](ctx, sv.fetcher, boardapi.BoardsURL(sv.apiBase))
	if err != nil {
		return false, fmt.Errorf("archiver: fetch boards.json: %w", err)
	}
	for _, b := range resp.Boards {
		if b.Board == name {
			return true, nil
		}
	}
	return false, nil
}

// StopBoard flips archive_enabled off, halting future scanning.
func (sv *Supervisor) StopBoard(ctx context.Context, name string) error {
	board, err := sv.store.GetBoard(ctx, name)
	if err != nil {
		return err
	}
	if board == nil {
		return fmt.Errorf("archiver: board /%s/ not found", name)
	}
	board.ArchiveEnabled = false
	_, err = sv.store.UpsertBoard(ctx, *board)
	return err
}

// ScheduleMissingFullFiles exposes the admin operation of the same name.
func (sv *Supervisor) ScheduleMissingFullFiles(ctx context.Context, board string) (int, error) {
	return sv.store.ScheduleMissingFullFiles(ctx, board, sv.imageCDNBase)
}

func (sv *Supervisor) BlacklistFile(ctx context.Context, sha256, reason string) (bool, int64, error) {
	return sv.store.BlacklistFile(ctx, sha256, reason)
}

func (sv *Supervisor) UnblacklistFile(ctx context.Context, sha256 string) (bool, int64, error) {
	return sv.store.UnblacklistFile(ctx, sha256)
}
