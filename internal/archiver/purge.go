package archiver

import (
	"context"

	"github.com/reasv/board-archiver/internal/models"
)

// PurgeBoard implements the two purge_board branches from spec.md §4.8.
// Exclusivity is re-checked per file immediately before its blob delete, to
// close the window where another enabled board picks up the same content
// between the initial exclusivity query and the delete itself.
func (sv *Supervisor) PurgeBoard(ctx context.Context, name string, onlyFullImages bool) (PurgeReport, error) {
	var report PurgeReport

	if onlyFullImages {
		board, err := sv.store.GetBoard(ctx, name)
		if err != nil {
			return report, err
		}
		if board == nil {
			return report, nil
		}
		board.FullImagesEnabled = false
		if _, err := sv.store.UpsertBoard(ctx, *board); err != nil {
			return report, err
		}

		// The exclusive list is read while this board's posts_files rows
		// still reference the files; the references are then nulled so the
		// file rows can be deleted without violating the foreign key.
		exclusive, err := sv.store.FilesExclusiveToBoard(ctx, name)
		if err != nil {
			return report, err
		}
		if _, err := sv.store.RemoveFullFileReferencesForBoard(ctx, name); err != nil {
			return report, err
		}
		sv.deleteExclusiveFiles(ctx, name, exclusive, false, &report)
		return report, nil
	}

	if err := sv.StopBoard(ctx, name); err != nil {
		return report, err
	}
	if _, _, err := sv.store.PurgeBoardBacklogs(ctx, name); err != nil {
		return report, err
	}

	exclusiveThumbs, err := sv.store.ThumbnailsExclusiveToBoard(ctx, name)
	if err != nil {
		return report, err
	}
	exclusiveFiles, err := sv.store.FilesExclusiveToBoard(ctx, name)
	if err != nil {
		return report, err
	}

	// Posts go first (their posts_files rows cascade with them), so the
	// file rows are no longer referenced when deleteExclusiveFiles removes them.
	removed, err := sv.store.PurgeBoardData(ctx, name)
	if err != nil {
		return report, err
	}
	report.RemovedPosts = removed

	sv.deleteExclusiveFiles(ctx, name, exclusiveThumbs, true, &report)
	sv.deleteExclusiveFiles(ctx, name, exclusiveFiles, false, &report)
	return report, nil
}

func (sv *Supervisor) deleteExclusiveFiles(ctx context.Context, board string, files []models.File, isThumb bool, report *PurgeReport) {
	for _, f := range files {
		stillShared, err := sv.store.IsFileOnOtherBoards(ctx, f.SHA256, board)
		if err != nil {
			sv.logger.Error("exclusivity re-check failed", "sha256", f.SHA256, "error", err)
			sv.bumpFailed(isThumb, report)
			continue
		}
		if stillShared {
			continue
		}

		if err := sv.blobs.Delete(ctx, f.SHA256, f.Ext, isThumb); err != nil {
			sv.logger.Error("blob delete failed", "sha256", f.SHA256, "error", err)
			sv.bumpFailed(isThumb, report)
			continue
		}
		if err := sv.store.DeleteFile(ctx, f.SHA256); err != nil {
			sv.logger.Error("file row delete failed", "sha256", f.SHA256, "error", err)
			sv.bumpFailed(isThumb, report)
			continue
		}
		sv.bumpDeleted(isThumb, report)
	}
}

func (sv *Supervisor) bumpDeleted(isThumb bool, report *PurgeReport) {
	if isThumb {
		report.ThumbnailsDeleted++
	} else {
		report.FullFilesDeleted++
	}
}

func (sv *Supervisor) bumpFailed(isThumb bool, report *PurgeReport) {
	if isThumb {
		report.ThumbnailsFailed++
	} else {
		report.FullFilesFailed++
	}
}
