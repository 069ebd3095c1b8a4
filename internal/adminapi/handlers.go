// Package adminapi exposes the board-lifecycle admin operations (spec.md
// §4.8) over HTTP: set_board, stop_board, purge_board, blacklist_file,
// unblacklist_file, schedule_missing_full_files, plus read-only health and
// backlog-size endpoints.
package adminapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/reasv/board-archiver/internal/archiver"
	"github.com/reasv/board-archiver/internal/models"
	"github.com/reasv/board-archiver/internal/repositories"
	"github.com/reasv/board-archiver/internal/utils"
)

type Handler struct {
	sv    *archiver.Supervisor
	store *repositories.Store
}

func New(sv *archiver.Supervisor, store *repositories.Store) *Handler {
	return &Handler{sv: sv, store: store}
}

// Register wires every admin route onto the given group.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/health", h.health)
	r.GET("/boards", h.listBoards)
	r.GET("/boards/:name", h.getBoard)
	r.PUT("/boards/:name", h.setBoard)
	r.POST("/boards/:name/stop", h.stopBoard)
	r.POST("/boards/:name/purge", h.purgeBoard)
	r.POST("/boards/:name/schedule-missing-full-files", h.scheduleMissingFullFiles)
	r.POST("/files/:sha256/blacklist", h.blacklistFile)
	r.DELETE("/files/:sha256/blacklist", h.unblacklistFile)
	r.GET("/stats", h.stats)
}

func (h *Handler) health(c *gin.Context) {
	utils.SendSuccess(c, "ok", gin.H{"status": "ok"})
}

func (h *Handler) listBoards(c *gin.Context) {
	boards, err := h.store.GetAllBoards(c.Request.Context())
	if err != nil {
		utils.SendInternalError(c, err)
		return
	}
	utils.SendSuccess(c, "boards", boards)
}

func (h *Handler) getBoard(c *gin.Context) {
	name := c.Param("name")
	board, err := h.store.GetBoard(c.Request.Context(), name)
	if err != nil {
		utils.SendInternalError(c, err)
		return
	}
	if board == nil {
		utils.SendError(c, http.StatusNotFound, "board not found", nil)
		return
	}
	utils.SendSuccess(c, "board", board)
}

type setBoardRequest struct {
	FullImagesEnabled bool `json:"full_images_enabled"`
	SearchEnabled     bool `json:"search_enabled"`
}

func (h *Handler) setBoard(c *gin.Context) {
	name := c.Param("name")
	var req setBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, err)
		return
	}

	updated, err := h.sv.SetBoard(c.Request.Context(), models.Board{
		Name:              name,
		ArchiveEnabled:    true,
		FullImagesEnabled: req.FullImagesEnabled,
		SearchEnabled:     req.SearchEnabled,
	})
	if err != nil {
		if errors.Is(err, archiver.ErrUnknownBoard) {
			utils.SendError(c, http.StatusNotFound, "board does not exist upstream", err)
			return
		}
		utils.SendInternalError(c, err)
		return
	}
	utils.SendSuccess(c, "board enabled", updated)
}

func (h *Handler) stopBoard(c *gin.Context) {
	name := c.Param("name")
	if err := h.sv.StopBoard(c.Request.Context(), name); err != nil {
		utils.SendInternalError(c, err)
		return
	}
	utils.SendSuccess(c, "board stopped", nil)
}

type purgeBoardRequest struct {
	OnlyFullImages bool `json:"only_full_images"`
}

func (h *Handler) purgeBoard(c *gin.Context) {
	name := c.Param("name")
	var req purgeBoardRequest
	_ = c.ShouldBindJSON(&req)

	report, err := h.sv.PurgeBoard(c.Request.Context(), name, req.OnlyFullImages)
	if err != nil {
		utils.SendInternalError(c, err)
		return
	}
	utils.SendSuccess(c, "board purged", report)
}

func (h *Handler) scheduleMissingFullFiles(c *gin.Context) {
	name := c.Param("name")
	n, err := h.sv.ScheduleMissingFullFiles(c.Request.Context(), name)
	if err != nil {
		utils.SendInternalError(c, err)
		return
	}
	utils.SendSuccess(c, "scheduled missing full files", gin.H{"scheduled": n})
}

type blacklistRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func (h *Handler) blacklistFile(c *gin.Context) {
	sha256 := c.Param("sha256")
	var req blacklistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, err)
		return
	}

	blacklisted, filesHidden, err := h.sv.BlacklistFile(c.Request.Context(), sha256, req.Reason)
	if err != nil {
		utils.SendInternalError(c, err)
		return
	}
	utils.SendSuccess(c, "file blacklisted", gin.H{"blacklisted": blacklisted, "files_hidden": filesHidden})
}

func (h *Handler) unblacklistFile(c *gin.Context) {
	sha256 := c.Param("sha256")
	removed, filesShown, err := h.sv.UnblacklistFile(c.Request.Context(), sha256)
	if err != nil {
		utils.SendInternalError(c, err)
		return
	}
	utils.SendSuccess(c, "file unblacklisted", gin.H{"removed": removed, "files_shown": filesShown})
}

func (h *Handler) stats(c *gin.Context) {
	ctx := c.Request.Context()
	threadBacklog, err := h.store.GetThreadBacklogSize(ctx, 0)
	if err != nil {
		utils.SendInternalError(c, err)
		return
	}
	imageBacklog, err := h.store.GetImageBacklogSize(ctx, 0)
	if err != nil {
		utils.SendInternalError(c, err)
		return
	}
	storedFiles, err := h.store.GetStoredFiles(ctx)
	if err != nil {
		utils.SendInternalError(c, err)
		return
	}
	storedThumbnails, err := h.store.GetStoredThumbnails(ctx)
	if err != nil {
		utils.SendInternalError(c, err)
		return
	}
	missingThumbnails, err := h.store.GetMissingThumbnails(ctx)
	if err != nil {
		utils.SendInternalError(c, err)
		return
	}

	utils.SendSuccess(c, "stats", gin.H{
		"thread_backlog_size": threadBacklog,
		"image_backlog_size":  imageBacklog,
		"stored_files":        storedFiles,
		"stored_thumbnails":   storedThumbnails,
		"missing_thumbnails":  missingThumbnails,
	})
}
