package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/bmc-backend/internal/apierr"
	"github.com/yungbote/bmc-backend/internal/services"
)

type SnapshotHandler struct {
	svc services.SnapshotService
}

func NewSnapshotHandler(svc services.SnapshotService) *SnapshotHandler {
	return &SnapshotHandler{svc: svc}
}

// GET /api/bmc/canvases/:id/snapshots
func (h *SnapshotHandler) List(c *gin.Context) {
	canvasID, ok := paramID(c, "id")
	if !ok {
		return
	}
	list, err := h.svc.List(c.Request.Context(), canvasID, queryTeamID(c), queryListParams(c))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, list)
}

// POST /api/bmc/canvases/:id/snapshots
func (h *SnapshotHandler) Create(c *gin.Context) {
	canvasID, ok := paramID(c, "id")
	if !ok {
		return
	}
	snapshot, err := h.svc.Create(c.Request.Context(), canvasID, queryTeamID(c))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, gin.H{
		"snapshot_id": snapshot.ID,
		"canvas_id":   snapshot.CanvasID,
		"version":     snapshot.Version,
		"created_at":  snapshot.CreatedAt,
	})
}

// GET /api/bmc/snapshots/:id
func (h *SnapshotHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	snapshot, err := h.svc.Get(c.Request.Context(), id, queryTeamID(c))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, snapshot)
}

// GET /api/bmc/snapshots/compare?snapshot_a_id=&snapshot_b_id=
func (h *SnapshotHandler) Compare(c *gin.Context) {
	aID, errA := strconv.ParseUint(c.Query("snapshot_a_id"), 10, 64)
	bID, errB := strconv.ParseUint(c.Query("snapshot_b_id"), 10, 64)
	if errA != nil || errB != nil {
		RespondError(c, http.StatusBadRequest, string(apierr.CodeValidation),
			apierr.New(apierr.CodeValidation, "snapshot_a_id and snapshot_b_id are required"))
		return
	}
	diff, err := h.svc.Compare(c.Request.Context(), uint(aID), uint(bID), queryTeamID(c))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, diff)
}
