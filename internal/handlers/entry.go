package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/bmc-backend/internal/apierr"
	"github.com/yungbote/bmc-backend/internal/services"
)

type EntryHandler struct {
	svc services.EntryService
}

func NewEntryHandler(svc services.EntryService) *EntryHandler {
	return &EntryHandler{svc: svc}
}

// GET /api/bmc/entries
func (h *EntryHandler) List(c *gin.Context) {
	input := services.EntryListInput{
		BlockType: c.Query("block_type"),
		TeamID:    queryTeamID(c),
		Params:    queryListParams(c),
	}
	if raw := c.Query("building_block_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			u := uint(id)
			input.BlockID = &u
		}
	}
	if raw := c.Query("canvas_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			u := uint(id)
			input.CanvasID = &u
		}
	}
	list, err := h.svc.List(c.Request.Context(), input)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, list)
}

// POST /api/bmc/entries
func (h *EntryHandler) Create(c *gin.Context) {
	var input services.EntryCreateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, string(apierr.CodeValidation), err)
		return
	}
	entry, err := h.svc.Create(c.Request.Context(), input)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, gin.H{"entry": entry})
}

type bulkCreateRequest struct {
	BlockID uint                 `json:"block_id"`
	Entries []services.EntryItem `json:"entries"`
	TeamID  *uint                `json:"team_id"`
}

// POST /api/bmc/entries/bulk
func (h *EntryHandler) BulkCreate(c *gin.Context) {
	var req bulkCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, string(apierr.CodeValidation), err)
		return
	}
	entries, err := h.svc.BulkCreate(c.Request.Context(), req.BlockID, req.Entries, req.TeamID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, gin.H{"entries": entries, "created": len(entries)})
}

// PUT /api/bmc/entries/:id
func (h *EntryHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input services.EntryUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, string(apierr.CodeValidation), err)
		return
	}
	entry, err := h.svc.Update(c.Request.Context(), id, input)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"entry": entry})
}

// DELETE /api/bmc/entries/:id
func (h *EntryHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id, queryTeamID(c)); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": true, "entry_id": id})
}

type reorderRequest struct {
	BlockID  uint   `json:"block_id"`
	EntryIDs []uint `json:"entry_ids"`
	TeamID   *uint  `json:"team_id"`
}

// PUT /api/bmc/entries/reorder
func (h *EntryHandler) Reorder(c *gin.Context) {
	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, string(apierr.CodeValidation), err)
		return
	}
	if err := h.svc.Reorder(c.Request.Context(), req.BlockID, req.EntryIDs, req.TeamID); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"reordered": len(req.EntryIDs)})
}
