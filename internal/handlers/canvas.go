package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/bmc-backend/internal/apierr"
	"github.com/yungbote/bmc-backend/internal/listquery"
	"github.com/yungbote/bmc-backend/internal/services"
)

type CanvasHandler struct {
	svc     services.CanvasService
	calcSvc services.CalculationService
}

func NewCanvasHandler(svc services.CanvasService, calcSvc services.CalculationService) *CanvasHandler {
	return &CanvasHandler{svc: svc, calcSvc: calcSvc}
}

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		RespondError(c, http.StatusBadRequest, string(apierr.CodeValidation), err)
		return 0, false
	}
	return uint(id), true
}

func queryListParams(c *gin.Context) listquery.Params {
	p := listquery.Params{
		Search:  c.Query("search"),
		SortBy:  c.Query("sort_by"),
		SortDir: c.Query("sort_dir"),
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil {
		p.Limit = limit
	}
	if offset, err := strconv.Atoi(c.Query("offset")); err == nil {
		p.Offset = offset
	}
	return p
}

func queryTeamID(c *gin.Context) *uint {
	if raw := c.Query("team_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			u := uint(id)
			return &u
		}
	}
	return nil
}

// GET /api/bmc/canvases
func (h *CanvasHandler) List(c *gin.Context) {
	input := services.CanvasListInput{
		Status: c.Query("status"),
		TeamID: queryTeamID(c),
		Params: queryListParams(c),
	}
	list, err := h.svc.List(c.Request.Context(), input)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, list)
}

// POST /api/bmc/canvases
func (h *CanvasHandler) Create(c *gin.Context) {
	var input services.CanvasCreateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, string(apierr.CodeValidation), err)
		return
	}
	canvas, err := h.svc.Create(c.Request.Context(), input)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, gin.H{
		"canvas":                canvas,
		"building_blocks_count": len(canvas.Blocks),
		"team_id":               canvas.TeamID,
	})
}

// GET /api/bmc/canvases/:id
func (h *CanvasHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	detail, err := h.svc.Get(c.Request.Context(), id, queryTeamID(c))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, detail)
}

// PUT /api/bmc/canvases/:id
func (h *CanvasHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input services.CanvasUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, string(apierr.CodeValidation), err)
		return
	}
	canvas, err := h.svc.Update(c.Request.Context(), id, input)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"canvas": canvas})
}

// DELETE /api/bmc/canvases/:id
func (h *CanvasHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id, queryTeamID(c)); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": true, "canvas_id": id})
}

// GET /api/bmc/canvases/:id/export
func (h *CanvasHandler) Export(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	sections, err := h.svc.Export(c.Request.Context(), id, queryTeamID(c))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, sections)
}

// GET /api/bmc/canvases/:id/calculate
func (h *CanvasHandler) Calculate(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	calc, err := h.calcSvc.Calculate(c.Request.Context(), id, queryTeamID(c))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, calc)
}
