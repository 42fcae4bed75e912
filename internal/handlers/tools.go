package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/bmc-backend/internal/apierr"
	"github.com/yungbote/bmc-backend/internal/tools"
)

type ToolsHandler struct {
	registry *tools.Registry
}

func NewToolsHandler(registry *tools.Registry) *ToolsHandler {
	return &ToolsHandler{registry: registry}
}

// GET /api/tools
func (h *ToolsHandler) List(c *gin.Context) {
	RespondOK(c, gin.H{"tools": h.registry.List()})
}

type executeRequest struct {
	Args map[string]interface{} `json:"args"`
}

// POST /api/tools/:name
//
// The tool result envelope is returned as-is with HTTP 200; the outcome
// lives in the success flag and error code, matching tool-dispatch callers
// that do not branch on HTTP status.
func (h *ToolsHandler) Execute(c *gin.Context) {
	var req executeRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		RespondError(c, http.StatusBadRequest, string(apierr.CodeValidation), err)
		return
	}
	result := h.registry.Execute(c.Request.Context(), c.Param("name"), req.Args)
	RespondOK(c, result)
}
