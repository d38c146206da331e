package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sonahq/sona-backend/internal/apierr"
	"github.com/sonahq/sona-backend/internal/services"
)

type MethodologyHandler struct {
	methodologyService services.MethodologyService
}

func NewMethodologyHandler(methodologyService services.MethodologyService) *MethodologyHandler {
	return &MethodologyHandler{methodologyService: methodologyService}
}

func (h *MethodologyHandler) GetSection(c *gin.Context) {
	settings, err := h.methodologyService.GetSection(c.Request.Context(), c.Param("section"))
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"settings": settings})
}

type updateMethodologyRequest struct {
	Content string `json:"content"`
}

func (h *MethodologyHandler) UpdateSection(c *gin.Context) {
	var req updateMethodologyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.NewValidation("invalid request body: "+err.Error()))
		return
	}
	settings, err := h.methodologyService.UpdateSection(c.Request.Context(), c.Param("section"), req.Content)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"settings": settings})
}

func (h *MethodologyHandler) ListVersions(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}
	versions, err := h.methodologyService.ListVersions(c.Request.Context(), c.Param("section"), limit)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"versions": versions})
}

type revertMethodologyRequest struct {
	VersionNumber int `json:"version_number"`
}

func (h *MethodologyHandler) Revert(c *gin.Context) {
	var req revertMethodologyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.NewValidation("invalid request body: "+err.Error()))
		return
	}
	settings, err := h.methodologyService.Revert(c.Request.Context(), c.Param("section"), req.VersionNumber)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"settings": settings})
}
