package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/sonahq/sona-backend/internal/apierr"
	"github.com/sonahq/sona-backend/internal/services"
)

type DNAHandler struct {
	dnaService services.DNAService
}

func NewDNAHandler(dnaService services.DNAService) *DNAHandler {
	return &DNAHandler{dnaService: dnaService}
}

type analyzeRequest struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

func (h *DNAHandler) Analyze(c *gin.Context) {
	cloneID, err := parseID(c, "id")
	if err != nil {
		RespondError(c, err)
		return
	}
	var req analyzeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			RespondError(c, apierr.NewValidation("invalid request body: "+err.Error()))
			return
		}
	}
	version, err := h.dnaService.Analyze(c.Request.Context(), cloneID, req.Provider, req.Model)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondCreated(c, gin.H{"version": version})
}

func (h *DNAHandler) Current(c *gin.Context) {
	cloneID, err := parseID(c, "id")
	if err != nil {
		RespondError(c, err)
		return
	}
	version, err := h.dnaService.Current(c.Request.Context(), cloneID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"version": version})
}

func (h *DNAHandler) ListVersions(c *gin.Context) {
	cloneID, err := parseID(c, "id")
	if err != nil {
		RespondError(c, err)
		return
	}
	versions, err := h.dnaService.ListVersions(c.Request.Context(), cloneID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"versions": versions})
}

type manualEditRequest struct {
	Data             map[string]any `json:"data"`
	ProminenceScores map[string]any `json:"prominence_scores"`
}

func (h *DNAHandler) ManualEdit(c *gin.Context) {
	cloneID, err := parseID(c, "id")
	if err != nil {
		RespondError(c, err)
		return
	}
	var req manualEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.NewValidation("invalid request body: "+err.Error()))
		return
	}
	version, err := h.dnaService.ManualEdit(c.Request.Context(), cloneID, req.Data, req.ProminenceScores)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondCreated(c, gin.H{"version": version})
}

type revertRequest struct {
	VersionNumber int `json:"version_number"`
}

func (h *DNAHandler) Revert(c *gin.Context) {
	cloneID, err := parseID(c, "id")
	if err != nil {
		RespondError(c, err)
		return
	}
	var req revertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.NewValidation("invalid request body: "+err.Error()))
		return
	}
	version, err := h.dnaService.Revert(c.Request.Context(), cloneID, req.VersionNumber)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondCreated(c, gin.H{"version": version})
}
