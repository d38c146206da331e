package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sonahq/sona-backend/internal/apierr"
	"github.com/sonahq/sona-backend/internal/services"
)

type MergeHandler struct {
	mergeService services.MergeService
}

func NewMergeHandler(mergeService services.MergeService) *MergeHandler {
	return &MergeHandler{mergeService: mergeService}
}

type mergeRequest struct {
	Name    string `json:"name"`
	Sources []struct {
		CloneID string         `json:"clone_id"`
		Weights map[string]any `json:"weights"`
	} `json:"sources"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

func (h *MergeHandler) Merge(c *gin.Context) {
	var req mergeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.NewValidation("invalid request body: "+err.Error()))
		return
	}
	sources := make([]services.MergeSourceSpec, 0, len(req.Sources))
	for _, src := range req.Sources {
		id, err := uuid.Parse(src.CloneID)
		if err != nil {
			RespondError(c, apierr.NewValidation("invalid source clone id '"+src.CloneID+"'"))
			return
		}
		sources = append(sources, services.MergeSourceSpec{CloneID: id, Weights: src.Weights})
	}
	clone, version, err := h.mergeService.Merge(c.Request.Context(), req.Name, sources, req.Provider, req.Model)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondCreated(c, gin.H{"clone": clone, "version": version})
}

func (h *MergeHandler) Lineage(c *gin.Context) {
	cloneID, err := parseID(c, "id")
	if err != nil {
		RespondError(c, err)
		return
	}
	sources, err := h.mergeService.Lineage(c.Request.Context(), cloneID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"sources": sources})
}
