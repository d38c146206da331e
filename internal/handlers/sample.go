package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/sonahq/sona-backend/internal/apierr"
	"github.com/sonahq/sona-backend/internal/services"
)

type SampleHandler struct {
	sampleService services.SampleService
}

func NewSampleHandler(sampleService services.SampleService) *SampleHandler {
	return &SampleHandler{sampleService: sampleService}
}

type addSampleRequest struct {
	Content        string `json:"content"`
	ContentType    string `json:"content_type"`
	SourceType     string `json:"source_type"`
	SourceURL      string `json:"source_url"`
	SourceFilename string `json:"source_filename"`
}

func (h *SampleHandler) Add(c *gin.Context) {
	cloneID, err := parseID(c, "id")
	if err != nil {
		RespondError(c, err)
		return
	}
	var req addSampleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.NewValidation("invalid request body: "+err.Error()))
		return
	}
	sample, err := h.sampleService.Add(c.Request.Context(), services.AddSampleInput{
		CloneID:        cloneID,
		Content:        req.Content,
		ContentType:    req.ContentType,
		SourceType:     req.SourceType,
		SourceURL:      req.SourceURL,
		SourceFilename: req.SourceFilename,
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondCreated(c, gin.H{"sample": sample})
}

func (h *SampleHandler) ListByClone(c *gin.Context) {
	cloneID, err := parseID(c, "id")
	if err != nil {
		RespondError(c, err)
		return
	}
	samples, total, err := h.sampleService.ListByClone(c.Request.Context(), cloneID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"samples": samples, "total": total})
}

func (h *SampleHandler) Delete(c *gin.Context) {
	sampleID, err := parseID(c, "sampleId")
	if err != nil {
		RespondError(c, err)
		return
	}
	if err := h.sampleService.Delete(c.Request.Context(), sampleID); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}
