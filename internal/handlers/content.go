package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sonahq/sona-backend/internal/apierr"
	"github.com/sonahq/sona-backend/internal/repos"
	"github.com/sonahq/sona-backend/internal/services"
)

type ContentHandler struct {
	contentService services.ContentService
	scoringService services.ScoringService
}

func NewContentHandler(contentService services.ContentService, scoringService services.ScoringService) *ContentHandler {
	return &ContentHandler{contentService: contentService, scoringService: scoringService}
}

type generateRequest struct {
	CloneID    string         `json:"clone_id"`
	Platforms  []string       `json:"platforms"`
	InputText  string         `json:"input_text"`
	Properties map[string]any `json:"properties"`
	Topic      string         `json:"topic"`
	Campaign   string         `json:"campaign"`
	Provider   string         `json:"provider"`
	Model      string         `json:"model"`
}

func (h *ContentHandler) Generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.NewValidation("invalid request body: "+err.Error()))
		return
	}
	cloneID, err := uuid.Parse(req.CloneID)
	if err != nil {
		RespondError(c, apierr.NewValidation("invalid clone id '"+req.CloneID+"'"))
		return
	}
	results, err := h.contentService.Generate(c.Request.Context(), services.GenerateInput{
		CloneID:    cloneID,
		Platforms:  req.Platforms,
		InputText:  req.InputText,
		Properties: req.Properties,
		Topic:      req.Topic,
		Campaign:   req.Campaign,
		Provider:   req.Provider,
		Model:      req.Model,
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondCreated(c, gin.H{"content": results})
}

func (h *ContentHandler) List(c *gin.Context) {
	filter := repos.ContentFilter{
		Platform: c.Query("platform"),
		Status:   c.Query("status"),
		Search:   c.Query("search"),
		Sort:     c.Query("sort"),
		Order:    c.Query("order"),
	}
	if raw := c.Query("clone_id"); raw != "" {
		cloneID, err := uuid.Parse(raw)
		if err != nil {
			RespondError(c, apierr.NewValidation("invalid clone id '"+raw+"'"))
			return
		}
		filter.CloneID = cloneID
	}
	if raw := c.Query("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			filter.Offset = n
		}
	}
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			filter.Limit = n
		}
	}
	items, total, err := h.contentService.List(c.Request.Context(), filter)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"content": items, "total": total})
}

func (h *ContentHandler) Get(c *gin.Context) {
	contentID, err := parseID(c, "id")
	if err != nil {
		RespondError(c, err)
		return
	}
	item, err := h.contentService.Get(c.Request.Context(), contentID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"content": item})
}

type updateContentRequest struct {
	ContentCurrent *string  `json:"content_current"`
	Status         *string  `json:"status"`
	Topic          *string  `json:"topic"`
	Campaign       *string  `json:"campaign"`
	Tags           []string `json:"tags"`
}

func (h *ContentHandler) Update(c *gin.Context) {
	contentID, err := parseID(c, "id")
	if err != nil {
		RespondError(c, err)
		return
	}
	var req updateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.NewValidation("invalid request body: "+err.Error()))
		return
	}
	item, err := h.contentService.Update(c.Request.Context(), contentID, services.ContentUpdate{
		ContentCurrent: req.ContentCurrent,
		Status:         req.Status,
		Topic:          req.Topic,
		Campaign:       req.Campaign,
		Tags:           req.Tags,
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"content": item})
}

func (h *ContentHandler) Delete(c *gin.Context) {
	contentID, err := parseID(c, "id")
	if err != nil {
		RespondError(c, err)
		return
	}
	if err := h.contentService.Delete(c.Request.Context(), contentID); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}

func (h *ContentHandler) ListVersions(c *gin.Context) {
	contentID, err := parseID(c, "id")
	if err != nil {
		RespondError(c, err)
		return
	}
	versions, err := h.contentService.ListVersions(c.Request.Context(), contentID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"versions": versions})
}

type restoreVersionRequest struct {
	VersionNumber int `json:"version_number"`
}

func (h *ContentHandler) RestoreVersion(c *gin.Context) {
	contentID, err := parseID(c, "id")
	if err != nil {
		RespondError(c, err)
		return
	}
	var req restoreVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.NewValidation("invalid request body: "+err.Error()))
		return
	}
	item, err := h.contentService.RestoreVersion(c.Request.Context(), contentID, req.VersionNumber)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"content": item})
}

type scoreRequest struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

func (h *ContentHandler) Score(c *gin.Context) {
	contentID, err := parseID(c, "id")
	if err != nil {
		RespondError(c, err)
		return
	}
	var req scoreRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			RespondError(c, apierr.NewValidation("invalid request body: "+err.Error()))
			return
		}
	}
	item, err := h.scoringService.Score(c.Request.Context(), contentID, req.Provider, req.Model)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"content": item})
}
