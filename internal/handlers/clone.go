package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sonahq/sona-backend/internal/apierr"
	"github.com/sonahq/sona-backend/internal/services"
)

type CloneHandler struct {
	cloneService services.CloneService
}

func NewCloneHandler(cloneService services.CloneService) *CloneHandler {
	return &CloneHandler{cloneService: cloneService}
}

type createCloneRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

func (h *CloneHandler) Create(c *gin.Context) {
	var req createCloneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.NewValidation("invalid request body: "+err.Error()))
		return
	}
	clone, err := h.cloneService.Create(c.Request.Context(), req.Name, req.Description, req.Tags)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondCreated(c, gin.H{"clone": clone})
}

func (h *CloneHandler) Get(c *gin.Context) {
	cloneID, err := parseID(c, "id")
	if err != nil {
		RespondError(c, err)
		return
	}
	clone, err := h.cloneService.Get(c.Request.Context(), cloneID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"clone": clone})
}

func (h *CloneHandler) List(c *gin.Context) {
	clones, total, err := h.cloneService.List(c.Request.Context(), c.Query("type"), c.Query("search"))
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"clones": clones, "total": total})
}

type updateCloneRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Tags        []string `json:"tags"`
}

func (h *CloneHandler) Update(c *gin.Context) {
	cloneID, err := parseID(c, "id")
	if err != nil {
		RespondError(c, err)
		return
	}
	var req updateCloneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.NewValidation("invalid request body: "+err.Error()))
		return
	}
	clone, err := h.cloneService.Update(c.Request.Context(), cloneID, services.CloneUpdate{
		Name:        req.Name,
		Description: req.Description,
		Tags:        req.Tags,
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"clone": clone})
}

func (h *CloneHandler) Delete(c *gin.Context) {
	cloneID, err := parseID(c, "id")
	if err != nil {
		RespondError(c, err)
		return
	}
	if err := h.cloneService.SoftDelete(c.Request.Context(), cloneID); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}

func (h *CloneHandler) Restore(c *gin.Context) {
	cloneID, err := parseID(c, "id")
	if err != nil {
		RespondError(c, err)
		return
	}
	clone, err := h.cloneService.Restore(c.Request.Context(), cloneID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"clone": clone})
}

func (h *CloneHandler) ListDeleted(c *gin.Context) {
	clones, err := h.cloneService.ListDeleted(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"clones": clones})
}

func (h *CloneHandler) Confidence(c *gin.Context) {
	cloneID, err := parseID(c, "id")
	if err != nil {
		RespondError(c, err)
		return
	}
	breakdown, err := h.cloneService.Confidence(c.Request.Context(), cloneID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"confidence": breakdown})
}

func parseID(c *gin.Context, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		return uuid.Nil, apierr.NewValidation("invalid id '" + c.Param(param) + "'")
	}
	return id, nil
}
