package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/sonahq/sona-backend/internal/services"
)

type ProviderHandler struct {
	providerService services.ProviderService
}

func NewProviderHandler(providerService services.ProviderService) *ProviderHandler {
	return &ProviderHandler{providerService: providerService}
}

func (h *ProviderHandler) List(c *gin.Context) {
	RespondOK(c, gin.H{"providers": h.providerService.List(c.Request.Context())})
}

func (h *ProviderHandler) TestConnection(c *gin.Context) {
	ok, err := h.providerService.TestConnection(c.Request.Context(), c.Param("name"))
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"provider": c.Param("name"), "ok": ok})
}
