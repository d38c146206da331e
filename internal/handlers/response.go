package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sonahq/sona-backend/internal/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Kind    string `json:"kind,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// RespondError maps a service error onto the wire: the apierr kind picks
// the status code and the stable machine-readable code rides along.
func RespondError(c *gin.Context, err error) {
	var apiErr *apierr.Error
	if errors.As(err, &apiErr) {
		c.JSON(apierr.HTTPStatus(err), ErrorEnvelope{
			Error: APIError{
				Message: apiErr.Error(),
				Code:    apiErr.Code,
				Kind:    string(apiErr.Kind),
			},
		})
		return
	}
	c.JSON(http.StatusInternalServerError, ErrorEnvelope{
		Error: APIError{
			Message: err.Error(),
			Code:    "INTERNAL_ERROR",
			Kind:    string(apierr.KindInternal),
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
