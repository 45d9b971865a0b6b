package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/homesync/homesync-backend/internal/apierr"
)

// respondError maps the service error taxonomy to an HTTP response.
func respondError(c *gin.Context, err error) {
	c.JSON(apierr.StatusOf(err), gin.H{
		"error": err.Error(),
		"code":  apierr.CodeOf(err),
	})
}
