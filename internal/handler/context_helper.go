package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/nrb-complaints-api/internal/middleware"
	"github.com/noah-isme/nrb-complaints-api/internal/models"
)

func identityFromContext(c *gin.Context) *models.Identity {
	return middleware.CurrentIdentity(c)
}
