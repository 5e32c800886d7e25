package controllers

import (
	"github.com/gin-gonic/gin"

	apperrors "github.com/KeshRD/BrightBuy-G16/common/errors"
)

// respondError maps a service error to its HTTP status and message. Guard
// failures keep their distinct messages so clients can tell "stock ran out"
// from "already claimed" from "not your delivery".
func respondError(c *gin.Context, err error) {
	appErr := apperrors.AsError(err)
	c.JSON(appErr.Code, gin.H{"error": appErr.Message})
}
