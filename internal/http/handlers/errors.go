package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard/internal/logger"
	"taskboard/internal/repository"
	"taskboard/internal/service"
)

// respondError maps domain errors to status codes. Unknown errors are logged and hidden.
func respondError(c *gin.Context, err error) {
	var batchErr *service.BatchError
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &batchErr):
		logger.Error("batch operation failed", "op", batchErr.Op, "failed", batchErr.Failed, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":  batchErr.Error(),
			"failed": batchErr.Failed,
		})
	default:
		logger.Error("request failed", "method", c.Request.Method, "path", c.Request.URL.Path, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
