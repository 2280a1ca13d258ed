package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/giovaniif/instrument-closet/domain/fault"
)

// StatusOf maps an error kind to its HTTP status. Forbidden is reported as 401
// to keep the responses clients already handle.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, fault.ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, fault.ErrUnauthorized), errors.Is(err, fault.ErrForbidden):
		return http.StatusUnauthorized
	case errors.Is(err, fault.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, fault.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	status := StatusOf(err)
	message := fault.Message(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "request failed", "route", c.FullPath(), "error", err)
		if status == http.StatusInternalServerError {
			message = "Something went wrong."
		}
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{
		"error": gin.H{"message": message, "status": status},
	})
}

func badRequest(c *gin.Context, message string) {
	writeError(c, fault.Invalid("%s", message))
}
