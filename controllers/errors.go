package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"nutridiary/docstore"
	"nutridiary/identity"
	"nutridiary/middlewares"
	"nutridiary/services"
)

// respondError maps service errors onto HTTP statuses. Anything unknown is a
// 500 the UI may retry.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrNotLoggedIn), errors.Is(err, identity.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, services.ErrProfileNotFound), errors.Is(err, docstore.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, identity.ErrUnavailable):
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func userIDFromCtx(c *gin.Context) (string, bool) {
	uid := c.GetString(middlewares.ContextUserID)
	return uid, uid != ""
}
