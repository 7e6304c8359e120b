package handlers

import (
	"querykit/internal/domain"

	"github.com/gin-gonic/gin"
)

// NoRoute answers unknown paths in the standard error shape.
func NoRoute(c *gin.Context) {
	RespondDomainError(c, domain.NotFoundError{Resource: "route " + c.Request.Method + " " + c.Request.URL.Path})
}
