package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Version is the build version, overridable at link time.
var Version = "dev"

// VersionHandler reports the running build version.
type VersionHandler struct{}

// NewVersionHandler constructs a VersionHandler.
func NewVersionHandler() *VersionHandler {
	return &VersionHandler{}
}

// GetVersion returns the build version.
func (h *VersionHandler) GetVersion(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"version": Version})
}
