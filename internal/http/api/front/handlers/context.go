package handlers

import "github.com/gin-gonic/gin"

// ContextUserIDKey is the gin context key holding the authenticated user ID.
const ContextUserIDKey = "userID"

// getUserID returns the authenticated user ID from the gin context.
func getUserID(c *gin.Context) uint64 {
	v, exists := c.Get(ContextUserIDKey)
	if !exists {
		return 0
	}
	id, ok := v.(uint64)
	if !ok {
		return 0
	}
	return id
}
