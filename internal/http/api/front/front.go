package front

import (
	"net/http"
	"strings"

	"github.com/darkbyte-app/darkbyte-server/internal/boost"
	"github.com/darkbyte-app/darkbyte-server/internal/config"
	"github.com/darkbyte-app/darkbyte-server/internal/http/api/front/handlers"
	"github.com/darkbyte-app/darkbyte-server/internal/membership"
	"github.com/darkbyte-app/darkbyte-server/internal/models"
	"github.com/darkbyte-app/darkbyte-server/internal/ratelimit"
	"github.com/darkbyte-app/darkbyte-server/internal/security"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RegisterFrontRoutes registers the user-facing routes and middleware.
func RegisterFrontRoutes(r *gin.Engine, db *gorm.DB, jwtCfg config.JWTConfig, rlCfg config.RateLimitConfig, boosts *boost.Service, memberships *membership.Service, limiter *ratelimit.Manager) {
	if r == nil || db == nil {
		return
	}

	frontGroup := r.Group("/v0")

	authHandler := handlers.NewAuthHandler(db, jwtCfg)
	frontGroup.POST("/auth/register", authHandler.Register)
	frontGroup.POST("/auth/login", authHandler.Login)

	membershipHandler := handlers.NewMembershipHandler(db, memberships)
	frontGroup.GET("/tiers", membershipHandler.ListTiers)

	authed := frontGroup.Group("")
	authed.Use(userAuthMiddleware(db, jwtCfg))

	authed.POST("/memberships", membershipHandler.Activate)
	authed.GET("/memberships", membershipHandler.List)

	serverHandler := handlers.NewServerHandler(db, boosts)
	authed.POST("/servers", serverHandler.Create)
	authed.POST("/servers/:id/join", serverHandler.Join)
	authed.GET("/servers/:id/boosts", serverHandler.Boosts)
	authed.GET("/servers/:id/boost-eligibility", serverHandler.Eligibility)

	boostHandler := handlers.NewBoostHandler(boosts)
	authed.GET("/boosts", boostHandler.List)

	limited := authed.Group("")
	limited.Use(rateLimitMiddleware(limiter, rlCfg.PerUserPerSecond))
	limited.POST("/boosts/apply", boostHandler.Apply)
	limited.DELETE("/boosts/:id", boostHandler.Remove)
}

// userAuthMiddleware validates user JWTs and loads the user ID into context.
func userAuthMiddleware(db *gorm.DB, jwtCfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}
		token = strings.TrimSpace(token)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "empty token"})
			return
		}

		userID, errJWT := security.ParseUserToken(jwtCfg.Secret, token)
		if errJWT != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		var user models.User
		if errFind := db.WithContext(c.Request.Context()).First(&user, userID).Error; errFind != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}
		if !user.Active {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "account disabled"})
			return
		}

		c.Set(handlers.ContextUserIDKey, user.ID)
		c.Next()
	}
}

// rateLimitMiddleware enforces the per-user limit on mutating boost routes.
func rateLimitMiddleware(limiter *ratelimit.Manager, limit int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil || limit <= 0 {
			c.Next()
			return
		}
		userID, _ := c.Get(handlers.ContextUserIDKey)
		id, _ := userID.(uint64)
		key := ratelimit.KeyForUser(id)
		result, errAllow := limiter.Allow(c.Request.Context(), key, limit)
		if errAllow != nil {
			c.Next()
			return
		}
		if !result.Allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
