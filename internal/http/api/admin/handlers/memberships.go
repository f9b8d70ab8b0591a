package handlers

import (
	"net/http"
	"strconv"

	"github.com/darkbyte-app/darkbyte-server/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// MembershipAdminHandler exposes read endpoints over memberships for the dashboard.
type MembershipAdminHandler struct {
	db *gorm.DB
}

// NewMembershipAdminHandler constructs a MembershipAdminHandler.
func NewMembershipAdminHandler(db *gorm.DB) *MembershipAdminHandler {
	return &MembershipAdminHandler{db: db}
}

func (h *MembershipAdminHandler) formatMembership(m *models.Membership) gin.H {
	return gin.H{
		"id":             m.ID,
		"user_id":        m.UserID,
		"username":       m.User.Username,
		"tier_id":        m.TierID,
		"tier_name":      m.Tier.Name,
		"started_at":     m.StartedAt,
		"expires_at":     m.ExpiresAt,
		"boosts_granted": m.BoostsGranted,
		"created_at":     m.CreatedAt,
	}
}

// List returns memberships with users and tiers loaded, newest first.
// Supports optional user_id and tier_id filters.
func (h *MembershipAdminHandler) List(c *gin.Context) {
	query := h.db.WithContext(c.Request.Context()).
		Model(&models.Membership{}).
		Preload("User").
		Preload("Tier")

	if raw := c.Query("user_id"); raw != "" {
		userID, errParse := strconv.ParseUint(raw, 10, 64)
		if errParse != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
			return
		}
		query = query.Where("user_id = ?", userID)
	}
	if raw := c.Query("tier_id"); raw != "" {
		tierID, errParse := strconv.ParseUint(raw, 10, 64)
		if errParse != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tier_id"})
			return
		}
		query = query.Where("tier_id = ?", tierID)
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}

	var total int64
	if errCount := query.Count(&total).Error; errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "count memberships failed"})
		return
	}

	var rows []models.Membership
	if errFind := query.
		Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query memberships failed"})
		return
	}

	out := make([]gin.H, 0, len(rows))
	for i := range rows {
		out = append(out, h.formatMembership(&rows[i]))
	}
	c.JSON(http.StatusOK, gin.H{
		"memberships": out,
		"total":       total,
		"page":        page,
	})
}
