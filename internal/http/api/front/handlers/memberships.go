package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/darkbyte-app/darkbyte-server/internal/membership"
	"github.com/darkbyte-app/darkbyte-server/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// MembershipHandler handles tier listing and membership activation.
type MembershipHandler struct {
	db          *gorm.DB
	memberships *membership.Service
}

// NewMembershipHandler constructs a MembershipHandler.
func NewMembershipHandler(db *gorm.DB, memberships *membership.Service) *MembershipHandler {
	return &MembershipHandler{db: db, memberships: memberships}
}

// tierResponse is the public shape of a membership tier.
type tierResponse struct {
	ID          uint64  `json:"id"`
	Name        string  `json:"name"`
	MonthPrice  float64 `json:"month_price"`
	Description string  `json:"description"`
	Perks       any     `json:"perks"`
}

// ListTiers returns the purchasable tiers in display order.
func (h *MembershipHandler) ListTiers(c *gin.Context) {
	var tiers []models.Tier
	if errFind := h.db.WithContext(c.Request.Context()).
		Where("is_enabled = ?", true).
		Order("sort_order ASC, id ASC").
		Find(&tiers).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query tiers failed"})
		return
	}

	out := make([]tierResponse, 0, len(tiers))
	for _, tier := range tiers {
		out = append(out, tierResponse{
			ID:          tier.ID,
			Name:        tier.Name,
			MonthPrice:  tier.MonthPrice,
			Description: tier.Description,
			Perks:       tier.Perks,
		})
	}
	c.JSON(http.StatusOK, gin.H{"tiers": out})
}

// activateMembershipRequest captures the payload for activating a membership.
type activateMembershipRequest struct {
	TierID uint64 `json:"tier_id"` // Tier to subscribe to.
}

// membershipResponse is the public shape of a membership.
type membershipResponse struct {
	ID            uint64     `json:"id"`
	TierID        uint64     `json:"tier_id"`
	TierName      string     `json:"tier_name"`
	StartedAt     time.Time  `json:"started_at"`
	ExpiresAt     *time.Time `json:"expires_at"`
	BoostsGranted bool       `json:"boosts_granted"`
}

func toMembershipResponse(m models.Membership) membershipResponse {
	return membershipResponse{
		ID:            m.ID,
		TierID:        m.TierID,
		TierName:      m.Tier.Name,
		StartedAt:     m.StartedAt,
		ExpiresAt:     m.ExpiresAt,
		BoostsGranted: m.BoostsGranted,
	}
}

// Activate subscribes the caller to a tier and grants any included boosts.
func (h *MembershipHandler) Activate(c *gin.Context) {
	userID := getUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var body activateMembershipRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if body.TierID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tier_id is required"})
		return
	}

	record, granted, errActivate := h.memberships.Activate(c.Request.Context(), userID, body.TierID)
	if errActivate != nil {
		if errors.Is(errActivate, membership.ErrTierNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "tier not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "activate membership failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"membership":     toMembershipResponse(*record),
		"boosts_granted": len(granted),
	})
}

// List returns the caller's memberships, newest first.
func (h *MembershipHandler) List(c *gin.Context) {
	userID := getUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	rows, errList := h.memberships.ListForUser(c.Request.Context(), userID)
	if errList != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query memberships failed"})
		return
	}

	out := make([]membershipResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, toMembershipResponse(row))
	}
	c.JSON(http.StatusOK, gin.H{"memberships": out})
}
