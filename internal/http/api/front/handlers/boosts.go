package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/darkbyte-app/darkbyte-server/internal/boost"
	"github.com/darkbyte-app/darkbyte-server/internal/models"
	"github.com/gin-gonic/gin"
)

// BoostHandler handles boost listing, assignment, and removal for users.
type BoostHandler struct {
	boosts *boost.Service
}

// NewBoostHandler constructs a BoostHandler.
func NewBoostHandler(boosts *boost.Service) *BoostHandler {
	return &BoostHandler{boosts: boosts}
}

// boostResponse is the public shape of a boost unit.
type boostResponse struct {
	ID         uint64     `json:"id"`
	Value      int        `json:"value"`
	ServerID   *uint64    `json:"server_id"`
	ServerName string     `json:"server_name,omitempty"`
	TierName   string     `json:"tier_name,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func toBoostResponse(unit models.BoostUnit) boostResponse {
	resp := boostResponse{
		ID:        unit.ID,
		Value:     unit.Value,
		ServerID:  unit.ServerID,
		ExpiresAt: unit.ExpiresAt,
		CreatedAt: unit.CreatedAt,
	}
	if unit.Server != nil {
		resp.ServerName = unit.Server.Name
	}
	resp.TierName = unit.SourceMembership.Tier.Name
	return resp
}

// List returns the caller's active boosts.
func (h *BoostHandler) List(c *gin.Context) {
	userID := getUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	units, errList := h.boosts.GetUserBoosts(c.Request.Context(), userID)
	if errList != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query boosts failed"})
		return
	}

	out := make([]boostResponse, 0, len(units))
	for _, unit := range units {
		out = append(out, toBoostResponse(unit))
	}
	c.JSON(http.StatusOK, gin.H{"boosts": out})
}

// applyBoostRequest captures the payload for assigning a boost.
type applyBoostRequest struct {
	BoostID  uint64 `json:"boost_id"`  // Unit to assign.
	ServerID uint64 `json:"server_id"` // Target server.
}

// Apply assigns one of the caller's available boosts to a server.
func (h *BoostHandler) Apply(c *gin.Context) {
	userID := getUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var body applyBoostRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if body.BoostID == 0 || body.ServerID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "boost_id and server_id are required"})
		return
	}

	unit, errApply := h.boosts.ApplyBoost(c.Request.Context(), body.BoostID, body.ServerID, userID)
	if errApply != nil {
		switch {
		case errors.Is(errApply, boost.ErrBoostNotAvailable):
			c.JSON(http.StatusNotFound, gin.H{"error": errApply.Error()})
		case errors.Is(errApply, boost.ErrServerNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": errApply.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "apply boost failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"boost": toBoostResponse(*unit)})
}

// Remove detaches one of the caller's boosts from its server.
func (h *BoostHandler) Remove(c *gin.Context) {
	userID := getUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	boostID, errParse := strconv.ParseUint(c.Param("id"), 10, 64)
	if errParse != nil || boostID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid boost id"})
		return
	}

	unit, errRemove := h.boosts.RemoveBoost(c.Request.Context(), boostID, userID)
	if errRemove != nil {
		if errors.Is(errRemove, boost.ErrBoostNotAssigned) {
			c.JSON(http.StatusNotFound, gin.H{"error": errRemove.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "remove boost failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"boost": toBoostResponse(*unit)})
}
