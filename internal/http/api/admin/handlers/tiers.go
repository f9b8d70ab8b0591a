package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/darkbyte-app/darkbyte-server/internal/db"
	"github.com/darkbyte-app/darkbyte-server/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TierHandler manages admin CRUD endpoints for membership tiers.
type TierHandler struct {
	db *gorm.DB // Database handle for tier records.
}

// NewTierHandler constructs a tier handler.
func NewTierHandler(db *gorm.DB) *TierHandler {
	return &TierHandler{db: db}
}

func (h *TierHandler) formatTier(t *models.Tier) gin.H {
	return gin.H{
		"id":          t.ID,
		"name":        t.Name,
		"month_price": t.MonthPrice,
		"description": t.Description,
		"perks":       t.Perks,
		"sort_order":  t.SortOrder,
		"is_enabled":  t.IsEnabled,
		"created_at":  t.CreatedAt,
		"updated_at":  t.UpdatedAt,
	}
}

// normalizeTierPerks validates and normalizes the perks JSON payload.
func normalizeTierPerks(raw json.RawMessage) (datatypes.JSON, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return datatypes.JSON([]byte("[]")), nil
	}

	var perks []string
	if errUnmarshal := json.Unmarshal(raw, &perks); errUnmarshal != nil {
		return nil, errors.New("invalid perks")
	}
	cleaned := make([]string, 0, len(perks))
	for _, perk := range perks {
		perk = strings.TrimSpace(perk)
		if perk == "" {
			continue
		}
		cleaned = append(cleaned, perk)
	}
	rawPerks, errMarshal := json.Marshal(cleaned)
	if errMarshal != nil {
		return nil, errMarshal
	}
	return datatypes.JSON(rawPerks), nil
}

// createTierRequest captures the payload for creating a tier.
type createTierRequest struct {
	Name        string          `json:"name"`        // Tier name.
	MonthPrice  float64         `json:"month_price"` // Monthly price.
	Description string          `json:"description"` // Tier description.
	Perks       json.RawMessage `json:"perks"`       // Perk lines payload.
	SortOrder   int             `json:"sort_order"`  // Display order.
	IsEnabled   *bool           `json:"is_enabled"`  // Optional active flag.
}

// Create validates input and inserts a new tier.
func (h *TierHandler) Create(c *gin.Context) {
	var body createTierRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	body.Name = strings.TrimSpace(body.Name)
	if body.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}
	if body.MonthPrice < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "month_price must not be negative"})
		return
	}

	perks, errPerks := normalizeTierPerks(body.Perks)
	if errPerks != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid perks"})
		return
	}

	isEnabled := true
	if body.IsEnabled != nil {
		isEnabled = *body.IsEnabled
	}

	tier := models.Tier{
		Name:        body.Name,
		MonthPrice:  body.MonthPrice,
		Description: body.Description,
		Perks:       perks,
		SortOrder:   body.SortOrder,
		IsEnabled:   isEnabled,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&tier).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create tier failed"})
		return
	}

	c.JSON(http.StatusCreated, h.formatTier(&tier))
}

// List returns tiers, optionally filtered by a name search.
func (h *TierHandler) List(c *gin.Context) {
	query := h.db.WithContext(c.Request.Context()).Model(&models.Tier{})

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		pattern := db.NormalizeLikePattern(h.db, "%"+search+"%")
		query = query.Where(db.CaseInsensitiveLikeExpr(h.db, "name"), pattern)
	}

	var tiers []models.Tier
	if errFind := query.Order("sort_order ASC, id ASC").Find(&tiers).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query tiers failed"})
		return
	}

	out := make([]gin.H, 0, len(tiers))
	for i := range tiers {
		out = append(out, h.formatTier(&tiers[i]))
	}
	c.JSON(http.StatusOK, gin.H{"tiers": out})
}

// Get returns a single tier by ID.
func (h *TierHandler) Get(c *gin.Context) {
	id, errParse := strconv.ParseUint(c.Param("id"), 10, 64)
	if errParse != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tier id"})
		return
	}

	var tier models.Tier
	if errFind := h.db.WithContext(c.Request.Context()).First(&tier, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "tier not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query tier failed"})
		return
	}
	c.JSON(http.StatusOK, h.formatTier(&tier))
}

// updateTierRequest captures the payload for updating a tier.
type updateTierRequest struct {
	Name        *string         `json:"name"`        // Optional tier name.
	MonthPrice  *float64        `json:"month_price"` // Optional monthly price.
	Description *string         `json:"description"` // Optional description.
	Perks       json.RawMessage `json:"perks"`       // Optional perk lines.
	SortOrder   *int            `json:"sort_order"`  // Optional display order.
}

// Update applies partial changes to a tier.
func (h *TierHandler) Update(c *gin.Context) {
	id, errParse := strconv.ParseUint(c.Param("id"), 10, 64)
	if errParse != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tier id"})
		return
	}

	var body updateTierRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	updates := map[string]any{}
	if body.Name != nil {
		name := strings.TrimSpace(*body.Name)
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name must not be empty"})
			return
		}
		updates["name"] = name
	}
	if body.MonthPrice != nil {
		if *body.MonthPrice < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "month_price must not be negative"})
			return
		}
		updates["month_price"] = *body.MonthPrice
	}
	if body.Description != nil {
		updates["description"] = *body.Description
	}
	if len(body.Perks) > 0 {
		perks, errPerks := normalizeTierPerks(body.Perks)
		if errPerks != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid perks"})
			return
		}
		updates["perks"] = perks
	}
	if body.SortOrder != nil {
		updates["sort_order"] = *body.SortOrder
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
		return
	}

	res := h.db.WithContext(c.Request.Context()).
		Model(&models.Tier{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update tier failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "tier not found"})
		return
	}

	var tier models.Tier
	if errFind := h.db.WithContext(c.Request.Context()).First(&tier, id).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query tier failed"})
		return
	}
	c.JSON(http.StatusOK, h.formatTier(&tier))
}

// Enable marks a tier purchasable.
func (h *TierHandler) Enable(c *gin.Context) {
	h.setEnabled(c, true)
}

// Disable marks a tier not purchasable. Existing memberships are unaffected.
func (h *TierHandler) Disable(c *gin.Context) {
	h.setEnabled(c, false)
}

func (h *TierHandler) setEnabled(c *gin.Context, enabled bool) {
	id, errParse := strconv.ParseUint(c.Param("id"), 10, 64)
	if errParse != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tier id"})
		return
	}

	res := h.db.WithContext(c.Request.Context()).
		Model(&models.Tier{}).
		Where("id = ?", id).
		Update("is_enabled", enabled)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update tier failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "tier not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
