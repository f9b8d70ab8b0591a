package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/darkbyte-app/darkbyte-server/internal/db"
	"github.com/darkbyte-app/darkbyte-server/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ServerAdminHandler exposes read endpoints over servers for the dashboard.
type ServerAdminHandler struct {
	db *gorm.DB
}

// NewServerAdminHandler constructs a ServerAdminHandler.
func NewServerAdminHandler(db *gorm.DB) *ServerAdminHandler {
	return &ServerAdminHandler{db: db}
}

func (h *ServerAdminHandler) formatServer(s *models.Server) gin.H {
	out := gin.H{
		"id":            s.ID,
		"name":          s.Name,
		"description":   s.Description,
		"owner_user_id": s.OwnerUserID,
		"boost_level":   s.BoostLevel,
		"created_at":    s.CreatedAt,
		"updated_at":    s.UpdatedAt,
	}
	if s.Owner.ID != 0 {
		out["owner_username"] = s.Owner.Username
	}
	return out
}

// List returns servers with owners loaded, optionally filtered by name,
// highest boost level first.
func (h *ServerAdminHandler) List(c *gin.Context) {
	query := h.db.WithContext(c.Request.Context()).Model(&models.Server{}).Preload("Owner")

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		pattern := db.NormalizeLikePattern(h.db, "%"+search+"%")
		query = query.Where(db.CaseInsensitiveLikeExpr(h.db, "name"), pattern)
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
		c.JSON(http.StatusInternalServerError, gin.H{"error": "count servers failed"})
		return
	}

	var servers []models.Server
	if errFind := query.
		Order("boost_level DESC, id ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&servers).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query servers failed"})
		return
	}

	out := make([]gin.H, 0, len(servers))
	for i := range servers {
		out = append(out, h.formatServer(&servers[i]))
	}
	c.JSON(http.StatusOK, gin.H{
		"servers": out,
		"total":   total,
		"page":    page,
	})
}
