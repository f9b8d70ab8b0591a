package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/darkbyte-app/darkbyte-server/internal/boost"
	"github.com/darkbyte-app/darkbyte-server/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ServerHandler handles server creation, joining, and boost display.
type ServerHandler struct {
	db     *gorm.DB
	boosts *boost.Service
}

// NewServerHandler constructs a ServerHandler.
func NewServerHandler(db *gorm.DB, boosts *boost.Service) *ServerHandler {
	return &ServerHandler{db: db, boosts: boosts}
}

// serverResponse is the public shape of a server.
type serverResponse struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	OwnerUserID uint64 `json:"owner_user_id"`
	BoostLevel  int    `json:"boost_level"`
}

func toServerResponse(server models.Server) serverResponse {
	return serverResponse{
		ID:          server.ID,
		Name:        server.Name,
		Description: server.Description,
		OwnerUserID: server.OwnerUserID,
		BoostLevel:  server.BoostLevel,
	}
}

// createServerRequest captures the payload for creating a server.
type createServerRequest struct {
	Name        string `json:"name"`        // Server name.
	Description string `json:"description"` // Server description.
}

// Create makes a new server owned by the caller. The owner is also recorded
// as a member.
func (h *ServerHandler) Create(c *gin.Context) {
	userID := getUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var body createServerRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	body.Name = strings.TrimSpace(body.Name)
	if body.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	now := time.Now().UTC()
	server := models.Server{
		Name:        body.Name,
		Description: strings.TrimSpace(body.Description),
		OwnerUserID: userID,
		BoostLevel:  0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	errTx := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if errCreate := tx.Create(&server).Error; errCreate != nil {
			return errCreate
		}
		member := models.ServerMember{
			ServerID:  server.ID,
			UserID:    userID,
			JoinedAt:  now,
			CreatedAt: now,
		}
		return tx.Create(&member).Error
	})
	if errTx != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create server failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"server": toServerResponse(server)})
}

// Join adds the caller as a member of the server. Joining twice is a no-op.
func (h *ServerHandler) Join(c *gin.Context) {
	userID := getUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	serverID, errParse := strconv.ParseUint(c.Param("id"), 10, 64)
	if errParse != nil || serverID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid server id"})
		return
	}

	var server models.Server
	if errFind := h.db.WithContext(c.Request.Context()).
		First(&server, serverID).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "server not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query server failed"})
		return
	}

	var count int64
	if errCount := h.db.WithContext(c.Request.Context()).
		Model(&models.ServerMember{}).
		Where("server_id = ? AND user_id = ?", serverID, userID).
		Count(&count).Error; errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query membership failed"})
		return
	}
	if count == 0 {
		now := time.Now().UTC()
		member := models.ServerMember{
			ServerID:  serverID,
			UserID:    userID,
			JoinedAt:  now,
			CreatedAt: now,
		}
		if errCreate := h.db.WithContext(c.Request.Context()).Create(&member).Error; errCreate != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "join server failed"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"server": toServerResponse(server)})
}

// serverBoostResponse describes one boost assigned to a server.
type serverBoostResponse struct {
	ID            uint64    `json:"id"`
	Value         int       `json:"value"`
	OwnerUserID   uint64    `json:"owner_user_id"`
	OwnerUsername string    `json:"owner_username"`
	CreatedAt     time.Time `json:"created_at"`
}

// Boosts lists the boosts currently assigned to a server.
func (h *ServerHandler) Boosts(c *gin.Context) {
	serverID, errParse := strconv.ParseUint(c.Param("id"), 10, 64)
	if errParse != nil || serverID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid server id"})
		return
	}

	var server models.Server
	if errFind := h.db.WithContext(c.Request.Context()).
		First(&server, serverID).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "server not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query server failed"})
		return
	}

	units, errList := h.boosts.GetServerBoosts(c.Request.Context(), serverID)
	if errList != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query boosts failed"})
		return
	}

	out := make([]serverBoostResponse, 0, len(units))
	for _, unit := range units {
		out = append(out, serverBoostResponse{
			ID:            unit.ID,
			Value:         unit.Value,
			OwnerUserID:   unit.OwnerUserID,
			OwnerUsername: unit.Owner.Username,
			CreatedAt:     unit.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"server": toServerResponse(server),
		"boosts": out,
	})
}

// Eligibility reports whether the caller can boost the server right now.
// Advisory only: Apply re-checks atomically.
func (h *ServerHandler) Eligibility(c *gin.Context) {
	userID := getUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	serverID, errParse := strconv.ParseUint(c.Param("id"), 10, 64)
	if errParse != nil || serverID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid server id"})
		return
	}

	eligible, errCheck := h.boosts.CanUserBoostServer(c.Request.Context(), userID, serverID)
	if errCheck != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "eligibility check failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"eligible": eligible})
}
