// Package boost implements the boost ledger: the one-time grant of boost
// units for qualifying memberships, and the assignment service that moves
// units between the owner's pool and a server while keeping the server's
// boost level counter consistent with the assigned unit rows.
package boost

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/darkbyte-app/darkbyte-server/internal/db"
	"github.com/darkbyte-app/darkbyte-server/internal/models"
	"gorm.io/gorm"
)

// Precondition failures surfaced to callers. Handlers map these to 4xx.
var (
	// ErrBoostNotAvailable indicates the unit does not exist, is not owned
	// by the caller, or is not in the available pool.
	ErrBoostNotAvailable = errors.New("boost not found or already used")
	// ErrBoostNotAssigned indicates the unit is not currently assigned to
	// any server.
	ErrBoostNotAssigned = errors.New("active boost not found or not assigned to a server")
	// ErrServerNotFound indicates the target server does not exist.
	ErrServerNotFound = errors.New("server not found")
)

// Service owns all reads and writes of boost units and of the derived
// Server.BoostLevel counter.
type Service struct {
	db *gorm.DB
}

// NewService constructs a boost Service.
func NewService(conn *gorm.DB) *Service {
	return &Service{db: conn}
}

// availableCond filters units in the available pool: active, unassigned,
// and not expired at the given instant.
const availableCond = "is_active = ? AND server_id IS NULL AND (expires_at IS NULL OR expires_at > ?)"

// ApplyBoost assigns an available unit owned by userID to the server.
// Precondition check and both writes happen in one transaction: either the
// unit is assigned and the counter incremented, or nothing changes.
func (s *Service) ApplyBoost(ctx context.Context, boostID, serverID, userID uint64) (*models.BoostUnit, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("boost service: not initialized")
	}

	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()

		var unit models.BoostUnit
		if errFind := db.LockForUpdate(tx).
			Where("id = ? AND owner_user_id = ?", boostID, userID).
			Where(availableCond, true, now).
			First(&unit).Error; errFind != nil {
			if errors.Is(errFind, gorm.ErrRecordNotFound) {
				return ErrBoostNotAvailable
			}
			return errFind
		}

		var server models.Server
		if errFind := db.LockForUpdate(tx).
			First(&server, serverID).Error; errFind != nil {
			if errors.Is(errFind, gorm.ErrRecordNotFound) {
				return ErrServerNotFound
			}
			return errFind
		}

		if errUpdate := tx.Model(&models.BoostUnit{}).
			Where("id = ?", unit.ID).
			Updates(map[string]any{
				"server_id":  server.ID,
				"updated_at": now,
			}).Error; errUpdate != nil {
			return errUpdate
		}

		if errUpdate := tx.Model(&models.Server{}).
			Where("id = ?", server.ID).
			Updates(map[string]any{
				"boost_level": gorm.Expr("boost_level + ?", unit.Value),
				"updated_at":  now,
			}).Error; errUpdate != nil {
			return errUpdate
		}
		return nil
	})
	if errTx != nil {
		return nil, errTx
	}

	var updated models.BoostUnit
	if errFind := s.db.WithContext(ctx).
		Preload("Server").
		First(&updated, boostID).Error; errFind != nil {
		return nil, fmt.Errorf("boost service: reload unit: %w", errFind)
	}
	return &updated, nil
}

// RemoveBoost detaches an assigned unit owned by userID from its server and
// returns it to the owner's available pool. The unit row and the server
// counter are written in the same transaction.
func (s *Service) RemoveBoost(ctx context.Context, boostID, userID uint64) (*models.BoostUnit, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("boost service: not initialized")
	}

	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()

		var unit models.BoostUnit
		if errFind := db.LockForUpdate(tx).
			Where("id = ? AND owner_user_id = ? AND is_active = ? AND server_id IS NOT NULL", boostID, userID, true).
			First(&unit).Error; errFind != nil {
			if errors.Is(errFind, gorm.ErrRecordNotFound) {
				return ErrBoostNotAssigned
			}
			return errFind
		}

		if errUpdate := tx.Model(&models.Server{}).
			Where("id = ?", *unit.ServerID).
			Updates(map[string]any{
				"boost_level": gorm.Expr("boost_level - ?", unit.Value),
				"updated_at":  now,
			}).Error; errUpdate != nil {
			return errUpdate
		}

		if errUpdate := tx.Model(&models.BoostUnit{}).
			Where("id = ?", unit.ID).
			Updates(map[string]any{
				"server_id":  nil,
				"updated_at": now,
			}).Error; errUpdate != nil {
			return errUpdate
		}
		return nil
	})
	if errTx != nil {
		return nil, errTx
	}

	var updated models.BoostUnit
	if errFind := s.db.WithContext(ctx).First(&updated, boostID).Error; errFind != nil {
		return nil, fmt.Errorf("boost service: reload unit: %w", errFind)
	}
	return &updated, nil
}

// GetUserBoosts lists the caller's active, non-expired units with server and
// source membership loaded for display, grouped by server assignment and
// then by creation order.
func (s *Service) GetUserBoosts(ctx context.Context, userID uint64) ([]models.BoostUnit, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("boost service: not initialized")
	}

	now := time.Now().UTC()
	var units []models.BoostUnit
	if errFind := s.db.WithContext(ctx).
		Preload("Server").
		Preload("SourceMembership").
		Preload("SourceMembership.Tier").
		Where("owner_user_id = ? AND is_active = ?", userID, true).
		Where("expires_at IS NULL OR expires_at > ?", now).
		Order("server_id ASC NULLS FIRST, id ASC").
		Find(&units).Error; errFind != nil {
		return nil, fmt.Errorf("boost service: list user boosts: %w", errFind)
	}
	return units, nil
}

// GetServerBoosts lists the active, non-expired units assigned to a server
// with owner info loaded for display, in creation order.
func (s *Service) GetServerBoosts(ctx context.Context, serverID uint64) ([]models.BoostUnit, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("boost service: not initialized")
	}

	now := time.Now().UTC()
	var units []models.BoostUnit
	if errFind := s.db.WithContext(ctx).
		Preload("Owner").
		Where("server_id = ? AND is_active = ?", serverID, true).
		Where("expires_at IS NULL OR expires_at > ?", now).
		Order("id ASC").
		Find(&units).Error; errFind != nil {
		return nil, fmt.Errorf("boost service: list server boosts: %w", errFind)
	}
	return units, nil
}
