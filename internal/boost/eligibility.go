package boost

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/darkbyte-app/darkbyte-server/internal/models"
	"gorm.io/gorm"
)

// CanUserBoostServer reports whether the user owns at least one available
// unit AND belongs to the target server (as owner or member). The check is
// advisory: no lock is held, so callers must still rely on the transactional
// preconditions of ApplyBoost.
func (s *Service) CanUserBoostServer(ctx context.Context, userID, serverID uint64) (bool, error) {
	if s == nil || s.db == nil {
		return false, fmt.Errorf("boost service: not initialized")
	}

	now := time.Now().UTC()
	var available int64
	if errCount := s.db.WithContext(ctx).
		Model(&models.BoostUnit{}).
		Where("owner_user_id = ?", userID).
		Where(availableCond, true, now).
		Count(&available).Error; errCount != nil {
		return false, fmt.Errorf("boost service: count available units: %w", errCount)
	}
	if available == 0 {
		return false, nil
	}

	var server models.Server
	if errFind := s.db.WithContext(ctx).
		Select("id", "owner_user_id").
		First(&server, serverID).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("boost service: load server: %w", errFind)
	}
	if server.OwnerUserID == userID {
		return true, nil
	}

	var memberCount int64
	if errCount := s.db.WithContext(ctx).
		Model(&models.ServerMember{}).
		Where("server_id = ? AND user_id = ?", serverID, userID).
		Count(&memberCount).Error; errCount != nil {
		return false, fmt.Errorf("boost service: count server membership: %w", errCount)
	}
	return memberCount > 0, nil
}
