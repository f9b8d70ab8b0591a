package boost

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/darkbyte-app/darkbyte-server/internal/db"
	"github.com/darkbyte-app/darkbyte-server/internal/models"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Grant policy constants.
const (
	// QualifyingTierName is the membership tier that triggers the grant.
	QualifyingTierName = "Byte"
	// InitialGrantCount is how many units a qualifying membership grants.
	InitialGrantCount = 2
	// UnitValue is the boost level contribution of a single unit.
	UnitValue = 1
)

// GrantInitialBoosts creates the one-time boost grant for a qualifying
// membership. Non-qualifying tiers, already-granted memberships, and lookups
// that miss (wrong user or ID) all return an empty result with no mutation.
// The BoostsGranted flag is re-checked under lock inside the transaction, so
// re-invoking with the same membership is always a no-op.
func (s *Service) GrantInitialBoosts(ctx context.Context, userID, membershipID uint64) ([]models.BoostUnit, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("boost service: not initialized")
	}

	var membership models.Membership
	if errFind := s.db.WithContext(ctx).
		Preload("Tier").
		Where("id = ? AND user_id = ?", membershipID, userID).
		First(&membership).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return []models.BoostUnit{}, nil
		}
		return nil, fmt.Errorf("boost service: load membership: %w", errFind)
	}

	if membership.Tier.Name != QualifyingTierName || membership.BoostsGranted {
		return []models.BoostUnit{}, nil
	}

	created := make([]models.BoostUnit, 0, InitialGrantCount)
	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var locked models.Membership
		if errLock := db.LockForUpdate(tx).
			Where("id = ? AND user_id = ?", membershipID, userID).
			First(&locked).Error; errLock != nil {
			return errLock
		}
		if locked.BoostsGranted {
			return nil
		}

		now := time.Now().UTC()
		for i := 0; i < InitialGrantCount; i++ {
			unit := models.BoostUnit{
				OwnerUserID:        userID,
				SourceMembershipID: membershipID,
				Value:              UnitValue,
				IsActive:           true,
				ServerID:           nil,
				CreatedAt:          now,
				UpdatedAt:          now,
			}
			if errCreate := tx.Create(&unit).Error; errCreate != nil {
				return errCreate
			}
			created = append(created, unit)
		}

		if errUpdate := tx.Model(&models.Membership{}).
			Where("id = ?", membershipID).
			Updates(map[string]any{
				"boosts_granted": true,
				"updated_at":     now,
			}).Error; errUpdate != nil {
			return errUpdate
		}
		return nil
	})
	if errTx != nil {
		return nil, fmt.Errorf("boost service: grant: %w", errTx)
	}

	if len(created) > 0 {
		log.WithFields(log.Fields{
			"user_id":       userID,
			"membership_id": membershipID,
			"units":         len(created),
		}).Info("granted initial boosts")
	}
	return created, nil
}
