// Package membership implements membership activation, the collaborator
// that triggers the one-time boost grant.
package membership

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/darkbyte-app/darkbyte-server/internal/boost"
	"github.com/darkbyte-app/darkbyte-server/internal/models"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ErrTierNotFound indicates the tier does not exist or is disabled.
var ErrTierNotFound = errors.New("tier not found")

// Service creates and lists memberships.
type Service struct {
	db     *gorm.DB
	boosts *boost.Service
}

// NewService constructs a membership Service.
func NewService(conn *gorm.DB, boosts *boost.Service) *Service {
	return &Service{db: conn, boosts: boosts}
}

// Activate creates a one-month membership for the tier and applies the boost
// grant policy. The grant is a separate idempotent step: a failure there
// leaves the membership in place and the policy safe to re-run.
func (s *Service) Activate(ctx context.Context, userID, tierID uint64) (*models.Membership, []models.BoostUnit, error) {
	if s == nil || s.db == nil {
		return nil, nil, fmt.Errorf("membership service: not initialized")
	}

	var tier models.Tier
	if errFind := s.db.WithContext(ctx).
		Where("id = ? AND is_enabled = ?", tierID, true).
		First(&tier).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, nil, ErrTierNotFound
		}
		return nil, nil, fmt.Errorf("membership service: load tier: %w", errFind)
	}

	now := time.Now().UTC()
	expiresAt := now.AddDate(0, 1, 0)
	record := models.Membership{
		UserID:        userID,
		TierID:        tier.ID,
		StartedAt:     now,
		ExpiresAt:     &expiresAt,
		BoostsGranted: false,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if errCreate := s.db.WithContext(ctx).Create(&record).Error; errCreate != nil {
		return nil, nil, fmt.Errorf("membership service: create membership: %w", errCreate)
	}
	record.Tier = tier

	granted, errGrant := s.boosts.GrantInitialBoosts(ctx, userID, record.ID)
	if errGrant != nil {
		log.WithError(errGrant).WithField("membership_id", record.ID).
			Warn("membership activated but boost grant failed")
		return &record, nil, nil
	}
	return &record, granted, nil
}

// ListForUser returns the user's memberships with tiers loaded, newest first.
func (s *Service) ListForUser(ctx context.Context, userID uint64) ([]models.Membership, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("membership service: not initialized")
	}

	var rows []models.Membership
	if errFind := s.db.WithContext(ctx).
		Preload("Tier").
		Where("user_id = ?", userID).
		Order("id DESC").
		Find(&rows).Error; errFind != nil {
		return nil, fmt.Errorf("membership service: list: %w", errFind)
	}
	return rows, nil
}
