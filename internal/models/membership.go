package models

import "time"

// Membership records a user's subscription to a tier for a time window.
type Membership struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID uint64 `gorm:"not null;index"`    // Owning user ID.
	User   User   `gorm:"foreignKey:UserID"` // Owning user record.

	TierID uint64 `gorm:"not null;index"`    // Subscribed tier ID.
	Tier   Tier   `gorm:"foreignKey:TierID"` // Subscribed tier record.

	StartedAt time.Time  `gorm:"not null"` // Subscription start time.
	ExpiresAt *time.Time `gorm:"index"`    // Subscription end time, nil means indefinite.

	// BoostsGranted transitions false to true at most once per membership
	// and is never reset. It is the guard against double-granting.
	BoostsGranted bool `gorm:"not null;default:false"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
