package models

import (
	"time"

	"gorm.io/datatypes"
)

// Tier represents a membership tier configuration.
type Tier struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Name        string         `gorm:"type:varchar(255);not null;uniqueIndex"` // Tier name.
	MonthPrice  float64        `gorm:"type:decimal(10,2);not null;default:0"`  // Monthly price.
	Description string         `gorm:"type:text"`                              // Tier description.
	Perks       datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'"`       // Perk description list.

	SortOrder int `gorm:"not null;default:0"` // Display ordering weight.

	IsEnabled bool `gorm:"not null;default:true"` // Whether the tier is purchasable.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
