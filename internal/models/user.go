package models

import "time"

// User represents an end-user account stored in the database.
type User struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Username    string `gorm:"type:text;not null;uniqueIndex"` // Unique login name.
	DisplayName string `gorm:"type:text"`                      // Display name.
	Email       string `gorm:"type:text;uniqueIndex"`          // Email address.
	Password    string `gorm:"type:text;not null"`             // Hashed password.

	Active bool `gorm:"not null;default:true"` // Whether the user can sign in.

	Memberships []Membership `gorm:"foreignKey:UserID"`      // Related memberships.
	BoostUnits  []BoostUnit  `gorm:"foreignKey:OwnerUserID"` // Related boost units.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
