package models

import "time"

// Server represents a community server users can join and boost.
type Server struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Name        string `gorm:"type:varchar(255);not null"` // Server name.
	Description string `gorm:"type:text"`                  // Server description.

	OwnerUserID uint64 `gorm:"not null;index"`         // Owning user ID.
	Owner       User   `gorm:"foreignKey:OwnerUserID"` // Owning user record.

	// BoostLevel always equals the summed value of active, non-expired
	// boost units assigned to this server. Written only by the boost
	// service, in the same transaction as the unit row it mutates.
	BoostLevel int `gorm:"not null;default:0"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// ServerMember records a user's membership in a server.
type ServerMember struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	ServerID uint64 `gorm:"not null;index:idx_server_members_server_user,unique"` // Related server ID.
	Server   Server `gorm:"foreignKey:ServerID"`                                  // Related server record.

	UserID uint64 `gorm:"not null;index:idx_server_members_server_user,unique"` // Related user ID.
	User   User   `gorm:"foreignKey:UserID"`                                    // Related user record.

	JoinedAt time.Time `gorm:"not null"` // Join timestamp.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
}
