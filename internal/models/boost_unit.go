package models

import "time"

// BoostUnit is a single transferable credit contributing a fixed value to a
// server's boost level. Ownership never changes after creation; only the
// assignment fields (ServerID, IsActive) are mutated.
type BoostUnit struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	OwnerUserID uint64 `gorm:"not null;index"`         // Owning user ID, immutable.
	Owner       User   `gorm:"foreignKey:OwnerUserID"` // Owning user record.

	SourceMembershipID uint64     `gorm:"not null;index"`                // Membership that granted this unit.
	SourceMembership   Membership `gorm:"foreignKey:SourceMembershipID"` // Granting membership record.

	Value int `gorm:"not null;default:1"` // Boost level contribution.

	IsActive bool `gorm:"not null;default:true"` // Whether the unit counts at all.

	ServerID *uint64 `gorm:"index"`               // Assigned server ID, nil means unassigned.
	Server   *Server `gorm:"foreignKey:ServerID"` // Assigned server record.

	ExpiresAt *time.Time `gorm:"index"` // Expiry time, nil means the unit never expires.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// Available reports whether the unit can be assigned to a server: active,
// unassigned, and not expired at the given instant.
func (u BoostUnit) Available(now time.Time) bool {
	if !u.IsActive || u.ServerID != nil {
		return false
	}
	return u.ExpiresAt == nil || u.ExpiresAt.After(now)
}
